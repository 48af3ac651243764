// Package rawcmos drives a parallel-bus (CPI) CMOS image sensor that has
// no register interface of its own. The driver sequences the sensor's
// control lines, master clock and supply rails through a board-supplied
// Hardware, and negotiates the pixel format and frame geometry against a
// static catalog:
//
//	d, _ := rawcmos.New(hw, rawcmos.Config{MclkMHz: 24})
//	_ = d.Power(rawcmos.PowerOn)                       // ~40 ms of settling
//	m, _ := d.SetFormat(rawcmos.CodeGrey8, 1920, 1080) // rounds up to 2048x2048
//	...
//	_ = d.Power(rawcmos.PowerOff)
//
// Concurrency: a Device is not safe for concurrent use. Callers serialise
// access; power transitions block for their settle delays and cannot be
// interrupted once started.
package rawcmos

import (
	"iter"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"tinygo.org/x/drivers"

	"cpicam-go/errcode"
	"cpicam-go/x/mathx"
	"cpicam-go/x/timex"
)

// Master clock limits, in MHz.
const (
	MclkDefaultMHz = 24
	mclkLimitMHz   = 35
)

// DefaultFPS is the nominal frame rate when no baseline is configured.
const DefaultFPS = 30

// ValidMclk returns mhz when it lies in (0, 35) and the default otherwise.
func ValidMclk(mhz uint32) uint32 {
	if mathx.Within(mhz, 0, mclkLimitMHz) {
		return mhz
	}
	return MclkDefaultMHz
}

// Config controls non-hardware behaviour. All fields are optional.
type Config struct {
	// MclkMHz is the master clock rate; out-of-range values fall back to 24.
	MclkMHz uint32
	// HighRes keeps the configured baseline even when a committed window
	// declares its own.
	HighRes bool
	// Baseline is the nominal timing at construction. Zero fields default
	// to the master clock rate and DefaultFPS.
	Baseline Baseline
	// Table defaults to DefaultTable().
	Table *Table
	// Bus and Address reach an addressable variant. Only needed when the
	// catalog declares register lists.
	Bus     drivers.I2C
	Address uint16
	// Clock paces settle delays. Defaults to the real clock.
	Clock timex.Sleeper
	// Log defaults to a no-op logger.
	Log *zap.Logger
}

// State is a snapshot of the device's negotiated state.
type State struct {
	Format        Format
	Width         uint32 // 0 until the first commit
	Height        uint32
	Controls      Controls
	Power         PowerState
	Baseline      Baseline
	ResetAsserted bool
}

// Sensor is the caller-facing contract of the driver.
type Sensor interface {
	Power(req Request) error
	Reset(level uint32) error
	Init(val uint32) error

	Catalog() *Table
	EnumFormats() iter.Seq[Format]
	EnumWindows() iter.Seq[WindowSize]
	TryFormat(code Code, width, height uint32) (Mode, error)
	Commit(m Mode) error
	SetFormat(code Code, width, height uint32) (Mode, error)

	FrameInterval() FrameInterval
	SetFrameInterval(in FrameInterval) FrameInterval

	GetControl(id ControlID) (int32, error)
	SetControl(id ControlID, v int32) error
	QueryControl(id ControlID) (ControlInfo, error)
	EnumControls() ([]ControlInfo, error)
	Exif() Exif
	Diagnostic(cmd Command, payload any) (any, error)

	ChipIdent() ChipIdent
	BusConfig() BusConfig
	State() State
	Close() error
}

var _ Sensor = (*Device)(nil)

// Device owns the state of one physical sensor.
type Device struct {
	hw    Hardware
	bus   drivers.I2C
	addr  uint16
	table *Table
	clock timex.Sleeper
	log   *zap.Logger

	mclkHz  uint32
	highRes bool

	format        int // index into table.formats
	width         uint32
	height        uint32
	baseline      Baseline
	controls      Controls
	power         PowerState
	resetAsserted bool

	// Fixed buffer to avoid per-write heap allocations.
	w [2]byte
}

// New creates a Device. It only records configuration; no hardware is
// touched until the first Power call. The device starts logically Off.
func New(hw Hardware, cfg Config) (*Device, error) {
	if hw == nil {
		return nil, errcode.New(errcode.InvalidArgument, "rawcmos.New", "nil hardware")
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	mhz := ValidMclk(cfg.MclkMHz)
	if cfg.MclkMHz != 0 && mhz != cfg.MclkMHz {
		log.Info("mclk override out of range, using default", zap.Uint32("requested_mhz", cfg.MclkMHz), zap.Uint32("mhz", mhz))
	}
	table := cfg.Table
	if table == nil {
		table = DefaultTable()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	base := cfg.Baseline
	if base.PixelClockHz == 0 {
		base.PixelClockHz = timex.HzFromMHz(mhz)
	}
	if base.FPS == 0 {
		base.FPS = DefaultFPS
	}
	return &Device{
		hw:       hw,
		bus:      cfg.Bus,
		addr:     cfg.Address,
		table:    table,
		clock:    clock,
		log:      log,
		mclkHz:   timex.HzFromMHz(mhz),
		highRes:  cfg.HighRes,
		baseline: base,
		power:    Off,
	}, nil
}

// Catalog returns the device's mode table.
func (d *Device) Catalog() *Table { return d.table }

func (d *Device) EnumFormats() iter.Seq[Format]     { return d.table.Formats() }
func (d *Device) EnumWindows() iter.Seq[WindowSize] { return d.table.Windows() }

// MclkHz is the master clock rate applied on power-up.
func (d *Device) MclkHz() uint32 { return d.mclkHz }

func (d *Device) State() State {
	return State{
		Format:        d.table.formats[d.format],
		Width:         d.width,
		Height:        d.height,
		Controls:      d.controls,
		Power:         d.power,
		Baseline:      d.baseline,
		ResetAsserted: d.resetAsserted,
	}
}

// Close leaves the sensor powered off.
func (d *Device) Close() error {
	if d.power == Off {
		return nil
	}
	return d.Power(PowerOff)
}
