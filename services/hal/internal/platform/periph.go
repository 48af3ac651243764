// Package platform implements the sensor's board access over periph.io
// GPIO. It runs on any host periph supports and against gpiotest pins.
package platform

import (
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	"cpicam-go/drivers/rawcmos"
	"cpicam-go/errcode"
	"cpicam-go/services/hal/internal/core"
	"cpicam-go/x/timex"
)

// PinNames maps each sensor signal to a board pin name. Empty means the
// signal is not wired.
type PinNames struct {
	Reset       string `yaml:"reset"`
	PowerDown   string `yaml:"pwdn"`
	PowerEnable string `yaml:"power_en"`
	Mclk        string `yaml:"mclk"`
	IOVDD       string `yaml:"iovdd"`
	AVDD        string `yaml:"avdd"`
	DVDD        string `yaml:"dvdd"`
	AFVDD       string `yaml:"afvdd"`
	// Fixed names rails fed straight from the board supply. Switching them
	// succeeds without touching a pin.
	Fixed []string `yaml:"fixed"`
}

// Names lists the configured pin names in signal order, skipping unwired
// ones.
func (n PinNames) Names() []string {
	var out []string
	for _, s := range []string{n.Reset, n.PowerDown, n.PowerEnable, n.Mclk, n.IOVDD, n.AVDD, n.DVDD, n.AFVDD} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

const numLines = 3

// Periph drives the sensor's lines, clock and rails. Rails are switched
// through GPIO enables; the master clock is a 50% PWM on its pin.
type Periph struct {
	lines  [numLines]gpio.PinIO
	levels [numLines]gpio.Level
	mclk   gpio.PinIO
	rails  [rawcmos.NumRails]gpio.PinIO
	fixed  [rawcmos.NumRails]bool
	hz     uint32
	log    *zap.Logger
}

var _ rawcmos.Hardware = (*Periph)(nil)

// New resolves names against src. Naming a pin the source does not know
// is a configuration error.
func New(src core.PinSource, names PinNames, log *zap.Logger) (*Periph, error) {
	if src == nil {
		return nil, errcode.New(errcode.InvalidArgument, "platform.New", "nil pin source")
	}
	if log == nil {
		log = zap.NewNop()
	}
	p := &Periph{log: log}

	var missing []string
	resolve := func(name string) gpio.PinIO {
		if name == "" {
			return nil
		}
		pin := src.ByName(name)
		if pin == nil {
			missing = append(missing, name)
		}
		return pin
	}
	p.lines[rawcmos.LineReset] = resolve(names.Reset)
	p.lines[rawcmos.LinePowerEnable] = resolve(names.PowerEnable)
	p.lines[rawcmos.LinePowerDown] = resolve(names.PowerDown)
	p.mclk = resolve(names.Mclk)
	p.rails[rawcmos.RailIO] = resolve(names.IOVDD)
	p.rails[rawcmos.RailAnalog] = resolve(names.AVDD)
	p.rails[rawcmos.RailDigital] = resolve(names.DVDD)
	p.rails[rawcmos.RailAF] = resolve(names.AFVDD)

	for _, name := range names.Fixed {
		r, ok := railByName(name)
		if !ok {
			return nil, errcode.New(errcode.InvalidParams, "platform.New", "unknown rail "+name)
		}
		if p.rails[r] != nil {
			return nil, errcode.New(errcode.InvalidParams, "platform.New", "rail "+name+" is both fixed and switched")
		}
		p.fixed[r] = true
	}

	if len(missing) > 0 {
		return nil, errcode.New(errcode.InvalidParams, "platform.New", "unknown pin "+strings.Join(missing, ", "))
	}
	return p, nil
}

func railByName(name string) (rawcmos.Rail, bool) {
	for r := rawcmos.Rail(0); r < rawcmos.NumRails; r++ {
		if r.String() == name {
			return r, true
		}
	}
	return 0, false
}

func unwired(op, what string) error {
	return errcode.New(errcode.HardwareUnavailable, op, what+" not wired")
}

func (p *Periph) line(op string, l rawcmos.Line) (gpio.PinIO, error) {
	if int(l) >= numLines {
		return nil, errcode.New(errcode.InvalidArgument, op, l.String())
	}
	if p.lines[l] == nil {
		return nil, unwired(op, l.String())
	}
	return p.lines[l], nil
}

// SetDirection makes a line an output driving its last written level, or a
// floating input.
func (p *Periph) SetDirection(l rawcmos.Line, d rawcmos.Direction) error {
	pin, err := p.line("platform.SetDirection", l)
	if err != nil {
		return err
	}
	if d == rawcmos.Output {
		err = pin.Out(p.levels[l])
	} else {
		err = pin.In(gpio.Float, gpio.NoEdge)
	}
	return errcode.Wrap(errcode.HardwareUnavailable, "platform.SetDirection: "+l.String(), err)
}

func (p *Periph) Write(l rawcmos.Line, level bool) error {
	pin, err := p.line("platform.Write", l)
	if err != nil {
		return err
	}
	lv := gpio.Level(level)
	if err := pin.Out(lv); err != nil {
		return errcode.Wrap(errcode.HardwareUnavailable, "platform.Write: "+l.String(), err)
	}
	p.levels[l] = lv
	return nil
}

// SetClockFrequency records the rate used by the next EnableClock(true).
func (p *Periph) SetClockFrequency(hz uint32) error {
	if p.mclk == nil {
		return unwired("platform.SetClockFrequency", "mclk")
	}
	if hz == 0 {
		return errcode.New(errcode.InvalidArgument, "platform.SetClockFrequency", "zero frequency")
	}
	p.hz = hz
	return nil
}

func (p *Periph) EnableClock(on bool) error {
	if p.mclk == nil {
		return unwired("platform.EnableClock", "mclk")
	}
	var err error
	if on {
		if p.hz == 0 {
			return errcode.New(errcode.InvalidArgument, "platform.EnableClock", "frequency not set")
		}
		err = p.mclk.PWM(gpio.DutyHalf, physic.Frequency(p.hz)*physic.Hertz)
	} else {
		err = p.mclk.Out(gpio.Low)
	}
	if err != nil {
		return errcode.Wrap(errcode.HardwareUnavailable, "platform.EnableClock", err)
	}
	p.log.Debug("mclk", zap.Bool("on", on), zap.Uint32("hz", p.hz), zap.Duration("period", timex.PeriodFromHz(p.hz)))
	return nil
}

func (p *Periph) EnableRail(r rawcmos.Rail, on bool) error {
	if int(r) >= rawcmos.NumRails {
		return errcode.New(errcode.InvalidArgument, "platform.EnableRail", r.String())
	}
	if p.fixed[r] {
		return nil
	}
	pin := p.rails[r]
	if pin == nil {
		return unwired("platform.EnableRail", r.String())
	}
	return errcode.Wrap(errcode.HardwareUnavailable, "platform.EnableRail: "+r.String(), pin.Out(gpio.Level(on)))
}

// Halt releases every wired pin back to a floating input.
func (p *Periph) Halt() error {
	var errs error
	for _, pin := range p.wired() {
		errs = multierr.Append(errs, pin.In(gpio.Float, gpio.NoEdge))
	}
	return errcode.Wrap(errcode.HardwareUnavailable, "platform.Halt", errs)
}

func (p *Periph) wired() []gpio.PinIO {
	all := make([]gpio.PinIO, 0, numLines+1+rawcmos.NumRails)
	all = append(all, p.lines[:]...)
	all = append(all, p.mclk)
	all = append(all, p.rails[:]...)
	out := all[:0]
	for _, pin := range all {
		if pin != nil {
			out = append(out, pin)
		}
	}
	return out
}
