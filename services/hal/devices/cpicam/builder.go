// Package cpicam exposes a raw CMOS camera sensor as a HAL device.
package cpicam

import (
	"context"

	"go.uber.org/zap"
	"tinygo.org/x/drivers"

	"cpicam-go/drivers/rawcmos"
	"cpicam-go/errcode"
	"cpicam-go/services/hal/internal/core"
	"cpicam-go/services/hal/internal/platform"
	"cpicam-go/services/hal/internal/util"
	"cpicam-go/x/timex"
)

const typeName = "cpicam"

func init() { core.RegisterBuilder(typeName, builder{}) }

// Params is the board description of one sensor.
type Params struct {
	Pins    platform.PinNames `yaml:"pins"`
	MclkMHz uint32            `yaml:"mclk_mhz"`
	HighRes bool              `yaml:"high_res"`
	// Windows replaces the stock 2048x2048 catalog when set.
	Windows []WindowParams `yaml:"windows"`
	// Bus and Address reach an addressable variant for register lists.
	Bus     string `yaml:"bus"`
	Address uint16 `yaml:"address"`
}

type WindowParams struct {
	Width   uint32      `yaml:"width"`
	Height  uint32      `yaml:"height"`
	HOffset uint32      `yaml:"hoffset"`
	VOffset uint32      `yaml:"voffset"`
	FPS     uint32      `yaml:"fps"` // non-zero declares a baseline
	PclkHz  uint32      `yaml:"pclk_hz"`
	Regs    []RegParams `yaml:"regs"`
}

type RegParams struct {
	Addr byte `yaml:"addr"`
	Val  byte `yaml:"val"`
}

func decodeParams(v any) (Params, error) {
	if p, c := core.As[Params](v); c == "" {
		return p, nil
	}
	var p Params
	if err := util.Decode(v, &p); err != nil {
		return p, errcode.Wrap(errcode.InvalidParams, "cpicam: params", err)
	}
	return p, nil
}

func regs(in []RegParams) []rawcmos.Reg {
	if len(in) == 0 {
		return nil
	}
	out := make([]rawcmos.Reg, len(in))
	for i, r := range in {
		out[i] = rawcmos.Reg{Addr: r.Addr, Val: r.Val}
	}
	return out
}

func (p Params) table() (*rawcmos.Table, error) {
	if len(p.Windows) == 0 {
		return rawcmos.DefaultTable(), nil
	}
	windows := make([]rawcmos.WindowSize, 0, len(p.Windows))
	for _, w := range p.Windows {
		if w.Width == 0 || w.Height == 0 {
			return nil, errcode.New(errcode.InvalidParams, "cpicam: windows", "zero window dimension")
		}
		ws := rawcmos.WindowSize{
			Width:   w.Width,
			Height:  w.Height,
			HOffset: w.HOffset,
			VOffset: w.VOffset,
			Regs:    regs(w.Regs),
		}
		if w.FPS != 0 {
			pclk := w.PclkHz
			if pclk == 0 {
				pclk = timex.HzFromMHz(rawcmos.ValidMclk(p.MclkMHz))
			}
			ws.Baseline = &rawcmos.Baseline{PixelClockHz: pclk, FPS: w.FPS}
		}
		windows = append(windows, ws)
	}
	var formats []rawcmos.Format
	for f := range rawcmos.DefaultTable().Formats() {
		formats = append(formats, f)
	}
	return rawcmos.NewTable(formats, windows)
}

type builder struct{}

func (builder) Build(ctx context.Context, in core.BuilderInput) (core.Device, error) {
	p, err := decodeParams(in.Params)
	if err != nil {
		return nil, err
	}
	log := in.Res.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("dev", in.ID))

	table, err := p.table()
	if err != nil {
		return nil, err
	}
	hw, err := platform.New(in.Res.Pins, p.Pins, log)
	if err != nil {
		return nil, err
	}
	var bus drivers.I2C
	if p.Bus != "" {
		if in.Res.Buses == nil {
			return nil, errcode.New(errcode.InvalidParams, "cpicam: bus", "no control buses on this platform")
		}
		if bus, err = in.Res.Buses.OpenI2C(p.Bus); err != nil {
			return nil, err
		}
	}
	cfg := rawcmos.Config{
		MclkMHz: p.MclkMHz,
		HighRes: p.HighRes,
		Table:   table,
		Bus:     bus,
		Address: p.Address,
		Log:     log,
	}
	if in.Res.Clock != nil {
		cfg.Clock = in.Res.Clock
	}
	s, err := rawcmos.New(hw, cfg)
	if err != nil {
		return nil, err
	}
	return &Device{
		id:      in.ID,
		sensor:  s,
		halt:    hw.Halt,
		mclkMHz: s.MclkHz() / 1_000_000,
	}, nil
}
