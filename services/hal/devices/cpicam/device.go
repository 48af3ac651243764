package cpicam

import (
	"context"

	"go.uber.org/multierr"

	"cpicam-go/drivers/rawcmos"
	"cpicam-go/errcode"
	"cpicam-go/services/hal/internal/core"
	"cpicam-go/types"
)

// Control verbs.
const (
	VerbPower        = "power"
	VerbReset        = "reset"
	VerbTryFormat    = "try_format"
	VerbSetFormat    = "set_format"
	VerbFormats      = "formats"
	VerbSizes        = "sizes"
	VerbGetInterval  = "get_interval"
	VerbSetInterval  = "set_interval"
	VerbGetControl   = "get_control"
	VerbSetControl   = "set_control"
	VerbQueryControl = "query_control"
	VerbControls     = "controls"
	VerbExif         = "exif"
	VerbIoctl        = "ioctl"
	VerbState        = "state"
)

type Device struct {
	id      string
	sensor  rawcmos.Sensor
	halt    func() error // releases the pins after power-off
	mclkMHz uint32
}

func (d *Device) ID() string { return d.id }

func (d *Device) Capabilities() []core.CapabilitySpec {
	ident := d.sensor.ChipIdent()
	bus := d.sensor.BusConfig()
	return []core.CapabilitySpec{{
		Kind: types.KindCamera,
		Info: types.Info{
			SchemaVersion: 1,
			Driver:        "rawcmos",
			Detail: types.CameraInfo{
				MclkMHz:  d.mclkMHz,
				Bus:      "parallel",
				Master:   bus.Flags.Has(rawcmos.BusMaster),
				Ident:    ident.Ident,
				Revision: ident.Revision,
				Formats:  d.formats(),
				Windows:  d.sizes(),
			},
		},
	}}
}

func (d *Device) Init(context.Context) error { return d.sensor.Init(0) }

// Close powers the sensor off and floats its pins.
func (d *Device) Close() error {
	err := d.sensor.Close()
	if d.halt != nil {
		err = multierr.Append(err, d.halt())
	}
	return err
}

func (d *Device) Control(kind types.Kind, verb string, payload any) (any, error) {
	if kind != types.KindCamera {
		return nil, errcode.New(errcode.Unsupported, "cpicam", "kind "+string(kind))
	}
	op := "cpicam." + verb
	switch verb {
	case VerbPower:
		p, err := core.Payload[types.PowerSet](op, payload)
		if err != nil {
			return nil, err
		}
		req, err := rawcmos.ParseRequest(p.Request)
		if err != nil {
			return nil, err
		}
		if err := d.sensor.Power(req); err != nil {
			return nil, err
		}
		return d.state(), nil

	case VerbReset:
		p, err := core.Payload[types.ResetSet](op, payload)
		if err != nil {
			return nil, err
		}
		if err := d.sensor.Reset(p.Level); err != nil {
			return nil, err
		}
		return d.state(), nil

	case VerbTryFormat, VerbSetFormat:
		p, err := core.Payload[types.FormatSet](op, payload)
		if err != nil {
			return nil, err
		}
		code := rawcmos.Code(p.Code)
		var m rawcmos.Mode
		if verb == VerbTryFormat {
			m, err = d.sensor.TryFormat(code, p.Width, p.Height)
		} else {
			m, err = d.sensor.SetFormat(code, p.Width, p.Height)
		}
		if err != nil {
			return nil, err
		}
		return formatValue(m), nil

	case VerbFormats:
		return d.formats(), nil

	case VerbSizes:
		return d.sizes(), nil

	case VerbGetInterval:
		return interval(d.sensor.FrameInterval()), nil

	case VerbSetInterval:
		p, err := core.Payload[types.Interval](op, payload)
		if err != nil {
			return nil, err
		}
		out := d.sensor.SetFrameInterval(rawcmos.FrameInterval{Numerator: p.Numerator, Denominator: p.Denominator})
		return interval(out), nil

	case VerbGetControl, VerbQueryControl:
		p, err := core.Payload[types.ControlGet](op, payload)
		if err != nil {
			return nil, err
		}
		id, err := controlID(op, p.Name)
		if err != nil {
			return nil, err
		}
		if verb == VerbGetControl {
			return d.sensor.GetControl(id)
		}
		return d.sensor.QueryControl(id)

	case VerbSetControl:
		p, err := core.Payload[types.ControlSet](op, payload)
		if err != nil {
			return nil, err
		}
		id, err := controlID(op, p.Name)
		if err != nil {
			return nil, err
		}
		if err := d.sensor.SetControl(id, p.Value); err != nil {
			return nil, err
		}
		return types.OKReply{OK: true}, nil

	case VerbControls:
		return d.sensor.EnumControls()

	case VerbExif:
		return exifValue(d.sensor.Exif()), nil

	case VerbIoctl:
		p, err := core.Payload[types.DiagnosticCmd](op, payload)
		if err != nil {
			return nil, err
		}
		out, err := d.sensor.Diagnostic(rawcmos.Command(p.Cmd), p.Payload)
		if err != nil {
			return nil, err
		}
		if e, ok := out.(rawcmos.Exif); ok {
			return exifValue(e), nil
		}
		return out, nil

	case VerbState:
		return d.state(), nil

	default:
		return nil, errcode.New(errcode.Unsupported, "cpicam", "verb "+verb)
	}
}

func controlID(op, name string) (rawcmos.ControlID, error) {
	id, ok := rawcmos.ControlByName(name)
	if !ok {
		return 0, errcode.New(errcode.InvalidArgument, op, "unknown control "+name)
	}
	return id, nil
}

func (d *Device) state() types.CameraState {
	s := d.sensor.State()
	return types.CameraState{
		Power:         s.Power.String(),
		Format:        uint32(s.Format.Code),
		Width:         s.Width,
		Height:        s.Height,
		FPS:           s.Baseline.FPS,
		PixelClockHz:  s.Baseline.PixelClockHz,
		ResetAsserted: s.ResetAsserted,
	}
}

func (d *Device) formats() []types.FormatInfo {
	out := make([]types.FormatInfo, 0, d.sensor.Catalog().NumFormats())
	for f := range d.sensor.EnumFormats() {
		out = append(out, types.FormatInfo{Desc: f.Desc, Code: uint32(f.Code), BPP: f.BPP})
	}
	return out
}

func (d *Device) sizes() []types.WindowInfo {
	out := make([]types.WindowInfo, 0, d.sensor.Catalog().NumWindows())
	for w := range d.sensor.EnumWindows() {
		out = append(out, types.WindowInfo{Width: w.Width, Height: w.Height})
	}
	return out
}

func formatValue(m rawcmos.Mode) types.FormatValue {
	field := "any"
	if m.Field == rawcmos.FieldNone {
		field = "none"
	}
	return types.FormatValue{
		Code:   uint32(m.Format.Code),
		Desc:   m.Format.Desc,
		Width:  m.Window.Width,
		Height: m.Window.Height,
		Field:  field,
	}
}

func interval(fi rawcmos.FrameInterval) types.Interval {
	return types.Interval{Numerator: fi.Numerator, Denominator: fi.Denominator}
}

func exifValue(e rawcmos.Exif) types.ExifValue {
	return types.ExifValue{
		FNumber:         e.FNumber,
		FocalLength:     e.FocalLength,
		Brightness:      e.Brightness,
		FlashFire:       e.FlashFire,
		ISOSpeed:        e.ISOSpeed,
		ExposureTimeNum: e.ExposureTimeNum,
		ExposureTimeDen: e.ExposureTimeDen,
	}
}
