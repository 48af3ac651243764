package rawcmos

import (
	"strconv"

	"go.uber.org/zap"

	"cpicam-go/errcode"
)

// Mode is a resolved format and geometry.
type Mode struct {
	Format Format
	Window WindowSize
	Field  Field
}

// TryFormat resolves a request against the catalog without touching the
// device. The window is rounded up to the first catalog entry that covers
// width x height; a request larger than every entry gets the largest one.
func (d *Device) TryFormat(code Code, width, height uint32) (Mode, error) {
	f, err := d.table.FormatByCode(code)
	if err != nil {
		return Mode{}, err
	}
	return Mode{
		Format: f,
		Window: d.table.fitWindow(width, height),
		Field:  FieldNone,
	}, nil
}

// Commit applies m and makes it the active mode. The format's and the
// window's register lists are written, then the window's SetSize hook runs.
// If any of those fail the previously committed mode stays in force.
func (d *Device) Commit(m Mode) error {
	fi := d.table.formatIndex(m.Format.Code)
	if fi < 0 {
		return errcode.New(errcode.UnsupportedFormat, "rawcmos.Commit", "code 0x"+strconv.FormatUint(uint64(m.Format.Code), 16))
	}
	wi := d.table.windowIndex(m.Window.Width, m.Window.Height)
	if wi < 0 {
		return errcode.New(errcode.InvalidArgument, "rawcmos.Commit",
			"window "+strconv.FormatUint(uint64(m.Window.Width), 10)+"x"+strconv.FormatUint(uint64(m.Window.Height), 10)+" not in catalog")
	}
	f, w := d.table.formats[fi], d.table.windows[wi]

	if err := d.writeArray("rawcmos.Commit: format regs", f.Regs); err != nil {
		return err
	}
	if err := d.writeArray("rawcmos.Commit: window regs", w.Regs); err != nil {
		return err
	}
	if w.SetSize != nil {
		if err := w.SetSize(); err != nil {
			return errcode.Wrap(errcode.HardwareUnavailable, "rawcmos.Commit: set size", err)
		}
	}

	d.format = fi
	d.width, d.height = w.Width, w.Height
	return nil
}

// SetFormat resolves and commits a request in one call. When the
// committed window carries its own baseline and the device is not in
// high-resolution mode, that baseline becomes the nominal timing.
func (d *Device) SetFormat(code Code, width, height uint32) (Mode, error) {
	m, err := d.TryFormat(code, width, height)
	if err != nil {
		d.log.Debug("format rejected", zap.Uint32("code", uint32(code)), zap.Error(err))
		return Mode{}, err
	}
	if err := d.Commit(m); err != nil {
		d.log.Warn("format commit failed", zap.Uint32("width", m.Window.Width), zap.Uint32("height", m.Window.Height), zap.Error(err))
		return Mode{}, err
	}
	if b := m.Window.Baseline; b != nil && !d.highRes {
		d.baseline = *b
	}
	d.log.Debug("format set",
		zap.String("format", m.Format.Desc),
		zap.Uint32("width", d.width),
		zap.Uint32("height", d.height),
		zap.Uint32("fps", d.baseline.FPS))
	return m, nil
}
