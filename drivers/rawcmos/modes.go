package rawcmos

import (
	"iter"
	"strconv"

	"cpicam-go/errcode"
)

// Code is a media-bus pixel code.
type Code uint32

// Media-bus codes understood by the stock catalog.
const (
	CodeGrey8 Code = 0x2001 // 8-bit greyscale, one sample per pixel clock
)

// Field is the interlace mode of a frame. This sensor is progressive only.
type Field uint8

const (
	FieldAny Field = iota
	FieldNone
)

// Reg is one 8-bit address / 8-bit value register write.
type Reg struct {
	Addr byte
	Val  byte
}

// Format is an immutable catalog entry for a pixel encoding.
type Format struct {
	Desc string
	Code Code
	Regs []Reg
	BPP  int // bytes per pixel
}

// Baseline is the nominal timing of the sensor at full, undivided rate.
type Baseline struct {
	PixelClockHz uint32
	FPS          uint32
}

// WindowSize is an immutable catalog entry for a frame geometry.
type WindowSize struct {
	Width   uint32
	Height  uint32
	HOffset uint32
	VOffset uint32
	Regs    []Reg

	// SetSize finalises geometry after the register lists. Optional.
	SetSize func() error
	// Baseline, when set, replaces the nominal timing once this window is
	// committed (unless the device runs in high-resolution mode).
	Baseline *Baseline
}

func (w WindowSize) area() uint64 { return uint64(w.Width) * uint64(w.Height) }

// WindowVGA is the 640x480 geometry. Committing it switches the nominal
// timing to a 34 MHz pixel clock at 25 fps.
var WindowVGA = WindowSize{
	Width:    640,
	Height:   480,
	Baseline: &Baseline{PixelClockHz: 34_000_000, FPS: 25},
}

var (
	defaultFormats = []Format{{
		Desc: "Raw 8-bit CMOS data",
		Code: CodeGrey8,
		BPP:  1,
	}}
	defaultWindows = []WindowSize{{
		Width:  2048,
		Height: 2048,
	}}
)

// Table is a read-only catalog of formats and window sizes.
type Table struct {
	formats []Format
	windows []WindowSize
}

// DefaultTable returns the stock catalog: one 8-bit grey format, one
// 2048x2048 window.
func DefaultTable() *Table {
	return &Table{formats: defaultFormats, windows: defaultWindows}
}

// NewTable builds a catalog. Both lists must be non-empty; they are copied.
func NewTable(formats []Format, windows []WindowSize) (*Table, error) {
	if len(formats) == 0 || len(windows) == 0 {
		return nil, errcode.New(errcode.InvalidArgument, "rawcmos.NewTable", "empty catalog")
	}
	return &Table{
		formats: append([]Format(nil), formats...),
		windows: append([]WindowSize(nil), windows...),
	}, nil
}

func (t *Table) NumFormats() int { return len(t.formats) }
func (t *Table) NumWindows() int { return len(t.windows) }

// Formats yields the formats in catalog order.
func (t *Table) Formats() iter.Seq[Format] {
	return func(yield func(Format) bool) {
		for _, f := range t.formats {
			if !yield(f) {
				return
			}
		}
	}
}

// Windows yields the window sizes in catalog order.
func (t *Table) Windows() iter.Seq[WindowSize] {
	return func(yield func(WindowSize) bool) {
		for _, w := range t.windows {
			if !yield(w) {
				return
			}
		}
	}
}

func (t *Table) FormatAt(i int) (Format, error) {
	if i < 0 || i >= len(t.formats) {
		return Format{}, outOfRange("rawcmos.FormatAt", i, len(t.formats))
	}
	return t.formats[i], nil
}

func (t *Table) WindowAt(i int) (WindowSize, error) {
	if i < 0 || i >= len(t.windows) {
		return WindowSize{}, outOfRange("rawcmos.WindowAt", i, len(t.windows))
	}
	return t.windows[i], nil
}

// FormatByCode returns the first format carrying code.
func (t *Table) FormatByCode(code Code) (Format, error) {
	i := t.formatIndex(code)
	if i < 0 {
		return Format{}, errcode.New(errcode.UnsupportedFormat, "rawcmos.FormatByCode", "code 0x"+strconv.FormatUint(uint64(code), 16))
	}
	return t.formats[i], nil
}

func (t *Table) formatIndex(code Code) int {
	for i := range t.formats {
		if t.formats[i].Code == code {
			return i
		}
	}
	return -1
}

func (t *Table) windowIndex(width, height uint32) int {
	for i := range t.windows {
		if t.windows[i].Width == width && t.windows[i].Height == height {
			return i
		}
	}
	return -1
}

// fitWindow rounds a request up to the first window that covers it, or
// clamps to the largest window when none does.
func (t *Table) fitWindow(width, height uint32) WindowSize {
	for _, w := range t.windows {
		if w.Width >= width && w.Height >= height {
			return w
		}
	}
	largest := t.windows[0]
	for _, w := range t.windows[1:] {
		if w.area() > largest.area() {
			largest = w
		}
	}
	return largest
}

func outOfRange(op string, i, n int) error {
	return errcode.New(errcode.OutOfRange, op, "index "+strconv.Itoa(i)+" not in [0,"+strconv.Itoa(n)+")")
}
