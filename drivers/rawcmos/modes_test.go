package rawcmos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpicam-go/errcode"
)

func TestDefaultTable(t *testing.T) {
	tab := DefaultTable()
	require.Equal(t, 1, tab.NumFormats())
	require.Equal(t, 1, tab.NumWindows())

	f, err := tab.FormatAt(0)
	require.NoError(t, err)
	assert.Equal(t, CodeGrey8, f.Code)
	assert.Equal(t, "Raw 8-bit CMOS data", f.Desc)
	assert.Equal(t, 1, f.BPP)

	w, err := tab.WindowAt(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(2048), w.Width)
	assert.Equal(t, uint32(2048), w.Height)
}

func TestIndexOutOfRange(t *testing.T) {
	tab := DefaultTable()
	for _, i := range []int{1, 2, 100, -1} {
		_, err := tab.FormatAt(i)
		assert.ErrorIs(t, err, errcode.OutOfRange, "format %d", i)
		_, err = tab.WindowAt(i)
		assert.ErrorIs(t, err, errcode.OutOfRange, "window %d", i)
	}
	_, err := tab.WindowAt(1)
	assert.EqualError(t, err, "rawcmos.WindowAt: out_of_range: index 1 not in [0,1)")
}

func TestIteratorsFollowCatalogOrder(t *testing.T) {
	tab := mustTable(t,
		[]Format{{Code: CodeGrey8}, {Code: 0x3001}},
		WindowSize{Width: 2048, Height: 2048}, WindowVGA, WindowSize{Width: 1280, Height: 720})

	var widths []uint32
	for w := range tab.Windows() {
		widths = append(widths, w.Width)
	}
	assert.Equal(t, []uint32{2048, 640, 1280}, widths)

	// Early exit and restart.
	for range tab.Windows() {
		break
	}
	var codes []Code
	for f := range tab.Formats() {
		codes = append(codes, f.Code)
	}
	assert.Equal(t, []Code{CodeGrey8, 0x3001}, codes)
}

func TestNewTableRejectsEmptyLists(t *testing.T) {
	_, err := NewTable(nil, []WindowSize{WindowVGA})
	assert.ErrorIs(t, err, errcode.InvalidArgument)
	_, err = NewTable([]Format{{Code: CodeGrey8}}, nil)
	assert.ErrorIs(t, err, errcode.InvalidArgument)
}

func TestNewTableCopiesLists(t *testing.T) {
	windows := []WindowSize{WindowVGA}
	tab := mustTable(t, []Format{{Code: CodeGrey8}}, windows...)
	windows[0].Width = 1
	w, err := tab.WindowAt(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(640), w.Width)
}

func TestFormatByCode(t *testing.T) {
	tab := DefaultTable()
	f, err := tab.FormatByCode(CodeGrey8)
	require.NoError(t, err)
	assert.Equal(t, CodeGrey8, f.Code)

	_, err = tab.FormatByCode(0x3001)
	assert.ErrorIs(t, err, errcode.UnsupportedFormat)
	assert.Contains(t, err.Error(), "0x3001")
}

func TestFitWindow(t *testing.T) {
	tab := mustTable(t, []Format{{Code: CodeGrey8}},
		WindowVGA,
		WindowSize{Width: 1280, Height: 720},
		WindowSize{Width: 2048, Height: 2048},
	)
	cases := []struct {
		name          string
		width, height uint32
		wantW, wantH  uint32
	}{
		{"exact", 640, 480, 640, 480},
		{"rounds up to first cover", 800, 600, 1280, 720},
		{"width forces larger", 1300, 700, 2048, 2048},
		{"height forces larger", 100, 1000, 2048, 2048},
		{"zero request", 0, 0, 640, 480},
		{"larger than all", 5000, 10, 2048, 2048},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := tab.fitWindow(c.width, c.height)
			assert.Equal(t, c.wantW, w.Width)
			assert.Equal(t, c.wantH, w.Height)
		})
	}
}

func TestFitWindowUsesCatalogOrder(t *testing.T) {
	tab := mustTable(t, []Format{{Code: CodeGrey8}},
		WindowSize{Width: 2048, Height: 2048},
		WindowVGA,
	)
	w := tab.fitWindow(100, 100)
	assert.Equal(t, uint32(2048), w.Width)
}

func TestFitWindowLargestTieKeepsFirst(t *testing.T) {
	tab := mustTable(t, []Format{{Code: CodeGrey8}},
		WindowSize{Width: 200, Height: 100, HOffset: 1},
		WindowSize{Width: 100, Height: 200, HOffset: 2},
	)
	w := tab.fitWindow(300, 300)
	assert.Equal(t, uint32(1), w.HOffset)
}
