package rawcmos

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpicam-go/errcode"
)

func TestTryFormatRoundsToCatalog(t *testing.T) {
	d, tl := newTestDevice(t, Config{})
	for _, req := range [][2]uint32{{100, 100}, {4096, 4096}, {2048, 2048}, {1, 3000}} {
		m, err := d.TryFormat(CodeGrey8, req[0], req[1])
		require.NoError(t, err)
		assert.Equal(t, uint32(2048), m.Window.Width, "%v", req)
		assert.Equal(t, uint32(2048), m.Window.Height, "%v", req)
		assert.Equal(t, FieldNone, m.Field)
		assert.Equal(t, CodeGrey8, m.Format.Code)
	}
	assert.Empty(t, tl.ops)
	assert.Zero(t, d.State().Width, "try must not commit")
}

func TestTryFormatUnknownCode(t *testing.T) {
	d, _ := newTestDevice(t, Config{})
	_, err := d.TryFormat(0x3001, 640, 480)
	assert.ErrorIs(t, err, errcode.UnsupportedFormat)
}

func TestSetFormatCommits(t *testing.T) {
	d, _ := newTestDevice(t, Config{})
	m, err := d.SetFormat(CodeGrey8, 1920, 1080)
	require.NoError(t, err)
	assert.Equal(t, uint32(2048), m.Window.Width)

	st := d.State()
	assert.Equal(t, CodeGrey8, st.Format.Code)
	assert.Equal(t, uint32(2048), st.Width)
	assert.Equal(t, uint32(2048), st.Height)
}

func TestSetFormatIsIdempotent(t *testing.T) {
	d, _ := newTestDevice(t, Config{})
	m1, err := d.SetFormat(CodeGrey8, 640, 480)
	require.NoError(t, err)
	s1 := d.State()

	m2, err := d.SetFormat(CodeGrey8, 640, 480)
	require.NoError(t, err)
	assert.Equal(t, m1.Window.Width, m2.Window.Width)
	assert.Equal(t, s1, d.State())
}

func TestSetFormatUnknownCodeKeepsState(t *testing.T) {
	d, _ := newTestDevice(t, Config{})
	_, err := d.SetFormat(CodeGrey8, 100, 100)
	require.NoError(t, err)
	before := d.State()

	_, err = d.SetFormat(0x3001, 640, 480)
	assert.ErrorIs(t, err, errcode.UnsupportedFormat)
	assert.Equal(t, before, d.State())
}

func TestCommitWritesRegisterLists(t *testing.T) {
	bus := &fakeI2C{}
	tab := mustTable(t,
		[]Format{{Code: CodeGrey8, Regs: []Reg{{0x12, 0x80}, {0x3a, 0x04}}}},
		WindowSize{Width: 640, Height: 480, Regs: []Reg{{0x17, 0x13}}},
	)
	d, _ := newTestDevice(t, Config{Table: tab, Bus: bus, Address: 0x21})

	_, err := d.SetFormat(CodeGrey8, 640, 480)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x21), bus.addr)
	assert.Equal(t, [][2]byte{{0x12, 0x80}, {0x3a, 0x04}, {0x17, 0x13}}, bus.writes)
}

func TestCommitRegistersWithoutBus(t *testing.T) {
	tab := mustTable(t,
		[]Format{{Code: CodeGrey8}},
		WindowSize{Width: 640, Height: 480, Regs: []Reg{{0x17, 0x13}}},
	)
	d, _ := newTestDevice(t, Config{Table: tab})

	_, err := d.SetFormat(CodeGrey8, 640, 480)
	assert.ErrorIs(t, err, errcode.HardwareUnavailable)
	assert.Zero(t, d.State().Width)
}

func TestCommitBusFaultKeepsPreviousMode(t *testing.T) {
	bus := &fakeI2C{}
	tab := mustTable(t,
		[]Format{{Code: CodeGrey8}},
		WindowSize{Width: 640, Height: 480},
		WindowSize{Width: 2048, Height: 2048, Regs: []Reg{{0x17, 0x11}}},
	)
	d, _ := newTestDevice(t, Config{Table: tab, Bus: bus})
	_, err := d.SetFormat(CodeGrey8, 640, 480)
	require.NoError(t, err)

	bus.err = errors.New("nack")
	_, err = d.SetFormat(CodeGrey8, 2048, 2048)
	assert.ErrorIs(t, err, errcode.HardwareUnavailable)
	assert.Contains(t, err.Error(), "reg 0x17")
	assert.Equal(t, uint32(640), d.State().Width)
}

func TestCommitSetSizeFailureIsAtomic(t *testing.T) {
	calls := 0
	tab := mustTable(t,
		[]Format{{Code: CodeGrey8}},
		WindowSize{Width: 640, Height: 480},
		WindowSize{Width: 1280, Height: 720, SetSize: func() error {
			calls++
			return errors.New("sizer offline")
		}},
	)
	d, _ := newTestDevice(t, Config{Table: tab})
	_, err := d.SetFormat(CodeGrey8, 640, 480)
	require.NoError(t, err)

	_, err = d.SetFormat(CodeGrey8, 1280, 720)
	assert.ErrorIs(t, err, errcode.HardwareUnavailable)
	assert.Equal(t, 1, calls)
	assert.Equal(t, uint32(640), d.State().Width)
	assert.Equal(t, uint32(480), d.State().Height)
}

func TestCommitRejectsModesOutsideCatalog(t *testing.T) {
	d, _ := newTestDevice(t, Config{})

	err := d.Commit(Mode{Format: Format{Code: CodeGrey8}, Window: WindowSize{Width: 10, Height: 10}})
	assert.ErrorIs(t, err, errcode.InvalidArgument)

	err = d.Commit(Mode{Format: Format{Code: 0x3001}, Window: WindowSize{Width: 2048, Height: 2048}})
	assert.ErrorIs(t, err, errcode.UnsupportedFormat)
	assert.Zero(t, d.State().Width)
}

func TestVGACommitSwitchesBaseline(t *testing.T) {
	tab := mustTable(t, []Format{{Code: CodeGrey8}}, WindowVGA, WindowSize{Width: 2048, Height: 2048})

	d, _ := newTestDevice(t, Config{Table: tab})
	assert.Equal(t, FrameInterval{1, DefaultFPS}, d.FrameInterval())

	_, err := d.SetFormat(CodeGrey8, 640, 480)
	require.NoError(t, err)
	assert.Equal(t, FrameInterval{1, 25}, d.FrameInterval())
	assert.Equal(t, Baseline{PixelClockHz: 34_000_000, FPS: 25}, d.State().Baseline)

	// Moving off VGA does not restore the old baseline.
	_, err = d.SetFormat(CodeGrey8, 2048, 2048)
	require.NoError(t, err)
	assert.Equal(t, uint32(25), d.State().Baseline.FPS)
}

func TestHighResKeepsBaseline(t *testing.T) {
	tab := mustTable(t, []Format{{Code: CodeGrey8}}, WindowVGA)
	d, _ := newTestDevice(t, Config{Table: tab, HighRes: true})

	_, err := d.SetFormat(CodeGrey8, 640, 480)
	require.NoError(t, err)
	assert.Equal(t, FrameInterval{1, DefaultFPS}, d.FrameInterval())
	assert.Equal(t, uint32(24_000_000), d.State().Baseline.PixelClockHz)
}

func TestTryFormatDoesNotApplyBaseline(t *testing.T) {
	tab := mustTable(t, []Format{{Code: CodeGrey8}}, WindowVGA)
	d, _ := newTestDevice(t, Config{Table: tab})

	_, err := d.TryFormat(CodeGrey8, 640, 480)
	require.NoError(t, err)
	assert.Equal(t, uint32(DefaultFPS), d.State().Baseline.FPS)
}
