package rawcmos

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ---- Test doubles ----

// timeline records shim calls and settle delays in the order they happen.
// Entries use the same spelling as step.String().
type timeline struct {
	ops  []string
	fail map[string]error
}

func (tl *timeline) record(op string) error {
	tl.ops = append(tl.ops, op)
	return tl.fail[op]
}

func (tl *timeline) reset() { tl.ops = nil }

type fakeHW struct{ tl *timeline }

func (h fakeHW) SetDirection(l Line, d Direction) error {
	return h.tl.record("dir " + l.String() + " " + d.String())
}
func (h fakeHW) Write(l Line, level bool) error {
	return h.tl.record("write " + l.String() + " " + strconv.FormatBool(level))
}
func (h fakeHW) EnableClock(on bool) error {
	return h.tl.record("mclk " + strconv.FormatBool(on))
}
func (h fakeHW) SetClockFrequency(hz uint32) error {
	return h.tl.record("mclk_freq " + strconv.FormatUint(uint64(hz), 10))
}
func (h fakeHW) EnableRail(r Rail, on bool) error {
	return h.tl.record("rail " + r.String() + " " + strconv.FormatBool(on))
}

type fakeClock struct{ tl *timeline }

func (c fakeClock) Sleep(d time.Duration) { _ = c.tl.record("settle " + d.String()) }

// fakeI2C records two-byte register writes.
type fakeI2C struct {
	addr   uint16
	writes [][2]byte
	err    error
}

func (b *fakeI2C) Tx(addr uint16, w, r []byte) error {
	if b.err != nil {
		return b.err
	}
	b.addr = addr
	b.writes = append(b.writes, [2]byte{w[0], w[1]})
	return nil
}

// mockHardware is a testify mock of Hardware.
type mockHardware struct{ mock.Mock }

func (m *mockHardware) SetDirection(l Line, d Direction) error { return m.Called(l, d).Error(0) }
func (m *mockHardware) Write(l Line, level bool) error         { return m.Called(l, level).Error(0) }
func (m *mockHardware) EnableClock(on bool) error              { return m.Called(on).Error(0) }
func (m *mockHardware) SetClockFrequency(hz uint32) error      { return m.Called(hz).Error(0) }
func (m *mockHardware) EnableRail(r Rail, on bool) error       { return m.Called(r, on).Error(0) }

func newTestDevice(t *testing.T, cfg Config) (*Device, *timeline) {
	t.Helper()
	tl := &timeline{fail: map[string]error{}}
	if cfg.Clock == nil {
		cfg.Clock = fakeClock{tl}
	}
	d, err := New(fakeHW{tl}, cfg)
	require.NoError(t, err)
	return d, tl
}

func mustTable(t *testing.T, formats []Format, windows ...WindowSize) *Table {
	t.Helper()
	tab, err := NewTable(formats, windows)
	require.NoError(t, err)
	return tab
}
