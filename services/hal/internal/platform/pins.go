package platform

import (
	"sync"

	"go.uber.org/multierr"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"tinygo.org/x/drivers"

	"cpicam-go/errcode"
)

// HostPins resolves pin names through periph's GPIO registry. host.Init
// must have been called.
type HostPins struct{}

func (HostPins) ByName(name string) gpio.PinIO { return gpioreg.ByName(name) }

// PinFunc adapts a lookup function to a pin source.
type PinFunc func(name string) gpio.PinIO

func (f PinFunc) ByName(name string) gpio.PinIO { return f(name) }

// HostBuses opens I2C buses through periph's registry and keeps them for
// Close.
type HostBuses struct {
	mu     sync.Mutex
	opened []i2c.BusCloser
}

func (b *HostBuses) OpenI2C(name string) (drivers.I2C, error) {
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, errcode.Wrap(errcode.HardwareUnavailable, "platform.OpenI2C: "+name, err)
	}
	b.mu.Lock()
	b.opened = append(b.opened, bus)
	b.mu.Unlock()
	return bus, nil
}

func (b *HostBuses) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var errs error
	for _, bus := range b.opened {
		errs = multierr.Append(errs, bus.Close())
	}
	b.opened = nil
	return errs
}

// SimPins hands out in-memory pins, creating each on first use. Every name
// resolves, so a simulated board never reports an unknown pin.
type SimPins struct {
	mu   sync.Mutex
	pins map[string]*gpiotest.Pin
}

func NewSimPins() *SimPins {
	return &SimPins{pins: map[string]*gpiotest.Pin{}}
}

func (s *SimPins) ByName(name string) gpio.PinIO { return s.Pin(name) }

// Pin returns the simulated pin for name.
func (s *SimPins) Pin(name string) *gpiotest.Pin {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pins[name]
	if !ok {
		p = &gpiotest.Pin{N: name, Num: len(s.pins)}
		s.pins[name] = p
	}
	return p
}

// SimBus is a control bus that accepts every write.
type SimBus struct {
	mu     sync.Mutex
	Writes [][]byte
}

func (b *SimBus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	b.Writes = append(b.Writes, append([]byte(nil), w...))
	b.mu.Unlock()
	return nil
}

// SimBuses opens the same SimBus under every name.
type SimBuses struct{ Bus SimBus }

func (s *SimBuses) OpenI2C(string) (drivers.I2C, error) { return &s.Bus, nil }
