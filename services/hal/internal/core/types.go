package core

import (
	"context"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
	"tinygo.org/x/drivers"

	"cpicam-go/types"
)

// ---- Capability & device model ----

type CapabilitySpec struct {
	Kind types.Kind
	Info types.Info
}

// Device is a HAL-managed device. The HAL serialises all calls on one
// device; implementations need no locking of their own.
type Device interface {
	ID() string
	Capabilities() []CapabilitySpec
	Init(ctx context.Context) error
	Control(kind types.Kind, verb string, payload any) (any, error)
	Close() error
}

// ---- HAL-injected resources ----

// PinSource resolves board pin names. A nil result means no such pin.
type PinSource interface {
	ByName(name string) gpio.PinIO
}

// BusSource opens a named control bus.
type BusSource interface {
	OpenI2C(name string) (drivers.I2C, error)
}

type Resources struct {
	Pins  PinSource
	Buses BusSource       // optional
	Clock clockwork.Clock // settle delays; real clock when nil
	Log   *zap.Logger
}

// Builder input
type BuilderInput struct {
	ID, Type string
	Params   any
	Res      Resources
}

type Builder interface {
	Build(ctx context.Context, in BuilderInput) (Device, error)
}
