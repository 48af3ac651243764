package hal

import (
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"cpicam-go/services/hal/internal/core"
	"cpicam-go/services/hal/internal/platform"
)

type (
	// Resources are handed to every device builder.
	Resources = core.Resources
	PinSource = core.PinSource
	BusSource = core.BusSource

	HostBuses = platform.HostBuses
	SimPins   = platform.SimPins
	SimBuses  = platform.SimBuses
)

// HostResources resolves pins and I2C buses through periph's registries.
// host.Init must have run. Close the returned buses when done.
func HostResources(log *zap.Logger) (Resources, *HostBuses) {
	buses := &HostBuses{}
	return Resources{
		Pins:  platform.HostPins{},
		Buses: buses,
		Clock: clockwork.NewRealClock(),
		Log:   log,
	}, buses
}

// SimResources backs every pin name with an in-memory pin.
func SimResources(log *zap.Logger, clock clockwork.Clock) (Resources, *SimPins) {
	pins := platform.NewSimPins()
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return Resources{
		Pins:  pins,
		Buses: &SimBuses{},
		Clock: clock,
		Log:   log,
	}, pins
}
