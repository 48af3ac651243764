// services/hal/hal.go
package hal

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cpicam-go/errcode"
	"cpicam-go/services/hal/config"
	"cpicam-go/services/hal/internal/core"
	"cpicam-go/types"

	// Device builders register themselves.
	_ "cpicam-go/services/hal/devices/cpicam"
)

// -----------------------------------------------------------------------------
// Types
// -----------------------------------------------------------------------------

// devEntry serialises access to one device. A control request holds mu for
// its whole run, so a power transition is never interleaved with another
// request on the same device.
type devEntry struct {
	mu   sync.Mutex
	dev  core.Device
	typ  string
	kind types.Kind
	caps []core.CapabilitySpec
}

// DeviceInfo describes a configured device.
type DeviceInfo struct {
	ID   string
	Type string
	Kind types.Kind
	Info types.Info
}

type HAL struct {
	res core.Resources
	log *zap.Logger

	mu      sync.RWMutex
	devices map[string]*devEntry
}

// -----------------------------------------------------------------------------
// Entry point
// -----------------------------------------------------------------------------

func New(res Resources) *HAL {
	if res.Log == nil {
		res.Log = zap.NewNop()
	}
	return &HAL{
		res:     res,
		log:     res.Log.Named("hal"),
		devices: map[string]*devEntry{},
	}
}

// Apply brings the device set in line with cfg. Devices already present are
// kept as they are; new ones are built and initialised; devices no longer
// listed are closed. A device that fails to build is skipped and reported;
// the rest of the configuration is still applied.
func (h *HAL) Apply(ctx context.Context, cfg config.HALConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	var errs error
	seen := map[string]struct{}{}

	for _, d := range cfg.Devices {
		seen[d.ID] = struct{}{}

		h.mu.RLock()
		_, exists := h.devices[d.ID]
		h.mu.RUnlock()
		if exists {
			continue
		}

		ent, err := h.build(ctx, d)
		if err != nil {
			h.log.Warn("device build failed", zap.String("id", d.ID), zap.String("type", d.Type), zap.Error(err))
			errs = multierr.Append(errs, err)
			continue
		}
		h.mu.Lock()
		if _, dup := h.devices[d.ID]; dup {
			// A concurrent Apply stored this id first.
			h.mu.Unlock()
			errs = multierr.Append(errs, h.closeEntry(ent))
			continue
		}
		h.devices[d.ID] = ent
		h.mu.Unlock()
		h.log.Info("device ready", zap.String("id", d.ID), zap.String("type", d.Type))
	}

	// Tidy-up devices not in config
	h.mu.Lock()
	var gone []*devEntry
	for id, ent := range h.devices {
		if _, ok := seen[id]; ok {
			continue
		}
		gone = append(gone, ent)
		delete(h.devices, id)
	}
	h.mu.Unlock()
	for _, ent := range gone {
		errs = multierr.Append(errs, h.closeEntry(ent))
	}
	return errs
}

func (h *HAL) build(ctx context.Context, d config.Device) (*devEntry, error) {
	b, ok := core.LookupBuilder(d.Type)
	if !ok {
		return nil, errcode.New(errcode.UnknownDevice, "hal.Apply",
			d.ID+": no builder for type "+d.Type+" (known: "+strings.Join(core.BuilderTypes(), ", ")+")")
	}
	dev, err := b.Build(ctx, core.BuilderInput{ID: d.ID, Type: d.Type, Params: d.Params, Res: h.res})
	if err != nil {
		return nil, &errcode.E{C: errcode.Of(err), Op: "hal.Apply", Msg: d.ID + ": " + err.Error(), Err: err}
	}
	if err := dev.Init(ctx); err != nil {
		return nil, multierr.Combine(
			&errcode.E{C: errcode.Of(err), Op: "hal.Apply", Msg: d.ID + ": init: " + err.Error(), Err: err},
			dev.Close(),
		)
	}
	caps := dev.Capabilities()
	ent := &devEntry{dev: dev, typ: d.Type, caps: caps}
	if len(caps) > 0 {
		ent.kind = caps[0].Kind
	}
	return ent, nil
}

// Control runs verb on device id. Requests on one device are serialised;
// a request whose context is done by the time it would start is rejected
// without touching the device, but a started request runs to completion.
func (h *HAL) Control(ctx context.Context, id, verb string, payload any) (any, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	h.mu.RLock()
	ent, ok := h.devices[id]
	h.mu.RUnlock()
	if !ok {
		return nil, errcode.New(errcode.UnknownDevice, "hal.Control", id)
	}

	ent.mu.Lock()
	defer ent.mu.Unlock()
	if ent.dev == nil {
		return nil, errcode.New(errcode.UnknownDevice, "hal.Control", id+" closed")
	}
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	out, err := ent.dev.Control(ent.kind, verb, payload)
	if err != nil {
		h.log.Debug("control failed", zap.String("id", id), zap.String("verb", verb), zap.Error(err))
		return nil, err
	}
	return out, nil
}

func ctxErr(ctx context.Context) error {
	err := ctx.Err()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return errcode.Wrap(errcode.Timeout, "hal.Control", err)
	default:
		return errcode.Wrap(errcode.Error, "hal.Control", err)
	}
}

// Devices lists the configured devices, sorted by ID.
func (h *HAL) Devices() []DeviceInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]DeviceInfo, 0, len(h.devices))
	for id, ent := range h.devices {
		di := DeviceInfo{ID: id, Type: ent.typ, Kind: ent.kind}
		if len(ent.caps) > 0 {
			di.Info = ent.caps[0].Info
		}
		out = append(out, di)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Close closes every device. Each waits for its in-flight request.
func (h *HAL) Close() error {
	h.mu.Lock()
	all := h.devices
	h.devices = map[string]*devEntry{}
	h.mu.Unlock()

	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var errs error
	for _, id := range ids {
		errs = multierr.Append(errs, h.closeEntry(all[id]))
	}
	return errs
}

func (h *HAL) closeEntry(ent *devEntry) error {
	ent.mu.Lock()
	defer ent.mu.Unlock()
	if ent.dev == nil {
		return nil
	}
	id := ent.dev.ID()
	err := ent.dev.Close()
	ent.dev = nil
	if err != nil {
		h.log.Warn("device close failed", zap.String("id", id), zap.Error(err))
		return errcode.Wrap(errcode.Of(err), "hal.Close: "+id, err)
	}
	h.log.Info("device closed", zap.String("id", id))
	return nil
}
