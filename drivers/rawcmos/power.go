package rawcmos

import (
	"strconv"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cpicam-go/errcode"
)

// Request selects a power transition. Values follow the host's sub-device
// power codes.
type Request int

const (
	StandbyOn  Request = iota // streaming -> standby
	StandbyOff                // standby -> streaming
	PowerOn                   // off -> streaming
	PowerOff                  // any -> off
)

func (r Request) String() string {
	switch r {
	case StandbyOn:
		return "standby_on"
	case StandbyOff:
		return "standby_off"
	case PowerOn:
		return "power_on"
	case PowerOff:
		return "power_off"
	default:
		return "request(" + strconv.Itoa(int(r)) + ")"
	}
}

// ParseRequest accepts a request name as printed by String, or its
// numeric code. Numeric codes are not range checked here; Power rejects
// unknown ones.
func ParseRequest(s string) (Request, error) {
	for r := StandbyOn; r <= PowerOff; r++ {
		if s == r.String() {
			return r, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Request(n), nil
	}
	return 0, errcode.New(errcode.InvalidArgument, "rawcmos.ParseRequest", strconv.Quote(s))
}

// PowerState is the logical power lifecycle state.
type PowerState uint8

const (
	Off PowerState = iota
	Standby
	Streaming
)

func (s PowerState) String() string {
	switch s {
	case Off:
		return "off"
	case Standby:
		return "standby"
	case Streaming:
		return "streaming"
	default:
		return "state?"
	}
}

// Line levels.
const (
	stbyOn  = true
	stbyOff = false
	rstOn   = false // RESET is active low
	rstOff  = true
	pwrOn   = true
	pwrOff  = false
)

// Minimum settle times.
const (
	settleRails   = 10 * time.Millisecond
	settleBoot    = 30 * time.Millisecond
	settleToggle  = 5 * time.Millisecond
	settleStandby = 10 * time.Millisecond
	settleReset   = 10 * time.Millisecond
)

type opKind uint8

const (
	opDirection opKind = iota
	opWrite
	opClockFreq
	opClock
	opRail
	opSettle
)

// step is one hardware operation or settle delay in a transition.
type step struct {
	kind  opKind
	line  Line
	dir   Direction
	level bool
	rail  Rail
	hz    uint32
	d     time.Duration
}

func direction(l Line, d Direction) step { return step{kind: opDirection, line: l, dir: d} }
func write(l Line, level bool) step      { return step{kind: opWrite, line: l, level: level} }
func mclkFreq(hz uint32) step            { return step{kind: opClockFreq, hz: hz} }
func mclk(on bool) step                  { return step{kind: opClock, level: on} }
func rail(r Rail, on bool) step          { return step{kind: opRail, rail: r, level: on} }
func settle(d time.Duration) step        { return step{kind: opSettle, d: d} }

func (s step) String() string {
	switch s.kind {
	case opDirection:
		return "dir " + s.line.String() + " " + s.dir.String()
	case opWrite:
		return "write " + s.line.String() + " " + strconv.FormatBool(s.level)
	case opClockFreq:
		return "mclk_freq " + strconv.FormatUint(uint64(s.hz), 10)
	case opClock:
		return "mclk " + strconv.FormatBool(s.level)
	case opRail:
		return "rail " + s.rail.String() + " " + strconv.FormatBool(s.level)
	default:
		return "settle " + s.d.String()
	}
}

// powerSteps returns the ordered operations for req and the state reached
// on success. ok is false for an unknown request. Standby requests on an
// unpowered sensor still drive PWDN and MCLK but leave it Off.
func (d *Device) powerSteps(req Request) (steps []step, next PowerState, ok bool) {
	switch req {
	case StandbyOn:
		return []step{
			write(LinePowerDown, stbyOn),
			settle(settleStandby),
			mclk(false),
		}, d.poweredOr(Standby), true
	case StandbyOff:
		return []step{
			write(LinePowerDown, stbyOff),
			settle(settleStandby),
			mclkFreq(d.mclkHz),
			mclk(true),
			settle(settleStandby),
		}, d.poweredOr(Streaming), true
	case PowerOn:
		return []step{
			direction(LinePowerDown, Output),
			direction(LineReset, Output),
			mclkFreq(d.mclkHz),
			mclk(true),
			write(LinePowerDown, stbyOff),
			write(LineReset, rstOn),
			write(LinePowerEnable, pwrOn),
			rail(RailIO, true),
			rail(RailAnalog, true),
			rail(RailDigital, true),
			rail(RailAF, true),
			settle(settleRails),
			write(LineReset, rstOff),
			settle(settleBoot),
		}, Streaming, true
	case PowerOff:
		return []step{
			write(LinePowerDown, stbyOff),
			write(LineReset, rstOff),
			settle(settleToggle),
			write(LineReset, rstOn),
			settle(settleToggle),
			write(LinePowerDown, stbyOn),
			settle(settleToggle),
			write(LineReset, rstOff),
			write(LinePowerEnable, pwrOff),
			rail(RailAF, false),
			rail(RailDigital, false),
			rail(RailAnalog, false),
			rail(RailIO, false),
			settle(settleRails),
			mclk(false),
			direction(LineReset, Input),
			direction(LinePowerDown, Input),
		}, Off, true
	default:
		return nil, d.power, false
	}
}

func (d *Device) poweredOr(s PowerState) PowerState {
	if d.power == Off {
		return Off
	}
	return s
}

// Power runs the transition selected by req and blocks for its settle
// delays. A started sequence always runs to its end; shim faults are
// collected and returned afterwards, and the power state is then left as
// it was.
func (d *Device) Power(req Request) error {
	steps, next, ok := d.powerSteps(req)
	if !ok {
		return errcode.New(errcode.InvalidArgument, "rawcmos.Power", req.String())
	}
	d.log.Debug("power", zap.Stringer("req", req), zap.Stringer("from", d.power))
	if err := d.run(steps); err != nil {
		d.log.Warn("power sequence faulted", zap.Stringer("req", req), zap.Error(err))
		return err
	}
	d.power = next
	return nil
}

// Reset drives RESET: 0 releases the sensor, 1 holds it in reset.
func (d *Device) Reset(level uint32) error {
	var asserted bool
	switch level {
	case 0:
	case 1:
		asserted = true
	default:
		return errcode.New(errcode.InvalidArgument, "rawcmos.Reset", "level "+strconv.FormatUint(uint64(level), 10))
	}
	lv := rstOff
	if asserted {
		lv = rstOn
	}
	if err := d.run([]step{write(LineReset, lv), settle(settleReset)}); err != nil {
		d.log.Warn("reset faulted", zap.Uint32("level", level), zap.Error(err))
		return err
	}
	d.resetAsserted = asserted
	return nil
}

func (d *Device) run(steps []step) error {
	var errs error
	for _, s := range steps {
		if err := d.exec(s); err != nil {
			c := errcode.Of(err)
			if c == errcode.Error {
				c = errcode.HardwareUnavailable
			}
			errs = multierr.Append(errs, &errcode.E{C: c, Op: "rawcmos: " + s.String(), Msg: err.Error(), Err: err})
		}
	}
	return errs
}

func (d *Device) exec(s step) error {
	switch s.kind {
	case opDirection:
		return d.hw.SetDirection(s.line, s.dir)
	case opWrite:
		return d.hw.Write(s.line, s.level)
	case opClockFreq:
		return d.hw.SetClockFrequency(s.hz)
	case opClock:
		return d.hw.EnableClock(s.level)
	case opRail:
		return d.hw.EnableRail(s.rail, s.level)
	default:
		d.clock.Sleep(s.d)
		return nil
	}
}
