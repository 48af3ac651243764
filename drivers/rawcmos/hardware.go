package rawcmos

// Line names a control GPIO wired to the sensor.
type Line uint8

const (
	LineReset       Line = iota // RESET, active low
	LinePowerEnable             // POWER_EN, active high
	LinePowerDown               // PWDN (standby), active high
)

func (l Line) String() string {
	switch l {
	case LineReset:
		return "reset"
	case LinePowerEnable:
		return "power_en"
	case LinePowerDown:
		return "pwdn"
	default:
		return "line?"
	}
}

// Direction of a control GPIO.
type Direction uint8

const (
	Input Direction = iota // tri-state
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// Rail is an independently switched supply feeding one voltage domain.
type Rail uint8

const (
	RailIO      Rail = iota // IOVDD
	RailAnalog              // AVDD
	RailDigital             // DVDD
	RailAF                  // AFVDD, focus actuator

	NumRails = 4
)

func (r Rail) String() string {
	switch r {
	case RailIO:
		return "iovdd"
	case RailAnalog:
		return "avdd"
	case RailDigital:
		return "dvdd"
	case RailAF:
		return "afvdd"
	default:
		return "rail?"
	}
}

// Hardware is the board-level access the sensor needs. Every method fails
// with errcode.HardwareUnavailable when the line, clock or rail is not wired
// on this board. Implementations are driven by one caller at a time.
type Hardware interface {
	SetDirection(l Line, d Direction) error
	Write(l Line, level bool) error
	EnableClock(on bool) error
	SetClockFrequency(hz uint32) error
	EnableRail(r Rail, on bool) error
}
