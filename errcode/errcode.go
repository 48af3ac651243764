package errcode

import "errors"

// Code is a stable, caller-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK                  Code = "ok"
	InvalidArgument     Code = "invalid_argument"
	OutOfRange          Code = "out_of_range"
	UnsupportedFormat   Code = "unsupported_format"
	Unsupported         Code = "unsupported"
	HardwareUnavailable Code = "hardware_unavailable"

	// HAL plane
	InvalidPayload Code = "invalid_payload"
	InvalidParams  Code = "invalid_params"
	UnknownDevice  Code = "unknown_device"
	Timeout        Code = "timeout"

	Error Code = "error" // generic fallback
)

// E keeps a code together with the operation, the offending value and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

// New builds an *E without a cause.
func New(c Code, op, msg string) *E { return &E{C: c, Op: op, Msg: msg} }

// Wrap builds an *E around err. A nil err yields nil.
func Wrap(c Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: c, Op: op, Msg: err.Error(), Err: err}
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is(err, SomeCode) match an *E carrying that code.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// Of extracts a Code from an error, defaulting to Error.
// Joined errors report the first code found.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	type coder interface{ Code() Code }
	var x coder
	if errors.As(err, &x) {
		return x.Code()
	}
	return Error
}
