package rawcmos

import "cpicam-go/x/mathx"

// maxDivisor bounds the rate divider applied to the nominal frame rate.
const maxDivisor = 8

// FrameInterval is a time-per-frame fraction in seconds.
type FrameInterval struct {
	Numerator   uint32
	Denominator uint32
}

// FrameInterval reports the nominal rate as 1/fps.
func (d *Device) FrameInterval() FrameInterval {
	return FrameInterval{Numerator: 1, Denominator: d.baseline.FPS}
}

// SetFrameInterval maps a requested interval onto one of the eight
// dividers of the nominal rate and returns the interval actually
// delivered. A zero numerator or denominator selects the full rate. The
// sensor has no rate register, so nothing is written to hardware.
func (d *Device) SetFrameInterval(in FrameInterval) FrameInterval {
	fps := uint64(d.baseline.FPS)
	div := uint64(1)
	if in.Numerator != 0 && in.Denominator != 0 {
		div = mathx.Clamp(mathx.RoundDiv(uint64(in.Numerator)*fps, uint64(in.Denominator)), 1, maxDivisor)
	}
	return FrameInterval{Numerator: 1, Denominator: uint32(fps / div)}
}
