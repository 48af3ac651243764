package timex

import "time"

// Sleeper blocks the caller for at least d.
// clockwork.Clock (real or fake) satisfies it.
type Sleeper interface {
	Sleep(d time.Duration)
}

// HzFromMHz converts a whole-megahertz figure to hertz.
func HzFromMHz(mhz uint32) uint32 { return mhz * 1_000_000 }

// PeriodFromHz returns a nanosecond period for a requested frequency.
// freqHz==0 is coerced to 1 to avoid division by zero.
func PeriodFromHz(freqHz uint32) time.Duration {
	if freqHz == 0 {
		freqHz = 1
	}
	return time.Duration(1_000_000_000 / uint64(freqHz))
}
