package errcode

import (
	"errors"
	"testing"

	"go.uber.org/multierr"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]Code{
		"invalid_argument":     InvalidArgument,
		"out_of_range":         OutOfRange,
		"unsupported_format":   UnsupportedFormat,
		"unsupported":          Unsupported,
		"hardware_unavailable": HardwareUnavailable,
		"unknown_device":       UnknownDevice,
	}
	for want, c := range cases {
		if c.Error() != want {
			t.Fatalf("code %q mismatch: got %q", want, c.Error())
		}
	}
}

func TestEMatchesCode(t *testing.T) {
	err := New(OutOfRange, "rawcmos.FormatAt", "index 3 not in [0,1)")
	if !errors.Is(err, OutOfRange) {
		t.Fatalf("errors.Is should match the carried code")
	}
	if errors.Is(err, Unsupported) {
		t.Fatalf("errors.Is matched a foreign code")
	}
	if got := err.Error(); got != "rawcmos.FormatAt: out_of_range: index 3 not in [0,1)" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestOf(t *testing.T) {
	if Of(nil) != OK {
		t.Fatalf("nil should map to OK")
	}
	if Of(Unsupported) != Unsupported {
		t.Fatalf("bare code lost")
	}
	if Of(errors.New("boom")) != Error {
		t.Fatalf("foreign error should map to Error")
	}
	cause := errors.New("line not wired")
	if Of(Wrap(HardwareUnavailable, "gpio", cause)) != HardwareUnavailable {
		t.Fatalf("wrapped code lost")
	}
	joined := multierr.Combine(New(HardwareUnavailable, "rail", "afvdd"), errors.New("other"))
	if Of(joined) != HardwareUnavailable {
		t.Fatalf("joined error should report first code, got %q", Of(joined))
	}
	if Wrap(Error, "op", nil) != nil {
		t.Fatalf("Wrap(nil) should be nil")
	}
}
