package core

import (
	"cpicam-go/errcode"
	"cpicam-go/services/hal/internal/util"
)

// As[T] asserts a payload to the concrete value type T.
// Pointers are not accepted. A nil payload is treated as the zero value of T.
func As[T any](v any) (T, errcode.Code) {
	var zero T
	if v == nil {
		return zero, ""
	}
	t, ok := v.(T)
	if !ok {
		return zero, errcode.InvalidPayload
	}
	return t, ""
}

// Payload is As with a fallback for loosely typed payloads: maps, and
// JSON or YAML documents as bytes or string, are decoded into T.
func Payload[T any](op string, v any) (T, error) {
	t, c := As[T](v)
	if c == "" {
		return t, nil
	}
	switch v.(type) {
	case map[string]any, []byte, string:
		var out T
		if err := util.Decode(v, &out); err != nil {
			return out, errcode.Wrap(errcode.InvalidPayload, op, err)
		}
		return out, nil
	}
	return t, errcode.New(c, op, "unexpected payload type")
}
