package util

import (
	"gopkg.in/yaml.v3"
)

// Decode converts a loosely typed document into dst. Bytes and strings are
// parsed as YAML (which also accepts JSON); anything else is re-encoded
// first, so maps decoded from a config file land in typed params.
func Decode[T any](src any, dst *T) error {
	switch v := src.(type) {
	case []byte:
		return yaml.Unmarshal(v, dst)
	case string:
		return yaml.Unmarshal([]byte(v), dst)
	default:
		b, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		return yaml.Unmarshal(b, dst)
	}
}
