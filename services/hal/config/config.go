package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"cpicam-go/errcode"
)

// HALConfig is the board description the HAL applies.
type HALConfig struct {
	Devices []Device `yaml:"devices"`
}

// Device describes one physical device to be managed by the HAL.
type Device struct {
	ID     string `yaml:"id"`
	Type   string `yaml:"type"`
	Params any    `yaml:"params,omitempty"` // decoded by the device's builder
}

// Parse decodes and validates a YAML (or JSON) board description.
func Parse(b []byte) (HALConfig, error) {
	var cfg HALConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return HALConfig{}, errcode.Wrap(errcode.InvalidParams, "config.Parse", err)
	}
	if err := cfg.Validate(); err != nil {
		return HALConfig{}, err
	}
	return cfg, nil
}

// Load reads path and parses it.
func Load(path string) (HALConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return HALConfig{}, errcode.Wrap(errcode.InvalidParams, "config.Load", err)
	}
	return Parse(b)
}

// Validate checks that every device has an ID and a type, and that IDs
// are unique.
func (c HALConfig) Validate() error {
	seen := make(map[string]struct{}, len(c.Devices))
	for i, d := range c.Devices {
		switch {
		case d.ID == "":
			return errcode.New(errcode.InvalidParams, "config.Validate", "device "+itoa(i)+": missing id")
		case d.Type == "":
			return errcode.New(errcode.InvalidParams, "config.Validate", d.ID+": missing type")
		}
		if _, dup := seen[d.ID]; dup {
			return errcode.New(errcode.InvalidParams, "config.Validate", d.ID+": duplicate id")
		}
		seen[d.ID] = struct{}{}
	}
	return nil
}
