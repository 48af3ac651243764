package types

// ---- Capability kinds & info ----

type Kind string

const (
	KindCamera Kind = "camera"
)

// Info envelope each device/cap exposes.
type Info struct {
	SchemaVersion int    `json:"schema_version" yaml:"schema_version"`
	Driver        string `json:"driver" yaml:"driver"`
	Detail        any    `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// ---- Generic replies ----

type OKReply struct {
	OK bool `json:"ok" yaml:"ok"`
}
