package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpicam-go/errcode"
)

type nopBuilder struct{}

func (nopBuilder) Build(context.Context, BuilderInput) (Device, error) { return nil, nil }

func TestRegisterBuilder(t *testing.T) {
	RegisterBuilder("core_test_a", nopBuilder{})

	_, ok := LookupBuilder("core_test_a")
	assert.True(t, ok)
	_, ok = LookupBuilder("core_test_missing")
	assert.False(t, ok)
	assert.Contains(t, BuilderTypes(), "core_test_a")

	assert.Panics(t, func() { RegisterBuilder("core_test_a", nopBuilder{}) })
}

type sample struct {
	Level uint32 `yaml:"level"`
}

func TestAs(t *testing.T) {
	v, c := As[sample](sample{Level: 1})
	assert.Empty(t, c)
	assert.Equal(t, uint32(1), v.Level)

	v, c = As[sample](nil)
	assert.Empty(t, c)
	assert.Zero(t, v)

	_, c = As[sample](&sample{})
	assert.Equal(t, errcode.InvalidPayload, c)
}

func TestPayloadDecodesLooseForms(t *testing.T) {
	for name, in := range map[string]any{
		"typed": sample{Level: 1},
		"map":   map[string]any{"level": 1},
		"json":  []byte(`{"level":1}`),
		"yaml":  "level: 1",
	} {
		v, err := Payload[sample]("test", in)
		require.NoError(t, err, name)
		assert.Equal(t, uint32(1), v.Level, name)
	}
}

func TestPayloadRejects(t *testing.T) {
	_, err := Payload[sample]("test", 42)
	assert.ErrorIs(t, err, errcode.InvalidPayload)

	_, err = Payload[sample]("test", map[string]any{"level": "high"})
	assert.ErrorIs(t, err, errcode.InvalidPayload)
}
