package plume

import (
	"testing"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	data := []byte(`
dt: 0.005
substeps: 12
gravity:
  x: 0
  y: -9.81
restitution_threshold: 0.05
rect_cells:
  x: 2
  y: 2
`)

	cfg, err := ParseConfig(data)
	require.NoError(t, err)
	require.Equal(t, 0.005, cfg.Dt)
	require.Equal(t, 12, cfg.Substeps)
	require.Equal(t, -9.81, cfg.Gravity.Y)
	require.Equal(t, 0.05, cfg.RestitutionThreshold)
	require.Equal(t, 2.0, cfg.RectCells.X)
	// omitted cell sizes stay zero and mean auto-sizing
	require.Equal(t, 0.0, cfg.TriangleCells.X)
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed yaml", "dt: [what"},
		{"missing dt", "substeps: 10"},
		{"zero substeps", "dt: 0.01\nsubsteps: 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data))
			if err == nil {
				t.Error("ParseConfig() expected an error")
			}
		})
	}
}

func TestParseConfigValidationSentinel(t *testing.T) {
	_, err := ParseConfig([]byte("dt: -1\nsubsteps: 10"))
	require.True(t, errors.Is(err, ErrInvalidStep))
}

func TestNewSpaceFromConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte("dt: 0.01\nsubsteps: 8\ngravity: {x: 1, y: -5}"))
	require.NoError(t, err)

	space, err := NewSpaceFromConfig(cfg, golog.NewTestLogger(t))
	require.NoError(t, err)
	require.Equal(t, 0.01, space.Dt())
	require.Equal(t, 8, space.Substeps)
	require.Equal(t, 1.0, space.Gravity.X())
	require.Equal(t, -5.0, space.Gravity.Y())

	// the configured space steps like any other
	node, err := space.AddNode(0, 0, 1, 0, false)
	require.NoError(t, err)
	space.Step()
	require.InDelta(t, -0.05, node.Velocity.Y(), 1e-12)
}
