package plume

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config mirrors the NewSpace parameters so that solver settings can be kept
// in a yaml file next to the experiment that uses them. Scene content (nodes,
// links, obstacles) is deliberately not part of it; assembling bodies is the
// host's job.
type Config struct {
	Dt       float64 `yaml:"dt"`
	Substeps int     `yaml:"substeps"`
	Gravity  struct {
		X float64 `yaml:"x"`
		Y float64 `yaml:"y"`
	} `yaml:"gravity"`
	RestitutionThreshold float64 `yaml:"restitution_threshold"`

	// Cell sizes for the detectors' grids. Zero or negative means auto-sized
	// from the obstacle set.
	RectCells     CellConfig `yaml:"rect_cells"`
	TriangleCells CellConfig `yaml:"triangle_cells"`
}

type CellConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// ParseConfig unmarshals and validates a yaml solver configuration.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parse config")
	}
	if cfg.Dt <= 0 || cfg.Substeps < 1 {
		return cfg, errors.Wrapf(ErrInvalidStep, "dt %g, substeps %d", cfg.Dt, cfg.Substeps)
	}
	return cfg, nil
}

// NewSpaceFromConfig builds a space from a parsed configuration.
func NewSpaceFromConfig(cfg Config, logger golog.Logger) (*Space, error) {
	return newSpace(cfg.Dt, cfg.Substeps, cfg.Gravity.X, cfg.Gravity.Y,
		cfg.RestitutionThreshold,
		cfg.RectCells.X, cfg.RectCells.Y,
		cfg.TriangleCells.X, cfg.TriangleCells.Y,
		logger)
}
