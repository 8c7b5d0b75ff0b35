// Package gene_flow runs the deterministic trait-frequency recurrence and maps
// its trajectory onto per-generation projections.
package gene_flow

import (
	"fmt"
	"math"

	"geneflow_go/apperr"
)

// Default process constants.
const (
	DefaultGenerations       = 100
	DefaultMutationRate      = 0.01
	DefaultMigrationRate     = 0.05
	DefaultSelectionPressure = 1.0
	DefaultInitialFrequency  = 0.5
)

// Config parameterizes the recurrence
//
//	f[t] = f[t-1]*(1-mu) + m*(1-f[t-1]) + s*f[t-1]*(1-f[t-1])
//
// Values are not clamped to [0, 1] unless Clamp is set: with a strong selection
// pressure the quadratic term can leave the unit interval, and the unclamped
// trajectory is the reference behavior.
type Config struct {
	Generations       int     `yaml:"generations" json:"generations"`
	MutationRate      float64 `yaml:"mutation_rate" json:"mutation_rate"`
	MigrationRate     float64 `yaml:"migration_rate" json:"migration_rate"`
	SelectionPressure float64 `yaml:"selection_pressure" json:"selection_pressure"`
	InitialFrequency  float64 `yaml:"initial_frequency" json:"initial_frequency"`
	Clamp             bool    `yaml:"clamp" json:"clamp"`
}

// DefaultConfig returns the standard process constants.
func DefaultConfig() Config {
	return Config{
		Generations:       DefaultGenerations,
		MutationRate:      DefaultMutationRate,
		MigrationRate:     DefaultMigrationRate,
		SelectionPressure: DefaultSelectionPressure,
		InitialFrequency:  DefaultInitialFrequency,
	}
}

// Validate checks that the recurrence is well defined for c.
func (c Config) Validate() error {
	if c.Generations < 1 {
		return apperr.New("gene_flow.config", apperr.KindMalformedInput,
			"generations must be at least 1, got %d", c.Generations)
	}
	unit := []struct {
		name string
		v    float64
	}{
		{"mutation_rate", c.MutationRate},
		{"migration_rate", c.MigrationRate},
		{"initial_frequency", c.InitialFrequency},
	}
	for _, p := range unit {
		if !(p.v >= 0 && p.v <= 1) {
			return apperr.New("gene_flow.config", apperr.KindMalformedInput,
				"%s must be within [0, 1], got %v", p.name, p.v)
		}
	}
	if math.IsNaN(c.SelectionPressure) || math.IsInf(c.SelectionPressure, 0) {
		return apperr.New("gene_flow.config", apperr.KindMalformedInput,
			"selection_pressure must be finite, got %v", c.SelectionPressure)
	}
	return nil
}

// Trajectory is the frequency at each generation, index 0 being the initial frequency.
type Trajectory []float64

// Simulator runs the recurrence for a fixed Config.
type Simulator struct {
	cfg Config
}

// NewSimulator validates cfg and returns a Simulator for it.
func NewSimulator(cfg Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{cfg: cfg}, nil
}

// Config returns the parameters the simulator was built with.
func (s *Simulator) Config() Config { return s.cfg }

// Run computes the trajectory. The result is identical on every call.
// A step that leaves the float64 range fails the run with a malformed_input
// error naming the generation.
func (s *Simulator) Run() (Trajectory, error) {
	c := s.cfg
	f := make(Trajectory, c.Generations)
	f[0] = c.InitialFrequency
	for t := 1; t < c.Generations; t++ {
		prev := f[t-1]
		next := prev*(1-c.MutationRate) +
			c.MigrationRate*(1-prev) +
			c.SelectionPressure*prev*(1-prev)
		if c.Clamp {
			next = math.Max(0, math.Min(1, next))
		}
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return nil, apperr.New("gene_flow.run", apperr.KindMalformedInput,
				"trajectory diverged at generation %d (selection_pressure=%v)", t, c.SelectionPressure)
		}
		f[t] = next
	}
	return f, nil
}

// Simulate is a shorthand for NewSimulator(cfg) followed by Run.
func Simulate(cfg Config) (Trajectory, error) {
	sim, err := NewSimulator(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid simulation parameters: %w", err)
	}
	return sim.Run()
}
