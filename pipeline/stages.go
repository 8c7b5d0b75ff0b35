package pipeline

import (
	"io"

	"geneflow_go/apperr"
	"geneflow_go/env_summary"
	"geneflow_go/fasta_stats"
	"geneflow_go/gene_flow"
	"geneflow_go/heatmap"
)

// The single-stage entry points below back the per-document endpoints. Each one
// closes the stream it is given.

// SequenceStats parses a FASTA collection and summarizes it.
func (o *Orchestrator) SequenceStats(rc io.ReadCloser) (fasta_stats.Stats, error) {
	if rc == nil {
		return fasta_stats.Stats{}, apperr.New("pipeline.sequence_stats", apperr.KindMissingInput,
			"genetic_file (FASTA) is required")
	}
	defer rc.Close()
	_, st, err := fasta_stats.Extract(rc, fasta_stats.Options{MaxLineBytes: o.maxLineBytes})
	return st, err
}

// EnvironmentSummary parses an environmental table and summarizes it. A table
// without numeric columns yields the empty summary together with the error.
func (o *Orchestrator) EnvironmentSummary(rc io.ReadCloser, delimiter rune) (*env_summary.Summary, error) {
	if rc == nil {
		return nil, apperr.New("pipeline.environment_summary", apperr.KindMissingInput,
			"environmental_file (CSV) is required")
	}
	defer rc.Close()
	return env_summary.Summarize(rc, env_summary.Options{Comma: delimiter})
}

// RateOverrides replaces individual simulation rates for one run.
type RateOverrides struct {
	MutationRate      *float64 `json:"mutation_rate"`
	MigrationRate     *float64 `json:"migration_rate"`
	SelectionPressure *float64 `json:"selection_pressure"`
}

// Apply returns cfg with the non-nil overrides applied.
func (ro RateOverrides) Apply(cfg gene_flow.Config) gene_flow.Config {
	if ro.MutationRate != nil {
		cfg.MutationRate = *ro.MutationRate
	}
	if ro.MigrationRate != nil {
		cfg.MigrationRate = *ro.MigrationRate
	}
	if ro.SelectionPressure != nil {
		cfg.SelectionPressure = *ro.SelectionPressure
	}
	return cfg
}

// Simulation is the output of a standalone simulation run.
type Simulation struct {
	Parameters      gene_flow.Config            `json:"parameters"`
	GeneFrequencies gene_flow.Trajectory        `json:"gene_frequencies"`
	Projections     []gene_flow.ProjectionPoint `json:"projections"`
}

// Simulate runs the recurrence with the configured constants and any overrides.
func (o *Orchestrator) Simulate(ro RateOverrides) (*Simulation, error) {
	cfg := ro.Apply(o.sim.Config())
	sim, err := gene_flow.NewSimulator(cfg)
	if err != nil {
		return nil, err
	}
	traj, err := sim.Run()
	if err != nil {
		return nil, err
	}
	return &Simulation{
		Parameters:      cfg,
		GeneFrequencies: traj,
		Projections:     gene_flow.Project(traj),
	}, nil
}

// RenderHeatmap draws a fresh heatmap.
func (o *Orchestrator) RenderHeatmap() (*heatmap.Image, error) {
	img, err := o.heatmap.Render()
	if err != nil && apperr.KindOf(err) == apperr.KindInternal {
		err = apperr.Wrap("pipeline.heatmap", apperr.KindImageEncoding, err)
	}
	return img, err
}
