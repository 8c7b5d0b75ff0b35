// Package pipeline validates the two uploaded documents, runs every analysis
// stage in order and assembles the combined result.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"geneflow_go/apperr"
	"geneflow_go/env_summary"
	"geneflow_go/fasta_stats"
	"geneflow_go/gene_flow"
	"geneflow_go/heatmap"
	"geneflow_go/trait_impact"
)

// SuccessMessage is reported with every completed run.
const SuccessMessage = "Processing completed successfully"

// Input carries the two uploaded documents. Process owns both streams and closes them.
type Input struct {
	Sequences   io.ReadCloser // FASTA collection
	Environment io.ReadCloser // delimited table with a header row

	// Delimiter of the environmental table, ',' when zero.
	Delimiter rune

	// RequireCorrelation turns an environmental table without numeric columns
	// into a client error instead of a warning.
	RequireCorrelation bool
}

// Heatmap renders the trait distribution image.
type Heatmap interface {
	Render() (*heatmap.Image, error)
}

// Config wires the orchestrator's collaborators.
type Config struct {
	Simulation   gene_flow.Config
	Heatmap      Heatmap
	MaxLineBytes int
	Log          zerolog.Logger
}

// Orchestrator runs the processing pipeline. It keeps no per-request state.
type Orchestrator struct {
	sim          *gene_flow.Simulator
	processSim   *gene_flow.Simulator
	heatmap      Heatmap
	maxLineBytes int
	log          zerolog.Logger
}

// New validates cfg and returns an Orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	sim, err := gene_flow.NewSimulator(cfg.Simulation)
	if err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}
	// Process always reports DefaultGenerations points; only Simulate
	// follows the configured length.
	pc := cfg.Simulation
	pc.Generations = gene_flow.DefaultGenerations
	processSim, err := gene_flow.NewSimulator(pc)
	if err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}
	if _, err := processSim.Run(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}
	if cfg.Heatmap == nil {
		return nil, errors.New("pipeline: heatmap renderer is required")
	}
	return &Orchestrator{
		sim:          sim,
		processSim:   processSim,
		heatmap:      cfg.Heatmap,
		maxLineBytes: cfg.MaxLineBytes,
		log:          cfg.Log.With().Str("component", "pipeline").Logger(),
	}, nil
}

// Simulator exposes the configured gene flow simulator.
func (o *Orchestrator) Simulator() *gene_flow.Simulator { return o.sim }

// Process runs every stage and returns the combined result. Errors keep their
// apperr kind; no partial result is returned alongside an error.
func (o *Orchestrator) Process(in Input) (*Result, error) {
	defer closeAll(in.Sequences, in.Environment)

	if in.Sequences == nil || in.Environment == nil {
		return nil, apperr.New("pipeline.process", apperr.KindMissingInput,
			"both genetic_file (FASTA) and environmental_file (CSV) are required")
	}

	start := time.Now()
	id := uuid.New().String()
	log := o.log.With().Str("run_id", id).Logger()

	// A. Sequence statistics
	_, seqStats, err := fasta_stats.Extract(in.Sequences, fasta_stats.Options{MaxLineBytes: o.maxLineBytes})
	if err != nil {
		return nil, err
	}
	log.Debug().Int("sequences", seqStats.Count).Msg("Sequence statistics computed")

	// B. Environmental summary
	var (
		warnings []string
		ae       *apperr.Error
	)
	envSummary, err := env_summary.Summarize(in.Environment, env_summary.Options{Comma: in.Delimiter})
	switch {
	case err == nil:
	case errors.As(err, &ae) && ae.Kind == apperr.KindNoNumericData && !in.RequireCorrelation && envSummary != nil:
		warnings = append(warnings, ae.Message())
		log.Warn().Err(err).Msg("Environmental table has no numeric columns")
	default:
		return nil, err
	}
	log.Debug().Int("columns", len(envSummary.Columns)).Int("rows", envSummary.Dataset.Rows).
		Msg("Environmental summary computed")

	// C. Gene spread modelling
	trajectory, err := o.processSim.Run()
	if err != nil {
		return nil, err
	}

	// D. Trait impact and projections
	impact := trait_impact.Analyze(seqStats, envSummary.Correlation)
	projections := gene_flow.Project(trajectory)

	// E. Heatmap
	img, err := o.RenderHeatmap()
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("sequences", seqStats.Count).
		Int("env_columns", len(envSummary.Columns)).
		Dur("duration_ms", time.Since(start)).
		Msg("Processing completed")

	return &Result{
		ID:                 id,
		Message:            SuccessMessage,
		GeneticData:        seqStats,
		EnvironmentSummary: envSummary.Columns,
		ExcludedColumns:    nonNil(envSummary.Dataset.Excluded),
		Correlation:        envSummary.Correlation,
		GeneFrequencies:    trajectory,
		TraitImpact:        impact,
		Projections:        projections,
		Heatmap:            img,
		Warnings:           warnings,
	}, nil
}

func closeAll(closers ...io.Closer) {
	for _, c := range closers {
		if c != nil {
			_ = c.Close()
		}
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
