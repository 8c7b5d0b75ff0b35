package pipeline

import (
	"geneflow_go/env_summary"
	"geneflow_go/fasta_stats"
	"geneflow_go/gene_flow"
	"geneflow_go/heatmap"
	"geneflow_go/trait_impact"
)

// Result is the single response of a process run. The heatmap travels inline:
// its PNG bytes are base64 encoded by encoding/json and sent as a binary field by msgpack.
type Result struct {
	ID                 string                        `json:"id"`
	Message            string                        `json:"message"`
	GeneticData        fasta_stats.Stats             `json:"genetic_data"`
	EnvironmentSummary []env_summary.ColumnSummary   `json:"environmental_data_summary"`
	ExcludedColumns    []string                      `json:"excluded_columns"`
	Correlation        env_summary.CorrelationMatrix `json:"correlation_matrix"`
	GeneFrequencies    gene_flow.Trajectory          `json:"gene_frequencies"`
	TraitImpact        trait_impact.Report           `json:"trait_impact"`
	Projections        []gene_flow.ProjectionPoint   `json:"projections"`
	Heatmap            *heatmap.Image                `json:"heatmap"`
	Warnings           []string                      `json:"warnings,omitempty"`
}
