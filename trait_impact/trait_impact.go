// Package trait_impact combines sequence statistics with the environmental
// correlation structure into a single report.
package trait_impact

import (
	"geneflow_go/env_summary"
	"geneflow_go/fasta_stats"
)

// Report is a pure composition of its inputs.
type Report struct {
	AvgSequenceLength        float64                       `json:"avg_sequence_length"`
	AvgGCFraction            float64                       `json:"avg_gc_content"`
	EnvironmentalCorrelation env_summary.CorrelationMatrix `json:"environmental_correlation"`
}

// Analyze builds the trait impact report.
func Analyze(seq fasta_stats.Stats, corr env_summary.CorrelationMatrix) Report {
	return Report{
		AvgSequenceLength:        seq.AvgLength,
		AvgGCFraction:            seq.AvgGCFraction,
		EnvironmentalCorrelation: corr,
	}
}
