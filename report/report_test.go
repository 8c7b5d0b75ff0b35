package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geneflow_go/env_summary"
	"geneflow_go/fasta_stats"
	"geneflow_go/gene_flow"
	"geneflow_go/heatmap"
	"geneflow_go/pipeline"
	"geneflow_go/trait_impact"
)

func sampleResult(t *testing.T) *pipeline.Result {
	t.Helper()
	seq := fasta_stats.Stats{Count: 2, AvgLength: 6, AvgGCFraction: 0.75, MinLength: 4, MaxLength: 8}
	cols := []env_summary.Column{
		{Name: "temp", Values: []float64{10, 20, 30}},
		{Name: "rain", Values: []float64{1, 2, 3}},
	}
	corr := env_summary.Correlate(cols)
	traj, err := gene_flow.Simulate(gene_flow.DefaultConfig())
	require.NoError(t, err)

	return &pipeline.Result{
		ID:                 "run-1",
		Message:            pipeline.SuccessMessage,
		GeneticData:        seq,
		EnvironmentSummary: []env_summary.ColumnSummary{env_summary.Describe(cols[0]), env_summary.Describe(cols[1])},
		ExcludedColumns:    []string{"site"},
		Correlation:        corr,
		GeneFrequencies:    traj,
		TraitImpact:        trait_impact.Analyze(seq, corr),
		Projections:        gene_flow.Project(traj),
		Heatmap:            &heatmap.Image{MediaType: heatmap.MediaType, Data: []byte("\x89PNG")},
		Warnings:           []string{"check <units>"},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResult(t)))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, csvHeader, rows[0])

	index := map[string]string{}
	for _, r := range rows[1:] {
		require.Len(t, r, 4)
		index[r[0]+"/"+r[1]+"/"+r[2]] = r[3]
	}
	assert.Equal(t, "2", index["genetic_data//num_sequences"])
	assert.Equal(t, "0.75", index["genetic_data//avg_gc_content"])
	assert.Equal(t, "20", index["environment/temp/mean"])
	assert.Equal(t, "10", index["environment/temp/std"])
	assert.Equal(t, "true", index["environment/site/excluded"])
	r, err := strconv.ParseFloat(index["correlation/temp/rain"], 64)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r, 1e-12)
	assert.Equal(t, "0.5", index["gene_frequency/1/frequency"])
	assert.Equal(t, "check <units>", index["warning//message"])

	// 5 genetic + 16 summary + 1 excluded + 4 correlation + 100 generations + 1 warning
	assert.Len(t, rows, 1+5+16+1+4+100+1)
}

func TestWriteCSV_MissingStd(t *testing.T) {
	res := sampleResult(t)
	res.EnvironmentSummary = []env_summary.ColumnSummary{
		env_summary.Describe(env_summary.Column{Name: "solo", Values: []float64{3}}),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, res))
	assert.Contains(t, buf.String(), "environment,solo,std,\n")
}

func TestTrajectorySVG(t *testing.T) {
	traj, err := gene_flow.Simulate(gene_flow.DefaultConfig())
	require.NoError(t, err)

	svg, err := TrajectorySVG(gene_flow.Project(traj))
	require.NoError(t, err)
	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, "Allele Frequency Trajectory")
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, sampleResult(t)))

	page := buf.String()
	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, "run-1")
	assert.Contains(t, page, "<td>temp</td>")
	assert.Contains(t, page, "<svg")
	assert.Contains(t, page, `src="data:image/png;base64,iVBORw=="`)
	assert.Contains(t, page, "check &lt;units&gt;")
	assert.Contains(t, page, "Excluded columns: site")
}

func TestWriteReportFiles(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "run")
	res := sampleResult(t)

	require.NoError(t, WriteCSVReport(prefix, res))
	require.NoError(t, WriteHTMLReport(prefix, res))

	for _, ext := range []string{".csv", ".html"} {
		info, err := os.Stat(prefix + ext)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	err := WriteCSVReport(filepath.Join(t.TempDir(), "missing", "run"), res)
	assert.Error(t, err)
}
