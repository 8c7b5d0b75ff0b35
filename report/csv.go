// Package report writes a processing result to CSV and HTML files.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"geneflow_go/pipeline"
)

// csvHeader is the long-format layout: one metric per row.
var csvHeader = []string{"section", "subject", "metric", "value"}

// WriteCSVReport writes res to filename + ".csv".
func WriteCSVReport(filename string, res *pipeline.Result) (err error) {
	f, err := os.Create(filename + ".csv")
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteCSV(f, res)
}

// WriteCSV writes res in long format to w.
func WriteCSV(w io.Writer, res *pipeline.Result) error {
	writer := csv.NewWriter(w)

	rows := [][]string{csvHeader}
	add := func(section, subject, metric, value string) {
		rows = append(rows, []string{section, subject, metric, value})
	}

	g := res.GeneticData
	add("genetic_data", "", "num_sequences", strconv.Itoa(g.Count))
	add("genetic_data", "", "avg_sequence_length", ftoa(g.AvgLength))
	add("genetic_data", "", "avg_gc_content", ftoa(g.AvgGCFraction))
	add("genetic_data", "", "min_sequence_length", strconv.Itoa(g.MinLength))
	add("genetic_data", "", "max_sequence_length", strconv.Itoa(g.MaxLength))

	for _, c := range res.EnvironmentSummary {
		add("environment", c.Name, "count", strconv.Itoa(c.Count))
		add("environment", c.Name, "mean", ftoa(c.Mean))
		add("environment", c.Name, "std", optional(c.Std))
		add("environment", c.Name, "min", ftoa(c.Min))
		add("environment", c.Name, "p25", ftoa(c.P25))
		add("environment", c.Name, "p50", ftoa(c.P50))
		add("environment", c.Name, "p75", ftoa(c.P75))
		add("environment", c.Name, "max", ftoa(c.Max))
	}
	for _, name := range res.ExcludedColumns {
		add("environment", name, "excluded", "true")
	}

	cm := res.Correlation
	for i, a := range cm.Columns {
		for j, b := range cm.Columns {
			add("correlation", a, b, ftoa(cm.Values[i][j]))
		}
	}

	for _, p := range res.Projections {
		add("gene_frequency", strconv.Itoa(p.Generation), "frequency", ftoa(p.Frequency))
	}

	for _, w := range res.Warnings {
		add("warning", "", "message", w)
	}

	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv report: %w", err)
	}
	return nil
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func optional(v *float64) string {
	if v == nil {
		return ""
	}
	return ftoa(*v)
}
