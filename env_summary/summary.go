package env_summary

import (
	"io"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"geneflow_go/apperr"
)

// ColumnSummary is the descriptive summary of one numeric column.
// Std is the sample standard deviation and is nil when fewer than two values exist.
type ColumnSummary struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Mean  float64  `json:"mean"`
	Std   *float64 `json:"std"`
	Min   float64  `json:"min"`
	P25   float64  `json:"p25"`
	P50   float64  `json:"p50"`
	P75   float64  `json:"p75"`
	Max   float64  `json:"max"`
}

// Summary bundles everything derived from one environmental table.
type Summary struct {
	Dataset     *Dataset
	Columns     []ColumnSummary
	Correlation CorrelationMatrix
}

// Describe computes the descriptive summary of col. col must hold at least one value.
func Describe(col Column) ColumnSummary {
	sorted := slices.Clone(col.Values)
	slices.Sort(sorted)

	s := ColumnSummary{
		Name:  col.Name,
		Count: len(sorted),
		Mean:  stat.Mean(sorted, nil),
		Min:   floats.Min(sorted),
		P25:   Quantile(sorted, 0.25),
		P50:   Quantile(sorted, 0.50),
		P75:   Quantile(sorted, 0.75),
		Max:   floats.Max(sorted),
	}
	if len(sorted) > 1 {
		std := stat.StdDev(sorted, nil)
		s.Std = &std
	}
	return s
}

// Quantile returns the p-quantile of sorted data, interpolating linearly between
// the closest ranks at position (n-1)*p.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

// Summarize parses r and computes column summaries and the correlation matrix.
// A column whose statistics overflow float64 is moved to the excluded list.
// With no numeric columns it returns an empty, non-nil Summary together with a
// no_numeric_data error so callers can decide whether that is fatal.
func Summarize(r io.Reader, opts Options) (*Summary, error) {
	ds, err := Parse(r, opts)
	if err != nil {
		return nil, err
	}

	kept := ds.Columns[:0]
	summaries := make([]ColumnSummary, 0, len(ds.Columns))
	for _, col := range ds.Columns {
		cs := Describe(col)
		if !cs.finite() {
			ds.Excluded = append(ds.Excluded, col.Name)
			continue
		}
		kept = append(kept, col)
		summaries = append(summaries, cs)
	}
	ds.Columns = kept

	out := &Summary{
		Dataset:     ds,
		Columns:     summaries,
		Correlation: Correlate(ds.Columns),
	}
	if len(ds.Columns) == 0 {
		return out, apperr.New("env_summary.summarize", apperr.KindNoNumericData,
			"no numeric columns to summarize (excluded: %v)", ds.Excluded)
	}
	return out, nil
}

func (s ColumnSummary) finite() bool {
	vals := []float64{s.Mean, s.Min, s.P25, s.P50, s.P75, s.Max}
	if s.Std != nil {
		vals = append(vals, *s.Std)
	}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
