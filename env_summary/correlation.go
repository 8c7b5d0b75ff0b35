package env_summary

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// CorrelationMatrix is a square, symmetric table of Pearson coefficients.
// Values[i][j] is the correlation between Columns[i] and Columns[j].
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// Correlate builds the pairwise Pearson matrix of cols.
// A column without variance correlates 1 with itself and 0 with everything else.
func Correlate(cols []Column) CorrelationMatrix {
	m := CorrelationMatrix{
		Columns: make([]string, len(cols)),
		Values:  make([][]float64, len(cols)),
	}
	flat := make([]bool, len(cols))
	for i, c := range cols {
		m.Columns[i] = c.Name
		m.Values[i] = make([]float64, len(cols))
		flat[i] = len(c.Values) < 2 || !(stat.Variance(c.Values, nil) > 0)
	}

	for i := range cols {
		m.Values[i][i] = 1
		for j := i + 1; j < len(cols); j++ {
			var r float64
			if !flat[i] && !flat[j] {
				r = clampUnit(stat.Correlation(cols[i].Values, cols[j].Values, nil))
			}
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

// At returns the coefficient for the named pair.
func (m CorrelationMatrix) At(a, b string) (float64, bool) {
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

// Len is the number of columns covered by the matrix.
func (m CorrelationMatrix) Len() int { return len(m.Columns) }

func (m CorrelationMatrix) index(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// clampUnit absorbs floating point drift just outside [-1, 1].
// clampUnit bounds r to [-1, 1]. NaN, which stat.Correlation yields when the
// sums overflow, becomes 0.
func clampUnit(r float64) float64 {
	if math.IsNaN(r) {
		return 0
	}
	return math.Max(-1, math.Min(1, r))
}
