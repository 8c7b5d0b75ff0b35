package env_summary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geneflow_go/apperr"
)

func TestDescribe_TempColumn(t *testing.T) {
	s := Describe(Column{Name: "temp", Values: []float64{30, 10, 20}})

	assert.Equal(t, "temp", s.Name)
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 20, s.Mean, 1e-12)
	require.NotNil(t, s.Std)
	assert.InDelta(t, 10, *s.Std, 1e-12)
	assert.Equal(t, 10.0, s.Min)
	assert.InDelta(t, 15, s.P25, 1e-12)
	assert.InDelta(t, 20, s.P50, 1e-12)
	assert.InDelta(t, 25, s.P75, 1e-12)
	assert.Equal(t, 30.0, s.Max)
}

func TestDescribe_SingleValueHasNoStd(t *testing.T) {
	s := Describe(Column{Name: "x", Values: []float64{4}})
	assert.Nil(t, s.Std)
	assert.Equal(t, 4.0, s.P25)
	assert.Equal(t, 4.0, s.P75)
}

func TestDescribe_DoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Describe(Column{Name: "x", Values: values})
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.75, Quantile(sorted, 0.25), 1e-12)
	assert.InDelta(t, 2.5, Quantile(sorted, 0.5), 1e-12)
	assert.InDelta(t, 3.25, Quantile(sorted, 0.75), 1e-12)
	assert.Equal(t, 1.0, Quantile(sorted, 0))
	assert.Equal(t, 4.0, Quantile(sorted, 1))
}

func TestSummarize(t *testing.T) {
	in := "temp,rain\n10,1\n20,2\n30,3\n"

	sum, err := Summarize(strings.NewReader(in), Options{})
	require.NoError(t, err)

	require.Len(t, sum.Columns, 2)
	assert.InDelta(t, 20, sum.Columns[0].Mean, 1e-12)
	assert.InDelta(t, 10, *sum.Columns[0].Std, 1e-12)

	r, ok := sum.Correlation.At("temp", "rain")
	require.True(t, ok)
	assert.InDelta(t, 1.0, r, 1e-12)
}

func TestSummarize_NoNumericColumns(t *testing.T) {
	in := "site,habitat\nA,forest\nB,wetland\n"

	sum, err := Summarize(strings.NewReader(in), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNoNumericData)

	require.NotNil(t, sum)
	assert.Empty(t, sum.Columns)
	assert.Equal(t, 0, sum.Correlation.Len())
	assert.NotNil(t, sum.Correlation.Values)
	assert.Equal(t, []string{"site", "habitat"}, sum.Dataset.Excluded)
}

func TestSummarize_PropagatesParseErrors(t *testing.T) {
	sum, err := Summarize(strings.NewReader("temp\n"), Options{})
	assert.Nil(t, sum)
	assert.True(t, apperr.IsKind(err, apperr.KindEmptyInput))
}

func TestSummarize_OverflowingColumnIsExcluded(t *testing.T) {
	in := "a,b\n1e308,1\n1e308,2\n-1e308,3\n"

	sum, err := Summarize(strings.NewReader(in), Options{})
	require.NoError(t, err)

	require.Len(t, sum.Columns, 1)
	assert.Equal(t, "b", sum.Columns[0].Name)
	assert.Equal(t, []string{"a"}, sum.Dataset.Excluded)
	assert.Equal(t, []string{"b"}, sum.Correlation.Columns)
	assert.Equal(t, [][]float64{{1}}, sum.Correlation.Values)
}

func TestSummarize_OnlyOverflowingColumns(t *testing.T) {
	in := "a\n1e308\n1e308\n"

	sum, err := Summarize(strings.NewReader(in), Options{})
	assert.ErrorIs(t, err, apperr.ErrNoNumericData)
	require.NotNil(t, sum)
	assert.Empty(t, sum.Columns)
	assert.Equal(t, []string{"a"}, sum.Dataset.Excluded)
}
