// Package env_summary turns a delimited table of environmental measurements into
// per-column descriptive statistics and a Pearson correlation matrix.
package env_summary

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"geneflow_go/apperr"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Column is a named numeric column. Values are aligned by row index across columns.
type Column struct {
	Name   string
	Values []float64
}

// Dataset holds the numeric columns of a table in header order.
// Excluded lists the columns dropped because at least one value was not a finite number.
type Dataset struct {
	Columns  []Column
	Rows     int
	Excluded []string
}

// Options tunes the table parser.
type Options struct {
	Comma rune // Field delimiter, ',' when zero
}

// Parse reads a delimited table with a header row from r and keeps its numeric columns.
func Parse(r io.Reader, opts Options) (*Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, apperr.Wrap("env_summary.parse", apperr.KindMalformedInput,
			fmt.Errorf("failed to read table: %w", err))
	}
	if !utf8.Valid(raw) {
		return nil, apperr.New("env_summary.parse", apperr.KindMalformedInput, "table is not valid UTF-8")
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.TrimLeadingSpace = true
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperr.New("env_summary.parse", apperr.KindEmptyInput, "no columns to parse: table is empty")
	}
	if err != nil {
		return nil, apperr.Wrap("env_summary.parse", apperr.KindMalformedInput, err)
	}

	names := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			return nil, apperr.New("env_summary.parse", apperr.KindMalformedInput,
				"column %d has an empty name", i+1)
		}
		if seen[name] {
			return nil, apperr.New("env_summary.parse", apperr.KindMalformedInput,
				"duplicate column name %q", name)
		}
		seen[name] = true
		names[i] = name
	}

	cells := make([][]string, len(names)) // Column-major raw values
	rows := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperr.Wrap("env_summary.parse", apperr.KindMalformedInput, err)
		}
		for i, v := range record {
			cells[i] = append(cells[i], v)
		}
		rows++
	}
	if rows == 0 {
		return nil, apperr.New("env_summary.parse", apperr.KindEmptyInput, "table has a header but no data rows")
	}

	ds := &Dataset{Rows: rows}
	for i, name := range names {
		values, ok := coerceColumn(cells[i])
		if !ok {
			ds.Excluded = append(ds.Excluded, name)
			continue
		}
		ds.Columns = append(ds.Columns, Column{Name: name, Values: values})
	}
	return ds, nil
}

// coerceColumn parses every cell as a finite float. Any failure makes the whole column non-numeric.
func coerceColumn(cells []string) ([]float64, bool) {
	values := make([]float64, len(cells))
	for i, c := range cells {
		v, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

// ParseDelimiter maps a user-supplied delimiter name to a rune.
// Accepts a single character or the names "comma", "tab" and "semicolon".
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "", "comma", ",":
		return ',', nil
	case "tab", `\t`, "\t":
		return '\t', nil
	case "semicolon", ";":
		return ';', nil
	case "pipe", "|":
		return '|', nil
	}
	if utf8.RuneCountInString(s) == 1 {
		r, _ := utf8.DecodeRuneInString(s)
		if r != '"' && r != '\r' && r != '\n' && r != utf8.RuneError {
			return r, nil
		}
	}
	return 0, apperr.New("env_summary.delimiter", apperr.KindMalformedInput, "unsupported delimiter %q", s)
}
