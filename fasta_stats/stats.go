package fasta_stats

import (
	"io"
	"strings"
	"unicode/utf8"

	"gonum.org/v1/gonum/stat"

	"geneflow_go/apperr"
)

// Stats summarizes a sequence collection.
type Stats struct {
	Count         int     `json:"num_sequences"`
	AvgLength     float64 `json:"avg_sequence_length"`
	AvgGCFraction float64 `json:"avg_gc_content"`
	MinLength     int     `json:"min_sequence_length"`
	MaxLength     int     `json:"max_sequence_length"`
}

// GCFraction returns the share of G and C residues in seq.
// seq must be non-empty and upper-case.
func GCFraction(seq string) float64 {
	gc := strings.Count(seq, "G") + strings.Count(seq, "C")
	return float64(gc) / float64(utf8.RuneCountInString(seq))
}

// Summarize computes Stats over records in order.
func Summarize(records []Record) (Stats, error) {
	if len(records) == 0 {
		return Stats{}, apperr.New("fasta_stats.summarize", apperr.KindEmptyInput,
			"no sequences found in FASTA input")
	}

	lengths := make([]float64, len(records))
	gcFractions := make([]float64, len(records))
	minLen, maxLen := 0, 0

	for i, rec := range records {
		n := utf8.RuneCountInString(rec.Residues)
		if n == 0 {
			return Stats{}, apperr.New("fasta_stats.summarize", apperr.KindMalformedRecord,
				"record %q has no residues", rec.ID)
		}
		lengths[i] = float64(n)
		gcFractions[i] = GCFraction(rec.Residues)
		if i == 0 || n < minLen {
			minLen = n
		}
		if n > maxLen {
			maxLen = n
		}
	}

	return Stats{
		Count:         len(records),
		AvgLength:     stat.Mean(lengths, nil),
		AvgGCFraction: stat.Mean(gcFractions, nil),
		MinLength:     minLen,
		MaxLength:     maxLen,
	}, nil
}

// Extract parses r and summarizes the records it contains.
func Extract(r io.Reader, opts Options) ([]Record, Stats, error) {
	records, err := Parse(r, opts)
	if err != nil {
		return nil, Stats{}, err
	}
	st, err := Summarize(records)
	if err != nil {
		return nil, Stats{}, err
	}
	return records, st, nil
}
