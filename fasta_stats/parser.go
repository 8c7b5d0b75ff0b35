// Package fasta_stats parses FASTA collections and derives length and GC statistics.
package fasta_stats

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"geneflow_go/apperr"
)

// DefaultMaxLineBytes bounds a single FASTA line. Genome-scale single-line records need the headroom.
const DefaultMaxLineBytes = 16 << 20

// Record is a single FASTA entry. Residues are upper-cased with whitespace removed.
type Record struct {
	ID          string
	Description string
	Residues    string
}

// Handler is called once per record, in file order.
type Handler func(rec Record) error

// Options tunes the parser.
type Options struct {
	MaxLineBytes int
}

func (o Options) maxLine() int {
	if o.MaxLineBytes <= 0 {
		return DefaultMaxLineBytes
	}
	return o.MaxLineBytes
}

// decompress unwraps gzip input, recognized by its magic bytes. Anything else passes through.
func decompress(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil || magic[0] != 0x1f || magic[1] != 0x8b {
		return br, nil
	}
	gz, err := gzip.NewReader(br)
	if err != nil {
		return nil, apperr.Wrap("fasta_stats.parse", apperr.KindMalformedInput,
			fmt.Errorf("failed to open gzip reader: %w", err))
	}
	return gz, nil
}

// Stream reads FASTA text from r, plain or gzip compressed, and hands each
// completed record to handler.
// Residue lines before the first header, invalid UTF-8 and empty records are rejected.
// r is always read to EOF, including on error.
func Stream(r io.Reader, opts Options, handler Handler) (err error) {
	defer func() {
		if err != nil {
			_, _ = io.Copy(io.Discard, r) // Leave nothing unread behind a failed parse
		}
	}()

	src, err := decompress(r)
	if err != nil {
		return err
	}

	maxLine := opts.maxLine()
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, min(64*1024, maxLine)), maxLine)

	var (
		current  *Record
		residues strings.Builder
		lineNo   int
	)

	flush := func() error {
		if current == nil {
			return nil
		}
		if residues.Len() == 0 {
			return apperr.New("fasta_stats.parse", apperr.KindMalformedRecord,
				"record %q has no residues", current.ID)
		}
		current.Residues = residues.String()
		if err := handler(*current); err != nil {
			return fmt.Errorf("handler error (%s): %w", current.ID, err)
		}
		residues.Reset()
		return nil
	}

	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		if !utf8.ValidString(raw) {
			return apperr.New("fasta_stats.parse", apperr.KindMalformedInput,
				"line %d is not valid UTF-8", lineNo)
		}
		line := strings.TrimSpace(raw)
		switch {
		case line == "", strings.HasPrefix(line, ";"):
			continue // Blank lines and legacy comments
		case strings.HasPrefix(line, ">"):
			if err := flush(); err != nil {
				return err
			}
			desc := strings.TrimSpace(strings.TrimPrefix(line, ">"))
			id := desc
			if i := strings.IndexFunc(desc, unicode.IsSpace); i >= 0 {
				id = desc[:i]
			}
			current = &Record{ID: id, Description: desc}
		default:
			if current == nil {
				return apperr.New("fasta_stats.parse", apperr.KindMalformedInput,
					"line %d: sequence data before the first '>' header", lineNo)
			}
			for _, ch := range line {
				if !unicode.IsSpace(ch) {
					residues.WriteRune(unicode.ToUpper(ch))
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return apperr.Wrap("fasta_stats.parse", apperr.KindMalformedInput,
			fmt.Errorf("scanner error after line %d: %w", lineNo, err))
	}
	return flush()
}

// Parse collects every record of r.
func Parse(r io.Reader, opts Options) ([]Record, error) {
	var records []Record
	err := Stream(r, opts, func(rec Record) error {
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
