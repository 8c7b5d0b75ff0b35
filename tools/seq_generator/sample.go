package seq_generator

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
)

// Sample file names, matching what the upload form expects.
const (
	FastaFile       = "genetic_data.fasta"
	EnvironmentFile = "environmental_data.csv"
)

// LineWidth of generated FASTA records.
const LineWidth = 60

// SampleOptions sizes a generated sample.
type SampleOptions struct {
	Sequences int
	Length    int
	GCBias    float64
	Rows      int
	Seed      uint64
}

// DefaultSampleOptions returns a small sample suitable for a first run.
func DefaultSampleOptions() SampleOptions {
	return SampleOptions{Sequences: 10, Length: 500, GCBias: 0.5, Rows: 20}
}

func (o SampleOptions) validate() error {
	var errs []error
	if o.Sequences < 1 {
		errs = append(errs, fmt.Errorf("sequences must be at least 1, got %d", o.Sequences))
	}
	if o.Length < 1 {
		errs = append(errs, fmt.Errorf("length must be at least 1, got %d", o.Length))
	}
	if !(o.GCBias >= 0 && o.GCBias <= 1) {
		errs = append(errs, fmt.Errorf("gc_bias must be within [0, 1], got %v", o.GCBias))
	}
	if o.Rows < 1 {
		errs = append(errs, fmt.Errorf("rows must be at least 1, got %d", o.Rows))
	}
	return errors.Join(errs...)
}

// WriteFASTA writes n records named seq_1..seq_n.
func (g *Generator) WriteFASTA(w io.Writer, n, length int, gcBias float64) error {
	for i := 1; i <= n; i++ {
		seq := g.GenerateDNA(length, gcBias)
		if _, err := fmt.Fprintf(w, ">seq_%d\n%s", i, WrapFasta(seq, LineWidth)); err != nil {
			return err
		}
	}
	return nil
}

// EnvironmentHeader is the column layout of generated tables.
var EnvironmentHeader = []string{"site", "temperature", "rainfall", "altitude", "soil_ph"}

// WriteEnvironment writes rows of site measurements. Rainfall tracks temperature
// and altitude runs against it, so the correlation matrix has visible structure.
func (g *Generator) WriteEnvironment(w io.Writer, rows int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(EnvironmentHeader); err != nil {
		return err
	}
	for i := 1; i <= rows; i++ {
		temp := 5 + 25*g.rng.Float64()
		rain := 400 + 30*temp + 150*g.rng.NormFloat64()
		alt := math.Max(0, 2500-70*temp+200*g.rng.NormFloat64())
		ph := 5.5 + 2*g.rng.Float64()
		rec := []string{
			fmt.Sprintf("site_%d", i),
			strconv.FormatFloat(temp, 'f', 2, 64),
			strconv.FormatFloat(rain, 'f', 1, 64),
			strconv.FormatFloat(alt, 'f', 0, 64),
			strconv.FormatFloat(ph, 'f', 2, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSample writes FastaFile and EnvironmentFile into dir, creating it if needed,
// and returns their paths.
func WriteSample(dir string, opts SampleOptions) (fastaPath, envPath string, err error) {
	if err := opts.validate(); err != nil {
		return "", "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}

	g := NewGenerator(opts.Seed)
	fastaPath = filepath.Join(dir, FastaFile)
	if err := writeFile(fastaPath, func(w io.Writer) error {
		return g.WriteFASTA(w, opts.Sequences, opts.Length, opts.GCBias)
	}); err != nil {
		return "", "", err
	}
	envPath = filepath.Join(dir, EnvironmentFile)
	if err := writeFile(envPath, func(w io.Writer) error {
		return g.WriteEnvironment(w, opts.Rows)
	}); err != nil {
		return "", "", err
	}
	return fastaPath, envPath, nil
}

func writeFile(path string, fill func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return fill(f)
}
