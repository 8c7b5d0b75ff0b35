// Package seq_generator writes random sample inputs: a FASTA collection and a
// matching environmental table.
package seq_generator

import (
	"math/rand/v2"
	"strings"
)

// Generator draws sequences and measurements from its own source.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a Generator. Seed 0 draws a random seed.
func NewGenerator(seed uint64) *Generator {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// GenerateDNA returns a DNA sequence whose expected GC fraction is gcBias.
func (g *Generator) GenerateDNA(length int, gcBias float64) string {
	cWeight := gcBias / 2
	aWeight := (1 - gcBias) / 2
	tWeight := aWeight // AT bias

	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		r := g.rng.Float64()
		switch {
		case r < aWeight:
			sb.WriteByte('A')
		case r < aWeight+tWeight:
			sb.WriteByte('T')
		case r < aWeight+tWeight+cWeight:
			sb.WriteByte('C')
		default:
			sb.WriteByte('G')
		}
	}
	return sb.String()
}

// WrapFasta splits seq into lines of at most width residues, each newline terminated.
func WrapFasta(seq string, width int) string {
	var out strings.Builder
	for i := 0; i < len(seq); i += width {
		end := min(i+width, len(seq))
		out.WriteString(seq[i:end])
		out.WriteByte('\n')
	}
	return out.String()
}
