package config

// Version system:
// vMAJOR.MINOR.PATCH

// Centralized version control
const (
	// Executable
	MainVersion = "v1.0.0"

	// Pipeline stages
	FastaStats  = "v1.0.0"
	EnvSummary  = "v1.0.0"
	GeneFlow    = "v1.0.0"
	TraitImpact = "v1.0.0"
	Heatmap     = "v1.0.0"
	Pipeline    = "v1.0.0"

	// Supporting tools
	Server       = "v1.0.0"
	Report       = "v1.0.0"
	SeqGenerator = "v2.0.0" // Formerly "Ran_DNA_Gen"
	Benchmark    = "v1.0.0"
)

// Component pairs a display name with its version.
type Component struct {
	Name    string
	Version string
}

// Components lists the versioned parts of the executable in display order.
func Components() []Component {
	return []Component{
		{"FASTA Statistics", FastaStats},
		{"Environmental Summary", EnvSummary},
		{"Gene Flow Simulator", GeneFlow},
		{"Trait Impact", TraitImpact},
		{"Heatmap Renderer", Heatmap},
		{"Pipeline", Pipeline},
		{"HTTP Server", Server},
		{"Report Writer", Report},
		{"Sequence Generator", SeqGenerator},
		{"Benchmark", Benchmark},
	}
}
