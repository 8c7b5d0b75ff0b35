package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"geneflow_go/config"
	"geneflow_go/tools/seq_generator"
)

func sampleCmd(a *app) *cobra.Command {
	opts := seq_generator.DefaultSampleOptions()
	var outDir string

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a random FASTA file and environmental table to try the pipeline on",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func() error {
				fa, env, err := seq_generator.WriteSample(outDir, opts)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\nWrote %s\n", fa, env)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&outDir, "out_dir", ".", "directory for the sample files")
	cmd.Flags().IntVar(&opts.Sequences, "sequences", opts.Sequences, "number of FASTA records")
	cmd.Flags().IntVar(&opts.Length, "length", opts.Length, "residues per record")
	cmd.Flags().Float64Var(&opts.GCBias, "gc_bias", opts.GCBias, "expected GC fraction")
	cmd.Flags().IntVar(&opts.Rows, "rows", opts.Rows, "environmental table rows")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed (0 picks one)")
	return cmd
}

// checkCmd performs a simple sanity check that the executable runs.
func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Sanity check",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully running GeneFlow! (%s)\n", config.MainVersion)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "GeneFlow - Version Information")
			fmt.Fprintf(out, "Central Executable:\n\tGeneFlow:\t%s\n\nComponents:\n", config.MainVersion)
			tw := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
			for _, c := range config.Components() {
				fmt.Fprintf(tw, "\t%s:\t%s\n", c.Name, c.Version)
			}
			return tw.Flush()
		},
	}
}
