package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"geneflow_go/pipeline"
)

func simulateCmd(a *app) *cobra.Command {
	var (
		mutation, migration, selection float64
		clamp                          bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Print the allele frequency trajectory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var ro pipeline.RateOverrides
			if cmd.Flags().Changed("mutation_rate") {
				ro.MutationRate = &mutation
			}
			if cmd.Flags().Changed("migration_rate") {
				ro.MigrationRate = &migration
			}
			if cmd.Flags().Changed("selection_pressure") {
				ro.SelectionPressure = &selection
			}
			if cmd.Flags().Changed("clamp") {
				a.cfg.Simulation.Clamp = clamp
			}
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}

			return a.run(cmd, func() error {
				sim, err := orch.Simulate(ro)
				if err != nil {
					return err
				}
				p := sim.Parameters
				fmt.Fprintf(cmd.OutOrStdout(), "# mutation_rate=%g migration_rate=%g selection_pressure=%g clamp=%t\n",
					p.MutationRate, p.MigrationRate, p.SelectionPressure, p.Clamp)

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "Generation\tFrequency")
				for _, pt := range sim.Projections {
					fmt.Fprintf(tw, "%d\t%.6f\n", pt.Generation, pt.Frequency)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().Float64Var(&mutation, "mutation_rate", 0, "override the configured mutation rate")
	cmd.Flags().Float64Var(&migration, "migration_rate", 0, "override the configured migration rate")
	cmd.Flags().Float64Var(&selection, "selection_pressure", 0, "override the configured selection pressure")
	cmd.Flags().BoolVar(&clamp, "clamp", false, "clamp frequencies to [0, 1]")
	return cmd
}
