// Package cli is the geneflow command line.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"geneflow_go/benchmark"
	"geneflow_go/config"
	"geneflow_go/heatmap"
	"geneflow_go/logger"
	"geneflow_go/pipeline"
)

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries what every subcommand needs once the persistent flags are parsed.
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	logLevel  string
	benchmark bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:          "geneflow",
		Short:        "GeneFlow - genetic and environmental data pipeline",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if a.logLevel != "" {
				cfg.LogLevel = a.logLevel
			}
			a.cfg = cfg
			a.log = logger.New(logger.Config{
				Level:  cfg.LogLevel,
				Pretty: cfg.LogPretty,
				Out:    cmd.ErrOrStderr(),
			})
			logger.SetGlobalLogger(a.log)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&a.benchmark, "benchmark", false, "report runtime, memory usage and host details after the command")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")

	cmd.AddCommand(
		serveCmd(a),
		processCmd(a),
		simulateCmd(a),
		sampleCmd(a),
		checkCmd(),
		versionCmd(),
	)
	return cmd
}

// run executes f, wrapped in the benchmark reporter when --benchmark is set.
func (a *app) run(cmd *cobra.Command, f func() error) error {
	if !a.benchmark {
		return f()
	}
	rep, err := benchmark.Run(cmd.CommandPath(), a.log, f)
	benchmark.Print(cmd.ErrOrStderr(), rep)
	return err
}

// orchestrator builds the pipeline from the loaded configuration.
func (a *app) orchestrator() (*pipeline.Orchestrator, error) {
	renderer, err := heatmap.NewRenderer(a.cfg.HeatmapOptions())
	if err != nil {
		return nil, err
	}
	return pipeline.New(pipeline.Config{
		Simulation: a.cfg.Simulation,
		Heatmap:    renderer,
		Log:        a.log,
	})
}
