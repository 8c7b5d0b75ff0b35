package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"geneflow_go/env_summary"
	"geneflow_go/pipeline"
	"geneflow_go/report"
)

func processCmd(a *app) *cobra.Command {
	var (
		sequences, environment string
		delimiter              string
		requireCorrelation     bool
		outFile                string
		writeCSV, writeHTML    bool
		heatmapPath            string
	)

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run the full pipeline on a FASTA file and an environmental table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			delim := a.cfg.Comma()
			if delimiter != "" {
				d, err := env_summary.ParseDelimiter(delimiter)
				if err != nil {
					return err
				}
				delim = d
			}
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}

			return a.run(cmd, func() error {
				in := pipeline.Input{Delimiter: delim, RequireCorrelation: requireCorrelation}
				if sequences != "" {
					f, err := os.Open(sequences)
					if err != nil {
						return err
					}
					in.Sequences = f
				}
				if environment != "" {
					f, err := os.Open(environment)
					if err != nil {
						if in.Sequences != nil {
							_ = in.Sequences.Close()
						}
						return err
					}
					in.Environment = f
				}

				res, err := orch.Process(in)
				if err != nil {
					return err
				}

				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(res); err != nil {
					return err
				}

				if writeCSV {
					if err := report.WriteCSVReport(outFile, res); err != nil {
						return err
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s.csv\n", outFile)
				}
				if writeHTML {
					if err := report.WriteHTMLReport(outFile, res); err != nil {
						return err
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s.html\n", outFile)
				}
				if heatmapPath != "" {
					if err := os.WriteFile(heatmapPath, res.Heatmap.Data, 0o644); err != nil {
						return err
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", heatmapPath)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&sequences, "sequences", "", "FASTA file of genetic sequences")
	cmd.Flags().StringVar(&environment, "environment", "", "delimited environmental table with a header row")
	cmd.Flags().StringVar(&delimiter, "delimiter", "", "table delimiter: comma, tab, semicolon, pipe or a single character")
	cmd.Flags().BoolVar(&requireCorrelation, "require-correlation", false, "fail when the table has no numeric columns")
	cmd.Flags().StringVar(&outFile, "out_file", "geneflow_report", "prefix for the CSV and HTML reports")
	cmd.Flags().BoolVar(&writeCSV, "csv", false, "write <out_file>.csv")
	cmd.Flags().BoolVar(&writeHTML, "html", false, "write <out_file>.html")
	cmd.Flags().StringVar(&heatmapPath, "heatmap", "", "write the heatmap PNG to this path")
	return cmd
}
