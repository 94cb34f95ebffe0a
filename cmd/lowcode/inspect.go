package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/lowcode/internal/analysis"
	"github.com/Mr-Dark-debug/lowcode/internal/database"
)

func newInspectCmd(a *app) *cobra.Command {
	var (
		format   string
		template bool
		strict   bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <id>",
		Short: "Report on the structure of a saved page",
		Long: `Report node counts, nesting depth, component mix, heavy sections,
empty layout containers and local asset references of a saved project.

Examples:
  lowcode inspect 3
  lowcode inspect 2 --template
  lowcode inspect 3 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := database.ParseID(args[0])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			analyzer := analysis.NewAnalyzer(store)
			var report *analysis.Report
			if template {
				report, err = analyzer.AnalyzeTemplate(cmd.Context(), id)
			} else {
				// Stored projects carry no asset payloads, so every local
				// reference is reported without a registry to check it.
				report, err = analyzer.AnalyzeProject(cmd.Context(), id, nil)
			}
			if err != nil {
				return err
			}

			switch format {
			case "json":
				err = outputJSON(cmd.OutOrStdout(), report)
			case "markdown", "md":
				_, err = fmt.Fprint(cmd.OutOrStdout(), analysis.FormatReport(report))
			default:
				return fmt.Errorf("unknown format %q (want markdown or json)", format)
			}
			if err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{"source": report.Source, "warnings": len(report.Warnings)}).Debug("report written")

			if strict && len(report.Warnings) > 0 {
				return fmt.Errorf("%d warnings", len(report.Warnings))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "markdown", "output format: markdown, json")
	cmd.Flags().BoolVar(&template, "template", false, "inspect a template instead of a project")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when the report has warnings")
	return cmd
}
