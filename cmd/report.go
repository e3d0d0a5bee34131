package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/evolution-metrics/internal/condition"
	"github.com/naka-gawa/evolution-metrics/internal/domain"
	"github.com/naka-gawa/evolution-metrics/internal/report"
	"github.com/naka-gawa/evolution-metrics/internal/usecase"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Computes the metrics of a repository and renders a report",
	Long: `Fetches the records of the requested categories, computes every registered
metric (or those named with --metrics) and renders the results as a table,
Markdown, CSV, JSON or an HTML chart page. With --period each metric also gets
a time series.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		// Everything is validated before anything is fetched.
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		format, err := report.ParseFormat(cfg.Format)
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		logger := newLogger(cfg.Verbose)
		fetcher, cleanup, err := newFetcher(cmd.Context(), cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to create record source: %w", err)
		}
		defer cleanup()

		req, err := cfg.Request()
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		results, err := usecase.NewRunner(fetcher, logger).Run(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("failed to compute metrics: %w", err)
		}
		return writeReport(cmd.OutOrStdout(), cfg.Output, format, results)
	},
}

// writeReport renders results to path, or to stdout when path is empty.
func writeReport(stdout io.Writer, path string, format report.Format, results *domain.Results) error {
	if path == "" {
		return report.Render(stdout, format, results)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := report.Render(f, format, results); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(reportCmd)
	addSourceFlags(reportCmd)

	flags := reportCmd.Flags()
	flags.StringSlice("metrics", nil, "Metrics to compute (default all; see the metrics command)")
	flags.StringP("period", "p", "", "Time series period: day, week, month, quarter or year")
	flags.StringSlice("commit-conditions", nil, "Commit conditions: "+strings.Join(condition.CommitConditionNames(), ", "))
	flags.StringSlice("code-conditions", nil, "Code conditions: "+strings.Join(condition.CodeConditionNames(), ", "))
	flags.StringSlice("exclude-postfixes", nil, "File suffixes rejected by postfix_exclude")
	flags.StringSlice("exclude-dirs", nil, "Directories rejected by dir_exclude")
	flags.String("main-branch", "", "Primary branch for master_include (default: the repository's default branch, or master with --input)")
	flags.String("line-mode", "", "How CodeChangesLinesGit combines lines: net or total (default net)")
	flags.String("duration-aggregation", "", "How ReviewsDurationGitHub aggregates: mean or median (default mean)")
	flags.StringP("format", "f", "", "Output format: table, markdown, csv, json or html (default table)")
	flags.StringP("output", "o", "", "Write the report to a file instead of stdout")
}
