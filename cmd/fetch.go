package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/evolution-metrics/internal/gateway"
	"github.com/naka-gawa/evolution-metrics/internal/usecase"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetches repository records and saves them as JSON",
	Long: `Fetches the commits, pull requests and issues of a repository and writes
them to a JSON file. The file can be passed to report --input to compute
metrics offline.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := cfg.ValidateSource(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		categories, err := cfg.CategoryList()
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		rng, err := cfg.DateRange()
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		logger := newLogger(cfg.Verbose)
		fetcher, cleanup, err := newFetcher(cmd.Context(), cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to create record source: %w", err)
		}
		defer cleanup()

		records, err := usecase.NewRunner(fetcher, logger).Fetch(cmd.Context(), categories, rng)
		if err != nil {
			return fmt.Errorf("failed to fetch records: %w", err)
		}
		if err := gateway.WriteRecords(cfg.Output, records); err != nil {
			return fmt.Errorf("failed to save records: %w", err)
		}
		logger.WithField("path", cfg.Output).Info("Records saved.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	addSourceFlags(fetchCmd)
	fetchCmd.Flags().StringP("output", "o", "", "Records file to write (required)")
	fetchCmd.MarkFlagRequired("output")
}
