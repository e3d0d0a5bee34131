// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/evolution-metrics/internal/cache"
	"github.com/naka-gawa/evolution-metrics/internal/config"
	"github.com/naka-gawa/evolution-metrics/internal/gateway"
)

var rootCmd = &cobra.Command{
	Use:   "evolution-metrics",
	Short: "A CLI tool to compute software project health metrics.",
	Long: `evolution-metrics computes health metrics of a GitHub repository:
code change volume, line churn, review counts, acceptance, decline and duration,
and issue activity. Results can be limited to a date range and bucketed into
daily, weekly, monthly, quarterly or yearly series.

Settings come from flags, EVOLUTION_METRICS_* environment variables, a
.evolution-metrics.yaml file in the working or home directory, and .env.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("config", "", "Config file (default .evolution-metrics.yaml in the working or home directory)")
}

// loadConfig reads the configuration, letting the flags of cmd take precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	return config.Load(configPath, cmd.Flags())
}

// newLogger builds the logger handed to every component. Logs go to stderr so
// that reports on stdout stay clean.
func newLogger(verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// newFetcher picks the record source: a records file when --input is set,
// otherwise GitHub, optionally behind the local cache. For GitHub an unset
// main branch is resolved to the repository's default branch.
func newFetcher(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (gateway.Fetcher, func(), error) {
	noop := func() {}
	if cfg.Input != "" {
		return gateway.NewFileFetcher(cfg.Input, logger), noop, nil
	}

	opts, err := cfg.GitHubOptions()
	if err != nil {
		return nil, noop, err
	}
	githubGateway, err := gateway.NewGitHubGateway(opts, logger)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	if err := cfg.ResolveMainBranch(ctx, githubGateway); err != nil {
		return nil, noop, err
	}
	if !cfg.Cache {
		return githubGateway, noop, nil
	}

	store, err := cache.NewStore(cfg.CachePath, cfg.CacheTTL, logger)
	if err != nil {
		return nil, noop, err
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close cache.")
		}
	}
	return cache.NewFetcher(githubGateway, store), cleanup, nil
}

// addSourceFlags registers the flags selecting where records come from.
func addSourceFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringP("repository", "r", "", "Target GitHub repository as owner/name")
	flags.String("github-url", "", "GitHub Enterprise base URL (default github.com)")
	flags.StringSlice("branches", nil, "Branches to read commits from (default: the repository's default branch)")
	flags.StringP("input", "i", "", "Read records from a JSON file written by the fetch command instead of GitHub")
	flags.StringSlice("categories", nil, "Record categories: commit, issue, pull_request (default all)")
	flags.String("since", "", "Start date, inclusive (YYYY-MM-DD, YYYY/MM/DD or RFC3339)")
	flags.String("until", "", "End date, inclusive (YYYY-MM-DD, YYYY/MM/DD or RFC3339)")
	flags.Bool("cache", false, "Cache fetched records in a local SQLite database")
	flags.String("cache-path", "", "Cache database path")
	flags.Duration("cache-ttl", 0, "How long cached records stay fresh (default 24h)")
}
