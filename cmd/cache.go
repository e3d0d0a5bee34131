package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/evolution-metrics/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manages the local record cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Removes expired (or, with --all, every) cached record set",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		all, _ := cmd.Flags().GetBool("all")

		store, err := cache.NewStore(cfg.CachePath, cfg.CacheTTL, newLogger(cfg.Verbose))
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		defer store.Close()

		purged, err := store.Purge(all)
		if err != nil {
			return fmt.Errorf("failed to purge cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached record sets from %s\n", purged, cfg.CachePath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
	cachePurgeCmd.Flags().String("cache-path", "", "Cache database path")
	cachePurgeCmd.Flags().Duration("cache-ttl", 0, "Entries older than this are expired (default 24h)")
	cachePurgeCmd.Flags().Bool("all", false, "Remove every entry")
}
