package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/policyregex/internal/cache"
)

var cacheFlags struct {
	maxAge   time.Duration
	maxCount int
	maxBytes int64
	clear    bool
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Maintain the document text cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove old or excess cache entries",
	Args:  cobra.NoArgs,
	RunE:  runCachePurge,
}

func init() {
	f := cachePurgeCmd.Flags()
	f.DurationVar(&cacheFlags.maxAge, "max-age", 0, "Remove entries not used for this long")
	f.IntVar(&cacheFlags.maxCount, "max-count", 0, "Keep at most this many entries, least recently used removed first")
	f.Int64Var(&cacheFlags.maxBytes, "max-bytes", 0, "Keep at most this many bytes of entries")
	f.BoolVar(&cacheFlags.clear, "all", false, "Remove the whole cache directory")
	cacheCmd.AddCommand(cachePurgeCmd)
}

func runCachePurge(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if cacheFlags.clear {
		if err := cache.ClearDir(cfg.CacheDir); err != nil {
			return err
		}
		fmt.Fprintf(out, "cleared %s\n", cfg.CacheDir)
		return nil
	}
	removed := 0
	if cacheFlags.maxAge > 0 {
		n, err := cache.PurgeByAge(cfg.CacheDir, cacheFlags.maxAge)
		if err != nil {
			return err
		}
		removed += n
	}
	if cacheFlags.maxCount > 0 || cacheFlags.maxBytes > 0 {
		n, err := cache.EnforceLimits(cfg.CacheDir, cacheFlags.maxBytes, cacheFlags.maxCount)
		if err != nil {
			return err
		}
		removed += n
	}
	fmt.Fprintf(out, "removed %d entries from %s\n", removed, cfg.CacheDir)
	return nil
}
