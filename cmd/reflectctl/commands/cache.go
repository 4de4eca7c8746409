package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sillycarz/reflectpause/pkg/cache"
)

// NewCacheCmd creates the cache command group
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the toxicity result cache",
	}

	cmd.AddCommand(newCacheStatsCmd())
	cmd.AddCommand(newCacheClearCmd())
	cmd.AddCommand(newCacheFingerprintCmd())

	return cmd
}

func newCacheStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Screen a batch of texts and show cache statistics",
		Long: `Read newline-delimited texts from a file (or stdin), screen each one, and
print the resulting cache statistics. Duplicate lines hit the cache.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")

			rt, err := newRuntime(cmd, "")
			if err != nil {
				return err
			}
			if rt.cache == nil {
				return fmt.Errorf("cache is disabled in the configuration")
			}

			if err := screenBatch(cmd, rt, file); err != nil {
				return err
			}

			stats := rt.cache.Stats()
			if outputFormat(cmd) == "json" {
				return printJSON(stats)
			}

			fmt.Printf("Entries:         %d\n", stats.Size)
			fmt.Printf("Hits:            %d\n", stats.Hits)
			fmt.Printf("Misses:          %d\n", stats.Misses)
			fmt.Printf("Hit rate:        %.1f%%\n", stats.HitRate*100)
			fmt.Printf("Evictions:       %d\n", stats.Evictions)
			fmt.Printf("Expired:         %d\n", stats.Expired)
			fmt.Printf("Total requests:  %d\n", stats.TotalRequests)
			return nil
		},
	}

	cmd.Flags().StringP("file", "f", "", "File with one text per line (default stdin)")

	return cmd
}

func newCacheClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Screen a batch of texts, then clear the cache",
		Long: `Load the cache by screening a batch of texts, then invalidate every entry
and report how many were removed. Useful for exercising eviction behavior.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")

			rt, err := newRuntime(cmd, "")
			if err != nil {
				return err
			}
			if rt.cache == nil {
				return fmt.Errorf("cache is disabled in the configuration")
			}

			if err := screenBatch(cmd, rt, file); err != nil {
				return err
			}

			removed := rt.cache.Invalidate("", "")
			fmt.Printf("Removed %d cache entries\n", removed)
			return nil
		},
	}

	cmd.Flags().StringP("file", "f", "", "File with one text per line (default stdin)")

	return cmd
}

func newCacheFingerprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fingerprint [text]",
		Short: "Print the cache fingerprint for a text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engineType, _ := cmd.Flags().GetString("engine")
			fmt.Println(cache.Fingerprint(args[0], engineType))
			return nil
		},
	}

	cmd.Flags().StringP("engine", "e", "heuristic", "Engine type included in the fingerprint")

	return cmd
}
