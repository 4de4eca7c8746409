package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sillycarz/reflectpause/pkg/metrics"
)

// NewMetricsCmd creates the metrics command
func NewMetricsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Screen a batch of texts and report session metrics",
		Long: `Read newline-delimited texts from a file (or stdin), screen each one, and
print the resulting session metrics. Repeated texts exercise the result
cache, so cache hit rates and speedup show up in the summary.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			exportFormat, _ := cmd.Flags().GetString("export")
			engineOverride, _ := cmd.Flags().GetString("engine")

			rt, err := newRuntime(cmd, engineOverride)
			if err != nil {
				return err
			}
			if rt.collector == nil {
				return fmt.Errorf("metrics are disabled in the configuration")
			}

			if err := screenBatch(cmd, rt, file); err != nil {
				return err
			}

			if exportFormat != "" {
				exported, err := rt.collector.Export(exportFormat)
				if err != nil {
					return err
				}
				if exportFormat == metrics.FormatPrometheus {
					flat, ok := exported.(map[string]string)
					if !ok {
						return fmt.Errorf("unexpected export payload type %T", exported)
					}
					for key, value := range flat {
						fmt.Printf("%s %s\n", key, value)
					}
					return nil
				}
				return printJSON(exported)
			}

			summary := rt.collector.Summary()
			if outputFormat(cmd) == "json" {
				return printJSON(summary)
			}

			fmt.Printf("Session uptime:    %.1fs\n", summary.Session.UptimeSeconds)
			fmt.Printf("Total checks:      %d\n", summary.Toxicity.TotalChecks)
			fmt.Printf("Toxic detected:    %d (%.1f%%)\n", summary.Toxicity.ToxicDetected, summary.Toxicity.ToxicityRate)
			fmt.Printf("Cache hit rate:    %.1f%%\n", summary.Toxicity.CacheHitRate)
			fmt.Printf("Engine errors:     %d (%.1f%%)\n", summary.Toxicity.EngineErrors, summary.Toxicity.ErrorRate)
			fmt.Printf("Avg response:      %.2fms\n", summary.Performance.AvgResponseTimeMS)
			fmt.Printf("P95 response:      %.2fms\n", summary.Performance.P95ResponseTimeMS)
			fmt.Printf("Cache speedup:     %.1fx\n", summary.Performance.CacheSpeedupFactor)
			for engine, engineSummary := range summary.Engines {
				fmt.Printf("Engine %s: %d checks, %d toxic (%.1f%% error rate)\n",
					engine, engineSummary.TotalChecks, engineSummary.ToxicDetected, engineSummary.ErrorRate)
			}
			return nil
		},
	}

	cmd.Flags().StringP("file", "f", "", "File with one text per line (default stdin)")
	cmd.Flags().StringP("engine", "e", "", "Engine to use (default from config)")
	cmd.Flags().String("export", "", "Export format: dict, prometheus")

	return cmd
}

// screenBatch screens every non-empty line from file (or stdin when file is
// empty). Engine failures are reported but do not abort the batch.
func screenBatch(cmd *cobra.Command, rt *runtime, file string) error {
	var reader io.Reader = cmd.InOrStdin()
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		reader = f
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if _, err := rt.detector.Check(ctx, text, detectorOptions(cmd)); err != nil {
			fmt.Fprintf(os.Stderr, "check failed for %q: %v\n", truncate(text, 40), err)
		}
	}
	return scanner.Err()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
