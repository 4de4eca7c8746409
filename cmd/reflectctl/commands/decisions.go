package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sillycarz/reflectpause/pkg/decisionlog"
)

// NewDecisionsCmd creates the decisions command group
func NewDecisionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decisions",
		Short: "Record and inspect anonymized decision logs",
	}

	cmd.PersistentFlags().String("log-file", "", "Decision log file (default ~/.reflectpause/decisions.jsonl)")

	cmd.AddCommand(newDecisionsLogCmd())
	cmd.AddCommand(newDecisionsStatsCmd())

	return cmd
}

func newDecisionsLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log [decision]",
		Short: "Append a decision to the log",
		Long: `Record an anonymized decision event. Valid decisions:
continued_sending, edited_message, cancelled_message, prompt_viewed,
prompt_ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logFile, _ := cmd.Flags().GetString("log-file")

			logger, err := decisionlog.NewLogger(logFile)
			if err != nil {
				return err
			}
			if err := logger.Log(decisionlog.Decision(args[0]), nil); err != nil {
				return err
			}
			fmt.Printf("Logged %s to %s\n", args[0], logger.Path())
			return nil
		},
	}
}

func newDecisionsStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show decision statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			logFile, _ := cmd.Flags().GetString("log-file")
			days, _ := cmd.Flags().GetInt("days")

			logger, err := decisionlog.NewLogger(logFile)
			if err != nil {
				return err
			}
			stats, err := logger.Summary(days)
			if err != nil {
				return err
			}

			if outputFormat(cmd) == "json" {
				return printJSON(stats)
			}

			fmt.Printf("Entries (last %d days): %d\n", days, stats.TotalEntries)

			decisions := make([]string, 0, len(stats.Decisions))
			for decision := range stats.Decisions {
				decisions = append(decisions, decision)
			}
			sort.Strings(decisions)
			for _, decision := range decisions {
				fmt.Printf("  %-20s %d\n", decision, stats.Decisions[decision])
			}
			return nil
		},
	}

	cmd.Flags().Int("days", 30, "Number of days to include")

	return cmd
}
