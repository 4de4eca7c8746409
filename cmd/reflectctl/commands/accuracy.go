package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sillycarz/reflectpause/pkg/accuracy"
	"github.com/sillycarz/reflectpause/pkg/config"
)

// NewAccuracyCmd creates the accuracy command group
func NewAccuracyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accuracy",
		Short: "Record ground-truth feedback and report engine accuracy",
	}

	cmd.AddCommand(newAccuracyFeedbackCmd())
	cmd.AddCommand(newAccuracyReportCmd())

	return cmd
}

func accuracyStorePath(cfg *config.Config) (string, error) {
	if cfg.Metrics.StorageFile != "" {
		return cfg.Metrics.StorageFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".reflectpause", "accuracy.json"), nil
}

func newTracker(cmd *cobra.Command) (*accuracy.Tracker, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if !cfg.Metrics.AccuracyTracking {
		return nil, fmt.Errorf("accuracy tracking is disabled in the configuration")
	}
	path, err := accuracyStorePath(cfg)
	if err != nil {
		return nil, err
	}
	return accuracy.NewTracker(accuracy.NewFileStore(path)), nil
}

func newAccuracyFeedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback [text]",
		Short: "Record whether a prediction was correct",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			predicted, _ := cmd.Flags().GetBool("predicted")
			actual, _ := cmd.Flags().GetBool("actual")
			engineType, _ := cmd.Flags().GetString("engine")

			fb := accuracy.Feedback{
				Text:           args[0],
				PredictedToxic: predicted,
				ActualToxic:    actual,
				EngineType:     engineType,
			}
			if cmd.Flags().Changed("confidence") {
				confidence, _ := cmd.Flags().GetFloat64("confidence")
				fb.Confidence = &confidence
			}

			tracker, err := newTracker(cmd)
			if err != nil {
				return err
			}
			if err := tracker.RecordFeedback(fb); err != nil {
				return fmt.Errorf("failed to persist feedback: %w", err)
			}
			fmt.Println("Feedback recorded")
			return nil
		},
	}

	cmd.Flags().Bool("predicted", false, "What the engine predicted")
	cmd.Flags().Bool("actual", false, "The actual ground truth")
	cmd.Flags().StringP("engine", "e", "heuristic", "Engine the prediction came from")
	cmd.Flags().Float64("confidence", 0, "Raw engine score, when known")

	return cmd
}

func newAccuracyReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [engine]",
		Short: "Show accuracy metrics, optionally for one engine",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := newTracker(cmd)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				engineMetrics, err := tracker.Metrics(args[0])
				if err != nil {
					return err
				}
				if outputFormat(cmd) == "json" {
					return printJSON(engineMetrics)
				}
				printEngineAccuracy(engineMetrics)
				return nil
			}

			all := tracker.AllMetrics()
			if outputFormat(cmd) == "json" {
				return printJSON(all)
			}
			if len(all) == 0 {
				fmt.Println("No accuracy data recorded yet")
				return nil
			}

			engines := make([]string, 0, len(all))
			for engine := range all {
				engines = append(engines, engine)
			}
			sort.Strings(engines)
			for _, engine := range engines {
				printEngineAccuracy(all[engine])
				fmt.Println()
			}
			return nil
		},
	}

	return cmd
}

func printEngineAccuracy(m accuracy.EngineAccuracy) {
	fmt.Printf("Engine:               %s\n", m.EngineType)
	fmt.Printf("Total predictions:    %d\n", m.TotalPredictions)
	fmt.Printf("Accuracy:             %.1f%%\n", m.Accuracy)
	fmt.Printf("Precision:            %.1f%%\n", m.Precision)
	fmt.Printf("Recall:               %.1f%%\n", m.Recall)
	fmt.Printf("F1 score:             %.1f%%\n", m.F1Score)
	fmt.Printf("False positive rate:  %.1f%%\n", m.FalsePositiveRate)
}
