package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sillycarz/reflectpause/pkg/prompts"
)

// NewCheckCmd creates the check command
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [text]",
		Short: "Screen text for toxicity",
		Long: `Analyze text with the configured toxicity engine and report whether a
reflective prompt would be shown. When the text crosses the threshold the
localized prompt is printed as well.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engineOverride, _ := cmd.Flags().GetString("engine")
			locale, _ := cmd.Flags().GetString("locale")
			timeout, _ := cmd.Flags().GetDuration("timeout")

			rt, err := newRuntime(cmd, engineOverride)
			if err != nil {
				return err
			}

			text := strings.Join(args, " ")

			opts := detectorOptions(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			result, err := rt.detector.Check(ctx, text, opts)
			if err != nil {
				return fmt.Errorf("check failed: %w", err)
			}

			if outputFormat(cmd) == "json" {
				payload := map[string]interface{}{
					"should_prompt": result.ShouldPrompt,
					"score":         result.Score,
					"threshold":     result.Threshold,
					"engine":        result.EngineType,
					"cached":        result.WasCached,
					"duration_ms":   result.DurationMS,
				}
				if result.ShouldPrompt {
					generator, err := prompts.NewGenerator()
					if err != nil {
						return err
					}
					prompt, err := generator.Generate(locale)
					if err != nil {
						return err
					}
					payload["prompt"] = prompt
				}
				return printJSON(payload)
			}

			fmt.Printf("Engine:       %s\n", result.EngineType)
			fmt.Printf("Score:        %.3f (threshold %.2f)\n", result.Score, result.Threshold)
			fmt.Printf("Cached:       %v\n", result.WasCached)
			fmt.Printf("Duration:     %.1fms\n", result.DurationMS)

			if !result.ShouldPrompt {
				fmt.Println("Result:       OK, no prompt needed")
				return nil
			}

			fmt.Println("Result:       would show reflective prompt")

			generator, err := prompts.NewGenerator()
			if err != nil {
				return err
			}
			prompt, err := generator.Generate(locale)
			if err != nil {
				return err
			}
			fmt.Println()
			fmt.Printf("%s\n", prompt.Title)
			fmt.Printf("  %s\n", prompt.Question)
			fmt.Printf("  %s\n", prompt.ReflectionPrompt)
			return nil
		},
	}

	cmd.Flags().Float64P("threshold", "t", -1, "Toxicity threshold (0.0-1.0, default from config)")
	cmd.Flags().StringP("engine", "e", "", "Engine to use: heuristic, perspective (default from config)")
	cmd.Flags().StringP("locale", "l", "en", "Locale for the reflective prompt")
	cmd.Flags().Bool("always-prompt", false, "Show the prompt regardless of score")
	cmd.Flags().Duration("timeout", 30*time.Second, "Analysis timeout")

	return cmd
}
