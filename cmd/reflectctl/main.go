package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sillycarz/reflectpause/cmd/reflectctl/commands"
	"github.com/sillycarz/reflectpause/pkg/observability/logging"
)

var (
	// Version information (set by build flags)
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	// Initialize logging
	if _, err := logging.InitLoggerFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
	}

	rootCmd := &cobra.Command{
		Use:   "reflectctl",
		Short: "Reflective Pause toxicity screening CLI",
		Long: `reflectctl is a command-line tool for the Reflective Pause library.

It screens text for toxicity, generates localized reflection prompts, and
inspects the cache, metrics, and accuracy state used by integrations.

Common workflows:
  reflectctl check "some message"      # Screen a message
  reflectctl prompt --locale vi        # Generate a reflection prompt
  reflectctl metrics                   # Show session metrics
  reflectctl cache stats               # Inspect the result cache

For detailed help on any command, use:
  reflectctl <command> --help`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format: table, json")

	// Add subcommands
	rootCmd.AddCommand(commands.NewCheckCmd())
	rootCmd.AddCommand(commands.NewPromptCmd())
	rootCmd.AddCommand(commands.NewMetricsCmd())
	rootCmd.AddCommand(commands.NewCacheCmd())
	rootCmd.AddCommand(commands.NewDecisionsCmd())
	rootCmd.AddCommand(commands.NewAccuracyCmd())

	// Execute
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
