package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sillycarz/reflectpause/pkg/prompts"
)

// NewPromptCmd creates the prompt command
func NewPromptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Generate a localized reflection prompt",
		Long: `Generate the next reflective prompt for a locale. Questions rotate per
locale; repeated invocations in one process cycle through them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			locale, _ := cmd.Flags().GetString("locale")
			listLocales, _ := cmd.Flags().GetBool("list")

			generator, err := prompts.NewGenerator()
			if err != nil {
				return err
			}

			if listLocales {
				fmt.Println(strings.Join(generator.AvailableLocales(), ", "))
				return nil
			}

			prompt, err := generator.Generate(locale)
			if err != nil {
				return err
			}

			if outputFormat(cmd) == "json" {
				return printJSON(prompt)
			}

			fmt.Printf("%s [%s]\n", prompt.Title, prompt.Locale)
			fmt.Printf("  %s\n", prompt.Question)
			fmt.Printf("  %s\n", prompt.ReflectionPrompt)
			fmt.Printf("  [%s] / [%s]\n", prompt.ContinueText, prompt.CancelText)
			return nil
		},
	}

	cmd.Flags().StringP("locale", "l", "en", "Locale, e.g. en, vi, es-MX")
	cmd.Flags().Bool("list", false, "List available locales")

	return cmd
}
