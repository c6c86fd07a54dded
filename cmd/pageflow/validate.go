package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/pageflow/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the survey definition for errors",
	Long: `Validates the survey definition and compiles its routes. Problems that
do not stop navigation, such as routes to unknown pages, are printed as
warnings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, g, err := loadSurvey(cmd)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		out := cmd.OutOrStdout()
		warnings := config.Lint(loader.Config())
		for _, w := range warnings {
			fmt.Fprintf(out, "warning: %s\n", w)
		}
		fmt.Fprintf(out, "survey is valid: %d pages, %d warnings\n", g.Len(), len(warnings))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
