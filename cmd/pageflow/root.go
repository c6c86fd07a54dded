package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/pageflow/internal/config"
	"github.com/gyaneshwarpardhi/pageflow/internal/graph"
	"github.com/gyaneshwarpardhi/pageflow/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "pageflow",
	Short: "Pageflow navigates respondents through branching surveys",
	Long: `Pageflow loads a survey definition (pages, questions and conditional
routes), resolves the next page for each submission and reports the
longest path a respondent can take.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		levelName, _ := cmd.Flags().GetString("log-level")
		level, err := logging.ParseLevel(levelName)
		if err != nil {
			return err
		}
		slog.SetDefault(logging.New(level))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "configs/survey.yaml", "Path to the survey definition (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
}

// loadSurvey reads, validates and compiles the survey named by --config.
func loadSurvey(cmd *cobra.Command) (*config.Loader, *graph.Graph, error) {
	path, _ := cmd.Flags().GetString("config")
	loader, err := config.NewLoader(path)
	if err != nil {
		return nil, nil, err
	}
	cfg := loader.Config()
	if err := config.Validate(cfg); err != nil {
		return nil, nil, err
	}
	g, err := graph.Build(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("build graph: %w", err)
	}
	return loader, g, nil
}
