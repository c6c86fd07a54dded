package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/pageflow/internal/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the survey as a Mermaid flowchart",
	Long: `Prints the page graph in Mermaid syntax. Solid arrows are routes,
dotted arrows are the default next-by-position edge. Pass --visited and
--current to highlight a respondent's path.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, g, err := loadSurvey(cmd)
		if err != nil {
			return err
		}

		visited, _ := cmd.Flags().GetStringSlice("visited")
		current, _ := cmd.Flags().GetString("current")
		var overlay *graph.Overlay
		if len(visited) > 0 || current != "" {
			overlay = &graph.Overlay{Visited: visited, Current: current}
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(g, overlay))
		return nil
	},
}

func init() {
	graphCmd.Flags().StringSlice("visited", nil, "Pages already visited (comma separated)")
	graphCmd.Flags().String("current", "", "Page the respondent is on")
	rootCmd.AddCommand(graphCmd)
}
