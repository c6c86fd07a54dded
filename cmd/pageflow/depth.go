package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type pageDepth struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
	Depth    int    `json:"depth"`
}

type depthReport struct {
	Pages          int         `json:"pages"`
	FirstPage      string      `json:"first_page,omitempty"`
	MaxDepth       int         `json:"max_depth"`
	MaxTransitions int         `json:"max_transitions"`
	PerPage        []pageDepth `json:"per_page"`
}

var depthCmd = &cobra.Command{
	Use:   "depth",
	Short: "Report the longest path through the survey",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, g, err := loadSurvey(cmd)
		if err != nil {
			return err
		}

		report := depthReport{
			Pages:          g.Len(),
			MaxDepth:       g.FindMaxDepth(),
			MaxTransitions: g.MaxTransitions(),
			PerPage:        make([]pageDepth, 0, g.Len()),
		}
		if first := g.FirstPage(); first != nil {
			report.FirstPage = first.ID()
		}
		for _, n := range g.Nodes() {
			report.PerPage = append(report.PerPage, pageDepth{ID: n.ID(), Position: n.Position(), Depth: g.FindDepth(n.ID())})
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		fmt.Fprintf(out, "pages: %d\nfirst page: %s\nmax depth: %d\nmax transitions: %d\n\n",
			report.Pages, report.FirstPage, report.MaxDepth, report.MaxTransitions)
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PAGE\tPOSITION\tDEPTH")
		for _, p := range report.PerPage {
			fmt.Fprintf(tw, "%s\t%d\t%d\n", p.ID, p.Position, p.Depth)
		}
		return tw.Flush()
	},
}

func init() {
	depthCmd.Flags().Bool("json", false, "Print the report as JSON")
	rootCmd.AddCommand(depthCmd)
}
