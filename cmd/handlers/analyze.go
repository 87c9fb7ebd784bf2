package handlers

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ideaforge/internal/config"
	"ideaforge/internal/knowledge"
	"ideaforge/internal/logger"
)

// NewAnalyzeCmd creates the analyze command
func NewAnalyzeCmd() *cobra.Command {
	var (
		save   bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Summarize what kinds of ideas score well",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			records, err := st.List()
			if err != nil {
				return err
			}
			snap := knowledge.Analyze(records, time.Now().UTC())
			if save {
				kb := knowledge.NewBase(cfg.App.DataDir)
				if err := kb.Save(snap); err != nil {
					return err
				}
				logger.Info("Knowledge snapshot saved", "path", kb.Path())
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), snap)
			}
			printSnapshot(cmd.OutOrStdout(), snap)
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Write the snapshot to the knowledge file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the snapshot as JSON")

	return cmd
}

func printSnapshot(w io.Writer, s knowledge.Snapshot) {
	fmt.Fprintln(w, titleStyle.Render("Idea knowledge base"))
	fmt.Fprintf(w, "%d ideas, %d scored, average %.1f, median %.1f\n\n",
		s.TotalIdeas, s.ScoredIdeas, s.AverageScore, s.MedianScore)

	if s.ScoredIdeas == 0 {
		fmt.Fprintln(w, faintStyle.Render("No scored ideas yet. Run `ideaforge run` first."))
		return
	}

	fmt.Fprintln(w, titleStyle.Render("Score distribution"))
	peak := 0
	for _, b := range s.Distribution {
		peak = max(peak, b.Count)
	}
	for _, b := range s.Distribution {
		bar := ""
		if peak > 0 {
			bar = strings.Repeat("█", b.Count*30/peak)
		}
		fmt.Fprintf(w, "  %-8s %s %d\n", b.Label, okStyle.Render(bar), b.Count)
	}

	printRanked(w, "Top verticals", s.TopVerticals)
	printRanked(w, "Top idea types", s.TopTypes)
	printRanked(w, "Monetization models", s.TopMonetization)

	if len(s.Insights) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, boxStyle.Render(strings.Join(s.Insights, "\n")))
	}
}

func printRanked(w io.Writer, title string, ranked []knowledge.Ranked) {
	if len(ranked) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render(title))
	for i, r := range ranked {
		fmt.Fprintf(w, "  %d. %-24s avg %5.1f  (%d)\n", i+1, r.Name, r.Average, r.Count)
	}
}
