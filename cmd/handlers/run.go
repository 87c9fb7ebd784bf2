package handlers

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ideaforge/internal/config"
	"ideaforge/internal/logger"
	"ideaforge/internal/pipeline"
)

// ErrNothingPublished makes the process exit non-zero when no run published.
var ErrNothingPublished = errors.New("no idea passed the quality gate")

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	var (
		count    int
		focus    string
		minScore int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate, critique and publish ideas",
		Long: `Run the generate -> critique -> decide loop.

Each run tries up to pipeline.max_cycles ideas and stops at the first one
whose critic score reaches pipeline.min_score. The command fails when none
of the runs published an idea.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("min-score") && (minScore < 0 || minScore > 100) {
				return fmt.Errorf("--min-score must be between 0 and 100, got %d", minScore)
			}
			cfg := config.Get()
			if focus == "" {
				focus = cfg.Pipeline.Focus
			}
			if cmd.Flags().Changed("min-score") {
				cfg.Pipeline.MinScore = minScore
			}
			return runPipeline(cmd, cfg, count, focus, asJSON)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of pipeline runs")
	cmd.Flags().StringVar(&focus, "focus", "", "Vertical or theme to steer generation")
	cmd.Flags().IntVar(&minScore, "min-score", pipeline.DefaultMinScore, "Override the publication threshold")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print run outcomes as JSON")

	return cmd
}

func runPipeline(cmd *cobra.Command, cfg *config.Config, count int, focus string, asJSON bool) error {
	log := logger.Get()
	ctx := cmd.Context()

	c, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer c.Close(log)

	out := cmd.OutOrStdout()
	published := 0
	var outcomes []pipeline.Outcome

	for i := 1; i <= max(count, 1); i++ {
		if ctx.Err() != nil {
			break
		}
		log.Info("Starting pipeline run", "run", i, "of", count, "focus", focus)

		outcome, err := c.controller.Run(ctx, pipeline.RunOptions{Focus: focus})
		outcomes = append(outcomes, outcome)
		if err != nil {
			log.Error("Pipeline run failed", "run", i, "error", err)
		}
		if outcome.Published() {
			published++
		}
		if !asJSON {
			printOutcome(out, i, outcome)
		}
	}

	if asJSON {
		if err := writeJSON(out, outcomes); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "\n%s %d/%d runs published\n", titleStyle.Render("Summary:"), published, len(outcomes))
	}

	if published == 0 {
		return ErrNothingPublished
	}
	return nil
}

func printOutcome(w io.Writer, n int, o pipeline.Outcome) {
	header := fmt.Sprintf("Run %d: %s after %d cycle(s)", n, o.State, o.Cycles)
	if o.Published() {
		fmt.Fprintln(w, okStyle.Render(header))
	} else {
		fmt.Fprintln(w, warnStyle.Render(header))
	}

	for _, a := range o.Attempts {
		line := fmt.Sprintf("  cycle %d  %-10s %s", a.Cycle, a.Status, a.Idea)
		if a.Score != nil {
			line += fmt.Sprintf(" (%d)", *a.Score)
		}
		fmt.Fprintln(w, line)
	}

	if o.Reason != "" {
		fmt.Fprintln(w, faintStyle.Render("  reason: "+o.Reason))
	}
	if o.Record != nil && o.Published() {
		idea := o.Record.Idea
		body := fmt.Sprintf("%s\n%s\nviability %s  virality %s  execution %s",
			titleStyle.Render(idea.Name), idea.Description,
			score(idea.CriticScore), score(idea.ViralityScore), score(idea.GeneratorScore))
		for _, link := range []struct{ label, value string }{
			{"report", o.Links.Report},
			{"landing", o.Links.Landing},
			{"dashboard", o.Links.Dashboard},
			{"workspace", o.Links.Workspace},
		} {
			if link.value != "" {
				body += "\n" + faintStyle.Render(link.label+": ") + link.value
			}
		}
		fmt.Fprintln(w, boxStyle.Render(body))
	}
}
