package handlers

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ideaforge/internal/config"
	"ideaforge/internal/logger"
	"ideaforge/internal/notion"
)

// NewWatchCmd creates the watch command
func NewWatchCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Review ideas submitted through the Notion database",
		Long: `Poll the Notion database for pages with Status "Pending".

Each pending page is critiqued, rendered as a report and landing page, and
updated in place with its scores, links and Status "Done".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			if !cfg.Notion.Enabled() {
				return errors.New("watch requires NOTION_TOKEN and NOTION_DATABASE_ID")
			}
			log := logger.Get()

			client, err := newLLMClient(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			source, err := newNotionClient(cfg)
			if err != nil {
				return err
			}

			w := notion.NewWatcher(source, newCritic(client, cfg, log), newRenderer(cfg), notion.WatcherConfig{
				Interval: config.Duration(cfg.Notion.PollInterval, time.Minute),
				Workers:  cfg.Notion.Workers,
			}, log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if once {
				n, err := w.Poll(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reviewed %d pending page(s)\n", n)
				return nil
			}

			return w.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Poll once and exit")

	return cmd
}
