package handlers

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ideaforge/internal/config"
	"ideaforge/internal/knowledge"
	"ideaforge/internal/logger"
)

// NewDashboardCmd creates the dashboard command
func NewDashboardCmd() *cobra.Command {
	var landing bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Re-render the static dashboard from the store",
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

			renderer := newRenderer(cfg)
			if landing {
				for _, rec := range records {
					if _, err := renderer.RenderLanding(rec); err != nil {
						logger.Warn("Landing page rendering failed", "idea", rec.Idea.Name, "error", err)
					}
				}
			}

			path, err := renderer.RenderDashboard(records, knowledge.Analyze(records, time.Now().UTC()))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Dashboard written to %s (%d ideas)\n", path, len(records))
			return nil
		},
	}

	cmd.Flags().BoolVar(&landing, "landing", false, "Also re-render every landing page")

	return cmd
}
