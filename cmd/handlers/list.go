package handlers

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ideaforge/internal/config"
	"ideaforge/internal/core"
	"ideaforge/internal/tui"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var (
		rejected bool
		limit    int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List published (or rejected) ideas, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadRecords(config.Get(), rejected)
			if err != nil {
				return err
			}
			records = newestFirst(records, limit)

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			printRecords(cmd.OutOrStdout(), records, rejected)
			return nil
		},
	}

	cmd.Flags().BoolVar(&rejected, "rejected", false, "List the rejected log instead")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum ideas to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")

	return cmd
}

// NewBrowseCmd creates the interactive browse command
func NewBrowseCmd() *cobra.Command {
	var rejected bool

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse stored ideas in a terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadRecords(config.Get(), rejected)
			if err != nil {
				return err
			}
			return tui.Run(newestFirst(records, 0))
		},
	}

	cmd.Flags().BoolVar(&rejected, "rejected", false, "Browse the rejected log instead")

	return cmd
}

func loadRecords(cfg *config.Config, rejected bool) ([]core.Record, error) {
	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	if rejected {
		return st.ListRejected()
	}
	return st.List()
}

// newestFirst reverses insertion order and truncates to limit when limit > 0.
func newestFirst(records []core.Record, limit int) []core.Record {
	out := make([]core.Record, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		out = append(out, records[i])
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func printRecords(w io.Writer, records []core.Record, rejected bool) {
	if len(records) == 0 {
		fmt.Fprintln(w, faintStyle.Render("No ideas found."))
		return
	}

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%-12s  %-5s  %-5s  %-14s  %s", "FINGERPRINT", "SCORE", "VIRAL", "VERTICAL", "NAME")))
	for _, rec := range records {
		idea := rec.Idea
		fmt.Fprintf(w, "%-12s  %-5s  %-5s  %-14s  %s\n",
			idea.Fingerprint, score(idea.CriticScore), score(idea.ViralityScore), idea.Vertical, idea.Name)
		if rejected && rec.Reason != "" {
			fmt.Fprintln(w, faintStyle.Render("              "+rec.Reason))
		}
	}
}
