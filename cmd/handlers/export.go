package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"ideaforge/internal/config"
	"ideaforge/internal/export"
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	var (
		format   string
		out      string
		rejected bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored ideas to a spreadsheet",
		Long: `Export stored ideas to XLSX or CSV.

Examples:
  ideaforge export --out ideas.xlsx
  ideaforge export --format csv --out rejected.csv --rejected`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				ext := format
				if ext == "" {
					ext = export.FormatXLSX
				}
				out = "ideas." + ext
			}

			records, err := loadRecords(config.Get(), rejected)
			if err != nil {
				return err
			}
			if err := export.Write(out, format, records); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d ideas to %s\n", len(records), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "xlsx or csv (default from the file extension)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default ideas.xlsx)")
	cmd.Flags().BoolVar(&rejected, "rejected", false, "Export the rejected log instead")

	return cmd
}
