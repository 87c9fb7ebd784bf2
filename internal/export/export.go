// Package export writes stored ideas to spreadsheets.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"ideaforge/internal/core"
)

// Formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// Headers is the column order of every export.
var Headers = []string{
	"Name", "Status", "Critic", "Virality", "Execution", "Vertical", "Type",
	"Monetization", "Price", "Effort", "Description", "Problem", "Solution",
	"Strengths", "Weaknesses", "Reason", "Fingerprint", "Recorded",
}

// Row flattens a record into cell values; scores stay numeric.
func Row(rec core.Record) []any {
	idea := rec.Idea
	var strengths, weaknesses string
	if c := rec.Critique; c != nil {
		strengths = strings.Join(c.Strengths, "; ")
		weaknesses = strings.Join(c.Weaknesses, "; ")
	}
	return []any{
		idea.Name, idea.Status, scoreCell(idea.CriticScore), scoreCell(idea.ViralityScore), scoreCell(idea.GeneratorScore),
		idea.Vertical, idea.Type, idea.Monetization, idea.Price.String(), idea.Effort,
		idea.Description, idea.Problem, idea.Solution, strengths, weaknesses, rec.Reason,
		idea.Fingerprint, rec.RecordedAt.UTC().Format("2006-01-02 15:04:05"),
	}
}

func scoreCell(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

// Write picks the format from the explicit argument or the file extension.
func Write(path, format string, records []core.Record) error {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	switch format {
	case FormatXLSX:
		return WriteXLSX(path, records)
	case FormatCSV:
		return WriteCSV(path, records)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteXLSX writes the records to a single-sheet workbook.
func WriteXLSX(path string, records []core.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Ideas"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, h := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, rec := range records {
		for c, v := range Row(rec) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("failed to freeze header row: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// WriteCSV writes the records as comma-separated values.
func WriteCSV(path string, records []core.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(Headers); err != nil {
		return err
	}
	for _, rec := range records {
		row := Row(rec)
		out := make([]string, len(row))
		for i, v := range row {
			switch x := v.(type) {
			case int:
				out[i] = strconv.Itoa(x)
			case string:
				out[i] = x
			default:
				out[i] = fmt.Sprint(x)
			}
		}
		if err := w.Write(out); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
