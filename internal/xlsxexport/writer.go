// Package xlsxexport renders run reports and change logs as Excel workbooks.
package xlsxexport

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"dochub/internal/domain"
)

const (
	sheetRuns    = "Runs"
	sheetChanges = "Change Log"
)

var runColumns = []string{
	"Run ID",
	"Document",
	"Success",
	"Total Hyperlinks",
	"Processed",
	"Skipped",
	"Appended Content IDs",
	"Updated URLs",
	"Updated Texts",
	"Warnings",
	"Duration (ms)",
	"Backup Path",
	"Error",
	"Created At",
}

var changeColumns = []string{
	"Run ID",
	"Category",
	"Author",
	"Date",
	"Location",
	"Nearest Heading",
	"Description",
	"Affected Text",
	"Before",
	"After",
	"Count",
}

// WriteRunReport writes the runs and their consolidated change logs as a
// two-sheet workbook.
func WriteRunReport(w io.Writer, runs []domain.RunRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetRuns); err != nil {
		return fmt.Errorf("xlsx: naming sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetChanges); err != nil {
		return fmt.Errorf("xlsx: creating sheet: %w", err)
	}

	if err := writeHeader(f, sheetRuns, runColumns); err != nil {
		return err
	}
	if err := writeHeader(f, sheetChanges, changeColumns); err != nil {
		return err
	}

	changeRow := 2
	for i, run := range runs {
		row := []interface{}{
			run.ID.String(),
			run.Path,
			run.Success,
			run.Counts.TotalHyperlinks,
			run.Counts.ProcessedHyperlinks,
			run.Counts.SkippedHyperlinks,
			run.Counts.AppendedContentIDs,
			run.Counts.UpdatedURLs,
			run.Counts.UpdatedDisplayTexts,
			run.Warnings,
			run.DurationMs,
			run.BackupPath,
			run.Error,
			run.CreatedAt.Format(time.RFC3339),
		}
		if err := setRow(f, sheetRuns, i+2, row); err != nil {
			return err
		}
		for _, ch := range run.ChangeLog {
			if err := setRow(f, sheetChanges, changeRow, changeRowValues(run, ch)); err != nil {
				return err
			}
			changeRow++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: writing workbook: %w", err)
	}
	return nil
}

func changeRowValues(run domain.RunRecord, ch domain.UnifiedChange) []interface{} {
	desc := ch.Description
	if len(ch.GroupedProperties) > 0 {
		parts := make([]string, 0, len(ch.GroupedProperties))
		for _, p := range ch.GroupedProperties {
			parts = append(parts, p.Property)
		}
		desc = fmt.Sprintf("%s (%s)", ch.Description, strings.Join(parts, ", "))
	}
	return []interface{}{
		run.ID.String(),
		string(ch.Category),
		ch.Author,
		ch.Date.Format(time.RFC3339),
		fmt.Sprintf("paragraph %d", ch.ParagraphIndex),
		ch.NearestHeading,
		desc,
		ch.AffectedText,
		ch.Before,
		ch.After,
		ch.Count,
	}
}

func writeHeader(f *excelize.File, sheet string, cols []string) error {
	values := make([]interface{}, len(cols))
	for i, c := range cols {
		values[i] = c
	}
	if err := setRow(f, sheet, 1, values); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}
	end, _ := excelize.CoordinatesToCellName(len(cols), 1)
	if err := f.SetCellStyle(sheet, "A1", end, style); err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("xlsx: cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("xlsx: writing row %d: %w", row, err)
	}
	return nil
}
