package xlsxexport

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"dochub/internal/domain"
)

func TestWriteRunReport(t *testing.T) {
	runID := uuid.New()
	created := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	runs := []domain.RunRecord{
		{
			ID:      runID,
			Path:    "/docs/report.docx",
			Success: true,
			Counts: domain.ProcessingCounts{
				TotalHyperlinks:     4,
				ProcessedHyperlinks: 3,
				AppendedContentIDs:  2,
			},
			Warnings:   1,
			DurationMs: 842,
			CreatedAt:  created,
			ChangeLog: []domain.UnifiedChange{
				{
					ID:             uuid.New(),
					Category:       domain.ChangeHyperlink,
					Author:         "DocHub",
					Date:           created,
					ParagraphIndex: 5,
					NearestHeading: "Overview",
					Description:    "content-id fragment appended to hyperlink URL",
					Before:         "https://host/doc?id=a",
					After:          "https://host/doc?id=a#content",
					Count:          1,
				},
				{
					ID:          uuid.New(),
					Category:    domain.ChangeFormatting,
					Author:      "DocHub",
					Date:        created,
					Description: "2 formatting properties changed",
					GroupedProperties: []domain.PropertyChange{
						{Property: "font", NewValue: "Calibri"},
						{Property: "size", NewValue: "11"},
					},
					Count: 1,
				},
			},
		},
		{
			ID:        uuid.New(),
			Path:      "/docs/broken.docx",
			Success:   false,
			Error:     "content lookup failed",
			CreatedAt: created,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRunReport(&buf, runs))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Runs", "Change Log"}, f.GetSheetList())

	rows, err := f.GetRows("Runs")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Run ID", rows[0][0])
	assert.Equal(t, "Created At", rows[0][13])

	assert.Equal(t, runID.String(), rows[1][0])
	assert.Equal(t, "/docs/report.docx", rows[1][1])
	assert.Equal(t, "TRUE", rows[1][2])
	assert.Equal(t, "4", rows[1][3])
	assert.Equal(t, "842", rows[1][10])
	assert.Equal(t, "2026-04-02T09:30:00Z", rows[1][13])

	assert.Equal(t, "/docs/broken.docx", rows[2][1])
	assert.Equal(t, "content lookup failed", rows[2][12])

	changes, err := f.GetRows("Change Log")
	require.NoError(t, err)
	require.Len(t, changes, 3)
	assert.Equal(t, "Category", changes[0][1])
	assert.Equal(t, runID.String(), changes[1][0])
	assert.Equal(t, "hyperlink", changes[1][1])
	assert.Equal(t, "paragraph 5", changes[1][4])
	assert.Equal(t, "Overview", changes[1][5])
	assert.Equal(t, "2 formatting properties changed (font, size)", changes[2][6])
}

func TestWriteRunReport_NoRuns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRunReport(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Runs")
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}
