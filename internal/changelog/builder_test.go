package changelog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dochub/internal/domain"
)

var when = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func formattingRecord(paraIdx int, affected, property, newValue string) domain.ChangeRecord {
	return domain.ChangeRecord{
		Category:       domain.ChangeFormatting,
		Author:         "DocHub",
		Date:           when,
		ParagraphIndex: paraIdx,
		Description:    "formatting changed",
		AffectedText:   affected,
		Property:       &domain.PropertyChange{Property: property, NewValue: newValue},
	}
}

func TestBuild_GroupsFormattingByAffectedText(t *testing.T) {
	records := []domain.ChangeRecord{
		formattingRecord(3, "Chapter One", "font", "Calibri"),
		formattingRecord(3, "Chapter One", "size", "11"),
		formattingRecord(3, "Chapter One", "color", "1F4E79"),
	}

	out := Build(records)
	require.Len(t, out, 1)

	uc := out[0]
	assert.Equal(t, "3 formatting properties changed", uc.Description)
	assert.Nil(t, uc.Property)
	require.Len(t, uc.GroupedProperties, 3)
	// Properties come out sorted by name.
	assert.Equal(t, "color", uc.GroupedProperties[0].Property)
	assert.Equal(t, "font", uc.GroupedProperties[1].Property)
	assert.Equal(t, "size", uc.GroupedProperties[2].Property)
}

func TestBuild_ParagraphIndexNeverSplitsAGroup(t *testing.T) {
	// Same span touched from two different paragraph positions (the span
	// moved mid-pipeline); still one consolidated entry.
	records := []domain.ChangeRecord{
		formattingRecord(3, "Summary", "font", "Calibri"),
		formattingRecord(7, "Summary", "size", "11"),
	}

	out := Build(records)
	require.Len(t, out, 1)
	assert.Equal(t, 3, out[0].ParagraphIndex, "first occurrence's position wins")
	assert.Len(t, out[0].GroupedProperties, 2)
}

func TestBuild_DuplicatePropertyRecordedOnce(t *testing.T) {
	records := []domain.ChangeRecord{
		formattingRecord(1, "Intro", "font", "Calibri"),
		formattingRecord(1, "Intro", "font", "Calibri"),
	}

	out := Build(records)
	require.Len(t, out, 1)
	assert.Len(t, out[0].GroupedProperties, 1)
}

func TestBuild_IdenticalRecordsMergeIntoCount(t *testing.T) {
	rec := domain.ChangeRecord{
		Category:    domain.ChangeStructural,
		Author:      "DocHub",
		Date:        when,
		Description: "2 consecutive blank paragraphs removed",
	}
	out := Build([]domain.ChangeRecord{rec, rec, rec})
	require.Len(t, out, 1)
	assert.Equal(t, 3, out[0].Count)
	assert.Empty(t, out[0].GroupedProperties)
	assert.Equal(t, "2 consecutive blank paragraphs removed", out[0].Description)
}

func TestBuild_DistinctRecordsStaySeparate(t *testing.T) {
	out := Build([]domain.ChangeRecord{
		{Category: domain.ChangeHyperlink, Author: "DocHub", Description: "hyperlink URL updated", Before: "a", After: "b"},
		{Category: domain.ChangeHyperlink, Author: "DocHub", Description: "hyperlink URL updated", Before: "a", After: "c"},
		{Category: domain.ChangeTable, Author: "DocHub", Description: "table 1 formatted (3x2)"},
	})
	assert.Len(t, out, 3)
	for _, uc := range out {
		assert.Equal(t, 1, uc.Count)
		assert.NotEqual(t, "", uc.ID.String())
	}
}

func TestBuild_Empty(t *testing.T) {
	assert.Empty(t, Build(nil))
}
