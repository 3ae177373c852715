// Package changelog consolidates raw pipeline change records into the
// UI-ready unified change log.
package changelog

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"dochub/internal/domain"
)

// Build consolidates raw records in two passes: formatting records that touch
// the same text under the same author collapse into one entry with grouped
// properties, then entries that are otherwise identical collapse into one
// entry with a repeat count. Paragraph position never splits a group; the
// first occurrence's position is kept.
func Build(records []domain.ChangeRecord) []domain.UnifiedChange {
	var out []domain.UnifiedChange
	index := make(map[string]int)

	for _, rec := range records {
		key := groupKey(rec)
		if i, ok := index[key]; ok {
			merge(&out[i], rec)
			continue
		}
		index[key] = len(out)
		out = append(out, fromRecord(rec))
	}

	for i := range out {
		if len(out[i].GroupedProperties) > 0 {
			sortProperties(out[i].GroupedProperties)
			out[i].Property = nil
			out[i].Description = fmt.Sprintf("%d formatting properties changed", len(out[i].GroupedProperties))
		}
	}
	return out
}

func fromRecord(rec domain.ChangeRecord) domain.UnifiedChange {
	uc := domain.UnifiedChange{
		ID:             uuid.New(),
		Category:       rec.Category,
		Author:         rec.Author,
		Date:           rec.Date,
		ParagraphIndex: rec.ParagraphIndex,
		NearestHeading: rec.NearestHeading,
		Description:    rec.Description,
		AffectedText:   rec.AffectedText,
		Before:         rec.Before,
		After:          rec.After,
		Property:       rec.Property,
		Count:          1,
	}
	if rec.Property != nil {
		uc.GroupedProperties = []domain.PropertyChange{*rec.Property}
	}
	return uc
}

func merge(uc *domain.UnifiedChange, rec domain.ChangeRecord) {
	if rec.Property != nil {
		for _, p := range uc.GroupedProperties {
			if p == *rec.Property {
				return
			}
		}
		uc.GroupedProperties = append(uc.GroupedProperties, *rec.Property)
		return
	}
	uc.Count++
}

// groupKey identifies records that belong to the same consolidated entry.
// Formatting records key on category/author/affected text so every property
// change to one span lands in one entry; other records key on their full
// visible content so exact repeats merge into a count.
func groupKey(rec domain.ChangeRecord) string {
	if rec.Property != nil {
		return fmt.Sprintf("fmt|%s|%s|%s", rec.Category, rec.Author, rec.AffectedText)
	}
	return fmt.Sprintf("rec|%s|%s|%s|%s|%s|%s", rec.Category, rec.Author, rec.Description, rec.AffectedText, rec.Before, rec.After)
}

func sortProperties(props []domain.PropertyChange) {
	sort.SliceStable(props, func(i, j int) bool {
		return props[i].Property < props[j].Property
	})
}
