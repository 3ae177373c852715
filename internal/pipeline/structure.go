package pipeline

import (
	"fmt"

	"dochub/internal/domain"
)

// collapseBlankLines removes every empty paragraph that directly follows
// another empty paragraph, leaving at most one blank line between blocks.
func collapseBlankLines(ex *execution) {
	prevEmpty := false
	removed := 0
	for _, para := range ex.doc.Paragraphs() {
		if para.Removed() {
			continue
		}
		if !para.IsEmpty() {
			prevEmpty = false
			continue
		}
		if prevEmpty {
			para.Remove()
			removed++
			continue
		}
		prevEmpty = true
	}
	if removed > 0 {
		ex.record(domain.ChangeRecord{
			Category:    domain.ChangeStructural,
			Description: fmt.Sprintf("%d consecutive blank paragraphs removed", removed),
		})
	}
}

// normalizeHeaders makes the heading hierarchy contiguous: a heading may sit
// at most one level below the previous heading, so h1 followed by h3 becomes
// h1 followed by h2.
func normalizeHeaders(ex *execution) {
	last := 0
	for _, para := range ex.doc.Paragraphs() {
		if para.Removed() {
			continue
		}
		lvl, ok := para.HeadingLevel()
		if !ok {
			continue
		}
		want := lvl
		if last == 0 && lvl > 1 {
			want = 1
		} else if last > 0 && lvl > last+1 {
			want = last + 1
		}
		if want != lvl {
			para.SetStyleID(fmt.Sprintf("Heading%d", want))
			ex.record(domain.ChangeRecord{
				Category:       domain.ChangeStructural,
				ParagraphIndex: para.Index(),
				Description:    "heading level adjusted to keep the outline contiguous",
				AffectedText:   clip(para.Text()),
				Before:         fmt.Sprintf("Heading%d", lvl),
				After:          fmt.Sprintf("Heading%d", want),
			})
			lvl = want
		}
		last = lvl
	}
}

// centerImages centers every paragraph that contains a drawing.
func centerImages(ex *execution) {
	for _, para := range ex.doc.Paragraphs() {
		if para.Removed() {
			continue
		}
		hasDrawing := false
		for _, r := range para.Runs() {
			if r.HasDrawing() {
				hasDrawing = true
				break
			}
		}
		if !hasDrawing || para.Alignment() == domain.AlignCenter {
			continue
		}
		para.SetAlignment(domain.AlignCenter)
		ex.record(domain.ChangeRecord{
			Category:       domain.ChangeImage,
			ParagraphIndex: para.Index(),
			Description:    "image paragraph centered",
		})
	}
}

// normalizeLists applies the configured per-level indentation to every list
// paragraph. Levels beyond the configured depth reuse the deepest entry.
func normalizeLists(ex *execution) {
	levels := ex.opts.ListIndentation
	if len(levels) == 0 {
		return
	}
	adjusted := 0
	for _, para := range ex.doc.Paragraphs() {
		if para.Removed() {
			continue
		}
		_, lvl, ok := para.Numbering()
		if !ok {
			continue
		}
		if lvl >= len(levels) {
			lvl = len(levels) - 1
		}
		ind := levels[lvl]
		para.SetIndentation(ind.TextIndentPt, ind.TextIndentPt-ind.SymbolIndentPt)
		adjusted++
	}
	if adjusted > 0 {
		ex.record(domain.ChangeRecord{
			Category:    domain.ChangeStructural,
			Description: fmt.Sprintf("list indentation normalized across %d paragraphs", adjusted),
		})
	}
}

// rebuildTOC marks the document's fields stale so the table of contents is
// regenerated against the normalized heading set on next open.
func rebuildTOC(ex *execution) {
	if err := ex.doc.MarkFieldsStale(); err != nil {
		ex.warns = append(ex.warns, "table of contents refresh could not be scheduled: "+err.Error())
		return
	}
	ex.record(domain.ChangeRecord{
		Category:    domain.ChangeField,
		Description: "table of contents marked for regeneration",
	})
}
