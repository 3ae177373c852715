package pipeline

import (
	"dochub/internal/domain"
)

// extractHyperlinks builds the working hyperlink records from the document,
// keeping a parallel slice of live handles for write-back.
func extractHyperlinks(ex *execution) {
	links := ex.doc.Hyperlinks()
	ex.links = links
	ex.records = make([]*domain.HyperlinkRecord, 0, len(links))
	for _, l := range links {
		url := l.Target()
		ex.records = append(ex.records, &domain.HyperlinkRecord{
			RelationshipID:      l.RelationshipID(),
			URL:                 url,
			Anchor:              l.Anchor(),
			DisplayText:         l.DisplayText(),
			ParagraphIndex:      l.ParagraphIndex(),
			PositionInParagraph: l.Position(),
			ContentID:           extractContentID(url),
			DocumentID:          extractDocumentID(url),
			Status:              domain.HyperlinkPending,
		})
	}
	ex.counts.TotalHyperlinks = len(links)
}

// writeBackHyperlinks pushes mutated record state into the document. Only
// fields that actually changed are written.
func writeBackHyperlinks(ex *execution) {
	for i, rec := range ex.records {
		link := ex.links[i]
		if rec.URL != "" && rec.URL != link.Target() {
			if err := ex.doc.SetHyperlinkTarget(rec.RelationshipID, rec.URL); err != nil {
				ex.warns = append(ex.warns, "updating hyperlink target "+rec.RelationshipID+": "+err.Error())
			}
		}
		if rec.DisplayText != link.DisplayText() {
			link.SetDisplayText(rec.DisplayText)
		}
	}
}
