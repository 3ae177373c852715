package pipeline

import (
	"fmt"

	"dochub/internal/domain"
)

// applyRevisionPolicy runs directly after load, before any mutation. In
// accept-all mode every pre-existing tracked change collapses into the base
// text; in the preserve modes new mutations are recorded as tracked changes
// under the processing author.
func applyRevisionPolicy(ex *execution) {
	switch ex.opts.RevisionMode {
	case domain.RevisionAcceptAll:
		if n := ex.doc.AcceptAllRevisions(); n > 0 {
			ex.record(domain.ChangeRecord{
				Category:    domain.ChangeContent,
				Description: fmt.Sprintf("%d pre-existing tracked changes accepted", n),
			})
		}
	case domain.RevisionPreserve, domain.RevisionPreserveAndWrap:
		ex.doc.SetTrackAuthor(ex.author)
	}
}

// finalizeRevisions runs just before save. The accept-after flag accepts
// every revision still in the document, pre-existing and newly introduced
// alike.
func finalizeRevisions(ex *execution) {
	if !ex.opts.AcceptAfter {
		return
	}
	ex.doc.SetTrackAuthor("")
	if n := ex.doc.AcceptAllRevisions(); n > 0 {
		ex.record(domain.ChangeRecord{
			Category:    domain.ChangeContent,
			Description: fmt.Sprintf("%d tracked changes accepted after processing", n),
		})
	}
}
