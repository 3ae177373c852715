// Package pipeline sequences the per-document transformation steps: backup,
// hyperlink extraction and enrichment, content-id normalization, custom
// replacements, style assignment, structural cleanup, and revision handling.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"dochub/internal/changelog"
	"dochub/internal/domain"
	"dochub/internal/options"
	"dochub/internal/port"
	"dochub/internal/resolver/powerauto"
)

// Processor runs the document pipeline. It is safe for concurrent use; all
// per-document state lives in the execution.
type Processor struct {
	loader   port.DocumentLoader
	resolver port.ContentResolver
	backups  port.BackupManager
}

// NewProcessor wires the pipeline against its collaborators.
func NewProcessor(loader port.DocumentLoader, resolver port.ContentResolver, backups port.BackupManager) *Processor {
	return &Processor{loader: loader, resolver: resolver, backups: backups}
}

// execution is the mutable state of one document attempt.
type execution struct {
	path    string
	opts    domain.ProcessingOptions
	doc     port.Document
	snap    port.Snapshot
	records []*domain.HyperlinkRecord
	links   []port.Hyperlink
	counts  domain.ProcessingCounts
	changes []domain.ChangeRecord
	warns   []string
	author  string
	now     time.Time
}

// ProcessDocument runs every enabled step against one document and returns
// the structured result. The file is restored from backup on any failure
// after mutation began; the document handle is released on every exit path.
func (p *Processor) ProcessDocument(ctx context.Context, path string, opts domain.ProcessingOptions) domain.ProcessingResult {
	start := time.Now()
	result := domain.ProcessingResult{}

	fail := func(err error) domain.ProcessingResult {
		result.Success = false
		result.ErrorMessages = append(result.ErrorMessages, err.Error())
		result.ProcessingTimeMs = time.Since(start).Milliseconds()
		return result
	}

	if v := options.Validate(opts); !v.Valid {
		msgs := make([]string, 0, len(v.Errors))
		for _, e := range v.Errors {
			msgs = append(msgs, e.Error())
		}
		return fail(fmt.Errorf("%w: %v", domain.ErrValidationFailure, msgs))
	}

	// Size gate. No backup, no load.
	info, err := os.Stat(path)
	if err != nil {
		return fail(fmt.Errorf("stat %s: %v", path, err))
	}
	sizeMB := float64(info.Size()) / (1024 * 1024)
	if sizeMB > opts.MaxFileSizeMB {
		return fail(fmt.Errorf("%w: File too large: %.2f MB exceeds limit of %.2f MB", domain.ErrFileTooLarge, sizeMB, opts.MaxFileSizeMB))
	}

	ex := &execution{path: path, opts: opts, now: time.Now(), author: opts.WrapAuthor}
	if ex.author == "" {
		ex.author = "DocHub"
	}

	if opts.CreateBackup {
		snap, err := p.backups.Acquire(path)
		if err != nil {
			return fail(fmt.Errorf("creating backup: %v", err))
		}
		ex.snap = snap
		result.BackupPath = snap.Path()
	}

	doc, err := p.loader.Load(path)
	if err != nil {
		// Nothing mutated on disk yet; the backup, if any, is kept as-is.
		return fail(err)
	}
	ex.doc = doc
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			log.Printf("[pipeline] closing %s: %v", path, cerr)
		}
	}()

	if err := p.run(ctx, ex); err != nil {
		if ex.snap != nil {
			if rerr := ex.snap.Restore(); rerr != nil {
				result.ErrorMessages = append(result.ErrorMessages, fmt.Sprintf("restore failed: %v", rerr))
			} else {
				log.Printf("[pipeline] restored %s from backup after failure", path)
			}
		}
		return fail(err)
	}

	result.Success = true
	result.Counts = ex.counts
	result.Warnings = ex.warns
	result.ChangeLog = changelog.Build(ex.changes)
	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	return result
}

// run executes steps 4-12; any returned error triggers restore in the caller.
func (p *Processor) run(ctx context.Context, ex *execution) error {
	ops := ex.opts.Operations

	applyRevisionPolicy(ex)

	extractHyperlinks(ex)

	if ops.FixContentIDs {
		if err := normalizeContentIDs(ex); err != nil {
			return err
		}
	}

	if ops.RequiresAPI() {
		if ex.opts.APIEndpoint == "" {
			return fmt.Errorf("%w: update_titles/update_urls require a configured endpoint", domain.ErrAPIEndpointMissing)
		}
		if err := p.enrich(ctx, ex); err != nil {
			return err
		}
	}

	if ops.ApplyReplacements {
		if err := applyReplacements(ex); err != nil {
			return err
		}
	}
	writeBackHyperlinks(ex)

	if ops.ApplyStyles || ops.StripHyperlinkStyle {
		applyStyles(ex)
	}

	// Structural steps run in dependency order: blank-line collapsing before
	// the TOC rebuild so heading positions are stable, list indentation after
	// style assignment so list-paragraph metrics are final.
	if ops.CollapseBlankLines {
		collapseBlankLines(ex)
	}
	if ops.NormalizeHeaders {
		normalizeHeaders(ex)
	}
	if ops.CenterImages {
		centerImages(ex)
	}
	if ops.NormalizeLists {
		normalizeLists(ex)
	}
	if ops.UniformTables {
		normalizeTables(ex)
	}
	if ops.RebuildTOC {
		rebuildTOC(ex)
	}

	finalizeRevisions(ex)

	if err := ex.doc.Save(ex.path); err != nil {
		return fmt.Errorf("%w: saving document: %v", domain.ErrProcessing, err)
	}
	return nil
}

// enrich resolves the extracted lookup ids and applies the results to the
// hyperlink records. The enrichment operations are required once enabled, so
// a transport failure aborts the document.
func (p *Processor) enrich(ctx context.Context, ex *execution) error {
	ids := make([]string, 0, len(ex.records))
	for _, rec := range ex.records {
		if id := rec.LookupID(); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		ex.warns = append(ex.warns, "no hyperlinks carry a recognizable lookup id")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, ex.opts.APITimeout)
	defer cancel()

	results, err := p.resolver.Resolve(ctx, domain.LookupRequest{
		IDs:               ids,
		Endpoint:          ex.opts.APIEndpoint,
		HyperlinksChecked: len(ids),
		TotalHyperlinks:   ex.counts.TotalHyperlinks,
		Requester:         ex.opts.Requester,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAPITimeout) {
			return fmt.Errorf("content lookup timed out: %w", err)
		}
		return fmt.Errorf("content lookup failed: %w", err)
	}

	powerauto.Apply(ex.records, results)

	for i, rec := range ex.records {
		switch rec.Status {
		case domain.HyperlinkUpdated:
			p.applyResolution(ex, i, rec)
		case domain.HyperlinkNotFound:
			ex.record(domain.ChangeRecord{
				Category:       domain.ChangeHyperlink,
				ParagraphIndex: rec.ParagraphIndex,
				Description:    "hyperlink target not found in content registry",
				AffectedText:   rec.DisplayText,
			})
		case domain.HyperlinkExpired:
			ex.warns = append(ex.warns, fmt.Sprintf("expired content: %s", rec.LookupID()))
			ex.record(domain.ChangeRecord{
				Category:       domain.ChangeHyperlink,
				ParagraphIndex: rec.ParagraphIndex,
				Description:    "hyperlink references expired content",
				AffectedText:   rec.DisplayText,
			})
		}
	}
	return nil
}

// applyResolution rewrites one resolved record's title and URL per the
// enabled operations.
func (p *Processor) applyResolution(ex *execution, i int, rec *domain.HyperlinkRecord) {
	ops := ex.opts.Operations
	if ops.UpdateTitles && rec.ResolvedTitle != "" && rec.ResolvedTitle != rec.DisplayText {
		before := rec.DisplayText
		rec.DisplayText = rec.ResolvedTitle
		ex.counts.UpdatedDisplayTexts++
		ex.record(domain.ChangeRecord{
			Category:       domain.ChangeHyperlink,
			ParagraphIndex: rec.ParagraphIndex,
			Description:    "hyperlink display text updated from content registry",
			AffectedText:   before,
			Before:         before,
			After:          rec.ResolvedTitle,
		})
	}
	if ops.UpdateURLs && rec.ResolvedContentID != "" {
		if updated, changed := canonicalizeURL(rec.URL, rec.ResolvedContentID); changed {
			before := rec.URL
			rec.URL = updated
			ex.counts.UpdatedURLs++
			ex.record(domain.ChangeRecord{
				Category:       domain.ChangeHyperlink,
				ParagraphIndex: rec.ParagraphIndex,
				Description:    "hyperlink URL updated to canonical content id",
				AffectedText:   rec.DisplayText,
				Before:         before,
				After:          updated,
			})
		}
	}
	ex.counts.ProcessedHyperlinks++
}

// record appends a change record stamped with the processing author and time.
func (ex *execution) record(rec domain.ChangeRecord) {
	rec.Author = ex.author
	rec.Date = ex.now
	rec.NearestHeading = ex.nearestHeading(rec.ParagraphIndex)
	ex.changes = append(ex.changes, rec)
}

// nearestHeading returns the text of the closest heading at or above the
// paragraph index, for change-log location context.
func (ex *execution) nearestHeading(paraIdx int) string {
	var heading string
	for _, para := range ex.doc.Paragraphs() {
		if para.Index() > paraIdx {
			break
		}
		if _, ok := para.HeadingLevel(); ok {
			heading = para.Text()
		}
	}
	return heading
}
