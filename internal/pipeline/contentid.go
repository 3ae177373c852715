package pipeline

import (
	"regexp"
	"strings"

	"dochub/internal/domain"
)

// Recognized identifier forms in external document URLs.
var (
	contentIDPattern  = regexp.MustCompile(`(?i)(TSRC|CMS)-([a-zA-Z0-9]+)-(\d{6})`)
	documentIDPattern = regexp.MustCompile(`docid=([a-zA-Z0-9-]+)`)
	queryIDPattern    = regexp.MustCompile(`[?&]id=([a-zA-Z0-9-]+)`)
)

func extractContentID(url string) string {
	return contentIDPattern.FindString(url)
}

func extractDocumentID(url string) string {
	if m := documentIDPattern.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	if m := queryIDPattern.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return ""
}

// isSourceURL reports whether the URL matches a recognized external-document
// form eligible for content-id normalization.
func isSourceURL(url string) bool {
	return contentIDPattern.MatchString(url) || documentIDPattern.MatchString(url) || queryIDPattern.MatchString(url)
}

// normalizeContentIDs appends the configured fragment to every recognized
// URL that lacks it. A URL that already carries the fragment is counted as
// skipped, never appended again, so a second run is a no-op.
func normalizeContentIDs(ex *execution) error {
	suffix := ex.opts.ContentIDSuffix
	for _, rec := range ex.records {
		if !isSourceURL(rec.URL) {
			continue
		}
		if strings.Contains(rec.URL, suffix) {
			ex.counts.SkippedHyperlinks++
			continue
		}
		before := rec.URL
		rec.URL += suffix
		ex.counts.AppendedContentIDs++
		ex.record(domain.ChangeRecord{
			Category:       domain.ChangeHyperlink,
			ParagraphIndex: rec.ParagraphIndex,
			Description:    "content-id fragment appended to hyperlink URL",
			AffectedText:   rec.DisplayText,
			Before:         before,
			After:          rec.URL,
		})
	}
	return nil
}

// canonicalizeURL swaps the URL's embedded content id for the registry's
// canonical form. Returns the URL unchanged when it carries no content id or
// already matches.
func canonicalizeURL(url, canonicalID string) (string, bool) {
	current := contentIDPattern.FindString(url)
	if current == "" || current == canonicalID {
		return url, false
	}
	return strings.Replace(url, current, canonicalID, 1), true
}
