package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"dochub/internal/domain"
)

// applyReplacements runs every configured find/replace rule over the
// hyperlink records. Rules apply in configuration order; later rules see the
// output of earlier ones.
func applyReplacements(ex *execution) error {
	for i, rule := range ex.opts.Replacements {
		apply, err := matcher(rule)
		if err != nil {
			return fmt.Errorf("%w: replacement rule %d: %v", domain.ErrValidationFailure, i, err)
		}
		for _, rec := range ex.records {
			switch rule.Target {
			case domain.TargetURL:
				if updated, changed := apply(rec.URL); changed {
					ex.recordReplacement(rec, "hyperlink URL rewritten by replacement rule", rec.URL, updated)
					rec.URL = updated
					ex.counts.UpdatedURLs++
				}
			case domain.TargetText:
				if updated, changed := apply(rec.DisplayText); changed {
					ex.recordReplacement(rec, "hyperlink text rewritten by replacement rule", rec.DisplayText, updated)
					rec.DisplayText = updated
					ex.counts.UpdatedDisplayTexts++
				}
			}
		}
	}
	return nil
}

func (ex *execution) recordReplacement(rec *domain.HyperlinkRecord, desc, before, after string) {
	ex.record(domain.ChangeRecord{
		Category:       domain.ChangeHyperlink,
		ParagraphIndex: rec.ParagraphIndex,
		Description:    desc,
		AffectedText:   rec.DisplayText,
		Before:         before,
		After:          after,
	})
}

// matcher compiles one rule into a function applying it to a value.
func matcher(rule domain.ReplacementRule) (func(string) (string, bool), error) {
	switch rule.Match {
	case domain.MatchExact:
		return func(s string) (string, bool) {
			if s == rule.Find {
				return rule.Replace, true
			}
			return s, false
		}, nil
	case domain.MatchContains:
		return func(s string) (string, bool) {
			if !strings.Contains(s, rule.Find) {
				return s, false
			}
			return strings.ReplaceAll(s, rule.Find, rule.Replace), true
		}, nil
	case domain.MatchRegex:
		re, err := regexp.Compile(rule.Find)
		if err != nil {
			return nil, err
		}
		return func(s string) (string, bool) {
			if !re.MatchString(s) {
				return s, false
			}
			return re.ReplaceAllString(s, rule.Replace), true
		}, nil
	default:
		return nil, fmt.Errorf("unknown match type %q", rule.Match)
	}
}
