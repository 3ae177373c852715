package options

import (
	"fmt"
	"regexp"

	"dochub/internal/domain"
)

// Font sizes are half-point encoded in the container, which caps them at
// 1638pt.
const maxFontSizePt = 1638

var colorPattern = regexp.MustCompile(`^[0-9A-F]{6}$`)

// ValidationError is one specific, enumerable configuration violation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult aggregates every violation found; Valid is false when any
// exist.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// Validate checks every numeric range, color form, and cross-field
// constraint of the processing options, returning one error per violation.
func Validate(opts domain.ProcessingOptions) ValidationResult {
	var errs []ValidationError
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if opts.MaxFileSizeMB <= 0 {
		add("max_file_size_mb", "must be positive, got %v", opts.MaxFileSizeMB)
	}

	for role, def := range opts.Styles {
		prefix := "styles." + string(role)
		if def.FontSizePt <= 0 || def.FontSizePt > maxFontSizePt {
			add(prefix+".font_size_pt", "must be in (0, %d], got %v", maxFontSizePt, def.FontSizePt)
		}
		if def.Color != "" && !colorPattern.MatchString(def.Color) {
			add(prefix+".color", "must be a 6-hex-digit color, got %q", def.Color)
		}
		if def.SpacingBefore < 0 {
			add(prefix+".spacing_before_pt", "must not be negative, got %v", def.SpacingBefore)
		}
		if def.SpacingAfter < 0 {
			add(prefix+".spacing_after_pt", "must not be negative, got %v", def.SpacingAfter)
		}
		if def.LineSpacing < 0 {
			add(prefix+".line_spacing", "must not be negative, got %v", def.LineSpacing)
		}
	}

	for i, lvl := range opts.ListIndentation {
		prefix := fmt.Sprintf("list_indentation[%d]", i)
		if lvl.SymbolIndentPt < 0 {
			add(prefix+".symbol_indent_pt", "must not be negative, got %v", lvl.SymbolIndentPt)
		}
		if lvl.TextIndentPt <= lvl.SymbolIndentPt {
			add(prefix+".text_indent_pt", "must exceed symbol indent %v, got %v", lvl.SymbolIndentPt, lvl.TextIndentPt)
		}
	}

	for name, fill := range map[string]string{
		"table_shading.header_fill":      opts.TableShading.HeaderFill,
		"table_shading.alt_row_fill":     opts.TableShading.AltRowFill,
		"table_shading.single_cell_fill": opts.TableShading.SingleCellFill,
	} {
		if fill != "" && !colorPattern.MatchString(fill) {
			add(name, "must be a 6-hex-digit color, got %q", fill)
		}
	}

	for i, rule := range opts.Replacements {
		prefix := fmt.Sprintf("replacements[%d]", i)
		switch rule.Target {
		case domain.TargetURL, domain.TargetText:
		default:
			add(prefix+".target", "must be url or text, got %q", rule.Target)
		}
		switch rule.Match {
		case domain.MatchExact, domain.MatchContains:
		case domain.MatchRegex:
			if _, err := regexp.Compile(rule.Find); err != nil {
				add(prefix+".find", "invalid regular expression: %v", err)
			}
		default:
			add(prefix+".match", "must be exact, contains, or regex, got %q", rule.Match)
		}
		if rule.Find == "" {
			add(prefix+".find", "must not be empty")
		}
	}

	switch opts.RevisionMode {
	case domain.RevisionAcceptAll, domain.RevisionPreserve, domain.RevisionPreserveAndWrap:
	default:
		add("revision_mode", "must be accept_all, preserve, or preserve_and_wrap, got %q", opts.RevisionMode)
	}
	if opts.RevisionMode == domain.RevisionPreserveAndWrap && opts.WrapAuthor == "" {
		add("wrap_author", "required when revision_mode is preserve_and_wrap")
	}

	if opts.Operations.FixContentIDs && opts.ContentIDSuffix == "" {
		add("content_id_suffix", "required when fix_content_ids is enabled")
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
