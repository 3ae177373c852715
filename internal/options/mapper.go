// Package options maps the user-facing session configuration into the
// validated processing options the pipeline consumes.
package options

import (
	"strings"
	"time"

	"dochub/internal/domain"
)

// Flat option identifiers accepted in SessionConfig.EnabledOptions.
const (
	OptFixContentIDs       = "fix_content_ids"
	OptUpdateTitles        = "update_titles"
	OptUpdateURLs          = "update_urls"
	OptApplyStyles         = "apply_styles"
	OptStripHyperlinkStyle = "strip_hyperlink_style"
	OptApplyReplacements   = "apply_replacements"
	OptCollapseBlankLines  = "collapse_blank_lines"
	OptNormalizeLists      = "normalize_lists"
	OptUniformTables       = "uniform_tables"
	OptSmartTableDetect    = "smart_table_detect"
	OptNormalizeHeaders    = "normalize_headers"
	OptCenterImages        = "center_images"
	OptRebuildTOC          = "rebuild_toc"
)

// SessionToProcessorOptions translates a session configuration into
// processing options. Every property round-trips; nothing is silently
// dropped. The result still requires Validate before use.
func SessionToProcessorOptions(cfg domain.SessionConfig) domain.ProcessingOptions {
	opts := domain.ProcessingOptions{
		MaxFileSizeMB:   cfg.MaxFileSizeMB,
		CreateBackup:    cfg.CreateBackup,
		Operations:      mapOperations(cfg.EnabledOptions),
		Styles:          make(map[domain.StyleRole]domain.StyleDef, len(cfg.Styles)),
		ListIndentation: append([]domain.IndentLevel(nil), cfg.ListIndentation...),
		TableShading: domain.TableShading{
			HeaderFill:     NormalizeColor(cfg.TableShading.HeaderFill),
			AltRowFill:     NormalizeColor(cfg.TableShading.AltRowFill),
			SingleCellFill: NormalizeColor(cfg.TableShading.SingleCellFill),
		},
		Replacements:    append([]domain.ReplacementRule(nil), cfg.Replacements...),
		ContentIDSuffix: cfg.ContentIDSuffix,
		APIEndpoint:     cfg.APIEndpoint,
		APITimeout:      time.Duration(cfg.APITimeoutSecs) * time.Second,
		RevisionMode:    mapRevisionMode(cfg.RevisionMode),
		WrapAuthor:      cfg.WrapAuthor,
		AcceptAfter:     cfg.AcceptAfter,
		Requester:       cfg.Requester,
	}
	if opts.APITimeout <= 0 {
		opts.APITimeout = 30 * time.Second
	}

	for name, in := range cfg.Styles {
		role := domain.StyleRole(strings.ToLower(strings.TrimSpace(name)))
		opts.Styles[role] = domain.StyleDef{
			FontFamily:    in.FontFamily,
			FontSizePt:    in.FontSizePt,
			Color:         NormalizeColor(in.Color),
			Bold:          mapTristate(in.Bold),
			Italic:        mapTristate(in.Italic),
			Underline:     mapTristate(in.Underline),
			Alignment:     mapAlignment(in.Alignment),
			SpacingBefore: in.SpacingBefore,
			SpacingAfter:  in.SpacingAfter,
			LineSpacing:   in.LineSpacing,
		}
	}
	return opts
}

func mapOperations(enabled []string) domain.OperationSet {
	var ops domain.OperationSet
	for _, id := range enabled {
		switch strings.ToLower(strings.TrimSpace(id)) {
		case OptFixContentIDs:
			ops.FixContentIDs = true
		case OptUpdateTitles:
			ops.UpdateTitles = true
		case OptUpdateURLs:
			ops.UpdateURLs = true
		case OptApplyStyles:
			ops.ApplyStyles = true
		case OptStripHyperlinkStyle:
			ops.StripHyperlinkStyle = true
		case OptApplyReplacements:
			ops.ApplyReplacements = true
		case OptCollapseBlankLines:
			ops.CollapseBlankLines = true
		case OptNormalizeLists:
			ops.NormalizeLists = true
		case OptUniformTables:
			ops.UniformTables = true
		case OptSmartTableDetect:
			ops.SmartTableDetect = true
		case OptNormalizeHeaders:
			ops.NormalizeHeaders = true
		case OptCenterImages:
			ops.CenterImages = true
		case OptRebuildTOC:
			ops.RebuildTOC = true
		}
	}
	// Smart table detection depends on uniform formatting being applied.
	if ops.SmartTableDetect {
		ops.UniformTables = true
	}
	return ops
}

// NormalizeColor canonicalizes a display color ("#1a2b3c", "1A2B3C", "#abc")
// to 6 uppercase hex digits. Unrecognized input is returned trimmed of the
// leading '#' for the validator to reject with a specific error.
func NormalizeColor(c string) string {
	c = strings.TrimPrefix(strings.TrimSpace(c), "#")
	if len(c) == 3 && isHex(c) {
		// Expand shorthand: abc -> aabbcc.
		c = strings.Repeat(string(c[0]), 2) + strings.Repeat(string(c[1]), 2) + strings.Repeat(string(c[2]), 2)
	}
	if isHex(c) {
		return strings.ToUpper(c)
	}
	return c
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func mapTristate(s string) domain.Tristate {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "force", "1":
		return domain.TriOn
	case "off", "false", "0":
		return domain.TriOff
	default:
		return domain.TriPreserve
	}
}

func mapAlignment(s string) domain.Alignment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return domain.AlignLeft
	case "center", "centre":
		return domain.AlignCenter
	case "right":
		return domain.AlignRight
	case "justify", "both":
		return domain.AlignJustify
	default:
		return domain.AlignPreserve
	}
}

func mapRevisionMode(s string) domain.RevisionMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(domain.RevisionAcceptAll):
		return domain.RevisionAcceptAll
	case string(domain.RevisionPreserveAndWrap):
		return domain.RevisionPreserveAndWrap
	default:
		return domain.RevisionPreserve
	}
}
