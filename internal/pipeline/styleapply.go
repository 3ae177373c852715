package pipeline

import (
	"fmt"

	"dochub/internal/docx"
	"dochub/internal/domain"
	"dochub/internal/port"
)

// applyStyles assigns role styles to every paragraph and strips the
// hyperlink character style from runs that sit outside a real hyperlink.
func applyStyles(ex *execution) {
	ops := ex.opts.Operations
	for _, para := range ex.doc.Paragraphs() {
		if para.Removed() || para.IsEmpty() {
			continue
		}
		role := classifyParagraph(para)
		def, hasDef := ex.opts.Styles[role]

		if ops.ApplyStyles && hasDef {
			applyRoleStyle(ex, para, role, def)
		}

		if ops.StripHyperlinkStyle {
			for _, r := range para.Runs() {
				if r.CharStyleID() != docx.HyperlinkCharStyle || r.Hyperlinked() {
					continue
				}
				r.SetCharStyleID("")
				if hasDef {
					applyRunStyle(r, def)
				}
				ex.record(domain.ChangeRecord{
					Category:       domain.ChangeFormatting,
					ParagraphIndex: para.Index(),
					Description:    "stray hyperlink character style removed",
					AffectedText:   clip(r.Text()),
				})
			}
		}
	}
}

// classifyParagraph maps a paragraph to its style role: heading level first,
// then list membership, everything else is normal body text.
func classifyParagraph(para port.Paragraph) domain.StyleRole {
	if lvl, ok := para.HeadingLevel(); ok {
		switch lvl {
		case 1:
			return domain.RoleHeading1
		case 2:
			return domain.RoleHeading2
		default:
			return domain.RoleHeading3
		}
	}
	if _, _, ok := para.Numbering(); ok {
		return domain.RoleListParagraph
	}
	if para.StyleID() == "ListParagraph" {
		return domain.RoleListParagraph
	}
	return domain.RoleNormal
}

func applyRoleStyle(ex *execution, para port.Paragraph, role domain.StyleRole, def domain.StyleDef) {
	if id := docx.StyleIDForRole(role); id != "" && para.StyleID() != id {
		para.SetStyleID(id)
	}
	if def.Alignment != domain.AlignPreserve {
		para.SetAlignment(def.Alignment)
	}
	para.SetSpacing(def.SpacingBefore, def.SpacingAfter, def.LineSpacing)
	for _, r := range para.Runs() {
		applyRunStyle(r, def)
	}
	ex.record(domain.ChangeRecord{
		Category:       domain.ChangeFormatting,
		ParagraphIndex: para.Index(),
		Description:    fmt.Sprintf("%s style applied", role),
		AffectedText:   clip(para.Text()),
		Property:       &domain.PropertyChange{Property: "style", NewValue: string(role)},
	})
}

// applyRunStyle forces the definition's direct formatting onto one run,
// honoring preserve flags.
func applyRunStyle(r port.Run, def domain.StyleDef) {
	if def.FontFamily != "" {
		r.SetFont(def.FontFamily)
	}
	if def.FontSizePt > 0 {
		r.SetSizePt(def.FontSizePt)
	}
	if def.Color != "" {
		r.SetColor(def.Color)
	}
	applyTristate(def.Bold, r.SetBold)
	applyTristate(def.Italic, r.SetItalic)
	applyTristate(def.Underline, r.SetUnderline)
}

func applyTristate(t domain.Tristate, set func(bool)) {
	switch t {
	case domain.TriOn:
		set(true)
	case domain.TriOff:
		set(false)
	}
}

// clip bounds affected-text excerpts in change records.
func clip(s string) string {
	const max = 80
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
