package docx

import (
	"encoding/xml"
	"regexp"
	"strconv"
	"strings"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

var (
	shdPattern        = regexp.MustCompile(`(?s)<w:shd\b[^>]*/>|<w:shd\b.*?</w:shd>`)
	tblBordersPattern = regexp.MustCompile(`(?s)<w:tblBorders\b[^>]*/>|<w:tblBorders\b.*?</w:tblBorders>`)
)

func esc(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}

// prefixed returns the serialized form of a resolved xml.Name.
func prefixed(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	if p, ok := knownPrefixes[n.Space]; ok {
		return p + ":" + n.Local
	}
	return "w:" + n.Local
}

func attrName(n xml.Name) string {
	if n.Space == "xmlns" {
		return "xmlns:" + n.Local
	}
	if n.Local == "xmlns" && n.Space == "" {
		return "xmlns"
	}
	return prefixed(n)
}

func writeAttrs(sb *strings.Builder, attrs []xml.Attr) {
	for _, a := range attrs {
		sb.WriteByte(' ')
		sb.WriteString(attrName(a.Name))
		sb.WriteString(`="`)
		sb.WriteString(esc(a.Value))
		sb.WriteByte('"')
	}
}

func writeRawElement(sb *strings.Builder, raw *rawElement) {
	name := prefixed(raw.Name)
	sb.WriteByte('<')
	sb.WriteString(name)
	writeAttrs(sb, raw.Attrs)
	if len(raw.Inner) == 0 {
		sb.WriteString("/>")
		return
	}
	sb.WriteByte('>')
	sb.Write(raw.Inner)
	sb.WriteString("</")
	sb.WriteString(name)
	sb.WriteByte('>')
}

// serializeDocument renders the document model back to document.xml bytes.
func serializeDocument(doc *document) []byte {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString("<w:document")
	writeAttrs(&sb, doc.rootAttrs)
	sb.WriteString("><w:body>")
	writeBody(&sb, doc.body)
	sb.WriteString("</w:body></w:document>")
	return []byte(sb.String())
}

func writeBody(sb *strings.Builder, b *body) {
	for _, it := range b.items {
		switch {
		case it.para != nil:
			if !it.para.removed {
				writeParagraph(sb, it.para)
			}
		case it.tbl != nil:
			writeTable(sb, it.tbl)
		case it.raw != nil:
			writeRawElement(sb, it.raw)
		}
	}
}

func writeParagraph(sb *strings.Builder, p *paragraphXML) {
	sb.WriteString("<w:p>")
	if p.props != nil {
		writeParaProps(sb, p.props)
	}
	for _, it := range p.items {
		writeParaItem(sb, it)
	}
	sb.WriteString("</w:p>")
}

func writeParaItem(sb *strings.Builder, it *paraItem) {
	switch {
	case it.run != nil:
		writeRun(sb, it.run)
	case it.link != nil:
		writeHyperlink(sb, it.link)
	case it.ins != nil:
		writeRevision(sb, "w:ins", it.ins)
	case it.del != nil:
		writeRevision(sb, "w:del", it.del)
	case it.raw != nil:
		writeRawElement(sb, it.raw)
	}
}

func writeParaProps(sb *strings.Builder, pr *paraProps) {
	sb.WriteString("<w:pPr>")
	if pr.Style != nil {
		sb.WriteString(`<w:pStyle w:val="` + esc(pr.Style.Val) + `"/>`)
	}
	if pr.NumPr != nil {
		sb.WriteString("<w:numPr>")
		if pr.NumPr.ILvl != nil {
			sb.WriteString(`<w:ilvl w:val="` + strconv.Itoa(pr.NumPr.ILvl.Val) + `"/>`)
		}
		if pr.NumPr.NumID != nil {
			sb.WriteString(`<w:numId w:val="` + strconv.Itoa(pr.NumPr.NumID.Val) + `"/>`)
		}
		sb.WriteString("</w:numPr>")
	}
	if pr.Spacing != nil {
		sb.WriteString("<w:spacing")
		writeOptAttr(sb, "w:before", pr.Spacing.Before)
		writeOptAttr(sb, "w:after", pr.Spacing.After)
		writeOptAttr(sb, "w:line", pr.Spacing.Line)
		writeOptAttr(sb, "w:lineRule", pr.Spacing.LineRule)
		sb.WriteString("/>")
	}
	if pr.Ind != nil {
		sb.WriteString("<w:ind")
		writeOptAttr(sb, "w:left", pr.Ind.Left)
		writeOptAttr(sb, "w:right", pr.Ind.Right)
		writeOptAttr(sb, "w:hanging", pr.Ind.Hanging)
		writeOptAttr(sb, "w:firstLine", pr.Ind.FirstLine)
		sb.WriteString("/>")
	}
	if pr.Jc != nil {
		sb.WriteString(`<w:jc w:val="` + esc(pr.Jc.Val) + `"/>`)
	}
	if pr.RPr != nil {
		writeRunProps(sb, pr.RPr)
	}
	sb.WriteString("</w:pPr>")
}

func writeRun(sb *strings.Builder, r *runXML) {
	sb.WriteString("<w:r>")
	if r.props != nil {
		writeRunProps(sb, r.props)
	}
	for _, c := range r.content {
		switch {
		case c.text != nil:
			writeText(sb, "w:t", c.text)
		case c.delText != nil:
			writeText(sb, "w:delText", c.delText)
		case c.br:
			if c.brType != "" {
				sb.WriteString(`<w:br w:type="` + esc(c.brType) + `"/>`)
			} else {
				sb.WriteString("<w:br/>")
			}
		case c.tab:
			sb.WriteString("<w:tab/>")
		case c.raw != nil:
			writeRawElement(sb, c.raw)
		}
	}
	sb.WriteString("</w:r>")
}

func writeText(sb *strings.Builder, tag string, t *textXML) {
	needsPreserve := t.Preserve || t.Value != strings.TrimSpace(t.Value)
	sb.WriteByte('<')
	sb.WriteString(tag)
	if needsPreserve {
		sb.WriteString(` xml:space="preserve"`)
	}
	sb.WriteByte('>')
	sb.WriteString(esc(t.Value))
	sb.WriteString("</")
	sb.WriteString(tag)
	sb.WriteByte('>')
}

func writeRunProps(sb *strings.Builder, rp *runProps) {
	sb.WriteString("<w:rPr>")
	if rp.Style != nil {
		sb.WriteString(`<w:rStyle w:val="` + esc(rp.Style.Val) + `"/>`)
	}
	if rp.Fonts != nil {
		sb.WriteString("<w:rFonts")
		writeOptAttr(sb, "w:ascii", rp.Fonts.ASCII)
		writeOptAttr(sb, "w:hAnsi", rp.Fonts.HAnsi)
		writeOptAttr(sb, "w:eastAsia", rp.Fonts.EastAsia)
		writeOptAttr(sb, "w:cs", rp.Fonts.CS)
		sb.WriteString("/>")
	}
	writeBoolProp(sb, "w:b", rp.Bold)
	writeBoolProp(sb, "w:i", rp.Italic)
	if rp.Color != nil {
		sb.WriteString(`<w:color w:val="` + esc(rp.Color.Val) + `"/>`)
	}
	if rp.Size != nil {
		sb.WriteString(`<w:sz w:val="` + esc(rp.Size.Val) + `"/>`)
	}
	if rp.SizeCS != nil {
		sb.WriteString(`<w:szCs w:val="` + esc(rp.SizeCS.Val) + `"/>`)
	}
	if rp.Underline != nil {
		sb.WriteString(`<w:u w:val="` + esc(rp.Underline.Val) + `"/>`)
	}
	sb.WriteString("</w:rPr>")
}

func writeBoolProp(sb *strings.Builder, tag string, b *boolProp) {
	if b == nil {
		return
	}
	if b.Val == nil {
		sb.WriteString("<" + tag + "/>")
		return
	}
	sb.WriteString("<" + tag + ` w:val="` + esc(*b.Val) + `"/>`)
}

func writeOptAttr(sb *strings.Builder, name, val string) {
	if val == "" {
		return
	}
	sb.WriteString(" " + name + `="` + esc(val) + `"`)
}

func writeHyperlink(sb *strings.Builder, h *hyperlinkXML) {
	sb.WriteString("<w:hyperlink")
	if h.relID != "" {
		sb.WriteString(` r:id="` + esc(h.relID) + `"`)
	}
	if h.anchor != "" {
		sb.WriteString(` w:anchor="` + esc(h.anchor) + `"`)
	}
	sb.WriteByte('>')
	for _, it := range h.items {
		writeParaItem(sb, it)
	}
	sb.WriteString("</w:hyperlink>")
}

func writeRevision(sb *strings.Builder, tag string, rev *revisionXML) {
	sb.WriteByte('<')
	sb.WriteString(tag)
	if rev.id != "" {
		sb.WriteString(` w:id="` + esc(rev.id) + `"`)
	}
	if rev.author != "" {
		sb.WriteString(` w:author="` + esc(rev.author) + `"`)
	}
	if rev.date != "" {
		sb.WriteString(` w:date="` + esc(rev.date) + `"`)
	}
	sb.WriteByte('>')
	for _, r := range rev.runs {
		writeRun(sb, r)
	}
	sb.WriteString("</")
	sb.WriteString(tag)
	sb.WriteByte('>')
}

func writeTable(sb *strings.Builder, t *tableXML) {
	sb.WriteString("<w:tbl>")
	writeTableProps(sb, t)
	if t.gridRaw != nil {
		writeRawElement(sb, t.gridRaw)
	}
	for _, row := range t.rows {
		writeTableRow(sb, row)
	}
	sb.WriteString("</w:tbl>")
}

func writeTableProps(sb *strings.Builder, t *tableXML) {
	if t.propsRaw == nil && t.borders == nil {
		return
	}
	var inner string
	if t.propsRaw != nil {
		inner = string(t.propsRaw.Inner)
	}
	if t.borders != nil {
		inner = tblBordersPattern.ReplaceAllString(inner, "")
		inner += bordersXML(t.borders)
	}
	sb.WriteString("<w:tblPr>")
	sb.WriteString(inner)
	sb.WriteString("</w:tblPr>")
}

func bordersXML(b *tableBorders) string {
	side := func(name string) string {
		return `<w:` + name + ` w:val="single" w:sz="` + strconv.Itoa(b.sizeEighthPt) + `" w:space="0" w:color="` + esc(b.color) + `"/>`
	}
	return "<w:tblBorders>" +
		side("top") + side("left") + side("bottom") + side("right") +
		side("insideH") + side("insideV") +
		"</w:tblBorders>"
}

func writeTableRow(sb *strings.Builder, r *tableRowXML) {
	sb.WriteString("<w:tr>")
	if r.propsRaw != nil {
		writeRawElement(sb, r.propsRaw)
	}
	for _, c := range r.cells {
		writeTableCell(sb, c)
	}
	sb.WriteString("</w:tr>")
}

func writeTableCell(sb *strings.Builder, c *tableCellXML) {
	sb.WriteString("<w:tc>")
	var inner string
	if c.propsRaw != nil {
		inner = string(c.propsRaw.Inner)
	}
	if c.shading != "" {
		inner = shdPattern.ReplaceAllString(inner, "")
		inner += `<w:shd w:val="clear" w:color="auto" w:fill="` + esc(c.shading) + `"/>`
	}
	if inner != "" {
		sb.WriteString("<w:tcPr>")
		sb.WriteString(inner)
		sb.WriteString("</w:tcPr>")
	}
	if c.content != nil {
		writeBody(sb, c.content)
	}
	sb.WriteString("</w:tc>")
}
