package docx

import (
	"fmt"
	"strconv"
	"time"

	"dochub/internal/domain"
	"dochub/internal/port"
)

// twips converts points to twentieths of a point.
func twips(pt float64) string {
	return strconv.Itoa(int(pt * 20))
}

// Paragraphs returns handles for the body paragraphs in document order.
func (d *Doc) Paragraphs() []port.Paragraph {
	var out []port.Paragraph
	idx := 0
	for _, it := range d.doc.body.items {
		if it.para != nil {
			out = append(out, &paragraph{d: d, p: it.para, idx: idx})
			idx++
		}
	}
	return out
}

// Tables returns handles for the body tables.
func (d *Doc) Tables() []port.Table {
	var out []port.Table
	for _, it := range d.doc.body.items {
		if it.tbl != nil {
			out = append(out, &table{t: it.tbl})
		}
	}
	return out
}

// Hyperlinks returns handles for every hyperlink in body paragraphs.
func (d *Doc) Hyperlinks() []port.Hyperlink {
	var out []port.Hyperlink
	idx := 0
	for _, it := range d.doc.body.items {
		if it.para == nil {
			continue
		}
		pos := 0
		for _, pi := range it.para.items {
			if pi.link != nil {
				out = append(out, &hyperlink{d: d, p: it.para, h: pi.link, paraIdx: idx, pos: pos})
				pos++
			}
		}
		idx++
	}
	return out
}

// SetHyperlinkTarget rewrites the external target behind a hyperlink
// relationship.
func (d *Doc) SetHyperlinkTarget(relID, url string) error {
	if !d.rels.isHyperlink(relID) {
		return fmt.Errorf("relationship %q is not a hyperlink", relID)
	}
	return d.rels.setTarget(relID, url)
}

// SetTrackAuthor enables tracked-change wrapping of subsequent text
// mutations under the given author.
func (d *Doc) SetTrackAuthor(author string) { d.trackAuthor = author }

// AcceptAllRevisions collapses tracked changes document-wide: inserted runs
// are promoted into the base text, deleted runs are dropped.
func (d *Doc) AcceptAllRevisions() int {
	accepted := 0
	d.walkParagraphs(func(p *paragraphXML) {
		p.items, accepted = acceptItems(p.items, accepted)
		for _, it := range p.items {
			if it.link != nil {
				it.link.items, accepted = acceptItems(it.link.items, accepted)
			}
		}
	})
	return accepted
}

func acceptItems(items []*paraItem, accepted int) ([]*paraItem, int) {
	out := make([]*paraItem, 0, len(items))
	for _, it := range items {
		switch {
		case it.ins != nil:
			for _, r := range it.ins.runs {
				out = append(out, &paraItem{run: r})
			}
			accepted++
		case it.del != nil:
			accepted++
		default:
			out = append(out, it)
		}
	}
	return out, accepted
}

func (d *Doc) revisionID() string {
	d.nextRevID++
	return strconv.Itoa(d.nextRevID)
}

// replaceItemTracked swaps the item holding r for a deletion of the old
// text plus an insertion of the new text, attributed to the track author,
// and returns the rewritten slice.
func (d *Doc) replaceItemTracked(items []*paraItem, r *runXML, newText string) []*paraItem {
	for i, it := range items {
		if it.run != r {
			continue
		}
		now := time.Now().UTC().Format(time.RFC3339)
		oldRun := &runXML{props: r.props}
		for _, c := range r.content {
			if c.text != nil {
				oldRun.content = append(oldRun.content, &runContent{delText: &textXML{Value: c.text.Value, Preserve: c.text.Preserve}})
			} else {
				oldRun.content = append(oldRun.content, c)
			}
		}
		newRun := &runXML{
			props:   r.props,
			content: []*runContent{{text: &textXML{Value: newText}}},
		}
		del := &revisionXML{id: d.revisionID(), author: d.trackAuthor, date: now, runs: []*runXML{oldRun}}
		ins := &revisionXML{id: d.revisionID(), author: d.trackAuthor, date: now, runs: []*runXML{newRun}}
		out := make([]*paraItem, 0, len(items)+1)
		out = append(out, items[:i]...)
		out = append(out, &paraItem{del: del}, &paraItem{ins: ins})
		out = append(out, items[i+1:]...)
		return out
	}
	return items
}

// deletionOf wraps r's text in a deletion attributed to the track author.
// Reports false when the run carries no text to delete.
func (d *Doc) deletionOf(r *runXML, now string) (*revisionXML, bool) {
	hasText := false
	del := &runXML{props: r.props}
	for _, c := range r.content {
		if c.text != nil {
			del.content = append(del.content, &runContent{delText: &textXML{Value: c.text.Value, Preserve: c.text.Preserve}})
			hasText = true
		} else {
			del.content = append(del.content, c)
		}
	}
	if !hasText {
		return nil, false
	}
	return &revisionXML{id: d.revisionID(), author: d.trackAuthor, date: now, runs: []*runXML{del}}, true
}

// paragraph adapts one paragraphXML to port.Paragraph.
type paragraph struct {
	d   *Doc
	p   *paragraphXML
	idx int
}

func (p *paragraph) Index() int    { return p.idx }
func (p *paragraph) Text() string  { return p.p.text() }
func (p *paragraph) Removed() bool { return p.p.removed }
func (p *paragraph) Remove()       { p.p.removed = true }

func (p *paragraph) IsEmpty() bool {
	if p.p.text() != "" {
		return false
	}
	for _, it := range p.p.items {
		if it.run != nil && it.run.hasDrawing() {
			return false
		}
		if it.raw != nil {
			return false
		}
	}
	return true
}

func (p *paragraph) ensureProps() *paraProps {
	if p.p.props == nil {
		p.p.props = &paraProps{}
	}
	return p.p.props
}

func (p *paragraph) StyleID() string {
	if p.p.props != nil && p.p.props.Style != nil {
		return p.p.props.Style.Val
	}
	return ""
}

func (p *paragraph) SetStyleID(id string) {
	pr := p.ensureProps()
	if id == "" {
		pr.Style = nil
		return
	}
	pr.Style = &valAttr{Val: id}
}

func (p *paragraph) HeadingLevel() (int, bool) {
	return p.d.styles.headingLevel(p.StyleID())
}

func (p *paragraph) Alignment() domain.Alignment {
	if p.p.props == nil || p.p.props.Jc == nil {
		return domain.AlignLeft
	}
	switch p.p.props.Jc.Val {
	case "center":
		return domain.AlignCenter
	case "right", "end":
		return domain.AlignRight
	case "both", "distribute":
		return domain.AlignJustify
	default:
		return domain.AlignLeft
	}
}

func (p *paragraph) SetAlignment(a domain.Alignment) {
	if a == domain.AlignPreserve {
		return
	}
	var val string
	switch a {
	case domain.AlignCenter:
		val = "center"
	case domain.AlignRight:
		val = "right"
	case domain.AlignJustify:
		val = "both"
	default:
		val = "left"
	}
	p.ensureProps().Jc = &valAttr{Val: val}
}

func (p *paragraph) SetSpacing(beforePt, afterPt, lineSpacing float64) {
	pr := p.ensureProps()
	if pr.Spacing == nil {
		pr.Spacing = &spacing{}
	}
	if beforePt >= 0 {
		pr.Spacing.Before = twips(beforePt)
	}
	if afterPt >= 0 {
		pr.Spacing.After = twips(afterPt)
	}
	if lineSpacing > 0 {
		pr.Spacing.Line = strconv.Itoa(int(lineSpacing * 240))
		pr.Spacing.LineRule = "auto"
	}
}

func (p *paragraph) SetIndentation(leftPt, hangingPt float64) {
	pr := p.ensureProps()
	if pr.Ind == nil {
		pr.Ind = &indent{}
	}
	if leftPt >= 0 {
		pr.Ind.Left = twips(leftPt)
	}
	if hangingPt >= 0 {
		pr.Ind.Hanging = twips(hangingPt)
		pr.Ind.FirstLine = ""
	}
}

func (p *paragraph) Numbering() (numID, level int, ok bool) {
	pr := p.p.props
	if pr == nil || pr.NumPr == nil || pr.NumPr.NumID == nil {
		return 0, 0, false
	}
	level = 0
	if pr.NumPr.ILvl != nil {
		level = pr.NumPr.ILvl.Val
	}
	return pr.NumPr.NumID.Val, level, true
}

func (p *paragraph) SetNumbering(numID, level int) {
	pr := p.ensureProps()
	pr.NumPr = &numPr{
		ILvl:  &intVal{Val: level},
		NumID: &intVal{Val: numID},
	}
}

func (p *paragraph) Runs() []port.Run {
	var out []port.Run
	for _, it := range p.p.items {
		switch {
		case it.run != nil:
			out = append(out, &run{d: p.d, items: &p.p.items, r: it.run})
		case it.link != nil:
			for _, li := range it.link.items {
				if li.run != nil {
					out = append(out, &run{d: p.d, items: &it.link.items, r: li.run, inLink: true})
				}
			}
		case it.ins != nil:
			for _, r := range it.ins.runs {
				out = append(out, &run{d: p.d, r: r})
			}
		}
	}
	return out
}

// run adapts one runXML to port.Run. items points at the slice owning the
// run so tracked replacements can splice; it is nil for runs already inside
// a revision.
type run struct {
	d      *Doc
	items  *[]*paraItem
	r      *runXML
	inLink bool
}

func (r *run) Text() string { return r.r.text() }

func (r *run) SetText(s string) {
	if r.d.trackAuthor != "" && r.items != nil {
		*r.items = r.d.replaceItemTracked(*r.items, r.r, s)
		return
	}
	kept := make([]*runContent, 0, 1)
	set := false
	for _, c := range r.r.content {
		if c.text != nil {
			if !set {
				c.text.Value = s
				c.text.Preserve = true
				kept = append(kept, c)
				set = true
			}
			continue
		}
		kept = append(kept, c)
	}
	if !set {
		kept = append(kept, &runContent{text: &textXML{Value: s, Preserve: true}})
	}
	r.r.content = kept
}

func (r *run) ensureProps() *runProps {
	if r.r.props == nil {
		r.r.props = &runProps{}
	}
	return r.r.props
}

func (r *run) SetFont(name string) {
	pr := r.ensureProps()
	pr.Fonts = &rFonts{ASCII: name, HAnsi: name, CS: name}
}

func (r *run) SetSizePt(pt float64) {
	pr := r.ensureProps()
	half := strconv.Itoa(int(pt * 2))
	pr.Size = &valAttr{Val: half}
	pr.SizeCS = &valAttr{Val: half}
}

func (r *run) SetColor(hex string) {
	r.ensureProps().Color = &valAttr{Val: hex}
}

func (r *run) SetBold(on bool) {
	pr := r.ensureProps()
	if on {
		pr.Bold = &boolProp{}
		return
	}
	off := "0"
	pr.Bold = &boolProp{Val: &off}
}

func (r *run) SetItalic(on bool) {
	pr := r.ensureProps()
	if on {
		pr.Italic = &boolProp{}
		return
	}
	off := "0"
	pr.Italic = &boolProp{Val: &off}
}

func (r *run) SetUnderline(on bool) {
	pr := r.ensureProps()
	if on {
		pr.Underline = &valAttr{Val: "single"}
		return
	}
	pr.Underline = &valAttr{Val: "none"}
}

func (r *run) CharStyleID() string {
	if r.r.props != nil && r.r.props.Style != nil {
		return r.r.props.Style.Val
	}
	return ""
}

func (r *run) SetCharStyleID(id string) {
	if id == "" {
		if r.r.props != nil {
			r.r.props.Style = nil
		}
		return
	}
	r.ensureProps().Style = &valAttr{Val: id}
}

func (r *run) Hyperlinked() bool { return r.inLink }
func (r *run) HasDrawing() bool  { return r.r.hasDrawing() }

// hyperlink adapts one hyperlinkXML to port.Hyperlink.
type hyperlink struct {
	d       *Doc
	p       *paragraphXML
	h       *hyperlinkXML
	paraIdx int
	pos     int
}

func (h *hyperlink) RelationshipID() string { return h.h.relID }
func (h *hyperlink) Anchor() string         { return h.h.anchor }
func (h *hyperlink) ParagraphIndex() int    { return h.paraIdx }
func (h *hyperlink) Position() int          { return h.pos }

func (h *hyperlink) Target() string {
	if h.h.relID == "" {
		return ""
	}
	return h.d.rels.target(h.h.relID)
}

func (h *hyperlink) DisplayText() string { return h.h.text() }

// SetDisplayText rewrites the link's visible text onto its first run and
// clears the rest, keeping the first run's formatting.
func (h *hyperlink) SetDisplayText(s string) {
	var first *runXML
	for _, it := range h.h.items {
		if it.run != nil {
			first = it.run
			break
		}
	}
	if first == nil {
		first = &runXML{props: &runProps{Style: &valAttr{Val: HyperlinkCharStyle}}}
		h.h.items = append(h.h.items, &paraItem{run: first})
	}

	if h.d.trackAuthor != "" {
		h.h.items = h.d.replaceItemTracked(h.h.items, first, s)
		// replaceItemTracked rewrote first into a del/ins pair, so every
		// run item left is a trailing original run. Its text becomes a
		// tracked deletion too; the link shows a single string.
		now := time.Now().UTC().Format(time.RFC3339)
		for _, it := range h.h.items {
			if it.run == nil {
				continue
			}
			if del, ok := h.d.deletionOf(it.run, now); ok {
				it.del = del
				it.run = nil
			}
		}
		return
	}

	r := &run{d: h.d, items: &h.h.items, r: first}
	r.SetText(s)

	// Drop text from any remaining runs so the link shows a single string.
	for _, it := range h.h.items {
		if it.run == nil || it.run == first {
			continue
		}
		kept := make([]*runContent, 0, len(it.run.content))
		for _, c := range it.run.content {
			if c.text == nil {
				kept = append(kept, c)
			}
		}
		it.run.content = kept
	}
}

// table adapts one tableXML to port.Table.
type table struct {
	t *tableXML
}

func (t *table) Rows() int { return len(t.t.rows) }

func (t *table) Columns() int {
	max := 0
	for _, row := range t.t.rows {
		if len(row.cells) > max {
			max = len(row.cells)
		}
	}
	return max
}

func (t *table) IsSingleCell() bool {
	return len(t.t.rows) == 1 && len(t.t.rows[0].cells) == 1
}

func (t *table) ShadeHeaderRow(fill string) {
	if len(t.t.rows) == 0 {
		return
	}
	for _, cell := range t.t.rows[0].cells {
		cell.shading = fill
	}
}

func (t *table) ShadeAltRows(fill string) {
	for i, row := range t.t.rows {
		if i == 0 || i%2 != 0 {
			continue
		}
		for _, cell := range row.cells {
			cell.shading = fill
		}
	}
}

func (t *table) ShadeAll(fill string) {
	for _, row := range t.t.rows {
		for _, cell := range row.cells {
			cell.shading = fill
		}
	}
}

func (t *table) SetUniformBorders(sizeEighthPt int, color string) {
	t.t.borders = &tableBorders{sizeEighthPt: sizeEighthPt, color: color}
}
