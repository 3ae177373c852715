// Package docx implements the document model adapter over the OOXML
// container format: load, enumerate, mutate, and save word-processor
// documents without any external document library.
package docx

import (
	"encoding/xml"
	"fmt"
	"io"
)

// OOXML namespace URIs that appear in the parts this package touches.
const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsRel = "http://schemas.openxmlformats.org/package/2006/relationships"
)

// knownPrefixes maps namespace URIs back to their conventional prefixes so
// captured raw elements can be re-emitted.
var knownPrefixes = map[string]string{
	nsW: "w",
	nsR: "r",
	"http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing": "wp",
	"http://schemas.openxmlformats.org/drawingml/2006/main":                  "a",
	"http://schemas.openxmlformats.org/drawingml/2006/picture":               "pic",
	"http://schemas.openxmlformats.org/officeDocument/2006/math":             "m",
	"http://schemas.microsoft.com/office/word/2010/wordml":                   "w14",
	"http://www.w3.org/XML/1998/namespace":                                   "xml",
}

// rawElement preserves an element this package does not model: its resolved
// name, attributes, and verbatim inner XML. It round-trips through save
// untouched.
type rawElement struct {
	Name  xml.Name
	Attrs []xml.Attr
	Inner []byte
}

func captureRaw(d *xml.Decoder, start xml.StartElement) (*rawElement, error) {
	var body struct {
		Inner []byte `xml:",innerxml"`
	}
	if err := d.DecodeElement(&body, &start); err != nil {
		return nil, err
	}
	attrs := make([]xml.Attr, len(start.Attr))
	copy(attrs, start.Attr)
	return &rawElement{Name: start.Name, Attrs: attrs, Inner: body.Inner}, nil
}

// document models word/document.xml. Root attributes (namespace
// declarations) are kept verbatim.
type document struct {
	rootAttrs []xml.Attr
	body      *body
}

func parseDocument(r io.Reader) (*document, error) {
	d := xml.NewDecoder(r)
	doc := &document{body: &body{}}
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing document.xml: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "document" {
			return nil, fmt.Errorf("unexpected root element %q", start.Name.Local)
		}
		doc.rootAttrs = make([]xml.Attr, len(start.Attr))
		copy(doc.rootAttrs, start.Attr)
		bs, err := bodyStart(d)
		if err != nil {
			return nil, err
		}
		if err := doc.body.UnmarshalXML(d, bs); err != nil {
			return nil, err
		}
		break
	}
	return doc, nil
}

// bodyStart advances the decoder to the w:body start element.
func bodyStart(d *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := d.Token()
		if err != nil {
			return xml.StartElement{}, fmt.Errorf("locating document body: %w", err)
		}
		if start, ok := tok.(xml.StartElement); ok && start.Name.Local == "body" {
			return start, nil
		}
	}
}

// body holds the ordered sequence of block-level items.
type body struct {
	items []*bodyItem
}

// bodyItem is a tagged variant: exactly one field is set.
type bodyItem struct {
	para *paragraphXML
	tbl  *tableXML
	raw  *rawElement
}

func (b *body) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				p := &paragraphXML{}
				if err := p.UnmarshalXML(d, t); err != nil {
					return err
				}
				b.items = append(b.items, &bodyItem{para: p})
			case "tbl":
				tbl := &tableXML{}
				if err := tbl.UnmarshalXML(d, t); err != nil {
					return err
				}
				b.items = append(b.items, &bodyItem{tbl: tbl})
			default:
				raw, err := captureRaw(d, t)
				if err != nil {
					return err
				}
				b.items = append(b.items, &bodyItem{raw: raw})
			}
		case xml.EndElement:
			return nil
		}
	}
}

// paragraphXML models w:p.
type paragraphXML struct {
	props   *paraProps
	items   []*paraItem
	removed bool
}

// paraItem is a tagged variant for paragraph-level children.
type paraItem struct {
	run  *runXML
	link *hyperlinkXML
	ins  *revisionXML
	del  *revisionXML
	raw  *rawElement
}

func (p *paragraphXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr":
				p.props = &paraProps{}
				if err := d.DecodeElement(p.props, &t); err != nil {
					return err
				}
			case "r":
				r := &runXML{}
				if err := r.UnmarshalXML(d, t); err != nil {
					return err
				}
				p.items = append(p.items, &paraItem{run: r})
			case "hyperlink":
				h := &hyperlinkXML{}
				if err := h.UnmarshalXML(d, t); err != nil {
					return err
				}
				p.items = append(p.items, &paraItem{link: h})
			case "ins":
				rev := &revisionXML{}
				if err := rev.UnmarshalXML(d, t); err != nil {
					return err
				}
				p.items = append(p.items, &paraItem{ins: rev})
			case "del":
				rev := &revisionXML{}
				if err := rev.UnmarshalXML(d, t); err != nil {
					return err
				}
				p.items = append(p.items, &paraItem{del: rev})
			default:
				raw, err := captureRaw(d, t)
				if err != nil {
					return err
				}
				p.items = append(p.items, &paraItem{raw: raw})
			}
		case xml.EndElement:
			return nil
		}
	}
}

// text returns the visible text of the paragraph: runs, hyperlink runs, and
// inserted revisions. Deleted text is excluded.
func (p *paragraphXML) text() string {
	var out string
	for _, it := range p.items {
		switch {
		case it.run != nil:
			out += it.run.text()
		case it.link != nil:
			out += it.link.text()
		case it.ins != nil:
			out += it.ins.text()
		}
	}
	return out
}

// paraProps models w:pPr with the property subset the pipeline mutates.
type paraProps struct {
	Style     *valAttr    `xml:"pStyle"`
	NumPr     *numPr      `xml:"numPr"`
	Spacing   *spacing    `xml:"spacing"`
	Ind       *indent     `xml:"ind"`
	Jc        *valAttr    `xml:"jc"`
	RPr       *runProps   `xml:"rPr"`
}

type valAttr struct {
	Val string `xml:"val,attr"`
}

type numPr struct {
	ILvl  *intVal `xml:"ilvl"`
	NumID *intVal `xml:"numId"`
}

type intVal struct {
	Val int `xml:"val,attr"`
}

// spacing models w:spacing; values are twentieths of a point, line spacing
// is 240ths of a line.
type spacing struct {
	Before   string `xml:"before,attr"`
	After    string `xml:"after,attr"`
	Line     string `xml:"line,attr"`
	LineRule string `xml:"lineRule,attr"`
}

// indent models w:ind; values are twentieths of a point.
type indent struct {
	Left      string `xml:"left,attr"`
	Right     string `xml:"right,attr"`
	Hanging   string `xml:"hanging,attr"`
	FirstLine string `xml:"firstLine,attr"`
}

// runXML models w:r.
type runXML struct {
	props   *runProps
	content []*runContent
}

// runContent is a tagged variant for run children.
type runContent struct {
	text    *textXML
	br      bool
	brType  string
	tab     bool
	delText *textXML
	raw     *rawElement
}

type textXML struct {
	Value    string
	Preserve bool
}

func (r *runXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "rPr":
				r.props = &runProps{}
				if err := d.DecodeElement(r.props, &t); err != nil {
					return err
				}
			case "t", "delText":
				var body struct {
					Space string `xml:"space,attr"`
					Value string `xml:",chardata"`
				}
				if err := d.DecodeElement(&body, &t); err != nil {
					return err
				}
				tx := &textXML{Value: body.Value, Preserve: body.Space == "preserve"}
				if t.Name.Local == "t" {
					r.content = append(r.content, &runContent{text: tx})
				} else {
					r.content = append(r.content, &runContent{delText: tx})
				}
			case "br":
				var brType string
				for _, a := range t.Attr {
					if a.Name.Local == "type" {
						brType = a.Value
					}
				}
				if err := d.Skip(); err != nil {
					return err
				}
				r.content = append(r.content, &runContent{br: true, brType: brType})
			case "tab":
				if err := d.Skip(); err != nil {
					return err
				}
				r.content = append(r.content, &runContent{tab: true})
			default:
				raw, err := captureRaw(d, t)
				if err != nil {
					return err
				}
				r.content = append(r.content, &runContent{raw: raw})
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (r *runXML) text() string {
	var out string
	for _, c := range r.content {
		if c.text != nil {
			out += c.text.Value
		}
	}
	return out
}

func (r *runXML) hasDrawing() bool {
	for _, c := range r.content {
		if c.raw != nil && (c.raw.Name.Local == "drawing" || c.raw.Name.Local == "pict" || c.raw.Name.Local == "object") {
			return true
		}
	}
	return false
}

// runProps models w:rPr with the property subset the pipeline mutates.
type runProps struct {
	Style     *valAttr  `xml:"rStyle"`
	Fonts     *rFonts   `xml:"rFonts"`
	Bold      *boolProp `xml:"b"`
	Italic    *boolProp `xml:"i"`
	Underline *valAttr  `xml:"u"`
	Color     *valAttr  `xml:"color"`
	Size      *valAttr  `xml:"sz"`
	SizeCS    *valAttr  `xml:"szCs"`
}

type rFonts struct {
	ASCII    string `xml:"ascii,attr"`
	HAnsi    string `xml:"hAnsi,attr"`
	EastAsia string `xml:"eastAsia,attr"`
	CS       string `xml:"cs,attr"`
}

// boolProp models an OOXML on/off property: absent attr means on.
type boolProp struct {
	Val *string `xml:"val,attr"`
}

func (b *boolProp) isOn() bool {
	if b == nil {
		return false
	}
	if b.Val == nil {
		return true
	}
	return *b.Val != "0" && *b.Val != "false" && *b.Val != "off"
}

// hyperlinkXML models w:hyperlink. External links carry a relationship id;
// internal links carry an anchor.
type hyperlinkXML struct {
	relID  string
	anchor string
	items  []*paraItem
}

func (h *hyperlinkXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "id":
			h.relID = a.Value
		case "anchor":
			h.anchor = a.Value
		}
	}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "r":
				r := &runXML{}
				if err := r.UnmarshalXML(d, t); err != nil {
					return err
				}
				h.items = append(h.items, &paraItem{run: r})
			case "ins":
				rev := &revisionXML{}
				if err := rev.UnmarshalXML(d, t); err != nil {
					return err
				}
				h.items = append(h.items, &paraItem{ins: rev})
			case "del":
				rev := &revisionXML{}
				if err := rev.UnmarshalXML(d, t); err != nil {
					return err
				}
				h.items = append(h.items, &paraItem{del: rev})
			default:
				raw, err := captureRaw(d, t)
				if err != nil {
					return err
				}
				h.items = append(h.items, &paraItem{raw: raw})
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (h *hyperlinkXML) text() string {
	var out string
	for _, it := range h.items {
		switch {
		case it.run != nil:
			out += it.run.text()
		case it.ins != nil:
			out += it.ins.text()
		}
	}
	return out
}

// revisionXML models w:ins and w:del: a tracked change wrapping runs.
type revisionXML struct {
	id     string
	author string
	date   string
	runs   []*runXML
}

func (rev *revisionXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "id":
			rev.id = a.Value
		case "author":
			rev.author = a.Value
		case "date":
			rev.date = a.Value
		}
	}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "r" {
				r := &runXML{}
				if err := r.UnmarshalXML(d, t); err != nil {
					return err
				}
				rev.runs = append(rev.runs, r)
				continue
			}
			if err := d.Skip(); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (rev *revisionXML) text() string {
	var out string
	for _, r := range rev.runs {
		out += r.text()
	}
	return out
}

// tableXML models w:tbl.
type tableXML struct {
	propsRaw *rawElement
	gridRaw  *rawElement
	rows     []*tableRowXML
	borders  *tableBorders
}

type tableBorders struct {
	sizeEighthPt int
	color        string
}

func (t *tableXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			switch tk.Name.Local {
			case "tblPr":
				raw, err := captureRaw(d, tk)
				if err != nil {
					return err
				}
				t.propsRaw = raw
			case "tblGrid":
				raw, err := captureRaw(d, tk)
				if err != nil {
					return err
				}
				t.gridRaw = raw
			case "tr":
				row := &tableRowXML{}
				if err := row.UnmarshalXML(d, tk); err != nil {
					return err
				}
				t.rows = append(t.rows, row)
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

// tableRowXML models w:tr.
type tableRowXML struct {
	propsRaw *rawElement
	cells    []*tableCellXML
}

func (r *tableRowXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "trPr":
				raw, err := captureRaw(d, t)
				if err != nil {
					return err
				}
				r.propsRaw = raw
			case "tc":
				cell := &tableCellXML{}
				if err := cell.UnmarshalXML(d, t); err != nil {
					return err
				}
				r.cells = append(r.cells, cell)
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

// tableCellXML models w:tc. Cell properties are kept raw except for shading,
// which the pipeline overwrites.
type tableCellXML struct {
	propsRaw *rawElement
	shading  string
	content  *body
}

func (c *tableCellXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	c.content = &body{}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tcPr":
				raw, err := captureRaw(d, t)
				if err != nil {
					return err
				}
				c.propsRaw = raw
			case "p":
				p := &paragraphXML{}
				if err := p.UnmarshalXML(d, t); err != nil {
					return err
				}
				c.content.items = append(c.content.items, &bodyItem{para: p})
			case "tbl":
				tbl := &tableXML{}
				if err := tbl.UnmarshalXML(d, t); err != nil {
					return err
				}
				c.content.items = append(c.content.items, &bodyItem{tbl: tbl})
			default:
				raw, err := captureRaw(d, t)
				if err != nil {
					return err
				}
				c.content.items = append(c.content.items, &bodyItem{raw: raw})
			}
		case xml.EndElement:
			return nil
		}
	}
}
