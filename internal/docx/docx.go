package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"

	"dochub/internal/domain"
	"dochub/internal/port"
)

const (
	partDocument  = "word/document.xml"
	partRels      = "word/_rels/document.xml.rels"
	partStyles    = "word/styles.xml"
	partNumbering = "word/numbering.xml"
	partSettings  = "word/settings.xml"
	partComments  = "word/comments.xml"
)

// Loader implements port.DocumentLoader over the OOXML container format.
type Loader struct{}

// NewLoader creates a Loader.
func NewLoader() *Loader { return &Loader{} }

// Load opens a document, parses the parts this adapter mutates, and keeps
// every other part verbatim for save.
func (l *Loader) Load(path string) (port.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLoadFailure, err)
	}
	return Open(data, path)
}

// Open parses document bytes. Exposed separately so tests can load fixtures
// built in memory.
func Open(data []byte, path string) (*Doc, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: opening container: %v", domain.ErrLoadFailure, err)
	}

	d := &Doc{
		path:  path,
		parts: make(map[string][]byte, len(zr.File)),
	}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: reading part %s: %v", domain.ErrLoadFailure, f.Name, err)
		}
		part, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: reading part %s: %v", domain.ErrLoadFailure, f.Name, err)
		}
		d.parts[f.Name] = part
		d.partOrder = append(d.partOrder, f.Name)
	}

	docPart, ok := d.parts[partDocument]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", domain.ErrLoadFailure, partDocument)
	}
	d.doc, err = parseDocument(bytes.NewReader(docPart))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLoadFailure, err)
	}

	if relsPart, ok := d.parts[partRels]; ok {
		d.rels, err = parseRelationships(relsPart)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrLoadFailure, err)
		}
	} else {
		d.rels = &relationships{}
	}

	if stylesPart, ok := d.parts[partStyles]; ok {
		// A malformed styles part degrades heading detection but does not
		// block processing.
		if st, serr := parseStyles(stylesPart); serr == nil {
			d.styles = st
		}
	}

	d.caps = d.computeCapabilities()
	d.nextRevID = 1000
	return d, nil
}

// Inspect produces the pre-flight diagnostic report without building the
// full document model.
func (l *Loader) Inspect(path string) (*domain.Inspection, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: opening container: %v", domain.ErrLoadFailure, err)
	}

	parts := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		parts[f.Name] = true
	}

	insp := &domain.Inspection{Path: path, SizeBytes: info.Size()}
	if !parts[partDocument] {
		return nil, fmt.Errorf("%w: missing %s", domain.ErrLoadFailure, partDocument)
	}
	for _, required := range []string{partStyles, partNumbering, partSettings} {
		if !parts[required] {
			insp.MissingParts = append(insp.MissingParts, required)
		}
	}

	var docPart []byte
	for _, f := range zr.File {
		if f.Name != partDocument {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", partDocument, err)
		}
		docPart, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", partDocument, err)
		}
	}

	insp.Hyperlinks = bytes.Count(docPart, []byte("<w:hyperlink"))
	insp.TrackedChanges = bytes.Count(docPart, []byte("<w:ins ")) + bytes.Count(docPart, []byte("<w:del "))
	insp.ContentControls = bytes.Count(docPart, []byte("<w:sdt>")) + bytes.Count(docPart, []byte("<w:sdt "))
	insp.FieldCodes = bytes.Count(docPart, []byte("<w:fldSimple")) + bytes.Count(docPart, []byte("w:fldCharType=\"begin\""))

	if insp.TrackedChanges > 0 {
		insp.Warnings = append(insp.Warnings, fmt.Sprintf("document contains %d tracked changes", insp.TrackedChanges))
	}
	if insp.ContentControls > 0 {
		insp.Warnings = append(insp.Warnings, fmt.Sprintf("document contains %d content controls", insp.ContentControls))
	}
	for _, p := range insp.MissingParts {
		insp.Warnings = append(insp.Warnings, fmt.Sprintf("missing container part %s", p))
	}
	return insp, nil
}

// Doc is the loaded document handle implementing port.Document.
type Doc struct {
	path      string
	parts     map[string][]byte
	partOrder []string

	doc    *document
	rels   *relationships
	styles *styleTable
	caps   port.CapabilitySet

	trackAuthor string
	nextRevID   int
	closed      bool
}

func (d *Doc) computeCapabilities() port.CapabilitySet {
	caps := port.CapabilitySet{}
	if _, ok := d.parts[partStyles]; ok {
		caps[port.CapStyles] = true
	}
	if _, ok := d.parts[partNumbering]; ok {
		caps[port.CapNumbering] = true
	}
	if _, ok := d.parts[partSettings]; ok {
		caps[port.CapSettings] = true
	}
	if _, ok := d.parts[partComments]; ok {
		caps[port.CapComments] = true
	}
	revisions := false
	d.walkParagraphs(func(p *paragraphXML) {
		for _, it := range p.items {
			if it.ins != nil || it.del != nil {
				revisions = true
			}
		}
	})
	if revisions {
		caps[port.CapRevisions] = true
	}
	return caps
}

// Capabilities returns the fixed capability set computed at load time.
func (d *Doc) Capabilities() port.CapabilitySet { return d.caps }

// walkParagraphs visits every paragraph in the body and nested table cells,
// in document order.
func (d *Doc) walkParagraphs(fn func(*paragraphXML)) {
	walkBody(d.doc.body, fn)
}

func walkBody(b *body, fn func(*paragraphXML)) {
	for _, it := range b.items {
		switch {
		case it.para != nil:
			fn(it.para)
		case it.tbl != nil:
			for _, row := range it.tbl.rows {
				for _, cell := range row.cells {
					walkBody(cell.content, fn)
				}
			}
		}
	}
}

// MarkFieldsStale injects the update-fields flag into the settings part so
// field results are recalculated on next open.
func (d *Doc) MarkFieldsStale() error {
	settings, ok := d.parts[partSettings]
	if !ok {
		return fmt.Errorf("document has no %s part", partSettings)
	}
	if bytes.Contains(settings, []byte("<w:updateFields")) {
		return nil
	}
	root := bytes.Index(settings, []byte("<w:settings"))
	if root < 0 {
		return fmt.Errorf("malformed %s part", partSettings)
	}
	gt := bytes.Index(settings[root:], []byte(">"))
	if gt < 0 {
		return fmt.Errorf("malformed %s part", partSettings)
	}
	at := root + gt + 1
	var buf bytes.Buffer
	buf.Write(settings[:at])
	buf.WriteString(`<w:updateFields w:val="true"/>`)
	buf.Write(settings[at:])
	d.parts[partSettings] = buf.Bytes()
	return nil
}

// Save writes the mutated container to path, replacing the document and
// relationship parts and copying everything else verbatim.
func (d *Doc) Save(path string) error {
	replaced := map[string][]byte{
		partDocument: serializeDocument(d.doc),
		partRels:     d.rels.serialize(),
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range d.partOrder {
		data := d.parts[name]
		if repl, ok := replaced[name]; ok {
			data = repl
		}
		w, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("writing part %s: %w", name, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing part %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing container: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// Close releases the parsed parts. Safe to call more than once.
func (d *Doc) Close() error {
	d.parts = nil
	d.partOrder = nil
	d.doc = nil
	d.rels = nil
	d.styles = nil
	d.closed = true
	return nil
}

// Bytes serializes the current document part. Test hook.
func (d *Doc) Bytes() []byte { return serializeDocument(d.doc) }
