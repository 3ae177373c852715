package port

import "dochub/internal/domain"

// Capability names one optional feature of a loaded document. The adapter
// computes the full set at load time; callers branch on the declared set
// instead of probing for behavior.
type Capability string

const (
	CapRevisions Capability = "revisions"
	CapNumbering Capability = "numbering"
	CapStyles    Capability = "styles"
	CapSettings  Capability = "settings"
	CapComments  Capability = "comments"
)

// CapabilitySet is the fixed capability set reported by a loaded document.
type CapabilitySet map[Capability]bool

// Has reports whether the capability is present.
func (s CapabilitySet) Has(c Capability) bool { return s[c] }

// DocumentLoader opens documents and produces pre-flight diagnostics.
type DocumentLoader interface {
	Load(path string) (Document, error)
	Inspect(path string) (*domain.Inspection, error)
}

// Document is the mutable handle over one loaded document. The pipeline owns
// the handle for the duration of one document's processing and must Close it
// on every exit path.
type Document interface {
	Capabilities() CapabilitySet

	// Paragraphs returns the body paragraphs in document order. Handles stay
	// valid across mutation; a removed paragraph is skipped at save.
	Paragraphs() []Paragraph
	Tables() []Table
	Hyperlinks() []Hyperlink

	// SetHyperlinkTarget rewrites the external target of the relationship
	// backing a hyperlink.
	SetHyperlinkTarget(relID, url string) error

	// AcceptAllRevisions collapses every tracked change into the base text
	// and returns the number of revisions accepted.
	AcceptAllRevisions() int

	// SetTrackAuthor causes subsequent text mutations to be recorded as
	// tracked changes under the given author. An empty author disables
	// tracking of new mutations.
	SetTrackAuthor(author string)

	// MarkFieldsStale flags the container so field results, including the
	// table of contents, are recalculated on next open. Requires the
	// settings capability.
	MarkFieldsStale() error

	Save(path string) error
	Close() error
}

// Paragraph is one body paragraph.
type Paragraph interface {
	Index() int
	Text() string
	IsEmpty() bool

	StyleID() string
	SetStyleID(id string)
	// HeadingLevel returns 1-9 when the paragraph carries a heading style.
	HeadingLevel() (int, bool)

	Alignment() domain.Alignment
	SetAlignment(a domain.Alignment)
	SetSpacing(beforePt, afterPt, lineSpacing float64)
	SetIndentation(leftPt, hangingPt float64)

	// Numbering returns the list numbering reference, when present.
	Numbering() (numID, level int, ok bool)
	SetNumbering(numID, level int)

	Runs() []Run
	Remove()
	Removed() bool
}

// Run is one text run within a paragraph.
type Run interface {
	Text() string
	SetText(s string)

	SetFont(name string)
	SetSizePt(pt float64)
	SetColor(hex string)
	SetBold(on bool)
	SetItalic(on bool)
	SetUnderline(on bool)

	CharStyleID() string
	// SetCharStyleID replaces the run's character style; empty clears it.
	SetCharStyleID(id string)

	// Hyperlinked reports whether the run sits inside a real hyperlink
	// relationship, as opposed to merely carrying the Hyperlink character
	// style.
	Hyperlinked() bool
	HasDrawing() bool
}

// Hyperlink is one hyperlink reference in the document body.
type Hyperlink interface {
	RelationshipID() string
	Anchor() string
	Target() string
	DisplayText() string
	SetDisplayText(s string)
	ParagraphIndex() int
	Position() int
}

// Table is one body table.
type Table interface {
	Rows() int
	Columns() int
	// IsSingleCell reports a 1x1 table, conventionally a callout box rather
	// than tabular data.
	IsSingleCell() bool
	ShadeHeaderRow(fill string)
	ShadeAltRows(fill string)
	ShadeAll(fill string)
	SetUniformBorders(sizeEighthPt int, color string)
}
