package docx

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Relationship type URIs used by this package.
const (
	RelTypeHyperlink = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
	RelTypeImage     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
)

// relationships models word/_rels/document.xml.rels.
type relationships struct {
	rels []relationship
}

type relationship struct {
	ID         string
	Type       string
	Target     string
	TargetMode string
}

func parseRelationships(data []byte) (*relationships, error) {
	var doc struct {
		XMLName xml.Name `xml:"Relationships"`
		Rels    []struct {
			ID         string `xml:"Id,attr"`
			Type       string `xml:"Type,attr"`
			Target     string `xml:"Target,attr"`
			TargetMode string `xml:"TargetMode,attr"`
		} `xml:"Relationship"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing document.xml.rels: %w", err)
	}
	r := &relationships{}
	for _, rel := range doc.Rels {
		r.rels = append(r.rels, relationship{
			ID:         rel.ID,
			Type:       rel.Type,
			Target:     rel.Target,
			TargetMode: rel.TargetMode,
		})
	}
	return r, nil
}

func (r *relationships) get(id string) *relationship {
	for i := range r.rels {
		if r.rels[i].ID == id {
			return &r.rels[i]
		}
	}
	return nil
}

func (r *relationships) target(id string) string {
	if rel := r.get(id); rel != nil {
		return rel.Target
	}
	return ""
}

func (r *relationships) isHyperlink(id string) bool {
	rel := r.get(id)
	return rel != nil && rel.Type == RelTypeHyperlink
}

// setTarget rewrites the target of an existing relationship.
func (r *relationships) setTarget(id, target string) error {
	rel := r.get(id)
	if rel == nil {
		return fmt.Errorf("relationship %q not found", id)
	}
	rel.Target = target
	return nil
}

func (r *relationships) serialize() []byte {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<Relationships xmlns="` + nsRel + `">`)
	for _, rel := range r.rels {
		sb.WriteString(`<Relationship Id="` + esc(rel.ID) + `" Type="` + esc(rel.Type) + `" Target="` + esc(rel.Target) + `"`)
		if rel.TargetMode != "" {
			sb.WriteString(` TargetMode="` + esc(rel.TargetMode) + `"`)
		}
		sb.WriteString("/>")
	}
	sb.WriteString("</Relationships>")
	return []byte(sb.String())
}
