package docx

import (
	"encoding/xml"
	"strconv"
	"strings"

	"dochub/internal/domain"
)

// Built-in style ids assigned by role-based style application.
var roleStyleIDs = map[domain.StyleRole]string{
	domain.RoleHeading1:      "Heading1",
	domain.RoleHeading2:      "Heading2",
	domain.RoleHeading3:      "Heading3",
	domain.RoleNormal:        "Normal",
	domain.RoleListParagraph: "ListParagraph",
}

// StyleIDForRole returns the document style id assigned to a paragraph role.
func StyleIDForRole(role domain.StyleRole) string {
	return roleStyleIDs[role]
}

// HyperlinkCharStyle is the character style Word applies to hyperlink runs.
// The pipeline strips it from runs that are not inside a real hyperlink.
const HyperlinkCharStyle = "Hyperlink"

// styleTable is the read-only view of word/styles.xml the adapter needs:
// style id to display name, for heading detection.
type styleTable struct {
	names map[string]string
}

func parseStyles(data []byte) (*styleTable, error) {
	var doc struct {
		XMLName xml.Name `xml:"styles"`
		Styles  []struct {
			Type    string `xml:"type,attr"`
			StyleID string `xml:"styleId,attr"`
			Name    *struct {
				Val string `xml:"val,attr"`
			} `xml:"name"`
		} `xml:"style"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	t := &styleTable{names: make(map[string]string)}
	for _, s := range doc.Styles {
		if s.Name != nil {
			t.names[s.StyleID] = s.Name.Val
		}
	}
	return t, nil
}

// headingLevel reports the heading level (1-9) for a style id, first from
// the style's display name, then from the conventional HeadingN id form.
func (t *styleTable) headingLevel(styleID string) (int, bool) {
	if styleID == "" {
		return 0, false
	}
	if t != nil {
		if name, ok := t.names[styleID]; ok {
			lower := strings.ToLower(name)
			if strings.HasPrefix(lower, "heading ") {
				if lvl, err := strconv.Atoi(strings.TrimSpace(lower[8:])); err == nil && lvl >= 1 && lvl <= 9 {
					return lvl, true
				}
			}
			if lower == "title" {
				return 1, true
			}
		}
	}
	lower := strings.ToLower(styleID)
	if strings.HasPrefix(lower, "heading") {
		if lvl, err := strconv.Atoi(strings.TrimPrefix(lower, "heading")); err == nil && lvl >= 1 && lvl <= 9 {
			return lvl, true
		}
	}
	return 0, false
}
