// Package output serializes a completed match tree for debugging and
// inspection (spec.md §4.6): JSON and XML renderings of the tree shape,
// plus a compact binary snapshot (via github.com/dekarrin/rezi) used by
// debugserver/history to persist parse history between runs.
package output

import (
	"encoding/json"
	"encoding/xml"
	"io"

	"github.com/dekarrin/grouper/match"
)

// node is the serializable shape of a match.Match: element type, id,
// optional name, [offset, length], and ordered children. Reference
// nodes additionally carry cardinality and slot name, per spec.md §4.6.
type node struct {
	XMLName xml.Name `json:"-"`

	Kind      string `json:"kind" xml:"kind,attr"`
	ElementID int    `json:"elementId" xml:"elementId,attr"`
	Name      string `json:"name,omitempty" xml:"name,attr,omitempty"`

	Offset int `json:"offset" xml:"offset,attr"`
	Length int `json:"length" xml:"length,attr"`
	Line   int `json:"line" xml:"line,attr"`

	ReferenceCardinality string `json:"cardinality,omitempty" xml:"cardinality,attr,omitempty"`
	ReferenceName        string `json:"slot,omitempty" xml:"slot,attr,omitempty"`

	Captures []string `json:"captures,omitempty" xml:"capture,omitempty"`

	Children []*node `json:"children,omitempty" xml:"match,omitempty"`
}

func toNode(m *match.Match) *node {
	if m == nil {
		return nil
	}
	n := &node{
		XMLName:              xml.Name{Local: "match"},
		Kind:                 m.Kind.String(),
		ElementID:            m.ElementID,
		Name:                 m.ElementName,
		Offset:               m.Offset,
		Length:               m.Length,
		Line:                 m.Line,
		ReferenceCardinality: m.ReferenceCardinality,
		ReferenceName:        m.ReferenceName,
		Captures:             m.Captures(),
	}
	for _, c := range m.Children {
		n.Children = append(n.Children, toNode(c))
	}
	return n
}

// EncodeJSON writes m's match tree to w as indented JSON.
func EncodeJSON(w io.Writer, m *match.Match) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toNode(m))
}

// MarshalJSON returns m's match tree as a JSON byte slice.
func MarshalJSON(m *match.Match) ([]byte, error) {
	return json.MarshalIndent(toNode(m), "", "  ")
}

// EncodeXML writes m's match tree to w as indented XML.
func EncodeXML(w io.Writer, m *match.Match) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(toNode(m))
}

// MarshalXML returns m's match tree as an XML byte slice.
func MarshalXML(m *match.Match) ([]byte, error) {
	return xml.MarshalIndent(toNode(m), "", "  ")
}
