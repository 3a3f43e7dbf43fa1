package output

import (
	"fmt"

	"github.com/dekarrin/rezi"

	"github.com/dekarrin/grouper/match"
	"github.com/dekarrin/grouper/recognize"
)

// Snapshot is a compact, REZI-encodable record of a completed parse:
// enough to reconstruct the stats/status picture without re-parsing,
// used by debugserver/history to persist parse history across restarts
// (see SPEC_FULL.md's DOMAIN STACK table entry for
// github.com/dekarrin/rezi).
type Snapshot struct {
	GrammarName string
	Status      int
	InputLength int
	Root        *FlatMatch
}

// FlatMatch is Snapshot's REZI-friendly representation of a match tree:
// plain exported fields only (no pointers-as-interfaces, no methods),
// which is what rezi.EncBinary/DecBinary round-trip cleanly via
// reflection over exported struct fields.
type FlatMatch struct {
	Kind                 int
	ElementID            int
	ElementName          string
	Offset               int
	Length               int
	Line                 int
	ReferenceCardinality string
	ReferenceName        string
	Captures             []string
	Children             []*FlatMatch
}

func flatten(m *match.Match) *FlatMatch {
	if m == nil {
		return nil
	}
	f := &FlatMatch{
		Kind:                 int(m.Kind),
		ElementID:            m.ElementID,
		ElementName:          m.ElementName,
		Offset:               m.Offset,
		Length:               m.Length,
		Line:                 m.Line,
		ReferenceCardinality: m.ReferenceCardinality,
		ReferenceName:        m.ReferenceName,
		Captures:             m.Captures(),
	}
	for _, c := range m.Children {
		f.Children = append(f.Children, flatten(c))
	}
	return f
}

func (f *FlatMatch) unflatten() *match.Match {
	if f == nil {
		return nil
	}
	m := &match.Match{
		Kind:                 match.Kind(f.Kind),
		ElementID:            f.ElementID,
		ElementName:          f.ElementName,
		Offset:               f.Offset,
		Length:               f.Length,
		Line:                 f.Line,
		ReferenceCardinality: f.ReferenceCardinality,
		ReferenceName:        f.ReferenceName,
	}
	if len(f.Captures) > 0 {
		m.Data = f.Captures
	}
	for _, c := range f.Children {
		m.Children = append(m.Children, c.unflatten())
	}
	return m
}

// NewSnapshot builds a Snapshot of r for grammarName.
func NewSnapshot(grammarName string, r *recognize.Result) *Snapshot {
	s := &Snapshot{
		GrammarName: grammarName,
		Status:      int(r.Status),
	}
	_, length := r.LastMatch()
	s.InputLength = length
	s.Root = flatten(r.Root)
	return s
}

// EncodeBinary returns s encoded in REZI's compact binary format.
func EncodeBinary(s *Snapshot) []byte {
	return rezi.EncBinary(s)
}

// DecodeBinary decodes a REZI-encoded Snapshot previously produced by
// EncodeBinary. It returns an error (rather than panicking) if the
// encoded byte count does not match what REZI consumed, matching the
// defensive check the teacher performs after every rezi.DecBinary call
// (server/dao/sqlite/sqlite.go's convertFromDB_GameStatePtr).
func DecodeBinary(data []byte) (*Snapshot, error) {
	s := &Snapshot{}
	n, err := rezi.DecBinary(data, s)
	if err != nil {
		return nil, fmt.Errorf("rezi decode: %w", err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("rezi decode: consumed %d/%d bytes", n, len(data))
	}
	return s, nil
}

// Match reconstructs the root match.Match tree captured in the
// Snapshot, for re-rendering via output.MarshalJSON/MarshalXML without
// needing the original ParsingResult.
func (s *Snapshot) Match() *match.Match {
	return s.Root.unflatten()
}
