// Package match defines the node type of the match tree produced by
// recognition: Match. A Match tree is built bottom-up during recognition
// and walked by the process package after a parse completes.
package match

import (
	"fmt"
	"strings"
)

// Kind mirrors element.Kind plus a Reference marker, so a Match can be
// identified without importing the element package (which would create
// an import cycle with recognize). ReferenceMatch nodes are never
// themselves dispatched to a host handler; they exist only to preserve
// cardinality in the tree, exactly as spec.md §3 describes.
type Kind int

const (
	KindWord Kind = iota
	KindToken
	KindGroup
	KindRule
	KindCondition
	KindProcedure
	KindReference
)

func (k Kind) String() string {
	switch k {
	case KindWord:
		return "Word"
	case KindToken:
		return "Token"
	case KindGroup:
		return "Group"
	case KindRule:
		return "Rule"
	case KindCondition:
		return "Condition"
	case KindProcedure:
		return "Procedure"
	case KindReference:
		return "Reference"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Match is a node of the match tree. Composite elements (Group, Rule) and
// References get Children; leaf elements (Word, Token, Condition,
// Procedure) never do. Matches form a sibling-linked list under their
// parent via Next, mirroring the original source's intrusive-list shape
// and internal/ictiobus/types.ParseTree's Children-slice shape combined.
type Match struct {
	Kind Kind

	// ElementID is the id of the originating element (or, for
	// KindReference, the id of the Reference itself).
	ElementID int

	// ElementName is the originating element's human name, if any;
	// kept alongside the id so output/process do not need a grammar
	// handle just to render a readable tree.
	ElementName string

	Offset int
	Length int
	Line   int

	// ReferenceCardinality and ReferenceName are only meaningful when
	// Kind == KindReference.
	ReferenceCardinality string
	ReferenceName        string

	Children []*Match

	// Data is an opaque, element-type-specific payload: Token matches
	// store their regex capture groups here ([]string); Word matches
	// leave it nil (the matched text is simply input[Offset:Offset+Length]).
	Data any

	// Value is set by the process package once a handler (or the
	// default recursive handler) has processed this node; see
	// process.Dispatcher. It exists on Match rather than being
	// threaded through a side map so that a second process() call over
	// the same tree is idempotent, per spec.md §8.
	Value any
}

// End returns the offset immediately following the match.
func (m *Match) End() int {
	return m.Offset + m.Length
}

// Captures returns the Token capture groups recorded in Data, or nil if
// this match is not a Token match or recorded none.
func (m *Match) Captures() []string {
	if groups, ok := m.Data.([]string); ok {
		return groups
	}
	return nil
}

// String returns a prettified, indented representation of the match
// tree, suitable for line-by-line comparison in tests. Grounded directly
// on internal/ictiobus/types/tree.go's ParseTree.String()/leveledStr.
func (m *Match) String() string {
	var sb strings.Builder
	m.leveledStr(&sb, "", "")
	return sb.String()
}

func (m *Match) leveledStr(sb *strings.Builder, firstPrefix, contPrefix string) {
	sb.WriteString(firstPrefix)
	switch m.Kind {
	case KindReference:
		label := m.ReferenceName
		if label == "" {
			label = "_"
		}
		fmt.Fprintf(sb, "(REF %s:%s [%d,%d))", label, m.ReferenceCardinality, m.Offset, m.End())
	case KindWord, KindToken:
		fmt.Fprintf(sb, "(%s %q [%d,%d))", m.Kind, m.ElementName, m.Offset, m.End())
	default:
		fmt.Fprintf(sb, "( %s [%d,%d) )", m.ElementName, m.Offset, m.End())
	}
	sb.WriteString("\n")

	for i, child := range m.Children {
		last := i == len(m.Children)-1
		prefix := makeTreeLevelPrefix(fmt.Sprintf("%d", i))
		if last {
			prefix = makeTreeLevelPrefixLast(fmt.Sprintf("%d", i))
		}
		childNext := contPrefix + treeLevelOngoing
		if last {
			childNext = contPrefix + treeLevelEmpty
		}
		child.leveledStr(sb, contPrefix+prefix, childNext)
	}
}

const (
	treeLevelEmpty      = "        "
	treeLevelOngoing    = "  |     "
	treeLevelPrefix     = "  |%s: "
	treeLevelPrefixLast = `  \%s: `
	prefixPadChar       = '-'
	prefixPadAmount     = 3
)

func makeTreeLevelPrefix(msg string) string {
	for len([]rune(msg)) < prefixPadAmount {
		msg = string(prefixPadChar) + msg
	}
	return fmt.Sprintf(treeLevelPrefix, msg)
}

func makeTreeLevelPrefixLast(msg string) string {
	for len([]rune(msg)) < prefixPadAmount {
		msg = string(prefixPadChar) + msg
	}
	return fmt.Sprintf(treeLevelPrefixLast, msg)
}

// Copy returns a duplicate, deeply-copied match tree, mirroring
// ParseTree.Copy.
func (m *Match) Copy() *Match {
	if m == nil {
		return nil
	}
	cp := *m
	cp.Children = make([]*Match, len(m.Children))
	for i, c := range m.Children {
		cp.Children[i] = c.Copy()
	}
	return &cp
}

// Walk calls fn for this match and every descendant, in pre-order
// (visiting a node before its children).
func (m *Match) Walk(fn func(*Match)) {
	if m == nil {
		return
	}
	fn(m)
	for _, c := range m.Children {
		c.Walk(fn)
	}
}

// NamedChild returns the first direct child Reference match bound to the
// given slot name, along with the single underlying target match for
// `one`/`optional` cardinality references (nil if not present or if the
// cardinality produces more than one match; use NamedChildren for those).
func (m *Match) NamedChild(name string) *Match {
	for _, c := range m.Children {
		if c.Kind == KindReference && c.ReferenceName == name {
			if len(c.Children) == 1 {
				return c.Children[0]
			}
			return nil
		}
	}
	return nil
}

// NamedChildren returns every target match under the first direct child
// Reference bound to the given slot name, in order. This is the form to
// use for zeroOrMore/oneOrMore named references.
func (m *Match) NamedChildren(name string) []*Match {
	for _, c := range m.Children {
		if c.Kind == KindReference && c.ReferenceName == name {
			return c.Children
		}
	}
	return nil
}

// Text returns the verbatim input slice this match covers, given the
// full input buffer it was matched against.
func (m *Match) Text(input []byte) []byte {
	if m == nil {
		return nil
	}
	end := m.End()
	if end > len(input) {
		end = len(input)
	}
	if m.Offset > end {
		return nil
	}
	return input[m.Offset:end]
}
