// Package element defines the parsing-element object model: the node
// types of a grammar graph (Word, Token, Group, Rule, Condition,
// Procedure) and References, the only kind of edge between them.
//
// This is a tagged-variant representation rather than the base-struct-
// plus-function-pointers design of the original C/Python source: one
// Kind per element type, with per-kind configuration carried in
// dedicated fields instead of a virtual dispatch table. The recognize
// package switches on Kind rather than calling through an interface.
package element

import (
	"fmt"
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind tags the variant of a parsing element.
type Kind int

const (
	KindWord Kind = iota
	KindToken
	KindGroup
	KindRule
	KindCondition
	KindProcedure
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
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// UnsetID is the sentinel id an element carries before Grammar.Prepare
// assigns it a stable one, and the id an unreachable element keeps after
// Prepare.
const UnsetID = -1

// ConditionFunc is a host-supplied predicate. It must not advance any
// iterator; it may only read context state.
type ConditionFunc func(el *Element, ctx Context) bool

// ProcedureFunc is a host-supplied side-effecting callback. It must not
// advance any iterator; it may only mutate context state.
type ProcedureFunc func(el *Element, ctx Context)

// Context is the minimal surface element callbacks need from a parsing
// context, kept as an interface here so this package does not import
// pcontext (which itself depends on element).
type Context interface {
	Get(name string) (any, bool)
	Set(name string, value any)
	PushScope()
	PopScope()
	CharAt(offset int) (byte, bool)
	CurrentOffset() int
}

// Element is a single node of the grammar graph.
type Element struct {
	ID   int
	Kind Kind
	Name string

	// Word configuration.
	WordText []byte

	// Token configuration.
	TokenPattern string
	TokenRegex   *regexp.Regexp
	FoldCase     bool

	// Condition/Procedure configuration.
	Condition ConditionFunc
	Procedure ProcedureFunc

	// Group/Rule configuration: ordered children.
	Children []*Reference
}

// IsComposite reports whether the element is a Group or Rule (has
// children reached through References).
func (e *Element) IsComposite() bool {
	return e.Kind == KindGroup || e.Kind == KindRule
}

// IsLeaf reports whether the element is a Word, Token, Condition, or
// Procedure (never has children).
func (e *Element) IsLeaf() bool {
	return !e.IsComposite()
}

// NewWord constructs an unregistered Word element.
func NewWord(name string, text []byte) *Element {
	cp := make([]byte, len(text))
	copy(cp, text)
	return &Element{ID: UnsetID, Kind: KindWord, Name: name, WordText: cp}
}

// NewToken constructs an unregistered Token element, compiling its regex
// once. An error is returned if the pattern does not compile, matching
// spec.md §7's "Regex compilation errors in Token: reported at Token
// construction."
func NewToken(name, pattern string, foldCase bool) (*Element, error) {
	anchored := pattern
	if len(anchored) == 0 || anchored[0] != '^' {
		anchored = "^(?:" + pattern + ")"
	}
	re, err := regexp.Compile(anchored)
	if err != nil {
		return nil, fmt.Errorf("cannot compile token regex %q: %w", pattern, err)
	}
	return &Element{
		ID:           UnsetID,
		Kind:         KindToken,
		Name:         name,
		TokenPattern: pattern,
		TokenRegex:   re,
		FoldCase:     foldCase,
	}, nil
}

// foldCaser is shared across every fold-case Token; cases.Fold() is safe
// for concurrent use once constructed.
var foldCaser = cases.Fold()

// FoldString returns s folded for case-insensitive comparison, using
// golang.org/x/text/cases rather than strings.ToLower so that
// case-insensitive tokens behave correctly for non-ASCII input too.
func FoldString(s string) string {
	return foldCaser.String(s)
}

// dummy reference to language so the import isn't flagged unused if a
// future change drops cases.Fold's implicit use of it; cases.Fold
// already pulls in language internally, this just documents the
// dependency explicitly for readers of this file.
var _ = language.Und

// NewCondition constructs an unregistered Condition element.
func NewCondition(name string, fn ConditionFunc) *Element {
	return &Element{ID: UnsetID, Kind: KindCondition, Name: name, Condition: fn}
}

// NewProcedure constructs an unregistered Procedure element.
func NewProcedure(name string, fn ProcedureFunc) *Element {
	return &Element{ID: UnsetID, Kind: KindProcedure, Name: name, Procedure: fn}
}

// NewGroup constructs an unregistered Group element (ordered choice) from
// the given children, each of which is an Element (implicitly wrapped in
// a `one` Reference) or an existing Reference.
func NewGroup(name string, children ...any) (*Element, error) {
	el := &Element{ID: UnsetID, Kind: KindGroup, Name: name}
	if err := el.Add(children...); err != nil {
		return nil, err
	}
	return el, nil
}

// NewRule constructs an unregistered Rule element (ordered sequence) from
// the given children, each of which is an Element (implicitly wrapped in
// a `one` Reference) or an existing Reference.
func NewRule(name string, children ...any) (*Element, error) {
	el := &Element{ID: UnsetID, Kind: KindRule, Name: name}
	if err := el.Add(children...); err != nil {
		return nil, err
	}
	return el, nil
}

// Add appends references to a composite element's children list, the way
// CompositeElement.add does in the original source: each argument is
// either an *Element (wrapped in a `one` Reference) or an existing
// *Reference.
func (e *Element) Add(children ...any) error {
	if !e.IsComposite() {
		return fmt.Errorf("%s element %q cannot have children added", e.Kind, e.Name)
	}
	for i, c := range children {
		switch v := c.(type) {
		case *Element:
			if v == nil {
				return fmt.Errorf("%s.Add: nil element given as argument #%d", e.Kind, i)
			}
			e.Children = append(e.Children, One(v))
		case *Reference:
			if v == nil {
				return fmt.Errorf("%s.Add: nil reference given as argument #%d", e.Kind, i)
			}
			e.Children = append(e.Children, v)
		default:
			return fmt.Errorf("%s.Add: expected *Element or *Reference, got %T as argument #%d", e.Kind, c, i)
		}
	}
	return nil
}

// Clear removes every child reference, mirroring CompositeElement.clear.
func (e *Element) Clear() {
	e.Children = nil
}

// Set replaces the children list wholesale, mirroring
// CompositeElement.set.
func (e *Element) Set(children ...any) error {
	e.Clear()
	return e.Add(children...)
}

// One, Optional, ZeroOrMore, OneOrMore, and NotEmpty return a new
// Reference to the element with the given cardinality; see the Reference
// type for their semantics. These are convenience wrappers matching
// ParsingElement.one()/.optional()/.zeroOrMore()/.oneOrMore() in the
// original source, plus the notEmpty cardinality.
func (e *Element) One() *Reference        { return One(e) }
func (e *Element) Optional() *Reference   { return newRef(e, CardinalityOptional) }
func (e *Element) ZeroOrMore() *Reference { return newRef(e, CardinalityZeroOrMore) }
func (e *Element) OneOrMore() *Reference  { return newRef(e, CardinalityOneOrMore) }
func (e *Element) NotEmpty() *Reference   { return newRef(e, CardinalityNotEmpty) }

// As returns a new `one` Reference to the element bound under the given
// slot name, matching ParsingElement._as.
func (e *Element) As(name string) *Reference {
	r := One(e)
	r.Name = name
	return r
}
