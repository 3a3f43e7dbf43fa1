// Package grammar owns every parsing element and reference created
// through it (an arena, in the sense of spec.md §9's re-architecture
// guidance: elements and references live in flat storage addressed by
// integer id rather than forming a reference-cycle graph of pointers
// managed by the host). Grammar.Prepare walks the graph from the axiom,
// assigns stable ids, and validates the structural invariants spec.md §3
// requires before a grammar can be parsed with.
package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/grouper/element"
	"github.com/dekarrin/grouper/internal/util"
)

// Grammar owns every element created through its factory methods.
type Grammar struct {
	// Name is an optional human label for the grammar, used in
	// diagnostics.
	Name string

	// Verbose enables recording of a trace buffer during recognition;
	// see pcontext.Context.Trace.
	Verbose bool

	// StrictNaming, if true, makes registering two named elements under
	// the same name a construction-time error instead of the second
	// silently replacing the first in the symbol table.
	StrictNaming bool

	axiom *element.Element
	skip  *element.Element

	symbols map[string]*element.Element
	arena   []*element.Element
	refs    []*element.Reference

	elements map[int]*element.Element // populated by Prepare; id -> element
	prepared bool
}

// New constructs an empty, unprepared Grammar.
func New(name string) *Grammar {
	return &Grammar{
		Name:    name,
		symbols: map[string]*element.Element{},
	}
}

// Axiom returns the grammar's axiom element, or nil if unset.
func (g *Grammar) Axiom() *element.Element { return g.axiom }

// SetAxiom sets the top-level element whose successful match must cover
// the whole input for a parse to be a Success (see
// recognize.Recognize/ParsingResult semantics).
func (g *Grammar) SetAxiom(e *element.Element) {
	g.axiom = e
	g.prepared = false
}

// Skip returns the grammar's skip element, or nil if unset.
func (g *Grammar) Skip() *element.Element { return g.skip }

// SetSkip sets the element consumed between Rule siblings (see spec.md
// §3's Rule semantics).
func (g *Grammar) SetSkip(e *element.Element) {
	g.skip = e
	g.prepared = false
}

func (g *Grammar) own(e *element.Element) {
	g.arena = append(g.arena, e)
	g.prepared = false
}

func (g *Grammar) register(name string, e *element.Element) error {
	if name == "" {
		return nil
	}
	if g.StrictNaming {
		if _, exists := g.symbols[name]; exists {
			return fmt.Errorf("grammar %q: symbol %q already defined", g.Name, name)
		}
	}
	g.symbols[name] = e
	return nil
}

// Word registers a new named Word element on the grammar.
func (g *Grammar) Word(name string, text []byte) (*element.Element, error) {
	e := element.NewWord(name, text)
	g.own(e)
	if err := g.register(name, e); err != nil {
		return nil, err
	}
	return e, nil
}

// AWord constructs an anonymous (unregistered) Word element, mirroring
// the original source's `awidget`-style shorthand factories
// (Grammar.RegisterParsingElement's anonymous_creator).
func (g *Grammar) AWord(text []byte) *element.Element {
	e := element.NewWord("", text)
	g.own(e)
	return e
}

// Token registers a new named Token element, compiling its regex.
func (g *Grammar) Token(name, pattern string) (*element.Element, error) {
	return g.token(name, pattern, false)
}

// FoldToken registers a new named, case-folded Token element (see
// element.FoldString / SPEC_FULL.md's fold-case supplemental feature).
func (g *Grammar) FoldToken(name, pattern string) (*element.Element, error) {
	return g.token(name, pattern, true)
}

func (g *Grammar) token(name, pattern string, fold bool) (*element.Element, error) {
	e, err := element.NewToken(name, pattern, fold)
	if err != nil {
		return nil, err
	}
	g.own(e)
	if err := g.register(name, e); err != nil {
		return nil, err
	}
	return e, nil
}

// AToken constructs an anonymous Token element.
func (g *Grammar) AToken(pattern string) (*element.Element, error) {
	e, err := element.NewToken("", pattern, false)
	if err != nil {
		return nil, err
	}
	g.own(e)
	return e, nil
}

// Condition registers a new named Condition element.
func (g *Grammar) Condition(name string, fn element.ConditionFunc) (*element.Element, error) {
	e := element.NewCondition(name, fn)
	g.own(e)
	if err := g.register(name, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Procedure registers a new named Procedure element.
func (g *Grammar) Procedure(name string, fn element.ProcedureFunc) (*element.Element, error) {
	e := element.NewProcedure(name, fn)
	g.own(e)
	if err := g.register(name, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Group registers a new named Group element (ordered choice).
func (g *Grammar) Group(name string, children ...any) (*element.Element, error) {
	e, err := element.NewGroup(name, children...)
	if err != nil {
		return nil, err
	}
	g.own(e)
	g.ownRefs(e)
	if err := g.register(name, e); err != nil {
		return nil, err
	}
	return e, nil
}

// AGroup constructs an anonymous Group element.
func (g *Grammar) AGroup(children ...any) (*element.Element, error) {
	e, err := element.NewGroup("", children...)
	if err != nil {
		return nil, err
	}
	g.own(e)
	g.ownRefs(e)
	return e, nil
}

// Rule registers a new named Rule element (ordered sequence).
func (g *Grammar) Rule(name string, children ...any) (*element.Element, error) {
	e, err := element.NewRule(name, children...)
	if err != nil {
		return nil, err
	}
	g.own(e)
	g.ownRefs(e)
	if err := g.register(name, e); err != nil {
		return nil, err
	}
	return e, nil
}

// ARule constructs an anonymous Rule element.
func (g *Grammar) ARule(children ...any) (*element.Element, error) {
	e, err := element.NewRule("", children...)
	if err != nil {
		return nil, err
	}
	g.own(e)
	g.ownRefs(e)
	return e, nil
}

func (g *Grammar) ownRefs(e *element.Element) {
	g.refs = append(g.refs, e.Children...)
}

// Extend appends more children (elements or references) to an already
// constructed composite element and takes ownership of any new
// references created in the process. Use this to build cyclic grammars
// (e.g. a Rule that recursively refers to itself): construct the element
// first, keep a pointer to it, build the rest of the grammar, then call
// Extend to close the cycle.
func (g *Grammar) Extend(composite *element.Element, children ...any) error {
	before := len(composite.Children)
	if err := composite.Add(children...); err != nil {
		return err
	}
	g.refs = append(g.refs, composite.Children[before:]...)
	g.prepared = false
	return nil
}

// Symbol looks up a named element registered on this grammar.
func (g *Grammar) Symbol(name string) (*element.Element, bool) {
	e, ok := g.symbols[name]
	return e, ok
}

// SymbolNames returns every registered symbol name, sorted.
func (g *Grammar) SymbolNames() []string {
	names := make([]string, 0, len(g.symbols))
	for n := range g.symbols {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Element looks up an element by its id, valid only after Prepare.
func (g *Grammar) Element(id int) (*element.Element, bool) {
	e, ok := g.elements[id]
	return e, ok
}

// Prepared reports whether Prepare has succeeded since the last
// mutation.
func (g *Grammar) Prepared() bool {
	return g.prepared
}

// Prepare walks the grammar graph from the axiom (and the skip element,
// if set) in breadth-first order, assigns ascending ids to visited
// elements (even ids) and their incoming references (odd ids), and
// validates the structural invariants from spec.md §3/§4.4:
//
//   - the axiom must be set
//   - every reference must have a non-nil target
//   - no cycle may exist reachable purely through non-consuming paths
//     (left recursion)
//
// Elements that exist in the grammar's arena but are not reached from
// the axiom or skip are kept (so the host can still inspect them) but
// are flagged with element.UnsetID and excluded from the elements table
// and from stats.
func (g *Grammar) Prepare() error {
	g.prepared = false
	if g.axiom == nil {
		return fmt.Errorf("grammar %q: axiom is not set", g.Name)
	}

	var errs []string

	visited := util.NewKeySet[*element.Element]()
	visitedRefs := util.NewKeySet[*element.Reference]()
	g.elements = map[int]*element.Element{}

	nextElemID := 0
	nextRefID := 1

	queue := []*element.Element{g.axiom}
	if g.skip != nil {
		queue = append(queue, g.skip)
	}

	for len(queue) > 0 {
		el := queue[0]
		queue = queue[1:]
		if el == nil || visited.Has(el) {
			continue
		}
		visited.Add(el)
		el.ID = nextElemID
		nextElemID += 2
		g.elements[el.ID] = el

		for _, ref := range el.Children {
			if ref == nil {
				errs = append(errs, fmt.Sprintf("element %q has a nil child reference", el.Name))
				continue
			}
			if ref.Target == nil {
				errs = append(errs, fmt.Sprintf("reference (name=%q) on element %q has no target", ref.Name, el.Name))
				continue
			}
			if !visitedRefs.Has(ref) {
				visitedRefs.Add(ref)
				ref.ID = nextRefID
				nextRefID += 2
			}
			queue = append(queue, ref.Target)
		}
	}

	for _, el := range g.arena {
		if !visited.Has(el) {
			el.ID = element.UnsetID
		}
	}

	if cyc := g.findLeftRecursion(); cyc != "" {
		errs = append(errs, "left recursion detected through non-consuming paths: "+cyc)
	}

	if len(errs) > 0 {
		return fmt.Errorf("grammar %q: prepare failed:\n- %s", g.Name, strings.Join(errs, "\n- "))
	}

	g.prepared = true
	return nil
}

// zeroOffsetSuccessors returns every element reachable from el without
// el itself necessarily consuming any input, used by the left-recursion
// check. See findLeftRecursion.
func zeroOffsetSuccessors(el *element.Element, epsilon map[*element.Element]bool) []*element.Element {
	switch el.Kind {
	case element.KindGroup:
		out := make([]*element.Element, 0, len(el.Children))
		for _, ref := range el.Children {
			if ref != nil && ref.Target != nil {
				out = append(out, ref.Target)
			}
		}
		return out
	case element.KindRule:
		var out []*element.Element
		for _, ref := range el.Children {
			if ref == nil || ref.Target == nil {
				break
			}
			out = append(out, ref.Target)
			mustConsume := ref.Cardinality == element.CardinalityOne ||
				ref.Cardinality == element.CardinalityOneOrMore ||
				ref.Cardinality == element.CardinalityNotEmpty
			if mustConsume && !epsilon[ref.Target] {
				break
			}
		}
		return out
	default:
		return nil
	}
}

// canBeEpsilon computes, via fixpoint iteration over the whole arena,
// which elements can succeed while consuming zero bytes. Conditions and
// Procedures always can (they never consume); Words with non-empty text
// and Tokens conservatively cannot (a Token whose regex happens to admit
// the empty string is rare enough, and checking that correctly requires
// running the regex engine against "", which grouper does do, via a
// direct probe below).
func (g *Grammar) canBeEpsilon() map[*element.Element]bool {
	result := map[*element.Element]bool{}
	for _, el := range g.arena {
		switch el.Kind {
		case element.KindCondition, element.KindProcedure:
			result[el] = true
		case element.KindWord:
			result[el] = len(el.WordText) == 0
		case element.KindToken:
			result[el] = el.TokenRegex != nil && el.TokenRegex.MatchString("") && el.TokenRegex.FindStringIndex("") != nil && el.TokenRegex.FindString("") == ""
		default:
			result[el] = false
		}
	}

	changed := true
	for changed {
		changed = false
		for _, el := range g.arena {
			var can bool
			switch el.Kind {
			case element.KindGroup:
				for _, ref := range el.Children {
					if ref == nil || ref.Target == nil {
						continue
					}
					if ref.Cardinality == element.CardinalityOptional || ref.Cardinality == element.CardinalityZeroOrMore {
						can = true
						break
					}
					if result[ref.Target] {
						can = true
						break
					}
				}
			case element.KindRule:
				can = true
				for _, ref := range el.Children {
					if ref == nil || ref.Target == nil {
						continue
					}
					if ref.Cardinality == element.CardinalityOptional || ref.Cardinality == element.CardinalityZeroOrMore {
						continue
					}
					if !result[ref.Target] {
						can = false
						break
					}
				}
			default:
				continue
			}
			if can != result[el] {
				result[el] = can
				changed = true
			}
		}
	}
	return result
}

// findLeftRecursion reports a description of the first cycle found
// through non-consuming paths, or "" if the grammar is free of left
// recursion.
func (g *Grammar) findLeftRecursion() string {
	epsilon := g.canBeEpsilon()

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[*element.Element]int{}
	var path []string

	var visit func(el *element.Element) string
	visit = func(el *element.Element) string {
		if color[el] == black {
			return ""
		}
		if color[el] == gray {
			return el.Name
		}
		color[el] = gray
		path = append(path, el.Name)
		for _, succ := range zeroOffsetSuccessors(el, epsilon) {
			if cyc := visit(succ); cyc != "" {
				return fmt.Sprintf("%s -> %s", el.Name, cyc)
			}
		}
		path = path[:len(path)-1]
		color[el] = black
		return ""
	}

	for _, el := range g.arena {
		if color[el] == white {
			if cyc := visit(el); cyc != "" {
				return cyc
			}
		}
	}
	return ""
}

// Validate runs Prepare and returns its error, if any, without otherwise
// mutating prepared state beyond what Prepare itself does. It exists as
// a more discoverable name for hosts that just want a yes/no answer
// before parsing.
func (g *Grammar) Validate() error {
	return g.Prepare()
}
