// Package process implements the processor dispatch described in
// spec.md §4.5: a post-order walk of a match tree that invokes
// host-supplied handlers keyed by element id, falling back to a default
// handler that recurses into children when no handler is registered.
package process

import (
	"fmt"

	"github.com/dekarrin/grouper/match"
)

// HandlerFunc is a host-supplied handler for one element id. children
// holds the already-processed Value of every named reference child (see
// match.Match.NamedChild/NamedChildren), keyed by slot name; a handler
// reads from it instead of re-walking m.Children itself.
type HandlerFunc func(m *match.Match, children Children) (any, error)

// Children gives a handler access to the processed values of its
// match's named reference children, bound by slot name as described in
// spec.md §4.5 ("bound by reference slot name").
type Children struct {
	m *match.Match
}

// Get returns the processed Value of the single target match bound
// under name (for `one`/`optional`/`notEmpty` cardinality references),
// or nil if there is no such name or it is a multi-valued reference.
func (c Children) Get(name string) any {
	if child := c.m.NamedChild(name); child != nil {
		return child.Value
	}
	return nil
}

// GetAll returns the processed Values of every target match bound under
// name (for `zeroOrMore`/`oneOrMore` cardinality references), in order.
func (c Children) GetAll(name string) []any {
	targets := c.m.NamedChildren(name)
	if targets == nil {
		return nil
	}
	out := make([]any, len(targets))
	for i, t := range targets {
		out[i] = t.Value
	}
	return out
}

// Raw returns the match node itself, for handlers that need more than
// named-child lookup (e.g. Captures() on a Token match).
func (c Children) Raw() *match.Match { return c.m }

// HandlerError wraps a panic or returned error from a host handler,
// carrying the offending match and element id, mirroring the original
// source's HandlerException (exception/args/handler/context fields),
// per SPEC_FULL.md's supplemental-features section.
type HandlerError struct {
	ElementID int
	Match     *match.Match
	Err       error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler for element %d failed at offset %d: %v", e.ElementID, e.Match.Offset, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// Strategy selects how much of the match tree a Dispatcher visits.
type Strategy int

const (
	// Eager visits every match in the tree; the default handler
	// recurses into every child regardless of whether any handler is
	// registered below it.
	Eager Strategy = iota

	// Lazy visits only matches with a registered handler and the
	// matches those handlers' Children lookups actually reach (i.e.
	// named reference children); unused subtrees are left unvisited
	// (m.Value stays nil) unless referenced by name.
	Lazy
)

// Dispatcher walks a match tree in document order, invoking the handler
// registered for each match's element id. Handler invocation is
// post-order (children first) so a handler sees already-processed child
// values, per spec.md §4.5.
type Dispatcher struct {
	Strategy Strategy

	handlers map[int]HandlerFunc

	// Default, if set, overrides the built-in default handler (which
	// simply recurses into children and returns nil) for elements with
	// no registered handler.
	Default HandlerFunc
}

// NewDispatcher constructs an Eager Dispatcher with no handlers
// registered.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: map[int]HandlerFunc{}}
}

// RegisterHandler binds fn as the handler for the given element id. A
// second registration for the same id replaces the first.
func (d *Dispatcher) RegisterHandler(elementID int, fn HandlerFunc) {
	d.handlers = ensureMap(d.handlers)
	d.handlers[elementID] = fn
}

func ensureMap(m map[int]HandlerFunc) map[int]HandlerFunc {
	if m == nil {
		return map[int]HandlerFunc{}
	}
	return m
}

// Process walks m post-order, invoking registered handlers (or the
// default) and returning the root's processed Value. It is idempotent:
// calling Process twice over the same tree with the same Dispatcher
// produces the same Value on each node, matching spec.md §8's "process(match)
// is idempotent for handlers that return the match value unchanged."
func (d *Dispatcher) Process(m *match.Match) (any, error) {
	if m == nil {
		return nil, nil
	}
	v, err := d.visit(m)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (d *Dispatcher) visit(m *match.Match) (val any, err error) {
	// Reference matches are never themselves dispatched to a handler
	// (spec.md §3); they exist only to preserve cardinality. Recurse
	// straight through to their target children, each processed in
	// turn, and return the last one's value (a reference's own "value"
	// is meaningless outside of the parent's named-child lookup).
	if m.Kind == match.KindReference {
		var last any
		for _, c := range m.Children {
			last, err = d.visit(c)
			if err != nil {
				return nil, err
			}
		}
		m.Value = last
		return last, nil
	}

	handler, has := d.handlers[m.ElementID]

	if !has && d.Strategy == Lazy {
		// Lazy: no handler registered here and none of this node's
		// descendants can be reached by name from a parent handler
		// (Children.Get only ever looks at direct reference children,
		// which are visited explicitly below), so skip descending.
		m.Value = nil
		return nil, nil
	}

	if err := d.visitChildrenForLookup(m); err != nil {
		return nil, err
	}

	if has {
		val, err = d.invoke(handler, m)
	} else if d.Default != nil {
		val, err = d.invoke(d.Default, m)
	} else {
		val = defaultRecurse(m)
	}
	if err != nil {
		return nil, err
	}
	m.Value = val
	return val, nil
}

// visitChildrenForLookup ensures every direct reference child of m has
// been processed (so Children.Get/GetAll see populated Values) before
// m's own handler runs, regardless of strategy: a handler always needs
// its own named children's values even under Lazy, only unnamed/unused
// subtrees are skipped.
func (d *Dispatcher) visitChildrenForLookup(m *match.Match) error {
	for _, c := range m.Children {
		if _, err := d.visit(c); err != nil {
			return err
		}
	}
	return nil
}

// invoke calls fn, converting a panic into a *HandlerError, matching
// the original source's HandlerException behavior (see
// SPEC_FULL.md item 4).
func (d *Dispatcher) invoke(fn HandlerFunc, m *match.Match) (val any, err error) {
	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(error)
			if !ok {
				rerr = fmt.Errorf("%v", r)
			}
			err = &HandlerError{ElementID: m.ElementID, Match: m, Err: rerr}
		}
	}()
	v, ferr := fn(m, Children{m: m})
	if ferr != nil {
		return nil, &HandlerError{ElementID: m.ElementID, Match: m, Err: ferr}
	}
	return v, nil
}

// defaultRecurse is the built-in default handler: it returns nil for a
// leaf and, for a composite, the slice of its children's processed
// Values (already populated by visitChildrenForLookup).
func defaultRecurse(m *match.Match) any {
	if len(m.Children) == 0 {
		return nil
	}
	vals := make([]any, len(m.Children))
	for i, c := range m.Children {
		vals[i] = c.Value
	}
	return vals
}
