package element

import "fmt"

// Cardinality controls how many times a Reference's target must or may
// match at a given offset.
type Cardinality int

const (
	// CardinalityOne requires exactly one successful match of the
	// target; the reference's success/failure is the target's.
	CardinalityOne Cardinality = iota

	// CardinalityOptional attempts the target once; on failure it
	// still succeeds, producing an empty match at the attempt offset.
	CardinalityOptional

	// CardinalityZeroOrMore repeatedly attempts the target until it
	// fails, succeeding even with zero matches. It never backtracks
	// past the last successful attempt.
	CardinalityZeroOrMore

	// CardinalityOneOrMore requires the first attempt to succeed, then
	// behaves as CardinalityZeroOrMore.
	CardinalityOneOrMore

	// CardinalityNotEmpty behaves as CardinalityOne, additionally
	// failing if the produced match has zero length.
	CardinalityNotEmpty
)

func (c Cardinality) String() string {
	switch c {
	case CardinalityOne:
		return "one"
	case CardinalityOptional:
		return "optional"
	case CardinalityZeroOrMore:
		return "zeroOrMore"
	case CardinalityOneOrMore:
		return "oneOrMore"
	case CardinalityNotEmpty:
		return "notEmpty"
	default:
		return fmt.Sprintf("Cardinality(%d)", int(c))
	}
}

// Reference is a directed edge from a composite element to a target
// element, carrying a cardinality and an optional slot name. It is the
// only kind of edge in the grammar graph.
type Reference struct {
	ID          int
	Target      *Element
	Cardinality Cardinality
	Name        string

	// DisableMemoize opts this reference's target out of memoization
	// even if it would otherwise be a memoized (composite) kind.
	// grouper keeps the hook but defaults every reference to the safe
	// "memoize composites only" policy regardless of this flag (see
	// recognize.shouldMemoize).
	DisableMemoize bool
}

func newRef(target *Element, card Cardinality) *Reference {
	return &Reference{ID: UnsetID, Target: target, Cardinality: card}
}

// One constructs a new `one`-cardinality Reference to target, matching
// Reference.FromElement's default cardinality in the original source.
func One(target *Element) *Reference {
	return newRef(target, CardinalityOne)
}

// As sets the reference's slot name and returns the reference, for
// fluent construction: element.One(x).As("left").
func (r *Reference) As(name string) *Reference {
	r.Name = name
	return r
}

// One, Optional, ZeroOrMore, OneOrMore, and NotEmpty mutate the
// reference's cardinality in place and return it, mirroring the mutating
// style of Reference.one()/.optional()/etc. in the original source
// (references remain mutable until Grammar.Prepare completes).
func (r *Reference) One() *Reference        { r.Cardinality = CardinalityOne; return r }
func (r *Reference) Optional() *Reference   { r.Cardinality = CardinalityOptional; return r }
func (r *Reference) ZeroOrMore() *Reference { r.Cardinality = CardinalityZeroOrMore; return r }
func (r *Reference) OneOrMore() *Reference  { r.Cardinality = CardinalityOneOrMore; return r }
func (r *Reference) NotEmpty() *Reference   { r.Cardinality = CardinalityNotEmpty; return r }

// NoMemo marks the reference as opted out of memoization (see
// DisableMemoize) and returns it.
func (r *Reference) NoMemo() *Reference {
	r.DisableMemoize = true
	return r
}
