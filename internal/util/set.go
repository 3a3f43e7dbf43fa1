package util

// KeySet is a minimal map-backed set, trimmed down from the teacher's
// full ISet/VSet/StringSet/SVSet generic container kit to the one shape
// grammar.Grammar.Prepare actually needs: tracking which elements and
// references have already been visited during its breadth-first walk
// (see grammar/grammar.go). The rest of the teacher's set kit (ordered
// string rendering, union/intersection/difference, a value-mapped
// variant) has no caller anywhere in grouper, so it isn't carried here.
type KeySet[E comparable] map[E]bool

// NewKeySet returns an empty KeySet, optionally seeded from existing
// maps.
func NewKeySet[E comparable](of ...map[E]bool) KeySet[E] {
	s := KeySet[E]{}
	for _, m := range of {
		for k := range m {
			s.Add(k)
		}
	}
	return s
}

// Has reports whether value is a member of the set.
func (s KeySet[E]) Has(value E) bool {
	_, has := s[value]
	return has
}

// Add inserts value into the set.
func (s KeySet[E]) Add(value E) {
	s[value] = true
}

// Remove deletes value from the set, if present.
func (s KeySet[E]) Remove(value E) {
	delete(s, value)
}

// Len returns the number of elements in the set.
func (s KeySet[E]) Len() int {
	return len(s)
}
