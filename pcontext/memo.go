package pcontext

import "github.com/dekarrin/grouper/match"

// memoStatus distinguishes a completed memoized outcome from the
// in-progress sentinel left behind while a composite is still being
// recognized at a given offset. An in-progress entry observed again at
// the same (element, offset) pair is the signature of left recursion
// slipping past Grammar.Prepare's static check (or of a grammar built
// without going through Prepare at all); recognize treats it as a
// failure rather than recursing forever, per spec.md §4.3.
type memoStatus int

const (
	memoInProgress memoStatus = iota
	memoSuccess
	memoFailure
)

// memoKey identifies a memoized recognition attempt: a composite
// element at a given input offset. Only Group and Rule kinds are ever
// memoized (see recognize.shouldMemoize); leaf kinds are cheap enough
// that memoizing them would only add map overhead, per the resolution
// of spec.md §9's open question on leaf memoization.
type memoKey struct {
	elementID int
	offset    int
}

// memoEntry is the recorded outcome of a memoized attempt.
type memoEntry struct {
	status memoStatus
	end    int
	m      *match.Match
}

// MemoLookup reports a previously-recorded outcome for (elementID,
// offset), if any. found is false if there is no entry at all.
func (c *Context) MemoLookup(elementID, offset int) (status int, end int, m *match.Match, found bool) {
	e, ok := c.memo[memoKey{elementID, offset}]
	if !ok {
		return 0, 0, nil, false
	}
	return int(e.status), e.end, e.m, true
}

// MemoEnter records that elementID is now being attempted at offset, so
// a reentrant attempt at the same key before MemoResolve is called can
// be detected and failed instead of looping. Returns false if an entry
// already exists (in progress or resolved); callers should treat false
// as "do not start a fresh attempt, use the existing outcome instead".
func (c *Context) MemoEnter(elementID, offset int) bool {
	key := memoKey{elementID, offset}
	if _, ok := c.memo[key]; ok {
		return false
	}
	c.memo[key] = memoEntry{status: memoInProgress}
	return true
}

// MemoResolveSuccess finalizes a memoized attempt as a success ending at
// end with match tree m.
func (c *Context) MemoResolveSuccess(elementID, offset, end int, m *match.Match) {
	c.memo[memoKey{elementID, offset}] = memoEntry{status: memoSuccess, end: end, m: m}
}

// MemoResolveFailure finalizes a memoized attempt as a failure.
func (c *Context) MemoResolveFailure(elementID, offset int) {
	c.memo[memoKey{elementID, offset}] = memoEntry{status: memoFailure}
}

// Exported status constants mirroring the unexported memoStatus values,
// for callers in other packages (recognize) that need to compare
// against MemoLookup's returned status.
const (
	MemoStatusInProgress = int(memoInProgress)
	MemoStatusSuccess    = int(memoSuccess)
	MemoStatusFailure    = int(memoFailure)
)
