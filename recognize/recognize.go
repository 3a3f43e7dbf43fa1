// Package recognize implements the recognition algorithm described in
// spec.md §4.2/§4.3: one recognition function per element kind, composed
// through References, backed by per-(element,offset) memoization and
// cooperative cancellation checks. This is the direct-recognizer core of
// the engine; it has no notion of LALR/LL/GLR tables, per spec.md §1's
// Non-goals.
package recognize

import (
	"fmt"

	"github.com/dekarrin/grouper/element"
	"github.com/dekarrin/grouper/match"
	"github.com/dekarrin/grouper/pcontext"
)

// maxDepth bounds runaway recursion that slips past Grammar.Prepare's
// left-recursion check (e.g. a grammar mutated after Prepare without a
// re-Prepare). It is generous enough not to trip on any legitimate deeply
// nested grammar.
const maxDepth = 100000

// shouldMemoize reports whether an element's recognition outcome at a
// given offset is worth caching. Per spec.md §9's resolution of the
// leaf-memoization open question (see DESIGN.md), only composites
// (Group, Rule) are memoized; Word/Token/Condition/Procedure are cheap
// enough to simply re-run.
func shouldMemoize(el *element.Element) bool {
	return el.Kind == element.KindGroup || el.Kind == element.KindRule
}

// Element recognizes el against ctx's iterator at its current offset,
// consulting and updating ctx's memo table for composite kinds. It
// returns the produced Match and true on success, or (nil, false) on
// failure. The iterator's offset is left just past the match on success,
// and restored to the entry offset on failure (callers never need to
// rewind themselves).
func Element(el *element.Element, ctx *pcontext.Context, skip *element.Element) (*match.Match, bool) {
	if ctx.Cancelled() {
		ctx.Stats.RecordFailure(symbolName(el), ctx.CurrentOffset())
		return nil, false
	}
	if ctx.Depth() > maxDepth {
		return nil, false
	}

	start := ctx.CurrentOffset()
	memo := shouldMemoize(el)

	if memo {
		if status, end, m, found := ctx.MemoLookup(el.ID, start); found {
			switch status {
			case pcontext.MemoStatusSuccess:
				ctx.Stats.RecordMemoHit(symbolName(el))
				ctx.Iter.SetOffset(end)
				return m, true
			case pcontext.MemoStatusFailure, pcontext.MemoStatusInProgress:
				ctx.Stats.RecordMemoHit(symbolName(el))
				return nil, false
			}
		}
		if !ctx.MemoEnter(el.ID, start) {
			// Re-entry at the same (element, offset) before resolution:
			// left recursion that slipped past Prepare's static check.
			// Treat as failure rather than recursing forever.
			return nil, false
		}
	}

	ctx.Stats.RecordAttempt(symbolName(el), start)
	ctx.EnterChild()
	m, ok := dispatch(el, ctx, skip)
	ctx.ExitChild()

	if ok {
		ctx.Stats.RecordSuccess(symbolName(el))
		ctx.Iter.SetOffset(m.Offset + m.Length)
		if memo {
			ctx.MemoResolveSuccess(el.ID, start, m.Offset+m.Length, m)
		}
		return m, true
	}

	ctx.Stats.RecordFailure(symbolName(el), start)
	ctx.Iter.SetOffset(start)
	if memo {
		ctx.MemoResolveFailure(el.ID, start)
	}
	return nil, false
}

// recordCallbackPanic converts a recovered panic from a Condition or
// Procedure callback into a *pcontext.Context error and requests
// cancellation of the enclosing parse.
func recordCallbackPanic(ctx *pcontext.Context, el *element.Element, r any) {
	err, ok := r.(error)
	if !ok {
		err = fmt.Errorf("%v", r)
	}
	ctx.RecordCallbackError(fmt.Errorf("%s callback %q: %w", el.Kind, el.Name, err))
}

func symbolName(el *element.Element) string {
	if el.Name != "" {
		return el.Name
	}
	return "(anonymous " + el.Kind.String() + ")"
}

// dispatch runs the per-kind recognition function. It assumes the
// iterator is already positioned at the attempt offset and does not
// itself touch the memo table or stats (Element does that uniformly).
func dispatch(el *element.Element, ctx *pcontext.Context, skip *element.Element) (*match.Match, bool) {
	switch el.Kind {
	case element.KindWord:
		return recognizeWord(el, ctx)
	case element.KindToken:
		return recognizeToken(el, ctx)
	case element.KindCondition:
		return recognizeCondition(el, ctx)
	case element.KindProcedure:
		return recognizeProcedure(el, ctx)
	case element.KindGroup:
		return recognizeGroup(el, ctx, skip)
	case element.KindRule:
		return recognizeRule(el, ctx, skip)
	default:
		return nil, false
	}
}

func newMatch(el *element.Element, offset, length int, ctx *pcontext.Context) *match.Match {
	return &match.Match{
		Kind:        match.Kind(el.Kind),
		ElementID:   el.ID,
		ElementName: el.Name,
		Offset:      offset,
		Length:      length,
		Line:        ctx.Iter.LineOf(offset),
	}
}

func recognizeWord(el *element.Element, ctx *pcontext.Context) (*match.Match, bool) {
	start := ctx.CurrentOffset()
	n := len(el.WordText)
	buf := ctx.Iter.Peek(n)
	if len(buf) < n || !wordEqual(buf, el.WordText) {
		return nil, false
	}
	ctx.Tracef("%*sWord %q matched %d bytes at %d", ctx.Depth()*2, "", el.Name, n, start)
	return newMatch(el, start, n, ctx), true
}

func wordEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func recognizeToken(el *element.Element, ctx *pcontext.Context) (*match.Match, bool) {
	start := ctx.CurrentOffset()

	// The regex is run anchored (element.NewToken prefixes it with "^")
	// against a peeked window. If the window is too small to contain the
	// whole match the regex engine would otherwise find, widen it once;
	// FindIndex on a fully-buffered in-memory iterator always sees the
	// rest of the input, so this only matters for a streaming source
	// where the match could straddle the initial peek window.
	window := ctx.Iter.Peek(4096)
	loc := el.TokenRegex.FindSubmatchIndex(asString(window, el.FoldCase))
	for loc == nil && len(window) > 0 && len(window) < 1<<20 {
		bigger := ctx.Iter.Peek(len(window) * 4)
		if len(bigger) == len(window) {
			break // no more input available
		}
		window = bigger
		loc = el.TokenRegex.FindSubmatchIndex(asString(window, el.FoldCase))
	}
	if loc == nil || loc[0] != 0 {
		return nil, false
	}

	length := loc[1]
	groups := make([]string, 0, len(loc)/2)
	for i := 2; i+1 < len(loc); i += 2 {
		if loc[i] < 0 {
			groups = append(groups, "")
			continue
		}
		groups = append(groups, string(window[loc[i]:loc[i+1]]))
	}

	m := newMatch(el, start, length, ctx)
	m.Data = groups
	ctx.Tracef("%*sToken %q matched %d bytes at %d", ctx.Depth()*2, "", el.Name, length, start)
	return m, true
}

// asString returns window as a []byte suitable for regex matching,
// folding case first when the Token was constructed with FoldCase. The
// regex itself still operates byte-wise; folding the candidate window
// (rather than compiling a case-insensitive pattern) keeps capture-group
// offsets aligned with the original bytes only when fold-casing does not
// change length, which holds for cases.Fold on the ASCII keyword-style
// patterns this feature targets (see element.FoldString/DESIGN.md).
func asString(window []byte, fold bool) []byte {
	if !fold {
		return window
	}
	folded := []byte(element.FoldString(string(window)))
	if len(folded) == len(window) {
		return folded
	}
	// Folding changed length (rare, non-ASCII input): fall back to the
	// raw window rather than risk misaligned offsets.
	return window
}

func recognizeCondition(el *element.Element, ctx *pcontext.Context) (*match.Match, bool) {
	start := ctx.CurrentOffset()
	ok := callCondition(el, ctx)
	if !ok {
		return nil, false
	}
	return newMatch(el, start, 0, ctx), true
}

// callCondition invokes a Condition callback, converting a panic into a
// failed recognition rather than letting it escape (see
// recognize.Result.Err / spec.md §7's "callback-originated errors").
func callCondition(el *element.Element, ctx *pcontext.Context) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			recordCallbackPanic(ctx, el, r)
		}
	}()
	return el.Condition(el, ctx)
}

func recognizeProcedure(el *element.Element, ctx *pcontext.Context) (*match.Match, bool) {
	start := ctx.CurrentOffset()
	callProcedure(el, ctx)
	return newMatch(el, start, 0, ctx), true
}

func callProcedure(el *element.Element, ctx *pcontext.Context) {
	defer func() {
		if r := recover(); r != nil {
			recordCallbackPanic(ctx, el, r)
		}
	}()
	el.Procedure(el, ctx)
}

func recognizeGroup(el *element.Element, ctx *pcontext.Context, skip *element.Element) (*match.Match, bool) {
	start := ctx.CurrentOffset()
	for _, ref := range el.Children {
		ctx.Iter.SetOffset(start)
		traceMark := ctx.TraceMark()
		childMatch, ok := Reference(ref, ctx, skip)
		if ok {
			m := newMatch(el, start, childMatch.End()-start, ctx)
			m.Children = []*match.Match{childMatch}
			return m, true
		}
		ctx.TraceRollback(traceMark)
	}
	ctx.Iter.SetOffset(start)
	return nil, false
}

func recognizeRule(el *element.Element, ctx *pcontext.Context, skip *element.Element) (*match.Match, bool) {
	start := ctx.CurrentOffset()
	var children []*match.Match

	for i, ref := range el.Children {
		if ctx.Cancelled() {
			ctx.Iter.SetOffset(start)
			return nil, false
		}
		if i > 0 && skip != nil {
			consumeSkip(skip, ctx)
		}
		childMatch, ok := Reference(ref, ctx, skip)
		if !ok {
			ctx.Iter.SetOffset(start)
			return nil, false
		}
		children = append(children, childMatch)
	}

	end := ctx.CurrentOffset()
	m := newMatch(el, start, end-start, ctx)
	m.Children = children
	return m, true
}

// consumeSkip attempts skip once between Rule siblings, accepting even a
// zero-length match, per spec.md §4.2's "skip between sequence items is
// optional... if skip would match unboundedly empty, the recognizer
// accepts one empty match and moves on." Skip itself is never memoized
// under a Rule's own element id, so repeated sibling gaps each get a
// fresh attempt.
func consumeSkip(skip *element.Element, ctx *pcontext.Context) {
	Element(skip, ctx, skip)
}

// Reference recognizes ref's target according to its cardinality,
// wrapping the result(s) in a single Reference-kind Match. See spec.md
// §3/§4.2 for the cardinality semantics.
func Reference(ref *element.Reference, ctx *pcontext.Context, skip *element.Element) (*match.Match, bool) {
	start := ctx.CurrentOffset()

	switch ref.Cardinality {
	case element.CardinalityOne:
		child, ok := Element(ref.Target, ctx, skip)
		if !ok {
			return nil, false
		}
		return wrapReference(ref, start, []*match.Match{child}, ctx), true

	case element.CardinalityOptional:
		child, ok := Element(ref.Target, ctx, skip)
		if !ok {
			ctx.Iter.SetOffset(start)
			return wrapReference(ref, start, nil, ctx), true
		}
		return wrapReference(ref, start, []*match.Match{child}, ctx), true

	case element.CardinalityZeroOrMore:
		var children []*match.Match
		for {
			before := ctx.CurrentOffset()
			child, ok := Element(ref.Target, ctx, skip)
			if !ok {
				ctx.Iter.SetOffset(before)
				break
			}
			if child.End() == before {
				// Zero-length successful match: accept it once but do
				// not loop forever on an element that always succeeds
				// without consuming input (spec.md §8's "nested
				// repetition (a?)* must not loop").
				children = append(children, child)
				break
			}
			children = append(children, child)
		}
		return wrapReference(ref, start, children, ctx), true

	case element.CardinalityOneOrMore:
		first, ok := Element(ref.Target, ctx, skip)
		if !ok {
			return nil, false
		}
		children := []*match.Match{first}
		if first.End() != start {
			for {
				before := ctx.CurrentOffset()
				child, ok := Element(ref.Target, ctx, skip)
				if !ok {
					ctx.Iter.SetOffset(before)
					break
				}
				children = append(children, child)
				if child.End() == before {
					break
				}
			}
		}
		return wrapReference(ref, start, children, ctx), true

	case element.CardinalityNotEmpty:
		child, ok := Element(ref.Target, ctx, skip)
		if !ok {
			return nil, false
		}
		if child.Length == 0 {
			ctx.Iter.SetOffset(start)
			return nil, false
		}
		return wrapReference(ref, start, []*match.Match{child}, ctx), true

	default:
		return nil, false
	}
}

func wrapReference(ref *element.Reference, start int, children []*match.Match, ctx *pcontext.Context) *match.Match {
	end := start
	if len(children) > 0 {
		end = children[len(children)-1].End()
	}
	return &match.Match{
		Kind:                 match.KindReference,
		ElementID:            ref.ID,
		Offset:               start,
		Length:               end - start,
		Line:                 ctx.Iter.LineOf(start),
		ReferenceCardinality: ref.Cardinality.String(),
		ReferenceName:        ref.Name,
		Children:             children,
	}
}
