package recognize

import (
	"fmt"
	"os"

	"github.com/dekarrin/grouper/grammar"
	"github.com/dekarrin/grouper/internal/util"
	"github.com/dekarrin/grouper/iter"
	"github.com/dekarrin/grouper/match"
	"github.com/dekarrin/grouper/pcontext"
)

// Status is the outcome of a parse, per spec.md §4.5.
type Status int

const (
	// StatusFailure means no root match was produced.
	StatusFailure Status = iota
	// StatusPartial means the root match succeeded but did not cover the
	// whole input.
	StatusPartial
	// StatusSuccess means the root match covers the entire input.
	StatusSuccess
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusPartial:
		return "partial"
	case StatusFailure:
		return "failure"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result wraps the outcome of a call to ParseString/ParseIterator/
// ParsePath: a status, the root match (nil on failure), and the
// Context used to produce it (for diagnostics and stats). A Result is
// never nil for a call that returns one, matching spec.md §7's "a
// parsing result always exists for a call to parse."
type Result struct {
	Status  Status
	Root    *match.Match
	Context *pcontext.Context

	// Err carries an I/O cause (unreadable ParsePath source) or a
	// callback-originated error (see pcontext.Context.CallbackError),
	// matching spec.md §7's error taxonomy for recognition failures
	// that are not "just" a non-matching alternative.
	Err error

	inputLen int
}

// IsSuccess reports whether the root match covers the entire input.
func (r *Result) IsSuccess() bool { return r.Status == StatusSuccess }

// IsPartial reports whether the root match succeeded but left trailing
// input unconsumed.
func (r *Result) IsPartial() bool { return r.Status == StatusPartial }

// IsFailure reports whether no root match was produced at all.
func (r *Result) IsFailure() bool { return r.Status == StatusFailure }

// RemainingBytes returns how many bytes of input were not covered by the
// root match (0 for a full Success, inputLen for a Failure).
func (r *Result) RemainingBytes() int {
	if r.Root == nil {
		return r.inputLen
	}
	return r.inputLen - r.Root.End()
}

// LastMatch returns the offset, length, and element id of the most
// recent successful recognition recorded in the context's stats-visible
// trail. grouper tracks this via the deepest point any element reached,
// which for a successful parse is simply the root's own extent.
func (r *Result) LastMatch() (offset, length int) {
	if r.Root == nil {
		return 0, 0
	}
	return r.Root.Offset, r.Root.Length
}

// DescribeError renders a human-readable diagnostic combining the
// deepest-failure cursor from stats with a window of surrounding input,
// in the spirit of the original source's ParsingResult.textAround (see
// SPEC_FULL.md's TreeWriter/textAround supplemental features).
func (r *Result) DescribeError() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	if r.IsSuccess() {
		return "no error: parse succeeded"
	}
	offset, names := r.Context.Stats.DeepestFailure()
	line, caret := r.Context.FailureWindow(offset)
	return fmt.Sprintf("parse %s: deepest failure at offset %d (line %d), expected %s\n%s\n%s",
		r.Status, offset, r.Context.Iter.LineOf(offset), util.MakeTextList(names), line, caret)
}

// ParseString parses data against g's axiom, building a fresh Context
// and Iterator over an in-memory buffer. g must already be prepared
// (see grammar.Grammar.Prepare).
func ParseString(g *grammar.Grammar, data []byte) *Result {
	return parse(g, iter.FromBytes(data), len(data))
}

// ParseIterator parses using a caller-constructed Iterator (e.g. a
// streaming one via iter.FromReader), which the caller retains ownership
// of.
func ParseIterator(g *grammar.Grammar, it *iter.Iterator) *Result {
	return parse(g, it, -1)
}

// ParsePath parses the contents of the file at path. An unreadable path
// is reported as a StatusFailure Result carrying the I/O cause in Err,
// per spec.md §7's "unreadable source (path/stream)" error taxonomy
// entry, rather than as a Go error return (a parsing result always
// exists for a call to parse).
func ParsePath(g *grammar.Grammar, path string) *Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Result{Status: StatusFailure, Err: fmt.Errorf("cannot read %q: %w", path, err)}
	}
	return ParseString(g, data)
}

func parse(g *grammar.Grammar, it *iter.Iterator, inputLen int) *Result {
	if !g.Prepared() {
		if err := g.Prepare(); err != nil {
			return &Result{Status: StatusFailure, Err: err}
		}
	}

	ctx := pcontext.New(it, g.Verbose)
	axiom := g.Axiom()

	root, ok := Element(axiom, ctx, g.Skip())

	result := &Result{Context: ctx, inputLen: inputLen}
	if inputLen < 0 {
		result.inputLen = it.Len()
	}

	if err := ctx.CallbackError(); err != nil {
		result.Err = err
		result.Status = StatusFailure
		return result
	}

	if !ok {
		result.Status = StatusFailure
		return result
	}

	result.Root = root
	if root.End() >= result.inputLen && !moreInputFollows(it, root.End()) {
		result.Status = StatusSuccess
	} else {
		result.Status = StatusPartial
	}
	return result
}

// moreInputFollows reports whether the iterator has any byte left
// beyond offset, forcing a read on a streaming source if needed so a
// Success/Partial distinction is accurate even when inputLen was
// unknown up front (ParseIterator).
func moreInputFollows(it *iter.Iterator, offset int) bool {
	saved := it.Offset()
	defer it.SetOffset(saved)
	if err := it.SetOffset(offset); err != nil {
		return false
	}
	return len(it.Peek(1)) > 0
}
