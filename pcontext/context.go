// Package pcontext holds the per-parse state threaded through
// recognition: the iterator and grammar handles, the scope stack used by
// Condition/Procedure elements, the memoization table, and the
// recognition statistics used for diagnostics.
package pcontext

import (
	"fmt"
	"strings"

	"github.com/dekarrin/grouper/element"
	"github.com/dekarrin/grouper/internal/util"
	"github.com/dekarrin/grouper/iter"
)

// scopeEntry is one (name, value) binding pushed onto the scope stack.
type scopeEntry struct {
	name  string
	value any
}

// Context is per-parse state. One Context is created per call to
// Grammar.ParseString/ParseIterator/ParsePath and discarded (along with
// its memo table and stats) once the ParsingResult is no longer needed.
type Context struct {
	Iter *iter.Iterator

	scope []scopeEntry

	memo map[memoKey]memoEntry

	Stats *Stats

	// Trace accumulates a verbose recognition log when the owning
	// grammar has Verbose set; entries written during a composite
	// attempt that ultimately fails are undone via Trace.Undo so the
	// log reads as if the failed attempt never happened, matching how
	// the match tree itself discards a failed composite's children.
	Trace     *util.UndoableStringBuilder
	trace     bool
	traceOps  int

	depth int

	cancelled bool

	// callbackErr records the first panic recovered from a Condition or
	// Procedure callback, surfaced by recognize.Result.Err per spec.md
	// §7's "callback-originated errors ... cause the enclosing parse to
	// fail with the callback's error attached to the result."
	callbackErr error
}

// New constructs a fresh Context over it. verbose enables trace
// recording (see Trace).
func New(it *iter.Iterator, verbose bool) *Context {
	ctx := &Context{
		Iter:  it,
		memo:  map[memoKey]memoEntry{},
		Stats: newStats(),
		trace: verbose,
	}
	if verbose {
		ctx.Trace = &util.UndoableStringBuilder{}
	}
	return ctx
}

// Depth returns the current recognition recursion depth, used for
// diagnostic indentation and to let a recognizer bound runaway
// recursion.
func (c *Context) Depth() int { return c.depth }

// EnterChild increments the depth for the duration of a nested
// recognize call; callers should defer c.ExitChild().
func (c *Context) EnterChild() { c.depth++ }

// ExitChild decrements the depth.
func (c *Context) ExitChild() { c.depth-- }

// PushScope records the current scope-stack depth so a later PopScope
// can truncate back to it, matching spec.md §3's "push records the
// current stack depth and pop truncates back to it."
func (c *Context) PushScope() {
	c.scope = append(c.scope, scopeEntry{name: "\x00scope-mark", value: len(c.scope)})
}

// PopScope truncates the scope stack back to the depth recorded by the
// most recent unmatched PushScope. If there is no matching PushScope,
// PopScope is a no-op.
func (c *Context) PopScope() {
	for i := len(c.scope) - 1; i >= 0; i-- {
		if c.scope[i].name == "\x00scope-mark" {
			mark := c.scope[i].value.(int)
			c.scope = c.scope[:mark]
			return
		}
	}
}

// Set binds name to value in the current (innermost) scope.
func (c *Context) Set(name string, value any) {
	c.scope = append(c.scope, scopeEntry{name: name, value: value})
}

// Get looks up name, searching from the innermost scope outward. The
// second return value is false if name is unbound.
func (c *Context) Get(name string) (any, bool) {
	for i := len(c.scope) - 1; i >= 0; i-- {
		if c.scope[i].name == name {
			return c.scope[i].value, true
		}
	}
	return nil, false
}

// CharAt returns the byte at the given absolute offset, if it has been
// buffered (peeking to force a read if needed). ok is false if offset is
// past the end of input.
func (c *Context) CharAt(offset int) (byte, bool) {
	saved := c.Iter.Offset()
	defer c.Iter.SetOffset(saved)

	if err := c.Iter.SetOffset(offset); err != nil {
		// may be beyond what's been buffered yet; try to force a read
		// by peeking from the saved position forward, then retry.
		c.Iter.Peek(offset - saved + 1)
		if err2 := c.Iter.SetOffset(offset); err2 != nil {
			return 0, false
		}
	}
	b := c.Iter.Peek(1)
	if len(b) == 0 {
		return 0, false
	}
	return b[0], true
}

// CurrentOffset returns the iterator's current absolute offset.
func (c *Context) CurrentOffset() int {
	return c.Iter.Offset()
}

// Cancel requests that recognition unwind as soon as a top-level Rule or
// Group checkpoint observes it (see spec.md §5). Safe to call from
// another goroutine.
func (c *Context) Cancel() { c.cancelled = true }

// Cancelled reports whether Cancel has been called.
func (c *Context) Cancelled() bool { return c.cancelled }

var _ element.Context = (*Context)(nil)

// RecordCallbackError records err as the callback-originated failure
// that ended the parse, if none has been recorded yet (the first
// callback panic wins; later ones are still converted to ordinary
// recognition failures by the caller). Recording also requests
// cancellation, so the parse unwinds promptly instead of continuing to
// explore alternatives after a broken callback.
func (c *Context) RecordCallbackError(err error) {
	if c.callbackErr == nil {
		c.callbackErr = err
	}
	c.Cancel()
}

// CallbackError returns the first callback-originated error recorded
// during the parse, or nil if none occurred.
func (c *Context) CallbackError() error {
	return c.callbackErr
}

// FailureWindow renders the line containing offset and a caret line
// pointing at its column, mirroring the original source's
// ParsingResult.textAround (see SPEC_FULL.md's supplemental-features
// section). It is the primary aid for grammar debugging named in
// spec.md §4.7.
func (c *Context) FailureWindow(offset int) (line string, caret string) {
	start, end := c.Iter.LineBounds(offset)
	window := c.Iter.Window()
	if end > len(window) {
		end = len(window)
	}
	if start > end {
		start = end
	}
	line = string(window[start:end])
	col := offset - start
	if col < 0 {
		col = 0
	}
	if col > len(line) {
		col = len(line)
	}
	caret = strings.Repeat(" ", col) + "^"
	return line, caret
}

// Tracef writes a formatted trace line if verbose tracing is enabled;
// it is a no-op otherwise. Use TraceMark/TraceRollback to discard lines
// written during a backtracked attempt.
func (c *Context) Tracef(format string, args ...any) {
	if !c.trace {
		return
	}
	c.Trace.WriteString(sprintfTrace(format, args...))
	c.traceOps++
}

// TraceMark returns an opaque checkpoint that TraceRollback can later
// use to undo every trace line written since the mark, mirroring how a
// failed composite's matches are discarded before backtracking.
func (c *Context) TraceMark() int {
	return c.traceOps
}

// TraceRollback undoes every trace line written since mark was taken,
// via repeated Undo calls on the underlying UndoableStringBuilder. Call
// this when a composite's attempt at a given offset ultimately fails, so
// the verbose log does not show lines for an alternative that was not
// taken.
func (c *Context) TraceRollback(mark int) {
	if !c.trace {
		return
	}
	for c.traceOps > mark {
		c.Trace.Undo()
		c.traceOps--
	}
}

func sprintfTrace(format string, args ...any) string {
	return fmt.Sprintf(format, args...) + "\n"
}
