package process

import (
	"fmt"
	"io"
	"strings"

	"github.com/dekarrin/grouper/match"
)

// TreeWriter is a ready-made Dispatcher that prints a numbered, indented
// line per visited match, independent of the JSON/XML output package.
// Grounded directly on the original source's TreeWriter Processor
// subclass (see SPEC_FULL.md item 1).
type TreeWriter struct {
	*Dispatcher
	w      io.Writer
	count  int
	depths map[*match.Match]int
}

// NewTreeWriter constructs a TreeWriter that writes to w. Call its
// Process method (shadowing the embedded Dispatcher's) to run it over a
// match tree.
func NewTreeWriter(w io.Writer) *TreeWriter {
	tw := &TreeWriter{Dispatcher: NewDispatcher(), w: w}
	tw.Default = tw.writeAndRecurse
	return tw
}

// Process computes each node's depth in a separate pre-pass (dispatch
// itself runs post-order, so a node's own indent cannot be derived from
// call-stack depth the way a pre-order walk would do it) and then runs
// the normal post-order Dispatcher.Process.
func (tw *TreeWriter) Process(m *match.Match) (any, error) {
	tw.depths = map[*match.Match]int{}
	tw.count = 0
	var walk func(n *match.Match, d int)
	walk = func(n *match.Match, d int) {
		tw.depths[n] = d
		for _, c := range n.Children {
			walk(c, d+1)
		}
	}
	walk(m, 0)
	return tw.Dispatcher.Process(m)
}

func (tw *TreeWriter) writeAndRecurse(m *match.Match, children Children) (any, error) {
	label := m.ElementName
	if label == "" {
		label = fmt.Sprintf("(%s)", m.Kind)
	}
	tw.count++
	fmt.Fprintf(tw.w, "%3d. %s%s [%d,%d)\n", tw.count, strings.Repeat("  ", tw.depths[m]), label, m.Offset, m.End())
	return defaultRecurse(m), nil
}
