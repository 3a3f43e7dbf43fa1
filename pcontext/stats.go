package pcontext

import (
	"fmt"
	"io"
	"sort"

	"github.com/dekarrin/rosed"
)

// symbolStats accumulates per-symbol attempt/success/failure/memo-hit
// counts for one named element across a parse.
type symbolStats struct {
	name      string
	attempts  int
	successes int
	failures  int
	memoHits  int
}

// Stats collects recognition statistics for a single parse, along with
// the deepest-offset failure seen (used to build the "expected X but
// found Y" diagnostic, in the spirit of ParsingResult.textAround in the
// Python original this engine is descended from).
type Stats struct {
	bySymbol map[string]*symbolStats

	deepestFailOffset int
	deepestFailNames  []string

	totalAttempts int
}

func newStats() *Stats {
	return &Stats{bySymbol: map[string]*symbolStats{}}
}

func (s *Stats) entry(name string) *symbolStats {
	e, ok := s.bySymbol[name]
	if !ok {
		e = &symbolStats{name: name}
		s.bySymbol[name] = e
	}
	return e
}

// RecordAttempt notes that name was attempted once, at offset.
func (s *Stats) RecordAttempt(name string, offset int) {
	s.totalAttempts++
	s.entry(name).attempts++
}

// RecordSuccess notes that name's most recent attempt succeeded.
func (s *Stats) RecordSuccess(name string) {
	s.entry(name).successes++
}

// RecordFailure notes that name's most recent attempt failed at offset,
// and updates the deepest-failure tracker used for diagnostics: the
// offset furthest into the input at which any element failed is the
// most useful point to report as "parsing stopped here", matching how
// PEG engines commonly surface the farthest failure rather than the
// first or the last.
func (s *Stats) RecordFailure(name string, offset int) {
	s.entry(name).failures++
	if offset > s.deepestFailOffset {
		s.deepestFailOffset = offset
		s.deepestFailNames = []string{name}
	} else if offset == s.deepestFailOffset {
		s.deepestFailNames = appendUnique(s.deepestFailNames, name)
	}
}

// RecordMemoHit notes that name's outcome at some offset was served
// from the memo table rather than recomputed.
func (s *Stats) RecordMemoHit(name string) {
	s.entry(name).memoHits++
}

// DeepestFailure returns the furthest input offset at which some
// element failed to match, and the names of the elements that failed
// there. If nothing ever failed, offset is 0 and names is empty.
func (s *Stats) DeepestFailure() (offset int, names []string) {
	return s.deepestFailOffset, append([]string(nil), s.deepestFailNames...)
}

// TotalAttempts returns the number of recognition attempts made across
// every element, memoized or not.
func (s *Stats) TotalAttempts() int {
	return s.totalAttempts
}

func appendUnique(names []string, name string) []string {
	for _, n := range names {
		if n == name {
			return names
		}
	}
	return append(names, name)
}

// Report renders a table of per-symbol statistics using rosed, in the
// style the teacher renders its LL1Table and LALR/CLR/SLR action tables
// elsewhere: InsertTableOpts over a [][]string with borders on.
func (s *Stats) Report() string {
	names := make([]string, 0, len(s.bySymbol))
	for name := range s.bySymbol {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		si, sj := s.bySymbol[names[i]], s.bySymbol[names[j]]
		if si.attempts != sj.attempts {
			return si.attempts > sj.attempts
		}
		return names[i] < names[j]
	})

	data := [][]string{{"SYMBOL", "ATTEMPTS", "SUCCESSES", "FAILURES", "MEMO HITS"}}
	for _, name := range names {
		e := s.bySymbol[name]
		data = append(data, []string{
			e.name,
			fmt.Sprintf("%d", e.attempts),
			fmt.Sprintf("%d", e.successes),
			fmt.Sprintf("%d", e.failures),
			fmt.Sprintf("%d", e.memoHits),
		})
	}

	return rosed.Edit("").
		InsertTableOpts(0, data, 100, rosed.Options{
			TableBorders: true,
		}).
		String()
}

// WriteReport writes Report's rendered table to w, matching spec.md
// §4.7's "the context can render a per-symbol report" as an io.Writer
// sink for hosts that want to stream it directly (e.g. debugserver).
func (s *Stats) WriteReport(w io.Writer) error {
	_, err := io.WriteString(w, s.Report())
	return err
}
