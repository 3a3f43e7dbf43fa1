// Package iter provides the sliding, line-aware byte iterator that the
// recognizer reads from. It buffers input from either an in-memory byte
// slice or a streaming io.Reader, refilling its window on demand, and
// tracks line numbers as a configurable separator byte is observed.
package iter

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// DefaultSeparator is the byte used to delimit lines when none is
// configured explicitly.
const DefaultSeparator = '\n'

// Iterator presents an input source as a sliding window of bytes with an
// absolute offset cursor. Backward seeks are allowed within the currently
// buffered window only; this is what lets the recognizer rewind on
// backtracking and lets memoization re-inspect an earlier offset.
type Iterator struct {
	src    *bufio.Reader
	buf    []byte // the full buffer accumulated so far (grows as the source is read)
	offset int     // absolute offset from the start of input
	eof    bool    // true once src has been fully drained into buf

	separator byte
	lines     []int // absolute offsets of each separator seen, in order
}

// FromBytes constructs an Iterator over an in-memory byte slice. The entire
// slice is immediately "buffered" (no further reads ever occur), which
// keeps set_offset valid across the whole input.
func FromBytes(data []byte) *Iterator {
	buf := make([]byte, len(data))
	copy(buf, data)
	it := &Iterator{
		buf:       buf,
		eof:       true,
		separator: DefaultSeparator,
	}
	it.scanLines(0, buf)
	return it
}

// FromReader constructs a streaming Iterator. capacity is the size of the
// internal bufio.Reader; it does not bound how much of the source is
// eventually buffered in it.buf (the whole window seen so far is kept, so
// that earlier offsets stay seekable for backtracking).
func FromReader(src io.Reader, capacity int) *Iterator {
	if capacity <= 0 {
		capacity = 4096
	}
	return &Iterator{
		src:       bufio.NewReaderSize(src, capacity),
		separator: DefaultSeparator,
	}
}

// SetSeparator configures the byte used for line counting. Must be called
// before any reading is done to have a consistent line count.
func (it *Iterator) SetSeparator(b byte) {
	it.separator = b
}

// Offset returns the current absolute offset from the start of input.
func (it *Iterator) Offset() int {
	return it.offset
}

// Len returns the number of bytes currently buffered, which is always an
// upper bound on how far the iterator has read from the source.
func (it *Iterator) Len() int {
	return len(it.buf)
}

// ensure makes sure at least n bytes starting at it.offset are present in
// it.buf, reading further from the underlying source if needed. It returns
// the number of bytes actually available (may be less than n at EOF).
func (it *Iterator) ensure(n int) int {
	need := it.offset + n
	for len(it.buf) < need && !it.eof {
		chunk := make([]byte, 4096)
		read, err := it.src.Read(chunk)
		if read > 0 {
			start := len(it.buf)
			it.buf = append(it.buf, chunk[:read]...)
			it.scanLines(start, it.buf[start:])
		}
		if err != nil {
			it.eof = true
		}
	}
	avail := len(it.buf) - it.offset
	if avail < 0 {
		avail = 0
	}
	if avail > n {
		avail = n
	}
	return avail
}

func (it *Iterator) scanLines(base int, chunk []byte) {
	for i, b := range chunk {
		if b == it.separator {
			it.lines = append(it.lines, base+i)
		}
	}
}

// Peek returns up to n bytes starting at the current offset without
// advancing. The returned slice aliases the iterator's buffer and must not
// be retained past the next mutating call.
func (it *Iterator) Peek(n int) []byte {
	avail := it.ensure(n)
	return it.buf[it.offset : it.offset+avail]
}

// Remaining returns every buffered byte from the current offset to the end
// of what has been read so far (not necessarily the whole source, for a
// streaming iterator; call Peek with a generous n first to force more to be
// read).
func (it *Iterator) Remaining() []byte {
	if it.offset >= len(it.buf) {
		return nil
	}
	return it.buf[it.offset:]
}

// AtEnd returns true if the iterator is at the end of the fully-drained
// source. For a streaming source this forces a read to find out.
func (it *Iterator) AtEnd() bool {
	it.ensure(1)
	return it.offset >= len(it.buf) && it.eof
}

// Advance moves the offset forward by n bytes, returning false if fewer
// than n bytes remained (the offset still advances to the end in that
// case).
func (it *Iterator) Advance(n int) bool {
	avail := it.ensure(n)
	it.offset += avail
	return avail == n
}

// ErrSeekOutOfWindow is returned by SetOffset when asked to seek outside
// the currently buffered window.
var ErrSeekOutOfWindow = fmt.Errorf("offset is outside the buffered window")

// SetOffset seeks the iterator to an absolute offset. Only seeking within
// [0, len(buffered)] is supported; seeking further forward than what has
// been read would silently skip un-scanned separator bytes and corrupt
// line tracking, so it is rejected.
func (it *Iterator) SetOffset(o int) error {
	if o < 0 || o > len(it.buf) {
		return fmt.Errorf("%w: %d not in [0,%d]", ErrSeekOutOfWindow, o, len(it.buf))
	}
	it.offset = o
	return nil
}

// LineOf returns the 1-based line number containing the given absolute
// offset.
func (it *Iterator) LineOf(offset int) int {
	line := 1
	for _, sepOffset := range it.lines {
		if sepOffset < offset {
			line++
		} else {
			break
		}
	}
	return line
}

// Line is a convenience for LineOf(it.Offset()).
func (it *Iterator) Line() int {
	return it.LineOf(it.offset)
}

// Window returns the entire buffer accumulated so far, for diagnostics
// (e.g. rendering the line around a failure offset). It is not bounded to
// "nearby" bytes; callers slice it themselves.
func (it *Iterator) Window() []byte {
	return it.buf
}

// LineBounds returns the [start,end) byte range of the line containing
// offset, where end excludes the separator itself.
func (it *Iterator) LineBounds(offset int) (start, end int) {
	start = 0
	end = len(it.buf)
	for _, sepOffset := range it.lines {
		if sepOffset < offset {
			start = sepOffset + 1
		}
		if sepOffset >= offset {
			end = sepOffset
			break
		}
	}
	return start, end
}

// bytesEqual is a tiny helper kept local so element.Word does not need to
// import bytes itself just for this one comparison.
func BytesEqual(a, b []byte) bool {
	return bytes.Equal(a, b)
}
