package iter_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/grouper/iter"
)

func Test_FromBytes_PeekDoesNotAdvance(t *testing.T) {
	assert := assert.New(t)

	it := iter.FromBytes([]byte("hello"))
	assert.Equal("hel", string(it.Peek(3)))
	assert.Equal(0, it.Offset())
	assert.Equal("hel", string(it.Peek(3)), "Peek must be repeatable")
}

func Test_Advance_MovesOffsetAndReportsShortfall(t *testing.T) {
	assert := assert.New(t)

	it := iter.FromBytes([]byte("hi"))
	assert.True(it.Advance(2))
	assert.Equal(2, it.Offset())

	it2 := iter.FromBytes([]byte("hi"))
	assert.False(it2.Advance(5), "Advance must report false when fewer bytes remained")
	assert.Equal(2, it2.Offset(), "offset still moves to the end on a short advance")
}

func Test_AtEnd(t *testing.T) {
	assert := assert.New(t)

	it := iter.FromBytes([]byte("x"))
	assert.False(it.AtEnd())
	it.Advance(1)
	assert.True(it.AtEnd())
}

func Test_SetOffset_RejectsOutOfWindow(t *testing.T) {
	require := require.New(t)

	it := iter.FromBytes([]byte("abc"))
	require.NoError(it.SetOffset(2))
	require.ErrorIs(it.SetOffset(-1), iter.ErrSeekOutOfWindow)
	require.ErrorIs(it.SetOffset(100), iter.ErrSeekOutOfWindow)
}

func Test_SetOffset_AllowsRewindWithinBufferedWindow(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	it := iter.FromBytes([]byte("abcdef"))
	it.Advance(4)
	require.NoError(it.SetOffset(1))
	assert.Equal(1, it.Offset())
	assert.Equal("bcdef", string(it.Remaining()))
}

func Test_LineOf_TracksNewlines(t *testing.T) {
	assert := assert.New(t)

	it := iter.FromBytes([]byte("one\ntwo\nthree"))
	assert.Equal(1, it.LineOf(0))
	assert.Equal(1, it.LineOf(3))
	assert.Equal(2, it.LineOf(4))
	assert.Equal(3, it.LineOf(9))
}

func Test_LineBounds_ExcludesSeparator(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	it := iter.FromBytes([]byte("one\ntwo\nthree"))
	start, end := it.LineBounds(5)
	require.True(start <= 5 && 5 <= end)
	assert.Equal("two", string(it.Window()[start:end]))
}

func Test_FromReader_StreamsAndBuffersForRewind(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	src := strings.NewReader("streamed content here")
	it := iter.FromReader(src, 4)

	assert.Equal("stre", string(it.Peek(4)))
	it.Advance(4)
	require.True(it.Advance(10))
	require.NoError(it.SetOffset(0))
	assert.Equal("streamed co", string(it.Peek(11)))
}

func Test_Remaining_EmptyAtEnd(t *testing.T) {
	assert := assert.New(t)

	it := iter.FromBytes([]byte("ab"))
	it.Advance(2)
	assert.Nil(it.Remaining())
}

func Test_BytesEqual(t *testing.T) {
	assert := assert.New(t)
	assert.True(iter.BytesEqual([]byte("a"), []byte("a")))
	assert.False(iter.BytesEqual([]byte("a"), []byte("b")))
}
