package match_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/grouper/match"
)

func Test_End_IsOffsetPlusLength(t *testing.T) {
	assert := assert.New(t)

	m := &match.Match{Offset: 4, Length: 6}
	assert.Equal(10, m.End())
}

func Test_Captures_ReturnsTokenGroupsOrNil(t *testing.T) {
	assert := assert.New(t)

	withGroups := &match.Match{Kind: match.KindToken, Data: []string{"a", "b"}}
	assert.Equal([]string{"a", "b"}, withGroups.Captures())

	withoutGroups := &match.Match{Kind: match.KindWord}
	assert.Nil(withoutGroups.Captures())
}

func Test_Text_SlicesInputByOffsetAndLength(t *testing.T) {
	assert := assert.New(t)

	input := []byte("hello world")
	m := &match.Match{Offset: 6, Length: 5}
	assert.Equal("world", string(m.Text(input)))
}

func Test_Text_ClampsToInputBounds(t *testing.T) {
	assert := assert.New(t)

	input := []byte("hi")
	m := &match.Match{Offset: 0, Length: 10}
	assert.Equal("hi", string(m.Text(input)))

	past := &match.Match{Offset: 5, Length: 1}
	assert.Nil(past.Text(input))
}

func Test_Text_NilMatch_ReturnsNil(t *testing.T) {
	assert := assert.New(t)
	var m *match.Match
	assert.Nil(m.Text([]byte("x")))
}

func Test_Copy_DeepCopiesChildren(t *testing.T) {
	assert := assert.New(t)

	child := &match.Match{ElementName: "child", Offset: 1, Length: 1}
	parent := &match.Match{ElementName: "parent", Children: []*match.Match{child}}

	cp := parent.Copy()
	assert.NotSame(parent, cp)
	assert.NotSame(child, cp.Children[0])
	assert.Equal(parent.Children[0].ElementName, cp.Children[0].ElementName)

	cp.Children[0].ElementName = "mutated"
	assert.Equal("child", parent.Children[0].ElementName, "Copy must not alias child matches")
}

func Test_Copy_NilMatch_ReturnsNil(t *testing.T) {
	assert := assert.New(t)
	var m *match.Match
	assert.Nil(m.Copy())
}

func Test_Walk_VisitsPreOrder(t *testing.T) {
	assert := assert.New(t)

	leaf1 := &match.Match{ElementName: "leaf1"}
	leaf2 := &match.Match{ElementName: "leaf2"}
	root := &match.Match{ElementName: "root", Children: []*match.Match{leaf1, leaf2}}

	var order []string
	root.Walk(func(m *match.Match) { order = append(order, m.ElementName) })

	assert.Equal([]string{"root", "leaf1", "leaf2"}, order)
}

func Test_NamedChild_ReturnsUnderlyingTargetForSingleMatchReference(t *testing.T) {
	assert := assert.New(t)

	target := &match.Match{ElementName: "NUMBER", Offset: 0, Length: 1}
	ref := &match.Match{
		Kind:          match.KindReference,
		ReferenceName: "left",
		Children:      []*match.Match{target},
	}
	root := &match.Match{Children: []*match.Match{ref}}

	got := root.NamedChild("left")
	assert.Same(target, got)
	assert.Nil(root.NamedChild("missing"))
}

func Test_NamedChild_MultipleMatches_ReturnsNil(t *testing.T) {
	assert := assert.New(t)

	ref := &match.Match{
		Kind:          match.KindReference,
		ReferenceName: "items",
		Children:      []*match.Match{{}, {}},
	}
	root := &match.Match{Children: []*match.Match{ref}}

	assert.Nil(root.NamedChild("items"), "NamedChild must not pick a match out of a multi-match reference")
}

func Test_NamedChildren_ReturnsAllTargets(t *testing.T) {
	assert := assert.New(t)

	a := &match.Match{ElementName: "a"}
	b := &match.Match{ElementName: "b"}
	ref := &match.Match{Kind: match.KindReference, ReferenceName: "items", Children: []*match.Match{a, b}}
	root := &match.Match{Children: []*match.Match{ref}}

	got := root.NamedChildren("items")
	assert.Equal([]*match.Match{a, b}, got)
	assert.Nil(root.NamedChildren("missing"))
}

func Test_String_ProducesIndentedTreeWithOffsets(t *testing.T) {
	assert := assert.New(t)

	leaf := &match.Match{Kind: match.KindWord, ElementName: "w", Offset: 0, Length: 3}
	ref := &match.Match{Kind: match.KindReference, ReferenceName: "only", ReferenceCardinality: "one", Offset: 0, Length: 3, Children: []*match.Match{leaf}}
	root := &match.Match{Kind: match.KindRule, ElementName: "root", Offset: 0, Length: 3, Children: []*match.Match{ref}}

	s := root.String()
	assert.True(strings.Contains(s, "root"))
	assert.True(strings.Contains(s, "REF only:one"))
	assert.True(strings.Contains(s, `"w"`))
}

func Test_Kind_String(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("Word", match.KindWord.String())
	assert.Equal("Reference", match.KindReference.String())
}
