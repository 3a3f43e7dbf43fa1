package element_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/grouper/element"
)

func Test_NewWord_CopiesText(t *testing.T) {
	assert := assert.New(t)

	text := []byte("hello")
	w := element.NewWord("greeting", text)
	text[0] = 'X'

	assert.Equal("hello", string(w.WordText), "NewWord must copy its input, not alias it")
	assert.Equal(element.UnsetID, w.ID)
	assert.Equal(element.KindWord, w.Kind)
}

func Test_NewToken_CompilesAndAnchorsPattern(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	tok, err := element.NewToken("NUMBER", `\d+`, false)
	require.NoError(err)
	require.NotNil(tok.TokenRegex)

	assert.True(tok.TokenRegex.MatchString("123abc"))
	loc := tok.TokenRegex.FindStringIndex("  123")
	assert.Nil(loc, "anchored pattern must not match mid-string")
}

func Test_NewToken_InvalidPattern_ReturnsError(t *testing.T) {
	require := require.New(t)

	_, err := element.NewToken("bad", `(unterminated`, false)
	require.Error(err)
}

func Test_NewToken_AlreadyAnchoredPattern_NotDoubleWrapped(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	tok, err := element.NewToken("anchored", `^foo`, false)
	require.NoError(err)
	assert.True(tok.TokenRegex.MatchString("foobar"))
}

func Test_FoldString_CaseInsensitiveCompare(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(element.FoldString("HELLO"), element.FoldString("hello"))
}

func Test_Element_Add_WrapsElementsAsOneReferences(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	a := element.NewWord("a", []byte("a"))
	b := element.NewWord("b", []byte("b"))

	grp, err := element.NewGroup("g", a, b)
	require.NoError(err)
	require.Len(grp.Children, 2)
	assert.Equal(element.CardinalityOne, grp.Children[0].Cardinality)
	assert.Same(a, grp.Children[0].Target)
}

func Test_Element_Add_RejectsChildrenOnLeaf(t *testing.T) {
	require := require.New(t)

	w := element.NewWord("w", []byte("w"))
	err := w.Add(element.NewWord("x", []byte("x")))
	require.Error(err)
}

func Test_Element_Add_RejectsNilAndWrongType(t *testing.T) {
	require := require.New(t)

	g, err := element.NewGroup("g")
	require.NoError(err)

	require.Error(g.Add((*element.Element)(nil)))
	require.Error(g.Add("not an element"))
}

func Test_Element_ClearAndSet(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	a := element.NewWord("a", []byte("a"))
	b := element.NewWord("b", []byte("b"))
	c := element.NewWord("c", []byte("c"))

	rule, err := element.NewRule("r", a, b)
	require.NoError(err)
	require.Len(rule.Children, 2)

	rule.Clear()
	assert.Empty(rule.Children)

	require.NoError(rule.Set(c))
	require.Len(rule.Children, 1)
	assert.Same(c, rule.Children[0].Target)
}

func Test_Element_IsCompositeIsLeaf(t *testing.T) {
	assert := assert.New(t)

	w := element.NewWord("w", []byte("w"))
	assert.True(w.IsLeaf())
	assert.False(w.IsComposite())

	g, _ := element.NewGroup("g")
	assert.True(g.IsComposite())
	assert.False(g.IsLeaf())
}

func Test_Element_CardinalityBuilders(t *testing.T) {
	assert := assert.New(t)

	w := element.NewWord("w", []byte("w"))

	assert.Equal(element.CardinalityOne, w.One().Cardinality)
	assert.Equal(element.CardinalityOptional, w.Optional().Cardinality)
	assert.Equal(element.CardinalityZeroOrMore, w.ZeroOrMore().Cardinality)
	assert.Equal(element.CardinalityOneOrMore, w.OneOrMore().Cardinality)
	assert.Equal(element.CardinalityNotEmpty, w.NotEmpty().Cardinality)

	named := w.As("slot")
	assert.Equal("slot", named.Name)
	assert.Equal(element.CardinalityOne, named.Cardinality)
}

func Test_Reference_MutatingCardinalityBuildersReturnSameReference(t *testing.T) {
	assert := assert.New(t)

	w := element.NewWord("w", []byte("w"))
	ref := element.One(w)

	same := ref.ZeroOrMore()
	assert.Same(ref, same)
	assert.Equal(element.CardinalityZeroOrMore, ref.Cardinality)
}

func Test_Reference_NoMemo(t *testing.T) {
	assert := assert.New(t)

	w := element.NewWord("w", []byte("w"))
	ref := element.One(w).NoMemo()
	assert.True(ref.DisableMemoize)
}

func Test_Cardinality_String(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("one", element.CardinalityOne.String())
	assert.Equal("optional", element.CardinalityOptional.String())
	assert.Equal("zeroOrMore", element.CardinalityZeroOrMore.String())
	assert.Equal("oneOrMore", element.CardinalityOneOrMore.String())
	assert.Equal("notEmpty", element.CardinalityNotEmpty.String())
}
