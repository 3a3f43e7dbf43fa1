package recognize_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/grouper/element"
	"github.com/dekarrin/grouper/grammar"
	"github.com/dekarrin/grouper/recognize"
)

func Test_ParseString_Word(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g := grammar.New("pouet")
	axiom, err := g.Word("pouet", []byte("pouet"))
	require.NoError(err)
	g.SetAxiom(axiom)
	require.NoError(g.Prepare())

	r := recognize.ParseString(g, []byte("pouet"))

	require.True(r.IsSuccess())
	assert.Equal(0, r.Root.Offset)
	assert.Equal(5, r.Root.Length)
	assert.Empty(r.Root.Children)
}

func Test_ParseString_Rule_Partial(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g := grammar.New("ab")
	a, err := g.Word("a", []byte("a"))
	require.NoError(err)
	b, err := g.Word("b", []byte("b"))
	require.NoError(err)
	axiom, err := g.Rule("ab", a, b)
	require.NoError(err)
	g.SetAxiom(axiom)
	require.NoError(g.Prepare())

	r := recognize.ParseString(g, []byte("abab"))

	require.True(r.IsPartial())
	assert.Equal(2, r.Root.Length)
	assert.Equal(2, r.RemainingBytes())
}

func Test_ParseString_NamedChildren(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := grammar.New("arith")
	number, err := g.Token("NUMBER", `\d+`)
	require.NoError(err)
	variable, err := g.Token("VARIABLE", `\w+`)
	require.NoError(err)
	operator, err := g.Token("OPERATOR", `[+\-*/]`)
	require.NoError(err)

	value, err := g.Group("Value", number, variable)
	require.NoError(err)

	operation, err := g.Rule("Operation",
		value.As("left"),
		operator.As("op"),
		value.As("right"),
	)
	require.NoError(err)

	g.SetAxiom(operation)
	require.NoError(g.Prepare())

	r := recognize.ParseString(g, []byte("1+10"))
	require.True(r.IsSuccess())

	left := r.Root.NamedChild("left")
	op := r.Root.NamedChild("op")
	right := r.Root.NamedChild("right")
	require.NotNil(left)
	require.NotNil(op)
	require.NotNil(right)

	assert.Equal("1", string(left.Text([]byte("1+10"))))
	assert.Equal("+", string(op.Text([]byte("1+10"))))
	assert.Equal("10", string(right.Text([]byte("1+10"))))
}

func Test_ParseString_SkipWhitespace(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := grammar.New("arith-skip")
	number, err := g.Token("NUMBER", `\d+`)
	require.NoError(err)
	operator, err := g.Token("OPERATOR", `[+\-*/]`)
	require.NoError(err)
	variable, err := g.Token("VARIABLE", `[A-Za-z_]\w*`)
	require.NoError(err)
	ws, err := g.Token("WS", `\s+`)
	require.NoError(err)

	value, err := g.Group("Value", number, variable)
	require.NoError(err)

	suffix, err := g.Rule("Suffix", operator, value)
	require.NoError(err)

	expression, err := g.Rule("Expression", value, suffix.ZeroOrMore())
	require.NoError(err)

	g.SetAxiom(expression)
	g.SetSkip(ws)
	require.NoError(g.Prepare())

	r := recognize.ParseString(g, []byte("10 + VAR"))
	require.True(r.IsSuccess())

	// Expression's children: [Value-ref(one), Suffix-ref(zeroOrMore)].
	require.Len(r.Root.Children, 2)
	suffixRef := r.Root.Children[1]
	assert.Equal("zeroOrMore", suffixRef.ReferenceCardinality)
	assert.Len(suffixRef.Children, 1)
}

func Test_Reference_Optional_AlwaysSucceeds(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := grammar.New("opt")
	word, err := g.Word("w", []byte("x"))
	require.NoError(err)
	axiom, err := g.Rule("axiom", word.Optional())
	require.NoError(err)
	g.SetAxiom(axiom)
	require.NoError(g.Prepare())

	r := recognize.ParseString(g, []byte("y"))
	require.True(r.IsSuccess() || r.IsPartial())
	assert.Equal(0, r.Root.Length)
}

func Test_Reference_NestedOptionalStar_DoesNotLoop(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := grammar.New("nested-star")
	a, err := g.Word("a", []byte("a"))
	require.NoError(err)
	axiom, err := g.Rule("axiom", a.Optional().ZeroOrMore())
	require.NoError(err)
	g.SetAxiom(axiom)
	require.NoError(g.Prepare())

	done := make(chan *recognize.Result, 1)
	go func() {
		done <- recognize.ParseString(g, []byte("aaa"))
	}()

	select {
	case r := <-done:
		assert.True(r.IsSuccess())
	case <-time.After(2 * time.Second):
		t.Fatal("(a?)* did not terminate")
	}
}

func Test_LispParens_ZeroOrMoreVsOneOrMore(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	buildGrammar := func(oneOrMore bool) *grammar.Grammar {
		g := grammar.New("parens")
		open, err := g.Word("open", []byte("("))
		require.NoError(err)
		closeWord, err := g.Word("close", []byte(")"))
		require.NoError(err)
		value, err := g.Word("value", []byte("v"))
		require.NoError(err)

		var valueRef *element.Reference
		if oneOrMore {
			valueRef = value.OneOrMore()
		} else {
			valueRef = value.ZeroOrMore()
		}
		axiom, err := g.Rule("list", open, valueRef, closeWord)
		require.NoError(err)
		g.SetAxiom(axiom)
		require.NoError(g.Prepare())
		return g
	}

	zeroOrMoreGrammar := buildGrammar(false)
	r := recognize.ParseString(zeroOrMoreGrammar, []byte("()"))
	assert.True(r.IsSuccess(), "0..*() should be accepted")

	oneOrMoreGrammar := buildGrammar(true)
	r = recognize.ParseString(oneOrMoreGrammar, []byte("()"))
	assert.False(r.IsSuccess(), "1..*() should be rejected")
}

func Test_NotEmpty_RejectsZeroLengthMatch(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := grammar.New("notempty")
	ws, err := g.Token("WS", `\s*`)
	require.NoError(err)
	axiom, err := g.Rule("axiom", ws.NotEmpty())
	require.NoError(err)
	g.SetAxiom(axiom)
	require.NoError(g.Prepare())

	r := recognize.ParseString(g, []byte(""))
	assert.True(r.IsFailure())
}

func Test_Determinism_SameInputSameTree(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := grammar.New("arith")
	number, err := g.Token("NUMBER", `\d+`)
	require.NoError(err)
	operator, err := g.Token("OPERATOR", `[+\-*/]`)
	require.NoError(err)
	operation, err := g.Rule("Operation", number, operator, number)
	require.NoError(err)
	g.SetAxiom(operation)
	require.NoError(g.Prepare())

	r1 := recognize.ParseString(g, []byte("1+2"))
	r2 := recognize.ParseString(g, []byte("1+2"))

	require.True(r1.IsSuccess())
	require.True(r2.IsSuccess())
	assert.Equal(r1.Root.String(), r2.Root.String())
}
