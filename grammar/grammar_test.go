package grammar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/grouper/element"
	"github.com/dekarrin/grouper/grammar"
)

func Test_Prepare_RequiresAxiom(t *testing.T) {
	require := require.New(t)

	g := grammar.New("empty")
	err := g.Prepare()
	require.Error(err)
	require.False(g.Prepared())
}

func Test_Prepare_AssignsStableEvenOddIDs(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := grammar.New("ids")
	a, err := g.Word("a", []byte("a"))
	require.NoError(err)
	b, err := g.Word("b", []byte("b"))
	require.NoError(err)
	axiom, err := g.Rule("axiom", a, b)
	require.NoError(err)
	g.SetAxiom(axiom)

	require.NoError(g.Prepare())
	require.True(g.Prepared())

	assert.Equal(0, axiom.ID%2, "element ids must be even")
	assert.Equal(0, a.ID%2)
	assert.Equal(0, b.ID%2)

	got, ok := g.Element(axiom.ID)
	require.True(ok)
	assert.Same(axiom, got)
}

func Test_Prepare_UnreachableElementGetsUnsetID(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := grammar.New("partial")
	reachable, err := g.Word("reachable", []byte("r"))
	require.NoError(err)
	unreachable, err := g.Word("unreachable", []byte("u"))
	require.NoError(err)
	g.SetAxiom(reachable)

	require.NoError(g.Prepare())
	assert.Equal(element.UnsetID, unreachable.ID)
}

func Test_Prepare_DetectsLeftRecursion(t *testing.T) {
	require := require.New(t)

	g := grammar.New("leftrec")
	rule, err := g.Rule("expr")
	require.NoError(err)
	require.NoError(g.Extend(rule, rule.As("self")))
	g.SetAxiom(rule)

	err = g.Prepare()
	require.Error(err)
	require.False(g.Prepared())
}

func Test_Prepare_NoFalsePositiveOnRightRecursion(t *testing.T) {
	require := require.New(t)

	g := grammar.New("rightrec")
	a, err := g.Word("a", []byte("a"))
	require.NoError(err)
	rule, err := g.Rule("expr", a)
	require.NoError(err)
	require.NoError(g.Extend(rule, rule.Optional()))
	g.SetAxiom(rule)

	require.NoError(g.Prepare())
}

func Test_Prepare_NilReferenceTarget_IsError(t *testing.T) {
	require := require.New(t)

	g := grammar.New("badref")
	rule, err := g.ARule()
	require.NoError(err)
	rule.Children = append(rule.Children, &element.Reference{Target: nil})
	g.SetAxiom(rule)

	require.Error(g.Prepare())
}

func Test_StrictNaming_RejectsDuplicateSymbol(t *testing.T) {
	require := require.New(t)

	g := grammar.New("strict")
	g.StrictNaming = true

	_, err := g.Word("dup", []byte("a"))
	require.NoError(err)
	_, err = g.Word("dup", []byte("b"))
	require.Error(err)
}

func Test_LaxNaming_AllowsDuplicateSymbol_LastWins(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := grammar.New("lax")
	_, err := g.Word("dup", []byte("a"))
	require.NoError(err)
	second, err := g.Word("dup", []byte("b"))
	require.NoError(err)

	got, ok := g.Symbol("dup")
	require.True(ok)
	assert.Same(second, got)
}

func Test_AWord_AToken_DoNotRegisterSymbols(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := grammar.New("anon")
	_ = g.AWord([]byte("x"))
	_, err := g.AToken(`\d+`)
	require.NoError(err)

	assert.Empty(g.SymbolNames())
}

func Test_SymbolNames_SortedAndComplete(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := grammar.New("syms")
	_, err := g.Word("zeta", []byte("z"))
	require.NoError(err)
	_, err = g.Word("alpha", []byte("a"))
	require.NoError(err)

	assert.Equal([]string{"alpha", "zeta"}, g.SymbolNames())
}

func Test_Validate_IsAliasForPrepare(t *testing.T) {
	require := require.New(t)

	g := grammar.New("v")
	axiom, err := g.Word("a", []byte("a"))
	require.NoError(err)
	g.SetAxiom(axiom)

	require.NoError(g.Validate())
	require.True(g.Prepared())
}

func Test_SetAxiom_InvalidatesPreparedState(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g := grammar.New("reprep")
	a, err := g.Word("a", []byte("a"))
	require.NoError(err)
	g.SetAxiom(a)
	require.NoError(g.Prepare())
	require.True(g.Prepared())

	b, err := g.Word("b", []byte("b"))
	require.NoError(err)
	g.SetAxiom(b)
	assert.False(g.Prepared())
}
