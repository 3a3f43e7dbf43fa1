package main

import (
	"fmt"

	"github.com/dekarrin/grouper/element"
	"github.com/dekarrin/grouper/grammar"
)

// demoGrammars maps the built-in -g/--grammar names groupi accepts
// without a file argument to their constructors, the same two worked
// examples spec.md §8 walks through by hand.
var demoGrammars = map[string]func() (*grammar.Grammar, error){
	"arith":  buildArithGrammar,
	"indent": buildIndentGrammar,
}

// buildArithGrammar is spec.md §8 scenario 4: NUMBER/VARIABLE/OPERATOR
// tokens, a whitespace skip, and a left-recursion-free Expression that
// accepts a trailing run of (OPERATOR Value) suffixes.
func buildArithGrammar() (*grammar.Grammar, error) {
	g := grammar.New("arith")

	number, err := g.Token("NUMBER", `\d+`)
	if err != nil {
		return nil, err
	}
	variable, err := g.Token("VARIABLE", `[A-Za-z_]\w*`)
	if err != nil {
		return nil, err
	}
	operator, err := g.Token("OPERATOR", `[+\-*/]`)
	if err != nil {
		return nil, err
	}
	ws, err := g.Token("WS", `\s+`)
	if err != nil {
		return nil, err
	}

	value, err := g.Group("Value", number, variable)
	if err != nil {
		return nil, err
	}

	suffix, err := g.Rule("Suffix", operator.As("op"), value.As("value"))
	if err != nil {
		return nil, err
	}

	expression, err := g.Rule("Expression", value.As("first"), suffix.ZeroOrMore().As("rest"))
	if err != nil {
		return nil, err
	}

	g.SetAxiom(expression)
	g.SetSkip(ws)
	if err := g.Prepare(); err != nil {
		return nil, err
	}
	return g, nil
}

// buildIndentGrammar is spec.md §8 scenario 5: a Condition gates a Line
// on the current indent counter and Procedures adjust that counter
// around a recursive Block, demonstrating context variables driving
// indentation-sensitive parsing exactly as SPEC_FULL.md's context-
// variable section describes.
func buildIndentGrammar() (*grammar.Grammar, error) {
	g := grammar.New("indent")

	// The leading \t* only needs to advance past the tabs CheckIndent
	// already validated without consuming; wrapping the identifier half
	// in its own capturing group keeps those tabs out of the match's
	// Data[0] capture, so a consumer reading Captures()[0] gets the
	// clean name rather than the tabs-plus-name whole match.
	name, err := g.Token("NAME", `\t*([A-Za-z_][A-Za-z0-9_]*)`)
	if err != nil {
		return nil, err
	}
	value, err := g.Token("VALUE", `[^\n]+`)
	if err != nil {
		return nil, err
	}
	colon, err := g.Word("COLON", []byte(":"))
	if err != nil {
		return nil, err
	}
	equals, err := g.Word("EQUALS", []byte("="))
	if err != nil {
		return nil, err
	}
	eol, err := g.Word("EOL", []byte("\n"))
	if err != nil {
		return nil, err
	}

	checkIndent, err := g.Condition("CheckIndent", func(el *element.Element, ctx element.Context) bool {
		want := 0
		if v, ok := ctx.Get("indent"); ok {
			want, _ = v.(int)
		}
		offset := ctx.CurrentOffset()
		tabs := 0
		for {
			b, ok := ctx.CharAt(offset + tabs)
			if !ok || b != '\t' {
				break
			}
			tabs++
		}
		return tabs == want
	})
	if err != nil {
		return nil, err
	}

	doIndent, err := g.Procedure("Indent", func(el *element.Element, ctx element.Context) {
		cur := 0
		if v, ok := ctx.Get("indent"); ok {
			cur, _ = v.(int)
		}
		ctx.Set("indent", cur+1)
	})
	if err != nil {
		return nil, err
	}

	doDedent, err := g.Procedure("Dedent", func(el *element.Element, ctx element.Context) {
		cur := 0
		if v, ok := ctx.Get("indent"); ok {
			cur, _ = v.(int)
		}
		ctx.Set("indent", cur-1)
	})
	if err != nil {
		return nil, err
	}

	line, err := g.Rule("Line", checkIndent, name.As("name"), equals, value.As("value"), eol)
	if err != nil {
		return nil, err
	}

	// Block refers to itself through the BlockOrLine alternation, so it
	// is declared empty first and filled in with Extend once
	// BlockOrLine exists, the same two-step dance a TOML-described
	// grammar file (see gfile.go) must use for any self-referential
	// rule.
	block, err := g.Rule("Block")
	if err != nil {
		return nil, err
	}
	blockOrLine, err := g.Group("BlockOrLine", block, line)
	if err != nil {
		return nil, err
	}
	if err := g.Extend(block,
		name.As("name"), colon, eol, doIndent,
		blockOrLine.OneOrMore().As("body"),
		doDedent,
	); err != nil {
		return nil, err
	}

	g.SetAxiom(block)
	if err := g.Prepare(); err != nil {
		return nil, err
	}
	return g, nil
}

func demoGrammarNames() []string {
	names := make([]string, 0, len(demoGrammars))
	for n := range demoGrammars {
		names = append(names, n)
	}
	return names
}

func buildDemoGrammar(name string) (*grammar.Grammar, error) {
	ctor, ok := demoGrammars[name]
	if !ok {
		return nil, fmt.Errorf("no built-in demo grammar named %q (have: %v)", name, demoGrammarNames())
	}
	return ctor()
}
