package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/dekarrin/grouper/grammar"
)

// grammarFile is the on-disk TOML shape accepted by -g/--grammar when
// its argument names a file rather than one of the built-in demo
// grammars (see demogrammars.go). Conditions and Procedures have no
// file-format representation (a host callback cannot be named in a
// config file), so a file-described grammar is necessarily restricted
// to Word/Token/Group/Rule; reach for the Go API directly if a grammar
// needs indentation-style context variables.
type grammarFile struct {
	Axiom string `toml:"axiom"`
	Skip  string `toml:"skip"`

	Token []tokenSpec     `toml:"token"`
	Word  []wordSpec      `toml:"word"`
	Group []compositeSpec `toml:"group"`
	Rule  []compositeSpec `toml:"rule"`
}

type tokenSpec struct {
	Name    string `toml:"name"`
	Pattern string `toml:"pattern"`
	Fold    bool   `toml:"fold"`
}

type wordSpec struct {
	Name string `toml:"name"`
	Text string `toml:"text"`
}

type compositeSpec struct {
	Name     string     `toml:"name"`
	Children []childRef `toml:"children"`
}

type childRef struct {
	Ref  string `toml:"ref"`
	As   string `toml:"as"`
	Card string `toml:"card"`
}

// loadGrammarFile reads a TOML-described grammar from path, mirroring
// debugserver.LoadConfig's read-then-convert shape.
func loadGrammarFile(path string) (*grammar.Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read grammar file: %w", err)
	}

	var gf grammarFile
	if err := toml.Unmarshal(data, &gf); err != nil {
		return nil, fmt.Errorf("parse grammar file: %w", err)
	}

	return gf.build(path)
}

func (gf grammarFile) build(name string) (*grammar.Grammar, error) {
	g := grammar.New(name)

	for _, t := range gf.Token {
		var err error
		if t.Fold {
			_, err = g.FoldToken(t.Name, t.Pattern)
		} else {
			_, err = g.Token(t.Name, t.Pattern)
		}
		if err != nil {
			return nil, fmt.Errorf("token %q: %w", t.Name, err)
		}
	}
	for _, w := range gf.Word {
		if _, err := g.Word(w.Name, []byte(w.Text)); err != nil {
			return nil, fmt.Errorf("word %q: %w", w.Name, err)
		}
	}

	// Group/Rule elements are registered empty first so that a rule
	// may refer to itself, or to a rule declared later in the file,
	// regardless of order; Extend below fills in children once every
	// symbol in the file exists (see grammar.Grammar.Extend's doc
	// comment on closing a cycle after construction).
	for _, comp := range gf.Group {
		if _, err := g.Group(comp.Name); err != nil {
			return nil, fmt.Errorf("group %q: %w", comp.Name, err)
		}
	}
	for _, comp := range gf.Rule {
		if _, err := g.Rule(comp.Name); err != nil {
			return nil, fmt.Errorf("rule %q: %w", comp.Name, err)
		}
	}
	for _, comp := range gf.Group {
		if err := gf.extend(g, comp); err != nil {
			return nil, err
		}
	}
	for _, comp := range gf.Rule {
		if err := gf.extend(g, comp); err != nil {
			return nil, err
		}
	}

	if gf.Axiom != "" {
		axiom, ok := g.Symbol(gf.Axiom)
		if !ok {
			return nil, fmt.Errorf("axiom %q: no such symbol", gf.Axiom)
		}
		g.SetAxiom(axiom)
	}
	if gf.Skip != "" {
		skip, ok := g.Symbol(gf.Skip)
		if !ok {
			return nil, fmt.Errorf("skip %q: no such symbol", gf.Skip)
		}
		g.SetSkip(skip)
	}

	if err := g.Prepare(); err != nil {
		return nil, err
	}
	return g, nil
}

func (gf grammarFile) extend(g *grammar.Grammar, comp compositeSpec) error {
	el, ok := g.Symbol(comp.Name)
	if !ok {
		return fmt.Errorf("%q: no such symbol", comp.Name)
	}

	refs := make([]any, 0, len(comp.Children))
	for _, c := range comp.Children {
		target, ok := g.Symbol(c.Ref)
		if !ok {
			return fmt.Errorf("%s: child %q: no such symbol", comp.Name, c.Ref)
		}
		ref := target.One()
		switch c.Card {
		case "", "one":
			// default cardinality, nothing to change.
		case "optional":
			ref.Optional()
		case "zeroOrMore":
			ref.ZeroOrMore()
		case "oneOrMore":
			ref.OneOrMore()
		case "notEmpty":
			ref.NotEmpty()
		default:
			return fmt.Errorf("%s: child %q: unknown cardinality %q", comp.Name, c.Ref, c.Card)
		}
		if c.As != "" {
			ref.As(c.As)
		}
		refs = append(refs, ref)
	}

	return g.Extend(el, refs...)
}
