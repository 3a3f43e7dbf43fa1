/*
Groupi starts an interactive grouper session.

It builds a grammar (one of the built-in demo grammars, or one described
in a TOML file) and repeatedly reads a line of input from the prompt,
parses it against the grammar's axiom, and prints the resulting match
tree alongside a per-symbol stats report.

Usage:

	groupi [flags]

The flags are:

	-v, --version
		Give the current version of grouper and then exit.

	-g, --grammar NAME
		Use the named built-in demo grammar ("arith" or "indent"), or,
		if NAME names an existing file, load a TOML-described grammar
		from it. Defaults to "arith".

	-f, --format FORMAT
		How to render a successful match tree: "tree" (indented
		TreeWriter dump, the default), "json", or "xml".

	-d, --direct
		Force reading directly from stdin instead of going through GNU
		readline, even if launched in a tty.

Type a blank line or send EOF (Ctrl-D) to exit.
*/
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/dekarrin/grouper/grammar"
	"github.com/dekarrin/grouper/internal/input"
	"github.com/dekarrin/grouper/internal/version"
	"github.com/dekarrin/grouper/output"
	"github.com/dekarrin/grouper/process"
	"github.com/dekarrin/grouper/recognize"
)

const (
	ExitSuccess = iota
	ExitGrammarError
	ExitInitError
)

var (
	returnCode   int
	flagVersion  = pflag.BoolP("version", "v", false, "Gives the version info")
	grammarName  = pflag.StringP("grammar", "g", "arith", "Built-in demo grammar name (arith, indent) or path to a TOML grammar file")
	outputFormat = pflag.StringP("format", "f", "tree", "Match tree output format: tree, json, or xml")
	forceDirect  = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline where possible")
)

// lineReader is the minimal surface groupi needs from either of
// internal/input's two reader implementations, mirroring
// internal/command.Reader's shape in the teacher's interactive engine.
type lineReader interface {
	ReadCommand() (string, error)
	Close() error
	AllowBlank(bool)
}

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	switch *outputFormat {
	case "tree", "json", "xml":
	default:
		fmt.Fprintf(os.Stderr, "ERROR: unknown format %q (want tree, json, or xml)\n", *outputFormat)
		returnCode = ExitInitError
		return
	}

	var g *grammar.Grammar
	var err error
	if _, isDemo := demoGrammars[*grammarName]; isDemo {
		g, err = buildDemoGrammar(*grammarName)
	} else {
		g, err = loadGrammarFile(*grammarName)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitGrammarError
		return
	}

	useReadline := !*forceDirect

	var reader lineReader
	if useReadline {
		reader, err = input.NewInteractiveReader()
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: initializing interactive input reader: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}
	} else {
		reader = input.NewDirectReader(os.Stdin)
	}
	defer reader.Close()
	reader.AllowBlank(true)

	fmt.Printf("grouper interactive session, grammar %q, format %q\n", *grammarName, *outputFormat)
	fmt.Println(`type input to parse against the grammar's axiom; blank line or Ctrl-D to quit`)

	for {
		line, readErr := reader.ReadCommand()
		if readErr != nil && readErr != io.EOF {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", readErr.Error())
			returnCode = ExitInitError
			return
		}
		if line == "" {
			return
		}

		r := recognize.ParseString(g, []byte(line))
		fmt.Printf("--- %s ---\n", r.Status)

		if r.Root != nil {
			switch *outputFormat {
			case "json":
				data, _ := output.MarshalJSON(r.Root)
				fmt.Println(string(data))
			case "xml":
				data, _ := output.MarshalXML(r.Root)
				fmt.Println(string(data))
			default:
				process.NewTreeWriter(os.Stdout).Process(r.Root)
			}
		}
		if !r.IsSuccess() {
			fmt.Println(r.DescribeError())
		}
		fmt.Println(r.Context.Stats.Report())

		if readErr == io.EOF {
			return
		}
	}
}
