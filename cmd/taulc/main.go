/*
Taulc is an interactive console for trying a grammar against hand-typed
source text.

Usage:

	taulc [flags]

Once started, taulc loads the given spec binary, builds the parse
pipeline for it, and prints the resulting parse tree for every line of
source text entered until end of input. Input editing and history are
provided by GNU Readline unless --direct is given or stdin is not a TTY.

The flags are:

	-v, --version
		Give the current version and exit.

	-g, --grammar FILE
		Spec binary file to load. Required.

	-d, --direct
		Force reading directly from stdin instead of readline.
*/
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dekarrin/rosed"
	"github.com/dekarrin/taul/internal/decode"
	"github.com/dekarrin/taul/internal/linereader"
	"github.com/dekarrin/taul/internal/specbin"
	"github.com/dekarrin/taul/internal/version"
	"github.com/dekarrin/taul/lex"
	"github.com/dekarrin/taul/loader"
	"github.com/dekarrin/taul/parse"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version and exit.")
	flagGrammar = pflag.StringP("grammar", "g", "", "Spec binary file to load.")
	flagDirect  = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of readline.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("taulc %s\n", version.Current)
		return
	}

	if *flagGrammar == "" {
		fmt.Fprintf(os.Stderr, "ERROR: --grammar is required\nDo -h for help.\n")
		os.Exit(1)
	}

	raw, err := os.ReadFile(*flagGrammar)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: could not read spec binary: %s\n", err.Error())
		os.Exit(1)
	}

	var spec specbin.Spec
	_ = spec.UnmarshalBinary(raw)

	const consoleOutputWidth = 80

	result := loader.Load(spec)
	if result.Counter.HasErrors() {
		for _, d := range result.Counter.Diagnostics() {
			msg := rosed.Edit(fmt.Sprintf("ERROR: %s", d)).Wrap(consoleOutputWidth).String()
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(2)
	}

	g := result.Grammar
	fmt.Printf("Loaded grammar with start rule %q (%d rules, LL(1): %t)\n", g.StartSymbol(), len(g.SortedRuleNames()), g.IsLL1())

	p, err := parse.New(g)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: could not build parser: %s\n", err.Error())
		os.Exit(2)
	}

	useReadline := !*flagDirect && isatty.IsTerminal(os.Stdin.Fd())

	var in linereader.Reader
	if useReadline {
		ir, err := linereader.NewInteractiveReader("taul> ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: could not initialize readline: %s\n", err.Error())
			os.Exit(2)
		}
		in = ir
	} else {
		in = linereader.NewDirectReader(os.Stdin)
	}
	defer in.Close()

	for {
		line, err := in.ReadLine()
		if err != nil {
			if err == io.EOF {
				return
			}
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			os.Exit(1)
		}

		dec, err := decode.New([]byte(line), decode.AutoBOM)
		if err != nil {
			fmt.Printf("decode error: %s\n", err.Error())
			continue
		}

		tr, err := p.ParseStart(lex.New(g, dec))
		if err != nil {
			fmt.Println(rosed.Edit(fmt.Sprintf("parse error: %s", err.Error())).Wrap(consoleOutputWidth).String())
			continue
		}

		fmt.Println(tr.String())
	}
}
