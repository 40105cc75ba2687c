// Package parse drives a lexer's token stream through a validated
// Grammar's PPRs and records the result as a tree.Tree, using the same
// engine.Engine that the lexer uses to match LPRs against glyphs.
package parse

import (
	"fmt"

	"github.com/dekarrin/taul/engine"
	"github.com/dekarrin/taul/grammar"
	"github.com/dekarrin/taul/internal/taulerr"
	"github.com/dekarrin/taul/lex"
	"github.com/dekarrin/taul/symbol"
	"github.com/dekarrin/taul/tree"
)

// Parser matches a token stream against one validated Grammar's PPRs.
type Parser struct {
	g     *grammar.Grammar
	table *grammar.ParseTable
	eng   *engine.Engine[symbol.Token]
}

// New returns a Parser over g. g must already have passed Validate and
// IsLL1; New returns an error if g's parse table cannot be built (g not
// validated, or two alternatives of a PPR claiming the same lookahead).
func New(g *grammar.Grammar) (*Parser, error) {
	table, err := g.LLParseTable()
	if err != nil {
		return nil, taulerr.New("build parse table", err)
	}
	return &Parser{
		g:     g,
		table: table,
		eng:   engine.New[symbol.Token](g, table, g.TokenDomain()),
	}, nil
}

// Parse matches ppr (typically p's Grammar's StartSymbol) against lx's
// token stream and returns the resulting parse tree.
func (p *Parser) Parse(lx *lex.Lexer, ppr string) (tree.Tree, error) {
	rule := p.g.Rule(ppr)
	if rule == nil || rule.Class != grammar.PPRClass {
		return tree.Tree{}, taulerr.New(fmt.Sprintf("no such ppr %q", ppr))
	}

	b := tree.NewBuilder()
	pol := &treePolicy{g: p.g, src: newTokenStream(lx), b: b}

	if err := p.eng.MatchRule(pol, ppr); err != nil {
		b.Abort()
		return tree.Tree{}, taulerr.New("parse failed", err)
	}

	t, err := b.Seal()
	if err != nil {
		return tree.Tree{}, taulerr.New("seal parse tree", err)
	}
	return t, nil
}

// ParseStart parses lx against p's Grammar's declared start PPR.
func (p *Parser) ParseStart(lx *lex.Lexer) (tree.Tree, error) {
	return p.Parse(lx, p.g.StartSymbol())
}

// tokenStream adapts lex.Lexer's one-shot Next into the Peek/Next pair an
// engine.Policy needs, buffering exactly one token of lookahead.
type tokenStream struct {
	lx  *lex.Lexer
	buf *symbol.Token
}

func newTokenStream(lx *lex.Lexer) *tokenStream {
	return &tokenStream{lx: lx}
}

func (s *tokenStream) peek() symbol.Token {
	if s.buf == nil {
		t := s.lx.Next()
		s.buf = &t
	}
	return *s.buf
}

func (s *tokenStream) next() symbol.Token {
	t := s.peek()
	s.buf = nil
	return t
}

// treePolicy implements engine.Policy[symbol.Token] by recording every
// terminal/nonterminal callback directly onto a tree.Builder: a
// nonterminal begin/end pair becomes a Syntactic/Close pair, and each
// consumed terminal becomes a Lexical leaf named after its originating LPR.
type treePolicy struct {
	g   *grammar.Grammar
	src *tokenStream
	b   *tree.Builder
}

func (p *treePolicy) Peek() symbol.Token { return p.src.peek() }
func (p *treePolicy) Next() symbol.Token { return p.src.next() }

func (p *treePolicy) OutputStartup()  {}
func (p *treePolicy) OutputShutdown() {}

func (p *treePolicy) OutputTerminal(tok symbol.Token) {
	name := "<unknown>"
	switch {
	case tok.IsFailure():
		name = "<failure>"
	case tok.IsEndOfInput():
		name = "<eof>"
	default:
		if r := p.g.LPRByID(tok.ID()); r != nil {
			name = r.Name
		}
	}
	p.b.Lexical(name, tok)
}

func (p *treePolicy) OutputNonterminalBegin(name string) { p.b.Syntactic(name) }

// OutputNonterminalEnd is only ever called by the Engine after a matching
// Syntactic open, so the Close it performs can never fail.
func (p *treePolicy) OutputNonterminalEnd(name string) { _ = p.b.Close() }

func (p *treePolicy) OutputTerminalError(expected *symbol.Set, got symbol.Token) {}
func (p *treePolicy) OutputNonterminalError(name string, got symbol.Token)       {}
