package engine

import (
	"testing"

	"github.com/dekarrin/taul/grammar"
	"github.com/dekarrin/taul/internal/specbin"
	"github.com/dekarrin/taul/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePolicy feeds a fixed slice of tokens and records the output events it
// is driven with, for assertions without needing a real lexer or tree
// builder.
type fakePolicy struct {
	feed   []symbol.Token
	pos    int
	events []string
}

func (p *fakePolicy) Peek() symbol.Token {
	if p.pos >= len(p.feed) {
		return symbol.NewToken(symbol.EndOfInput, 0, 0)
	}
	return p.feed[p.pos]
}

func (p *fakePolicy) Next() symbol.Token {
	t := p.Peek()
	if p.pos < len(p.feed) {
		p.pos++
	}
	return t
}

func (p *fakePolicy) OutputStartup()  { p.events = append(p.events, "startup") }
func (p *fakePolicy) OutputShutdown() { p.events = append(p.events, "shutdown") }
func (p *fakePolicy) OutputTerminal(s symbol.Token) {
	p.events = append(p.events, "terminal")
}
func (p *fakePolicy) OutputNonterminalBegin(name string) {
	p.events = append(p.events, "begin:"+name)
}
func (p *fakePolicy) OutputNonterminalEnd(name string) {
	p.events = append(p.events, "end:"+name)
}
func (p *fakePolicy) OutputTerminalError(expected *symbol.Set, got symbol.Token) {
	p.events = append(p.events, "terminal-error")
}
func (p *fakePolicy) OutputNonterminalError(name string, got symbol.Token) {
	p.events = append(p.events, "nonterminal-error")
}

// buildListGrammar builds a PPR "list" matching zero or more of token A
// (LPR index 0) followed by end of input.
func buildListGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	require := require.New(t)

	g := grammar.New()
	require.NoError(g.DeclareLPR("A"))
	require.NoError(g.DeclarePPR("list"))
	require.NoError(g.DefineLPR("A", specbin.QualifierNone, grammar.Lit("a")))
	g.RecordSpelling("a", "A")
	require.NoError(g.DefinePPR("list", specbin.QualifierNone,
		grammar.Seq(grammar.Star(grammar.Ref("A")), grammar.Expr{Kind: grammar.ExprEnd})))
	require.NoError(g.Validate())
	return g
}

func Test_Engine_MatchRule_ConsumesRepeatedTokens(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g := buildListGrammar(t)
	table, err := g.LLParseTable()
	require.NoError(err)

	e := New[symbol.Token](g, table, g.TokenDomain())

	aID := g.Rule("A").ID(g.LPRCount())
	p := &fakePolicy{feed: []symbol.Token{
		symbol.NewToken(aID, 0, 1),
		symbol.NewToken(aID, 1, 1),
		symbol.NewToken(symbol.EndOfInput, 2, 0),
	}}

	err = e.MatchRule(p, "list")
	require.NoError(err)
	assert.Contains(p.events, "begin:list")
	assert.Contains(p.events, "end:list")
	assert.Equal(3, p.pos)
}

func Test_Engine_MatchRule_FailsOnUnexpectedToken(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g := buildListGrammar(t)
	table, err := g.LLParseTable()
	require.NoError(err)

	e := New[symbol.Token](g, table, g.TokenDomain())

	p := &fakePolicy{feed: []symbol.Token{
		symbol.NewToken(symbol.Failure, 0, 1),
	}}

	err = e.MatchRule(p, "list")
	assert.Error(err)
	assert.Contains(p.events, "nonterminal-error")
}

func Test_Engine_MatchRule_OptionalSkipsWhenAbsent(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g := grammar.New()
	require.NoError(g.DeclareLPR("A"))
	require.NoError(g.DeclarePPR("maybe"))
	require.NoError(g.DefineLPR("A", specbin.QualifierNone, grammar.Lit("a")))
	g.RecordSpelling("a", "A")
	require.NoError(g.DefinePPR("maybe", specbin.QualifierNone,
		grammar.Seq(grammar.Opt(grammar.Ref("A")), grammar.Expr{Kind: grammar.ExprEnd})))
	require.NoError(g.Validate())

	table, err := g.LLParseTable()
	require.NoError(err)
	e := New[symbol.Token](g, table, g.TokenDomain())

	p := &fakePolicy{feed: []symbol.Token{
		symbol.NewToken(symbol.EndOfInput, 0, 0),
	}}

	err = e.MatchRule(p, "maybe")
	require.NoError(err)
	assert.Equal(1, p.pos)
}
