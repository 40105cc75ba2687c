// Package lex implements the lexer pipeline: glyphs in, tokens out. Each
// LPR is tried at the current position via the shared engine.Engine, the
// longest match wins (ties broken by declaration order), skip-qualified
// LPRs are matched but never surface as tokens, and any run of
// unrecognized glyphs is coalesced into a single failure token rather than
// one failure token per bad glyph.
package lex

import (
	"github.com/dekarrin/taul/engine"
	"github.com/dekarrin/taul/grammar"
	"github.com/dekarrin/taul/internal/decode"
	"github.com/dekarrin/taul/internal/specbin"
	"github.com/dekarrin/taul/symbol"
)

// Lexer produces a token stream from a glyph source by repeatedly
// maximal-munch matching a Grammar's LPRs.
type Lexer struct {
	g      *grammar.Grammar
	eng    *engine.Engine[symbol.Glyph]
	glyphs []symbol.Glyph
	pos    int // index into glyphs, the lexer's current read cursor

	failStart int          // glyph index where an in-progress failure span began, -1 if none
	buffered  *symbol.Token // a token already matched while flushing a failure span
}

// New reads dec to exhaustion into an in-memory glyph buffer (grammars are
// loaded once and parsed against bounded source text, so the whole input is
// expected to fit comfortably in memory) and returns a Lexer positioned at
// its start. g must already be validated (see grammar.Grammar.Validate).
func New(g *grammar.Grammar, dec *decode.Decoder) *Lexer {
	var glyphs []symbol.Glyph
	for !dec.Done() {
		glyphs = append(glyphs, dec.Next())
	}
	glyphs = append(glyphs, dec.Next()) // trailing end-of-input glyph

	return &Lexer{
		g:         g,
		eng:       engine.New[symbol.Glyph](g, nil, g.GlyphDomain()),
		glyphs:    glyphs,
		failStart: -1,
	}
}

// Next lexes and returns the next token: a normal LPR-classified token, a
// coalesced Failure token spanning every unrecognized glyph run up to the
// next successful match (or end of input), or an end-of-input token once
// the glyph buffer is exhausted. Skip-qualified LPR matches are consumed
// and never returned directly, though they still flush any pending
// failure span first.
func (lx *Lexer) Next() symbol.Token {
	if lx.buffered != nil {
		tok := *lx.buffered
		lx.buffered = nil
		return tok
	}

	for {
		if lx.atEnd() {
			endPos := lx.glyphs[lx.pos].Position()
			if lx.failStart >= 0 {
				return lx.takeFailure(endPos)
			}
			return symbol.NewToken(symbol.EndOfInput, endPos, 0)
		}

		rule, length, ok := lx.bestMatch(lx.pos)
		if !ok {
			if lx.failStart < 0 {
				lx.failStart = lx.pos
			}
			lx.pos++
			continue
		}

		startPos := lx.glyphs[lx.pos].Position()
		tok := symbol.NewToken(rule.ID(lx.g.LPRCount()), startPos, length)
		lx.advanceByBytes(length)

		if lx.failStart >= 0 {
			failTok := lx.takeFailure(startPos)
			if rule.Qualifier != specbin.QualifierSkip {
				lx.buffered = &tok
			}
			return failTok
		}

		if rule.Qualifier == specbin.QualifierSkip {
			continue
		}
		return tok
	}
}

// atEnd reports whether the read cursor sits on the trailing end-of-input
// glyph (always the last entry in lx.glyphs).
func (lx *Lexer) atEnd() bool {
	return lx.pos >= len(lx.glyphs)-1
}

// advanceByBytes moves the glyph cursor forward past n bytes worth of
// glyphs.
func (lx *Lexer) advanceByBytes(n int) {
	target := lx.glyphs[lx.pos].Position() + n
	for lx.pos < len(lx.glyphs)-1 && lx.glyphs[lx.pos].Position() < target {
		lx.pos++
	}
}

// takeFailure produces the coalesced Failure token spanning from
// lx.failStart's byte position up to endPos, and clears the pending span.
func (lx *Lexer) takeFailure(endPos int) symbol.Token {
	startPos := lx.glyphs[lx.failStart].Position()
	lx.failStart = -1
	return symbol.NewToken(symbol.Failure, startPos, endPos-startPos)
}

// bestMatch tries every LPR at glyph index start and returns the rule with
// the longest successful match, ties broken toward the earliest-declared
// rule. A zero-length match (an all-optional LPR body) is never
// considered a valid lexical match.
func (lx *Lexer) bestMatch(start int) (*grammar.Rule, int, bool) {
	var bestRule *grammar.Rule
	bestLen := 0

	for _, r := range lx.g.LPRs() {
		p := &trialPolicy{glyphs: lx.glyphs, cursor: start}
		if err := lx.eng.MatchRule(p, r.Name); err != nil {
			continue
		}
		length := lx.glyphs[p.cursor].Position() - lx.glyphs[start].Position()
		if length > bestLen {
			bestLen = length
			bestRule = r
		}
	}

	if bestRule == nil {
		return nil, 0, false
	}
	return bestRule, bestLen, true
}

// trialPolicy drives an engine.Engine trial match over lx's glyph buffer
// without mutating the Lexer's own cursor, so multiple LPRs can be tried at
// the same starting position.
type trialPolicy struct {
	glyphs []symbol.Glyph
	cursor int
}

func (p *trialPolicy) Peek() symbol.Glyph {
	if p.cursor >= len(p.glyphs) {
		return p.glyphs[len(p.glyphs)-1]
	}
	return p.glyphs[p.cursor]
}

func (p *trialPolicy) Next() symbol.Glyph {
	g := p.Peek()
	if p.cursor < len(p.glyphs)-1 {
		p.cursor++
	}
	return g
}

func (p *trialPolicy) OutputStartup()                                            {}
func (p *trialPolicy) OutputShutdown()                                           {}
func (p *trialPolicy) OutputTerminal(s symbol.Glyph)                             {}
func (p *trialPolicy) OutputNonterminalBegin(name string)                        {}
func (p *trialPolicy) OutputNonterminalEnd(name string)                          {}
func (p *trialPolicy) OutputTerminalError(expected *symbol.Set, got symbol.Glyph) {}
func (p *trialPolicy) OutputNonterminalError(name string, got symbol.Glyph)       {}
