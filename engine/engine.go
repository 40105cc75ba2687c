// Package engine implements the symbol-generic, table-driven matching
// engine shared by the lexer (matching glyphs against LPRs) and the parser
// (matching tokens against PPRs). Both instantiate the same Engine type
// over their own symbol.Symbol implementation and grammar.Domain, so the
// matching logic for sequences, alternation, optionals, Kleene closures,
// and the single-terminal-scope assertions (lookahead, negative lookahead,
// not) is written exactly once.
package engine

import (
	"fmt"

	"github.com/dekarrin/taul/grammar"
	"github.com/dekarrin/taul/symbol"
)

// Policy is the set of callbacks an Engine drives while matching one rule.
// A lexer supplies a Policy that reads glyphs and builds a single token; a
// parser supplies one that reads tokens and builds a parse tree.
type Policy[S symbol.Symbol] interface {
	// Peek returns the next symbol without consuming it.
	Peek() S

	// Next consumes and returns the next symbol.
	Next() S

	// OutputStartup is called once before matching the rule begins.
	OutputStartup()

	// OutputShutdown is called once after matching the rule ends, whether
	// it succeeded or failed.
	OutputShutdown()

	// OutputTerminal is called once per terminal symbol consumed by a
	// successful match.
	OutputTerminal(s S)

	// OutputNonterminalBegin is called when a named rule reference begins
	// expansion.
	OutputNonterminalBegin(name string)

	// OutputNonterminalEnd is called when a named rule reference's
	// expansion completes successfully.
	OutputNonterminalEnd(name string)

	// OutputTerminalError is called when the next symbol does not fall
	// within expected.
	OutputTerminalError(expected *symbol.Set, got S)

	// OutputNonterminalError is called when no alternative of a referenced
	// rule can accept the next symbol.
	OutputNonterminalError(name string, got S)
}

// Engine matches a Policy's input stream against a validated Grammar's
// rules. Alternatives are picked from each alternative's leading set and
// the current lookahead (see matchAlternation), in LPR and PPR context
// alike; the ParseTable given to New is stored but not consulted while
// matching.
type Engine[S symbol.Symbol] struct {
	g      *grammar.Grammar
	table  *grammar.ParseTable
	domain grammar.Domain

	// maxDepth bounds the nesting depth of match calls, counting composite
	// expressions and rule references alike; New fixes it at 256.
	// Exceeding it (for example through a rule that refers to itself
	// without consuming input) makes the match fail with an error.
	maxDepth int
}

// New returns an Engine that matches against g's rules, using domain to
// resolve leaf expressions. table may be nil; matching does not read it.
func New[S symbol.Symbol](g *grammar.Grammar, table *grammar.ParseTable, domain grammar.Domain) *Engine[S] {
	return &Engine[S]{g: g, table: table, domain: domain, maxDepth: 256}
}

// MatchRule matches the rule named name against p's input stream, driving p
// with the terminal/nonterminal output callbacks as it goes. It returns an
// error if no alternative of the rule's (or one of its sub-expressions')
// alternation can accept the current lookahead.
func (e *Engine[S]) MatchRule(p Policy[S], name string) error {
	if e.g.Rule(name) == nil {
		return fmt.Errorf("engine: no such rule %q", name)
	}
	p.OutputStartup()
	err := e.matchRule(p, name, 0)
	p.OutputShutdown()
	return err
}

// matchRule matches the rule named name at nesting depth depth, bracketed
// by OutputNonterminalBegin and OutputNonterminalEnd (or
// OutputNonterminalError on failure).
func (e *Engine[S]) matchRule(p Policy[S], name string, depth int) error {
	r := e.g.Rule(name)
	if r == nil {
		return fmt.Errorf("engine: no such rule %q", name)
	}
	p.OutputNonterminalBegin(name)
	err := e.match(p, r.Expr, depth)
	if err != nil {
		p.OutputNonterminalError(name, p.Peek())
	} else {
		p.OutputNonterminalEnd(name)
	}
	return err
}

func (e *Engine[S]) match(p Policy[S], expr grammar.Expr, depth int) error {
	if depth > e.maxDepth {
		return fmt.Errorf("engine: exceeded max match depth %d (cyclic non-consuming rule?)", e.maxDepth)
	}

	switch expr.Kind {
	case grammar.ExprEnd:
		next := p.Peek()
		if next.ID() != symbol.EndOfInput {
			p.OutputTerminalError(symbol.NewSetOf(symbol.EndOfInput), next)
			return fmt.Errorf("engine: expected end of input, got %v", next)
		}
		p.OutputTerminal(p.Next())
		return nil

	case grammar.ExprAny:
		next := p.Peek()
		if next.ID() == symbol.EndOfInput || next.ID() == symbol.Failure {
			p.OutputTerminalError(e.domain.All(), next)
			return fmt.Errorf("engine: expected any terminal, got %v", next)
		}
		p.OutputTerminal(p.Next())
		return nil

	case grammar.ExprToken:
		next := p.Peek()
		if next.ID() == symbol.EndOfInput || next.ID() == symbol.Failure {
			p.OutputTerminalError(e.domain.AllTerminals(), next)
			return fmt.Errorf("engine: expected any token, got %v", next)
		}
		p.OutputTerminal(p.Next())
		return nil

	case grammar.ExprFailure:
		next := p.Peek()
		if next.ID() != symbol.Failure {
			p.OutputTerminalError(symbol.NewSetOf(symbol.Failure), next)
			return fmt.Errorf("engine: expected failure token, got %v", next)
		}
		p.OutputTerminal(p.Next())
		return nil

	case grammar.ExprString:
		if expr.Str == "" {
			return nil
		}
		if _, glyphCtx := e.domain.(grammar.GlyphDomain); glyphCtx {
			for _, r := range expr.Str {
				next := p.Peek()
				if next.ID() != symbol.ID(r) {
					p.OutputTerminalError(symbol.NewSetOf(symbol.ID(r)), next)
					return fmt.Errorf("engine: unexpected terminal %v", next)
				}
				p.OutputTerminal(p.Next())
			}
			return nil
		}
		fallthrough

	case grammar.ExprCharset:
		want := expr.LeadingSet(e.g, e.domain)
		next := p.Peek()
		if !want.Contains(next.ID()) {
			p.OutputTerminalError(want, next)
			return fmt.Errorf("engine: unexpected terminal %v", next)
		}
		p.OutputTerminal(p.Next())
		return nil

	case grammar.ExprRef:
		if r := e.g.Rule(expr.Str); r != nil && r.Class == grammar.LPRClass {
			if _, tokenCtx := e.domain.(grammar.TokenDomain); tokenCtx {
				want := symbol.NewSetOf(r.ID(e.g.LPRCount()))
				next := p.Peek()
				if !want.Contains(next.ID()) {
					p.OutputTerminalError(want, next)
					return fmt.Errorf("engine: expected %s token, got %v", r.Name, next)
				}
				p.OutputTerminal(p.Next())
				return nil
			}
		}
		return e.matchRule(p, expr.Str, depth+1)

	case grammar.ExprSequence:
		for _, c := range expr.Children {
			if err := e.match(p, c, depth+1); err != nil {
				return err
			}
		}
		return nil

	case grammar.ExprAlternation:
		return e.matchAlternation(p, expr, depth)

	case grammar.ExprOptional:
		if e.canMatch(p, expr.Children[0]) {
			return e.match(p, expr.Children[0], depth+1)
		}
		return nil

	case grammar.ExprKleeneStar:
		for e.canMatch(p, expr.Children[0]) {
			if err := e.match(p, expr.Children[0], depth+1); err != nil {
				return err
			}
		}
		return nil

	case grammar.ExprKleenePlus:
		if err := e.match(p, expr.Children[0], depth+1); err != nil {
			return err
		}
		for e.canMatch(p, expr.Children[0]) {
			if err := e.match(p, expr.Children[0], depth+1); err != nil {
				return err
			}
		}
		return nil

	case grammar.ExprLookahead:
		if !e.canMatch(p, expr.Children[0]) {
			return fmt.Errorf("engine: lookahead assertion failed")
		}
		return nil

	case grammar.ExprLookaheadNot:
		if e.canMatch(p, expr.Children[0]) {
			return fmt.Errorf("engine: negative lookahead assertion failed")
		}
		return nil

	case grammar.ExprNot:
		if e.canMatch(p, expr.Children[0]) {
			return fmt.Errorf("engine: not-assertion failed: subexpression matched")
		}
		next := p.Peek()
		if next.ID() == symbol.EndOfInput || next.ID() == symbol.Failure {
			return fmt.Errorf("engine: not-assertion found nothing to consume")
		}
		p.OutputTerminal(p.Next())
		return nil

	default:
		return fmt.Errorf("engine: unhandled expression kind %v", expr.Kind)
	}
}

// matchAlternation picks the first alternative, in order, whose leading set
// contains the current lookahead; if there is none, it takes the first
// alternative that can match empty input, and fails only when no
// alternative can. Grammar.IsLL1 guarantees the leading sets are disjoint
// for PPR alternations; in LPR alternations, declaration order decides.
func (e *Engine[S]) matchAlternation(p Policy[S], expr grammar.Expr, depth int) error {
	next := p.Peek()
	for _, alt := range expr.Children {
		if e.canMatch(p, alt) {
			return e.match(p, alt, depth+1)
		}
	}
	for _, alt := range expr.Children {
		if alt.Nullable(e.g) {
			return e.match(p, alt, depth+1)
		}
	}
	p.OutputTerminalError(expr.LeadingSet(e.g, e.domain), next)
	return fmt.Errorf("engine: no alternative matches lookahead %v", next)
}

// canMatch reports whether expr's leading set contains the current
// lookahead, without consuming anything. Used to decide between
// alternatives and to decide whether to expand an optional/Kleene
// subexpression one more time.
func (e *Engine[S]) canMatch(p Policy[S], expr grammar.Expr) bool {
	next := p.Peek()
	return expr.LeadingSet(e.g, e.domain).Contains(next.ID())
}
