// Package loader turns a spec binary (see internal/specbin) into a
// validated grammar.Grammar. Loading happens in two passes over the same
// buffer: the first registers every LPR/PPR by name so later references
// may appear before their target is defined; the second builds each rule's
// expression tree and attaches it to the grammar. Errors are not fatal as
// they are found — they are counted in a taulerr.Counter — but loading
// stops and returns no grammar once any diagnostic has been raised.
package loader

import (
	"fmt"

	"github.com/dekarrin/taul/grammar"
	"github.com/dekarrin/taul/internal/specbin"
	"github.com/dekarrin/taul/internal/taulerr"
)

// Result is what Load returns: either a validated Grammar (Counter has no
// errors) or a nil Grammar and a populated Counter explaining why.
type Result struct {
	Grammar *grammar.Grammar
	Counter *taulerr.Counter
}

// Load builds a Grammar from s. It never panics on malformed input;
// structural problems are raised onto the returned Counter and Result.Grammar
// is nil whenever Counter.HasErrors().
func Load(s specbin.Spec) Result {
	counter := taulerr.NewCounter()
	g := grammar.New()

	if err := declarePass(s, g, counter); err != nil {
		counter.Raise(taulerr.InternalError, 0, err.Error())
		return Result{Counter: counter}
	}
	if counter.HasErrors() {
		return Result{Counter: counter}
	}

	if err := definePass(s, g, counter); err != nil {
		counter.Raise(taulerr.InternalError, 0, err.Error())
		return Result{Counter: counter}
	}
	if counter.HasErrors() {
		return Result{Counter: counter}
	}

	if err := g.Validate(); err != nil {
		raiseFromErr(counter, 0, err)
		return Result{Counter: counter}
	}

	if !g.IsLL1() {
		counter.Raise(taulerr.IllegalAmbiguity, 0, "grammar is not LL(1): some rule has ambiguous alternatives")
		return Result{Counter: counter}
	}

	return Result{Grammar: g, Counter: counter}
}

func raiseFromErr(counter *taulerr.Counter, pos int, err error) {
	switch {
	case err == nil:
		return
	default:
		counter.Raise(taulerr.InternalError, pos, err.Error())
	}
}

// declarePass registers every LPR/PPR name so forward references resolve.
func declarePass(s specbin.Spec, g *grammar.Grammar, counter *taulerr.Counter) error {
	pos := 0
	return specbin.Step(s, func(ins specbin.Instruction, nextOp specbin.Opcode, ok bool) error {
		switch ins.Op {
		case specbin.Pos:
			pos = int(ins.Position)
		case specbin.LPRDecl:
			if err := g.DeclareLPR(ins.Str); err != nil {
				counter.Raise(taulerr.RuleNameConflict, pos, fmt.Sprintf("lpr %q: %v", ins.Str, err))
			}
		case specbin.PPRDecl:
			if err := g.DeclarePPR(ins.Str); err != nil {
				counter.Raise(taulerr.RuleNameConflict, pos, fmt.Sprintf("ppr %q: %v", ins.Str, err))
			}
		}
		return nil
	})
}

// definePass builds every rule's expression tree via an explicit scope
// stack: Sequence/Optional/KleeneStar/KleenePlus/Lookahead/LookaheadNot/Not
// each open a new scope, closed by Close; LPR/PPR open a rule-level scope
// that Close finalizes into a DefineLPR/DefinePPR call instead of a nested
// Expr.
func definePass(s specbin.Spec, g *grammar.Grammar, counter *taulerr.Counter) error {
	pos := 0
	var stack []*scope
	var currentRule *ruleInProgress

	closeScope := func() error {
		if len(stack) == 0 {
			if currentRule == nil {
				counter.Raise(taulerr.StrayClose, pos, "close with no open scope")
				return nil
			}
			// closing the rule itself
			expr, err := currentRule.sc.build(counter, pos)
			if err != nil {
				return nil
			}
			var defErr error
			if currentRule.class == grammar.LPRClass {
				defErr = g.DefineLPR(currentRule.name, currentRule.qualifier, expr)
			} else {
				defErr = g.DefinePPR(currentRule.name, currentRule.qualifier, expr)
				recordPPRLiteralSpellings(g, expr)
			}
			if defErr != nil {
				counter.Raise(taulerr.InternalError, pos, defErr.Error())
			}
			currentRule = nil
			return nil
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		expr, err := top.build(counter, pos)
		if err != nil {
			return nil
		}
		parent := currentScope(stack, currentRule)
		if parent == nil {
			counter.Raise(taulerr.InternalError, pos, "scope closed with no parent to attach to")
			return nil
		}
		parent.append(expr)
		return nil
	}

	err := specbin.Step(s, func(ins specbin.Instruction, nextOp specbin.Opcode, ok bool) error {
		switch ins.Op {
		case specbin.Pos:
			pos = int(ins.Position)

		case specbin.LPR, specbin.PPR:
			if currentRule != nil {
				counter.Raise(taulerr.IllegalRuleDeclare, pos, "rule opened while another rule scope is still open")
				return nil
			}
			class := grammar.LPRClass
			if ins.Op == specbin.PPR {
				class = grammar.PPRClass
			}
			currentRule = &ruleInProgress{
				name:      ins.Str,
				class:     class,
				qualifier: ins.Qual,
				sc:        newScope(),
			}

		case specbin.Close:
			if err := closeScope(); err != nil {
				return err
			}

		case specbin.Alternative:
			cur := currentScope(stack, currentRule)
			if cur == nil {
				counter.Raise(taulerr.IllegalInNoAlternationScope, pos, "alternative with no open scope")
				return nil
			}
			cur.newAlternative()

		case specbin.Sequence:
			stack = append(stack, newScope())

		case specbin.Optional:
			stack = append(stack, newSingleTerminalScope(grammar.ExprOptional))
		case specbin.KleeneStar:
			stack = append(stack, newSingleTerminalScope(grammar.ExprKleeneStar))
		case specbin.KleenePlus:
			stack = append(stack, newSingleTerminalScope(grammar.ExprKleenePlus))
		case specbin.Lookahead:
			stack = append(stack, newSingleTerminalScope(grammar.ExprLookahead))
		case specbin.LookaheadNot:
			stack = append(stack, newSingleTerminalScope(grammar.ExprLookaheadNot))
		case specbin.Not:
			stack = append(stack, newSingleTerminalScope(grammar.ExprNot))

		case specbin.End:
			appendLeaf(stack, currentRule, counter, pos, grammar.Expr{Kind: grammar.ExprEnd})
		case specbin.Any:
			appendLeaf(stack, currentRule, counter, pos, grammar.Expr{Kind: grammar.ExprAny})
		case specbin.Token:
			appendLeaf(stack, currentRule, counter, pos, grammar.Expr{Kind: grammar.ExprToken})
		case specbin.Failure:
			appendLeaf(stack, currentRule, counter, pos, grammar.Expr{Kind: grammar.ExprFailure})
		case specbin.String:
			appendLeaf(stack, currentRule, counter, pos, grammar.Lit(ins.Str))
		case specbin.Charset:
			appendLeaf(stack, currentRule, counter, pos, grammar.Class(ins.Str))
		case specbin.Name:
			appendLeaf(stack, currentRule, counter, pos, grammar.Ref(ins.Str))
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(stack) > 0 || currentRule != nil {
		counter.Raise(taulerr.ScopeNotClosed, pos, "spec binary ended with unclosed scope(s)")
	}

	return nil
}

// recordPPRLiteralSpellings walks a freshly-defined PPR's expression tree
// and records every string literal's LPR spelling link in the grammar, so
// the token domain can answer Literal() lookups for that literal later.
func recordPPRLiteralSpellings(g *grammar.Grammar, e grammar.Expr) {
	if e.Kind == grammar.ExprString {
		for _, lpr := range g.LPRs() {
			if lit, ok := lprFixedSpelling(lpr.Expr); ok && lit == e.Str {
				g.RecordSpelling(e.Str, lpr.Name)
			}
		}
	}
	for i := range e.Children {
		recordPPRLiteralSpellings(g, e.Children[i])
	}
}

// lprFixedSpelling reports whether e is (or reduces to) a single fixed
// string literal, the case where a PPR string-literal leaf can name it by
// spelling.
func lprFixedSpelling(e grammar.Expr) (string, bool) {
	if e.Kind == grammar.ExprString {
		return e.Str, true
	}
	return "", false
}

type ruleInProgress struct {
	name      string
	class     grammar.RuleClass
	qualifier specbin.Qualifier
	sc        *scope
}

// appendable is satisfied by both *scope and *ruleInProgress so leaf
// opcodes can append into whichever is innermost.
type appendable interface {
	append(e grammar.Expr)
	newAlternative()
}

func (r *ruleInProgress) append(e grammar.Expr) { r.sc.append(e) }
func (r *ruleInProgress) newAlternative()       { r.sc.newAlternative() }

func currentScope(stack []*scope, rule *ruleInProgress) appendable {
	if len(stack) > 0 {
		return stack[len(stack)-1]
	}
	if rule != nil {
		return rule
	}
	return nil
}

func appendLeaf(stack []*scope, rule *ruleInProgress, counter *taulerr.Counter, pos int, e grammar.Expr) {
	cur := currentScope(stack, rule)
	if cur == nil {
		counter.Raise(taulerr.IllegalInNoScope, pos, "terminal or reference outside of any rule scope")
		return
	}
	cur.append(e)
}

// scope accumulates the alternatives of one composite or rule-level scope,
// each alternative a sequence of Expr children appended in order.
type scope struct {
	kind             grammar.ExprKind // meaningful only for single-terminal scopes
	singleTerminal   bool
	alts             [][]grammar.Expr
}

func newScope() *scope {
	return &scope{alts: [][]grammar.Expr{nil}}
}

func newSingleTerminalScope(kind grammar.ExprKind) *scope {
	return &scope{kind: kind, singleTerminal: true, alts: [][]grammar.Expr{nil}}
}

func (s *scope) append(e grammar.Expr) {
	last := len(s.alts) - 1
	s.alts[last] = append(s.alts[last], e)
}

func (s *scope) newAlternative() {
	s.alts = append(s.alts, nil)
}

// build finalizes the scope into a single Expr: a sequence if its single
// alternative has more than one child (or that child itself if just one),
// or an alternation of such sequences if more than one alternative was
// opened. Single-terminal scopes additionally enforce that exactly one
// alternative with exactly one child was produced.
func (s *scope) build(counter *taulerr.Counter, pos int) (grammar.Expr, error) {
	if s.singleTerminal {
		if len(s.alts) != 1 || len(s.alts[0]) != 1 {
			counter.Raise(taulerr.IllegalInSingleTerminalScope, pos, "lookahead/lookahead-not/not scope must contain exactly one subexpression")
			return grammar.Expr{}, fmt.Errorf("illegal single-terminal scope")
		}
		return wrapSingle(s.kind, s.alts[0][0]), nil
	}

	seqs := make([]grammar.Expr, 0, len(s.alts))
	for _, alt := range s.alts {
		switch len(alt) {
		case 0:
			seqs = append(seqs, grammar.Lit(""))
		case 1:
			seqs = append(seqs, alt[0])
		default:
			seqs = append(seqs, grammar.Seq(alt...))
		}
	}
	if len(seqs) == 1 {
		return seqs[0], nil
	}
	return grammar.Alt(seqs...), nil
}

func wrapSingle(kind grammar.ExprKind, inner grammar.Expr) grammar.Expr {
	switch kind {
	case grammar.ExprOptional:
		return grammar.Opt(inner)
	case grammar.ExprKleeneStar:
		return grammar.Star(inner)
	case grammar.ExprKleenePlus:
		return grammar.Plus(inner)
	case grammar.ExprLookahead:
		return grammar.LookaheadExpr(inner)
	case grammar.ExprLookaheadNot:
		return grammar.LookaheadNotExpr(inner)
	case grammar.ExprNot:
		return grammar.NotExpr(inner)
	default:
		return inner
	}
}
