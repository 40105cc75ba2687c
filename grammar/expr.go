// Package grammar holds the compiled, in-memory representation of a TAUL
// grammar: its lexical and parser production rules, their expression trees,
// and the derived FIRST/FOLLOW sets and LL(1) parse table used to drive the
// parse engine. A Grammar is built incrementally by a loader and is
// immutable once Validate succeeds.
package grammar

import (
	"fmt"
	"strings"

	"github.com/dekarrin/taul/symbol"
)

// ExprKind identifies the shape of an Expr node. The set mirrors the
// composite expression forms a spec binary can describe: plain terminal
// matches, a name reference, and the nestable composites (sequence,
// alternation, the single-terminal-scope assertions, and the repetition
// forms).
type ExprKind int

const (
	// ExprEnd matches the end-of-input sentinel.
	ExprEnd ExprKind = iota
	// ExprAny matches any single terminal.
	ExprAny
	// ExprString matches a literal. Str holds the literal text.
	ExprString
	// ExprCharset matches a single glyph in the class described by Str, a
	// range expression such as "a-zA-Z0-9_". LPR context only.
	ExprCharset
	// ExprToken matches any single token. PPR context only.
	ExprToken
	// ExprFailure matches a failure token. PPR context only.
	ExprFailure
	// ExprRef references another rule by name (Str holds the name); it is
	// resolved to a Rule once the grammar finishes loading.
	ExprRef
	// ExprSequence matches Children in order, all or nothing.
	ExprSequence
	// ExprAlternation matches one of Children: the first whose leading set
	// contains the lookahead, or else the first that can match empty input.
	ExprAlternation
	// ExprOptional matches Children[0] zero or one time.
	ExprOptional
	// ExprKleeneStar matches Children[0] zero or more times.
	ExprKleeneStar
	// ExprKleenePlus matches Children[0] one or more times.
	ExprKleenePlus
	// ExprLookahead asserts Children[0] matches without consuming input.
	ExprLookahead
	// ExprLookaheadNot asserts Children[0] does not match, without
	// consuming input.
	ExprLookaheadNot
	// ExprNot matches a single terminal that Children[0] does not match,
	// consuming it.
	ExprNot
)

var exprKindNames = [...]string{
	ExprEnd:           "end",
	ExprAny:           "any",
	ExprString:        "string",
	ExprCharset:       "charset",
	ExprToken:         "token",
	ExprFailure:       "failure",
	ExprRef:           "ref",
	ExprSequence:      "sequence",
	ExprAlternation:   "alternation",
	ExprOptional:      "optional",
	ExprKleeneStar:    "kleene_star",
	ExprKleenePlus:    "kleene_plus",
	ExprLookahead:     "lookahead",
	ExprLookaheadNot:  "lookahead_not",
	ExprNot:           "not",
}

func (k ExprKind) String() string {
	if int(k) < 0 || int(k) >= len(exprKindNames) {
		return fmt.Sprintf("exprkind(%d)", int(k))
	}
	return exprKindNames[k]
}

// singleTerminalScope reports whether k's subexpression scope may contain at
// most one terminal-producing expression, mirroring the spec binary's
// single-terminal-scope restriction on lookahead/lookahead_not/not.
func (k ExprKind) singleTerminalScope() bool {
	return k == ExprLookahead || k == ExprLookaheadNot || k == ExprNot
}

// Expr is one node of a rule's expression tree. It is a tagged variant
// rather than a dynamically dispatched interface: callers switch on Kind and
// the relevant field(s) are populated accordingly. Expr values are
// immutable once a Grammar is built.
type Expr struct {
	Kind ExprKind

	// Str holds the literal for ExprString/ExprCharset, or the referenced
	// rule name for ExprRef.
	Str string

	// Ref is the resolved rule for ExprRef, set once the owning Grammar has
	// finished loading. Nil until then.
	Ref *Rule

	// Children holds subexpressions for the composite kinds. Sequence and
	// Alternation may hold any number; Optional, KleeneStar, KleenePlus,
	// Lookahead, LookaheadNot, and Not hold exactly one.
	Children []Expr
}

// IsComposite reports whether e has subexpressions.
func (e Expr) IsComposite() bool {
	switch e.Kind {
	case ExprSequence, ExprAlternation, ExprOptional, ExprKleeneStar,
		ExprKleenePlus, ExprLookahead, ExprLookaheadNot, ExprNot:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether e is a leaf that matches input by itself,
// without consulting Children or a referenced rule: true for end, any,
// string, charset, token and failure; false for ExprRef and every
// composite kind, whose terminal-ness depends on what they contain or
// reference.
func (e Expr) IsTerminal() bool {
	switch e.Kind {
	case ExprEnd, ExprAny, ExprString, ExprCharset, ExprToken, ExprFailure:
		return true
	default:
		return false
	}
}

// Nullable reports whether e can match without consuming any input. Used
// by FIRST/FOLLOW computation. g supplies rule lookups for ExprRef nodes
// that have not yet been resolved in-place.
func (e Expr) Nullable(g *Grammar) bool {
	switch e.Kind {
	case ExprOptional, ExprKleeneStar, ExprLookahead, ExprLookaheadNot:
		return true
	case ExprSequence:
		for _, c := range e.Children {
			if !c.Nullable(g) {
				return false
			}
		}
		return true
	case ExprAlternation:
		for _, c := range e.Children {
			if c.Nullable(g) {
				return true
			}
		}
		return false
	case ExprKleenePlus:
		return e.Children[0].Nullable(g)
	case ExprNot:
		return false
	case ExprRef:
		r := e.resolve(g)
		if r == nil {
			return false
		}
		return r.Expr.Nullable(g)
	case ExprString:
		return e.Str == ""
	default:
		return false
	}
}

func (e Expr) resolve(g *Grammar) *Rule {
	if e.Ref != nil {
		return e.Ref
	}
	if g == nil {
		return nil
	}
	return g.Rule(e.Str)
}

func (e Expr) String() string {
	switch e.Kind {
	case ExprString:
		return fmt.Sprintf("%q", e.Str)
	case ExprCharset:
		return fmt.Sprintf("[%s]", e.Str)
	case ExprRef:
		return e.Str
	case ExprSequence:
		parts := make([]string, len(e.Children))
		for i, c := range e.Children {
			parts[i] = c.String()
		}
		return strings.Join(parts, " ")
	case ExprAlternation:
		parts := make([]string, len(e.Children))
		for i, c := range e.Children {
			parts[i] = c.String()
		}
		return strings.Join(parts, " | ")
	case ExprOptional:
		return e.Children[0].String() + "?"
	case ExprKleeneStar:
		return e.Children[0].String() + "*"
	case ExprKleenePlus:
		return e.Children[0].String() + "+"
	case ExprLookahead:
		return "&(" + e.Children[0].String() + ")"
	case ExprLookaheadNot:
		return "!&(" + e.Children[0].String() + ")"
	case ExprNot:
		return "!(" + e.Children[0].String() + ")"
	default:
		return e.Kind.String()
	}
}

// LeadingSet returns the symbol.Set of terminals e can match as its very
// first terminal, ignoring what follows it in a sequence. This is the
// non-fixed-point base case used while building FIRST; ExprRef is resolved
// through g.
func (e Expr) LeadingSet(g *Grammar, domain Domain) *symbol.Set {
	switch e.Kind {
	case ExprEnd:
		return symbol.NewSetOf(symbol.EndOfInput)
	case ExprAny:
		return domain.All()
	case ExprToken:
		return domain.AllTerminals()
	case ExprFailure:
		return symbol.NewSetOf(symbol.Failure)
	case ExprString:
		if e.Str == "" {
			return symbol.NewSet()
		}
		return domain.Literal(e.Str)
	case ExprCharset:
		return domain.Charset(e.Str)
	case ExprRef:
		r := e.resolve(g)
		if r == nil {
			return symbol.NewSet()
		}
		// A PPR referencing an LPR by name matches exactly one already-lexed
		// token of that LPR's class, identified by its token ID; r.First is
		// the LPR's own glyph-domain First set (the codepoints its body can
		// start with), which belongs to a different ID space entirely and
		// would never match a real lookahead token here.
		if _, tokenCtx := domain.(TokenDomain); tokenCtx && r.Class == LPRClass {
			return symbol.NewSetOf(r.ID(g.LPRCount()))
		}
		return r.First.Copy()
	case ExprSequence:
		result := symbol.NewSet()
		for _, c := range e.Children {
			result = result.Union(c.LeadingSet(g, domain))
			if !c.Nullable(g) {
				break
			}
		}
		return result
	case ExprAlternation:
		result := symbol.NewSet()
		for _, c := range e.Children {
			result = result.Union(c.LeadingSet(g, domain))
		}
		return result
	case ExprOptional, ExprKleeneStar, ExprKleenePlus:
		return e.Children[0].LeadingSet(g, domain)
	case ExprLookahead, ExprLookaheadNot:
		return e.Children[0].LeadingSet(g, domain)
	case ExprNot:
		return domain.All().Difference(e.Children[0].LeadingSet(g, domain))
	default:
		return symbol.NewSet()
	}
}

// Ref builds an ExprRef node.
func Ref(name string) Expr { return Expr{Kind: ExprRef, Str: name} }

// Lit builds an ExprString node.
func Lit(s string) Expr { return Expr{Kind: ExprString, Str: s} }

// Class builds an ExprCharset node.
func Class(expr string) Expr { return Expr{Kind: ExprCharset, Str: expr} }

// Seq builds an ExprSequence node.
func Seq(children ...Expr) Expr { return Expr{Kind: ExprSequence, Children: children} }

// Alt builds an ExprAlternation node.
func Alt(children ...Expr) Expr { return Expr{Kind: ExprAlternation, Children: children} }

// Opt builds an ExprOptional node.
func Opt(child Expr) Expr { return Expr{Kind: ExprOptional, Children: []Expr{child}} }

// Star builds an ExprKleeneStar node.
func Star(child Expr) Expr { return Expr{Kind: ExprKleeneStar, Children: []Expr{child}} }

// Plus builds an ExprKleenePlus node.
func Plus(child Expr) Expr { return Expr{Kind: ExprKleenePlus, Children: []Expr{child}} }

// LookaheadExpr builds an ExprLookahead node.
func LookaheadExpr(child Expr) Expr { return Expr{Kind: ExprLookahead, Children: []Expr{child}} }

// LookaheadNotExpr builds an ExprLookaheadNot node.
func LookaheadNotExpr(child Expr) Expr { return Expr{Kind: ExprLookaheadNot, Children: []Expr{child}} }

// NotExpr builds an ExprNot node.
func NotExpr(child Expr) Expr { return Expr{Kind: ExprNot, Children: []Expr{child}} }
