package grammar

import (
	"fmt"
	"sort"

	"github.com/dekarrin/taul/internal/specbin"
	"github.com/dekarrin/taul/internal/taulerr"
	"github.com/dekarrin/taul/symbol"
)

// Grammar is the compiled form of a TAUL spec: its LPRs and PPRs, in
// declaration order, with their expression trees resolved and (once
// Validate succeeds) their FIRST/FOLLOW sets and LL(1) parse tables built.
//
// A Grammar is assembled incrementally by a loader across two passes
// (DeclareLPR/DeclarePPR register names; DefineLPR/DefinePPR attach
// expression trees) and becomes read-only once Validate returns nil.
type Grammar struct {
	lprs []*Rule
	pprs []*Rule

	// names maps every declared rule name (LPR and PPR share one namespace)
	// to its Rule.
	names map[string]*Rule

	startPPR string

	glyphDomain GlyphDomain
	tokenDomain TokenDomain

	validated bool
}

// New returns an empty Grammar ready for declarations.
func New() *Grammar {
	return &Grammar{
		names:       make(map[string]*Rule),
		glyphDomain: GlyphDomain{Spellings: make(map[string]symbol.ID)},
		tokenDomain: TokenDomain{Spellings: make(map[string]symbol.ID)},
	}
}

// DeclareLPR registers name as an LPR without yet defining it. Returns an
// error wrapping taulerr.ErrMalformedSource if name is already declared
// under either class.
func (g *Grammar) DeclareLPR(name string) error {
	return g.declare(name, LPRClass)
}

// DeclarePPR registers name as a PPR without yet defining it.
func (g *Grammar) DeclarePPR(name string) error {
	return g.declare(name, PPRClass)
}

func (g *Grammar) declare(name string, class RuleClass) error {
	if _, exists := g.names[name]; exists {
		return taulerr.New(fmt.Sprintf("rule %q already declared", name), taulerr.ErrMalformedSource)
	}
	r := &Rule{Name: name, Class: class}
	if class == LPRClass {
		r.Index = len(g.lprs)
		g.lprs = append(g.lprs, r)
	} else {
		r.Index = len(g.pprs)
		g.pprs = append(g.pprs, r)
		if g.startPPR == "" {
			g.startPPR = name
		}
	}
	g.names[name] = r
	return nil
}

// DefineLPR attaches expr and q to the previously declared LPR name.
func (g *Grammar) DefineLPR(name string, q specbin.Qualifier, expr Expr) error {
	return g.define(name, LPRClass, q, expr)
}

// DefinePPR attaches expr and q to the previously declared PPR name.
func (g *Grammar) DefinePPR(name string, q specbin.Qualifier, expr Expr) error {
	return g.define(name, PPRClass, q, expr)
}

func (g *Grammar) define(name string, class RuleClass, q specbin.Qualifier, expr Expr) error {
	r, ok := g.names[name]
	if !ok {
		return taulerr.New(fmt.Sprintf("rule %q was never declared", name), taulerr.ErrRuleNotFound)
	}
	if r.Class != class {
		return taulerr.New(fmt.Sprintf("rule %q is a %s, not a %s", name, r.Class, class), taulerr.ErrMalformedSource)
	}
	r.Qualifier = q
	r.Expr = expr
	r.Defined = true
	return nil
}

// Rule returns the rule named name, or nil if no such rule is declared.
func (g *Grammar) Rule(name string) *Rule {
	return g.names[name]
}

// LPRs returns the grammar's LPRs in declaration order. The returned slice
// must not be modified.
func (g *Grammar) LPRs() []*Rule { return g.lprs }

// PPRs returns the grammar's PPRs in declaration order. The returned slice
// must not be modified.
func (g *Grammar) PPRs() []*Rule { return g.pprs }

// LPRCount returns the number of declared LPRs, the offset at which PPR
// token IDs begin in the token domain.
func (g *Grammar) LPRCount() int { return len(g.lprs) }

// LPRByID returns the LPR whose token ID (see Rule.ID) is id, or nil if id
// does not name a declared LPR. Used to recover a token's originating LPR
// name when building a parse tree's lexical leaves.
func (g *Grammar) LPRByID(id symbol.ID) *Rule {
	if int(id) < 0 || int(id) >= len(g.lprs) {
		return nil
	}
	return g.lprs[id]
}

// StartSymbol returns the name of the PPR used as the default parse entry
// point: the first PPR declared.
func (g *Grammar) StartSymbol() string { return g.startPPR }

// SetStartSymbol overrides the default start PPR.
func (g *Grammar) SetStartSymbol(name string) { g.startPPR = name }

// GlyphDomain returns the Domain used to resolve LPR leaf expressions.
func (g *Grammar) GlyphDomain() Domain { return g.glyphDomain }

// TokenDomain returns the Domain used to resolve PPR leaf expressions.
func (g *Grammar) TokenDomain() Domain {
	g.tokenDomain.LPRCount = symbol.ID(len(g.lprs))
	return g.tokenDomain
}

// RecordSpelling informs the grammar that the LPR named lprName has the
// fixed literal spelling s, so PPR string-literal leaves that name s can be
// resolved to lprName's token ID. Called by the loader while building PPR
// expressions that reference literals.
func (g *Grammar) RecordSpelling(s string, lprName string) {
	r, ok := g.names[lprName]
	if !ok || r.Class != LPRClass {
		return
	}
	g.tokenDomain.Spellings[s] = symbol.ID(r.Index)
}

// Validate checks that the grammar is well-formed: every declared rule is
// defined, every ExprRef resolves, and the grammar has at least one LPR and
// one PPR. It does not inspect the shape of lookahead/not scopes; the
// loader checks those while building them. On success it resolves ExprRef.Ref pointers throughout and computes
// FIRST/FOLLOW sets, leaving the Grammar ready for LLParseTable and
// IsLL1.
func (g *Grammar) Validate() error {
	if len(g.lprs) == 0 {
		return taulerr.New("grammar has no LPRs", taulerr.ErrMalformedSource)
	}
	if len(g.pprs) == 0 {
		return taulerr.New("grammar has no PPRs", taulerr.ErrMalformedSource)
	}

	for _, r := range g.lprs {
		if !r.Defined {
			return taulerr.New(fmt.Sprintf("lpr %q was declared but never defined", r.Name), taulerr.ErrRuleNotFound)
		}
	}
	for _, r := range g.pprs {
		if !r.Defined {
			return taulerr.New(fmt.Sprintf("ppr %q was declared but never defined", r.Name), taulerr.ErrRuleNotFound)
		}
	}

	if err := g.resolveRefs(); err != nil {
		return err
	}

	g.computeFirstSets()
	g.computeFollowSets()

	g.validated = true
	return nil
}

func (g *Grammar) resolveRefs() error {
	var walk func(e *Expr, class RuleClass) error
	walk = func(e *Expr, class RuleClass) error {
		if e.Kind == ExprRef {
			target, ok := g.names[e.Str]
			if !ok {
				return taulerr.New(fmt.Sprintf("reference to undeclared rule %q", e.Str), taulerr.ErrRuleNotFound)
			}
			if class == PPRClass && target.Class == LPRClass {
				// PPRs may reference LPRs (as token matches); nothing further
				// to validate here beyond existence.
			}
			e.Ref = target
		}
		for i := range e.Children {
			if err := walk(&e.Children[i], class); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range g.lprs {
		if err := walk(&r.Expr, LPRClass); err != nil {
			return err
		}
	}
	for _, r := range g.pprs {
		if err := walk(&r.Expr, PPRClass); err != nil {
			return err
		}
	}
	return nil
}

// computeFirstSets runs a fixed-point iteration computing FIRST(r) for
// every rule r, since rule references can be mutually recursive.
func (g *Grammar) computeFirstSets() {
	all := make([]*Rule, 0, len(g.lprs)+len(g.pprs))
	all = append(all, g.lprs...)
	all = append(all, g.pprs...)
	for _, r := range all {
		r.First = symbol.NewSet()
	}

	changed := true
	for changed {
		changed = false
		for _, r := range all {
			var dom Domain
			if r.Class == LPRClass {
				dom = g.glyphDomain
			} else {
				dom = g.TokenDomain()
			}
			next := r.Expr.LeadingSet(g, dom)
			if !next.Equal(r.First) {
				r.First = next
				changed = true
			}
		}
	}
}

// computeFollowSets runs a fixed-point iteration computing FOLLOW(r) for
// every PPR r: the set of tokens that can immediately follow a derivation
// of r in some valid parse, starting from the start symbol and end-of-input.
func (g *Grammar) computeFollowSets() {
	for _, r := range g.pprs {
		r.Follow = symbol.NewSet()
	}
	if start := g.names[g.startPPR]; start != nil {
		start.Follow.Add(symbol.EndOfInput)
	}

	changed := true
	for changed {
		changed = false
		for _, r := range g.pprs {
			if g.propagateFollow(&r.Expr, r.Follow) {
				changed = true
			}
		}
	}
}

// propagateFollow walks e (the expression tree of some PPR whose own
// FOLLOW is trailFollow), pushing FOLLOW contributions into every ExprRef
// it contains. Returns whether any target rule's Follow set grew.
func (g *Grammar) propagateFollow(e *Expr, trailFollow *symbol.Set) bool {
	changed := false
	switch e.Kind {
	case ExprSequence:
		for i := range e.Children {
			var after *symbol.Set
			if i == len(e.Children)-1 {
				after = trailFollow
			} else {
				after = symbol.NewSet()
				rest := Expr{Kind: ExprSequence, Children: e.Children[i+1:]}
				after = after.Union(rest.LeadingSet(g, g.TokenDomain()))
				if rest.Nullable(g) {
					after = after.Union(trailFollow)
				}
			}
			if g.propagateFollow(&e.Children[i], after) {
				changed = true
			}
		}
	case ExprAlternation:
		for i := range e.Children {
			if g.propagateFollow(&e.Children[i], trailFollow) {
				changed = true
			}
		}
	case ExprOptional, ExprKleeneStar, ExprKleenePlus, ExprLookahead, ExprLookaheadNot, ExprNot:
		if g.propagateFollow(&e.Children[0], trailFollow) {
			changed = true
		}
	case ExprRef:
		if e.Ref != nil && e.Ref.Class == PPRClass {
			before := e.Ref.Follow.Len()
			e.Ref.Follow = e.Ref.Follow.Union(trailFollow)
			if e.Ref.Follow.Len() != before {
				changed = true
			}
		}
	}
	return changed
}

// IsLL1 reports whether the grammar's PPRs admit a conflict-free LL(1)
// parse table: for every alternation, the FIRST sets (extended by FOLLOW
// where an alternative is nullable) of its alternatives are pairwise
// disjoint.
func (g *Grammar) IsLL1() bool {
	if !g.validated {
		return false
	}
	for _, r := range g.pprs {
		if !alternationsDisjoint(&r.Expr, g, r.Follow) {
			return false
		}
	}
	return true
}

func alternationsDisjoint(e *Expr, g *Grammar, follow *symbol.Set) bool {
	if e.Kind == ExprAlternation {
		seen := symbol.NewSet()
		for _, c := range e.Children {
			set := c.LeadingSet(g, g.TokenDomain())
			if c.Nullable(g) {
				set = set.Union(follow)
			}
			if !seen.DisjointWith(set) {
				return false
			}
			seen = seen.Union(set)
		}
	}
	for i := range e.Children {
		if !alternationsDisjoint(&e.Children[i], g, follow) {
			return false
		}
	}
	return true
}

// Copy returns a deep copy of the Grammar, safe to mutate independently.
func (g *Grammar) Copy() *Grammar {
	var copyExpr func(e Expr) Expr
	copyExpr = func(e Expr) Expr {
		e.Ref = nil
		if e.Children != nil {
			children := make([]Expr, len(e.Children))
			for i, c := range e.Children {
				children[i] = copyExpr(c)
			}
			e.Children = children
		}
		return e
	}

	cp := New()
	for _, r := range g.lprs {
		_ = cp.DeclareLPR(r.Name)
	}
	for _, r := range g.pprs {
		_ = cp.DeclarePPR(r.Name)
	}
	for _, r := range g.lprs {
		_ = cp.DefineLPR(r.Name, r.Qualifier, copyExpr(r.Expr))
	}
	for _, r := range g.pprs {
		_ = cp.DefinePPR(r.Name, r.Qualifier, copyExpr(r.Expr))
	}
	cp.startPPR = g.startPPR
	for s, id := range g.tokenDomain.Spellings {
		cp.tokenDomain.Spellings[s] = id
	}
	for s, id := range g.glyphDomain.Spellings {
		cp.glyphDomain.Spellings[s] = id
	}
	if err := cp.Validate(); err != nil {
		// g was already validated; a copy of a valid grammar cannot fail to
		// validate unless g's own invariants were violated after the fact.
		panic(fmt.Sprintf("grammar: copy of valid grammar failed to validate: %v", err))
	}
	return cp
}

// SortedRuleNames returns every declared rule name (LPR and PPR) in
// alphabetical order, for deterministic diagnostics and printing.
func (g *Grammar) SortedRuleNames() []string {
	names := make([]string, 0, len(g.names))
	for name := range g.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
