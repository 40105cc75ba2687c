package grammar

import (
	"github.com/dekarrin/taul/internal/specbin"
	"github.com/dekarrin/taul/symbol"
)

// RuleClass distinguishes an LPR (matches glyphs, produces a token) from a
// PPR (matches tokens, produces a parse tree node).
type RuleClass int

const (
	LPRClass RuleClass = iota
	PPRClass
)

func (c RuleClass) String() string {
	if c == PPRClass {
		return "ppr"
	}
	return "lpr"
}

// Rule is one named, defined production rule: an LPR if Class is LPRClass,
// a PPR if Class is PPRClass. Index is the rule's position among rules of
// its own class in declaration order, which is also how its symbol.ID is
// derived (see ID).
type Rule struct {
	Name      string
	Class     RuleClass
	Qualifier specbin.Qualifier
	Index     int
	Expr      Expr
	Defined   bool

	// First is the set of terminals that can begin a match of this rule.
	// Populated by Grammar.computeFirstSets.
	First *symbol.Set

	// Follow is the set of terminals that can immediately follow a use of
	// this rule in some valid derivation. Only meaningful for PPRs; LPRs
	// are context-free of one another once tokenized. Populated by
	// Grammar.computeFollowSets.
	Follow *symbol.Set
}

// ID returns the rule's symbol.ID within its class's ID space: LPR indices
// for an LPRClass rule and lprCount-offset PPR indices for a PPRClass rule,
// per the grammar's glyph/token ID layout.
func (r *Rule) ID(lprCount int) symbol.ID {
	if r.Class == LPRClass {
		return symbol.ID(r.Index)
	}
	return symbol.ID(lprCount + r.Index)
}
