package grammar

import (
	"fmt"

	"github.com/dekarrin/taul/internal/taulerr"
	"github.com/dekarrin/taul/symbol"
)

// ParseTable is the LL(1) predictive parse table derived from a validated
// Grammar: for each PPR and each lookahead terminal, which alternative (by
// index into that PPR's top-level Expr, if it is an ExprAlternation) to
// expand. A PPR whose Expr is not itself an alternation has exactly one
// alternative, index 0, selected regardless of lookahead.
type ParseTable struct {
	// rows maps a PPR name to its per-terminal alternative choice. A
	// missing entry for a given terminal means no alternative applies: a
	// parse error.
	rows map[string]map[symbol.ID]int
}

// LLParseTable builds the LL(1) parse table for g. g must already be
// validated (see Grammar.Validate); otherwise an error wrapping
// taulerr.ErrNotLL1 is returned. If building the table finds two
// alternatives claiming the same lookahead terminal for some PPR (g is not
// LL(1), see Grammar.IsLL1), the error wraps taulerr.ErrAmbiguous instead.
func (g *Grammar) LLParseTable() (*ParseTable, error) {
	if !g.validated {
		return nil, taulerr.New("grammar has not been validated", taulerr.ErrNotLL1)
	}

	pt := &ParseTable{rows: make(map[string]map[symbol.ID]int)}

	for _, r := range g.pprs {
		row := make(map[symbol.ID]int)

		alts := []Expr{r.Expr}
		if r.Expr.Kind == ExprAlternation {
			alts = r.Expr.Children
		}

		for i, alt := range alts {
			set := alt.LeadingSet(g, g.TokenDomain())
			if alt.Nullable(g) {
				set = set.Union(r.Follow)
			}
			var conflict symbol.ID
			hasConflict := false
			set.Each(func(id symbol.ID) {
				if _, taken := row[id]; taken {
					hasConflict = true
					conflict = id
					return
				}
				row[id] = i
			})
			if hasConflict {
				return nil, taulerr.New(
					fmt.Sprintf("ppr %q: alternatives %d and %d both claim lookahead terminal %d", r.Name, row[conflict], i, conflict),
					taulerr.ErrAmbiguous,
				)
			}
		}

		pt.rows[r.Name] = row
	}

	return pt, nil
}

// Lookup returns the chosen alternative index for ppr given lookahead, and
// whether an entry exists at all.
func (pt *ParseTable) Lookup(ppr string, lookahead symbol.ID) (int, bool) {
	row, ok := pt.rows[ppr]
	if !ok {
		return 0, false
	}
	alt, ok := row[lookahead]
	return alt, ok
}
