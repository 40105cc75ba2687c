package grammar

import "github.com/dekarrin/taul/symbol"

// Domain translates the leaf terminal-matching expression kinds (any,
// string, charset, token) into the symbol.Set of concrete terminal IDs they
// match. LPR context (glyphs, where charset is meaningful) and PPR context
// (tokens, where charset never appears) each supply their own Domain.
type Domain interface {
	// All returns the set of every terminal this domain recognizes. Neither
	// the end-of-input nor the failure sentinel is included.
	All() *symbol.Set

	// AllTerminals returns the set of every non-sentinel terminal, used for
	// ExprToken in PPR context.
	AllTerminals() *symbol.Set

	// Literal returns the set of terminals a string literal can begin with:
	// the first glyph of s in LPR context, or the single token whose
	// spelling equals s in PPR context.
	Literal(s string) *symbol.Set

	// Charset returns the set of glyphs described by a charset range
	// expression such as "a-zA-Z0-9_". LPR context only; PPR domains
	// return an empty set.
	Charset(expr string) *symbol.Set
}

// GlyphDomain is the Domain for LPR expression trees: terminals are
// codepoints 0..symbol.GlyphTerminalCount.
type GlyphDomain struct {
	// Spellings maps a literal string to a glyph ID. Literal does not
	// consult it (it decodes the first rune of its argument directly), and
	// the loader does not fill it.
	Spellings map[string]symbol.ID
}

func (d GlyphDomain) All() *symbol.Set {
	return symbol.NewSetOfRanges(symbol.Range{Low: 0, High: symbol.GlyphTerminalCount})
}

func (d GlyphDomain) AllTerminals() *symbol.Set { return d.All() }

func (d GlyphDomain) Literal(s string) *symbol.Set {
	for _, r := range s {
		return symbol.NewSetOf(symbol.ID(r))
	}
	return symbol.NewSet()
}

func (d GlyphDomain) Charset(expr string) *symbol.Set {
	return parseCharsetRanges(expr)
}

// TokenDomain is the Domain for PPR expression trees: terminals are LPR
// indices 0..lprCount (nonterminal PPR IDs start at lprCount and are never
// matched directly by a leaf expression).
type TokenDomain struct {
	// LPRCount is the number of LPRs in the owning grammar; token terminal
	// IDs span [0, LPRCount).
	LPRCount symbol.ID

	// Spellings maps a string literal to the LPR id of the rule whose
	// fixed spelling equals it, supplied by the loader.
	Spellings map[string]symbol.ID
}

func (d TokenDomain) All() *symbol.Set {
	return symbol.NewSetOfRanges(symbol.Range{Low: 0, High: d.LPRCount})
}

func (d TokenDomain) AllTerminals() *symbol.Set { return d.All() }

func (d TokenDomain) Literal(s string) *symbol.Set {
	if id, ok := d.Spellings[s]; ok {
		return symbol.NewSetOf(id)
	}
	return symbol.NewSet()
}

func (d TokenDomain) Charset(expr string) *symbol.Set {
	return symbol.NewSet()
}

// parseCharsetRanges parses a charset range expression such as "a-zA-Z0-9_"
// into the symbol.Set of glyphs it describes. A lone character not followed
// by "-x" is a single-glyph range; "a-z" is an inclusive range.
func parseCharsetRanges(expr string) *symbol.Set {
	runes := []rune(expr)
	result := symbol.NewSet()
	for i := 0; i < len(runes); i++ {
		if i+2 < len(runes) && runes[i+1] == '-' {
			low, high := runes[i], runes[i+2]
			result.AddRange(symbol.ID(low), symbol.ID(high)+1)
			i += 2
			continue
		}
		result.Add(symbol.ID(runes[i]))
	}
	return result
}
