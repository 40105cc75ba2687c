// Package symbol holds the two parametric symbol domains the rest of TAUL is
// generic over: glyphs (decoded Unicode scalar values) and tokens (lexical
// units). Both share the same identifier space layout and the same small
// value shape, so tables, sets, and the parse engine only ever need to know
// about the ID type, never about glyphs or tokens specifically.
package symbol

import "fmt"

// ID is a symbol identifier. Its value is drawn from a disjoint union of
// terminal IDs, nonterminal IDs, and the two sentinels EndOfInput and
// Failure. Which sub-range an ID falls in depends on the domain (see
// GlyphTerminalCount and a grammar's own nonterminal count).
type ID uint32

const (
	// EndOfInput is the sentinel ID for the end of a symbol stream. It is
	// the same numeric value in both the glyph and token domains. Both
	// sentinels lie below the largest ID, so a half-open Range can hold
	// either of them.
	EndOfInput ID = 0xFFFFFFFE

	// Failure is the sentinel ID for a symbol that could not be recognized.
	// Carries a position and length but no meaningful identity.
	Failure ID = 0xFFFFFFFD
)

// GlyphTerminalCount is the size of the terminal ID sub-range in the glyph
// domain: T in the spec's "0..T" terminal range. It is the Unicode scalar
// value space; surrogate codepoints 0xD800-0xDFFF are not valid glyph IDs
// but still fall under this bound.
const GlyphTerminalCount ID = 0x110000

// IsSentinel reports whether id is one of the two reserved sentinel values.
func IsSentinel(id ID) bool {
	return id == EndOfInput || id == Failure
}

// Symbol is the uniform interface shared by Glyph and Token. Tables and the
// parse engine operate only in terms of this interface.
type Symbol interface {
	// ID returns the symbol's identifier: a terminal ID, a nonterminal ID,
	// or one of the sentinels EndOfInput/Failure.
	ID() ID

	// Position returns the byte offset into the original source string at
	// which this symbol begins. Failure and end-of-input symbols carry the
	// position the reader was looking at when the event was produced.
	Position() int

	// Length returns the symbol's length in bytes. End-of-input symbols
	// always report a length of 0.
	Length() int
}

// Glyph is a decoded Unicode scalar value with its source position and byte
// length. Glyph IDs below GlyphTerminalCount are codepoints; at and above it
// they are LPR nonterminal IDs (only meaningful inside the lexer's own
// engine runs, never observed by a caller).
type Glyph struct {
	id  ID
	pos int
	len int
}

// NewGlyph constructs a Glyph for codepoint id found at byte offset pos and
// spanning len bytes.
func NewGlyph(id ID, pos, len int) Glyph {
	return Glyph{id: id, pos: pos, len: len}
}

func (g Glyph) ID() ID        { return g.id }
func (g Glyph) Position() int { return g.pos }
func (g Glyph) Length() int   { return g.len }

func (g Glyph) String() string {
	switch g.id {
	case EndOfInput:
		return fmt.Sprintf("<eof>@%d", g.pos)
	case Failure:
		return fmt.Sprintf("<fail>@%d+%d", g.pos, g.len)
	default:
		return fmt.Sprintf("%q@%d", rune(g.id), g.pos)
	}
}

// Token is the lexer's output unit: a normal token bearing an LPR id and
// source span, a failure token, or an end-of-input token. Token IDs below a
// grammar's LPR count are LPR indices; at and above it they are PPR
// nonterminal IDs (only meaningful inside the parser's own engine run).
type Token struct {
	id  ID
	pos int
	len int
}

// NewToken constructs a Token for LPR/PPR id found at byte offset pos and
// spanning len bytes.
func NewToken(id ID, pos, len int) Token {
	return Token{id: id, pos: pos, len: len}
}

func (t Token) ID() ID        { return t.id }
func (t Token) Position() int { return t.pos }
func (t Token) Length() int   { return t.len }

// IsFailure reports whether the token is a failure marker rather than a
// successfully lexed token.
func (t Token) IsFailure() bool { return t.id == Failure }

// IsEndOfInput reports whether the token is the end-of-input sentinel.
func (t Token) IsEndOfInput() bool { return t.id == EndOfInput }

func (t Token) String() string {
	switch t.id {
	case EndOfInput:
		return fmt.Sprintf("<eof>@%d", t.pos)
	case Failure:
		return fmt.Sprintf("<fail>@%d+%d", t.pos, t.len)
	default:
		return fmt.Sprintf("lpr#%d@%d+%d", t.id, t.pos, t.len)
	}
}
