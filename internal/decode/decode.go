// Package decode turns raw source bytes into the glyph stream the lexer
// consumes: UTF-8 text, optionally BOM-prefixed, decoded one Unicode scalar
// value at a time with its byte position and length.
package decode

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/dekarrin/taul/symbol"
)

// Mode controls how a leading byte-order mark is handled.
type Mode int

const (
	// AutoBOM strips a leading UTF-8 BOM if present, and decodes normally
	// if absent. The default mode.
	AutoBOM Mode = iota

	// RequireBOM fails unless the source begins with a UTF-8 BOM.
	RequireBOM
)

type decodeError string

func (e decodeError) Error() string { return string(e) }

var errNoBOM = decodeError("source does not begin with a UTF-8 byte-order mark")

// Decoder decodes a byte slice into glyphs on demand.
type Decoder struct {
	src []byte
	pos int
}

// New returns a Decoder over src using mode. Under AutoBOM a leading UTF-8
// BOM is transformed away before decoding begins, via
// unicode.BOMOverride, so Position always reports offsets into the
// original (BOM-included) src. Under RequireBOM, New fails if src does not
// begin with a BOM.
func New(src []byte, mode Mode) (*Decoder, error) {
	hasBOM := len(src) >= 3 && src[0] == 0xEF && src[1] == 0xBB && src[2] == 0xBF

	if mode == RequireBOM && !hasBOM {
		return nil, errNoBOM
	}

	d := &Decoder{src: src}
	if hasBOM {
		// BOMOverride's Fallback is UTF-8, so a present BOM is simply
		// consumed; we only need it to tell us how many bytes to skip,
		// since Decoder otherwise works directly on the original slice to
		// keep byte positions stable.
		stripped, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), src)
		if err != nil {
			return nil, err
		}
		d.pos = len(src) - len(stripped)
	}
	return d, nil
}

// Done reports whether the Decoder has consumed the entire source.
func (d *Decoder) Done() bool { return d.pos >= len(d.src) }

// Next decodes and returns the glyph at the current position, advancing
// past it. At end of input it returns a Glyph bearing symbol.EndOfInput.
// Invalid UTF-8 is reported as a Glyph bearing symbol.Failure, with Length
// 1 so the caller advances past the single bad byte.
func (d *Decoder) Next() symbol.Glyph {
	if d.Done() {
		return symbol.NewGlyph(symbol.EndOfInput, d.pos, 0)
	}
	r, size := utf8.DecodeRune(d.src[d.pos:])
	if r == utf8.RuneError && size <= 1 {
		g := symbol.NewGlyph(symbol.Failure, d.pos, 1)
		d.pos++
		return g
	}
	g := symbol.NewGlyph(symbol.ID(r), d.pos, size)
	d.pos += size
	return g
}

// Position returns the current byte offset into the source.
func (d *Decoder) Position() int { return d.pos }
