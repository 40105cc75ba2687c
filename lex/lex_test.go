package lex

import (
	"testing"

	"github.com/dekarrin/taul/internal/decode"
	"github.com/dekarrin/taul/internal/specbin"
	"github.com/dekarrin/taul/loader"
	"github.com/dekarrin/taul/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildLexer assembles a small grammar directly from spec-binary
// instructions (mirroring loader_test.go's approach) and returns a Lexer
// reading src against it. The grammar has three LPRs: WS (skip-qualified
// whitespace run), NUM (a digit run) and ID (a letter run), plus a single
// PPR so the grammar is structurally complete.
func buildLexer(t *testing.T, src string) *Lexer {
	t.Helper()
	require := require.New(t)

	w := specbin.NewWriter()
	w.LPRDecl("WS")
	w.LPRDecl("NUM")
	w.LPRDecl("ID")
	w.PPRDecl("list")

	w.LPR("WS", specbin.QualifierSkip)
	w.KleenePlus()
	w.Charset(" \t")
	w.Close()
	w.Close()

	w.LPR("NUM", specbin.QualifierNone)
	w.KleenePlus()
	w.Charset("0-9")
	w.Close()
	w.Close()

	w.LPR("ID", specbin.QualifierNone)
	w.KleenePlus()
	w.Charset("a-zA-Z")
	w.Close()
	w.Close()

	w.PPR("list", specbin.QualifierNone)
	w.KleeneStar()
	w.Name("NUM")
	w.Close()
	w.Close()

	res := loader.Load(w.Done())
	require.False(res.Counter.HasErrors(), "diagnostics: %v", res.Counter.Diagnostics())
	require.NotNil(res.Grammar)

	dec, err := decode.New([]byte(src), decode.AutoBOM)
	require.NoError(err)

	return New(res.Grammar, dec)
}

func Test_Lexer_Next_SimpleTokenSequence(t *testing.T) {
	assert := assert.New(t)

	lx := buildLexer(t, "12 ab")

	tok1 := lx.Next()
	assert.False(tok1.IsFailure())
	assert.Equal(0, tok1.Position())
	assert.Equal(2, tok1.Length())

	tok2 := lx.Next()
	assert.False(tok2.IsFailure())
	assert.Equal(3, tok2.Position())
	assert.Equal(2, tok2.Length())

	tok3 := lx.Next()
	assert.True(tok3.IsEndOfInput())
}

func Test_Lexer_Next_SkipsWhitespaceWithoutEmitting(t *testing.T) {
	assert := assert.New(t)

	lx := buildLexer(t, "  12")

	tok := lx.Next()
	assert.False(tok.IsFailure())
	assert.Equal(2, tok.Position())
	assert.Equal(2, tok.Length())

	end := lx.Next()
	assert.True(end.IsEndOfInput())
}

func Test_Lexer_Next_CoalescesContiguousFailures(t *testing.T) {
	assert := assert.New(t)

	lx := buildLexer(t, "!@#12")

	fail := lx.Next()
	assert.True(fail.IsFailure())
	assert.Equal(0, fail.Position())
	assert.Equal(3, fail.Length())

	num := lx.Next()
	assert.False(num.IsFailure())
	assert.Equal(3, num.Position())
	assert.Equal(2, num.Length())

	end := lx.Next()
	assert.True(end.IsEndOfInput())
}

func Test_Lexer_Next_FailureRunAtEndOfInput(t *testing.T) {
	assert := assert.New(t)

	lx := buildLexer(t, "12!@")

	num := lx.Next()
	assert.False(num.IsFailure())
	assert.Equal(0, num.Position())

	fail := lx.Next()
	assert.True(fail.IsFailure())
	assert.Equal(2, fail.Position())
	assert.Equal(2, fail.Length())

	end := lx.Next()
	assert.True(end.IsEndOfInput())
}

func Test_Lexer_Next_EmptyInputYieldsEndOfInput(t *testing.T) {
	assert := assert.New(t)

	lx := buildLexer(t, "")
	tok := lx.Next()
	assert.True(tok.IsEndOfInput())
	assert.Equal(symbol.EndOfInput, tok.ID())
}

func Test_Lexer_Next_SplitsAdjacentRunsAtRuleBoundaries(t *testing.T) {
	assert := assert.New(t)

	// NUM and ID never overlap in FIRST, but this exercises bestMatch
	// picking the single applicable rule across a mixed run boundary.
	lx := buildLexer(t, "123abc456")

	tok1 := lx.Next()
	assert.Equal(0, tok1.Position())
	assert.Equal(3, tok1.Length())

	tok2 := lx.Next()
	assert.Equal(3, tok2.Position())
	assert.Equal(3, tok2.Length())

	tok3 := lx.Next()
	assert.Equal(6, tok3.Position())
	assert.Equal(3, tok3.Length())

	end := lx.Next()
	assert.True(end.IsEndOfInput())
}
