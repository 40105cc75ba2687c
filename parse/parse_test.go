package parse

import (
	"testing"

	"github.com/dekarrin/taul/internal/decode"
	"github.com/dekarrin/taul/internal/specbin"
	"github.com/dekarrin/taul/lex"
	"github.com/dekarrin/taul/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildExprParser assembles a small "NUM (PLUS NUM)*" grammar: NUM is a
// digit run, PLUS is the literal "+", WS (space runs) is skip-qualified.
func buildExprParser(t *testing.T) *Parser {
	t.Helper()
	require := require.New(t)

	w := specbin.NewWriter()
	w.LPRDecl("NUM")
	w.LPRDecl("PLUS")
	w.LPRDecl("WS")
	w.PPRDecl("expr")

	w.LPR("NUM", specbin.QualifierNone)
	w.KleenePlus()
	w.Charset("0-9")
	w.Close()
	w.Close()

	w.LPR("PLUS", specbin.QualifierNone)
	w.String("+")
	w.Close()

	w.LPR("WS", specbin.QualifierSkip)
	w.KleenePlus()
	w.Charset(" ")
	w.Close()
	w.Close()

	w.PPR("expr", specbin.QualifierNone)
	w.Name("NUM")
	w.KleeneStar()
	w.Sequence()
	w.Name("PLUS")
	w.Name("NUM")
	w.Close()
	w.Close()
	w.End()
	w.Close()

	res := loader.Load(w.Done())
	require.False(res.Counter.HasErrors(), "diagnostics: %v", res.Counter.Diagnostics())
	require.NotNil(res.Grammar)

	p, err := New(res.Grammar)
	require.NoError(err)
	return p
}

func lexerFor(t *testing.T, p *Parser, src string) *lex.Lexer {
	t.Helper()
	require := require.New(t)
	dec, err := decode.New([]byte(src), decode.AutoBOM)
	require.NoError(err)
	return lex.New(p.g, dec)
}

func Test_Parser_Parse_SingleNumber(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	p := buildExprParser(t)
	tr, err := p.ParseStart(lexerFor(t, p, "42"))
	require.NoError(err)

	root := tr.At(tr.Root())
	assert.False(root.Terminal)
	assert.Equal("expr", root.Name)

	children := tr.Children(tr.Root())
	require.Len(children, 2) // NUM, end-of-input
	num := tr.At(children[0])
	assert.True(num.Terminal)
	assert.Equal("NUM", num.Name)
	assert.Equal(0, num.Token.Position())
	assert.Equal(2, num.Token.Length())
}

func Test_Parser_Parse_ChainedAdditionSkipsWhitespace(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	p := buildExprParser(t)
	tr, err := p.ParseStart(lexerFor(t, p, "1 + 2 + 3"))
	require.NoError(err)

	var names []string
	for _, c := range tr.Children(tr.Root()) {
		names = append(names, tr.At(c).Name)
	}
	assert.Equal([]string{"NUM", "PLUS", "NUM", "PLUS", "NUM", "<eof>"}, names)
}

func Test_Parser_Parse_FailsOnUnexpectedToken(t *testing.T) {
	require := require.New(t)

	p := buildExprParser(t)
	_, err := p.ParseStart(lexerFor(t, p, "+1"))
	require.Error(err)
}

func Test_Parser_Parse_RejectsUnknownPPR(t *testing.T) {
	require := require.New(t)

	p := buildExprParser(t)
	_, err := p.Parse(lexerFor(t, p, "1"), "nonexistent")
	require.Error(err)
}
