package loader

import (
	"testing"

	"github.com/dekarrin/taul/internal/specbin"
	"github.com/dekarrin/taul/internal/taulerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load_SimpleValidGrammar(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	w := specbin.NewWriter()
	w.LPRDecl("A")
	w.PPRDecl("list")
	w.LPR("A", specbin.QualifierNone)
	w.String("a")
	w.Close()
	w.PPR("list", specbin.QualifierNone)
	w.KleeneStar()
	w.Name("A")
	w.Close()
	w.End()
	w.Close()

	res := Load(w.Done())
	require.False(res.Counter.HasErrors(), "diagnostics: %v", res.Counter.Diagnostics())
	require.NotNil(res.Grammar)

	assert.True(res.Grammar.IsLL1())
	assert.Equal(1, res.Grammar.LPRCount())
	assert.Len(res.Grammar.PPRs(), 1)
}

func Test_Load_StrayClose(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	w := specbin.NewWriter()
	w.Close()

	res := Load(w.Done())
	require.True(res.Counter.HasErrors())
	assert.Nil(res.Grammar)
	assert.Equal(1, res.Counter.Count(taulerr.StrayClose))
}

func Test_Load_UnclosedScope(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	w := specbin.NewWriter()
	w.LPRDecl("A")
	w.PPRDecl("list")
	w.LPR("A", specbin.QualifierNone)
	w.String("a")
	// missing Close for the lpr rule scope

	res := Load(w.Done())
	require.True(res.Counter.HasErrors())
	assert.Nil(res.Grammar)
	assert.Equal(1, res.Counter.Count(taulerr.ScopeNotClosed))
}

func Test_Load_DuplicateRuleName(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	w := specbin.NewWriter()
	w.LPRDecl("A")
	w.LPRDecl("A")

	res := Load(w.Done())
	require.True(res.Counter.HasErrors())
	assert.Nil(res.Grammar)
	assert.Equal(1, res.Counter.Count(taulerr.RuleNameConflict))
}

func Test_Load_UndeclaredReference(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	w := specbin.NewWriter()
	w.LPRDecl("A")
	w.PPRDecl("list")
	w.LPR("A", specbin.QualifierNone)
	w.String("a")
	w.Close()
	w.PPR("list", specbin.QualifierNone)
	w.Name("Missing")
	w.Close()

	res := Load(w.Done())
	require.True(res.Counter.HasErrors())
	assert.Nil(res.Grammar)
}

func Test_Load_AmbiguousAlternation(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	w := specbin.NewWriter()
	w.LPRDecl("A")
	w.PPRDecl("ambiguous")
	w.LPR("A", specbin.QualifierNone)
	w.String("a")
	w.Close()
	w.PPR("ambiguous", specbin.QualifierNone)
	w.Name("A")
	w.Alternative()
	w.Name("A")
	w.Close()

	res := Load(w.Done())
	require.True(res.Counter.HasErrors())
	assert.Nil(res.Grammar)
	assert.Equal(1, res.Counter.Count(taulerr.IllegalAmbiguity))
}

func Test_Load_SingleTerminalScopeViolation(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	w := specbin.NewWriter()
	w.LPRDecl("A")
	w.LPRDecl("B")
	w.PPRDecl("list")
	w.LPR("A", specbin.QualifierNone)
	w.String("a")
	w.Close()
	w.LPR("B", specbin.QualifierNone)
	w.Lookahead()
	w.Name("A")
	w.Name("A")
	w.Close()
	w.Close()
	w.PPR("list", specbin.QualifierNone)
	w.Name("B")
	w.Close()

	res := Load(w.Done())
	require.True(res.Counter.HasErrors())
	assert.Nil(res.Grammar)
	assert.Equal(1, res.Counter.Count(taulerr.IllegalInSingleTerminalScope))
}
