package grammar

import (
	"testing"

	"github.com/dekarrin/taul/internal/specbin"
	"github.com/dekarrin/taul/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSimple constructs a tiny grammar with one LPR (a literal "a") and
// one PPR that matches zero or more of that LPR followed by end-of-input,
// used across several tests below.
func buildSimple(t *testing.T) *Grammar {
	t.Helper()
	require := require.New(t)

	g := New()
	require.NoError(g.DeclareLPR("A"))
	require.NoError(g.DeclarePPR("list"))

	require.NoError(g.DefineLPR("A", specbin.QualifierNone, Lit("a")))
	g.RecordSpelling("a", "A")

	require.NoError(g.DefinePPR("list", specbin.QualifierNone, Seq(Star(Ref("A")), Expr{Kind: ExprEnd})))

	return g
}

func Test_Grammar_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		build     func() *Grammar
		expectErr bool
	}{
		{
			name: "empty grammar",
			build: func() *Grammar {
				return New()
			},
			expectErr: true,
		},
		{
			name: "lpr with no ppr",
			build: func() *Grammar {
				g := New()
				_ = g.DeclareLPR("A")
				_ = g.DefineLPR("A", specbin.QualifierNone, Lit("a"))
				return g
			},
			expectErr: true,
		},
		{
			name: "declared but never defined",
			build: func() *Grammar {
				g := New()
				_ = g.DeclareLPR("A")
				_ = g.DeclarePPR("list")
				_ = g.DefinePPR("list", specbin.QualifierNone, Ref("A"))
				return g
			},
			expectErr: true,
		},
		{
			name: "reference to undeclared rule",
			build: func() *Grammar {
				g := New()
				_ = g.DeclareLPR("A")
				_ = g.DeclarePPR("list")
				_ = g.DefineLPR("A", specbin.QualifierNone, Lit("a"))
				_ = g.DefinePPR("list", specbin.QualifierNone, Ref("Missing"))
				return g
			},
			expectErr: true,
		},
		{
			name:      "valid simple grammar",
			build:     func() *Grammar { return buildSimple(t) },
			expectErr: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			g := tc.build()
			err := g.Validate()
			if tc.expectErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
		})
	}
}

func Test_Grammar_IsLL1_DetectsConflict(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g := New()
	require.NoError(g.DeclareLPR("A"))
	require.NoError(g.DeclarePPR("ambiguous"))
	require.NoError(g.DefineLPR("A", specbin.QualifierNone, Lit("a")))
	g.RecordSpelling("a", "A")

	// both alternatives can start with A: a classic LL(1) conflict.
	require.NoError(g.DefinePPR("ambiguous", specbin.QualifierNone, Alt(Ref("A"), Seq(Ref("A"), Expr{Kind: ExprEnd}))))

	require.NoError(g.Validate())
	assert.False(g.IsLL1())

	_, err := g.LLParseTable()
	assert.Error(err)
}

func Test_Grammar_LLParseTable_SelectsAlternative(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g := New()
	require.NoError(g.DeclareLPR("A"))
	require.NoError(g.DeclareLPR("B"))
	require.NoError(g.DeclarePPR("choice"))
	require.NoError(g.DefineLPR("A", specbin.QualifierNone, Lit("a")))
	require.NoError(g.DefineLPR("B", specbin.QualifierNone, Lit("b")))
	g.RecordSpelling("a", "A")
	g.RecordSpelling("b", "B")

	require.NoError(g.DefinePPR("choice", specbin.QualifierNone, Alt(Ref("A"), Ref("B"))))
	require.NoError(g.Validate())
	assert.True(g.IsLL1())

	pt, err := g.LLParseTable()
	require.NoError(err)

	aID := g.Rule("A").ID(g.LPRCount())
	bID := g.Rule("B").ID(g.LPRCount())

	altForA, ok := pt.Lookup("choice", aID)
	require.True(ok)
	assert.Equal(0, altForA)

	altForB, ok := pt.Lookup("choice", bID)
	require.True(ok)
	assert.Equal(1, altForB)
}

func Test_Grammar_FollowSet_IncludesEndOfInput(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g := buildSimple(t)
	require.NoError(g.Validate())

	list := g.Rule("list")
	require.NotNil(list)
	assert.True(list.Follow.Contains(symbol.EndOfInput))
}

func Test_Grammar_Copy_IsIndependentlyValid(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g := buildSimple(t)
	require.NoError(g.Validate())

	cp := g.Copy()
	assert.True(cp.IsLL1())
	assert.Equal(g.SortedRuleNames(), cp.SortedRuleNames())
}

func Test_Grammar_SortedRuleNames(t *testing.T) {
	assert := assert.New(t)
	g := buildSimple(t)
	assert.Equal([]string{"A", "list"}, g.SortedRuleNames())
}
