package decode

import (
	"testing"

	"github.com/dekarrin/taul/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Decoder_Next_DecodesASCII(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	d, err := New([]byte("ab"), AutoBOM)
	require.NoError(err)

	g1 := d.Next()
	assert.Equal(symbol.ID('a'), g1.ID())
	assert.Equal(0, g1.Position())

	g2 := d.Next()
	assert.Equal(symbol.ID('b'), g2.ID())
	assert.Equal(1, g2.Position())

	g3 := d.Next()
	assert.True(g3.ID() == symbol.EndOfInput)
}

func Test_Decoder_Next_DecodesMultibyteRune(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	d, err := New([]byte("é"), AutoBOM)
	require.NoError(err)

	g := d.Next()
	assert.Equal(symbol.ID('é'), g.ID())
	assert.Equal(2, g.Length())
}

func Test_Decoder_Next_ReportsFailureOnInvalidByte(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	d, err := New([]byte{0xFF, 'a'}, AutoBOM)
	require.NoError(err)

	g := d.Next()
	assert.True(g.ID() == symbol.Failure)
	assert.Equal(1, g.Length())

	g2 := d.Next()
	assert.Equal(symbol.ID('a'), g2.ID())
}

func Test_Decoder_AutoBOM_StripsLeadingBOM(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	src := append([]byte{0xEF, 0xBB, 0xBF}, "x"...)
	d, err := New(src, AutoBOM)
	require.NoError(err)

	g := d.Next()
	assert.Equal(symbol.ID('x'), g.ID())
	assert.Equal(3, g.Position())
}

func Test_Decoder_RequireBOM_FailsWithoutBOM(t *testing.T) {
	assert := assert.New(t)

	_, err := New([]byte("no bom here"), RequireBOM)
	assert.Error(err)
}

func Test_Decoder_RequireBOM_SucceedsWithBOM(t *testing.T) {
	require := require.New(t)
	src := append([]byte{0xEF, 0xBB, 0xBF}, "x"...)
	_, err := New(src, RequireBOM)
	require.NoError(err)
}
