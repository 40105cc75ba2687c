package tree

import (
	"testing"

	"github.com/dekarrin/taul/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSample(t *testing.T) Tree {
	t.Helper()
	require := require.New(t)

	b := NewBuilder()
	b.Syntactic("expr")
	b.Lexical("NUM", symbol.NewToken(1, 0, 1))
	b.Syntactic("tail")
	b.Lexical("PLUS", symbol.NewToken(2, 1, 1))
	b.Lexical("NUM", symbol.NewToken(1, 2, 1))
	require.NoError(b.Close()) // tail
	require.NoError(b.Close()) // expr

	tr, err := b.Seal()
	require.NoError(err)
	return tr
}

func Test_Builder_Seal_FailsOnUnclosedNode(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder()
	b.Syntactic("expr")
	_, err := b.Seal()
	assert.Error(err)
}

func Test_Builder_Seal_FailsOnEmptyTree(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder()
	_, err := b.Seal()
	assert.Error(err)
}

func Test_Builder_Close_FailsWithNoOpenNode(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder()
	err := b.Close()
	assert.Error(err)
}

func Test_Builder_Abort_PreventsSeal(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder()
	b.Syntactic("expr")
	b.Abort()
	_, err := b.Seal()
	assert.Error(err)
	assert.True(b.IsAborted())
}

func Test_Tree_Children_And_Span(t *testing.T) {
	assert := assert.New(t)

	tr := buildSample(t)
	root := tr.Root()
	assert.Equal(5, tr.Len())
	assert.Equal(5, tr.At(root).Span)

	rootChildren := tr.Children(root)
	assert.Len(rootChildren, 2)

	tailIdx := rootChildren[1]
	tailChildren := tr.Children(tailIdx)
	assert.Len(tailChildren, 2)
}

func Test_Tree_Equal(t *testing.T) {
	assert := assert.New(t)

	a := buildSample(t)
	b := buildSample(t)
	assert.True(a.Equal(b))
}

type playbackEvent struct {
	kind string
	name string
}

func Test_Playback_IsDeterministic(t *testing.T) {
	assert := assert.New(t)

	tr := buildSample(t)

	record := func() []playbackEvent {
		var events []playbackEvent
		l := &recordingListener{record: &events}
		Playback(tr, l)
		return events
	}

	first := record()
	second := record()
	assert.Equal(first, second)
	assert.Equal("expr", first[0].name)
	assert.Equal("enter", first[0].kind)
}

type recordingListener struct {
	record *[]playbackEvent
}

func (l *recordingListener) Enter(name string) {
	*l.record = append(*l.record, playbackEvent{"enter", name})
}

func (l *recordingListener) Leaf(n Node) {
	*l.record = append(*l.record, playbackEvent{"leaf", n.Name})
}

func (l *recordingListener) Exit(name string) {
	*l.record = append(*l.record, playbackEvent{"exit", name})
}
