package tree

// Listener receives a depth-first, pre-order walk of a Tree's nodes: Enter
// for a nonterminal's opening, Leaf for a terminal, and Exit when a
// nonterminal's subtree is fully walked. Playback of the same Tree through
// the same Listener implementation always produces the same sequence of
// calls: Playback's determinism rests entirely on Tree being immutable and
// the walk order being fixed pre-order.
type Listener interface {
	Enter(name string)
	Leaf(node Node)
	Exit(name string)
}

// Playback walks t depth-first, pre-order, driving l.
func Playback(t Tree, l Listener) {
	if t.Len() == 0 {
		return
	}
	playbackRange(t, t.Root(), t.Len(), l)
}

func playbackRange(t Tree, i, end int, l Listener) {
	node := t.At(i)
	if node.Terminal {
		l.Leaf(node)
		return
	}
	l.Enter(node.Name)
	subtreeEnd := i + node.Span
	for c := i + 1; c < subtreeEnd; c += t.At(c).Span {
		playbackRange(t, c, subtreeEnd, l)
	}
	l.Exit(node.Name)
}
