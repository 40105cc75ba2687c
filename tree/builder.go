package tree

import (
	"fmt"

	"github.com/dekarrin/taul/symbol"
)

// Builder assembles a Tree by appending nodes in pre-order: nonterminal
// nodes are opened with Syntactic and must later be balanced by Close;
// terminal nodes are appended directly with Lexical. The zero value is
// ready to use.
type Builder struct {
	nodes   []Node
	open    []int // indices of currently-open (unclosed) nonterminal nodes
	sealed  bool
	aborted bool
}

// NewBuilder returns an empty, ready-to-use Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Lexical appends a terminal leaf node holding tok, recognized under LPR
// name.
func (b *Builder) Lexical(name string, tok symbol.Token) {
	if b.sealed || b.aborted {
		return
	}
	b.nodes = append(b.nodes, Node{Terminal: true, Name: name, Token: tok, Span: 1})
}

// Syntactic opens a nonterminal node named name (a PPR), to be closed later
// by Close. Returns the node's index so a caller can correlate it with a
// later Close if needed.
func (b *Builder) Syntactic(name string) int {
	if b.sealed || b.aborted {
		return -1
	}
	idx := len(b.nodes)
	b.nodes = append(b.nodes, Node{Terminal: false, Name: name, Span: 0})
	b.open = append(b.open, idx)
	return idx
}

// Close closes the innermost open Syntactic node, setting its Span to
// cover every node appended since it was opened.
func (b *Builder) Close() error {
	if b.sealed || b.aborted {
		return nil
	}
	if len(b.open) == 0 {
		return fmt.Errorf("tree: close with no open syntactic node")
	}
	idx := b.open[len(b.open)-1]
	b.open = b.open[:len(b.open)-1]
	b.nodes[idx].Span = len(b.nodes) - idx
	return nil
}

// Abort marks the tree as abandoned: further Lexical/Syntactic/Close calls
// are no-ops, and Seal will fail.
func (b *Builder) Abort() {
	b.aborted = true
}

// IsAborted reports whether Abort has been called.
func (b *Builder) IsAborted() bool { return b.aborted }

// IsSealed reports whether Seal has already succeeded.
func (b *Builder) IsSealed() bool { return b.sealed }

// Seal finalizes the builder into an immutable Tree. It fails if the
// builder was aborted, has unclosed Syntactic nodes, or produced no nodes
// at all.
func (b *Builder) Seal() (Tree, error) {
	if b.aborted {
		return Tree{}, fmt.Errorf("tree: cannot seal an aborted builder")
	}
	if len(b.open) > 0 {
		return Tree{}, fmt.Errorf("tree: %d syntactic node(s) left unclosed", len(b.open))
	}
	if len(b.nodes) == 0 {
		return Tree{}, fmt.Errorf("tree: cannot seal an empty tree")
	}
	b.sealed = true
	return Tree{nodes: b.nodes}, nil
}
