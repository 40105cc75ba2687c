// Package tree holds the parse tree produced by a parser pipeline: a flat,
// append-only sequence of node events rather than a pointer-linked
// structure. Pre-order layout with a per-node subtree span lets callers
// walk, skip, and slice subtrees with arithmetic on a single index instead
// of dereferencing child pointers, and lets a Builder append nodes without
// ever reallocating an existing one.
package tree

import (
	"fmt"
	"strings"

	"github.com/dekarrin/taul/symbol"
)

// Node is one entry in a Tree's flat event list, in pre-order: a node
// always precedes all of its descendants, and its index plus its Span
// (inclusive of itself) gives the index one past its last descendant.
type Node struct {
	// Terminal is whether this node represents a matched terminal (a
	// token) rather than an expanded nonterminal (a PPR).
	Terminal bool

	// Name is the PPR name for a nonterminal node, or the LPR name whose
	// token this leaf holds.
	Name string

	// Token is the matched token, valid only when Terminal is true.
	Token symbol.Token

	// Span is the number of nodes in this node's subtree, itself included.
	// A leaf always has Span 1. index+Span is the index of this node's next
	// sibling, or the index one past the tree's last node if there is none.
	Span int
}

// Tree is an immutable, already-built parse tree: the sealed output of a
// Builder. The zero value is an empty tree.
type Tree struct {
	nodes []Node
}

// Root returns the index of the tree's root node, 0, or -1 if the tree is
// empty.
func (t Tree) Root() int {
	if len(t.nodes) == 0 {
		return -1
	}
	return 0
}

// Len returns the total node count across the whole tree.
func (t Tree) Len() int { return len(t.nodes) }

// At returns the node at index i.
func (t Tree) At(i int) Node { return t.nodes[i] }

// Children returns the indices of i's direct children, in order, by
// walking i's subtree one sibling span at a time.
func (t Tree) Children(i int) []int {
	node := t.nodes[i]
	end := i + node.Span
	var children []int
	for c := i + 1; c < end; c += t.nodes[c].Span {
		children = append(children, c)
	}
	return children
}

// NextSibling returns the index of i's next sibling, or -1 if i has none
// within its subtree span of end (the caller's own subtree end, or
// t.Len() for a root-level i).
func (t Tree) NextSibling(i, end int) int {
	next := i + t.nodes[i].Span
	if next >= end {
		return -1
	}
	return next
}

// String returns a prettified, line-by-line representation of the tree,
// suitable for structural comparison in tests.
func (t Tree) String() string {
	if len(t.nodes) == 0 {
		return "(empty)"
	}
	var sb strings.Builder
	t.writeNode(&sb, t.Root(), t.Len(), "", "")
	return sb.String()
}

func (t Tree) writeNode(sb *strings.Builder, i, end int, firstPrefix, contPrefix string) {
	sb.WriteString(firstPrefix)
	node := t.nodes[i]
	if node.Terminal {
		fmt.Fprintf(sb, "(TERM %s %q)", node.Name, node.Token)
	} else {
		fmt.Fprintf(sb, "( %s )", node.Name)
	}

	children := t.Children(i)
	for idx, c := range children {
		sb.WriteRune('\n')
		var childFirst, childCont string
		if idx+1 < len(children) {
			childFirst = contPrefix + "  |---: "
			childCont = contPrefix + "  |     "
		} else {
			childFirst = contPrefix + `  \---: `
			childCont = contPrefix + "        "
		}
		t.writeNode(sb, c, i+node.Span, childFirst, childCont)
	}
}

// Equal reports whether t and o have identical structure: same node count,
// and every node equal in Terminal/Name/Token/Span at the same index.
func (t Tree) Equal(o Tree) bool {
	if len(t.nodes) != len(o.nodes) {
		return false
	}
	for i := range t.nodes {
		a, b := t.nodes[i], o.nodes[i]
		if a.Terminal != b.Terminal || a.Name != b.Name || a.Span != b.Span {
			return false
		}
		if a.Terminal && a.Token != b.Token {
			return false
		}
	}
	return true
}
