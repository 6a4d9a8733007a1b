// Package pathctx extracts path contexts between the leaves of a syntax tree.
//
// A path context is the shortest tree path between two leaves, encoded as the
// start leaf token, an alternating sequence of node tokens and UP/DOWN markers,
// and the end leaf token. Contexts are the input features of code2vec style
// embedding models.
//
// # Tree representation
//
// Extend converts a uast.Node tree into a Tree: a flat arena of AugmentedNode
// values addressed by NodeID. Every node carries its depth, its leaf ordinal
// and a binary-lifting jump table used for O(log depth) ancestor queries.
// Jump entries are arena indices, so the arena is the only owner of nodes.
//
// # Thread Safety
//
// A Tree is read-only after Extend returns and may be queried from multiple
// goroutines. Nothing in this package keeps state between extractions.
package pathctx

import (
	"fmt"

	"github.com/c360studio/code2vec/uast"
)

// NodeID addresses a node in a Tree arena.
type NodeID int

// NoLeaf is the LeafIndex of internal nodes.
const NoLeaf = -1

// noNode marks the absent parent of the root.
const noNode NodeID = -1

// AugmentedNode wraps a uast.Node with the data needed for path extraction.
type AugmentedNode struct {
	// Node is the wrapped parser node
	Node *uast.Node

	// Depth is 0 for the root, parent depth + 1 otherwise
	Depth int

	// LeafIndex is the left-to-right ordinal of a leaf, NoLeaf for internal nodes
	LeafIndex int

	// Children in the same order as Node.Children
	Children []NodeID

	// Jumps[i] is the ancestor 2^i levels above. Jumps[0] is the parent.
	// The root has no jumps.
	Jumps []NodeID
}

// IsLeaf reports whether the node has no children.
func (n *AugmentedNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// Tree is an augmented syntax tree stored as a pre-order arena.
// The root, when present, is NodeID 0.
type Tree struct {
	nodes  []AugmentedNode
	leaves []NodeID
}

// Len returns the number of nodes. An empty tree has no paths.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the augmented node for id.
// It panics if id is out of range, like a slice index.
func (t *Tree) Node(id NodeID) *AugmentedNode {
	return &t.nodes[id]
}

// Leaves returns the leaf ids in left-to-right order.
func (t *Tree) Leaves() []NodeID {
	return t.leaves
}

// Leaf returns the id of the leaf with the given ordinal.
func (t *Tree) Leaf(index int) NodeID {
	return t.leaves[index]
}

// Parent returns the parent of id and false for the root.
func (t *Tree) Parent(id NodeID) (NodeID, bool) {
	jumps := t.nodes[id].Jumps
	if len(jumps) == 0 {
		return noNode, false
	}
	return jumps[0], true
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Extend builds the augmented tree for root.
//
// A nil root or a root without children yields an empty tree: a single node
// has no leaf pairs. Traversal is iterative so arbitrarily deep trees do not
// exhaust the goroutine stack. Returns ErrTree when the input shares nodes
// between parents, contains a cycle or has nil children.
func Extend(root *uast.Node) (*Tree, error) {
	t := &Tree{}
	if root == nil || len(root.Children) == 0 {
		return t, nil
	}

	if err := t.number(root); err != nil {
		return nil, err
	}
	t.annotateJumps()

	return t, nil
}

// number assigns ids, depths and leaf indices in one depth-first,
// left-to-right pass. Ids are pre-order, so every parent precedes its children.
func (t *Tree) number(root *uast.Node) error {
	type frame struct {
		node   *uast.Node
		parent NodeID
		depth  int
	}

	seen := make(map[*uast.Node]struct{})
	stack := []frame{{node: root, parent: noNode}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, dup := seen[f.node]; dup {
			return fmt.Errorf("node %q at depth %d reached twice: %w", f.node.Kind, f.depth, ErrTree)
		}
		seen[f.node] = struct{}{}

		id := NodeID(len(t.nodes))
		an := AugmentedNode{Node: f.node, Depth: f.depth, LeafIndex: NoLeaf}
		if f.parent != noNode {
			an.Jumps = []NodeID{f.parent}
			// Children are popped left to right, so appending keeps source order.
			t.nodes[f.parent].Children = append(t.nodes[f.parent].Children, id)
		}
		if f.node.IsLeaf() {
			an.LeafIndex = len(t.leaves)
			t.leaves = append(t.leaves, id)
		} else {
			an.Children = make([]NodeID, 0, len(f.node.Children))
		}
		t.nodes = append(t.nodes, an)

		for i := len(f.node.Children) - 1; i >= 0; i-- {
			child := f.node.Children[i]
			if child == nil {
				return fmt.Errorf("child %d of %q is nil: %w", i, f.node.Kind, ErrTree)
			}
			stack = append(stack, frame{node: child, parent: id, depth: f.depth + 1})
		}
	}

	return nil
}

// annotateJumps fills jump tables by doubling. Pre-order guarantees every
// ancestor's table is complete before its descendants are visited.
func (t *Tree) annotateJumps() {
	for id := range t.nodes {
		n := &t.nodes[id]
		if len(n.Jumps) == 0 {
			continue
		}
		for i := 1; ; i++ {
			mid := &t.nodes[n.Jumps[i-1]]
			if len(mid.Jumps) < i {
				break
			}
			n.Jumps = append(n.Jumps, mid.Jumps[i-1])
		}
	}
}
