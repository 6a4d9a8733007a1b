package pathctx

import (
	"fmt"
	"math/rand"

	"github.com/c360studio/code2vec/uast"
)

// randomTree builds a tree of size nodes where every node after the first
// picks a random earlier node as parent.
func randomTree(rng *rand.Rand, size int) *uast.Node {
	nodes := make([]*uast.Node, size)
	nodes[0] = &uast.Node{Kind: "root"}
	for i := 1; i < size; i++ {
		nodes[i] = &uast.Node{Kind: fmt.Sprintf("k%d", rng.Intn(4))}
		parent := nodes[rng.Intn(i)]
		parent.Children = append(parent.Children, nodes[i])
	}
	for i, n := range nodes {
		if n.IsLeaf() {
			n.Token = fmt.Sprintf("t%d", i)
		}
	}
	return nodes[0]
}

// chain builds a root with a single path of depth internal nodes ending in two leaves.
func chain(depth int) *uast.Node {
	root := &uast.Node{Kind: "root"}
	cur := root
	for i := 0; i < depth; i++ {
		next := &uast.Node{Kind: "link"}
		cur.Children = []*uast.Node{next}
		cur = next
	}
	cur.Children = []*uast.Node{uast.NewLeaf("id", "a"), uast.NewLeaf("id", "b")}
	return root
}

// naiveLCA walks both nodes up to the root and returns the first shared ancestor.
func naiveLCA(t *Tree, u, v NodeID) NodeID {
	seen := make(map[NodeID]bool)
	for cur := u; ; {
		seen[cur] = true
		p, ok := t.Parent(cur)
		if !ok {
			break
		}
		cur = p
	}
	for cur := v; ; {
		if seen[cur] {
			return cur
		}
		p, ok := t.Parent(cur)
		if !ok {
			return noNode
		}
		cur = p
	}
}

// naiveDistance counts edges by walking to the root.
func naiveDistance(t *Tree, u, v NodeID) int {
	up := make(map[NodeID]int)
	d := 0
	for cur := u; ; d++ {
		up[cur] = d
		p, ok := t.Parent(cur)
		if !ok {
			break
		}
		cur = p
	}
	d = 0
	for cur := v; ; d++ {
		if du, ok := up[cur]; ok {
			return du + d
		}
		cur, _ = t.Parent(cur)
	}
}

func defaultOptions(maxLength, maxWidth int) Options {
	return Options{
		MaxLength:     maxLength,
		MaxWidth:      maxWidth,
		TokenFunc:     KindToken,
		LeafTokenFunc: LeafText,
	}
}
