package pathctx

import "fmt"

// LCA returns the least common ancestor of u and v using the jump tables.
//
// The deeper node is lifted to the depth of the other without overshooting,
// then both are lifted together while their jump targets differ. The parent
// of the converged pair is the answer. LCA(u, u) is u.
func (t *Tree) LCA(u, v NodeID) (NodeID, error) {
	if !t.valid(u) || !t.valid(v) {
		return noNode, fmt.Errorf("lca of %d and %d: node out of range: %w", u, v, ErrTree)
	}

	if t.nodes[u].Depth < t.nodes[v].Depth {
		u, v = v, u
	}

	target := t.nodes[v].Depth
	for i := len(t.nodes[u].Jumps) - 1; i >= 0; i-- {
		jumps := t.nodes[u].Jumps
		if i < len(jumps) && t.nodes[jumps[i]].Depth >= target {
			u = jumps[i]
		}
	}

	if t.nodes[u].Depth != target {
		return noNode, fmt.Errorf("lift %d to depth %d stopped at %d: %w", u, target, t.nodes[u].Depth, ErrInvariant)
	}
	if u == v {
		return u, nil
	}

	for i := len(t.nodes[u].Jumps) - 1; i >= 0; i-- {
		ju, jv := t.nodes[u].Jumps, t.nodes[v].Jumps
		if i < len(ju) && i < len(jv) && ju[i] != jv[i] {
			u, v = ju[i], jv[i]
		}
	}

	pu, okU := t.Parent(u)
	pv, okV := t.Parent(v)
	if !okU || !okV || pu != pv {
		return noNode, fmt.Errorf("nodes %d and %d have no common parent: %w", u, v, ErrInvariant)
	}

	return pu, nil
}

// Distance returns the number of edges between u and v given their least
// common ancestor. With any other common ancestor the result is an upper bound.
func (t *Tree) Distance(u, v, ancestor NodeID) int {
	return t.nodes[u].Depth + t.nodes[v].Depth - 2*t.nodes[ancestor].Depth
}
