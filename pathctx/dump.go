package pathctx

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes one line per node in pre-order, indented by depth:
// kind, token for leaves, depth and leaf index.
func (t *Tree) Dump(w io.Writer) error {
	for id := range t.nodes {
		n := &t.nodes[id]
		indent := strings.Repeat("  ", n.Depth)

		var err error
		if n.IsLeaf() {
			_, err = fmt.Fprintf(w, "%s%s %q depth=%d leaf=%d\n", indent, n.Node.Kind, n.Node.Token, n.Depth, n.LeafIndex)
		} else {
			_, err = fmt.Fprintf(w, "%s%s depth=%d children=%d\n", indent, n.Node.Kind, n.Depth, len(n.Children))
		}
		if err != nil {
			return fmt.Errorf("dump node %d: %w", id, err)
		}
	}
	return nil
}
