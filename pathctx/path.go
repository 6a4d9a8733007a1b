package pathctx

import (
	"strconv"
	"strings"

	"github.com/c360studio/code2vec/uast"
)

// Marker is a direction marker between two nodes of a path.
type Marker string

// Direction markers. UP means the next node is the parent of the previous one,
// DOWN means it is a child.
const (
	Up   Marker = "UP"
	Down Marker = "DOWN"
)

// Element is one step of a structural path: a node reference or a marker.
type Element struct {
	// Node is set when Marker is empty
	Node NodeID

	// Marker is set for direction steps
	Marker Marker
}

// IsMarker reports whether the element is a direction marker.
func (e Element) IsMarker() bool {
	return e.Marker != ""
}

func nodeElement(id NodeID) Element {
	return Element{Node: id}
}

func markerElement(m Marker) Element {
	return Element{Node: noNode, Marker: m}
}

// TokenFunc maps a node to its string representation in a path.
type TokenFunc func(n *uast.Node) string

// BuildPath returns the path from leaf u to leaf v through their least common
// ancestor. The sequence walks up from u to ancestor, emitting each node
// followed by Up, then down to v, emitting Down before each node. Start and
// end tokens are leafToken applied to u and v.
func (t *Tree) BuildPath(u, v, ancestor NodeID, leafToken TokenFunc) (string, []Element, string) {
	start, end := leafToken(t.nodes[u].Node), leafToken(t.nodes[v].Node)

	size := 2*t.Distance(u, v, ancestor) + 1
	path := make([]Element, 0, size)

	for cur := u; cur != ancestor; cur = t.nodes[cur].Jumps[0] {
		path = append(path, nodeElement(cur), markerElement(Up))
	}
	path = append(path, nodeElement(ancestor))

	down := make([]Element, 0, size-len(path))
	for cur := v; cur != ancestor; cur = t.nodes[cur].Jumps[0] {
		down = append(down, nodeElement(cur), markerElement(Down))
	}
	for i := len(down) - 1; i >= 0; i-- {
		path = append(path, down[i])
	}

	return start, path, end
}

// Render maps node elements through tokenFn. Markers pass through unchanged.
func (t *Tree) Render(path []Element, tokenFn TokenFunc) []string {
	out := make([]string, len(path))
	for i, e := range path {
		if e.IsMarker() {
			out[i] = string(e.Marker)
			continue
		}
		out[i] = tokenFn(t.nodes[e.Node].Node)
	}
	return out
}

// PathContext is a (start token, path, end token) triple.
// Treat values as immutable: Path is shared with every copy.
type PathContext struct {
	Start string
	Path  []string
	End   string
}

// Equal reports structural equality over the full triple.
func (pc PathContext) Equal(other PathContext) bool {
	if pc.Start != other.Start || pc.End != other.End || len(pc.Path) != len(other.Path) {
		return false
	}
	for i := range pc.Path {
		if pc.Path[i] != other.Path[i] {
			return false
		}
	}
	return true
}

// Key returns an unambiguous encoding of the triple, usable as a map key.
// Every component is length-prefixed so tokens containing separators never
// collide.
func (pc PathContext) Key() string {
	var b strings.Builder
	writeField := func(s string) {
		b.WriteString(strconv.Itoa(len(s)))
		b.WriteByte(':')
		b.WriteString(s)
	}

	writeField(pc.Start)
	b.WriteString(strconv.Itoa(len(pc.Path)))
	b.WriteByte('|')
	for _, tok := range pc.Path {
		writeField(tok)
	}
	writeField(pc.End)
	return b.String()
}

// PathString joins the path tokens with single spaces.
func (pc PathContext) PathString() string {
	return strings.Join(pc.Path, " ")
}

// String renders the context as "start,path,end".
func (pc PathContext) String() string {
	return pc.Start + "," + pc.PathString() + "," + pc.End
}
