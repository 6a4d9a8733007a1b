// Package uast provides the syntax tree consumed by path-context extraction and the
// parsers that produce it from source files.
package uast

import (
	"crypto/sha256"
	"encoding/hex"
)

// Node is a parser-produced syntax tree node.
// Nodes must not be mutated once a parser has returned them.
type Node struct {
	// Kind is the syntactic type of the node (e.g. "identifier", "call_expression")
	Kind string

	// Token is the literal source text, usually only set on leaves
	Token string

	// Roles are the semantic roles the parent assigns to this node
	Roles []string

	// Children in source order
	Children []*Node
}

// NewLeaf creates a leaf node with a token.
func NewLeaf(kind, token string, roles ...string) *Node {
	return &Node{Kind: kind, Token: token, Roles: roles}
}

// NewNode creates an internal node with the given children.
func NewNode(kind string, children ...*Node) *Node {
	return &Node{Kind: kind, Children: children}
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Count returns the number of nodes in the tree rooted at n.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	count := 0
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		for _, child := range cur.Children {
			if child != nil {
				stack = append(stack, child)
			}
		}
	}
	return count
}

// ComputeHash returns the hex-encoded sha256 of content, used for change detection.
func ComputeHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
