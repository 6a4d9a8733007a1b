package uast

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// ErrEmptyTree is returned when a parser produces no root node.
var ErrEmptyTree = errors.New("parser returned an empty tree")

// ConvertOptions controls how tree-sitter nodes are mapped onto Nodes.
type ConvertOptions struct {
	// IncludeAnonymous keeps anonymous tokens (punctuation, keywords) as leaves.
	// By default only named nodes are kept.
	IncludeAnonymous bool
}

// SitterParser parses source using a tree-sitter grammar.
type SitterParser struct {
	name     string
	language *sitter.Language
	opts     ConvertOptions
}

// NewSitterParser creates a parser for the given tree-sitter language.
func NewSitterParser(name string, language *sitter.Language, opts ConvertOptions) *SitterParser {
	return &SitterParser{name: name, language: language, opts: opts}
}

// Language returns the registered language name.
func (p *SitterParser) Language() string {
	return p.name
}

// Parse parses content with tree-sitter and converts the result.
// A fresh sitter.Parser is used per call since they are not safe for concurrent use.
func (p *SitterParser) Parse(ctx context.Context, content []byte) (*Node, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(p.language)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", p.name, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, ErrEmptyTree
	}
	return FromSitter(root, content, p.opts), nil
}

// FromSitter converts a tree-sitter node tree into a Node tree.
// Kind is the grammar type, leaves carry their source text as Token and
// field names assigned by the parent become Roles.
func FromSitter(root *sitter.Node, src []byte, opts ConvertOptions) *Node {
	type frame struct {
		sn  *sitter.Node
		out *Node
	}

	out := &Node{Kind: root.Type()}
	stack := []frame{{sn: root, out: out}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		count := int(f.sn.ChildCount())
		for i := 0; i < count; i++ {
			child := f.sn.Child(i)
			if child == nil {
				continue
			}
			if !child.IsNamed() && !opts.IncludeAnonymous {
				continue
			}

			node := &Node{Kind: child.Type()}
			if field := f.sn.FieldNameForChild(i); field != "" {
				node.Roles = []string{field}
			}
			f.out.Children = append(f.out.Children, node)
			stack = append(stack, frame{sn: child, out: node})
		}

		if len(f.out.Children) == 0 {
			f.out.Token = f.sn.Content(src)
		}
	}

	return out
}
