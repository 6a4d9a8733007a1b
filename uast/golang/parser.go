// Package golang provides a Go parser for path-context extraction.
package golang

import (
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/c360studio/code2vec/uast"
)

// Name is the registered language name.
const Name = "go"

func init() {
	uast.DefaultRegistry.Register(Name, []string{".go"}, func(opts uast.ConvertOptions) uast.Parser {
		return NewParser(opts)
	})
}

// NewParser creates a tree-sitter backed Go parser.
func NewParser(opts uast.ConvertOptions) *uast.SitterParser {
	return uast.NewSitterParser(Name, golang.GetLanguage(), opts)
}
