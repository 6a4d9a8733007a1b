// Package java provides a Java parser for path-context extraction using tree-sitter.
package java

import (
	"github.com/smacker/go-tree-sitter/java"

	"github.com/c360studio/code2vec/uast"
)

// Name is the registered language name.
const Name = "java"

func init() {
	uast.DefaultRegistry.Register(Name, []string{".java"}, func(opts uast.ConvertOptions) uast.Parser {
		return NewParser(opts)
	})
}

// NewParser creates a Java parser.
func NewParser(opts uast.ConvertOptions) *uast.SitterParser {
	return uast.NewSitterParser(Name, java.GetLanguage(), opts)
}
