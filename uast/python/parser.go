// Package python provides a Python parser for path-context extraction using tree-sitter.
package python

import (
	"github.com/smacker/go-tree-sitter/python"

	"github.com/c360studio/code2vec/uast"
)

// Name is the registered language name.
const Name = "python"

func init() {
	uast.DefaultRegistry.Register(Name, []string{".py"}, func(opts uast.ConvertOptions) uast.Parser {
		return NewParser(opts)
	})
}

// NewParser creates a Python parser.
func NewParser(opts uast.ConvertOptions) *uast.SitterParser {
	return uast.NewSitterParser(Name, python.GetLanguage(), opts)
}
