// Package ts provides TypeScript and JavaScript parsers using tree-sitter.
// TypeScript, TSX and JavaScript are registered as separate languages since
// their grammars differ.
package ts

import (
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/c360studio/code2vec/uast"
)

// Registered language names.
const (
	TypeScript = "typescript"
	TSX        = "tsx"
	JavaScript = "javascript"
)

func init() {
	uast.DefaultRegistry.Register(TypeScript, []string{".ts", ".mts", ".cts"}, func(opts uast.ConvertOptions) uast.Parser {
		return NewTypeScriptParser(opts)
	})
	uast.DefaultRegistry.Register(TSX, []string{".tsx"}, func(opts uast.ConvertOptions) uast.Parser {
		return NewTSXParser(opts)
	})
	uast.DefaultRegistry.Register(JavaScript, []string{".js", ".jsx", ".mjs", ".cjs"}, func(opts uast.ConvertOptions) uast.Parser {
		return NewJavaScriptParser(opts)
	})
}

// NewTypeScriptParser creates a TypeScript parser.
func NewTypeScriptParser(opts uast.ConvertOptions) *uast.SitterParser {
	return uast.NewSitterParser(TypeScript, typescript.GetLanguage(), opts)
}

// NewTSXParser creates a TSX parser.
func NewTSXParser(opts uast.ConvertOptions) *uast.SitterParser {
	return uast.NewSitterParser(TSX, tsx.GetLanguage(), opts)
}

// NewJavaScriptParser creates a JavaScript parser. The javascript grammar
// also accepts JSX.
func NewJavaScriptParser(opts uast.ConvertOptions) *uast.SitterParser {
	return uast.NewSitterParser(JavaScript, javascript.GetLanguage(), opts)
}
