package pathctx

import (
	"fmt"

	"github.com/c360studio/code2vec/uast"
)

// NoopFilter reports leaves that must never be path endpoints.
type NoopFilter func(n *uast.Node) bool

// Options configures path extraction. There are no hidden defaults: callers
// build Options from their own configuration.
type Options struct {
	// MaxLength is the maximum number of edges between the two endpoints (>= 1)
	MaxLength int

	// MaxWidth bounds the leaf-index span of a pair: j - i < MaxWidth (>= 2)
	MaxWidth int

	// TokenFunc renders interior path nodes
	TokenFunc TokenFunc

	// LeafTokenFunc renders the start and end tokens
	LeafTokenFunc TokenFunc

	// NoopFilter excludes leaves from being endpoints. Nil filters nothing.
	NoopFilter NoopFilter
}

// Validate checks the options before any work is done.
func (o Options) Validate() error {
	if o.MaxLength < 1 {
		return fmt.Errorf("max length must be at least 1, got %d: %w", o.MaxLength, ErrValidation)
	}
	if o.MaxWidth < 2 {
		return fmt.Errorf("max width must be at least 2, got %d: %w", o.MaxWidth, ErrValidation)
	}
	if o.TokenFunc == nil {
		return fmt.Errorf("token function is required: %w", ErrValidation)
	}
	if o.LeafTokenFunc == nil {
		return fmt.Errorf("leaf token function is required: %w", ErrValidation)
	}
	return nil
}

func (o Options) isNoop(n *uast.Node) bool {
	return o.NoopFilter != nil && o.NoopFilter(n)
}

// Extract enumerates the path contexts of t.
//
// For every leaf i and every following leaf j with j - i < MaxWidth, the pair
// is skipped when either endpoint is a noop, otherwise its path is kept when
// the distance is at most MaxLength. Output order is ascending i, then j.
// Trees with fewer than two leaves produce no contexts.
func Extract(t *Tree, opts Options) ([]PathContext, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	leaves := t.Leaves()
	n := len(leaves)
	if n < 2 {
		return nil, nil
	}

	var contexts []PathContext
	for i := 0; i < n; i++ {
		u := leaves[i]
		if opts.isNoop(t.nodes[u].Node) {
			continue
		}

		for j := i + 1; j < min(i+opts.MaxWidth, n); j++ {
			v := leaves[j]
			if opts.isNoop(t.nodes[v].Node) {
				continue
			}

			ancestor, err := t.LCA(u, v)
			if err != nil {
				return nil, fmt.Errorf("leaves %d and %d: %w", i, j, err)
			}
			if t.Distance(u, v, ancestor) > opts.MaxLength {
				continue
			}

			start, path, end := t.BuildPath(u, v, ancestor, opts.LeafTokenFunc)
			contexts = append(contexts, PathContext{
				Start: start,
				Path:  t.Render(path, opts.TokenFunc),
				End:   end,
			})
		}
	}

	return contexts, nil
}

// ExtractFromRoot builds the augmented tree of root and extracts its contexts.
// Options are validated before the tree is built.
func ExtractFromRoot(root *uast.Node, opts Options) ([]PathContext, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	t, err := Extend(root)
	if err != nil {
		return nil, err
	}
	return Extract(t, opts)
}
