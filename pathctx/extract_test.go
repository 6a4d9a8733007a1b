package pathctx

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/code2vec/uast"
)

func twoLeafTree() *uast.Node {
	return uast.NewNode("R", uast.NewLeaf("A", "x"), uast.NewLeaf("B", "y"))
}

func TestExtract_TwoLeaves(t *testing.T) {
	contexts, err := ExtractFromRoot(twoLeafTree(), defaultOptions(2, 2))
	require.NoError(t, err)
	require.Len(t, contexts, 1)

	assert.Equal(t, PathContext{
		Start: "x",
		Path:  []string{"A", "UP", "R", "DOWN", "B"},
		End:   "y",
	}, contexts[0])
}

func TestExtract_TwoLeavesTooLong(t *testing.T) {
	contexts, err := ExtractFromRoot(twoLeafTree(), defaultOptions(1, 2))
	require.NoError(t, err)
	assert.Empty(t, contexts)
}

func TestExtract_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"zero length", func(o *Options) { o.MaxLength = 0 }},
		{"negative length", func(o *Options) { o.MaxLength = -3 }},
		{"width one", func(o *Options) { o.MaxWidth = 1 }},
		{"zero width", func(o *Options) { o.MaxWidth = 0 }},
		{"missing token func", func(o *Options) { o.TokenFunc = nil }},
		{"missing leaf token func", func(o *Options) { o.LeafTokenFunc = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultOptions(5, 5)
			tt.modify(&opts)

			_, err := ExtractFromRoot(twoLeafTree(), opts)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			tree, err := Extend(twoLeafTree())
			require.NoError(t, err)
			_, err = Extract(tree, opts)
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}
}

func TestExtract_ValidationBeforeTreeErrors(t *testing.T) {
	shared := uast.NewLeaf("id", "x")
	_, err := ExtractFromRoot(uast.NewNode("R", shared, shared), defaultOptions(0, 2))
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = ExtractFromRoot(uast.NewNode("R", shared, shared), defaultOptions(3, 2))
	assert.True(t, errors.Is(err, ErrTree))
}

func TestExtract_FewerThanTwoLeaves(t *testing.T) {
	roots := []*uast.Node{
		nil,
		uast.NewLeaf("id", "x"),
		uast.NewNode("R", uast.NewLeaf("id", "x")),
		uast.NewNode("R", uast.NewNode("A", uast.NewNode("B", uast.NewLeaf("id", "x")))),
	}

	for _, root := range roots {
		for _, length := range []int{1, 3, 100} {
			for _, width := range []int{2, 5} {
				contexts, err := ExtractFromRoot(root, defaultOptions(length, width))
				require.NoError(t, err)
				assert.Empty(t, contexts)
			}
		}
	}
}

func TestExtract_NoopFilter(t *testing.T) {
	root := uast.NewNode("R",
		uast.NewLeaf("id", "a"),
		uast.NewLeaf("NoopLine", ""),
		uast.NewLeaf("id", "b"),
		uast.NewLeaf("SameLineNoops", "//"),
	)
	opts := defaultOptions(5, 5)
	opts.NoopFilter = NoopKinds("NoopLine", "SameLineNoops")

	contexts, err := ExtractFromRoot(root, opts)
	require.NoError(t, err)
	require.Len(t, contexts, 1)
	assert.Equal(t, "a", contexts[0].Start)
	assert.Equal(t, "b", contexts[0].End)

	opts.NoopFilter = nil
	contexts, err = ExtractFromRoot(root, opts)
	require.NoError(t, err)
	assert.Len(t, contexts, 6)
}

func TestExtract_Order(t *testing.T) {
	root := uast.NewNode("R",
		uast.NewLeaf("id", "a"),
		uast.NewLeaf("id", "b"),
		uast.NewLeaf("id", "c"),
		uast.NewLeaf("id", "d"),
	)

	contexts, err := ExtractFromRoot(root, defaultOptions(2, 3))
	require.NoError(t, err)

	var pairs [][2]string
	for _, pc := range contexts {
		pairs = append(pairs, [2]string{pc.Start, pc.End})
	}
	assert.Equal(t, [][2]string{
		{"a", "b"}, {"a", "c"},
		{"b", "c"}, {"b", "d"},
		{"c", "d"},
	}, pairs)
}

func TestExtract_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	for round := 0; round < 10; round++ {
		root := randomTree(rng, 50+rng.Intn(200))
		tree, err := Extend(root)
		require.NoError(t, err)

		// Leaf tokens are unique, so they identify the endpoints.
		index := make(map[string]NodeID)
		for _, id := range tree.Leaves() {
			index[tree.Node(id).Node.Token] = id
		}

		for _, width := range []int{2, 3, 7} {
			for _, length := range []int{1, 2, 4, 9} {
				contexts, err := Extract(tree, defaultOptions(length, width))
				require.NoError(t, err)

				for _, pc := range contexts {
					u, v := index[pc.Start], index[pc.End]
					span := tree.Node(v).LeafIndex - tree.Node(u).LeafIndex
					assert.Greater(t, span, 0)
					assert.Less(t, span, width)

					d := naiveDistance(tree, u, v)
					assert.LessOrEqual(t, d, length)
					assert.Len(t, pc.Path, 2*d+1)
				}

				// Every eligible pair is present.
				want := 0
				leaves := tree.Leaves()
				for i := range leaves {
					for j := i + 1; j < len(leaves) && j < i+width; j++ {
						if naiveDistance(tree, leaves[i], leaves[j]) <= length {
							want++
						}
					}
				}
				assert.Len(t, contexts, want)
			}
		}
	}
}

func TestExtract_Deterministic(t *testing.T) {
	root := randomTree(rand.New(rand.NewSource(5)), 300)

	first, err := ExtractFromRoot(root, defaultOptions(6, 4))
	require.NoError(t, err)
	second, err := ExtractFromRoot(root, defaultOptions(6, 4))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExtract_RolesPolicy(t *testing.T) {
	root := &uast.Node{Kind: "call", Roles: []string{"Expression", "Call"}, Children: []*uast.Node{
		uast.NewLeaf("id", "f", "Callee"),
		uast.NewLeaf("id", "x", "Argument", "Identifier"),
	}}
	opts := defaultOptions(2, 2)
	opts.TokenFunc = RolesToken

	contexts, err := ExtractFromRoot(root, opts)
	require.NoError(t, err)
	require.Len(t, contexts, 1)
	assert.Equal(t, []string{"Callee", "UP", "Call | Expression", "DOWN", "Argument | Identifier"}, contexts[0].Path)
}
