package pathextractor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/code2vec/pathctx"
	"github.com/c360studio/code2vec/uast"
)

var errBadInput = errors.New("bad input")

// wordParser turns each line into a "line" node with one "word" leaf per field.
type wordParser struct{}

func (wordParser) Language() string { return "words" }

func (wordParser) Parse(_ context.Context, content []byte) (*uast.Node, error) {
	root := uast.NewNode("file")
	for _, line := range strings.Split(strings.TrimSpace(string(content)), "\n") {
		if strings.Contains(line, "!") {
			return nil, errBadInput
		}
		node := uast.NewNode("line")
		for _, field := range strings.Fields(line) {
			kind := "word"
			if strings.HasPrefix(field, "#") {
				kind = "comment"
			}
			node.Children = append(node.Children, uast.NewLeaf(kind, field))
		}
		if len(node.Children) > 0 {
			root.Children = append(root.Children, node)
		}
	}
	return root, nil
}

func testRegistry() *uast.Registry {
	r := uast.NewRegistry()
	r.Register("words", []string{".txt"}, func(uast.ConvertOptions) uast.Parser { return wordParser{} })
	return r
}

func testOptions() pathctx.Options {
	return pathctx.Options{
		MaxLength:     4,
		MaxWidth:      3,
		TokenFunc:     pathctx.KindToken,
		LeafTokenFunc: pathctx.LeafText,
		NoopFilter:    pathctx.NoopKinds("comment"),
	}
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func newTestExtractor(t *testing.T, root string, modify func(*Config)) *Extractor {
	t.Helper()
	cfg := Config{
		RepoRoot:  root,
		Include:   []string{"**/*"},
		Exclude:   []string{"vendor/**"},
		Options:   testOptions(),
		Workers:   3,
		CacheSize: 16,
		Registry:  testRegistry(),
	}
	if modify != nil {
		modify(&cfg)
	}
	e, err := NewExtractor(cfg)
	require.NoError(t, err)
	return e
}

func TestNewExtractor_InvalidOptions(t *testing.T) {
	opts := testOptions()
	opts.MaxWidth = 1

	_, err := NewExtractor(Config{RepoRoot: t.TempDir(), Options: opts})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pathctx.ErrValidation))
}

func TestExtractContent(t *testing.T) {
	e := newTestExtractor(t, t.TempDir(), nil)

	result, err := e.ExtractContent(context.Background(), "a.txt", []byte("x y\n# note z"))
	require.NoError(t, err)

	assert.Equal(t, "a.txt", result.Path)
	assert.Equal(t, "words", result.Language)
	assert.Equal(t, uast.ComputeHash([]byte("x y\n# note z")), result.Hash)
	assert.Equal(t, 5, result.Leaves)

	// Leaves: x y # note z. Pairs within width 3 without the comment:
	// (x,y) d=2, (y,note) d=4, (note,z) d=2; (y,#) and (x,#) are filtered.
	require.Len(t, result.Contexts, 3)
	assert.Equal(t, pathctx.PathContext{
		Start: "x",
		Path:  []string{"word", "UP", "line", "DOWN", "word"},
		End:   "y",
	}, result.Contexts[0])
	assert.Equal(t, []string{"word", "UP", "line", "UP", "file", "DOWN", "line", "DOWN", "word"}, result.Contexts[1].Path)
	assert.Equal(t, 3, result.Bag.Total())
}

func TestExtractContent_Errors(t *testing.T) {
	e := newTestExtractor(t, t.TempDir(), nil)

	_, err := e.ExtractContent(context.Background(), "a.go", []byte("package a"))
	assert.Error(t, err, "no parser for .go in the test registry")

	_, err = e.ExtractContent(context.Background(), "a.txt", []byte("x ! y"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errBadInput))
}

func TestExtractContent_Cache(t *testing.T) {
	e := newTestExtractor(t, t.TempDir(), nil)
	content := []byte("a b c")

	first, err := e.ExtractContent(context.Background(), "one.txt", content)
	require.NoError(t, err)
	second, err := e.ExtractContent(context.Background(), "two.txt", content)
	require.NoError(t, err)

	assert.Equal(t, "two.txt", second.Path)
	assert.Equal(t, "one.txt", first.Path, "cached result must not be mutated")
	assert.Same(t, first.Bag, second.Bag)
}

func TestExtractRepo(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"b.txt":          "p q r",
		"a.txt":          "x y\nz w",
		"sub/c.txt":      "m n",
		"broken.txt":     "oops !",
		"single.txt":     "alone",
		"vendor/v.txt":   "v w",
		"README.md":      "not parsed",
		"sub/deep/d.txt": "d e",
	})

	e := newTestExtractor(t, root, nil)
	run, err := e.ExtractRepo(context.Background())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(run.ID, "code2vec-"))
	var paths []string
	for _, f := range run.Files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"a.txt", "b.txt", "broken.txt", "single.txt", "sub/c.txt", "sub/deep/d.txt"}, paths)
	assert.Equal(t, 1, run.Failed)
	assert.True(t, errors.Is(run.Files[2].Err, errBadInput))

	// Failed files are left out, trees without pairs yield empty bags.
	docs := run.Documents()
	require.Len(t, docs, 5)
	assert.Equal(t, "a.txt", docs[0].Name)
	assert.Equal(t, 0, docs[2].Bag.Len())
}

func TestExtractRepo_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.txt": "x y"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newTestExtractor(t, root, nil)
	_, err := e.ExtractRepo(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestExtractFile_Relative(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"dir/a.txt": "x y"})
	e := newTestExtractor(t, root, nil)

	rel, err := e.ExtractFile(context.Background(), "dir/a.txt")
	require.NoError(t, err)
	abs, err := e.ExtractFile(context.Background(), filepath.Join(root, "dir", "a.txt"))
	require.NoError(t, err)

	assert.Equal(t, "dir/a.txt", rel.Path)
	assert.Equal(t, "dir/a.txt", abs.Path)

	_, err = e.ExtractFile(context.Background(), "missing.txt")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
