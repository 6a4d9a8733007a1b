package uast

import (
	"context"
	"sync"
	"testing"
)

// mockParser implements Parser for testing
type mockParser struct {
	name string
	opts ConvertOptions
}

func (m *mockParser) Language() string { return m.name }

func (m *mockParser) Parse(ctx context.Context, content []byte) (*Node, error) {
	return NewNode("file", NewLeaf("text", string(content))), nil
}

func newMockFactory(name string) ParserFactory {
	return func(opts ConvertOptions) Parser {
		return &mockParser{name: name, opts: opts}
	}
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	registry.Register("test", []string{".test", ".TST"}, newMockFactory("test"))

	parsers := registry.ListParsers()
	if len(parsers) != 1 || parsers[0] != "test" {
		t.Errorf("expected [test], got %v", parsers)
	}

	tests := []struct {
		ext      string
		wantName string
		wantOK   bool
	}{
		{".test", "test", true},
		{".tst", "test", true},
		{".TEST", "test", true},
		{".unknown", "", false},
	}

	for _, tc := range tests {
		name, ok := registry.ParserName(tc.ext)
		if ok != tc.wantOK {
			t.Errorf("ParserName(%q): got ok=%v, want ok=%v", tc.ext, ok, tc.wantOK)
		}
		if name != tc.wantName {
			t.Errorf("ParserName(%q): got name=%q, want name=%q", tc.ext, name, tc.wantName)
		}
	}
}

func TestRegistry_CreateParser(t *testing.T) {
	registry := NewRegistry()
	registry.Register("test", []string{".test"}, newMockFactory("test"))

	parser, err := registry.CreateParser("test", ConvertOptions{IncludeAnonymous: true})
	if err != nil {
		t.Fatalf("CreateParser failed: %v", err)
	}

	mock, ok := parser.(*mockParser)
	if !ok {
		t.Fatal("expected *mockParser")
	}
	if !mock.opts.IncludeAnonymous {
		t.Error("factory did not receive the conversion options")
	}

	if _, err := registry.CreateParser("nonexistent", ConvertOptions{}); err == nil {
		t.Error("expected error for unregistered parser")
	}
}

func TestRegistry_ParserForFile(t *testing.T) {
	registry := NewRegistry()
	registry.Register("test", []string{".test"}, newMockFactory("test"))

	parser, err := registry.ParserForFile("dir/file.test", ConvertOptions{})
	if err != nil {
		t.Fatalf("ParserForFile failed: %v", err)
	}
	if parser.Language() != "test" {
		t.Errorf("expected language test, got %q", parser.Language())
	}

	if _, err := registry.ParserForFile("dir/file.unknown", ConvertOptions{}); err == nil {
		t.Error("expected error for unknown extension")
	}
	if _, err := registry.ParserForFile("Makefile", ConvertOptions{}); err == nil {
		t.Error("expected error for file without extension")
	}

	if !registry.Supports("a/b.test") || registry.Supports("a/b.go") {
		t.Error("Supports disagrees with the registered extensions")
	}
}

func TestRegistry_FirstRegistrationWins(t *testing.T) {
	registry := NewRegistry()

	registry.Register("first", []string{".ext"}, newMockFactory("first"))
	registry.Register("second", []string{".ext", ".other"}, newMockFactory("second"))

	// Extension should still map to first parser
	name, _ := registry.ParserName(".ext")
	if name != "first" {
		t.Errorf("expected extension to map to 'first', got %q", name)
	}

	// But both parsers should be registered
	if len(registry.ListParsers()) != 2 {
		t.Errorf("both parsers should be registered, got %v", registry.ListParsers())
	}
	if name, _ := registry.ParserName(".other"); name != "second" {
		t.Errorf("expected .other to map to 'second', got %q", name)
	}
}

func TestRegistry_ListExtensions(t *testing.T) {
	registry := NewRegistry()
	registry.Register("parser1", []string{".b", ".a"}, newMockFactory("parser1"))
	registry.Register("parser2", []string{".c"}, newMockFactory("parser2"))

	exts := registry.ListExtensions()
	want := []string{".a", ".b", ".c"}
	if len(exts) != len(want) {
		t.Fatalf("expected %v, got %v", want, exts)
	}
	for i := range want {
		if exts[i] != want[i] {
			t.Errorf("expected %v, got %v", want, exts)
		}
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	registry := NewRegistry()
	var wg sync.WaitGroup

	// Concurrent registrations
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := "parser" + string(rune('A'+i))
			registry.Register(name, []string{"." + string(rune('a'+i))}, newMockFactory(name))
		}(i)
	}

	// Concurrent reads
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			registry.ListParsers()
			registry.ListExtensions()
			registry.Supports("x.a")
		}()
	}

	wg.Wait()

	// Should have 10 parsers
	parsers := registry.ListParsers()
	if len(parsers) != 10 {
		t.Errorf("expected 10 parsers, got %d", len(parsers))
	}
}

// Note: Tests for the tree-sitter languages live in the language packages
// because importing them here would cause import cycles.
