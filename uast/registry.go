package uast

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Parser turns source content into a Node tree.
type Parser interface {
	// Language returns the registered language name (e.g. "go", "python")
	Language() string

	// Parse parses content and returns the root of its syntax tree
	Parse(ctx context.Context, content []byte) (*Node, error)
}

// ParserFactory creates a Parser for a specific language.
// The factory receives the conversion options to apply to parsed trees.
type ParserFactory func(opts ConvertOptions) Parser

// Registry maintains a registry of language parsers.
// Parsers are registered by name with their supported file extensions.
// Thread-safe for concurrent access.
type Registry struct {
	mu      sync.RWMutex
	parsers map[string]ParserFactory // name → factory
	extMap  map[string]string        // extension → parser name
}

// NewRegistry creates a new empty parser registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers: make(map[string]ParserFactory),
		extMap:  make(map[string]string),
	}
}

// Register adds a parser factory for the given extensions.
// The first registration wins if there's an extension conflict.
// Extensions should include the leading dot (e.g., ".go", ".ts").
func (r *Registry) Register(name string, extensions []string, factory ParserFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.parsers[name] = factory

	for _, ext := range extensions {
		ext = strings.ToLower(ext)
		if _, exists := r.extMap[ext]; !exists {
			r.extMap[ext] = name
		}
	}
}

// ParserName returns the parser name registered for a file extension.
func (r *Registry) ParserName(ext string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.extMap[strings.ToLower(ext)]
	return name, ok
}

// Supports reports whether a parser is registered for the file's extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.ParserName(filepath.Ext(path))
	return ok
}

// CreateParser instantiates a parser by name with the given options.
func (r *Registry) CreateParser(name string, opts ConvertOptions) (Parser, error) {
	r.mu.RLock()
	factory, ok := r.parsers[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("parser not registered: %s", name)
	}
	return factory(opts), nil
}

// ParserForFile creates a parser for the extension of path.
func (r *Registry) ParserForFile(path string, opts ConvertOptions) (Parser, error) {
	ext := filepath.Ext(path)
	name, ok := r.ParserName(ext)
	if !ok {
		return nil, fmt.Errorf("no parser registered for extension: %q", ext)
	}
	return r.CreateParser(name, opts)
}

// ListParsers returns all registered parser names, sorted.
func (r *Registry) ListParsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListExtensions returns all registered file extensions, sorted.
func (r *Registry) ListExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	extensions := make([]string, 0, len(r.extMap))
	for ext := range r.extMap {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)
	return extensions
}

// DefaultRegistry is the global parser registry.
// Language parsers register themselves via init() functions.
var DefaultRegistry = NewRegistry()
