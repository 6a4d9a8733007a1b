// Package pathextractor runs path-context extraction over the files of a
// repository: file resolution, parallel per-file extraction with a content
// hash cache, change watching and metrics.
package pathextractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/c360studio/code2vec/features"
	"github.com/c360studio/code2vec/pathctx"
	"github.com/c360studio/code2vec/uast"
)

// Config configures an Extractor
type Config struct {
	// RepoRoot is the directory files are resolved against
	RepoRoot string

	// Include and Exclude are doublestar patterns relative to RepoRoot
	Include []string
	Exclude []string

	// Options are the path extraction bounds and token policies
	Options pathctx.Options

	// Convert controls the parser tree conversion
	Convert uast.ConvertOptions

	// Workers is the number of files extracted concurrently (default: 1)
	Workers int

	// CacheSize is the number of results cached by content hash (0 disables)
	CacheSize int

	// Registry provides parsers (default: uast.DefaultRegistry)
	Registry *uast.Registry

	// Logger for logging events
	Logger *slog.Logger
}

// FileResult is the extraction output for one file.
// Results may be shared through the cache and must not be modified.
type FileResult struct {
	// Path is slash-separated and relative to the repo root
	Path     string
	Language string
	Hash     string
	Leaves   int
	Contexts []pathctx.PathContext
	Bag      *pathctx.Bag

	// Err is set when the file could not be extracted
	Err error
}

// Run is the result of extracting a whole repository.
type Run struct {
	ID        string
	Root      string
	StartedAt time.Time
	Duration  time.Duration

	// Files sorted by path, including failed ones
	Files []*FileResult

	// Failed is the number of files with Err set
	Failed int
}

// Documents returns the bags of successfully extracted files.
func (r *Run) Documents() []features.Document {
	docs := make([]features.Document, 0, len(r.Files))
	for _, f := range r.Files {
		if f.Err != nil {
			continue
		}
		docs = append(docs, features.Document{Name: f.Path, Bag: f.Bag})
	}
	return docs
}

// Extractor extracts path contexts from repository files.
// Safe for concurrent use: every file gets its own parser and tree.
type Extractor struct {
	config   Config
	registry *uast.Registry
	cache    *lru.Cache[string, *FileResult]
	logger   *slog.Logger
}

// NewExtractor creates an extractor. Invalid options fail here, before any
// file is touched.
func NewExtractor(config Config) (*Extractor, error) {
	if err := config.Options.Validate(); err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := config.Registry
	if registry == nil {
		registry = uast.DefaultRegistry
	}

	if config.Workers < 1 {
		config.Workers = 1
	}

	root, err := filepath.Abs(config.RepoRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve repo root: %w", err)
	}
	config.RepoRoot = root

	e := &Extractor{
		config:   config,
		registry: registry,
		logger:   logger,
	}

	if config.CacheSize > 0 {
		cache, err := lru.New[string, *FileResult](config.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create result cache: %w", err)
		}
		e.cache = cache
	}

	return e, nil
}

// Root returns the absolute repository root.
func (e *Extractor) Root() string {
	return e.config.RepoRoot
}

// Supports reports whether a parser is registered for path.
func (e *Extractor) Supports(path string) bool {
	return e.registry.Supports(path)
}

// ResolveFiles lists the repository files to extract.
func (e *Extractor) ResolveFiles() ([]string, error) {
	return ResolveFiles(e.config.RepoRoot, e.config.Include, e.config.Exclude, e.Supports)
}

// ExtractFile reads and extracts a single file. path may be absolute or
// relative to the repo root.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (*FileResult, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(e.config.RepoRoot, path)
	}
	rel, err := relPath(e.config.RepoRoot, abs)
	if err != nil {
		return nil, fmt.Errorf("relative path for %s: %w", path, err)
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rel, err)
	}

	return e.ExtractContent(ctx, rel, content)
}

// ExtractContent parses content as the language of path and extracts its
// path contexts. Identical content of the same language is served from the
// cache.
func (e *Extractor) ExtractContent(ctx context.Context, path string, content []byte) (*FileResult, error) {
	start := time.Now()

	parser, err := e.registry.ParserForFile(path, e.config.Convert)
	if err != nil {
		filesTotal.WithLabelValues(resultSkipped, "").Inc()
		return nil, err
	}
	language := parser.Language()
	hash := uast.ComputeHash(content)
	cacheKey := language + ":" + hash

	if e.cache != nil {
		if cached, ok := e.cache.Get(cacheKey); ok {
			filesTotal.WithLabelValues(resultCached, language).Inc()
			result := *cached
			result.Path = path
			return &result, nil
		}
	}

	root, err := parser.Parse(ctx, content)
	if err != nil {
		filesTotal.WithLabelValues(resultFailed, language).Inc()
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	tree, err := pathctx.Extend(root)
	if err != nil {
		filesTotal.WithLabelValues(resultFailed, language).Inc()
		return nil, fmt.Errorf("augment %s: %w", path, err)
	}

	contexts, err := pathctx.Extract(tree, e.config.Options)
	if err != nil {
		filesTotal.WithLabelValues(resultFailed, language).Inc()
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}

	result := &FileResult{
		Path:     path,
		Language: language,
		Hash:     hash,
		Leaves:   len(tree.Leaves()),
		Contexts: contexts,
		Bag:      pathctx.Aggregate(contexts),
	}

	filesTotal.WithLabelValues(resultOK, language).Inc()
	contextsTotal.WithLabelValues(language).Add(float64(len(contexts)))
	leavesPerTree.Observe(float64(result.Leaves))
	extractDuration.WithLabelValues(language).Observe(time.Since(start).Seconds())

	if e.cache != nil {
		e.cache.Add(cacheKey, result)
	}

	e.logger.Debug("Extracted path contexts",
		"path", path,
		"language", language,
		"leaves", result.Leaves,
		"contexts", len(contexts),
		"distinct", result.Bag.Len())

	return result, nil
}

// ExtractRepo extracts every resolved file of the repository.
//
// Files are processed by up to Workers goroutines. A failing file is logged
// and recorded on its FileResult; it never aborts the others. The run stops
// early only when ctx is cancelled.
func (e *Extractor) ExtractRepo(ctx context.Context) (*Run, error) {
	run := &Run{
		ID:        "code2vec-" + uuid.New().String(),
		Root:      e.config.RepoRoot,
		StartedAt: time.Now(),
	}

	files, err := e.ResolveFiles()
	if err != nil {
		return nil, err
	}

	e.logger.Info("Extracting repository",
		"run", run.ID,
		"root", run.Root,
		"files", len(files),
		"workers", e.config.Workers)

	results := make([]*FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)

	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			result, err := e.ExtractFile(gctx, path)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				e.logger.Warn("Failed to extract file",
					"path", path,
					"error", err)
				result = &FileResult{Path: path, Err: err}
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extract repository: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("extract repository: %w", err)
	}

	run.Files = results
	for _, r := range results {
		if r.Err != nil {
			run.Failed++
		}
	}
	run.Duration = time.Since(run.StartedAt)

	e.logger.Info("Extraction complete",
		"run", run.ID,
		"files", len(run.Files),
		"failed", run.Failed,
		"duration", run.Duration)

	return run, nil
}
