package pathextractor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// SupportFunc reports whether a file can be parsed.
type SupportFunc func(path string) bool

// ResolveFiles expands include patterns relative to root and drops files
// matching any exclude pattern or rejected by supported.
//
// Patterns use doublestar syntax with forward slashes:
//   - "**/*" → every file in the tree
//   - "cmd/*.go" → Go files directly under cmd
//   - "vendor/**" → everything below vendor (as an exclude)
//
// Returns slash-separated paths relative to root, sorted and deduplicated.
func ResolveFiles(root string, include, exclude []string, supported SupportFunc) ([]string, error) {
	for _, pattern := range append(append([]string(nil), include...), exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
	}

	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly(), doublestar.WithNoFollow())
		if err != nil {
			return nil, fmt.Errorf("resolve pattern %q: %w", pattern, err)
		}

		for _, match := range matches {
			if seen[match] || excluded(match, exclude) {
				continue
			}
			if supported != nil && !supported(match) {
				continue
			}
			seen[match] = true
			files = append(files, match)
		}
	}

	sort.Strings(files)
	return files, nil
}

// excluded reports whether rel (slash-separated, relative to the repo root)
// matches one of the exclude patterns.
func excluded(rel string, exclude []string) bool {
	for _, pattern := range exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// excludedDir reports whether an exclude pattern covers everything below the
// directory rel, so nothing inside it can ever be extracted. Only patterns
// ending in "/**" cover a whole subtree.
func excludedDir(rel string, exclude []string) bool {
	for _, pattern := range exclude {
		prefix, ok := strings.CutSuffix(pattern, "/**")
		if !ok {
			continue
		}
		if match, _ := doublestar.Match(prefix, rel); match {
			return true
		}
	}
	return false
}

// relPath converts an absolute path below root to the slash form used by
// ResolveFiles.
func relPath(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
