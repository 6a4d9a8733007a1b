package features

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// ModelName identifies the features model format.
const ModelName = "code2vec_features"

// dumpLimit is the number of entries shown per mapping by Dump.
const dumpLimit = 10

// Meta describes how a model was produced.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Repo      string    `json:"repo,omitempty"`
	MaxLength int       `json:"max_length"`
	MaxWidth  int       `json:"max_width"`
}

// DocContexts lists the indexed contexts of one document.
type DocContexts struct {
	Doc      string   `json:"doc"`
	Contexts []Triple `json:"contexts"`
}

// Model is the persisted output of an extraction run.
type Model struct {
	Name string `json:"name"`
	Meta Meta   `json:"meta"`
	Vocabulary
	PathContexts []DocContexts `json:"path_contexts"`
}

// NewModel builds a model from docs. Documents are ordered by name and
// documents without contexts are omitted.
func NewModel(docs []Document, meta Meta) *Model {
	vocab := BuildVocabulary(docs)

	sorted := append([]Document(nil), docs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	m := &Model{Name: ModelName, Meta: meta, Vocabulary: *vocab}
	for _, doc := range sorted {
		triples := vocab.Triples(doc)
		if len(triples) == 0 {
			continue
		}
		m.PathContexts = append(m.PathContexts, DocContexts{Doc: doc.Name, Contexts: triples})
	}
	return m
}

// Save writes the model as JSON, creating parent directories.
func (m *Model) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create model directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	return nil
}

// Load reads a model written by Save.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model file: %w", err)
	}
	if m.Name != ModelName {
		return nil, fmt.Errorf("unexpected model name %q, want %q", m.Name, ModelName)
	}
	return &m, nil
}

// Dump writes a summary: mapping sizes and the first entries of each mapping
// in index order (frequency mappings in key order).
func (m *Model) Dump(w io.Writer) error {
	lines := []string{
		fmt.Sprintf("Model: %s (%s)", m.Name, m.Meta.ID),
		fmt.Sprintf("Documents: %d", len(m.PathContexts)),
		fmt.Sprintf("Number of values: %d", len(m.Value2Index)),
		fmt.Sprintf("Number of paths: %d", len(m.Path2Index)),
		fmt.Sprintf("First %d value -> ID: %s", dumpLimit, firstByValue(m.Value2Index)),
		fmt.Sprintf("First %d path -> ID: %s", dumpLimit, firstByValue(m.Path2Index)),
		fmt.Sprintf("First %d value -> frequency: %s", dumpLimit, firstByKey(m.Value2Freq)),
		fmt.Sprintf("First %d path -> frequency: %s", dumpLimit, firstByKey(m.Path2Freq)),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

type pair struct {
	key string
	val int
}

func firstByValue(m map[string]int) []string {
	pairs := toPairs(m)
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].val < pairs[j].val })
	return formatPairs(pairs)
}

func firstByKey(m map[string]int) []string {
	pairs := toPairs(m)
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })
	return formatPairs(pairs)
}

func toPairs(m map[string]int) []pair {
	pairs := make([]pair, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, pair{k, v})
	}
	return pairs
}

func formatPairs(pairs []pair) []string {
	if len(pairs) > dumpLimit {
		pairs = pairs[:dumpLimit]
	}
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = fmt.Sprintf("%q:%d", p.key, p.val)
	}
	return out
}
