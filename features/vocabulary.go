// Package features turns per-file bags of path contexts into the indexed
// vocabularies and document triples consumed by code2vec models.
package features

import (
	"encoding/json"
	"sort"

	"github.com/c360studio/code2vec/pathctx"
)

// Document is the bag of path contexts extracted from one file.
type Document struct {
	// Name identifies the document, usually the file path relative to the repo
	Name string

	// Bag holds the path contexts of the document
	Bag *pathctx.Bag
}

// Vocabulary maps values (leaf tokens) and paths to dense indices and
// document frequencies. Path mappings are keyed by PathKey.
type Vocabulary struct {
	Value2Index map[string]int `json:"value2index"`
	Path2Index  map[string]int `json:"path2index"`
	Value2Freq  map[string]int `json:"value2freq"`
	Path2Freq   map[string]int `json:"path2freq"`
}

// BuildVocabulary collects the values and paths of docs.
//
// Each distinct context of a document counts once regardless of how often
// it occurs in the bag. Start and end tokens both count towards Value2Freq.
// Indices follow sorted order so identical input yields identical ids.
func BuildVocabulary(docs []Document) *Vocabulary {
	v := &Vocabulary{
		Value2Index: make(map[string]int),
		Path2Index:  make(map[string]int),
		Value2Freq:  make(map[string]int),
		Path2Freq:   make(map[string]int),
	}

	for _, doc := range docs {
		if doc.Bag == nil {
			continue
		}
		for _, entry := range doc.Bag.Entries() {
			pc := entry.Context
			v.Value2Freq[pc.Start]++
			v.Path2Freq[PathKey(pc.Path)]++
			v.Value2Freq[pc.End]++
		}
	}

	assignIndices(v.Value2Freq, v.Value2Index)
	assignIndices(v.Path2Freq, v.Path2Index)
	return v
}

// PathKey encodes a path as a JSON array of its tokens. Distinct paths always
// get distinct keys, even when tokens contain spaces or marker names.
func PathKey(path []string) string {
	data, _ := json.Marshal(path)
	return string(data)
}

func assignIndices(freq map[string]int, index map[string]int) {
	keys := make([]string, 0, len(freq))
	for k := range freq {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		index[k] = i
	}
}

// Triple is an indexed path context: value, path, value.
type Triple [3]int

// Triples returns the distinct indexed contexts of doc, sorted.
// Contexts with a value or path missing from the vocabulary are skipped.
func (v *Vocabulary) Triples(doc Document) []Triple {
	if doc.Bag == nil {
		return nil
	}

	seen := make(map[Triple]struct{})
	var triples []Triple
	for _, entry := range doc.Bag.Entries() {
		pc := entry.Context
		start, ok := v.Value2Index[pc.Start]
		if !ok {
			continue
		}
		path, ok := v.Path2Index[PathKey(pc.Path)]
		if !ok {
			continue
		}
		end, ok := v.Value2Index[pc.End]
		if !ok {
			continue
		}

		t := Triple{start, path, end}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		triples = append(triples, t)
	}

	sort.Slice(triples, func(i, j int) bool {
		a, b := triples[i], triples[j]
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		if a[1] != b[1] {
			return a[1] < b[1]
		}
		return a[2] < b[2]
	})
	return triples
}
