package pathctx

import "sort"

// Bag counts distinct path contexts of one tree.
type Bag struct {
	counts   map[string]int
	contexts map[string]PathContext
	total    int
}

// BagEntry is a context with its occurrence count.
type BagEntry struct {
	Context PathContext
	Count   int
}

// NewBag creates an empty bag.
func NewBag() *Bag {
	return &Bag{
		counts:   make(map[string]int),
		contexts: make(map[string]PathContext),
	}
}

// Aggregate counts exact duplicates in contexts. The result does not depend
// on the order of the input.
func Aggregate(contexts []PathContext) *Bag {
	b := NewBag()
	for _, pc := range contexts {
		b.Add(pc)
	}
	return b
}

// Add records one occurrence of pc.
func (b *Bag) Add(pc PathContext) {
	key := pc.Key()
	if _, ok := b.counts[key]; !ok {
		b.contexts[key] = pc
	}
	b.counts[key]++
	b.total++
}

// Count returns the occurrences of pc, 0 if absent.
func (b *Bag) Count(pc PathContext) int {
	return b.counts[pc.Key()]
}

// Len returns the number of distinct contexts.
func (b *Bag) Len() int {
	return len(b.counts)
}

// Total returns the number of contexts added.
func (b *Bag) Total() int {
	return b.total
}

// Entries returns every distinct context with its count, sorted by key.
func (b *Bag) Entries() []BagEntry {
	keys := make([]string, 0, len(b.counts))
	for k := range b.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]BagEntry, len(keys))
	for i, k := range keys {
		entries[i] = BagEntry{Context: b.contexts[k], Count: b.counts[k]}
	}
	return entries
}
