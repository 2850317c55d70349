// Package geodata loads the static place dataset and exposes it as an
// immutable in-memory index. The index is built once at startup and is
// read-only afterwards, so it is shared across requests without locking.
package geodata

import (
	"strings"

	"github.com/tchap/go-patricia/v2/patricia"
)

// KeyFunc computes the normalized search key for a place name.
// The caller supplies it so the dataset and the matcher agree on one
// normalization without this package depending on the matching layer.
type KeyFunc func(string) string

// PlaceRecord is a single place entry, created at load time and never mutated.
type PlaceRecord struct {
	ID         int     `msgpack:"id"`
	Name       string  `msgpack:"n"`
	Region     string  `msgpack:"r"`
	Country    string  `msgpack:"c"`
	Latitude   float64 `msgpack:"la"`
	Longitude  float64 `msgpack:"lo"`
	Population int64   `msgpack:"p"`
	Key        string  `msgpack:"k"`
}

// DisplayName renders the record the way suggestions present it,
// e.g. "Washington, New Jersey, US".
func (p *PlaceRecord) DisplayName() string {
	parts := make([]string, 0, 3)
	parts = append(parts, p.Name)
	if p.Region != "" {
		parts = append(parts, p.Region)
	}
	if p.Country != "" {
		parts = append(parts, p.Country)
	}
	return strings.Join(parts, ", ")
}

// Index holds the full record set plus a patricia trie over normalized
// name keys for prefix retrieval. Several places may share one key, so
// trie items are slices of record offsets.
type Index struct {
	records []PlaceRecord
	trie    *patricia.Trie
}

// NewIndex builds an index over the given records.
func NewIndex(records []PlaceRecord) *Index {
	trie := patricia.NewTrie()
	for i := range records {
		key := patricia.Prefix(records[i].Key)
		if item := trie.Get(key); item != nil {
			trie.Set(key, append(item.([]int), i))
		} else {
			trie.Insert(key, []int{i})
		}
	}
	return &Index{records: records, trie: trie}
}

// Len returns the number of indexed records.
func (ix *Index) Len() int {
	return len(ix.records)
}

// Visit calls fn for every record in the index.
func (ix *Index) Visit(fn func(*PlaceRecord)) {
	for i := range ix.records {
		fn(&ix.records[i])
	}
}

// VisitPrefix calls fn for every record whose key starts with prefix.
func (ix *Index) VisitPrefix(prefix string, fn func(*PlaceRecord)) {
	_ = ix.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, item patricia.Item) error {
		for _, off := range item.([]int) {
			fn(&ix.records[off])
		}
		return nil
	})
}
