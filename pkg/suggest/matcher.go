package suggest

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/placeserve/placeserve/pkg/geodata"
)

// Similarity weights. A query that is a prefix of a name always outranks a
// substring or typo match of the same length ratio; each edit inside a
// near-prefix costs editPenalty.
const (
	prefixFloor   = 0.4
	containsFloor = 0.25
	editPenalty   = 0.1
)

// Candidate pairs a place with its textual similarity, before any geo
// adjustment. Created per request, discarded after the response.
type Candidate struct {
	Place      *geodata.PlaceRecord
	Similarity float64
}

// Matcher produces candidates for a normalized query. The zero similarity
// cutoff is what turns nonsense queries into an empty candidate set.
type Matcher struct {
	index         *geodata.Index
	minSimilarity float64
}

// NewMatcher creates a matcher over the given index.
func NewMatcher(index *geodata.Index, minSimilarity float64) *Matcher {
	return &Matcher{index: index, minSimilarity: minSimilarity}
}

// Match scores the query against a candidate pool and returns every place
// clearing the similarity cutoff. A nil pool means the full index; a
// narrowed pool (from the session cache) shrinks the candidate universe
// only, the query itself is always rescored in full.
func (m *Matcher) Match(query string, pool []*geodata.PlaceRecord) []Candidate {
	if query == "" {
		return nil
	}

	var candidates []Candidate
	if pool != nil {
		for _, rec := range pool {
			if sim := m.similarity(query, rec.Key); sim >= m.minSimilarity {
				candidates = append(candidates, Candidate{Place: rec, Similarity: sim})
			}
		}
		return candidates
	}

	// Fast path: prefix hits straight off the trie.
	seen := make(map[int]struct{})
	m.index.VisitPrefix(query, func(rec *geodata.PlaceRecord) {
		seen[rec.ID] = struct{}{}
		sim := prefixSimilarity(query, rec.Key)
		if sim >= m.minSimilarity {
			candidates = append(candidates, Candidate{Place: rec, Similarity: sim})
		}
	})

	// Fuzzy pass over the rest: substrings and bounded-edit-distance typos.
	m.index.Visit(func(rec *geodata.PlaceRecord) {
		if _, ok := seen[rec.ID]; ok {
			return
		}
		if sim := fuzzySimilarity(query, rec.Key); sim >= m.minSimilarity {
			candidates = append(candidates, Candidate{Place: rec, Similarity: sim})
		}
	})

	return candidates
}

// similarity scores one query/key pair considering prefix, substring and
// edit-distance relations, whichever ranks highest.
func (m *Matcher) similarity(query, key string) float64 {
	if strings.HasPrefix(key, query) {
		return prefixSimilarity(query, key)
	}
	return fuzzySimilarity(query, key)
}

// prefixSimilarity grows with query length and reaches 1.0 on an exact
// match, so longer queries never score lower against their true target.
func prefixSimilarity(query, key string) float64 {
	return prefixFloor + (1-prefixFloor)*float64(len(query))/float64(len(key))
}

func fuzzySimilarity(query, key string) float64 {
	if strings.Contains(key, query) {
		return containsFloor + (1-containsFloor)*float64(len(query))/float64(len(key))
	}

	// Tolerate a typo budget proportional to query length.
	maxEdits := 1 + len(query)/4
	best := 0.0

	// Near-prefix: typos inside an otherwise matching prefix, e.g. a
	// transliterated "vashing" against "washington". Keys and queries are
	// ASCII after normalization, so byte slicing is safe.
	if len(query) < len(key) {
		d := levenshtein.ComputeDistance(query, key[:len(query)])
		// Edits may not make up more than half the prefix, or every short
		// query would brush against every name.
		if d <= maxEdits && d*2 < len(query) {
			best = prefixSimilarity(query, key) - editPenalty*float64(d)
		}
	}

	// Whole-name typo match.
	if diff := len(key) - len(query); diff <= maxEdits && -diff <= maxEdits {
		if d := levenshtein.ComputeDistance(query, key); d <= maxEdits {
			longer := len(query)
			if len(key) > longer {
				longer = len(key)
			}
			if sim := 1 - float64(d)/float64(longer); sim > best {
				best = sim
			}
		}
	}
	return best
}
