package suggest

import (
	"testing"
	"time"
)

func newTestSessionCache(ttl time.Duration) (*SessionCache, *time.Time) {
	c := NewSessionCache(ttl, 0)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func storedResults() []Suggestion {
	s := NewScorer(5, 1000, 0.3)
	m := NewMatcher(testIndex(), 0.4)
	return s.Score(m.Match("montr", nil), nil)
}

func TestSessionLookupMiss(t *testing.T) {
	c, _ := newTestSessionCache(time.Minute)
	unchanged, pool, fingerprint := c.Lookup("s1", "montr")
	if unchanged || pool != nil || fingerprint != "" {
		t.Errorf("fresh session lookup should miss, got unchanged=%v pool=%v fp=%q", unchanged, pool, fingerprint)
	}
}

func TestSessionUnchangedQuery(t *testing.T) {
	c, _ := newTestSessionCache(time.Minute)
	results := storedResults()
	fp := Fingerprint(results)
	c.Store("s1", "montr", results, fp)

	unchanged, _, gotFP := c.Lookup("s1", "montr")
	if !unchanged {
		t.Fatal("identical repeat query should report unchanged")
	}
	if gotFP != fp {
		t.Errorf("fingerprint = %q, want %q", gotFP, fp)
	}
}

func TestSessionPrefixExtensionNarrowsPool(t *testing.T) {
	c, _ := newTestSessionCache(time.Minute)
	results := storedResults()
	c.Store("s1", "montr", results, Fingerprint(results))

	unchanged, pool, _ := c.Lookup("s1", "montre")
	if unchanged {
		t.Fatal("extended query must not report unchanged")
	}
	if len(pool) != len(results) {
		t.Fatalf("narrowed pool has %d records, want %d", len(pool), len(results))
	}
}

func TestSessionUnrelatedQueryFullPool(t *testing.T) {
	c, _ := newTestSessionCache(time.Minute)
	results := storedResults()
	c.Store("s1", "montr", results, Fingerprint(results))

	// Not an extension: backspaced or replaced query falls back to the
	// full index (nil pool).
	for _, q := range []string{"mont", "washing"} {
		if _, pool, _ := c.Lookup("s1", q); pool != nil {
			t.Errorf("Lookup(%q) pool = %d records, want nil", q, len(pool))
		}
	}
}

func TestSessionIsolation(t *testing.T) {
	c, _ := newTestSessionCache(time.Minute)
	results := storedResults()
	c.Store("s1", "montr", results, Fingerprint(results))

	if unchanged, pool, fp := c.Lookup("s2", "montr"); unchanged || pool != nil || fp != "" {
		t.Error("second session must not observe the first session's state")
	}
}

func TestSessionTTLEviction(t *testing.T) {
	c, now := newTestSessionCache(time.Minute)
	results := storedResults()
	c.Store("s1", "montr", results, Fingerprint(results))

	*now = now.Add(61 * time.Second)
	if unchanged, _, _ := c.Lookup("s1", "montr"); unchanged {
		t.Error("expired entry should not report unchanged")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be dropped on access, still %d entries", c.Len())
	}
}

func TestSessionAccessRefreshesTTL(t *testing.T) {
	c, now := newTestSessionCache(time.Minute)
	results := storedResults()
	c.Store("s1", "montr", results, Fingerprint(results))

	*now = now.Add(40 * time.Second)
	c.Lookup("s1", "montre")
	*now = now.Add(40 * time.Second)

	if unchanged, _, _ := c.Lookup("s1", "montr"); !unchanged {
		t.Error("entry refreshed 40s ago should still be live")
	}
}

func TestSessionSweep(t *testing.T) {
	c, now := newTestSessionCache(time.Minute)
	results := storedResults()
	c.Store("s1", "montr", results, Fingerprint(results))
	c.Store("s2", "washing", results, Fingerprint(results))

	*now = now.Add(2 * time.Minute)
	c.evictExpired()
	if c.Len() != 0 {
		t.Errorf("sweep left %d entries, want 0", c.Len())
	}
}

func TestFingerprintStability(t *testing.T) {
	a := storedResults()
	b := storedResults()
	if Fingerprint(a) != Fingerprint(b) {
		t.Error("identical result sets must fingerprint identically")
	}
	if len(a) > 1 {
		reversed := []Suggestion{a[1], a[0]}
		if Fingerprint(a[:2]) == Fingerprint(reversed) {
			t.Error("reordered result sets must fingerprint differently")
		}
	}
}
