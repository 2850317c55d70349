package suggest

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"

	"github.com/placeserve/placeserve/pkg/geodata"
)

// sessionEntry remembers the last served query for one session. Owned
// exclusively by the cache; read and written only under its lock.
type sessionEntry struct {
	query       string
	fingerprint string
	results     []Suggestion
	lastAccess  time.Time
}

// SessionCache stores each session's last query/result pair. It enables the
// not-modified short circuit for repeated queries and narrows the matcher's
// candidate pool while a user keeps typing the same name.
type SessionCache struct {
	mu      sync.Mutex
	entries map[string]*sessionEntry
	ttl     time.Duration
	now     func() time.Time
	done    chan struct{}
	once    sync.Once
}

// NewSessionCache creates a cache whose entries expire after ttl of
// inactivity. A positive sweepInterval starts a background sweep; expired
// entries are also dropped lazily on access either way.
func NewSessionCache(ttl, sweepInterval time.Duration) *SessionCache {
	c := &SessionCache{
		entries: make(map[string]*sessionEntry),
		ttl:     ttl,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	if sweepInterval > 0 {
		go c.sweep(sweepInterval)
	}
	return c
}

// Lookup checks the session's previous query against the incoming one.
// unchanged reports an identical repeat (the caller short-circuits with a
// not-modified response). When the new query strictly extends the previous
// one, pool holds the places from the last result set so the matcher can
// rescore against a smaller universe. Unrelated queries return a nil pool.
func (c *SessionCache) Lookup(sessionID, normalizedQuery string) (unchanged bool, pool []*geodata.PlaceRecord, fingerprint string) {
	if sessionID == "" {
		return false, nil, ""
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[sessionID]
	if !ok {
		return false, nil, ""
	}
	now := c.now()
	if now.Sub(e.lastAccess) > c.ttl {
		delete(c.entries, sessionID)
		return false, nil, ""
	}
	e.lastAccess = now

	if e.query == normalizedQuery {
		return true, nil, e.fingerprint
	}
	if e.query != "" && len(normalizedQuery) > len(e.query) && normalizedQuery[:len(e.query)] == e.query {
		pool = make([]*geodata.PlaceRecord, 0, len(e.results))
		for i := range e.results {
			pool = append(pool, e.results[i].place)
		}
	}
	return false, pool, e.fingerprint
}

// Store records the served query and results for the session.
func (c *SessionCache) Store(sessionID, normalizedQuery string, results []Suggestion, fingerprint string) {
	if sessionID == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[sessionID] = &sessionEntry{
		query:       normalizedQuery,
		fingerprint: fingerprint,
		results:     results,
		lastAccess:  c.now(),
	}
}

// Len reports the number of live session entries.
func (c *SessionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close stops the background sweep.
func (c *SessionCache) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *SessionCache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *SessionCache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	evicted := 0
	for id, e := range c.entries {
		if now.Sub(e.lastAccess) > c.ttl {
			delete(c.entries, id)
			evicted++
		}
	}
	if evicted > 0 {
		log.Debugf("Evicted %d idle sessions", evicted)
	}
}

// Fingerprint is a stable non-cryptographic digest of a ranked result set,
// compared for equality against the session's previous fingerprint.
func Fingerprint(results []Suggestion) string {
	h := xxhash.New()
	for i := range results {
		fmt.Fprintf(h, "%s|%.4f;", results[i].Name, results[i].Score)
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
