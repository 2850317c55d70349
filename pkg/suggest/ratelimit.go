package suggest

import (
	"math"
	"sync"
	"time"
)

// rateWindow tracks one client's current fixed window.
type rateWindow struct {
	start time.Time
	count int
}

// RateLimiter enforces a fixed request budget per time window for each
// client. All state lives in process memory and dies with the process.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
	budget  int
	window  time.Duration
	now     func() time.Time
}

// NewRateLimiter creates a limiter admitting budget requests per window.
func NewRateLimiter(budget int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*rateWindow),
		budget:  budget,
		window:  window,
		now:     time.Now,
	}
}

// Admit counts a request from the client and reports whether it may
// proceed. Counter updates are serialized, so near-simultaneous requests
// from one client can never be over-admitted. remaining is never negative;
// retryAfterSeconds is at least 1 on denial.
func (l *RateLimiter) Admit(clientID string) (allowed bool, remaining int, retryAfterSeconds int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[clientID]
	if !ok || now.Sub(w.start) >= l.window {
		if !ok && len(l.windows) >= pruneThreshold {
			l.prune(now)
		}
		l.windows[clientID] = &rateWindow{start: now, count: 1}
		return true, l.budget - 1, 0
	}

	w.count++
	if w.count <= l.budget {
		return true, l.budget - w.count, 0
	}

	retry := int(math.Ceil(l.window.Seconds() - now.Sub(w.start).Seconds()))
	if retry < 1 {
		retry = 1
	}
	return false, 0, retry
}

// Windows for clients that went quiet are dropped once the map grows past
// this, keeping memory bounded without a background goroutine.
const pruneThreshold = 4096

func (l *RateLimiter) prune(now time.Time) {
	for id, w := range l.windows {
		if now.Sub(w.start) >= l.window {
			delete(l.windows, id)
		}
	}
}
