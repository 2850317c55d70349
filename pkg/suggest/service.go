package suggest

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/placeserve/placeserve/internal/logger"
	"github.com/placeserve/placeserve/pkg/config"
	"github.com/placeserve/placeserve/pkg/geodata"
)

// OutcomeKind discriminates the possible results of a Suggest call. Every
// outcome is an explicit value; nothing on this path panics or is swallowed.
type OutcomeKind int

const (
	// KindResult carries a ranked suggestion list.
	KindResult OutcomeKind = iota
	// KindNotModified signals the session repeated its previous query
	// unchanged; the transport emits a no-change response without a body.
	KindNotModified
	// KindRateLimited signals the client exhausted its request budget.
	KindRateLimited
	// KindNoMatch signals no place cleared the similarity cutoff.
	KindNoMatch
	// KindMalformed signals an empty or unusable query.
	KindMalformed
)

// Outcome is what a Suggest call hands the transport layer. Remaining is
// valid on every admitted outcome; RetryAfterSeconds only on KindRateLimited.
type Outcome struct {
	Kind              OutcomeKind
	Suggestions       []Suggestion
	Fingerprint       string
	Remaining         int
	RetryAfterSeconds int
}

// Service orchestrates the suggestion pipeline per request: admit, normalize,
// session lookup, match, score, store.
type Service struct {
	matcher  *Matcher
	scorer   *Scorer
	sessions *SessionCache
	limiter  *RateLimiter
	log      *log.Logger
}

// NewService wires the pipeline over an immutable place index using the
// tunables from cfg.
func NewService(index *geodata.Index, cfg *config.Config) *Service {
	return &Service{
		matcher: NewMatcher(index, cfg.Match.MinSimilarity),
		scorer:  NewScorer(cfg.Server.MaxResults, cfg.Geo.DecayKm, cfg.Geo.Floor),
		sessions: NewSessionCache(
			time.Duration(cfg.Session.TTLSeconds)*time.Second,
			time.Duration(cfg.Session.SweepSeconds)*time.Second,
		),
		limiter: NewRateLimiter(cfg.Rate.Budget, time.Duration(cfg.Rate.WindowSeconds)*time.Second),
		log:     logger.New("suggest"),
	}
}

// Suggest answers one suggestion query for the given session and client.
func (s *Service) Suggest(rawQuery string, clientLocation *LatLong, sessionID, clientID string) Outcome {
	allowed, remaining, retryAfter := s.limiter.Admit(clientID)
	if !allowed {
		s.log.Debugf("Rate limited client %s, retry after %ds", clientID, retryAfter)
		return Outcome{Kind: KindRateLimited, Remaining: 0, RetryAfterSeconds: retryAfter}
	}

	query := Normalize(rawQuery)
	if query == "" {
		return Outcome{Kind: KindMalformed, Remaining: remaining}
	}

	unchanged, pool, fingerprint := s.sessions.Lookup(sessionID, query)
	if unchanged {
		return Outcome{Kind: KindNotModified, Fingerprint: fingerprint, Remaining: remaining}
	}

	candidates := s.matcher.Match(query, pool)
	if len(candidates) == 0 && pool != nil {
		// The narrowed pool can miss places a fresh query would find, e.g.
		// after a typo turned the extension into a different name.
		candidates = s.matcher.Match(query, nil)
	}
	if len(candidates) == 0 {
		return Outcome{Kind: KindNoMatch, Remaining: remaining}
	}

	results := s.scorer.Score(candidates, clientLocation)
	fingerprint = Fingerprint(results)
	s.sessions.Store(sessionID, query, results, fingerprint)

	return Outcome{
		Kind:        KindResult,
		Suggestions: results,
		Fingerprint: fingerprint,
		Remaining:   remaining,
	}
}

// Close releases background resources (the session sweeper).
func (s *Service) Close() {
	s.sessions.Close()
}
