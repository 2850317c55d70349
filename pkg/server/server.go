/*
Package server exposes the suggestion pipeline over HTTP.

A single endpoint serves autocomplete UIs issuing one request per keystroke:

	GET /suggestions?q=montr&latitude=40.69&longitude=-74.12

Responses map core outcomes onto the wire: a ranked JSON suggestion list
(200), an empty list when nothing matches (404), a no-change response for a
repeated session query (304), a rejected burst (429 with Retry-After) and a
missing or unusable parameter (400). Session continuity rides on a cookie;
rate limiting is keyed by client IP. Admitted responses carry the
X-RateLimit-Limit and X-RateLimit-Remaining headers.
*/
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/placeserve/placeserve/internal/logger"
	"github.com/placeserve/placeserve/pkg/config"
	"github.com/placeserve/placeserve/pkg/suggest"
)

// sessionCookie correlates successive keystrokes from one autocomplete box.
const sessionCookie = "psid"

// SuggestionsResponse is the body for both match and no-match outcomes.
type SuggestionsResponse struct {
	Suggestions []suggest.Suggestion `json:"suggestions"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server handles HTTP for place suggestions.
type Server struct {
	svc *suggest.Service
	cfg *config.Config
	log *log.Logger
}

// NewServer creates an HTTP server around a suggestion service.
func NewServer(svc *suggest.Service, cfg *config.Config) *Server {
	return &Server{
		svc: svc,
		cfg: cfg,
		log: logger.New("server"),
	}
}

// Handler builds the chi router with the standard middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept"},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/suggestions", s.handleSuggestions)
	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("Listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing 'q' parameter"})
		return
	}
	if max := s.cfg.Server.MaxQueryLen; max > 0 && len(query) > max {
		s.respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("'q' exceeds maximum length of %d characters", max)})
		return
	}

	loc, err := parseLocation(r)
	if err != nil {
		s.respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	outcome := s.svc.Suggest(query, loc, s.sessionID(w, r), clientID(r))

	if outcome.Kind == suggest.KindRateLimited {
		w.Header().Set("Retry-After", strconv.Itoa(outcome.RetryAfterSeconds))
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(s.cfg.Rate.Budget))
		w.Header().Set("X-RateLimit-Remaining", "0")
		s.respondJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "too many requests"})
		return
	}

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(s.cfg.Rate.Budget))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(outcome.Remaining))

	switch outcome.Kind {
	case suggest.KindMalformed:
		s.respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "unusable 'q' parameter"})
	case suggest.KindNotModified:
		w.Header().Set("ETag", etag(outcome.Fingerprint))
		w.WriteHeader(http.StatusNotModified)
	case suggest.KindNoMatch:
		s.respondJSON(w, http.StatusNotFound, SuggestionsResponse{Suggestions: []suggest.Suggestion{}})
	default:
		w.Header().Set("ETag", etag(outcome.Fingerprint))
		s.respondJSON(w, http.StatusOK, SuggestionsResponse{Suggestions: outcome.Suggestions})
	}
}

// parseLocation reads the optional latitude/longitude pair. Supplying only
// one half, or values that do not parse, is a caller contract violation.
func parseLocation(r *http.Request) (*suggest.LatLong, error) {
	latRaw := r.URL.Query().Get("latitude")
	longRaw := r.URL.Query().Get("longitude")
	if latRaw == "" && longRaw == "" {
		return nil, nil
	}
	if latRaw == "" || longRaw == "" {
		return nil, fmt.Errorf("latitude and longitude must be supplied together")
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return nil, fmt.Errorf("unparseable latitude %q", latRaw)
	}
	long, err := strconv.ParseFloat(longRaw, 64)
	if err != nil {
		return nil, fmt.Errorf("unparseable longitude %q", longRaw)
	}
	return &suggest.LatLong{Latitude: lat, Longitude: long}, nil
}

// sessionID reads the session cookie, minting one on first contact.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// clientID keys the rate limiter by caller IP. RealIP middleware has
// already resolved proxy headers into RemoteAddr.
func clientID(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func etag(fingerprint string) string {
	return `W/"` + fingerprint + `"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Errorf("Encoding response: %v", err)
	}
}
