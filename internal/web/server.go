// Package web exposes the scheduling engine over a JSON HTTP API.
package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jagzao/memorank/internal/domain"
	"github.com/jagzao/memorank/internal/engine"
)

// QueueDefaults are the session settings applied when a queue request
// does not specify them in the query string.
type QueueDefaults struct {
	MaxCards   int
	ExcludeNew bool
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	engine   *engine.Engine
	defaults QueueDefaults
	log      *slog.Logger
	router   *http.ServeMux
}

// NewServer creates and configures a new server.
func NewServer(eng *engine.Engine, defaults QueueDefaults, log *slog.Logger) *Server {
	s := &Server{
		engine:   eng,
		defaults: defaults,
		log:      log,
		router:   http.NewServeMux(),
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	s.router.HandleFunc("GET /due", s.handleGetDue())
	s.router.HandleFunc("GET /queue", s.handleGetQueue())
	s.router.HandleFunc("GET /stats", s.handleGetStats())
	s.router.HandleFunc("POST /review", s.handlePostReview())
	s.router.HandleFunc("POST /reviews", s.handlePostReviews())
	s.router.HandleFunc("POST /cards/{id}/reset", s.handlePostReset())
}

// handleGetDue returns the due cards, most overdue first. An optional
// ?limit=N caps the result.
func (s *Server) handleGetDue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				s.writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = n
		}

		cards, err := s.engine.DueCards(r.Context(), time.Now().UTC(), limit)
		if err != nil {
			s.writeEngineError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, cards)
	}
}

// handleGetQueue composes a study queue. Query parameters: max_cards,
// exclude_new, and repeatable category and difficulty filters; omitted
// parameters fall back to the server's configured defaults.
func (s *Server) handleGetQueue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		opts := engine.QueueOptions{
			MaxCards:   s.defaults.MaxCards,
			ExcludeNew: s.defaults.ExcludeNew,
			Categories: query["category"],
		}

		if raw := query.Get("max_cards"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				s.writeError(w, http.StatusBadRequest, "invalid max_cards")
				return
			}
			opts.MaxCards = n
		}
		if raw := query.Get("exclude_new"); raw != "" {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				s.writeError(w, http.StatusBadRequest, "invalid exclude_new")
				return
			}
			opts.ExcludeNew = b
		}
		for _, raw := range query["difficulty"] {
			d, err := domain.ParseDifficulty(raw)
			if err != nil {
				s.writeError(w, http.StatusBadRequest, "invalid difficulty: "+raw)
				return
			}
			opts.Difficulties = append(opts.Difficulties, d)
		}

		cards, err := s.engine.StudyQueue(r.Context(), time.Now().UTC(), opts)
		if err != nil {
			s.writeEngineError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, cards)
	}
}

// handleGetStats returns the current session statistics.
func (s *Server) handleGetStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.engine.Stats(r.Context(), time.Now().UTC())
		if err != nil {
			s.writeEngineError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, stats)
	}
}

// handlePostReview processes a single graded outcome. A missing timestamp
// defaults to the time the request was received.
func (s *Server) handlePostReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var outcome domain.Outcome
		if err := json.NewDecoder(r.Body).Decode(&outcome); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if outcome.Timestamp.IsZero() {
			outcome.Timestamp = time.Now().UTC()
		}

		if err := s.engine.ProcessOutcome(r.Context(), outcome); err != nil {
			s.writeEngineError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// handlePostReviews processes a batch of outcomes. Invalid entries are
// skipped; a storage failure aborts with the unprocessed remainder.
func (s *Server) handlePostReviews() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var outcomes []domain.Outcome
		if err := json.NewDecoder(r.Body).Decode(&outcomes); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		now := time.Now().UTC()
		for i := range outcomes {
			if outcomes[i].Timestamp.IsZero() {
				outcomes[i].Timestamp = now
			}
		}

		result, err := s.engine.ProcessOutcomes(r.Context(), outcomes)
		if err != nil {
			if errors.Is(err, engine.ErrStoreUnavailable) {
				s.writeJSON(w, http.StatusServiceUnavailable, result)
				return
			}
			s.writeEngineError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, result)
	}
}

// handlePostReset puts a card back into the learning state.
func (s *Server) handlePostReset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := s.engine.ResetCard(r.Context(), id, time.Now().UTC()); err != nil {
			s.writeEngineError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrInvalidOutcome):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrCardNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrStoreUnavailable):
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.log.Error("request failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
