package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harmonie-studio/tunesync/internal/domain/match"
	"github.com/harmonie-studio/tunesync/internal/domain/sync"
)

// SyncStarter launches sync sessions.
type SyncStarter interface {
	Run(ctx context.Context, userID string, opts sync.Options) (<-chan sync.Event, string, error)
}

// SessionCanceller signals a live sync session.
type SessionCanceller interface {
	Cancel(syncID string) bool
}

// MatchResolver resolves and lists queued matches.
type MatchResolver interface {
	Resolve(ctx context.Context, reviewerID, matchID string, decision match.Decision) (*match.Match, error)
	ListPending(ctx context.Context) ([]match.Match, error)
}

// Server wires HTTP handlers.
type Server struct {
	syncs    SyncStarter
	sessions SessionCanceller
	matches  MatchResolver
	logger   *slog.Logger
}

// NewServer creates an HTTP router with auth middleware.
func NewServer(syncs SyncStarter, sessions SessionCanceller, matches MatchResolver, resolver IdentityResolver, logger *slog.Logger) *chi.Mux {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	srv := &Server{
		syncs:    syncs,
		sessions: sessions,
		matches:  matches,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Get("/health", srv.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(resolver))
		r.Use(RequireOperator)

		r.Post("/api/sync/stream", srv.handleSyncStream)
		r.Delete("/api/sync/stream", srv.handleSyncCancel)
		r.Post("/api/matches/approve", srv.handleApprove)
		r.Post("/api/matches/reject", srv.handleReject)
		r.Get("/api/matches/pending", srv.handleListPending)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type syncRequest struct {
	SongIDs       []string `json:"songIds"`
	EnableAI      *bool    `json:"enableAI"`
	Force         bool     `json:"force"`
	MinConfidence *float64 `json:"minConfidence"`
}

func (s *Server) handleSyncStream(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}

	opts := sync.Options{
		SongIDs:        req.SongIDs,
		EnableAnalysis: true,
		Force:          req.Force,
		MinConfidence:  70,
	}
	if req.EnableAI != nil {
		opts.EnableAnalysis = *req.EnableAI
	}
	if req.MinConfidence != nil {
		opts.MinConfidence = *req.MinConfidence
	}

	events, syncID, err := s.syncs.Run(r.Context(), identity.UserID, opts)
	if err != nil {
		s.logger.Error("failed to start sync", "user", identity.UserID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Failed to start sync"})
		return
	}

	s.logger.Info("sync stream opened", "sync_id", syncID, "user", identity.UserID)
	streamEvents(w, events)
}

func (s *Server) handleSyncCancel(w http.ResponseWriter, r *http.Request) {
	syncID := r.URL.Query().Get("syncId")
	if syncID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "syncId required"})
		return
	}

	if !s.sessions.Cancel(syncID) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "Sync not found"})
		return
	}

	s.logger.Info("sync cancellation requested", "sync_id", syncID)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Sync cancelled"})
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	s.resolveMatch(w, r, match.DecisionApprove, "Match approved", "Failed to approve match")
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	s.resolveMatch(w, r, match.DecisionReject, "Match rejected", "Failed to reject match")
}

func (s *Server) resolveMatch(w http.ResponseWriter, r *http.Request, decision match.Decision, okMessage, failMessage string) {
	identity, _ := IdentityFromContext(r.Context())

	var req struct {
		MatchID string `json:"matchId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MatchID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "matchId is required"})
		return
	}

	_, err := s.matches.Resolve(r.Context(), identity.UserID, req.MatchID, decision)
	switch {
	case errors.Is(err, match.ErrMatchNotFound):
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "Match not found"})
	case errors.Is(err, match.ErrAlreadyResolved):
		writeJSON(w, http.StatusConflict, map[string]any{"error": "Match already resolved"})
	case err != nil:
		s.logger.Error("match resolution failed", "match_id", req.MatchID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": failMessage, "details": err.Error()})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": okMessage})
	}
}

func (s *Server) handleListPending(w http.ResponseWriter, r *http.Request) {
	matches, err := s.matches.ListPending(r.Context())
	if err != nil {
		s.logger.Error("failed to list pending matches", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Failed to list matches"})
		return
	}
	if matches == nil {
		matches = []match.Match{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
