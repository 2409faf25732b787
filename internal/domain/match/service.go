package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/harmonie-studio/tunesync/internal/repository"
)

// Service resolves queued matches. It is the only component that mutates a
// match after creation.
type Service struct {
	matches MatchRepository
	songs   SongRepository
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a new match service.
func NewService(matches MatchRepository, songs SongRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		matches: matches,
		songs:   songs,
		logger:  logger,
		now:     time.Now,
	}
}

// Resolve applies a reviewer's decision to a pending match. Approval also
// writes the snapshotted track fields onto the song, the same projection the
// orchestrator performs for high-confidence matches. Both outcomes are
// terminal: a resolved match can never transition again.
func (s *Service) Resolve(ctx context.Context, reviewerID, matchID string, decision Decision) (*Match, error) {
	if matchID == "" {
		return nil, ErrInvalidInput
	}

	var status Status
	switch decision {
	case DecisionApprove:
		status = StatusApproved
	case DecisionReject:
		status = StatusRejected
	default:
		return nil, ErrInvalidDecision
	}

	m, err := s.matches.Get(ctx, matchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("loading match: %w", err)
	}
	if m.Status != StatusPending {
		return nil, ErrAlreadyResolved
	}

	resolvedAt := s.now()
	if err := s.matches.Resolve(ctx, matchID, status, reviewerID, resolvedAt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Another reviewer won the race between Get and Resolve.
			return nil, ErrAlreadyResolved
		}
		return nil, fmt.Errorf("resolving match: %w", err)
	}

	m.Status = status
	m.ReviewedBy = &reviewerID
	m.ResolvedAt = &resolvedAt

	if status == StatusApproved {
		if err := s.songs.UpdateExternalLink(ctx, m.SongID, m.ExternalLink()); err != nil {
			return nil, fmt.Errorf("applying match to song: %w", err)
		}
	}

	s.logger.Info("match resolved",
		"match_id", matchID,
		"song_id", m.SongID,
		"status", status,
		"reviewer", reviewerID,
	)
	return m, nil
}

// ListPending returns every match awaiting review, oldest first.
func (s *Service) ListPending(ctx context.Context) ([]Match, error) {
	return s.matches.ListPending(ctx)
}
