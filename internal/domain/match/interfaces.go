package match

import (
	"context"
	"time"

	"github.com/harmonie-studio/tunesync/internal/domain/song"
)

// MatchRepository is the persistence surface the resolver needs.
type MatchRepository interface {
	Get(ctx context.Context, id string) (*Match, error)
	// Resolve transitions a pending match to a terminal status. It reports
	// repository.ErrNotFound when the match is absent or no longer pending.
	Resolve(ctx context.Context, id string, status Status, reviewerID string, resolvedAt time.Time) error
	ListPending(ctx context.Context) ([]Match, error)
}

// SongRepository is the write-through surface used on approval.
type SongRepository interface {
	UpdateExternalLink(ctx context.Context, id string, link song.ExternalLink) error
}
