package sync

import (
	"context"

	"github.com/harmonie-studio/tunesync/internal/catalog"
	"github.com/harmonie-studio/tunesync/internal/domain/match"
	"github.com/harmonie-studio/tunesync/internal/domain/song"
)

// SongRepository is the persistence surface the orchestrator needs.
type SongRepository interface {
	List(ctx context.Context, opts song.ListOptions) ([]song.Song, error)
	UpdateExternalLink(ctx context.Context, id string, link song.ExternalLink) error
}

// MatchRepository queues candidates for review. Create reports
// repository.ErrDuplicatePending when the song already has a pending match;
// the store's uniqueness constraint makes queuing idempotent under
// concurrent sessions.
type MatchRepository interface {
	Create(ctx context.Context, m *match.Match) error
}

// Searcher is the external search capability, consumed as an opaque
// candidate source.
type Searcher interface {
	Search(ctx context.Context, s song.Song, opts catalog.SearchOptions) ([]catalog.Candidate, error)
}
