package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harmonie-studio/tunesync/internal/domain/match"
	"github.com/harmonie-studio/tunesync/internal/repository"
)

// MatchRepository implements review match persistence for SQLite.
type MatchRepository struct {
	db *DB
}

// NewMatchRepository creates a new MatchRepository
func NewMatchRepository(db *DB) *MatchRepository {
	return &MatchRepository{db: db}
}

const matchColumns = `id, song_id, track_id, track_name, artist_name, album_name, external_url,
	preview_url, cover_image_url, duration_ms, release_date, popularity, confidence,
	search_query, match_reason, status, reviewed_by, resolved_at, created_at`

// Create inserts a match. The partial unique index on pending matches makes
// queuing idempotent: a second pending match for the same song fails and is
// reported as ErrDuplicatePending.
func (r *MatchRepository) Create(ctx context.Context, m *match.Match) error {
	query := `
		INSERT INTO review_matches (
			id, song_id, track_id, track_name, artist_name, album_name, external_url,
			preview_url, cover_image_url, duration_ms, release_date, popularity, confidence,
			search_query, match_reason, status, reviewed_by, resolved_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		m.ID,
		m.SongID,
		m.TrackID,
		m.TrackName,
		m.ArtistName,
		m.AlbumName,
		m.ExternalURL,
		m.PreviewURL,
		m.CoverImageURL,
		m.DurationMS,
		m.ReleaseDate,
		m.Popularity,
		m.Confidence,
		m.SearchQuery,
		m.MatchReason,
		m.Status,
		m.ReviewedBy,
		m.ResolvedAt,
		m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicatePending
		}
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

// Get retrieves a match by ID.
func (r *MatchRepository) Get(ctx context.Context, id string) (*match.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM review_matches WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return m, nil
}

// Resolve transitions a pending match to a terminal status. The status guard
// in the WHERE clause makes the transition atomic; losing a race surfaces as
// ErrNotFound.
func (r *MatchRepository) Resolve(ctx context.Context, id string, status match.Status, reviewerID string, resolvedAt time.Time) error {
	query := `
		UPDATE review_matches
		SET status = ?, reviewed_by = ?, resolved_at = ?
		WHERE id = ? AND status = 'pending'
	`

	result, err := r.db.ExecContext(ctx, query, status, reviewerID, resolvedAt, id)
	if err != nil {
		return fmt.Errorf("failed to resolve match: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check resolution: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListPending returns pending matches, oldest first.
func (r *MatchRepository) ListPending(ctx context.Context) ([]match.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM review_matches WHERE status = 'pending' ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending matches: %w", err)
	}
	defer rows.Close()

	var matches []match.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func scanMatch(row scanner) (*match.Match, error) {
	var m match.Match
	var previewURL, coverImageURL, reviewedBy sql.NullString
	var resolvedAt sql.NullTime

	err := row.Scan(
		&m.ID,
		&m.SongID,
		&m.TrackID,
		&m.TrackName,
		&m.ArtistName,
		&m.AlbumName,
		&m.ExternalURL,
		&previewURL,
		&coverImageURL,
		&m.DurationMS,
		&m.ReleaseDate,
		&m.Popularity,
		&m.Confidence,
		&m.SearchQuery,
		&m.MatchReason,
		&m.Status,
		&reviewedBy,
		&resolvedAt,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if previewURL.Valid {
		m.PreviewURL = &previewURL.String
	}
	if coverImageURL.Valid {
		m.CoverImageURL = &coverImageURL.String
	}
	if reviewedBy.Valid {
		m.ReviewedBy = &reviewedBy.String
	}
	if resolvedAt.Valid {
		m.ResolvedAt = &resolvedAt.Time
	}
	return &m, nil
}
