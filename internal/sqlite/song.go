package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/harmonie-studio/tunesync/internal/domain/song"
	"github.com/harmonie-studio/tunesync/internal/repository"
)

// SongRepository implements song persistence for SQLite.
type SongRepository struct {
	db *DB
}

// NewSongRepository creates a new SongRepository
func NewSongRepository(db *DB) *SongRepository {
	return &SongRepository{db: db}
}

const songColumns = `id, title, author, external_url, duration_ms, release_year, cover_image_url, deleted_at, created_at, updated_at`

// Create inserts a song.
func (r *SongRepository) Create(ctx context.Context, s *song.Song) error {
	query := `
		INSERT INTO songs (id, title, author, external_url, duration_ms, release_year, cover_image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.Title,
		s.Author,
		s.ExternalURL,
		s.DurationMS,
		s.ReleaseYear,
		s.CoverImageURL,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create song: %w", err)
	}
	return nil
}

// Get retrieves a song by ID. Soft-deleted songs are not found.
func (r *SongRepository) Get(ctx context.Context, id string) (*song.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE id = ? AND deleted_at IS NULL`

	row := r.db.QueryRowContext(ctx, query, id)
	s, err := scanSong(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get song: %w", err)
	}
	return s, nil
}

// List returns songs matching the filter in insertion order.
func (r *SongRepository) List(ctx context.Context, opts song.ListOptions) ([]song.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE deleted_at IS NULL`
	var args []any

	if len(opts.IDs) > 0 {
		placeholders := strings.Repeat("?,", len(opts.IDs))
		query += ` AND id IN (` + placeholders[:len(placeholders)-1] + `)`
		for _, id := range opts.IDs {
			args = append(args, id)
		}
	} else if opts.MissingLinkOnly {
		query += ` AND external_url IS NULL`
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}
	defer rows.Close()

	var songs []song.Song
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		songs = append(songs, *s)
	}
	return songs, rows.Err()
}

// UpdateExternalLink writes the matched track fields onto a song.
func (r *SongRepository) UpdateExternalLink(ctx context.Context, id string, link song.ExternalLink) error {
	query := `
		UPDATE songs
		SET external_url = ?, duration_ms = ?, release_year = ?,
		    author = CASE WHEN ? != '' THEN ? ELSE author END,
		    cover_image_url = CASE WHEN ? != '' THEN ? ELSE cover_image_url END,
		    updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		link.URL,
		link.DurationMS,
		link.ReleaseYear,
		link.Author, link.Author,
		link.CoverImageURL, link.CoverImageURL,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update song link: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSong(row scanner) (*song.Song, error) {
	var s song.Song
	var externalURL, coverImageURL sql.NullString
	var durationMS, releaseYear sql.NullInt64
	var deletedAt sql.NullTime

	err := row.Scan(
		&s.ID,
		&s.Title,
		&s.Author,
		&externalURL,
		&durationMS,
		&releaseYear,
		&coverImageURL,
		&deletedAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if externalURL.Valid {
		s.ExternalURL = &externalURL.String
	}
	if durationMS.Valid {
		v := int(durationMS.Int64)
		s.DurationMS = &v
	}
	if releaseYear.Valid {
		v := int(releaseYear.Int64)
		s.ReleaseYear = &v
	}
	if coverImageURL.Valid {
		s.CoverImageURL = &coverImageURL.String
	}
	if deletedAt.Valid {
		s.DeletedAt = &deletedAt.Time
	}
	return &s, nil
}
