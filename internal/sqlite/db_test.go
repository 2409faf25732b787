package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harmonie-studio/tunesync/internal/domain/song"
)

func testDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// The pool must not open a second connection to a private in-memory DB.
	db.SetMaxOpenConns(1)

	require.NoError(t, db.RunMigrations())
	return db
}

func seedSong(t *testing.T, repo *SongRepository, id, title string) song.Song {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	s := song.Song{
		ID:        id,
		Title:     title,
		Author:    "Debussy",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.Create(t.Context(), &s))
	return s
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.RunMigrations())
}
