package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harmonie-studio/tunesync/internal/domain/song"
	"github.com/harmonie-studio/tunesync/internal/repository"
)

func TestSongRepository_GetAndList(t *testing.T) {
	db := testDB(t)
	repo := NewSongRepository(db)
	ctx := t.Context()

	seedSong(t, repo, "s1", "Clair de Lune")
	seedSong(t, repo, "s2", "Arabesque")

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "Clair de Lune", got.Title)
	require.False(t, got.HasExternalLink())

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)

	all, err := repo.List(ctx, song.ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	selected, err := repo.List(ctx, song.ListOptions{IDs: []string{"s2"}})
	require.NoError(t, err)
	require.Len(t, selected, 1)
	require.Equal(t, "s2", selected[0].ID)
}

func TestSongRepository_ListMissingLinkOnly(t *testing.T) {
	db := testDB(t)
	repo := NewSongRepository(db)
	ctx := t.Context()

	seedSong(t, repo, "s1", "Linked")
	seedSong(t, repo, "s2", "Unlinked")

	require.NoError(t, repo.UpdateExternalLink(ctx, "s1", song.ExternalLink{
		URL:        "https://open.spotify.com/track/abc",
		DurationMS: 180000,
	}))

	missing, err := repo.List(ctx, song.ListOptions{MissingLinkOnly: true})
	require.NoError(t, err)
	require.Len(t, missing, 1)
	require.Equal(t, "s2", missing[0].ID)
}

func TestSongRepository_ListExcludesSoftDeleted(t *testing.T) {
	db := testDB(t)
	repo := NewSongRepository(db)
	ctx := t.Context()

	seedSong(t, repo, "s1", "Kept")
	seedSong(t, repo, "s2", "Deleted")

	_, err := db.ExecContext(ctx, `UPDATE songs SET deleted_at = ? WHERE id = 's2'`, time.Now().UTC())
	require.NoError(t, err)

	all, err := repo.List(ctx, song.ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "s1", all[0].ID)

	_, err = repo.Get(ctx, "s2")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSongRepository_UpdateExternalLink(t *testing.T) {
	db := testDB(t)
	repo := NewSongRepository(db)
	ctx := t.Context()

	seedSong(t, repo, "s1", "Clair de Lune")

	year := 1905
	require.NoError(t, repo.UpdateExternalLink(ctx, "s1", song.ExternalLink{
		URL:           "https://open.spotify.com/track/abc",
		DurationMS:    300000,
		ReleaseYear:   &year,
		Author:        "Claude Debussy",
		CoverImageURL: "https://img.example/cover.jpg",
	}))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.True(t, got.HasExternalLink())
	require.Equal(t, "https://open.spotify.com/track/abc", *got.ExternalURL)
	require.Equal(t, 300000, *got.DurationMS)
	require.Equal(t, 1905, *got.ReleaseYear)
	require.Equal(t, "Claude Debussy", got.Author)
	require.Equal(t, "https://img.example/cover.jpg", *got.CoverImageURL)
}

func TestSongRepository_UpdateExternalLink_KeepsAuthorWhenEmpty(t *testing.T) {
	db := testDB(t)
	repo := NewSongRepository(db)
	ctx := t.Context()

	seedSong(t, repo, "s1", "Clair de Lune")

	require.NoError(t, repo.UpdateExternalLink(ctx, "s1", song.ExternalLink{
		URL:        "https://open.spotify.com/track/abc",
		DurationMS: 300000,
	}))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "Debussy", got.Author)
	require.Nil(t, got.CoverImageURL)
	require.Nil(t, got.ReleaseYear)
}

func TestSongRepository_UpdateExternalLink_NotFound(t *testing.T) {
	db := testDB(t)
	repo := NewSongRepository(db)

	err := repo.UpdateExternalLink(t.Context(), "missing", song.ExternalLink{URL: "x"})
	require.ErrorIs(t, err, repository.ErrNotFound)
}
