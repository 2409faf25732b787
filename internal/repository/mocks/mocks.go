package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/harmonie-studio/tunesync/internal/domain/match"
	"github.com/harmonie-studio/tunesync/internal/domain/song"
)

// SongRepository is a mock covering the song persistence surface.
type SongRepository struct {
	mock.Mock
}

func (m *SongRepository) Get(ctx context.Context, id string) (*song.Song, error) {
	args := m.Called(ctx, id)
	if s, ok := args.Get(0).(*song.Song); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SongRepository) List(ctx context.Context, opts song.ListOptions) ([]song.Song, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]song.Song); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SongRepository) UpdateExternalLink(ctx context.Context, id string, link song.ExternalLink) error {
	args := m.Called(ctx, id, link)
	return args.Error(0)
}

// MatchRepository is a mock covering the match persistence surface.
type MatchRepository struct {
	mock.Mock
}

func (m *MatchRepository) Create(ctx context.Context, mt *match.Match) error {
	args := m.Called(ctx, mt)
	return args.Error(0)
}

func (m *MatchRepository) Get(ctx context.Context, id string) (*match.Match, error) {
	args := m.Called(ctx, id)
	if mt, ok := args.Get(0).(*match.Match); ok {
		return mt, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MatchRepository) Resolve(ctx context.Context, id string, status match.Status, reviewerID string, resolvedAt time.Time) error {
	args := m.Called(ctx, id, status, reviewerID, resolvedAt)
	return args.Error(0)
}

func (m *MatchRepository) ListPending(ctx context.Context) ([]match.Match, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]match.Match); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
