package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/harmonie-studio/tunesync/internal/catalog"
	"github.com/harmonie-studio/tunesync/internal/domain/match"
	"github.com/harmonie-studio/tunesync/internal/domain/song"
	"github.com/harmonie-studio/tunesync/internal/repository"
)

// Options controls one sync run.
type Options struct {
	// SongIDs selects an explicit set of songs. When empty the run covers
	// every song missing an external link, or every song when Force is set.
	SongIDs []string
	// EnableAnalysis turns on normalized fallback queries in the search.
	EnableAnalysis bool
	// Force includes songs that already have an external link.
	Force bool
	// MinConfidence tunes search early-termination. It never moves the
	// classification thresholds.
	MinConfidence float64
}

// Config holds orchestrator tuning knobs.
type Config struct {
	// WorkTimeout bounds the external lookup for a single song. A timed-out
	// lookup degrades to song_failed and the run continues.
	WorkTimeout time.Duration
	// MaxQueries caps the search fan-out per song.
	MaxQueries int
	// EventBuffer sizes the progress event channel.
	EventBuffer int
}

const (
	defaultWorkTimeout = 30 * time.Second
	defaultMaxQueries  = 8
	defaultEventBuffer = 16
)

func (c *Config) applyDefaults() {
	if c.WorkTimeout <= 0 {
		c.WorkTimeout = defaultWorkTimeout
	}
	if c.MaxQueries <= 0 {
		c.MaxQueries = defaultMaxQueries
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = defaultEventBuffer
	}
}

// Service drives sync sessions end to end: it resolves the song set, runs the
// external search per song, classifies the result, acts on the verdict, and
// emits an ordered event stream.
type Service struct {
	songs    SongRepository
	matches  MatchRepository
	searcher Searcher
	registry *Registry
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a sync service.
func NewService(songs SongRepository, matches MatchRepository, searcher Searcher, registry *Registry, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cfg.applyDefaults()
	return &Service{
		songs:    songs,
		matches:  matches,
		searcher: searcher,
		registry: registry,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Run registers a session and starts processing in the background. The
// returned channel carries the session's ordered events and is closed after
// the terminal event; the session is always released from the registry before
// the channel closes.
func (s *Service) Run(ctx context.Context, userID string, opts Options) (<-chan Event, string, error) {
	syncID := fmt.Sprintf("%s-%d", userID, s.now().UnixNano())
	token, err := s.registry.Register(syncID)
	if err != nil {
		return nil, "", err
	}

	events := make(chan Event, s.cfg.EventBuffer)
	go s.run(ctx, syncID, token, opts, events)
	return events, syncID, nil
}

func (s *Service) run(ctx context.Context, syncID string, token *Token, opts Options, events chan<- Event) {
	defer close(events)
	defer s.registry.Release(syncID)

	// Emitting blocks on a slow consumer rather than dropping events; a
	// vanished consumer surfaces as ctx cancellation.
	emit := func(ev Event) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if !emit(Event{Type: EventInit, SyncID: syncID}) {
		return
	}

	listOpts := song.ListOptions{IDs: opts.SongIDs}
	if len(opts.SongIDs) == 0 && !opts.Force {
		listOpts.MissingLinkOnly = true
	}

	songs, err := s.songs.List(ctx, listOpts)
	if err != nil {
		s.logger.Error("sync failed to load songs", "sync_id", syncID, "error", err)
		emit(Event{Type: EventError, Error: fmt.Sprintf("loading songs: %v", err)})
		return
	}

	if len(songs) == 0 {
		emit(Event{Type: EventComplete, Results: &Summary{Message: "no songs found to process"}})
		return
	}

	if !emit(Event{Type: EventStart, Total: len(songs)}) {
		return
	}

	s.logger.Info("sync started", "sync_id", syncID, "total", len(songs), "force", opts.Force)

	summary := Summary{Total: len(songs)}
	var confidenceSum float64
	var confidenceCount int

	for i, current := range songs {
		// Cancellation is cooperative and checked at song boundaries; a
		// lookup already in flight finishes before the flag is observed.
		if token.Cancelled() {
			s.logger.Info("sync cancelled", "sync_id", syncID, "completed", i)
			emit(Event{Type: EventCancelled, Message: "sync cancelled by user"})
			return
		}
		if ctx.Err() != nil {
			return
		}

		best, err := s.lookup(ctx, current, opts)
		var delivered bool
		switch {
		case err != nil:
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", current.Title, err))
			delivered = emit(Event{Type: EventSongFailed, SongID: current.ID, Title: current.Title, Error: err.Error()})
		default:
			if best != nil {
				confidenceSum += best.Confidence
				confidenceCount++
			}
			delivered = s.applyVerdict(ctx, emit, current, best, &summary)
		}
		if !delivered {
			return
		}

		completed := i + 1
		if !emit(Event{
			Type:        EventProgress,
			Completed:   completed,
			Total:       len(songs),
			CurrentSong: current.Title,
			Percentage:  completed * 100 / len(songs),
		}) {
			return
		}
	}

	if confidenceCount > 0 {
		summary.AverageConfidence = math.Round(confidenceSum / float64(confidenceCount))
	}

	s.logger.Info("sync complete",
		"sync_id", syncID,
		"updated", summary.Updated,
		"pending", summary.Pending,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	emit(Event{Type: EventComplete, Results: &summary})
}

// lookup runs the bounded external search and picks the best candidate.
func (s *Service) lookup(ctx context.Context, current song.Song, opts Options) (*catalog.Candidate, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.cfg.WorkTimeout)
	defer cancel()

	candidates, err := s.searcher.Search(lookupCtx, current, catalog.SearchOptions{
		MaxQueries:     s.cfg.MaxQueries,
		MinConfidence:  opts.MinConfidence,
		EnableAnalysis: opts.EnableAnalysis,
	})
	if err != nil {
		return nil, err
	}
	return catalog.Best(candidates), nil
}

// applyVerdict acts on the classification and emits the per-song outcome
// event. A single song's failure never aborts the run. Returns false only
// when the event could not be delivered.
func (s *Service) applyVerdict(ctx context.Context, emit func(Event) bool, current song.Song, best *catalog.Candidate, summary *Summary) bool {
	switch Classify(best) {
	case VerdictAutoApply:
		if err := s.songs.UpdateExternalLink(ctx, current.ID, linkFromCandidate(best)); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("failed to update %s: %v", current.Title, err))
			return emit(Event{Type: EventSongFailed, SongID: current.ID, Title: current.Title, Error: err.Error()})
		}
		summary.Updated++
		return emit(Event{
			Type:       EventSongUpdated,
			SongID:     current.ID,
			Title:      current.Title,
			TrackName:  best.TrackName,
			Confidence: best.Confidence,
		})

	case VerdictQueueForReview:
		err := s.matches.Create(ctx, newPendingMatch(current, best, s.now()))
		switch {
		case errors.Is(err, repository.ErrDuplicatePending):
			summary.Pending++
			return emit(Event{
				Type:    EventSongPending,
				SongID:  current.ID,
				Title:   current.Title,
				Message: "already has a pending match",
			})
		case err != nil:
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("failed to queue %s: %v", current.Title, err))
			return emit(Event{Type: EventSongFailed, SongID: current.ID, Title: current.Title, Error: err.Error()})
		default:
			summary.Pending++
			return emit(Event{
				Type:       EventSongPending,
				SongID:     current.ID,
				Title:      current.Title,
				TrackName:  best.TrackName,
				Confidence: best.Confidence,
			})
		}

	default:
		summary.Skipped++
		reason := "no candidate"
		var confidence float64
		if best != nil {
			reason = best.MatchReason
			confidence = best.Confidence
		}
		return emit(Event{
			Type:       EventSongSkipped,
			SongID:     current.ID,
			Title:      current.Title,
			Reason:     reason,
			Confidence: confidence,
		})
	}
}

func linkFromCandidate(c *catalog.Candidate) song.ExternalLink {
	return song.ExternalLink{
		URL:           c.ExternalURL,
		DurationMS:    c.DurationMS,
		ReleaseYear:   song.ReleaseYearFromDate(c.ReleaseDate),
		Author:        c.ArtistName,
		CoverImageURL: c.CoverImageURL,
	}
}

func newPendingMatch(current song.Song, c *catalog.Candidate, now time.Time) *match.Match {
	m := &match.Match{
		ID:          uuid.NewString(),
		SongID:      current.ID,
		TrackID:     c.TrackID,
		TrackName:   c.TrackName,
		ArtistName:  c.ArtistName,
		AlbumName:   c.AlbumName,
		ExternalURL: c.ExternalURL,
		DurationMS:  c.DurationMS,
		ReleaseDate: c.ReleaseDate,
		Popularity:  c.Popularity,
		Confidence:  c.Confidence,
		SearchQuery: c.SearchQuery,
		MatchReason: c.MatchReason,
		Status:      match.StatusPending,
		CreatedAt:   now,
	}
	if c.PreviewURL != "" {
		m.PreviewURL = &c.PreviewURL
	}
	if c.CoverImageURL != "" {
		m.CoverImageURL = &c.CoverImageURL
	}
	return m
}
