package match

import (
	"time"

	"github.com/harmonie-studio/tunesync/internal/domain/song"
)

// Status represents the review state of a match.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Decision is a reviewer's verdict on a pending match.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Match is a queued candidate awaiting human judgment. All track fields are
// snapshotted at creation time so approval applies exactly what the reviewer
// saw, regardless of later catalog drift.
type Match struct {
	ID            string     `json:"id"`
	SongID        string     `json:"song_id"`
	TrackID       string     `json:"track_id"`
	TrackName     string     `json:"track_name"`
	ArtistName    string     `json:"artist_name"`
	AlbumName     string     `json:"album_name"`
	ExternalURL   string     `json:"external_url"`
	PreviewURL    *string    `json:"preview_url,omitempty"`
	CoverImageURL *string    `json:"cover_image_url,omitempty"`
	DurationMS    int        `json:"duration_ms"`
	ReleaseDate   string     `json:"release_date"`
	Popularity    int        `json:"popularity"`
	Confidence    float64    `json:"confidence"`
	SearchQuery   string     `json:"search_query"`
	MatchReason   string     `json:"match_reason"`
	Status        Status     `json:"status"`
	ReviewedBy    *string    `json:"reviewed_by,omitempty"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ExternalLink projects the snapshotted track fields into the value written
// onto the song on approval.
func (m *Match) ExternalLink() song.ExternalLink {
	link := song.ExternalLink{
		URL:         m.ExternalURL,
		DurationMS:  m.DurationMS,
		ReleaseYear: song.ReleaseYearFromDate(m.ReleaseDate),
		Author:      m.ArtistName,
	}
	if m.CoverImageURL != nil {
		link.CoverImageURL = *m.CoverImageURL
	}
	return link
}
