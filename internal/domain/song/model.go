package song

import (
	"strconv"
	"time"
)

// Song is a catalog entry owned by the studio. Link fields are nil until a
// sync or an approved review match fills them in.
type Song struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	ExternalURL   *string    `json:"external_url,omitempty"`
	DurationMS    *int       `json:"duration_ms,omitempty"`
	ReleaseYear   *int       `json:"release_year,omitempty"`
	CoverImageURL *string    `json:"cover_image_url,omitempty"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// HasExternalLink reports whether the song is already linked to an external track.
func (s *Song) HasExternalLink() bool {
	return s.ExternalURL != nil && *s.ExternalURL != ""
}

// ExternalLink carries the fields written onto a song when a match is applied,
// either automatically during a sync or through reviewer approval.
type ExternalLink struct {
	URL           string
	DurationMS    int
	ReleaseYear   *int
	Author        string
	CoverImageURL string
}

// ReleaseYearFromDate extracts the year from a full or partial release date
// such as "1969-09-26" or "1969". Returns nil if no year can be parsed.
func ReleaseYearFromDate(date string) *int {
	if len(date) < 4 {
		return nil
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return nil
	}
	return &year
}
