package catalog

// Candidate is a single proposed match for a song, scored by the client.
// It lives for one sync iteration: the orchestrator either discards it,
// queues it for review, or applies it to the song.
type Candidate struct {
	TrackID       string  `json:"track_id"`
	TrackName     string  `json:"track_name"`
	ArtistName    string  `json:"artist_name"`
	AlbumName     string  `json:"album_name"`
	ExternalURL   string  `json:"external_url"`
	PreviewURL    string  `json:"preview_url,omitempty"`
	CoverImageURL string  `json:"cover_image_url,omitempty"`
	DurationMS    int     `json:"duration_ms"`
	ReleaseDate   string  `json:"release_date"`
	Popularity    int     `json:"popularity"`
	Confidence    float64 `json:"confidence"`
	SearchQuery   string  `json:"search_query"`
	MatchReason   string  `json:"match_reason"`
}

// SearchOptions tunes a search run.
type SearchOptions struct {
	// MaxQueries caps how many fallback queries are issued per song.
	MaxQueries int
	// MinConfidence stops the query fan-out early once a candidate at or
	// above this score is found. It does not filter the returned set.
	MinConfidence float64
	// EnableAnalysis adds normalized fallback queries for entries with
	// noisy titles or authors.
	EnableAnalysis bool
}

// Best returns the highest-confidence candidate, or nil for an empty set.
func Best(candidates []Candidate) *Candidate {
	var best *Candidate
	for i := range candidates {
		if best == nil || candidates[i].Confidence > best.Confidence {
			best = &candidates[i]
		}
	}
	return best
}
