package sync

// EventType identifies a progress stream event.
type EventType string

const (
	EventInit        EventType = "init"
	EventStart       EventType = "start"
	EventProgress    EventType = "progress"
	EventSongUpdated EventType = "song_updated"
	EventSongPending EventType = "song_pending"
	EventSongSkipped EventType = "song_skipped"
	EventSongFailed  EventType = "song_failed"
	EventCancelled   EventType = "cancelled"
	EventError       EventType = "error"
	EventComplete    EventType = "complete"
)

// Terminal reports whether the event ends the stream.
func (t EventType) Terminal() bool {
	switch t {
	case EventCancelled, EventError, EventComplete:
		return true
	}
	return false
}

// Event is one frame of the progress stream. Events for a session are
// strictly ordered: init, start, then per-song outcome and progress pairs in
// input order, then exactly one terminal event.
type Event struct {
	Type        EventType `json:"type"`
	SyncID      string    `json:"syncId,omitempty"`
	Total       int       `json:"total,omitempty"`
	Completed   int       `json:"completed,omitempty"`
	Percentage  int       `json:"percentage,omitempty"`
	CurrentSong string    `json:"currentSong,omitempty"`
	SongID      string    `json:"songId,omitempty"`
	Title       string    `json:"title,omitempty"`
	TrackName   string    `json:"trackName,omitempty"`
	Confidence  float64   `json:"confidence,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	Message     string    `json:"message,omitempty"`
	Error       string    `json:"error,omitempty"`
	Results     *Summary  `json:"results,omitempty"`
}

// Summary aggregates a completed run.
type Summary struct {
	Total             int      `json:"total"`
	Updated           int      `json:"updated"`
	Failed            int      `json:"failed"`
	Skipped           int      `json:"skipped"`
	Pending           int      `json:"pending"`
	Errors            []string `json:"errors,omitempty"`
	AverageConfidence float64  `json:"averageConfidence"`
	Message           string   `json:"message,omitempty"`
}
