package transport

import (
	"encoding/json"
	"net/http"

	"github.com/harmonie-studio/tunesync/internal/domain/sync"
)

// streamEvents frames sync events as newline-delimited JSON on a long-lived
// response. The stream is finite and non-restartable: it ends when the
// orchestrator closes the channel after its terminal event.
func streamEvents(w http.ResponseWriter, events <-chan sync.Event) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, canFlush := w.(http.Flusher)
	enc := json.NewEncoder(w)

	for event := range events {
		if err := enc.Encode(event); err != nil {
			// The client is gone; drain so the orchestrator can finish
			// releasing its session.
			for range events {
			}
			return
		}
		if canFlush {
			flusher.Flush()
		}
	}
}
