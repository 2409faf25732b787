package sync

import (
	gosync "sync"
)

// Token is a cooperative cancellation handle for one sync session.
type Token struct {
	done chan struct{}
	once gosync.Once
}

func newToken() *Token {
	return &Token{done: make(chan struct{})}
}

// Done returns a channel closed when cancellation is requested.
func (t *Token) Done() <-chan struct{} {
	return t.done
}

// Cancelled reports whether cancellation has been requested.
func (t *Token) Cancelled() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

func (t *Token) cancel() {
	t.once.Do(func() { close(t.done) })
}

// Registry tracks live sync sessions so out-of-band cancellation requests can
// reach them. It is the only shared mutable state in the pipeline; every
// registered session must be released on every exit path or the map grows
// without bound.
type Registry struct {
	mu       gosync.Mutex
	sessions map[string]*Token
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Token)}
}

// Register stores a fresh token under syncID. Returns ErrDuplicateSession if
// the ID is already live.
func (r *Registry) Register(syncID string) (*Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[syncID]; exists {
		return nil, ErrDuplicateSession
	}
	token := newToken()
	r.sessions[syncID] = token
	return token, nil
}

// Cancel signals the session's token and reports whether the session was
// found. Signaling an already-cancelled session is a no-op.
func (r *Registry) Cancel(syncID string) bool {
	r.mu.Lock()
	token, ok := r.sessions[syncID]
	r.mu.Unlock()

	if !ok {
		return false
	}
	token.cancel()
	return true
}

// Release removes the session unconditionally. Safe to call for unknown IDs.
func (r *Registry) Release(syncID string) {
	r.mu.Lock()
	delete(r.sessions, syncID)
	r.mu.Unlock()
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
