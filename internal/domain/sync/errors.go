package sync

import "errors"

var (
	// ErrDuplicateSession indicates a sync ID collision in the registry.
	ErrDuplicateSession = errors.New("sync session already registered")
)
