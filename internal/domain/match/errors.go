package match

import "errors"

var (
	// ErrMatchNotFound indicates the match doesn't exist.
	ErrMatchNotFound = errors.New("match not found")
	// ErrAlreadyResolved indicates the match left the pending state.
	ErrAlreadyResolved = errors.New("match already resolved")
	// ErrInvalidDecision indicates an unknown review decision.
	ErrInvalidDecision = errors.New("invalid review decision")
	// ErrInvalidInput indicates missing required input.
	ErrInvalidInput = errors.New("invalid match input")
)
