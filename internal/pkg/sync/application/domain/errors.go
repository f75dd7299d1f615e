package domain

import "errors"

// Error taxonomy for the sync engine. Callers classify with errors.Is; the
// concrete message carries the detail.
var (
	// ErrValidation rejects a mutation before any network call is made
	// (empty edit content, blank send body).
	ErrValidation = errors.New("sync: validation failed")

	// ErrInvalidRequest rejects a send that names neither a conversation
	// nor a recipient to create one with.
	ErrInvalidRequest = errors.New("sync: invalid request")

	// ErrTransport wraps a network or server failure. Local state is left
	// recoverable: a failed send stays in the store marked failed, other
	// mutations apply no partial state.
	ErrTransport = errors.New("sync: transport failure")

	// ErrNotFound reports a reconcile target that stayed missing after the
	// fallback scan. Non-fatal; the operation is a no-op.
	ErrNotFound = errors.New("sync: not found")

	// ErrEngineClosed rejects operations after the engine shut down.
	ErrEngineClosed = errors.New("sync: engine closed")
)
