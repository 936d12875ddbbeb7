package store

import "errors"

var (
	// ErrKeyNotFound is returned by Get for an absent key.
	ErrKeyNotFound = errors.New("key not found")

	// ErrStoreUnavailable wraps storage failures the caller cannot retry
	// around: unreadable database, corrupt file, closed connection.
	// The sync orchestrator aborts the current session on this class.
	ErrStoreUnavailable = errors.New("store unavailable")
)
