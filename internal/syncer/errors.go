package syncer

import "errors"

var (
	// ErrConflictNotFound is returned by ResolveConflict for an ID that
	// is neither pending nor already resolved.
	ErrConflictNotFound = errors.New("conflict not found")

	// ErrOffline is returned by Sync while the manager is in the
	// OFFLINE state. Mutations queue up instead of syncing.
	ErrOffline = errors.New("sync unavailable while offline")
)
