// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillnote Authors

// Package syncer owns the sync session lifecycle: it pulls remote state,
// classifies conflicts, applies resolutions, drains the offline queue,
// emits lifecycle events, and manages retry, backoff, and online/offline
// transitions.
package syncer

import (
	"context"
	"time"

	"github.com/quillnote/quill-sync/models"
)

// LocalSource supplies and persists the local replica's records. The
// editing surface owns the local copies; the orchestrator only reads them
// at sync time and writes back resolution outcomes.
type LocalSource interface {
	// LocalRecords returns the current local snapshot, including
	// soft-deleted records.
	LocalRecords(ctx context.Context) ([]models.Record, error)

	// SaveLocal persists a record value produced by sync or resolution.
	SaveLocal(ctx context.Context, rec models.Record) error

	// DeleteLocal removes the local copy of a record.
	DeleteLocal(ctx context.Context, id string) error
}

// SyncService is the caller-facing contract of the orchestrator.
type SyncService interface {
	// Sync runs one sync session and returns its result. When a session
	// is already in flight the call does not start a second one; it
	// waits for and returns the in-flight session's result.
	Sync(ctx context.Context) (models.SyncResult, error)

	// DetectConflicts classifies the given snapshots without running a
	// full sync round. IDs present on only one side are not conflicts.
	DetectConflicts(local, remote []models.Record) []models.Conflict

	// ResolveConflict applies a resolution to a pending conflict.
	// Resolving an already-resolved conflict ID is a successful no-op;
	// an unknown ID returns ErrConflictNotFound.
	ResolveConflict(ctx context.Context, conflictID string, resolution models.Resolution) error

	// ProcessOfflineQueue drains the offline queue in sequence order,
	// returning per-item terminal errors. A failing record ID blocks
	// only its own later operations; independent IDs keep draining.
	ProcessOfflineQueue(ctx context.Context) ([]models.SyncError, error)

	// On registers a handler for the given event; Off removes it.
	On(event models.Event, handler Handler) Subscription
	Off(sub Subscription)

	// Status returns the current session status.
	Status() models.SyncStatus

	// LastSync returns the end time of the last successful session, or
	// the zero time if none has completed yet.
	LastSync() time.Time

	// SetOnline feeds the external connectivity signal into the state
	// machine.
	SetOnline(online bool)
}
