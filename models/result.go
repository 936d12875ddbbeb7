// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillnote Authors

package models

import "time"

// ErrorKind classifies a per-item error collected during a sync session.
type ErrorKind int

const (
	// ErrorNetwork — a transient transport failure that exhausted its
	// retries for this item.
	ErrorNetwork ErrorKind = iota

	// ErrorValidation — the remote returned a malformed record; the item
	// was skipped.
	ErrorValidation

	// ErrorRejected — the remote refused the operation for a
	// non-transient reason.
	ErrorRejected
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorNetwork:
		return "network"
	case ErrorValidation:
		return "validation"
	case ErrorRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// SyncError records one failed item of a sync session. Per-item errors
// never abort the batch; they accumulate here instead.
type SyncError struct {
	RecordID string    `json:"record_id"`
	Kind     ErrorKind `json:"kind"`
	Message  string    `json:"message"`
}

// MergeFallback records that a MERGE_CHANGES resolution fell back to
// KEEP_LOCAL because the three-way ancestor was unavailable. The fallback
// must be observable to the caller, never silent.
type MergeFallback struct {
	ConflictID string `json:"conflict_id"`
	RecordID   string `json:"record_id"`
}

// SyncResult is the outcome of one sync session. Transient — produced per
// invocation and retained only as the last value for display.
type SyncResult struct {
	// Applied lists record IDs whose changes were successfully applied,
	// including automatically resolved conflicts.
	Applied []string `json:"applied"`

	// Conflicts holds the divergences left unresolved for the caller.
	Conflicts []Conflict `json:"conflicts"`

	// Errors holds per-item failures. Partial success is expected.
	Errors []SyncError `json:"errors"`

	// Fallbacks reports merge resolutions that degraded to KEEP_LOCAL.
	Fallbacks []MergeFallback `json:"fallbacks,omitempty"`

	Status     SyncStatus `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
}
