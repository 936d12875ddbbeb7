// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillnote Authors

package models

import (
	"fmt"
	"time"
)

// OpKind is the kind of mutation recorded in the offline queue.
type OpKind int

const (
	OpCreate OpKind = iota
	OpUpdate
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}

// OfflineOperation is a queued, not-yet-acknowledged mutation recorded
// while the remote was unreachable. Operations are replayed in Seq order;
// operations for the same record ID are never reordered relative to each
// other.
type OfflineOperation struct {
	// Seq is the per-device, strictly increasing sequence number.
	// It is the replay order key.
	Seq uint64 `json:"seq"`

	Kind     OpKind `json:"kind"`
	RecordID string `json:"record_id"`

	// Payload carries the full record for create/update. Nil for delete.
	Payload *Record `json:"payload,omitempty"`

	EnqueuedAt time.Time `json:"enqueued_at"`
}
