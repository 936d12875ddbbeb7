// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillnote Authors

package models

import (
	"fmt"
	"time"
)

// ConflictType classifies a detected divergence between replicas.
// It is a closed enum: the auto-resolution rule table switches over it
// exhaustively, so new values require touching every switch.
type ConflictType int

const (
	// ConflictContentModified — both sides edited title or content after
	// the last agreed snapshot.
	ConflictContentModified ConflictType = iota

	// ConflictDeleteModified — the remote deleted the record while the
	// local replica kept editing it.
	ConflictDeleteModified

	// ConflictDuplicateCreation — two records for logically the same new
	// entity were created independently with no common ancestor.
	ConflictDuplicateCreation

	// ConflictMetadataMismatch — only tags or extension metadata diverged;
	// title and content are identical.
	ConflictMetadataMismatch
)

func (t ConflictType) String() string {
	switch t {
	case ConflictContentModified:
		return "CONTENT_MODIFIED"
	case ConflictDeleteModified:
		return "DELETE_MODIFIED"
	case ConflictDuplicateCreation:
		return "DUPLICATE_CREATION"
	case ConflictMetadataMismatch:
		return "METADATA_MISMATCH"
	default:
		return fmt.Sprintf("ConflictType(%d)", int(t))
	}
}

// Severity is a three-level ordinal: metadata-only differences are low,
// content differences are medium, anything involving a deletion is high.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Conflict is a detected, unresolved divergence between the local and
// remote copies of one record. It is created by the detector and destroyed
// by resolution; resolution is all-or-nothing per conflict ID.
type Conflict struct {
	// ID is derived from the record ID and the detection time, so the
	// same divergence detected twice produces the same identifier.
	ID string `json:"id"`

	Type ConflictType `json:"type"`

	// Local and Remote are snapshots of the two sides at detection time.
	Local  Record `json:"local"`
	Remote Record `json:"remote"`

	// Fields lists the top-level field names whose values differ.
	Fields []string `json:"fields"`

	DetectedAt time.Time `json:"detected_at"`
	Severity   Severity  `json:"severity"`
}

// ConflictID builds the deterministic identifier for a conflict on
// recordID detected at the given time.
func ConflictID(recordID string, detectedAt time.Time) string {
	return fmt.Sprintf("%s@%d", recordID, detectedAt.UnixNano())
}
