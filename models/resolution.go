// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillnote Authors

package models

import "fmt"

// Resolution is the strategy chosen to close a conflict. It is an input
// to the resolve operation, never persisted as an entity of its own.
type Resolution int

const (
	// KeepLocal discards the remote value and pushes the local one.
	KeepLocal Resolution = iota

	// KeepRemote discards the local value and adopts the remote one.
	KeepRemote

	// MergeChanges runs the merge engine and persists its result.
	MergeChanges

	// CreateCopy keeps both values: the remote record stays under the
	// original ID and the local record survives under a fresh copy ID.
	CreateCopy
)

func (r Resolution) String() string {
	switch r {
	case KeepLocal:
		return "KEEP_LOCAL"
	case KeepRemote:
		return "KEEP_REMOTE"
	case MergeChanges:
		return "MERGE_CHANGES"
	case CreateCopy:
		return "CREATE_COPY"
	default:
		return fmt.Sprintf("Resolution(%d)", int(r))
	}
}

// AutoRule maps a conflict type to an automatic resolution, or marks the
// type as requiring manual handling. Manual is modeled as its own flag
// rather than a sentinel Resolution value so the Resolution enum stays
// closed over real strategies.
type AutoRule struct {
	Resolution Resolution
	Manual     bool
}

// Auto builds a rule that resolves automatically with the given strategy.
func Auto(r Resolution) AutoRule {
	return AutoRule{Resolution: r}
}

// RequiresManual builds a rule that defers the conflict to the caller.
func RequiresManual() AutoRule {
	return AutoRule{Manual: true}
}
