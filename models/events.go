// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillnote Authors

package models

// Event names the sync manager emits through its subscription interface.
type Event string

const (
	// EventSyncStart fires when a sync session begins.
	EventSyncStart Event = "syncStart"

	// EventSyncComplete fires when a session ends; the payload is the
	// session's SyncResult.
	EventSyncComplete Event = "syncComplete"

	// EventConflictDetected fires when a session leaves conflicts
	// unresolved; the payload is the []Conflict slice.
	EventConflictDetected Event = "conflictDetected"

	// EventOnline and EventOffline mirror the connectivity transitions.
	EventOnline  Event = "online"
	EventOffline Event = "offline"
)
