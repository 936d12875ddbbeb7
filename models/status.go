// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillnote Authors

package models

import "fmt"

// SyncStatus is the process-wide state of the single sync session.
//
// Lifecycle: Idle → Syncing → {Success, Error, Conflict} → Idle.
// Network loss moves the machine to Offline from any state once an
// in-flight session has finished; reconnect moves Offline → Idle.
type SyncStatus int

const (
	StatusIdle SyncStatus = iota
	StatusSyncing
	StatusSuccess
	StatusError
	StatusConflict
	StatusOffline
)

func (s SyncStatus) String() string {
	switch s {
	case StatusIdle:
		return "IDLE"
	case StatusSyncing:
		return "SYNCING"
	case StatusSuccess:
		return "SUCCESS"
	case StatusError:
		return "ERROR"
	case StatusConflict:
		return "CONFLICT"
	case StatusOffline:
		return "OFFLINE"
	default:
		return fmt.Sprintf("SyncStatus(%d)", int(s))
	}
}
