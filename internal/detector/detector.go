// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillnote Authors

// Package detector classifies divergences between the local and remote
// copies of a record. Detection is pure: the same (local, remote,
// lastSynced) triple always yields the same classification, and no step
// performs I/O.
package detector

import (
	"time"

	"github.com/quillnote/quill-sync/internal/fingerprint"
	"github.com/quillnote/quill-sync/models"
)

// Detector classifies local/remote record pairs. The only injected
// dependency is the clock, so tests can pin detection timestamps.
type Detector struct {
	now func() time.Time
}

// New constructs a Detector using the wall clock for detection timestamps.
func New() *Detector {
	return &Detector{now: time.Now}
}

// NewWithClock constructs a Detector with a custom clock. Intended for tests.
func NewWithClock(now func() time.Time) *Detector {
	return &Detector{now: now}
}

// Detect classifies the divergence between local and remote given the
// timestamp of the last snapshot both replicas agreed on. It returns the
// Conflict and true when the pair genuinely conflicts; when only one side
// changed (that side's value wins) it returns false.
//
// Rules are evaluated in order:
//  1. One side deleted while the other edited after lastSynced → DELETE_MODIFIED.
//  2. Both sides modified after lastSynced with differing fingerprints →
//     CONTENT_MODIFIED if title/content differ, METADATA_MISMATCH otherwise.
//  3. Both records created independently with no common ancestor and the
//     same title signature → DUPLICATE_CREATION.
//  4. Anything else is not a conflict.
func (d *Detector) Detect(local, remote models.Record, lastSynced time.Time) (models.Conflict, bool) {
	// A value produced by conflict resolution must not immediately
	// re-detect as the same conflict. Callers clear the marker on the
	// next genuine edit.
	if local.Resolved || remote.Resolved {
		return models.Conflict{}, false
	}

	if fingerprint.Equal(local, remote) {
		return models.Conflict{}, false
	}

	localEdited := local.LastModified.After(lastSynced)
	remoteEdited := remote.LastModified.After(lastSynced)

	// Rule 1: deletion on one side, edits on the other.
	if remote.Deleted && !local.Deleted && localEdited {
		return d.conflict(local, remote, models.ConflictDeleteModified, models.SeverityHigh), true
	}
	if local.Deleted && !remote.Deleted && remoteEdited {
		return d.conflict(local, remote, models.ConflictDeleteModified, models.SeverityHigh), true
	}

	// Rule 2: concurrent edits since the last agreed snapshot. A zero
	// lastSynced means there is no agreed snapshot at all, which is the
	// duplicate-creation territory of rule 3.
	if !lastSynced.IsZero() && localEdited && remoteEdited {
		if local.Title != remote.Title || local.Content != remote.Content {
			return d.conflict(local, remote, models.ConflictContentModified, models.SeverityMedium), true
		}
		return d.conflict(local, remote, models.ConflictMetadataMismatch, models.SeverityLow), true
	}

	// Rule 3: independent creation of logically the same new entity.
	// No common ancestor means neither side has ever completed a sync.
	if lastSynced.IsZero() && local.LastSynced.IsZero() && remote.LastSynced.IsZero() &&
		local.Title == remote.Title {
		sev := models.SeverityLow
		if local.Content != remote.Content {
			sev = models.SeverityMedium
		}
		return d.conflict(local, remote, models.ConflictDuplicateCreation, sev), true
	}

	// Rule 4: only one side changed — that side wins without a conflict.
	return models.Conflict{}, false
}

// DetectAll runs Detect over matching IDs of the two snapshots. A record
// present on only one side is not a conflict. Each local record's own
// LastSynced is used as the last agreed snapshot timestamp.
func (d *Detector) DetectAll(local, remote []models.Record) []models.Conflict {
	remoteIndex := make(map[string]models.Record, len(remote))
	for _, r := range remote {
		remoteIndex[r.ID] = r
	}

	var conflicts []models.Conflict
	for _, l := range local {
		r, ok := remoteIndex[l.ID]
		if !ok {
			continue
		}
		if c, found := d.Detect(l, r, l.LastSynced); found {
			conflicts = append(conflicts, c)
		}
	}
	return conflicts
}

func (d *Detector) conflict(local, remote models.Record, t models.ConflictType, sev models.Severity) models.Conflict {
	at := d.now()
	return models.Conflict{
		ID:         models.ConflictID(local.ID, at),
		Type:       t,
		Local:      local,
		Remote:     remote,
		Fields:     Fields(local, remote),
		DetectedAt: at,
		Severity:   sev,
	}
}

// Fields returns the names of the top-level record fields whose values
// differ between local and remote, in declaration order.
func Fields(local, remote models.Record) []string {
	var fields []string
	if local.Title != remote.Title {
		fields = append(fields, "title")
	}
	if local.Content != remote.Content {
		fields = append(fields, "content")
	}
	if !equalStrings(local.NormalizedTags(), remote.NormalizedTags()) {
		fields = append(fields, "tags")
	}
	if local.Deleted != remote.Deleted {
		fields = append(fields, "deleted")
	}
	if !equalMaps(local.Meta, remote.Meta) {
		fields = append(fields, "meta")
	}
	return fields
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalMaps(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}
