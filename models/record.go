// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillnote Authors

package models

import (
	"sort"
	"time"
)

// Record is the synchronized entity — a single note as seen by one replica.
// A Record is owned by whichever replica last wrote it: the sync core never
// mutates a Record in place, it produces new Record values through resolution.
type Record struct {
	// ID uniquely identifies the note across both replicas.
	ID string `json:"id"`

	// Title is the note's display title. May be empty.
	Title string `json:"title"`

	// Content is the note body. Compared and merged at line granularity.
	Content string `json:"content"`

	// Tags is the note's tag set. Order is insignificant and duplicates
	// are collapsed; reordering tags must never look like a change.
	Tags []string `json:"tags,omitempty"`

	// LastModified is when this replica last wrote the record.
	LastModified time.Time `json:"last_modified"`

	// LastSynced is the timestamp of the last snapshot both replicas
	// agreed on. Zero for a record that has never completed a sync.
	LastSynced time.Time `json:"last_synced,omitempty"`

	// Deleted marks a soft-deleted record. Deleted records keep their
	// payload so a DELETE_MODIFIED conflict can still be resolved.
	Deleted bool `json:"deleted,omitempty"`

	// Meta is an opaque extension map. The sync core shallow-merges it
	// during MERGE_CHANGES but never interprets individual keys.
	Meta map[string]string `json:"meta,omitempty"`

	// Resolved marks a record value produced by conflict resolution so
	// the detector does not immediately re-report the same divergence.
	Resolved bool `json:"resolved,omitempty"`
}

// NormalizedTags returns the record's tags deduplicated and sorted.
// Both the fingerprint and the detector compare tags through this view.
func (r Record) NormalizedTags() []string {
	if len(r.Tags) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(r.Tags))
	out := make([]string, 0, len(r.Tags))
	for _, tag := range r.Tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
