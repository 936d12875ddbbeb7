// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillnote Authors

// Package merge computes the merged record for a MERGE_CHANGES resolution.
//
// Content is merged three-way at line granularity: the last-synced version
// acts as the common ancestor, the remote's edits are turned into patches
// against the ancestor, and the patches are applied onto the local text.
// A region only one side touched always takes that side's value; an
// overlapping edit makes the patch fail to apply, which retains the local
// region (local-wins-on-overlap).
//
// When no ancestor is available the merge cannot align the branches and
// falls back to KEEP_LOCAL semantics. The fallback is reported to the
// caller, never swallowed.
package merge

import (
	"sort"
	"time"

	"dario.cat/mergo"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/quillnote/quill-sync/models"
)

// Outcome reports how a merge went. Fallback is true when the ancestor was
// unavailable and the result carries KEEP_LOCAL semantics; FailedHunks
// counts remote edit hunks that could not be applied because they
// overlapped local edits.
type Outcome struct {
	Fallback    bool
	FailedHunks int
}

// Engine merges conflicting record pairs. Pure and non-suspending: the
// only injected dependency is the clock.
type Engine struct {
	now func() time.Time
}

// New constructs an Engine using the wall clock for merge timestamps.
func New() *Engine {
	return &Engine{now: time.Now}
}

// NewWithClock constructs an Engine with a custom clock. Intended for tests.
func NewWithClock(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// Merge computes the merged record for the given conflict. ancestor is the
// last-synced version both replicas agreed on, or nil when none is known.
//
// The result carries a fresh LastModified (the merge time) and the
// Resolved marker so the detector does not re-report the conflict from
// the merged value.
func (e *Engine) Merge(c models.Conflict, ancestor *models.Record) (models.Record, Outcome) {
	local, remote := c.Local, c.Remote

	merged := local
	merged.Deleted = false
	merged.LastModified = e.now()
	merged.Resolved = true
	merged.Tags = unionTags(local, remote)
	merged.Meta = mergeMeta(local.Meta, remote.Meta)
	merged.Title = mergeTitle(local, remote)

	var out Outcome
	if ancestor == nil {
		// No common ancestor: keep the local content wholesale.
		out.Fallback = true
		return merged, out
	}

	content, failed := mergeContent(ancestor.Content, local.Content, remote.Content)
	merged.Content = content
	out.FailedHunks = failed
	return merged, out
}

// mergeContent applies the remote branch's line edits onto the local
// branch. Failed patches are counted, not retried: a failure means the
// local side rewrote the same region, and local wins there.
func mergeContent(ancestor, local, remote string) (string, int) {
	dmp := diffmatchpatch.New()

	// Line-mode diff of ancestor → remote.
	chars1, chars2, lines := dmp.DiffLinesToChars(ancestor, remote)
	diffs := dmp.DiffMain(chars1, chars2, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	patches := dmp.PatchMake(ancestor, diffs)
	merged, applied := dmp.PatchApply(patches, local)

	failed := 0
	for _, ok := range applied {
		if !ok {
			failed++
		}
	}
	return merged, failed
}

// mergeTitle never lets an empty title win; two differing non-empty
// titles resolve to local.
func mergeTitle(local, remote models.Record) string {
	switch {
	case local.Title == "":
		return remote.Title
	case remote.Title == "":
		return local.Title
	default:
		return local.Title
	}
}

// unionTags returns the set union of both tag sets, sorted, duplicates
// collapsed.
func unionTags(local, remote models.Record) []string {
	seen := make(map[string]struct{}, len(local.Tags)+len(remote.Tags))
	var out []string
	for _, t := range append(local.NormalizedTags(), remote.NormalizedTags()...) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// mergeMeta shallow-merges remote under local: every remote key is
// carried over unless local defines the same key.
func mergeMeta(local, remote map[string]string) map[string]string {
	if local == nil && remote == nil {
		return nil
	}

	out := make(map[string]string, len(local)+len(remote))
	if err := mergo.Merge(&out, remote); err != nil {
		// Merging flat string maps cannot fail; fall through to local.
		out = make(map[string]string, len(local))
	}
	if err := mergo.Merge(&out, local, mergo.WithOverride); err != nil {
		return local
	}
	return out
}
