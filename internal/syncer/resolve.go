// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillnote Authors

package syncer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/quillnote/quill-sync/models"
)

// ResolveConflict implements [SyncService]. The operation is idempotent:
// a conflict ID that was already resolved (manually or by an auto-rule)
// succeeds without touching any state, so callers can safely retry after
// an ambiguous failure.
func (m *SyncManager) ResolveConflict(ctx context.Context, conflictID string, resolution models.Resolution) error {
	m.mu.Lock()
	if _, done := m.resolved[conflictID]; done {
		m.mu.Unlock()
		return nil
	}
	c, ok := m.pending[conflictID]
	m.mu.Unlock()
	if !ok {
		return ErrConflictNotFound
	}

	fallback, err := m.applyResolution(ctx, c, resolution)
	if err != nil {
		return fmt.Errorf("resolve conflict %s: %w", conflictID, err)
	}

	m.mu.Lock()
	delete(m.pending, conflictID)
	m.resolved[conflictID] = struct{}{}
	m.mu.Unlock()

	ev := m.logger.Info().
		Str("conflict_id", conflictID).
		Str("resolution", resolution.String())
	if fallback {
		ev = ev.Bool("merge_fallback", true)
	}
	ev.Msg("conflict resolved")
	return nil
}

// applyResolution executes one resolution strategy against the remote
// and the local replica. It reports whether a merge had to fall back to
// the local value for lack of a common ancestor.
func (m *SyncManager) applyResolution(ctx context.Context, c models.Conflict, resolution models.Resolution) (fallback bool, err error) {
	switch resolution {
	case models.KeepLocal:
		return false, m.resolveWithWinner(ctx, c.Local)

	case models.KeepRemote:
		if c.Remote.Deleted {
			return false, m.discardLocal(ctx, c.Local.ID)
		}
		return false, m.adoptResolved(ctx, c.Remote)

	case models.MergeChanges:
		merged, outcome := m.engine.Merge(c, m.getBase(ctx, c.Local.ID))
		if outcome.FailedHunks > 0 {
			m.logger.Warn().
				Str("record_id", merged.ID).
				Int("failed_hunks", outcome.FailedHunks).
				Msg("merge kept local text for overlapping edits")
		}
		return outcome.Fallback, m.resolveWithWinner(ctx, merged)

	case models.CreateCopy:
		return false, m.resolveByCopy(ctx, c)

	default:
		return false, fmt.Errorf("unknown resolution %q", resolution)
	}
}

// resolveWithWinner pushes the winning value to the remote and persists
// it as the new agreed state locally.
func (m *SyncManager) resolveWithWinner(ctx context.Context, winner models.Record) error {
	if err := m.pushRemote(ctx, winner); err != nil {
		return err
	}
	if winner.Deleted {
		return m.discardLocal(ctx, winner.ID)
	}
	return m.adoptResolved(ctx, winner)
}

// resolveByCopy keeps both sides: the local value survives under a fresh
// ID pushed to the remote, and the remote value takes over the original
// ID.
func (m *SyncManager) resolveByCopy(ctx context.Context, c models.Conflict) error {
	dup := c.Local
	dup.ID = copyID(c.Local.ID)
	dup.Deleted = false
	dup.Resolved = true
	dup.LastModified = m.now()
	if strings.TrimSpace(dup.Title) != "" {
		dup.Title += " (copy)"
	}

	if err := m.pushRemote(ctx, dup); err != nil {
		return err
	}
	if err := m.adoptResolved(ctx, dup); err != nil {
		return err
	}

	if c.Remote.Deleted {
		return m.discardLocal(ctx, c.Local.ID)
	}
	return m.adoptResolved(ctx, c.Remote)
}

// adoptResolved saves rec locally with a fresh LastSynced and stores the
// base snapshot. Any Resolved marker on rec is kept so detection skips
// the record until the next agreed sync.
func (m *SyncManager) adoptResolved(ctx context.Context, rec models.Record) error {
	rec.LastSynced = m.now()
	if err := m.local.SaveLocal(ctx, rec); err != nil {
		return fmt.Errorf("save local %s: %w", rec.ID, err)
	}
	if err := m.putBase(ctx, rec); err != nil {
		return err
	}
	return nil
}

func (m *SyncManager) discardLocal(ctx context.Context, id string) error {
	if err := m.local.DeleteLocal(ctx, id); err != nil {
		return fmt.Errorf("delete local %s: %w", id, err)
	}
	return m.kv.Delete(ctx, basePrefix+id)
}

// copyID derives a collision-free ID for the duplicated record.
func copyID(original string) string {
	return original + "-copy-" + uuid.NewString()[:8]
}
