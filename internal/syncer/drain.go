// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillnote Authors

package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/quillnote/quill-sync/internal/adapter"
	"github.com/quillnote/quill-sync/models"
)

// ProcessOfflineQueue implements [SyncService]. Operations for the same
// record ID replay strictly in sequence order; independent record IDs
// drain concurrently. An operation that still fails after the retry
// budget (or is rejected outright) is abandoned: dropped from the queue
// and reported as a terminal per-item error. Only queue storage failures
// are returned as an error.
func (m *SyncManager) ProcessOfflineQueue(ctx context.Context) ([]models.SyncError, error) {
	ops, err := m.queue.Pending(ctx)
	if err != nil {
		return nil, fmt.Errorf("load offline queue: %w", err)
	}
	if len(ops) == 0 {
		return nil, nil
	}

	// Pending returns ops sorted by sequence number, so per-ID slices
	// inherit the enqueue order.
	perRecord := make(map[string][]models.OfflineOperation)
	order := make([]string, 0, len(ops))
	for _, op := range ops {
		if _, seen := perRecord[op.RecordID]; !seen {
			order = append(order, op.RecordID)
		}
		perRecord[op.RecordID] = append(perRecord[op.RecordID], op)
	}

	m.logger.Info().
		Int("operations", len(ops)).
		Int("records", len(order)).
		Msg("draining offline queue")

	var (
		mu       sync.Mutex
		terminal []models.SyncError
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range order {
		recordOps := perRecord[id]
		g.Go(func() error {
			for _, op := range recordOps {
				serr := m.submitOperation(gctx, op)
				if serr != nil {
					mu.Lock()
					terminal = append(terminal, models.SyncError{
						RecordID: op.RecordID,
						Kind:     errorKind(serr),
						Message:  fmt.Sprintf("offline %s (seq %d): %v", op.Kind, op.Seq, serr),
					})
					mu.Unlock()
					m.logger.Warn().
						Err(serr).
						Str("record_id", op.RecordID).
						Uint64("seq", op.Seq).
						Str("kind", op.Kind.String()).
						Msg("offline operation abandoned")
				}
				// Success and abandonment both dequeue; the operation is
				// never replayed twice.
				if aerr := m.queue.Ack(gctx, op.Seq); aerr != nil {
					return fmt.Errorf("ack seq %d: %w", op.Seq, aerr)
				}
			}
			return nil
		})
	}

	if err = g.Wait(); err != nil {
		return terminal, err
	}
	return terminal, nil
}

// submitOperation replays one queued mutation against the remote.
func (m *SyncManager) submitOperation(ctx context.Context, op models.OfflineOperation) error {
	switch op.Kind {
	case models.OpDelete:
		return m.retryNetwork(ctx, func(ctx context.Context) error {
			err := m.remote.DeleteRecord(ctx, op.RecordID)
			if errors.Is(err, adapter.ErrNotFound) {
				// Already gone remotely; the delete achieved its goal.
				return nil
			}
			return err
		})

	case models.OpCreate, models.OpUpdate:
		if op.Payload == nil {
			return fmt.Errorf("queued %s for %s has no payload", op.Kind, op.RecordID)
		}
		return m.retryNetwork(ctx, func(ctx context.Context) error {
			return m.remote.SaveRecord(ctx, *op.Payload)
		})

	default:
		return fmt.Errorf("unknown queued operation kind %q", op.Kind)
	}
}
