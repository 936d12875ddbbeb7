// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillnote Authors

// Package queue implements the durable offline operation log. Mutations
// recorded while the remote is unreachable are appended here and replayed
// on reconnect, strictly in sequence-number order per record.
//
// Layout in the key-value store:
//
//	queue/seq          — the last assigned sequence number
//	queue/op/<seq20>   — one JSON-encoded operation, seq zero-padded to
//	                     20 digits so lexicographic key order equals
//	                     numeric replay order
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/quillnote/quill-sync/internal/logger"
	"github.com/quillnote/quill-sync/internal/store"
	"github.com/quillnote/quill-sync/models"
)

const (
	seqKey   = "queue/seq"
	opPrefix = "queue/op/"
)

// Queue is the durable, ordered offline operation log. All mutation goes
// through the sync orchestrator; the queue itself only guarantees durable
// append, ordered replay, and acknowledged removal.
type Queue struct {
	store  store.KeyValueStore
	logger *logger.Logger
	now    func() time.Time

	// mu serializes sequence-number assignment. Replay order across
	// restarts is carried by the persisted keys, not by this lock.
	mu sync.Mutex
}

// New constructs a Queue over the given durable store.
func New(kv store.KeyValueStore, log *logger.Logger) *Queue {
	return &Queue{store: kv, logger: log.WithComponent("queue"), now: time.Now}
}

// NewWithClock constructs a Queue with a custom clock. Intended for tests.
func NewWithClock(kv store.KeyValueStore, log *logger.Logger, now func() time.Time) *Queue {
	q := New(kv, log)
	q.now = now
	return q
}

// Enqueue durably records a mutation and returns it with its assigned
// sequence number. payload must be non-nil for create/update and nil for
// delete.
func (q *Queue) Enqueue(ctx context.Context, kind models.OpKind, recordID string, payload *models.Record) (models.OfflineOperation, error) {
	if recordID == "" {
		return models.OfflineOperation{}, errors.New("enqueue: empty record id")
	}
	if kind == models.OpDelete && payload != nil {
		return models.OfflineOperation{}, errors.New("enqueue: delete carries no payload")
	}
	if kind != models.OpDelete && payload == nil {
		return models.OfflineOperation{}, fmt.Errorf("enqueue: %s requires a payload", kind)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	seq, err := q.nextSeq(ctx)
	if err != nil {
		return models.OfflineOperation{}, err
	}

	op := models.OfflineOperation{
		Seq:        seq,
		Kind:       kind,
		RecordID:   recordID,
		Payload:    payload,
		EnqueuedAt: q.now(),
	}

	encoded, err := json.Marshal(op)
	if err != nil {
		return models.OfflineOperation{}, fmt.Errorf("encode operation %d: %w", seq, err)
	}
	if err = q.store.Put(ctx, opKey(seq), encoded); err != nil {
		return models.OfflineOperation{}, fmt.Errorf("persist operation %d: %w", seq, err)
	}

	q.logger.Debug().
		Uint64("seq", seq).
		Str("kind", kind.String()).
		Str("record_id", recordID).
		Msg("operation enqueued")

	return op, nil
}

// Pending returns all not-yet-acknowledged operations sorted by sequence
// number. The slice is rebuilt from durable storage on every call, so
// replay order survives process restarts.
func (q *Queue) Pending(ctx context.Context) ([]models.OfflineOperation, error) {
	raw, err := q.store.List(ctx, opPrefix)
	if err != nil {
		return nil, fmt.Errorf("list pending operations: %w", err)
	}

	ops := make([]models.OfflineOperation, 0, len(raw))
	for key, value := range raw {
		var op models.OfflineOperation
		if err = json.Unmarshal(value, &op); err != nil {
			return nil, fmt.Errorf("decode operation %s: %w: %w", key, store.ErrStoreUnavailable, err)
		}
		ops = append(ops, op)
	}

	sort.Slice(ops, func(i, j int) bool { return ops[i].Seq < ops[j].Seq })
	return ops, nil
}

// Ack removes an operation after the remote has durably accepted it.
// Acking an already-removed sequence number is a no-op.
func (q *Queue) Ack(ctx context.Context, seq uint64) error {
	if err := q.store.Delete(ctx, opKey(seq)); err != nil {
		return fmt.Errorf("ack operation %d: %w", seq, err)
	}
	return nil
}

// Len returns the number of pending operations.
func (q *Queue) Len(ctx context.Context) (int, error) {
	raw, err := q.store.List(ctx, opPrefix)
	if err != nil {
		return 0, fmt.Errorf("count pending operations: %w", err)
	}
	return len(raw), nil
}

// nextSeq bumps and persists the sequence counter. The counter is written
// before the operation so a crash in between burns a number instead of
// reusing one.
func (q *Queue) nextSeq(ctx context.Context) (uint64, error) {
	var seq uint64
	raw, err := q.store.Get(ctx, seqKey)
	switch {
	case errors.Is(err, store.ErrKeyNotFound):
		seq = 0
	case err != nil:
		return 0, fmt.Errorf("read sequence counter: %w", err)
	default:
		seq, err = strconv.ParseUint(string(raw), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("corrupt sequence counter %q: %w: %w", raw, store.ErrStoreUnavailable, err)
		}
	}

	seq++
	if err = q.store.Put(ctx, seqKey, []byte(strconv.FormatUint(seq, 10))); err != nil {
		return 0, fmt.Errorf("persist sequence counter: %w", err)
	}
	return seq, nil
}

func opKey(seq uint64) string {
	return fmt.Sprintf("%s%020d", opPrefix, seq)
}
