package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillnote/quill-sync/internal/logger"
	"github.com/quillnote/quill-sync/internal/store"
	"github.com/quillnote/quill-sync/models"
)

var enqueueTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestQueue(kv store.KeyValueStore) *Queue {
	return NewWithClock(kv, logger.Nop(), func() time.Time { return enqueueTime })
}

func record(id string) *models.Record {
	return &models.Record{ID: id, Title: "t", Content: "c", LastModified: enqueueTime}
}

func TestEnqueue_AssignsIncreasingSeq(t *testing.T) {
	q := newTestQueue(store.NewMemoryStore())
	ctx := context.Background()

	first, err := q.Enqueue(ctx, models.OpCreate, "n1", record("n1"))
	require.NoError(t, err)
	second, err := q.Enqueue(ctx, models.OpUpdate, "n1", record("n1"))
	require.NoError(t, err)

	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, uint64(2), second.Seq)
}

func TestEnqueue_PayloadRules(t *testing.T) {
	q := newTestQueue(store.NewMemoryStore())
	ctx := context.Background()

	_, err := q.Enqueue(ctx, models.OpDelete, "n1", record("n1"))
	assert.Error(t, err, "delete must not carry a payload")

	_, err = q.Enqueue(ctx, models.OpUpdate, "n1", nil)
	assert.Error(t, err, "update requires a payload")

	_, err = q.Enqueue(ctx, models.OpDelete, "n1", nil)
	assert.NoError(t, err)
}

func TestPending_SortedBySeq(t *testing.T) {
	q := newTestQueue(store.NewMemoryStore())
	ctx := context.Background()

	for _, id := range []string{"n3", "n1", "n2"} {
		_, err := q.Enqueue(ctx, models.OpCreate, id, record(id))
		require.NoError(t, err)
	}

	ops, err := q.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 3)
	for i := 1; i < len(ops); i++ {
		assert.Less(t, ops[i-1].Seq, ops[i].Seq)
	}
}

func TestPending_OrderSurvivesRestart(t *testing.T) {
	kv := store.NewMemoryStore()
	ctx := context.Background()

	q := newTestQueue(kv)
	_, err := q.Enqueue(ctx, models.OpUpdate, "n5", record("n5"))
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, models.OpDelete, "n5", nil)
	require.NoError(t, err)

	// A new Queue over the same store simulates a process restart.
	reloaded := newTestQueue(kv)
	ops, err := reloaded.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, models.OpUpdate, ops[0].Kind)
	assert.Equal(t, models.OpDelete, ops[1].Kind)

	// The counter also survives: the next op continues the sequence.
	next, err := reloaded.Enqueue(ctx, models.OpCreate, "n6", record("n6"))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), next.Seq)
}

func TestAck_RemovesOperation(t *testing.T) {
	q := newTestQueue(store.NewMemoryStore())
	ctx := context.Background()

	op, err := q.Enqueue(ctx, models.OpCreate, "n1", record("n1"))
	require.NoError(t, err)

	require.NoError(t, q.Ack(ctx, op.Seq))

	ops, err := q.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, ops)

	// Acking again is a no-op, not an error.
	assert.NoError(t, q.Ack(ctx, op.Seq))
}

func TestLen_CountsPending(t *testing.T) {
	q := newTestQueue(store.NewMemoryStore())
	ctx := context.Background()

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = q.Enqueue(ctx, models.OpCreate, "n1", record("n1"))
	require.NoError(t, err)

	n, err = q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
