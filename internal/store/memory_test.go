package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k1", []byte("v1")))

	got, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	_, err = s.Get(ctx, "absent")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryStore_DeleteIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k1", []byte("v1")))
	require.NoError(t, s.Delete(ctx, "k1"))
	require.NoError(t, s.Delete(ctx, "k1"))

	_, err := s.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryStore_ListByPrefix(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "queue/op/1", []byte("a")))
	require.NoError(t, s.Put(ctx, "queue/op/2", []byte("b")))
	require.NoError(t, s.Put(ctx, "meta/base/n1", []byte("c")))

	out, err := s.List(ctx, "queue/op/")
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k1", []byte("abc")))

	got, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	got[0] = 'X'

	again, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again, "callers must not mutate stored values")
}
