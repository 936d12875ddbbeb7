// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillnote Authors

// Package store provides the durable key-value storage collaborator used
// by the offline queue and the last-synced metadata. The contract is
// deliberately narrow: get/put/delete by key with per-key atomicity and
// no transactional guarantees beyond that.
package store

import "context"

//go:generate mockgen -source=interfaces.go -destination=../mock/kv_store_mock.go -package=mock

// KeyValueStore is the durable storage contract. Implementations must
// guarantee per-key atomicity; callers never assume multi-key
// transactions.
//
// A store that cannot be read or written (corrupt file, I/O failure)
// surfaces errors wrapping [ErrStoreUnavailable]; the orchestrator treats
// those as fatal for the current sync session.
type KeyValueStore interface {
	// Get returns the value stored under key, or an error wrapping
	// [ErrKeyNotFound] if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put durably stores value under key, overwriting any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error

	// List returns all keys with the given prefix, sorted
	// lexicographically, along with their values.
	List(ctx context.Context, prefix string) (map[string][]byte, error)

	// Close releases the underlying resources.
	Close() error
}
