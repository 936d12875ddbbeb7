// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillnote Authors

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/quillnote/quill-sync/models"
)

const recordPrefix = "notes/"

// RecordStore keeps the local replica's note records in the key-value
// store, one JSON-encoded record per key under "notes/<id>". It is the
// daemon's local source of truth; embedding applications may supply their
// own implementation instead.
type RecordStore struct {
	kv KeyValueStore
}

// NewRecordStore wraps kv as a record repository.
func NewRecordStore(kv KeyValueStore) *RecordStore {
	return &RecordStore{kv: kv}
}

// LocalRecords returns all stored records, including soft-deleted ones,
// sorted by ID.
func (s *RecordStore) LocalRecords(ctx context.Context) ([]models.Record, error) {
	raw, err := s.kv.List(ctx, recordPrefix)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	out := make([]models.Record, 0, len(raw))
	for key, value := range raw {
		var rec models.Record
		if err = json.Unmarshal(value, &rec); err != nil {
			return nil, fmt.Errorf("decode record %s: %w: %w", key, ErrStoreUnavailable, err)
		}
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SaveLocal persists rec, overwriting any previous value under its ID.
func (s *RecordStore) SaveLocal(ctx context.Context, rec models.Record) error {
	if rec.ID == "" {
		return fmt.Errorf("save record: empty id")
	}

	encoded, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", rec.ID, err)
	}
	if err = s.kv.Put(ctx, recordPrefix+rec.ID, encoded); err != nil {
		return fmt.Errorf("persist record %s: %w", rec.ID, err)
	}
	return nil
}

// DeleteLocal removes the record stored under id. Deleting an absent
// record is a no-op.
func (s *RecordStore) DeleteLocal(ctx context.Context, id string) error {
	if err := s.kv.Delete(ctx, recordPrefix+id); err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	return nil
}
