// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillnote Authors

// Package fingerprint computes cheap, deterministic digests of a record's
// conflict-relevant fields. The digest is the fast-reject filter in front
// of full conflict detection: two records with equal digests are identical
// in every field the detector compares, so the pair can be skipped.
//
// The covered field set (title, content, normalized tags, deleted flag,
// extension metadata) must stay in lockstep with the detector's comparison — a field the detector treats as
// conflict-relevant but the digest ignores would silently mask real
// conflicts on the fast path.
package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io"
	"sort"

	"github.com/quillnote/quill-sync/models"
)

// Digest returns the hex-encoded SHA-256 fingerprint of the record's
// title, content, normalized tag set, deleted flag, and extension
// metadata. Tags are deduplicated and sorted first, so reordering tags
// never produces a different digest; metadata keys are visited in sorted
// order for the same reason.
func Digest(r models.Record) string {
	h := sha256.New()

	writeField(h, []byte(r.Title))
	writeField(h, []byte(r.Content))

	tags := r.NormalizedTags()
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(tags)))
	h.Write(n[:])
	for _, tag := range tags {
		writeField(h, []byte(tag))
	}

	if r.Deleted {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}

	keys := make([]string, 0, len(r.Meta))
	for k := range r.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	binary.BigEndian.PutUint64(n[:], uint64(len(keys)))
	h.Write(n[:])
	for _, k := range keys {
		writeField(h, []byte(k))
		writeField(h, []byte(r.Meta[k]))
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Equal reports whether two records have identical fingerprints.
func Equal(a, b models.Record) bool {
	return Digest(a) == Digest(b)
}

// writeField writes a length-prefixed field so that adjacent fields can
// never run together ("ab"+"c" vs "a"+"bc").
func writeField(h io.Writer, b []byte) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(b)))
	h.Write(n[:])
	h.Write(b)
}
