// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillnote Authors

// Package adapter provides the transport-layer abstraction for the remote
// note service. The sync core treats the remote as an opaque API client:
// [RemoteClient] is the whole contract, and the package currently ships
// an HTTP/REST implementation ([NewHTTPRemoteClient]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// handling; [IsNetwork] separates retryable transport failures from
// remote rejections, which drives the orchestrator's retry policy.
package adapter

import (
	"context"

	"github.com/quillnote/quill-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_client_mock.go -package=mock

// RemoteClient defines transport-agnostic communication with the remote
// note service. Implementations are responsible for serialisation and for
// mapping transport-level errors to the sentinel values defined in this
// package.
type RemoteClient interface {
	// FetchRecords retrieves the remote snapshots of the given record
	// IDs. IDs unknown to the remote are simply absent from the result;
	// that is not an error.
	FetchRecords(ctx context.Context, ids []string) ([]models.Record, error)

	// SaveRecord creates or replaces a record on the remote. The call
	// returns once the remote has durably accepted the record.
	SaveRecord(ctx context.Context, rec models.Record) error

	// DeleteRecord soft-deletes a record on the remote. Deleting an
	// already-deleted record succeeds.
	DeleteRecord(ctx context.Context, id string) error

	// Ping checks reachability of the remote. A nil return means the
	// remote answered; the connectivity watcher polls this.
	Ping(ctx context.Context) error
}
