// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillnote Authors

package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/quillnote/quill-sync/internal/logger"
	"github.com/quillnote/quill-sync/models"
)

type httpRemoteClient struct {
	client *resty.Client
	logger *logger.Logger
}

// NewHTTPRemoteClient constructs an HTTP/REST implementation of
// [RemoteClient]. It normalises and validates the base URL and configures
// the underlying client with the given request timeout.
//
// Returns an error if address is empty or cannot be parsed as a valid URL.
func NewHTTPRemoteClient(address string, timeout time.Duration, log *logger.Logger) (RemoteClient, error) {
	baseURL, err := normalizeBaseURL(address)
	if err != nil {
		return nil, fmt.Errorf("invalid remote address: %w", err)
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	return &httpRemoteClient{client: client, logger: log.WithComponent("adapter")}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

type fetchRequest struct {
	IDs []string `json:"ids"`
}

type fetchResponse struct {
	Records []models.Record `json:"records"`
}

// FetchRecords implements [RemoteClient]. It POSTs the ID list to
// POST /api/records/fetch and decodes the returned snapshots. Transport
// failures wrap [ErrNetwork]; remote refusals map through mapHTTPError.
func (h *httpRemoteClient) FetchRecords(ctx context.Context, ids []string) ([]models.Record, error) {
	var out fetchResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(fetchRequest{IDs: ids}).
		SetResult(&out).
		Post("/api/records/fetch")
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w: %w", ErrNetwork, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	h.logger.Debug().
		Int("requested", len(ids)).
		Int("returned", len(out.Records)).
		Msg("fetched remote records")

	return out.Records, nil
}

// SaveRecord implements [RemoteClient]. It PUTs the record to
// PUT /api/records/{id}.
func (h *httpRemoteClient) SaveRecord(ctx context.Context, rec models.Record) error {
	if rec.ID == "" {
		return fmt.Errorf("%w: record without id", ErrRejected)
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(rec).
		Put("/api/records/" + url.PathEscape(rec.ID))
	if err != nil {
		return fmt.Errorf("save record %s: %w: %w", rec.ID, ErrNetwork, err)
	}
	return mapHTTPError(resp)
}

// DeleteRecord implements [RemoteClient]. It DELETEs /api/records/{id}.
// A 404 maps to [ErrNotFound]; callers deleting an already-deleted record
// may treat that as success.
func (h *httpRemoteClient) DeleteRecord(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty record id", ErrRejected)
	}

	resp, err := h.client.R().
		SetContext(ctx).
		Delete("/api/records/" + url.PathEscape(id))
	if err != nil {
		return fmt.Errorf("delete record %s: %w: %w", id, ErrNetwork, err)
	}
	return mapHTTPError(resp)
}

// Ping implements [RemoteClient] via GET /api/health.
func (h *httpRemoteClient) Ping(ctx context.Context) error {
	resp, err := h.client.R().
		SetContext(ctx).
		Get("/api/health")
	if err != nil {
		return fmt.Errorf("ping: %w: %w", ErrNetwork, err)
	}
	return mapHTTPError(resp)
}
