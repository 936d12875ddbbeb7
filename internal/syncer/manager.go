// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillnote Authors

package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/quillnote/quill-sync/internal/adapter"
	"github.com/quillnote/quill-sync/internal/detector"
	"github.com/quillnote/quill-sync/internal/fingerprint"
	"github.com/quillnote/quill-sync/internal/logger"
	"github.com/quillnote/quill-sync/internal/merge"
	"github.com/quillnote/quill-sync/internal/queue"
	"github.com/quillnote/quill-sync/internal/store"
	"github.com/quillnote/quill-sync/models"
)

const (
	basePrefix  = "meta/base/"
	lastSyncKey = "meta/last_sync"
)

var _ SyncService = (*SyncManager)(nil)

// Config tunes the orchestrator's retry policy and automatic conflict
// resolution.
type Config struct {
	// MaxRetries caps retry attempts for network-class failures.
	MaxRetries int

	// BackoffBase and BackoffCap bound the exponential backoff
	// (delay = base * 2^attempt, capped, jittered).
	BackoffBase time.Duration
	BackoffCap  time.Duration

	// AutoRules maps conflict types to automatic resolutions. Types
	// without a rule, or with a RequiresManual rule, are surfaced to the
	// caller as unresolved conflicts.
	AutoRules map[models.ConflictType]models.AutoRule
}

func (c Config) withDefaults() Config {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = 500 * time.Millisecond
	}
	if c.BackoffCap <= 0 {
		c.BackoffCap = 30 * time.Second
	}
	return c
}

// SyncManager is the sync orchestrator. It owns the session state machine
// and is the single writer of the offline queue and the last-synced
// metadata. All collaborators are injected at construction time, so
// independent managers can coexist (and be tested) freely.
type SyncManager struct {
	remote adapter.RemoteClient
	kv     store.KeyValueStore
	queue  *queue.Queue
	local  LocalSource

	detector *detector.Detector
	engine   *merge.Engine
	events   *registry
	logger   *logger.Logger
	cfg      Config
	now      func() time.Time

	// flight coalesces concurrent Sync callers onto one session.
	flight singleflight.Group

	mu             sync.RWMutex
	status         models.SyncStatus
	online         bool
	offlinePending bool
	lastSync       time.Time
	pending        map[string]models.Conflict
	resolved       map[string]struct{}
	lastResult     *models.SyncResult
}

// NewSyncManager wires an orchestrator from its collaborators. The
// manager starts online and idle; the last successful sync timestamp is
// restored from the metadata store when present.
func NewSyncManager(remote adapter.RemoteClient, kv store.KeyValueStore, q *queue.Queue, local LocalSource, cfg Config, log *logger.Logger) *SyncManager {
	m := &SyncManager{
		remote:   remote,
		kv:       kv,
		queue:    q,
		local:    local,
		detector: detector.New(),
		engine:   merge.New(),
		events:   newRegistry(),
		logger:   log.WithComponent("syncer"),
		cfg:      cfg.withDefaults(),
		now:      time.Now,
		status:   models.StatusIdle,
		online:   true,
		pending:  make(map[string]models.Conflict),
		resolved: make(map[string]struct{}),
	}

	if raw, err := kv.Get(context.Background(), lastSyncKey); err == nil {
		if ts, perr := time.Parse(time.RFC3339Nano, string(raw)); perr == nil {
			m.lastSync = ts
		}
	}

	return m
}

// Status implements [SyncService].
func (m *SyncManager) Status() models.SyncStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// LastSync implements [SyncService].
func (m *SyncManager) LastSync() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSync
}

// LastResult returns the most recent session result, or false if no
// session has run yet.
func (m *SyncManager) LastResult() (models.SyncResult, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastResult == nil {
		return models.SyncResult{}, false
	}
	return *m.lastResult, true
}

// PendingConflicts returns the conflicts awaiting manual resolution.
func (m *SyncManager) PendingConflicts() []models.Conflict {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Conflict, 0, len(m.pending))
	for _, c := range m.pending {
		out = append(out, c)
	}
	return out
}

// On implements [SyncService].
func (m *SyncManager) On(event models.Event, handler Handler) Subscription {
	return m.events.on(event, handler)
}

// Off implements [SyncService].
func (m *SyncManager) Off(sub Subscription) {
	m.events.off(sub)
}

// DetectConflicts implements [SyncService]. Pure pass-through to the
// detector, batched over matching IDs.
func (m *SyncManager) DetectConflicts(local, remote []models.Record) []models.Conflict {
	return m.detector.DetectAll(local, remote)
}

// SetOnline implements [SyncService]. Going offline while a session is
// running defers the OFFLINE transition until the session finishes;
// coming back online with queued operations immediately schedules a sync.
func (m *SyncManager) SetOnline(online bool) {
	m.mu.Lock()
	was := m.online
	m.online = online

	var event models.Event
	switch {
	case online && !was:
		m.offlinePending = false
		if m.status == models.StatusOffline {
			m.status = models.StatusIdle
		}
		event = models.EventOnline
	case !online && was:
		if m.status == models.StatusSyncing {
			m.offlinePending = true
		} else {
			m.status = models.StatusOffline
		}
		event = models.EventOffline
	}
	m.mu.Unlock()

	if event == "" {
		return
	}
	m.events.emit(m.logger, event, nil)
	m.logger.Info().Bool("online", online).Msg("connectivity changed")

	if event == models.EventOnline {
		if n, err := m.queue.Len(context.Background()); err == nil && n > 0 {
			go func() {
				if _, serr := m.Sync(context.Background()); serr != nil {
					m.logger.Warn().Err(serr).Msg("scheduled reconnect sync failed")
				}
			}()
		}
	}
}

// Sync implements [SyncService]. Concurrent callers are coalesced: while
// a session is in flight a second call waits for and receives that
// session's result instead of triggering redundant work.
func (m *SyncManager) Sync(ctx context.Context) (models.SyncResult, error) {
	v, err, _ := m.flight.Do("sync", func() (any, error) {
		res, serr := m.runSession(ctx)
		if serr != nil {
			return models.SyncResult{}, serr
		}
		return res, nil
	})
	if err != nil {
		return models.SyncResult{}, err
	}
	return v.(models.SyncResult), nil
}

// runSession executes one full sync session. Only fatal storage errors
// are returned; everything else lands in the result.
func (m *SyncManager) runSession(ctx context.Context) (models.SyncResult, error) {
	m.mu.Lock()
	if !m.online || m.status == models.StatusOffline {
		m.mu.Unlock()
		return models.SyncResult{Status: models.StatusOffline}, ErrOffline
	}
	m.status = models.StatusSyncing
	m.mu.Unlock()

	m.events.emit(m.logger, models.EventSyncStart, nil)
	m.logger.Info().Msg("sync session started")

	result := models.SyncResult{StartedAt: m.now()}

	err := m.runBatch(ctx, &result)
	if err == nil {
		queueErrs, qerr := m.ProcessOfflineQueue(ctx)
		result.Errors = append(result.Errors, queueErrs...)
		err = qerr
	}

	switch {
	case err != nil:
		result.Status = models.StatusError
	case len(result.Conflicts) > 0:
		result.Status = models.StatusConflict
	case len(result.Errors) > 0:
		result.Status = models.StatusError
	default:
		result.Status = models.StatusSuccess
	}
	result.FinishedAt = m.now()

	m.finishSession(&result)
	if err != nil {
		return result, fmt.Errorf("sync session: %w", err)
	}
	return result, nil
}

// finishSession records the result, emits the completion events, and
// returns the state machine to IDLE (or OFFLINE if connectivity dropped
// mid-session).
func (m *SyncManager) finishSession(result *models.SyncResult) {
	m.mu.Lock()
	m.lastResult = result
	if result.Status == models.StatusSuccess {
		m.lastSync = result.FinishedAt
	}
	if m.offlinePending || !m.online {
		m.offlinePending = false
		m.status = models.StatusOffline
	} else {
		m.status = models.StatusIdle
	}
	m.mu.Unlock()

	if result.Status == models.StatusSuccess {
		if err := m.kv.Put(context.Background(), lastSyncKey, []byte(result.FinishedAt.Format(time.RFC3339Nano))); err != nil {
			m.logger.Error().Err(err).Msg("persist last sync timestamp")
		}
	}

	if len(result.Conflicts) > 0 {
		m.events.emit(m.logger, models.EventConflictDetected, result.Conflicts)
	}
	m.events.emit(m.logger, models.EventSyncComplete, *result)

	m.logger.Info().
		Str("status", result.Status.String()).
		Int("applied", len(result.Applied)).
		Int("conflicts", len(result.Conflicts)).
		Int("errors", len(result.Errors)).
		Msg("sync session finished")
}

// runBatch compares the two snapshots and applies the outcome of every
// pair. Returned errors are fatal; per-item failures accumulate in
// result.Errors.
func (m *SyncManager) runBatch(ctx context.Context, result *models.SyncResult) error {
	localRecs, err := m.local.LocalRecords(ctx)
	if err != nil {
		return fmt.Errorf("load local records: %w", err)
	}

	ids := make([]string, 0, len(localRecs))
	for _, rec := range localRecs {
		ids = append(ids, rec.ID)
	}

	var remoteRecs []models.Record
	err = m.retryNetwork(ctx, func(ctx context.Context) error {
		var ferr error
		remoteRecs, ferr = m.remote.FetchRecords(ctx, ids)
		return ferr
	})
	if err != nil {
		// Snapshot fetch failed even after retries: the session ends
		// without comparisons but the failure stays a reported item, not
		// a crash.
		result.Errors = append(result.Errors, models.SyncError{
			Kind:    errorKind(err),
			Message: err.Error(),
		})
		return nil
	}

	remoteIndex := make(map[string]models.Record, len(remoteRecs))
	for _, rec := range remoteRecs {
		if verr := validateRemote(rec); verr != nil {
			result.Errors = append(result.Errors, models.SyncError{
				RecordID: rec.ID,
				Kind:     models.ErrorValidation,
				Message:  verr.Error(),
			})
			continue
		}
		remoteIndex[rec.ID] = rec
	}

	for _, l := range localRecs {
		r, ok := remoteIndex[l.ID]
		if !ok {
			m.syncLocalOnly(ctx, l, result)
			continue
		}
		delete(remoteIndex, l.ID)
		m.syncPair(ctx, l, r, result)
	}

	// Records the remote knows and we have never seen.
	for _, r := range remoteIndex {
		if r.Deleted {
			continue
		}
		m.adoptRemote(ctx, r, result)
	}

	return nil
}

// syncPair handles one record present on both sides.
func (m *SyncManager) syncPair(ctx context.Context, l, r models.Record, result *models.SyncResult) {
	// Fast-reject: identical fingerprints mean identical
	// conflict-relevant fields. Re-fingerprinted on every session so a
	// late local edit is never lost to a stale comparison.
	if fingerprint.Equal(l, r) {
		if l.LastSynced.IsZero() {
			m.persistAgreed(ctx, l, result)
		}
		return
	}

	if c, found := m.detector.Detect(l, r, l.LastSynced); found {
		m.handleConflict(ctx, c, result)
		return
	}

	// No conflict: exactly one side effectively changed; that side wins.
	localEdited := l.LastModified.After(l.LastSynced)
	remoteEdited := r.LastModified.After(l.LastSynced)

	switch {
	case localEdited && !remoteEdited, l.Resolved:
		m.pushLocal(ctx, l, result)
	case remoteEdited && !localEdited:
		m.adoptRemote(ctx, r, result)
	default:
		// Diverged values without trustworthy timestamps (clock skew,
		// imported data). Deterministic last-writer-wins tiebreak.
		if r.LastModified.After(l.LastModified) {
			m.adoptRemote(ctx, r, result)
		} else {
			m.pushLocal(ctx, l, result)
		}
	}
}

// syncLocalOnly pushes a record the remote has never seen.
func (m *SyncManager) syncLocalOnly(ctx context.Context, l models.Record, result *models.SyncResult) {
	if l.Deleted {
		// Created and deleted without ever reaching the remote.
		return
	}
	m.pushLocal(ctx, l, result)
}

// handleConflict routes a detected conflict through the auto-resolution
// rule table or parks it for the caller.
func (m *SyncManager) handleConflict(ctx context.Context, c models.Conflict, result *models.SyncResult) {
	rule, ok := m.cfg.AutoRules[c.Type]
	if !ok || rule.Manual {
		m.mu.Lock()
		m.pending[c.ID] = c
		m.mu.Unlock()
		result.Conflicts = append(result.Conflicts, c)
		return
	}

	fallback, err := m.applyResolution(ctx, c, rule.Resolution)
	if err != nil {
		result.Errors = append(result.Errors, models.SyncError{
			RecordID: c.Local.ID,
			Kind:     errorKind(err),
			Message:  fmt.Sprintf("auto-resolve %s: %v", rule.Resolution, err),
		})
		m.mu.Lock()
		m.pending[c.ID] = c
		m.mu.Unlock()
		result.Conflicts = append(result.Conflicts, c)
		return
	}

	if fallback {
		result.Fallbacks = append(result.Fallbacks, models.MergeFallback{
			ConflictID: c.ID,
			RecordID:   c.Local.ID,
		})
	}

	m.mu.Lock()
	m.resolved[c.ID] = struct{}{}
	m.mu.Unlock()
	result.Applied = append(result.Applied, c.Local.ID)
}

// pushLocal sends the local value to the remote and, on success, records
// the new agreed snapshot.
func (m *SyncManager) pushLocal(ctx context.Context, l models.Record, result *models.SyncResult) {
	if err := m.pushRemote(ctx, l); err != nil {
		result.Errors = append(result.Errors, models.SyncError{
			RecordID: l.ID,
			Kind:     errorKind(err),
			Message:  err.Error(),
		})
		return
	}

	if l.Deleted {
		m.forgetRecord(ctx, l.ID, result)
		return
	}
	m.persistAgreed(ctx, l, result)
}

// adoptRemote writes the remote value over the local copy.
func (m *SyncManager) adoptRemote(ctx context.Context, r models.Record, result *models.SyncResult) {
	if r.Deleted {
		m.forgetRecord(ctx, r.ID, result)
		return
	}
	m.persistAgreed(ctx, r, result)
}

// persistAgreed stores rec as the new agreed state: local copy updated
// with a fresh LastSynced, base snapshot saved for future three-way
// merges.
func (m *SyncManager) persistAgreed(ctx context.Context, rec models.Record, result *models.SyncResult) {
	rec.LastSynced = m.now()

	if err := m.local.SaveLocal(ctx, rec); err != nil {
		result.Errors = append(result.Errors, models.SyncError{
			RecordID: rec.ID,
			Kind:     errorKind(err),
			Message:  fmt.Sprintf("save local: %v", err),
		})
		return
	}
	if err := m.putBase(ctx, rec); err != nil {
		m.logger.Error().Err(err).Str("record_id", rec.ID).Msg("persist base snapshot")
	}
	result.Applied = append(result.Applied, rec.ID)
}

// forgetRecord removes the local copy and base snapshot of a record that
// is deleted on both sides.
func (m *SyncManager) forgetRecord(ctx context.Context, id string, result *models.SyncResult) {
	if err := m.local.DeleteLocal(ctx, id); err != nil {
		result.Errors = append(result.Errors, models.SyncError{
			RecordID: id,
			Kind:     errorKind(err),
			Message:  fmt.Sprintf("delete local: %v", err),
		})
		return
	}
	if err := m.kv.Delete(ctx, basePrefix+id); err != nil {
		m.logger.Error().Err(err).Str("record_id", id).Msg("delete base snapshot")
	}
	result.Applied = append(result.Applied, id)
}

// pushRemote sends one record to the remote with network retry. Deleted
// records map to DeleteRecord; a remote 404 on delete counts as success.
func (m *SyncManager) pushRemote(ctx context.Context, rec models.Record) error {
	if rec.Deleted {
		return m.retryNetwork(ctx, func(ctx context.Context) error {
			err := m.remote.DeleteRecord(ctx, rec.ID)
			if errors.Is(err, adapter.ErrNotFound) {
				return nil
			}
			return err
		})
	}
	return m.retryNetwork(ctx, func(ctx context.Context) error {
		return m.remote.SaveRecord(ctx, rec)
	})
}

func (m *SyncManager) putBase(ctx context.Context, rec models.Record) error {
	encoded, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode base snapshot %s: %w", rec.ID, err)
	}
	return m.kv.Put(ctx, basePrefix+rec.ID, encoded)
}

// getBase loads the last agreed snapshot of a record, or nil when none
// is stored (first-generation records, cleared bases).
func (m *SyncManager) getBase(ctx context.Context, id string) *models.Record {
	raw, err := m.kv.Get(ctx, basePrefix+id)
	if err != nil {
		return nil
	}
	var rec models.Record
	if err = json.Unmarshal(raw, &rec); err != nil {
		m.logger.Warn().Err(err).Str("record_id", id).Msg("corrupt base snapshot")
		return nil
	}
	return &rec
}

func validateRemote(rec models.Record) error {
	if rec.ID == "" {
		return errors.New("remote record without id")
	}
	if rec.LastModified.IsZero() {
		return fmt.Errorf("remote record %s without last-modified timestamp", rec.ID)
	}
	return nil
}

// errorKind maps an error to its SyncResult classification.
func errorKind(err error) models.ErrorKind {
	switch {
	case adapter.IsNetwork(err):
		return models.ErrorNetwork
	case errors.Is(err, adapter.ErrRejected):
		return models.ErrorRejected
	default:
		return models.ErrorValidation
	}
}
