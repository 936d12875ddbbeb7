// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillnote Authors

package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/quillnote/quill-sync/internal/logger"
	"github.com/quillnote/quill-sync/internal/syncer"
)

// SyncJob triggers a sync session on a fixed interval. The job is idle
// until Run is called; Stop blocks until the background goroutine exits.
type SyncJob struct {
	ctx      context.Context
	trigger  SyncTrigger
	interval time.Duration
	logger   *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncJob creates a SyncJob that calls trigger.Sync every interval.
// If interval is zero or negative it defaults to 5 minutes.
func NewSyncJob(ctx context.Context, trigger SyncTrigger, interval time.Duration, log *logger.Logger) *SyncJob {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SyncJob{
		ctx:      ctx,
		trigger:  trigger,
		interval: interval,
		logger:   log.WithComponent("sync-job"),
	}
}

// Run implements [Worker]. It stops any previously running job, then
// launches a background goroutine that syncs every interval. The goroutine
// exits when the job's parent context is cancelled or Stop is called.
func (j *SyncJob) Run() {
	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(j.ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(j.interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				if _, err := j.trigger.Sync(jobCtx); err != nil {
					if errors.Is(err, syncer.ErrOffline) {
						// Expected while disconnected; the reconnect
						// handler picks the work back up.
						continue
					}
					j.logger.Error().Err(err).Msg("periodic sync failed")
				}
			}
		}
	}()
}

// Stop cancels the background goroutine and blocks until it has fully
// exited. Safe to call when the job is not running (no-op in that case).
func (j *SyncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
