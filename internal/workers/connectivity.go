// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillnote Authors

package workers

import (
	"context"
	"sync"
	"time"

	"github.com/quillnote/quill-sync/internal/logger"
)

// ConnectivityWatcher polls the remote's health endpoint and feeds the
// verdict into the sync orchestrator. Deduplication of repeated verdicts
// is the sink's job; the watcher reports every probe.
type ConnectivityWatcher struct {
	ctx      context.Context
	pinger   Pinger
	sink     ConnectivitySink
	interval time.Duration
	logger   *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewConnectivityWatcher creates a watcher probing every interval. If
// interval is zero or negative it defaults to 30 seconds.
func NewConnectivityWatcher(ctx context.Context, pinger Pinger, sink ConnectivitySink, interval time.Duration, log *logger.Logger) *ConnectivityWatcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &ConnectivityWatcher{
		ctx:      ctx,
		pinger:   pinger,
		sink:     sink,
		interval: interval,
		logger:   log.WithComponent("connectivity"),
	}
}

// Run implements [Worker]. The first probe fires immediately so the
// orchestrator starts with a real verdict instead of the optimistic
// default.
func (w *ConnectivityWatcher) Run() {
	w.Stop()

	w.mu.Lock()
	watchCtx, cancel := context.WithCancel(w.ctx)
	w.cancel = cancel
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()

		w.probe(watchCtx)

		t := time.NewTicker(w.interval)
		defer t.Stop()

		for {
			select {
			case <-watchCtx.Done():
				return
			case <-t.C:
				w.probe(watchCtx)
			}
		}
	}()
}

// Stop cancels the probe loop and blocks until it has exited.
func (w *ConnectivityWatcher) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

func (w *ConnectivityWatcher) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, w.interval)
	defer cancel()

	err := w.pinger.Ping(probeCtx)
	if err != nil {
		w.logger.Debug().Err(err).Msg("remote unreachable")
	}
	w.sink.SetOnline(err == nil)
}
