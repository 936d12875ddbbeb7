// Package workers provides abstractions for managing and running
// background workers in the application.
// It defines the Worker interface and a Workers aggregate that allows
// running multiple workers in a unified way.
package workers

import (
	"context"

	"github.com/quillnote/quill-sync/models"
)

// Worker is the interface that must be implemented by any background worker.
// It defines a single Run method that starts the worker's execution.
//
// Implementations are expected to spawn goroutines internally and return
// promptly; long-running work happens in the background until Stop (where
// provided) or context cancellation.
type Worker interface {
	Run()
}

// SyncTrigger is the slice of the sync orchestrator the periodic job
// needs: the ability to run one session.
type SyncTrigger interface {
	Sync(ctx context.Context) (models.SyncResult, error)
}

// Pinger probes remote reachability. The HTTP adapter implements it via
// its health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnectivitySink receives the connectivity verdicts produced by the
// watcher. Implemented by the sync orchestrator's SetOnline.
type ConnectivitySink interface {
	SetOnline(online bool)
}
