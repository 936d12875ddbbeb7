// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillnote Authors

package syncer

import (
	"sync"

	"github.com/quillnote/quill-sync/internal/logger"
	"github.com/quillnote/quill-sync/models"
)

// Handler receives an event payload: the SyncResult for syncComplete, the
// []Conflict slice for conflictDetected, nil for the rest.
type Handler func(payload any)

// Subscription is the opaque handle returned by On and consumed by Off.
type Subscription struct {
	event models.Event
	id    uint64
}

// registry is the observer table keyed by event name. Emission is
// synchronous with the state transition that causes it, but each handler
// runs on its own goroutine so a slow or panicking handler can never
// stall or abort the orchestrator.
type registry struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[models.Event]map[uint64]Handler
}

func newRegistry() *registry {
	return &registry{handlers: make(map[models.Event]map[uint64]Handler)}
}

func (r *registry) on(event models.Event, h Handler) Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	if r.handlers[event] == nil {
		r.handlers[event] = make(map[uint64]Handler)
	}
	r.handlers[event][r.nextID] = h
	return Subscription{event: event, id: r.nextID}
}

func (r *registry) off(sub Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.handlers[sub.event], sub.id)
}

func (r *registry) emit(log *logger.Logger, event models.Event, payload any) {
	r.mu.RLock()
	snapshot := make([]Handler, 0, len(r.handlers[event]))
	for _, h := range r.handlers[event] {
		snapshot = append(snapshot, h)
	}
	r.mu.RUnlock()

	for _, h := range snapshot {
		h := h
		go func() {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error().
						Str("event", string(event)).
						Any("panic", rec).
						Msg("event handler panicked")
				}
			}()
			h(payload)
		}()
	}
}
