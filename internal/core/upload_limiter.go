package core

// upload_limiter.go implements concurrency control for dataset uploads.
//
// Two limits apply. Each session may have at most one upload in flight; a
// second call for the same session fails immediately with
// ErrUploadInProgress, never queued. Across all sessions a semaphore caps
// parallel uploads; when every slot is occupied, new requests wait up to
// maxWait before failing with ErrTooManyUploads.
//
// The gate also supports graceful shutdown via WaitForDrain, which blocks
// until all active uploads complete.

import (
	"context"
	"sync"
	"time"
)

// DefaultMaxConcurrentUploads is the default global limit for parallel uploads.
const DefaultMaxConcurrentUploads = 5

// DefaultMaxWaitTime is how long to wait for a global slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// UploadGate controls concurrent upload processing. It enforces the
// one-upload-per-session invariant and a global ceiling.
type UploadGate struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu        sync.RWMutex
	bySession map[string]struct{}
	active    int
}

// NewUploadGate creates a gate that allows at most maxConcurrent
// simultaneous uploads across all sessions and one per session.
func NewUploadGate(maxConcurrent int, maxWait time.Duration) *UploadGate {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentUploads
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &UploadGate{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
		bySession: make(map[string]struct{}),
	}
}

// Acquire attempts to acquire the upload slot for a session.
// Returns ErrUploadInProgress immediately when the session already holds a
// slot, ErrTooManyUploads when no global slot frees up within maxWait.
// The caller MUST call Release() when the upload completes (use defer).
func (g *UploadGate) Acquire(ctx context.Context, sessionID string) error {
	g.mu.Lock()
	if _, busy := g.bySession[sessionID]; busy {
		g.mu.Unlock()
		return ErrUploadInProgress
	}
	g.bySession[sessionID] = struct{}{}
	g.mu.Unlock()

	waitCtx, cancel := context.WithTimeout(ctx, g.maxWait)
	defer cancel()

	select {
	case g.semaphore <- struct{}{}:
		g.mu.Lock()
		g.active++
		g.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		g.mu.Lock()
		delete(g.bySession, sessionID)
		g.mu.Unlock()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyUploads
	}
}

// Release releases the slot held by a session after a successful Acquire.
// Releasing a session that holds no slot is a no-op, so a stray second call
// cannot block on the semaphore or drive the active count negative.
func (g *UploadGate) Release(sessionID string) {
	g.mu.Lock()
	if _, held := g.bySession[sessionID]; !held {
		g.mu.Unlock()
		return
	}
	delete(g.bySession, sessionID)
	g.active--
	g.mu.Unlock()

	<-g.semaphore
}

// ActiveCount returns the number of currently active uploads.
func (g *UploadGate) ActiveCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.active
}

// MaxConcurrent returns the global ceiling on concurrent uploads.
func (g *UploadGate) MaxConcurrent() int {
	return cap(g.semaphore)
}

// Available returns the number of available global slots.
func (g *UploadGate) Available() int {
	return cap(g.semaphore) - len(g.semaphore)
}

// WaitForDrain blocks until all active uploads complete or context is
// cancelled. Used for graceful shutdown to ensure uploads finish before
// termination.
func (g *UploadGate) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if g.ActiveCount() == 0 {
				return nil
			}
		}
	}
}

// UploadGateStatus is a snapshot of the gate's current state.
type UploadGateStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current gate state for monitoring/debugging.
func (g *UploadGate) Status() UploadGateStatus {
	g.mu.RLock()
	active := g.active
	g.mu.RUnlock()

	return UploadGateStatus{
		Active:        active,
		Available:     cap(g.semaphore) - len(g.semaphore),
		MaxConcurrent: cap(g.semaphore),
	}
}
