package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestUploadGate_AcquireRelease(t *testing.T) {
	gate := NewUploadGate(2, time.Second)
	ctx := context.Background()

	if err := gate.Acquire(ctx, "s1"); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if got := gate.ActiveCount(); got != 1 {
		t.Errorf("ActiveCount() = %d, want 1", got)
	}

	gate.Release("s1")
	if got := gate.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount() after release = %d, want 0", got)
	}

	// The slot is reusable
	if err := gate.Acquire(ctx, "s1"); err != nil {
		t.Errorf("Acquire() after release error = %v", err)
	}
	gate.Release("s1")
}

func TestUploadGate_SameSessionRejectedImmediately(t *testing.T) {
	gate := NewUploadGate(5, time.Minute)
	ctx := context.Background()

	if err := gate.Acquire(ctx, "s1"); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer gate.Release("s1")

	// Global slots remain, but the session already holds one. The
	// rejection must be immediate, not after maxWait.
	start := time.Now()
	err := gate.Acquire(ctx, "s1")
	if !errors.Is(err, ErrUploadInProgress) {
		t.Fatalf("second Acquire() = %v, want ErrUploadInProgress", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("rejection took %v, should not wait", elapsed)
	}
}

func TestUploadGate_GlobalLimitRejectsAfterWait(t *testing.T) {
	gate := NewUploadGate(1, 50*time.Millisecond)
	ctx := context.Background()

	if err := gate.Acquire(ctx, "s1"); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	err := gate.Acquire(ctx, "s2")
	if !errors.Is(err, ErrTooManyUploads) {
		t.Fatalf("Acquire() with full gate = %v, want ErrTooManyUploads", err)
	}

	// The failed waiter must not leave its session marked busy
	gate.Release("s1")
	if err := gate.Acquire(ctx, "s2"); err != nil {
		t.Errorf("Acquire() after slot freed = %v", err)
	}
	gate.Release("s2")
}

func TestUploadGate_DoubleReleaseIsNoOp(t *testing.T) {
	gate := NewUploadGate(1, time.Second)
	ctx := context.Background()

	if err := gate.Acquire(ctx, "s1"); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	gate.Release("s1")
	gate.Release("s1") // must not block or corrupt the count

	if got := gate.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount() = %d, want 0", got)
	}
	if err := gate.Acquire(ctx, "s2"); err != nil {
		t.Errorf("Acquire() after double release = %v", err)
	}
	gate.Release("s2")
}

func TestUploadGate_ReleaseWithoutAcquire(t *testing.T) {
	gate := NewUploadGate(1, time.Second)

	gate.Release("never-acquired")

	if got := gate.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount() = %d, want 0", got)
	}
}

func TestUploadGate_WaiterGetsFreedSlot(t *testing.T) {
	gate := NewUploadGate(1, 2*time.Second)
	ctx := context.Background()

	if err := gate.Acquire(ctx, "s1"); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- gate.Acquire(ctx, "s2")
	}()

	time.Sleep(20 * time.Millisecond)
	gate.Release("s1")

	if err := <-done; err != nil {
		t.Fatalf("waiting Acquire() = %v, want nil after release", err)
	}
	gate.Release("s2")
}

func TestUploadGate_ContextCancellation(t *testing.T) {
	gate := NewUploadGate(1, time.Minute)

	if err := gate.Acquire(context.Background(), "s1"); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer gate.Release("s1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- gate.Acquire(ctx, "s2")
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled Acquire() = %v, want context.Canceled", err)
	}
}

func TestUploadGate_WaitForDrain(t *testing.T) {
	gate := NewUploadGate(3, time.Second)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := gate.Acquire(ctx, fmt.Sprintf("s%d", i)); err != nil {
			t.Fatalf("Acquire(s%d) error = %v", i, err)
		}
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		for i := 0; i < 3; i++ {
			gate.Release(fmt.Sprintf("s%d", i))
		}
	}()

	drainCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := gate.WaitForDrain(drainCtx); err != nil {
		t.Errorf("WaitForDrain() = %v", err)
	}
	if got := gate.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount() after drain = %d", got)
	}
}

func TestUploadGate_WaitForDrainTimeout(t *testing.T) {
	gate := NewUploadGate(1, time.Second)

	if err := gate.Acquire(context.Background(), "s1"); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer gate.Release("s1")

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if err := gate.WaitForDrain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForDrain() with active upload = %v, want DeadlineExceeded", err)
	}
}

func TestUploadGate_Status(t *testing.T) {
	gate := NewUploadGate(3, time.Second)
	ctx := context.Background()

	if err := gate.Acquire(ctx, "s1"); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer gate.Release("s1")

	status := gate.Status()
	if status.Active != 1 {
		t.Errorf("Active = %d, want 1", status.Active)
	}
	if status.Available != 2 {
		t.Errorf("Available = %d, want 2", status.Available)
	}
	if status.MaxConcurrent != 3 {
		t.Errorf("MaxConcurrent = %d, want 3", status.MaxConcurrent)
	}
}

func TestUploadGate_DefaultValues(t *testing.T) {
	gate := NewUploadGate(0, 0)

	if got := gate.MaxConcurrent(); got != DefaultMaxConcurrentUploads {
		t.Errorf("MaxConcurrent() = %d, want %d", got, DefaultMaxConcurrentUploads)
	}
	if gate.maxWait != DefaultMaxWaitTime {
		t.Errorf("maxWait = %v, want %v", gate.maxWait, DefaultMaxWaitTime)
	}
}
