package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestDispatcherRunsSubmittedTasks(t *testing.T) {
	d := NewDispatcher(8)
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	var ran int32
	for i := 0; i < 5; i++ {
		d.Submit("count", func(ctx context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		})
	}

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&ran) < 5 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	d.Wait()

	if got := atomic.LoadInt32(&ran); got != 5 {
		t.Fatalf("ran = %d, want 5", got)
	}
}

func TestDispatcherDrainsQueueOnShutdown(t *testing.T) {
	d := NewDispatcher(8)

	var ran int32
	for i := 0; i < 3; i++ {
		d.Submit("queued", func(ctx context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		})
	}

	// Start after submission with an already-cancelled context: the worker
	// must still drain what was queued.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)
	d.Wait()

	if got := atomic.LoadInt32(&ran); got != 3 {
		t.Fatalf("ran = %d, want 3 (queue drained on shutdown)", got)
	}
}

func TestDispatcherSurvivesPanicsAndErrors(t *testing.T) {
	d := NewDispatcher(8)
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	var ran int32
	d.Submit("panics", func(ctx context.Context) error { panic("boom") })
	d.Submit("fails", func(ctx context.Context) error { return errors.New("nope") })
	d.Submit("after", func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	})

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&ran) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	d.Wait()

	if atomic.LoadInt32(&ran) != 1 {
		t.Fatal("task after a panicking task never ran")
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	d := NewDispatcher(1)
	// Not started: the queue fills and further submits are dropped without
	// blocking the caller.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.Submit("overflow", func(ctx context.Context) error { return nil })
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on a full queue")
	}
}
