package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPool_ProcessesSubmittedBreaches(t *testing.T) {
	var processed atomic.Int64
	processor := func(ctx context.Context, b Breach) error {
		processed.Add(1)
		return nil
	}

	pool := NewPool(2, 10, processor)

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	for i := 0; i < 5; i++ {
		pool.Submit(Breach{Message: "High heart rate detected", DetectedAt: time.Now()})
	}

	time.Sleep(50 * time.Millisecond)

	cancel()
	pool.Stop()

	if processed.Load() != 5 {
		t.Errorf("expected 5 breaches processed, got %d", processed.Load())
	}
}

func TestPool_ConcurrentSubmit(t *testing.T) {
	var processed atomic.Int64
	processor := func(ctx context.Context, b Breach) error {
		processed.Add(1)
		return nil
	}

	pool := NewPool(4, 100, processor)

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	for i := 0; i < 100; i++ {
		go pool.Submit(Breach{Message: "Low oxygen saturation detected"})
	}

	time.Sleep(100 * time.Millisecond)

	cancel()
	pool.Stop()

	if processed.Load() != 100 {
		t.Errorf("expected 100 breaches processed, got %d", processed.Load())
	}
}

func TestPool_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	block := make(chan struct{})
	processor := func(ctx context.Context, b Breach) error {
		<-block
		return nil
	}

	pool := NewPool(1, 1, processor)

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			pool.Submit(Breach{Message: "burst"})
		}
		close(done)
	}()

	select {
	case <-done:
		// Submit never blocked.
	case <-time.After(time.Second):
		t.Error("Submit blocked on a full buffer")
	}

	close(block)
	cancel()
	pool.Stop()
}

func TestPool_ProcessorErrorDoesNotStopWorkers(t *testing.T) {
	var processed atomic.Int64
	processor := func(ctx context.Context, b Breach) error {
		processed.Add(1)
		if b.Message == "bad" {
			return context.DeadlineExceeded
		}
		return nil
	}

	pool := NewPool(1, 10, processor)

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	pool.Submit(Breach{Message: "bad"})
	pool.Submit(Breach{Message: "good"})

	time.Sleep(50 * time.Millisecond)

	cancel()
	pool.Stop()

	if processed.Load() != 2 {
		t.Errorf("expected both breaches processed, got %d", processed.Load())
	}
}

func TestPool_StopDrainsQueuedBreaches(t *testing.T) {
	var processed atomic.Int64
	processor := func(ctx context.Context, b Breach) error {
		time.Sleep(time.Millisecond)
		processed.Add(1)
		return nil
	}

	pool := NewPool(2, 50, processor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	for i := 0; i < 20; i++ {
		pool.Submit(Breach{Message: "queued", DetectedAt: time.Now()})
	}

	// Stop with a live context must process everything already queued.
	pool.Stop()

	if processed.Load() != 20 {
		t.Errorf("expected all 20 queued breaches drained, got %d", processed.Load())
	}
}

func TestPool_GracefulShutdown(t *testing.T) {
	processor := func(ctx context.Context, b Breach) error {
		time.Sleep(10 * time.Millisecond)
		return nil
	}

	pool := NewPool(2, 50, processor)

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	for i := 0; i < 20; i++ {
		pool.Submit(Breach{Message: "work"})
	}

	cancel()

	done := make(chan struct{})
	go func() {
		pool.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pool.Stop() timed out")
	}
}
