package health

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/medwatch/go-vitals-alerts/internal/broadcast"
	"github.com/medwatch/go-vitals-alerts/internal/directory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(ctx context.Context) error { return f.err }

type captureSession struct {
	mu       sync.Mutex
	payloads []any
}

func (c *captureSession) Send(event string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads = append(c.payloads, payload)
	return nil
}

func (c *captureSession) last() (statusPayload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.payloads) == 0 {
		return statusPayload{}, false
	}
	return c.payloads[len(c.payloads)-1].(statusPayload), true
}

func TestHeartbeat_BroadcastsToConnectedSubjects(t *testing.T) {
	dir := directory.New()
	b := broadcast.New(dir)
	s := &captureSession{}
	dir.Join("p1", s)

	hb := NewHeartbeat(5*time.Millisecond, &fakePinger{}, b)

	ctx, cancel := context.WithCancel(context.Background())
	hb.Start(ctx)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if _, ok := s.last(); ok {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	hb.Stop()

	payload, ok := s.last()
	if !ok {
		t.Fatal("no heartbeat received")
	}
	if payload.Status != "Online" {
		t.Errorf("expected status Online, got %s", payload.Status)
	}
	if !payload.Database {
		t.Error("expected database true with healthy pinger")
	}
}

func TestHeartbeat_ReportsStoreOutage(t *testing.T) {
	dir := directory.New()
	b := broadcast.New(dir)
	s := &captureSession{}
	dir.Join("p1", s)

	hb := NewHeartbeat(5*time.Millisecond, &fakePinger{err: errors.New("down")}, b)

	ctx, cancel := context.WithCancel(context.Background())
	hb.Start(ctx)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if _, ok := s.last(); ok {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	hb.Stop()

	payload, ok := s.last()
	if !ok {
		t.Fatal("no heartbeat received")
	}
	if payload.Database {
		t.Error("expected database false when store ping fails")
	}
}

func TestHeartbeat_StopWaitsForLoop(t *testing.T) {
	dir := directory.New()
	hb := NewHeartbeat(time.Hour, &fakePinger{}, broadcast.New(dir))

	ctx, cancel := context.WithCancel(context.Background())
	hb.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		hb.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after cancellation")
	}
}
