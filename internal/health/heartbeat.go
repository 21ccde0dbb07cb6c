package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/medwatch/go-vitals-alerts/internal/broadcast"
)

const EventSystemHealth = "system_health"

type Pinger interface {
	Ping(ctx context.Context) error
}

type statusPayload struct {
	Status    string    `json:"status"`
	Database  bool      `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

// Heartbeat periodically tells every connected session the server is alive
// and whether the store is reachable. It rides the same broadcaster as the
// alert fan-out.
type Heartbeat struct {
	interval time.Duration
	store    Pinger
	b        *broadcast.Broadcaster

	wg sync.WaitGroup
}

func NewHeartbeat(interval time.Duration, store Pinger, b *broadcast.Broadcaster) *Heartbeat {
	return &Heartbeat{interval: interval, store: store, b: b}
}

func (h *Heartbeat) Start(ctx context.Context) {
	h.wg.Add(1)
	go h.run(ctx)
}

func (h *Heartbeat) run(ctx context.Context) {
	defer h.wg.Done()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("heartbeat shutting down")
			return
		case <-ticker.C:
			h.beat(ctx)
		}
	}
}

func (h *Heartbeat) beat(ctx context.Context) {
	dbOK := h.store.Ping(ctx) == nil
	if !dbOK {
		slog.Warn("store connectivity check failed")
	}
	h.b.DeliverAll(EventSystemHealth, statusPayload{
		Status:    "Online",
		Database:  dbOK,
		Timestamp: time.Now(),
	})
}

// Stop waits for the loop to observe cancellation.
func (h *Heartbeat) Stop() {
	h.wg.Wait()
}
