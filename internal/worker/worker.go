package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Breach is one synthetic threshold violation awaiting alert creation.
type Breach struct {
	Message    string
	DetectedAt time.Time
}

type ProcessFunc func(ctx context.Context, b Breach) error

// Pool decouples the telemetry generator from alert creation: breach events
// queue here and a fixed set of workers drives them through the pipeline.
type Pool struct {
	numWorkers int
	jobs       chan Breach
	processor  ProcessFunc
	wg         sync.WaitGroup
}

func NewPool(numWorkers int, bufferSize int, processor ProcessFunc) *Pool {
	return &Pool{
		numWorkers: numWorkers,
		jobs:       make(chan Breach, bufferSize),
		processor:  processor,
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 1; i <= p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case b, ok := <-p.jobs:
			if !ok {
				return
			}
			if err := p.processor(ctx, b); err != nil {
				slog.Error("breach processing failed", "message", b.Message, "error", err)
			}
		}
	}
}

// Submit queues a breach without blocking; when the buffer is full the breach
// is dropped and logged, so a burst never stalls the generator.
func (p *Pool) Submit(b Breach) {
	select {
	case p.jobs <- b:
	default:
		slog.Warn("breach queue full, dropping", "message", b.Message)
	}
}

func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}
