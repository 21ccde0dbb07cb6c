package telemetry

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/medwatch/go-vitals-alerts/internal/models"
)

// Generator fabricates a vitals sample on a fixed interval. Each tick emits
// the sample through OnVitals regardless of severity, then raises a breach
// message through OnBreach for every simplified threshold the sample crosses.
// The generator never learns which subject an alert lands on; that decision
// belongs downstream.
type Generator struct {
	interval time.Duration

	// OnVitals and OnBreach must be set before Start and not changed after.
	OnVitals func(models.SyntheticVitals)
	OnBreach func(message string)

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
	rng  *rand.Rand
}

func NewGenerator(interval time.Duration) *Generator {
	return &Generator{
		interval: interval,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start begins the tick loop. Calling Start while already running is a no-op.
func (g *Generator) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stop != nil {
		return
	}
	g.stop = make(chan struct{})
	g.done = make(chan struct{})
	go g.run(g.stop, g.done)

	slog.Info("telemetry generator started", "interval", g.interval)
}

// Stop cancels the interval. No tick fires after Stop returns; a tick already
// dispatched completes first. Safe to call when not running.
func (g *Generator) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stop == nil {
		return
	}
	close(g.stop)
	<-g.done
	g.stop = nil
	g.done = nil

	slog.Info("telemetry generator stopped")
}

func (g *Generator) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			g.tick()
		}
	}
}

// tick never lets one bad sample halt future ticks.
func (g *Generator) tick() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("telemetry tick panicked", "panic", r)
		}
	}()

	vitals := g.sample()
	if g.OnVitals != nil {
		g.OnVitals(vitals)
	}
	for _, msg := range breaches(vitals) {
		if g.OnBreach != nil {
			g.OnBreach(msg)
		}
	}
}

// sample runs only on the tick goroutine, so the rng needs no locking.
func (g *Generator) sample() models.SyntheticVitals {
	return models.SyntheticVitals{
		HeartRate:        55 + g.rng.Intn(66),  // 55-120
		Systolic:         100 + g.rng.Intn(51), // 100-150
		Diastolic:        60 + g.rng.Intn(36),  // 60-95
		OxygenSaturation: 88 + g.rng.Intn(13),  // 88-100
		Timestamp:        time.Now(),
		Simulated:        true,
	}
}

// breaches applies the generator's simplified threshold rules. The wording
// matters: downstream severity grading keys off the High/Low prefix.
func breaches(v models.SyntheticVitals) []string {
	var out []string
	if v.HeartRate > 100 {
		out = append(out, fmt.Sprintf("High heart rate detected: %d bpm", v.HeartRate))
	} else if v.HeartRate < 60 {
		out = append(out, fmt.Sprintf("Low heart rate detected: %d bpm", v.HeartRate))
	}
	if v.Systolic > 140 || v.Diastolic > 90 {
		out = append(out, fmt.Sprintf("High blood pressure detected: %s", v.BloodPressure()))
	}
	if v.OxygenSaturation < 90 {
		out = append(out, fmt.Sprintf("Low oxygen saturation detected: %d%%", v.OxygenSaturation))
	}
	return out
}
