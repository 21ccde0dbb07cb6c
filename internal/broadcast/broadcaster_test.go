package broadcast

import (
	"errors"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/medwatch/go-vitals-alerts/internal/directory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingSession struct {
	mu     sync.Mutex
	events []string
	fail   bool
}

func (r *recordingSession) Send(event string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("connection gone")
	}
	r.events = append(r.events, event)
	return nil
}

func (r *recordingSession) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestBroadcaster_DeliverToRecipientSet(t *testing.T) {
	dir := directory.New()
	b := New(dir)

	patient := &recordingSession{}
	doctor := &recordingSession{}
	bystander := &recordingSession{}
	dir.Join("p1", patient)
	dir.Join("d1", doctor)
	dir.Join("d2", bystander)

	b.Deliver([]string{"p1", "d1"}, "healthAlert", map[string]any{"id": "a1"})

	if patient.count() != 1 {
		t.Errorf("patient: expected 1 event, got %d", patient.count())
	}
	if doctor.count() != 1 {
		t.Errorf("doctor: expected 1 event, got %d", doctor.count())
	}
	if bystander.count() != 0 {
		t.Errorf("bystander: expected 0 events, got %d", bystander.count())
	}
}

func TestBroadcaster_DuplicateSubjectsDeliveredOnce(t *testing.T) {
	dir := directory.New()
	b := New(dir)

	s := &recordingSession{}
	dir.Join("p1", s)

	b.Deliver([]string{"p1", "p1", "p1"}, "healthUpdate", nil)

	if s.count() != 1 {
		t.Errorf("expected 1 delivery for deduplicated subject, got %d", s.count())
	}
}

func TestBroadcaster_MultipleSessionsPerSubject(t *testing.T) {
	dir := directory.New()
	b := New(dir)

	tab1 := &recordingSession{}
	tab2 := &recordingSession{}
	dir.Join("p1", tab1)
	dir.Join("p1", tab2)

	b.Deliver([]string{"p1"}, "healthUpdate", nil)

	if tab1.count() != 1 || tab2.count() != 1 {
		t.Errorf("expected both tabs to receive, got %d and %d", tab1.count(), tab2.count())
	}
}

func TestBroadcaster_OfflineSubjectSkipped(t *testing.T) {
	dir := directory.New()
	b := New(dir)

	online := &recordingSession{}
	dir.Join("p1", online)

	// p2 has no sessions; must not be an error.
	b.Deliver([]string{"p2", "p1"}, "healthAlert", nil)

	if online.count() != 1 {
		t.Errorf("expected online subject to receive, got %d", online.count())
	}
}

func TestBroadcaster_FailedSessionDoesNotAbortOthers(t *testing.T) {
	dir := directory.New()
	b := New(dir)

	broken := &recordingSession{fail: true}
	healthy := &recordingSession{}
	dir.Join("p1", broken)
	dir.Join("d1", healthy)

	b.Deliver([]string{"p1", "d1"}, "healthAlert", nil)

	if healthy.count() != 1 {
		t.Errorf("expected healthy session to receive despite failure, got %d", healthy.count())
	}
}

func TestBroadcaster_DeliverAll(t *testing.T) {
	dir := directory.New()
	b := New(dir)

	a := &recordingSession{}
	c := &recordingSession{}
	dir.Join("a", a)
	dir.Join("c", c)

	b.DeliverAll("system_health", map[string]any{"status": "Online"})

	if a.count() != 1 || c.count() != 1 {
		t.Errorf("expected all subjects to receive, got %d and %d", a.count(), c.count())
	}
}

func TestBroadcaster_ConcurrentDeliverAndJoin(t *testing.T) {
	dir := directory.New()
	b := New(dir)
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := &recordingSession{}
			dir.Join("p1", s)
			dir.Leave(s)
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Deliver([]string{"p1"}, "healthUpdate", nil)
		}()
	}

	wg.Wait()
}
