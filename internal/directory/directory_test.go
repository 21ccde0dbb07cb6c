package directory

import (
	"fmt"
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSession struct {
	id string
}

func (f *fakeSession) Send(event string, payload any) error { return nil }

func TestDirectory_JoinLeave(t *testing.T) {
	d := New()
	h1 := &fakeSession{id: "h1"}
	h2 := &fakeSession{id: "h2"}

	d.Join("patient-1", h1)
	d.Join("patient-1", h2)

	if got := len(d.SessionsOf("patient-1")); got != 2 {
		t.Fatalf("expected 2 sessions, got %d", got)
	}

	d.Leave(h1)

	sessions := d.SessionsOf("patient-1")
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session after leave, got %d", len(sessions))
	}
	if sessions[0] != h2 {
		t.Error("expected remaining session to be h2")
	}
}

func TestDirectory_LeaveNeverJoined(t *testing.T) {
	d := New()
	d.Join("patient-1", &fakeSession{id: "h1"})

	// No error, no state change.
	d.Leave(&fakeSession{id: "stranger"})

	if got := len(d.SessionsOf("patient-1")); got != 1 {
		t.Errorf("expected 1 session, got %d", got)
	}
	if d.SessionCount() != 1 {
		t.Errorf("expected session count 1, got %d", d.SessionCount())
	}
}

func TestDirectory_EmptySubject(t *testing.T) {
	d := New()
	if got := d.SessionsOf("nobody"); got != nil {
		t.Errorf("expected nil for unknown subject, got %v", got)
	}

	h := &fakeSession{id: "h"}
	d.Join("patient-1", h)
	d.Leave(h)

	if got := d.SessionsOf("patient-1"); len(got) != 0 {
		t.Errorf("expected empty set after last leave, got %v", got)
	}
	if got := len(d.Subjects()); got != 0 {
		t.Errorf("expected no subjects, got %d", got)
	}
}

func TestDirectory_RejoinMovesSession(t *testing.T) {
	d := New()
	h := &fakeSession{id: "h"}

	d.Join("patient-1", h)
	d.Join("patient-2", h)

	if got := len(d.SessionsOf("patient-1")); got != 0 {
		t.Errorf("expected old subject emptied, got %d sessions", got)
	}
	if got := len(d.SessionsOf("patient-2")); got != 1 {
		t.Errorf("expected 1 session under new subject, got %d", got)
	}
	if subject, _ := d.SubjectOf(h); subject != "patient-2" {
		t.Errorf("expected subject patient-2, got %s", subject)
	}
}

func TestDirectory_Subjects(t *testing.T) {
	d := New()
	d.Join("a", &fakeSession{id: "1"})
	d.Join("a", &fakeSession{id: "2"})
	d.Join("b", &fakeSession{id: "3"})

	subjects := d.Subjects()
	if len(subjects) != 2 {
		t.Fatalf("expected 2 subjects, got %d", len(subjects))
	}
	seen := map[string]bool{}
	for _, s := range subjects {
		seen[s] = true
	}
	if !seen["a"] || !seen["b"] {
		t.Errorf("expected subjects a and b, got %v", subjects)
	}
}

func TestDirectory_ConcurrentJoinLeave(t *testing.T) {
	d := New()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			h := &fakeSession{id: fmt.Sprintf("h%d", n)}
			d.Join(fmt.Sprintf("subject-%d", n%10), h)
			d.SessionsOf(fmt.Sprintf("subject-%d", n%10))
			d.Leave(h)
		}(i)
	}

	wg.Wait()

	if d.SessionCount() != 0 {
		t.Errorf("expected 0 sessions after cleanup, got %d", d.SessionCount())
	}
}
