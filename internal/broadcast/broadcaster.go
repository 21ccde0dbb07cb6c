package broadcast

import (
	"log/slog"

	"github.com/medwatch/go-vitals-alerts/internal/directory"
)

// Broadcaster fans one event out to every live session of every subject in a
// recipient set. Offline subjects are skipped silently; a failed push to one
// session never blocks or aborts delivery to the others.
type Broadcaster struct {
	dir *directory.Directory
}

func New(dir *directory.Directory) *Broadcaster {
	return &Broadcaster{dir: dir}
}

// Deliver pushes the same payload instance to each live session of each
// subject. Duplicate subjects in the set are delivered once.
func (b *Broadcaster) Deliver(subjects []string, event string, payload any) {
	seen := make(map[string]struct{}, len(subjects))
	for _, subject := range subjects {
		if _, dup := seen[subject]; dup {
			continue
		}
		seen[subject] = struct{}{}

		for _, s := range b.dir.SessionsOf(subject) {
			if err := s.Send(event, payload); err != nil {
				slog.Error("session delivery failed", "event", event, "subject", subject, "error", err)
			}
		}
	}
}

// DeliverAll pushes to every connected subject, whoever they are. Used by the
// peripheral liveness signals that share this broadcaster.
func (b *Broadcaster) DeliverAll(event string, payload any) {
	b.Deliver(b.dir.Subjects(), event, payload)
}
