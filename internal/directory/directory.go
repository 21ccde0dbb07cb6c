package directory

import "sync"

// Session is one live connected client able to receive pushed events. The
// concrete transport lives elsewhere; the directory only needs identity
// (map-key comparability) and is never the one calling Send.
type Session interface {
	Send(event string, payload any) error
}

// Directory maps subjects (user ids) to their currently connected sessions.
// A subject may hold any number of sessions (the same user open in two tabs).
// State is process-local and rebuilt from scratch as sessions reconnect.
type Directory struct {
	mu       sync.RWMutex
	sessions map[string]map[Session]struct{}
	subjects map[Session]string // reverse index so Leave needs only the handle
}

func New() *Directory {
	return &Directory{
		sessions: make(map[string]map[Session]struct{}),
		subjects: make(map[Session]string),
	}
}

// Join registers a session as belonging to a subject. Joining the same
// session twice moves it to the new subject.
func (d *Directory) Join(subject string, s Session) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.subjects[s]; ok {
		d.removeLocked(prev, s)
	}
	set, ok := d.sessions[subject]
	if !ok {
		set = make(map[Session]struct{})
		d.sessions[subject] = set
	}
	set[s] = struct{}{}
	d.subjects[s] = subject
}

// Leave removes a session from whatever subject it was joined under.
// Safe to call for a session that was never joined.
func (d *Directory) Leave(s Session) {
	d.mu.Lock()
	defer d.mu.Unlock()

	subject, ok := d.subjects[s]
	if !ok {
		return
	}
	d.removeLocked(subject, s)
	delete(d.subjects, s)
}

func (d *Directory) removeLocked(subject string, s Session) {
	if set, ok := d.sessions[subject]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(d.sessions, subject)
		}
	}
}

// SessionsOf returns all live sessions for a subject. The returned slice is
// a snapshot; it is safe to range over while joins and leaves continue.
func (d *Directory) SessionsOf(subject string) []Session {
	d.mu.RLock()
	defer d.mu.RUnlock()

	set, ok := d.sessions[subject]
	if !ok {
		return nil
	}
	out := make([]Session, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	return out
}

// Subjects returns every subject with at least one live session.
func (d *Directory) Subjects() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]string, 0, len(d.sessions))
	for subject := range d.sessions {
		out = append(out, subject)
	}
	return out
}

// SubjectOf reports which subject a session is joined under.
func (d *Directory) SubjectOf(s Session) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	subject, ok := d.subjects[s]
	return subject, ok
}

func (d *Directory) SessionCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subjects)
}
