package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Default limits for a Tracker.
const (
	DefaultWindow  = 50
	DefaultIdleTTL = 30 * time.Minute
)

// Session is the rolling window of user-authored messages for one chat or
// voice session. Assistant messages are never recorded.
type Session struct {
	ID        string    `json:"session_id"`
	Messages  []string  `json:"-"`
	Total     int       `json:"total_messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tracker keeps sessions in memory. Safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	sessions map[string]*Session
	window   int
	idleTTL  time.Duration
	now      func() time.Time
}

// NewTracker creates a Tracker keeping at most window messages per session.
// Non-positive values select the defaults.
func NewTracker(window int, idleTTL time.Duration) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Tracker{
		sessions: make(map[string]*Session),
		window:   window,
		idleTTL:  idleTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// NewID returns a fresh session ID.
func NewID() string {
	return "s-" + uuid.NewString()
}

// Record appends a user message to the session, creating it if needed,
// and drops the oldest message once the window is full.
func (t *Tracker) Record(id, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	s, ok := t.sessions[id]
	if !ok {
		s = &Session{ID: id, CreatedAt: now}
		t.sessions[id] = s
	}
	s.Messages = append(s.Messages, text)
	if len(s.Messages) > t.window {
		s.Messages = append([]string(nil), s.Messages[len(s.Messages)-t.window:]...)
	}
	s.Total++
	s.UpdatedAt = now
}

// Messages returns a copy of the session window, or nil if unknown.
func (t *Tracker) Messages(id string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[id]
	if !ok {
		return nil
	}
	return append([]string(nil), s.Messages...)
}

// Get returns a snapshot of the session.
func (t *Tracker) Get(id string) (Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[id]
	if !ok {
		return Session{}, false
	}
	snap := *s
	snap.Messages = append([]string(nil), s.Messages...)
	return snap, true
}

// End removes the session and returns its final snapshot.
func (t *Tracker) End(id string) (Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[id]
	if !ok {
		return Session{}, false
	}
	delete(t.sessions, id)
	return *s, true
}

// Sweep removes sessions idle longer than the TTL and returns them.
func (t *Tracker) Sweep() []Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-t.idleTTL)
	var expired []Session
	for id, s := range t.sessions {
		if s.UpdatedAt.Before(cutoff) {
			expired = append(expired, *s)
			delete(t.sessions, id)
		}
	}
	return expired
}

// Len returns the number of active sessions.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}
