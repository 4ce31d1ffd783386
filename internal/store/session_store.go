package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/southeastwestnorth/tanzimapp/internal/exam"
)

// SessionEntry binds a live exam session to its registry metadata. The
// embedded mutex serializes all access to the session: HTTP handlers, the
// WebSocket timer stream, and the reaper may touch the same entry.
type SessionEntry struct {
	sync.Mutex

	ID              uuid.UUID
	BankName        string
	Shuffled        bool
	DurationSeconds int
	Session         *exam.Session
	CreatedAt       time.Time
	// FinishedAt is set when the session reaches a terminal state; the
	// reaper uses it to bound the store's memory.
	FinishedAt time.Time
}

// SessionStore holds all live sessions in process memory. Nothing survives a
// restart: a quiz attempt is bound to the process that started it.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*SessionEntry
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[uuid.UUID]*SessionEntry)}
}

// Put registers an entry under its ID.
func (s *SessionStore) Put(e *SessionEntry) {
	s.mu.Lock()
	s.sessions[e.ID] = e
	s.mu.Unlock()
}

// Get returns the entry for the given session ID.
func (s *SessionStore) Get(id uuid.UUID) (*SessionEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[id]
	return e, ok
}

// Delete discards an entry. Restart relies on this: the old session object
// is dropped whole, never reset in place, so no stale answer can leak into a
// new attempt.
func (s *SessionStore) Delete(id uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Count returns the number of live sessions.
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Snapshot returns the current entries. Callers must take each entry's own
// lock before inspecting its session.
func (s *SessionStore) Snapshot() []*SessionEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]*SessionEntry, 0, len(s.sessions))
	for _, e := range s.sessions {
		entries = append(entries, e)
	}
	return entries
}
