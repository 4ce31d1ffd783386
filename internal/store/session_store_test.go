package store

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/southeastwestnorth/tanzimapp/internal/exam"
	"github.com/southeastwestnorth/tanzimapp/internal/model"
)

func newEntry(t *testing.T) *SessionEntry {
	t.Helper()
	questions := []model.QuestionRecord{
		{Prompt: "Q?", Options: []string{"a", "b"}, CorrectAnswer: "a"},
	}
	return &SessionEntry{
		ID:              uuid.New(),
		BankName:        "sample",
		DurationSeconds: 60,
		Session:         exam.New(questions, time.Minute),
		CreatedAt:       time.Now(),
	}
}

func TestSessionStore_PutGetDelete(t *testing.T) {
	s := NewSessionStore()
	e := newEntry(t)

	s.Put(e)
	if s.Count() != 1 {
		t.Fatalf("count = %d, want 1", s.Count())
	}

	got, ok := s.Get(e.ID)
	if !ok || got != e {
		t.Fatal("Get did not return the stored entry")
	}

	s.Delete(e.ID)
	if _, ok := s.Get(e.ID); ok {
		t.Error("entry survived Delete")
	}
	if s.Count() != 0 {
		t.Errorf("count = %d after delete, want 0", s.Count())
	}
}

func TestSessionStore_GetUnknown(t *testing.T) {
	s := NewSessionStore()
	if _, ok := s.Get(uuid.New()); ok {
		t.Error("Get reported an entry that was never stored")
	}
}

func TestSessionStore_Snapshot(t *testing.T) {
	s := NewSessionStore()
	a, b := newEntry(t), newEntry(t)
	s.Put(a)
	s.Put(b)

	entries := s.Snapshot()
	if len(entries) != 2 {
		t.Fatalf("snapshot = %d entries, want 2", len(entries))
	}

	seen := map[uuid.UUID]bool{}
	for _, e := range entries {
		seen[e.ID] = true
	}
	if !seen[a.ID] || !seen[b.ID] {
		t.Error("snapshot missing stored entries")
	}
}
