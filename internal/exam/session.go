package exam

import (
	"time"

	"github.com/southeastwestnorth/tanzimapp/internal/model"
)

// Status enumerates session lifecycle states.
type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusSubmitted  Status = "SUBMITTED"
	StatusExpired    Status = "EXPIRED"
)

// Terminal reports whether the status accepts no further transitions.
func (s Status) Terminal() bool {
	return s == StatusSubmitted || s == StatusExpired
}

// Cleared is the designated answer value for an explicit de-selection. A
// cleared answer grades as Skipped, exactly like one never recorded.
const Cleared = ""

// DefaultDuration derives the time budget from the question count: one
// minute per question.
func DefaultDuration(questionCount int) time.Duration {
	return time.Duration(questionCount) * time.Minute
}

// Session is one quiz attempt over a fixed question list. It owns its answer
// map and start instant exclusively; the question list is shared read-only
// with the loader and grader. The session performs no timing of its own —
// callers sample Remaining and invoke Expire when they observe zero.
//
// Session is not safe for concurrent use. There is exactly one writer (the
// active taker); any cross-goroutine access is the caller's lock to take.
type Session struct {
	questions []model.QuestionRecord
	duration  time.Duration
	startedAt time.Time
	state     Status
	answers   map[int]string
}

// New creates a session in NotStarted over the given questions. A zero or
// negative duration falls back to DefaultDuration.
func New(questions []model.QuestionRecord, duration time.Duration) *Session {
	if duration <= 0 {
		duration = DefaultDuration(len(questions))
	}
	return &Session{
		questions: questions,
		duration:  duration,
		state:     StatusNotStarted,
		answers:   make(map[int]string),
	}
}

// Status returns the current lifecycle state.
func (s *Session) Status() Status { return s.state }

// Questions returns the session's question list. Callers must not mutate it.
func (s *Session) Questions() []model.QuestionRecord { return s.questions }

// Duration returns the total time budget.
func (s *Session) Duration() time.Duration { return s.duration }

// StartedAt returns the start instant; zero until Start is called.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// Answers returns a copy of the recorded answers keyed by question index.
func (s *Session) Answers() map[int]string {
	out := make(map[int]string, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// Start moves NotStarted → InProgress and pins the start instant. The start
// instant is set exactly once for the session's lifetime.
func (s *Session) Start(now time.Time) error {
	if s.state != StatusNotStarted {
		return &InvalidTransitionError{Op: "start", From: s.state}
	}
	s.startedAt = now
	s.state = StatusInProgress
	return nil
}

// Remaining returns the unexpired part of the budget, clamped at zero. It is
// recomputed from the wall clock on every call — callers poll it to drive
// their own timers; nothing is cached.
func (s *Session) Remaining(now time.Time) time.Duration {
	switch s.state {
	case StatusNotStarted:
		return s.duration
	case StatusInProgress:
		left := s.duration - now.Sub(s.startedAt)
		if left < 0 {
			return 0
		}
		return left
	default:
		return 0
	}
}

// RecordAnswer sets or overwrites the answer for a question. Re-recording the
// same index is last-write-wins. Recording Cleared represents an explicit
// de-selection. If the deadline has already passed, the session is forced to
// Expired and ErrDeadlinePassed is returned.
func (s *Session) RecordAnswer(index int, value string, now time.Time) error {
	if s.state != StatusInProgress {
		return &InvalidTransitionError{Op: "record an answer on", From: s.state}
	}
	if index < 0 || index >= len(s.questions) {
		return ErrOutOfRange
	}
	if s.Remaining(now) <= 0 {
		s.state = StatusExpired
		return ErrDeadlinePassed
	}
	s.answers[index] = value
	return nil
}

// Submit moves InProgress → Submitted. An explicit submit preempts the
// deadline: it succeeds even if Remaining is already zero. A second submit
// fails with InvalidTransitionError rather than re-grading.
func (s *Session) Submit(now time.Time) error {
	if s.state != StatusInProgress {
		return &InvalidTransitionError{Op: "submit", From: s.state}
	}
	s.state = StatusSubmitted
	return nil
}

// Expire moves InProgress → Expired. Invoked by whichever component observes
// Remaining reach zero. Answers recorded up to that instant stand; the rest
// grade as Skipped.
func (s *Session) Expire(now time.Time) error {
	if s.state != StatusInProgress {
		return &InvalidTransitionError{Op: "expire", From: s.state}
	}
	s.state = StatusExpired
	return nil
}
