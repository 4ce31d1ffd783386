package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/southeastwestnorth/tanzimapp/internal/bank"
	"github.com/southeastwestnorth/tanzimapp/internal/config"
	"github.com/southeastwestnorth/tanzimapp/internal/exam"
	"github.com/southeastwestnorth/tanzimapp/internal/model"
	"github.com/southeastwestnorth/tanzimapp/internal/report"
	"github.com/southeastwestnorth/tanzimapp/internal/store"
)

// Service-level errors the handlers map to HTTP codes.
var (
	ErrNoBank          = errors.New("no question bank specified and no default configured")
	ErrBankNotFound    = errors.New("question bank not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrNotFinished     = errors.New("session has not finished yet")
	ErrStillRunning    = errors.New("deadline has not passed yet")
)

// ResultView is the graded outcome handed to clients. EndedBy distinguishes
// an explicit submission from a deadline expiry — the two terminal states
// carry different meaning even when the scores match.
type ResultView struct {
	SessionID   string                `json:"session_id"`
	Bank        string                `json:"bank"`
	EndedBy     string                `json:"ended_by"` // "submitted" or "expired"
	Score       int                   `json:"score"`
	Total       int                   `json:"total"`
	Percentage  float64               `json:"percentage"`
	LetterGrade string                `json:"letter_grade"`
	PerQuestion []exam.QuestionResult `json:"per_question"`
	FinishedAt  time.Time             `json:"finished_at"`
}

// QuizService orchestrates the bank registry, session store, grader, and
// report generator behind the HTTP and WebSocket surfaces.
type QuizService struct {
	cfg      *config.Config
	banks    *store.BankStore
	sessions *store.SessionStore
	log      zerolog.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(cfg *config.Config, banks *store.BankStore, sessions *store.SessionStore, log zerolog.Logger) *QuizService {
	return &QuizService{
		cfg:      cfg,
		banks:    banks,
		sessions: sessions,
		log:      log.With().Str("component", "quiz_service").Logger(),
	}
}

// Banks lists the registered question banks.
func (s *QuizService) Banks() []store.BankInfo {
	return s.banks.List()
}

// RegisterBank validates and stores an uploaded bank source.
func (s *QuizService) RegisterBank(name string, format bank.Format, source []byte) (*store.StoredBank, error) {
	return s.banks.Put(name, format, source)
}

// CreateSession loads the named bank fresh, builds a session over it, and
// starts the clock. An empty bank name falls back to the configured default.
func (s *QuizService) CreateSession(req model.CreateSessionRequest, now time.Time) (*model.SessionView, error) {
	name := req.Bank
	if name == "" {
		name = s.cfg.DefaultBank
	}
	if name == "" {
		return nil, ErrNoBank
	}
	if _, ok := s.banks.Get(name); !ok {
		return nil, fmt.Errorf("%w: %s", ErrBankNotFound, name)
	}

	shuffle := s.cfg.ShuffleQuestions
	if req.Shuffle != nil {
		shuffle = *req.Shuffle
	}

	entry, err := s.newEntry(name, shuffle, req.DurationSeconds, now)
	if err != nil {
		return nil, err
	}
	s.sessions.Put(entry)

	s.log.Info().
		Str("session_id", entry.ID.String()).
		Str("bank", name).
		Bool("shuffle", shuffle).
		Int("duration_seconds", entry.DurationSeconds).
		Msg("Session started")

	entry.Lock()
	defer entry.Unlock()
	return s.view(entry, now), nil
}

// newEntry performs one fresh load (re-permuting when shuffled) and starts a
// brand-new session over the result.
func (s *QuizService) newEntry(bankName string, shuffle bool, durationSeconds int, now time.Time) (*store.SessionEntry, error) {
	opts := bank.Options{}
	if shuffle {
		opts.Shuffle = true
		opts.Rand = store.ShuffleSource()
	}

	loaded, err := s.banks.Open(bankName, opts)
	if err != nil {
		return nil, fmt.Errorf("load bank %q: %w", bankName, err)
	}

	duration := time.Duration(durationSeconds) * time.Second
	if durationSeconds <= 0 {
		duration = time.Duration(s.cfg.SecondsPerQuest*len(loaded.Questions)) * time.Second
	}

	sess := exam.New(loaded.Questions, duration)
	if err := sess.Start(now); err != nil {
		return nil, err
	}

	return &store.SessionEntry{
		ID:              uuid.New(),
		BankName:        bankName,
		Shuffled:        shuffle,
		DurationSeconds: int(duration / time.Second),
		Session:         sess,
		CreatedAt:       now,
	}, nil
}

// State returns the session snapshot, questions included so a reloading
// client can rebuild its form. Observing a zero remaining budget here fires
// the expire transition — time is sampled, never interrupted.
func (s *QuizService) State(id uuid.UUID, now time.Time) (*model.SessionView, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}

	entry.Lock()
	defer entry.Unlock()
	s.expireIfOverdue(entry, now)
	return s.view(entry, now), nil
}

// Clock samples the remaining budget and current status without building a
// full snapshot. The timer stream calls this once per second; observing zero
// remaining fires the expire transition like any other poll.
func (s *QuizService) Clock(id uuid.UUID, now time.Time) (time.Duration, exam.Status, error) {
	entry, err := s.entry(id)
	if err != nil {
		return 0, "", err
	}

	entry.Lock()
	defer entry.Unlock()
	s.expireIfOverdue(entry, now)
	return entry.Session.Remaining(now), entry.Session.Status(), nil
}

// RecordAnswer sets or clears one answer. A nil selected value records the
// cleared marker. Returns the remaining budget so clients can resync their
// countdown on every interaction.
func (s *QuizService) RecordAnswer(id uuid.UUID, index int, selected *string, now time.Time) (time.Duration, error) {
	entry, err := s.entry(id)
	if err != nil {
		return 0, err
	}

	value := exam.Cleared
	if selected != nil {
		value = *selected
	}

	entry.Lock()
	defer entry.Unlock()

	if err := entry.Session.RecordAnswer(index, value, now); err != nil {
		if errors.Is(err, exam.ErrDeadlinePassed) {
			// RecordAnswer forced the expire transition.
			entry.FinishedAt = now
		}
		return 0, err
	}
	return entry.Session.Remaining(now), nil
}

// Submit finishes the session explicitly, preempting the deadline, and
// returns the graded result.
func (s *QuizService) Submit(id uuid.UUID, now time.Time) (*ResultView, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}

	entry.Lock()
	defer entry.Unlock()

	if err := entry.Session.Submit(now); err != nil {
		return nil, err
	}
	entry.FinishedAt = now

	s.log.Info().Str("session_id", id.String()).Msg("Session submitted")
	return s.result(entry), nil
}

// Expire finishes the session because the deadline was observed to pass.
// Rejected while budget remains: expiry is an observation, not a shortcut.
func (s *QuizService) Expire(id uuid.UUID, now time.Time) (*ResultView, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}

	entry.Lock()
	defer entry.Unlock()

	if entry.Session.Status() == exam.StatusInProgress && entry.Session.Remaining(now) > 0 {
		return nil, ErrStillRunning
	}
	if err := entry.Session.Expire(now); err != nil {
		return nil, err
	}
	entry.FinishedAt = now

	s.log.Info().Str("session_id", id.String()).Msg("Session expired")
	return s.result(entry), nil
}

// Result returns the graded result of a finished session. Grading is a pure
// function of the frozen answer set, so calling this repeatedly is safe.
func (s *QuizService) Result(id uuid.UUID, now time.Time) (*ResultView, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}

	entry.Lock()
	defer entry.Unlock()
	s.expireIfOverdue(entry, now)

	if !entry.Session.Status().Terminal() {
		return nil, ErrNotFinished
	}
	return s.result(entry), nil
}

// Restart discards the session and creates a fresh one over a newly loaded
// (and possibly re-permuted) copy of the same bank, under a new ID. The old
// object is dropped whole so nothing can leak into the new attempt.
func (s *QuizService) Restart(id uuid.UUID, now time.Time) (*model.SessionView, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}

	entry.Lock()
	bankName := entry.BankName
	shuffled := entry.Shuffled
	entry.Unlock()

	fresh, err := s.newEntry(bankName, shuffled, 0, now)
	if err != nil {
		return nil, err
	}

	s.sessions.Delete(id)
	s.sessions.Put(fresh)

	s.log.Info().
		Str("old_session_id", id.String()).
		Str("session_id", fresh.ID.String()).
		Str("bank", bankName).
		Msg("Session restarted")

	fresh.Lock()
	defer fresh.Unlock()
	return s.view(fresh, now), nil
}

// Report renders the missed-question PDF for a finished session.
func (s *QuizService) Report(id uuid.UUID, now time.Time) ([]byte, error) {
	result, err := s.Result(id, now)
	if err != nil {
		return nil, err
	}

	graded := exam.GradedResult{
		PerQuestion: result.PerQuestion,
		Score:       result.Score,
		Total:       result.Total,
		Percentage:  result.Percentage,
	}

	return report.MissedQuestionsPDF(report.Summary{
		BankName:    result.Bank,
		Score:       result.Score,
		Total:       result.Total,
		Percentage:  result.Percentage,
		LetterGrade: result.LetterGrade,
		EndedBy:     result.EndedBy,
		FinishedAt:  result.FinishedAt,
	}, graded.Missed())
}

func (s *QuizService) entry(id uuid.UUID) (*store.SessionEntry, error) {
	entry, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return entry, nil
}

// expireIfOverdue fires the expire transition when a poll observes the budget
// at zero. Caller holds the entry lock.
func (s *QuizService) expireIfOverdue(entry *store.SessionEntry, now time.Time) {
	if entry.Session.Status() == exam.StatusInProgress && entry.Session.Remaining(now) <= 0 {
		if err := entry.Session.Expire(now); err == nil {
			entry.FinishedAt = now
			s.log.Info().Str("session_id", entry.ID.String()).Msg("Session expired on poll")
		}
	}
}

// view builds the client snapshot. Caller holds the entry lock.
func (s *QuizService) view(entry *store.SessionEntry, now time.Time) *model.SessionView {
	sess := entry.Session
	answers := sess.Answers()
	return &model.SessionView{
		ID:               entry.ID.String(),
		Bank:             entry.BankName,
		Status:           string(sess.Status()),
		DurationSeconds:  entry.DurationSeconds,
		RemainingSeconds: sess.Remaining(now).Seconds(),
		QuestionCount:    len(sess.Questions()),
		AnsweredCount:    len(answers),
		Answers:          answers,
		Questions:        model.ForTaker(sess.Questions()),
	}
}

// result grades the frozen answer set. Caller holds the entry lock and has
// verified the session is terminal.
func (s *QuizService) result(entry *store.SessionEntry) *ResultView {
	sess := entry.Session
	graded := exam.Grade(sess.Questions(), sess.Answers())

	endedBy := "submitted"
	if sess.Status() == exam.StatusExpired {
		endedBy = "expired"
	}

	return &ResultView{
		SessionID:   entry.ID.String(),
		Bank:        entry.BankName,
		EndedBy:     endedBy,
		Score:       graded.Score,
		Total:       graded.Total,
		Percentage:  graded.Percentage,
		LetterGrade: exam.Letter(s.cfg.GradeScale, s.cfg.FallbackGrade, graded.Percentage),
		PerQuestion: graded.PerQuestion,
		FinishedAt:  entry.FinishedAt,
	}
}
