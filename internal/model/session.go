package model

// CreateSessionRequest is the payload for starting a new quiz session.
type CreateSessionRequest struct {
	Bank            string `json:"bank" binding:"omitempty,min=1,max=255"`
	DurationSeconds int    `json:"duration_seconds" binding:"omitempty,min=10,max=14400"`
	Shuffle         *bool  `json:"shuffle" binding:"omitempty"`
}

// RecordAnswerRequest records or clears a single answer. A null selected
// value clears any previous selection for that question.
type RecordAnswerRequest struct {
	Selected *string `json:"selected" binding:"omitempty,max=2000"`
}

// SessionView is the client-facing snapshot of a session.
type SessionView struct {
	ID               string             `json:"id"`
	Bank             string             `json:"bank"`
	Status           string             `json:"status"`
	DurationSeconds  int                `json:"duration_seconds"`
	RemainingSeconds float64            `json:"remaining_seconds"`
	QuestionCount    int                `json:"question_count"`
	AnsweredCount    int                `json:"answered_count"`
	Answers          map[int]string     `json:"answers"`
	Questions        []QuestionForTaker `json:"questions,omitempty"`
}
