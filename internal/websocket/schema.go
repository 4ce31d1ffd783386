package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer Action = "answer"
	ActionSubmit Action = "submit"
	ActionPing   Action = "ping"
)

// Request is the single client message shape. Index and Selected are only
// meaningful for ActionAnswer; a null Selected clears the answer.
type Request struct {
	Action   Action  `json:"action"`
	Index    int     `json:"index"`
	Selected *string `json:"selected"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventTick     Event = "tick"
	EventAnswered Event = "answered"
	EventGraded   Event = "graded"
	EventExpired  Event = "expired"
	EventError    Event = "error"
	EventPong     Event = "pong"
)

// TickEvent is pushed once per second while the session runs.
type TickEvent struct {
	Event            Event   `json:"event"`
	RemainingSeconds float64 `json:"remaining_seconds"`
}

// AnsweredEvent acknowledges a recorded (or cleared) answer.
type AnsweredEvent struct {
	Event            Event   `json:"event"`
	Index            int     `json:"index"`
	RemainingSeconds float64 `json:"remaining_seconds"`
}

// GradedEvent delivers the summary after a submit or expiry.
type GradedEvent struct {
	Event       Event   `json:"event"`
	EndedBy     string  `json:"ended_by"`
	Score       int     `json:"score"`
	Total       int     `json:"total"`
	Percentage  float64 `json:"percentage"`
	LetterGrade string  `json:"letter_grade"`
}

// ExpiredEvent announces that the time budget hit zero.
type ExpiredEvent struct {
	Event Event `json:"event"`
}

type ErrorEvent struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongEvent struct {
	Event Event `json:"event"`
}
