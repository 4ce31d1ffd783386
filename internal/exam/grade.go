package exam

import (
	"strings"

	"github.com/southeastwestnorth/tanzimapp/internal/config"
	"github.com/southeastwestnorth/tanzimapp/internal/model"
)

// Outcome classifies one graded answer.
type Outcome string

const (
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
	OutcomeSkipped   Outcome = "skipped"
)

// QuestionResult is the graded outcome for a single question.
type QuestionResult struct {
	Index         int      `json:"index"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	UserAnswer    *string  `json:"user_answer"`
	CorrectAnswer string   `json:"correct_answer"`
	Outcome       Outcome  `json:"outcome"`
}

// GradedResult is the full grading output. It is derived once and never
// mutated; the caller owns it.
type GradedResult struct {
	PerQuestion []QuestionResult `json:"per_question"`
	Score       int              `json:"score"`
	Total       int              `json:"total"`
	Percentage  float64          `json:"percentage"`
}

// Grade compares the recorded answers against the answer key. Pure function:
// identical inputs always yield identical results.
//
// Comparison rule, applied uniformly: both sides are trimmed of surrounding
// whitespace and compared case-sensitively. An absent or Cleared answer is
// Skipped, never Incorrect.
func Grade(questions []model.QuestionRecord, answers map[int]string) GradedResult {
	result := GradedResult{
		PerQuestion: make([]QuestionResult, len(questions)),
		Total:       len(questions),
	}

	for i, q := range questions {
		qr := QuestionResult{
			Index:         i,
			Prompt:        q.Prompt,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		}

		given, ok := answers[i]
		if !ok || given == Cleared {
			qr.Outcome = OutcomeSkipped
		} else {
			answer := given
			qr.UserAnswer = &answer
			if strings.TrimSpace(given) == strings.TrimSpace(q.CorrectAnswer) {
				qr.Outcome = OutcomeCorrect
				result.Score++
			} else {
				qr.Outcome = OutcomeIncorrect
			}
		}

		result.PerQuestion[i] = qr
	}

	if result.Total > 0 {
		result.Percentage = 100 * float64(result.Score) / float64(result.Total)
	}
	return result
}

// Missed returns the Incorrect subsequence of PerQuestion, in order. This is
// the projection handed to the PDF exporter; skipped questions are excluded.
func (r GradedResult) Missed() []QuestionResult {
	var missed []QuestionResult
	for _, qr := range r.PerQuestion {
		if qr.Outcome == OutcomeIncorrect {
			missed = append(missed, qr)
		}
	}
	return missed
}

// Letter maps a percentage onto a configured grade scale. Bands are assumed
// sorted by descending threshold (config.Load guarantees this); the fallback
// letter covers everything below the lowest band.
func Letter(scale []config.GradeBand, fallback string, percentage float64) string {
	for _, band := range scale {
		if percentage >= band.MinPercent {
			return band.Letter
		}
	}
	return fallback
}
