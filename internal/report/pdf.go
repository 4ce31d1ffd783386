// Package report renders the reviewable "missed questions" document for a
// graded quiz attempt.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/southeastwestnorth/tanzimapp/internal/exam"
)

// Summary carries everything the report header needs.
type Summary struct {
	BankName    string
	Score       int
	Total       int
	Percentage  float64
	LetterGrade string
	EndedBy     string // "submitted" or "expired"
	FinishedAt  time.Time
}

// MissedQuestionsPDF renders the incorrect-answer review as a paginated PDF.
// Only the Incorrect projection is printed — skipped questions carry no
// chosen answer worth reviewing. Returns the raw document bytes.
func MissedQuestionsPDF(summary Summary, missed []exam.QuestionResult) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Quiz Review", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 10, "Quiz Review - Missed Questions", "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 11)
	header := fmt.Sprintf(
		"Bank: %s\nScore: %d of %d (%.1f%%), grade %s\nFinished: %s (%s)\nMissed questions: %d",
		summary.BankName,
		summary.Score, summary.Total, summary.Percentage, summary.LetterGrade,
		summary.FinishedAt.Format("2006-01-02 15:04:05"),
		summary.EndedBy,
		len(missed),
	)
	pdf.MultiCell(0, 6, header, "", "L", false)
	pdf.Ln(4)

	if len(missed) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.MultiCell(0, 6, "Nothing to review: no incorrect answers.", "", "L", false)
	}

	for i, qr := range missed {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(0, 7, fmt.Sprintf("%d. Question %d", i+1, qr.Index+1), "", "L", false)

		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, qr.Prompt, "", "L", false)
		pdf.Ln(1)

		chosen := ""
		if qr.UserAnswer != nil {
			chosen = *qr.UserAnswer
		}
		pdf.MultiCell(0, 6, fmt.Sprintf("Your answer: %s\nCorrect answer: %s", chosen, qr.CorrectAnswer), "", "L", false)
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
