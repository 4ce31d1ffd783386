package bank

import (
	"fmt"
	"strings"
)

// KeyMismatch flags a question whose correct answer does not match any of its
// options after trimming. Such a question can never be answered correctly.
type KeyMismatch struct {
	Index  int    `json:"index"`
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
}

func (m KeyMismatch) String() string {
	return fmt.Sprintf("question %d (%q): correct answer %q is not one of the options", m.Index, m.Prompt, m.Answer)
}

// Validate checks every question's answer key against its option list.
// Mismatches are advisory — the loader accepts such rows so authors can see
// the problem in context instead of losing the row silently.
func Validate(b *Bank) []KeyMismatch {
	var mismatches []KeyMismatch
	for i, q := range b.Questions {
		found := false
		key := strings.TrimSpace(q.CorrectAnswer)
		for _, opt := range q.Options {
			if strings.TrimSpace(opt) == key {
				found = true
				break
			}
		}
		if !found {
			mismatches = append(mismatches, KeyMismatch{Index: i, Prompt: q.Prompt, Answer: q.CorrectAnswer})
		}
	}
	return mismatches
}
