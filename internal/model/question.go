package model

// QuestionRecord is one normalized multiple-choice question. Its identity is
// its positional index within the loaded bank, fixed for the lifetime of a
// session.
type QuestionRecord struct {
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// QuestionForTaker is a question stripped of its correct answer, safe to send
// to the client taking the quiz.
type QuestionForTaker struct {
	Index   int      `json:"index"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// ForTaker strips the answer key from a question list.
func ForTaker(questions []QuestionRecord) []QuestionForTaker {
	out := make([]QuestionForTaker, len(questions))
	for i, q := range questions {
		out[i] = QuestionForTaker{Index: i, Prompt: q.Prompt, Options: q.Options}
	}
	return out
}
