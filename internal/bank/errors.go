package bank

import (
	"errors"
	"fmt"
)

// ErrEmptySource reports a source with a header but zero usable rows (or no
// header at all). Fatal: an empty bank can never be sat as a quiz.
var ErrEmptySource = errors.New("question bank has no usable rows")

// MissingColumnError reports that a required logical field could not be
// resolved from the header row through the alias table.
type MissingColumnError struct {
	Field string // "prompt" or "correct_answer"
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("question bank is missing a resolvable %q column", e.Field)
}

// RowError describes a single rejected row. Row numbers are 1-based and
// include the header, matching what a user sees in a spreadsheet.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}
