package exam

import (
	"errors"
	"fmt"
)

// ErrOutOfRange reports an answer recorded against a question index outside
// the loaded bank.
var ErrOutOfRange = errors.New("question index out of range")

// ErrDeadlinePassed reports an operation attempted after the time budget ran
// out. The session has already been moved to Expired when this is returned.
var ErrDeadlinePassed = errors.New("session deadline has passed")

// InvalidTransitionError reports a lifecycle operation invoked from the wrong
// state. These are presentation-layer bugs, not user errors.
type InvalidTransitionError struct {
	Op   string
	From Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a session in state %s", e.Op, e.From)
}
