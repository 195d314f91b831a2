package lifecycle

import (
	"errors"
	"fmt"

	"github.com/tilerace/race-engine/pkg/model"
)

var (
	ErrIllegalTransition = errors.New("illegal transition")
	ErrLockWindowClosed  = errors.New("race can only be locked before its scheduled start")
	ErrDuplicateEntry    = errors.New("duplicate entry")
	ErrStreamActive      = errors.New("tick stream not exhausted")
	ErrForeignStream     = errors.New("tick stream does not belong to race")
	ErrNotFinished       = errors.New("race not finished")
)

// TransitionError reports a transition that is not allowed from the current state.
type TransitionError struct {
	From model.RaceStatus
	To   model.RaceStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrIllegalTransition, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrIllegalTransition
}
