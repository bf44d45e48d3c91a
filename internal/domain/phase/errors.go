package phase

import (
	"errors"
	"fmt"
)

// ErrUnknownPhase indicates an unrecognized phase name.
var ErrUnknownPhase = errors.New("unknown phase")

// TransitionError reports a denied forward transition and names the
// earliest phase blocking it.
type TransitionError struct {
	From     Phase
	To       Phase
	Blocking Phase
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition to %s: phase %s must be completed first", e.To, e.Blocking)
}
