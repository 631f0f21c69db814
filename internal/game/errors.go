package game

import "fmt"

// ValidationError is bad user input or an out-of-phase transition: duplicate
// or empty player name, too few players, missing playlist selection. It is
// surfaced inline and never corrupts game state.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func errValidation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ErrStaleEpoch marks an async result that arrived after the round it was
// issued for had already advanced or been reset. Such results are discarded.
var ErrStaleEpoch = &ValidationError{Msg: "result belongs to an earlier round"}
