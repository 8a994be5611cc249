package resolver

import (
	"errors"
	"fmt"
)

var (
	// ErrPartiallyApplied is matched by a resolution that failed after at
	// least one write was acknowledged. Server state is then ambiguous and
	// the reconciliation must be reloaded.
	ErrPartiallyApplied = errors.New("resolution may be partially applied, please reload")

	// ErrNoSelection is returned when resolving without a selected match or transaction.
	ErrNoSelection = errors.New("nothing selected")

	// ErrInvalidTransition is returned when the session cannot perform the action in its current state.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrReloadFailed is returned when every write succeeded but the snapshot could not be refetched.
	ErrReloadFailed = errors.New("resolution applied but reload failed")
)

// ResolutionError describes the step at which a resolution stopped.
type ResolutionError struct {
	// Op is the remote call that failed: "delete", "update", "create" or "reject".
	Op string

	// MatchID is the match the call targeted, empty for a create.
	MatchID string

	// Applied is the number of writes acknowledged before the failure.
	Applied int

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	target := e.MatchID
	if target == "" {
		target = "new match"
	}
	if e.Applied > 0 {
		return fmt.Sprintf("resolver: %s %s failed after %d applied change(s), resolution may be partially applied: %v", e.Op, target, e.Applied, e.Err)
	}
	return fmt.Sprintf("resolver: %s %s failed: %v", e.Op, target, e.Err)
}

// Unwrap returns the underlying error.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Is matches ErrPartiallyApplied when writes were already acknowledged.
func (e *ResolutionError) Is(target error) bool {
	return target == ErrPartiallyApplied && e.Applied > 0
}

// IsPartial reports whether err is a resolution that left server state ambiguous.
func IsPartial(err error) bool {
	return errors.Is(err, ErrPartiallyApplied)
}
