package visitor

import (
	"errors"
	"fmt"
	"time"
)

var (
	// No record matches the access code (or only terminal records do).
	ErrNotFound = errors.New("no matching access code")
	// A record matched but its visit date is not today.
	ErrWrongDate = errors.New("access code is for a different day")
	// Status change attempted from a disallowed state.
	ErrInvalidTransition = errors.New("invalid status transition")
	// Persistence failed; the store keeps its last-known-good state.
	ErrStorageUnavailable = errors.New("visitor storage unavailable")
	// Could not generate a unique access code.
	ErrCodeCollision = errors.New("unable to generate unique access code")
	// Caller is neither the authorizing identity nor an administrative role.
	ErrNotAuthorized = errors.New("not authorized to revoke this record")
)

// ValidationError reports a rejected create input. No record is created
// when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// WrongDateError carries the scheduled day so callers can tell the
// operator which day the code is valid for.
type WrongDateError struct {
	VisitDate time.Time
}

func (e *WrongDateError) Error() string {
	return fmt.Sprintf("access code is for a visit on %s", e.VisitDate.Format("Jan 2, 2006"))
}

func (e *WrongDateError) Is(target error) bool {
	return target == ErrWrongDate
}

// InvalidTransitionError names the offending states.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
