package services

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors. Controllers translate these into API error codes; anything
// not in this taxonomy is treated as an unexpected storage failure and
// propagated unmodified.
var (
	ErrInvalidTransition         = errors.New("invalid job state transition")
	ErrCheckpointAlreadyResolved = errors.New("checkpoint already resolved")
	ErrEvaluationLocked          = errors.New("evaluation already submitted and locked")
	ErrInsufficientBalance       = errors.New("insufficient wallet balance")
	ErrDuplicateEligibility      = errors.New("payout eligibility already exists for job")
	ErrNotFound                  = errors.New("record not found")
	ErrUnauthorized              = errors.New("actor not authorized for this action")
	ErrValidation                = errors.New("invalid input")
)

// InvalidTransitionError wraps ErrInvalidTransition with the states involved.
type InvalidTransitionError struct {
	JobNumber string
	From      string
	To        string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("job %s: cannot transition from %s to %s", e.JobNumber, e.From, e.To)
}

// Unwrap makes errors.Is(err, ErrInvalidTransition) work.
func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// ChecklistIncompleteError reports which required items are still outstanding.
type ChecklistIncompleteError struct {
	JobNumber   string
	Outstanding []string
}

func (e *ChecklistIncompleteError) Error() string {
	return fmt.Sprintf("job %s: checklist incomplete, outstanding required items: %s",
		e.JobNumber, strings.Join(e.Outstanding, ", "))
}
