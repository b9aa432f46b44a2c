package domain

import (
	"errors"
	"fmt"
)

var (
	// Settlement errors
	ErrInvalidSettlement   = errors.New("invalid settlement")
	ErrDuplicateSettlement = errors.New("settlement already recorded")
	ErrSettlementNotFound  = errors.New("settlement not found")

	// Synthesis errors
	ErrSynthesisFailure = errors.New("message synthesis failed")

	// Statement errors
	ErrEmptyPeriod = errors.New("no settlements in the requested period")

	// Persistence errors
	ErrPersistenceFailure = errors.New("persistence failure")

	// Message errors
	ErrMessageNotFound = errors.New("message not found")
)

// ValidationError names the field that failed settlement validation.
// It unwraps to ErrInvalidSettlement so callers can use errors.Is
// without losing the field name.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid settlement: field %q: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidSettlement
}

// SynthesisError names the field that made a message body unbuildable.
type SynthesisError struct {
	Field  string
	Reason string
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("message synthesis failed: field %q: %s", e.Field, e.Reason)
}

func (e *SynthesisError) Unwrap() error {
	return ErrSynthesisFailure
}
