// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrOnboardingNotFound indicates an onboarding case was not found by the given identifier.
	ErrOnboardingNotFound = errors.New("onboarding not found")

	// ErrActionNotFound indicates an action definition was not found by the given identifier.
	ErrActionNotFound = errors.New("action definition not found")

	// ErrExecutionNotFound indicates an action execution record was not found.
	ErrExecutionNotFound = errors.New("action execution not found")

	// ErrActionAlreadyExists indicates an action definition with the same identifier already exists.
	ErrActionAlreadyExists = errors.New("action definition already exists")
)

// IsOnboardingNotFound checks if an error indicates a missing onboarding case.
func IsOnboardingNotFound(err error) bool {
	return errors.Is(err, ErrOnboardingNotFound)
}

// IsActionNotFound checks if an error indicates a missing action definition.
func IsActionNotFound(err error) bool {
	return errors.Is(err, ErrActionNotFound)
}

// IsExecutionNotFound checks if an error indicates a missing execution record.
func IsExecutionNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound)
}

// OnboardingError wraps onboarding-related errors with additional context.
type OnboardingError struct {
	Op           string // Operation being performed (e.g., "GetByID", "Save")
	OnboardingID int64
	Err          error
}

func (e *OnboardingError) Error() string {
	return fmt.Sprintf("%s operation failed for onboarding %d: %v", e.Op, e.OnboardingID, e.Err)
}

func (e *OnboardingError) Unwrap() error {
	return e.Err
}

// ActionError wraps action-related errors with additional context.
type ActionError struct {
	Op       string
	ActionID int64
	Err      error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s operation failed for action %d: %v", e.Op, e.ActionID, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}
