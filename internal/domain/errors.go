package domain

import "errors"

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrDraftNotFound   = errors.New("draft not found")

	// ErrNotRegistered means the action requires a complete profile.
	ErrNotRegistered = errors.New("profile is not registered or incomplete")

	// ErrExhausted means the search session has no more candidates. It is an
	// expected terminal condition, not a failure.
	ErrExhausted = errors.New("no more candidates")

	ErrCannotActSelf = errors.New("cannot act on own profile")
)

// ValidationError carries the re-prompt for invalid user input. It never
// escalates past the component that detects it.
type ValidationError struct {
	Prompt string
}

func (e *ValidationError) Error() string {
	return e.Prompt
}

// NewValidationError builds a ValidationError with the message the user
// should be re-asked with.
func NewValidationError(prompt string) *ValidationError {
	return &ValidationError{Prompt: prompt}
}
