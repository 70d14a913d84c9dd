package shared

import "errors"

// Error kinds shared by every workflow operation. Services wrap these
// with fmt.Errorf("%w: detail") so callers can branch with errors.Is.
var (
	// ErrUnauthorized indicates a missing, inactive, or under-privileged acting account.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound indicates a referenced record does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates malformed or missing required input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidTransition indicates a state change outside the legal-transition table.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrInvalidState indicates an entity is not in the state an operation requires.
	ErrInvalidState = errors.New("invalid state")
	// ErrConflict indicates the input collides with existing data.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
