package application

import "errors"

var (
	// ErrNotFound is returned when the addressed attendee does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrUnknownEvent is returned when a per-event sign-in references an
	// event missing from the reference set.
	ErrUnknownEvent = errors.New("application: unknown event")
	// ErrAlreadyExists is returned when a create collides with a stored
	// unique value such as a badge code or identity token.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrInvalidCredentials is returned when staff authentication fails.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrSessionExpired is returned when a presented session token is past
	// its expiry.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSessionRevoked is returned when a presented session token was
	// revoked.
	ErrSessionRevoked = errors.New("application: session revoked")
)

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
