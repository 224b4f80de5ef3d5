package mockups

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both "no such record" and "record exists but the
	// requester holds no permission". The two are never distinguished, so
	// the existence of private mockups is not revealed.
	ErrNotFound = errors.New("mockup not found")

	// ErrPermissionDenied is returned when a requester can see a mockup
	// but attempts an operation above their tier (a viewer updating, for
	// example). Existence is already known to them, so 403 leaks nothing.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrVersionConflict signals a version-number collision between
	// concurrent snapshots. The caller should retry.
	ErrVersionConflict = errors.New("version number conflict")
)

// ValidationError reports malformed input with the specific violated
// constraints, keyed by field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	for field, msg := range e.Fields {
		return fmt.Sprintf("validation failed: %s: %s", field, msg)
	}
	return "validation failed"
}

func validationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// AsValidation unwraps a ValidationError if err is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
