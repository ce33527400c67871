package leads

import "errors"

// Validation errors carry the exact messages the site surfaces verbatim, so
// their text is part of the API contract.
var (
	// ErrFieldsRequired is returned when name, email, or message is missing
	// or not a string
	ErrFieldsRequired = errors.New("Name, email, and message are required.")

	// ErrInvalidEmail is returned when the email fails the format check
	ErrInvalidEmail = errors.New("Invalid email format.")

	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")
)

// IsValidationError reports whether err is a client-caused rejection rather
// than a storage fault.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrFieldsRequired) || errors.Is(err, ErrInvalidEmail)
}
