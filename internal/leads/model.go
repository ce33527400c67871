package leads

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Lead represents a stored contact-form submission. Leads are immutable once
// created; there is no update or delete.
type Lead struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Message   string `json:"message"`
	CreatedAt int64  `json:"createdAt"` // epoch milliseconds, set at acceptance
}

// SubmitLeadRequest carries the raw form payload. Fields decode as
// json.RawMessage so a number, null, or absent value where a string belongs
// fails presence validation instead of surfacing as a decoder error.
type SubmitLeadRequest struct {
	Name    json.RawMessage `json:"name"`
	Email   json.RawMessage `json:"email"`
	Message json.RawMessage `json:"message"`
}

// Minimal syntactic sanity check, not RFC validation: something without '@'
// or '.' in it, an '@', a domain with at least one dot.
var emailPattern = regexp.MustCompile(`[^@.]+@.+\..+`)

// Validate checks field presence/type and email shape, returning the trimmed
// values on success. No partial results are returned on failure.
func (r *SubmitLeadRequest) Validate() (name, email, message string, err error) {
	name, ok := asString(r.Name)
	if !ok {
		return "", "", "", ErrFieldsRequired
	}
	email, ok = asString(r.Email)
	if !ok {
		return "", "", "", ErrFieldsRequired
	}
	message, ok = asString(r.Message)
	if !ok {
		return "", "", "", ErrFieldsRequired
	}
	if !emailPattern.MatchString(email) {
		return "", "", "", ErrInvalidEmail
	}
	return name, email, message, nil
}

// asString unmarshals a raw JSON value as a string that is non-empty after
// trimming, so a whitespace-only value fails presence validation instead of
// storing an empty field.
func asString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// NewLead builds a fully-populated Lead from validated, trimmed input,
// assigning a fresh identity and the acceptance timestamp.
func NewLead(name, email, message string) *Lead {
	return &Lead{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Message:   message,
		CreatedAt: time.Now().UnixMilli(),
	}
}
