package validator

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format for calendar dates in requests.
const DateLayout = "2006-01-02"

type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors collects field errors. The zero value is ready to use.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

// ToMap keeps the first message per field.
func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string, len(v))
	for _, err := range v {
		if _, seen := result[err.Field]; !seen {
			result[err.Field] = err.Message
		}
	}
	return result
}

func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// Check records message against field unless ok holds.
func (v *ValidationErrors) Check(ok bool, field, message string) {
	if !ok {
		v.Add(field, message)
	}
}

// Err returns nil when nothing was collected.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// Single builds a one-field error.
func Single(field, message string) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message}}
}

func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsValidUUID accepts the canonical form of the version 7 ids this service
// issues for periods, records and holidays.
func IsValidUUID(s string) bool {
	id, ok := parseCanonical(s)
	return ok && id.Version() == 7
}

// IsValidExternalID accepts any canonical UUID. Employee ids are owned by
// the HR module and may be of any version.
func IsValidExternalID(s string) bool {
	_, ok := parseCanonical(s)
	return ok
}

func parseCanonical(s string) (uuid.UUID, bool) {
	// uuid.Parse also takes braced and urn: forms
	if len(s) != 36 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	return id, err == nil
}

// ParseDate parses a YYYY-MM-DD date as a UTC calendar day.
func ParseDate(s string) (time.Time, bool) {
	date, err := time.Parse(DateLayout, s)
	return date, err == nil
}

func OneOf[T comparable](value T, allowed ...T) bool {
	return slices.Contains(allowed, value)
}
