package review

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("review not found")
	ErrDuplicate = errors.New("review already exists for this book")
	ErrForbidden = errors.New("caller may not modify this review")
)

// ValidationError reports input the caller can fix and resubmit.
type ValidationError struct {
	Field   string
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, rule, message string) *ValidationError {
	return &ValidationError{Field: field, Rule: rule, Message: message}
}
