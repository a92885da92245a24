// Package validation enforces the field rules of the CV model and inspects
// exported PDF documents.
package validation

import (
	"fmt"
	"strings"
)

// Error represents a general validation error
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// FileReadError represents an error reading a file
type FileReadError struct {
	Message string
	Cause   error
}

func (e *FileReadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("file read error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("file read error: %s", e.Message)
}

func (e *FileReadError) Unwrap() error {
	return e.Cause
}

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// Errors is returned when a slice of the CV violates its rules. Field paths use
// the JSON names relative to the CV root, e.g. "experiences[1].company".
type Errors struct {
	Errors []FieldError `json:"errors"`
}

func (e *Errors) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the rejected field paths in report order.
func (e *Errors) Fields() []string {
	out := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		out[i] = fe.Field
	}
	return out
}

// Has reports whether the given field path was rejected.
func (e *Errors) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// MessageFor returns the message attached to field, or "".
func (e *Errors) MessageFor(field string) string {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

func (e *Errors) add(field, tag, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Tag: tag, Message: message})
}

func (e *Errors) merge(other *Errors) {
	if other != nil {
		e.Errors = append(e.Errors, other.Errors...)
	}
}

// orNil returns nil when no field was rejected so callers can return it as error.
func (e *Errors) orNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}
