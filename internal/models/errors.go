package models

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError carries field-level validation messages
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates an empty validation error
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a message for a field
func (v *ValidationError) Add(field, message string) {
	v.Fields[field] = message
}

// HasErrors reports whether any field failed validation
func (v *ValidationError) HasErrors() bool {
	return len(v.Fields) > 0
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	fields := make([]string, 0, len(v.Fields))
	for f := range v.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, v.Fields[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
