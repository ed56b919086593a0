// Package errors provides the error kinds reported by the exam compiler.
//
// Every compile failure is one of StructuralError, SyntaxError,
// DirectiveError, ValidationError or ConfigError. Each unwraps to a
// sentinel so callers can classify failures with errors.Is.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for each error kind
var (
	// ErrStructural indicates a tag, nesting or section-count violation
	ErrStructural = errors.New("structural error")
	// ErrSyntax indicates malformed per-line syntax
	ErrSyntax = errors.New("syntax error")
	// ErrDirective indicates a malformed directive or missing directive arguments
	ErrDirective = errors.New("directive error")
	// ErrValidation indicates empty or invalid module content
	ErrValidation = errors.New("validation error")
	// ErrConfig indicates an unknown option or an option value of the wrong type
	ErrConfig = errors.New("config error")
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrIO indicates a failed file or network operation
	ErrIO = errors.New("i/o error")
)

// position formats a 1-based source line; zero means unknown.
func position(line int) string {
	if line > 0 {
		return fmt.Sprintf(" at line %d", line)
	}
	return ""
}

// StructuralError reports a violation of the section/module tree.
type StructuralError struct {
	Line    int    // Source line, 0 if unknown
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error%s: %s", position(e.Line), e.Message)
}

func (e *StructuralError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrStructural
}

// SyntaxError reports a malformed content line.
type SyntaxError struct {
	Line    int    // Source line, 0 if unknown
	Text    string // Offending text
	Message string
	Err     error
}

func (e *SyntaxError) Error() string {
	if e.Text != "" {
		return fmt.Sprintf("syntax error%s: %s: %q", position(e.Line), e.Message, e.Text)
	}
	return fmt.Sprintf("syntax error%s: %s", position(e.Line), e.Message)
}

func (e *SyntaxError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrSyntax
}

// DirectiveError reports a directive that cannot be interpreted.
type DirectiveError struct {
	Line      int
	Directive string // Directive name without the leading '!'
	Message   string
	Err       error
}

func (e *DirectiveError) Error() string {
	if e.Directive != "" {
		return fmt.Sprintf("directive error%s: !%s: %s", position(e.Line), e.Directive, e.Message)
	}
	return fmt.Sprintf("directive error%s: %s", position(e.Line), e.Message)
}

func (e *DirectiveError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrDirective
}

// ValidationError reports module content that is empty or not allowed.
type ValidationError struct {
	Line      int
	Construct string // Module or section kind involved
	Message   string
	Err       error
}

func (e *ValidationError) Error() string {
	if e.Construct != "" {
		return fmt.Sprintf("validation error%s: [%s]: %s", position(e.Line), e.Construct, e.Message)
	}
	return fmt.Sprintf("validation error%s: %s", position(e.Line), e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrValidation
}

// ConfigError reports an option that is unknown or has the wrong type.
type ConfigError struct {
	Key     string // Option key
	Value   string // Offending value
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	switch {
	case e.Key != "" && e.Value != "":
		return fmt.Sprintf("config error: %s=%q: %s", e.Key, e.Value, e.Message)
	case e.Key != "":
		return fmt.Sprintf("config error: %s: %s", e.Key, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrConfig
}

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "snippet", "build")
	ID       string
	Err      error
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // e.g. "read", "write", "open"
	Path      string
	Err       error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrIO}
	}
	return []error{ErrIO, e.Err}
}

// NewStructural creates a StructuralError
func NewStructural(line int, message string) *StructuralError {
	return &StructuralError{Line: line, Message: message}
}

// NewSyntax creates a SyntaxError
func NewSyntax(line int, message, text string) *SyntaxError {
	return &SyntaxError{Line: line, Message: message, Text: text}
}

// NewDirective creates a DirectiveError
func NewDirective(line int, directive, message string) *DirectiveError {
	return &DirectiveError{Line: line, Directive: directive, Message: message}
}

// NewValidation creates a ValidationError
func NewValidation(line int, construct, message string) *ValidationError {
	return &ValidationError{Line: line, Construct: construct, Message: message}
}

// NewConfig creates a ConfigError
func NewConfig(key, value, message string) *ConfigError {
	return &ConfigError{Key: key, Value: value, Message: message}
}

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Kind names the error kind of err, or "" if it is not a compile error.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrStructural):
		return "StructuralError"
	case errors.Is(err, ErrSyntax):
		return "SyntaxError"
	case errors.Is(err, ErrDirective):
		return "DirectiveError"
	case errors.Is(err, ErrValidation):
		return "ValidationError"
	case errors.Is(err, ErrConfig):
		return "ConfigError"
	}
	return ""
}
