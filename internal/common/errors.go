// Package common defines shared constants, sentinel errors and the typed errors
// returned by the user directory core. Callers should use errors.Is / errors.As
// to match these values.
package common

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrorInvalid is matched by both ValidationError and IntegrityViolationError.
	ErrorInvalid = errors.New("invalid input")

	// ErrorMissingContext is matched by MissingContextError.
	ErrorMissingContext = errors.New("missing finder context")

	// ErrorConfiguration is matched by ConfigurationError.
	ErrorConfiguration = errors.New("configuration error")
)

// Violation is a single field-level failure.
type Violation struct {
	// Field is the payload key the violation refers to.
	Field string
	// Rule names the failed rule (e.g. "email", "uniqueUsername").
	Rule string
	// Message is a human-readable message key.
	Message string
}

func (v Violation) String() string {
	return v.Field + "." + v.Rule + ": " + v.Message
}

func joinViolations(vs []Violation) string {
	parts := make([]string, 0, len(vs))
	for _, v := range vs {
		parts = append(parts, v.String())
	}
	return strings.Join(parts, "; ")
}

// MissingContextError reports a finder invoked without a required option.
// It signals a programming error in the caller, not bad user input.
type MissingContextError struct {
	Finder string
	Option string
}

func (e *MissingContextError) Error() string {
	return fmt.Sprintf("users finder %s requires the %q option", e.Finder, e.Option)
}

func (e *MissingContextError) Is(target error) bool { return target == ErrorMissingContext }

// ValidationError carries every field violation found for a validation context.
type ValidationError struct {
	Context    string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Context, joinViolations(e.Violations))
}

func (e *ValidationError) Is(target error) bool { return target == ErrorInvalid }

// Fields returns the distinct field names that failed, in order of first appearance.
func (e *ValidationError) Fields() []string {
	return fieldsOf(e.Violations)
}

// IntegrityViolationError carries every build rule that failed against the store.
type IntegrityViolationError struct {
	Violations []Violation
}

func (e *IntegrityViolationError) Error() string {
	return "integrity check failed: " + joinViolations(e.Violations)
}

func (e *IntegrityViolationError) Is(target error) bool { return target == ErrorInvalid }

// Rules returns the names of the failed rules.
func (e *IntegrityViolationError) Rules() []string {
	rules := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		rules = append(rules, v.Rule)
	}
	return rules
}

// ConfigurationError reports a broken deployment invariant, such as a missing
// default role. It must not be retried.
type ConfigurationError struct {
	Reason string
	Cause  error
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Cause)
	}
	return "configuration error: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Cause }

func (e *ConfigurationError) Is(target error) bool { return target == ErrorConfiguration }

func fieldsOf(vs []Violation) []string {
	seen := make(map[string]struct{}, len(vs))
	var out []string
	for _, v := range vs {
		if _, ok := seen[v.Field]; ok {
			continue
		}
		seen[v.Field] = struct{}{}
		out = append(out, v.Field)
	}
	return out
}
