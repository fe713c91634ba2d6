// Package domain holds the error taxonomy and date helpers shared by all
// bounded contexts. Aggregates raise these; the RPC boundary maps them to
// response codes.
package domain

import "fmt"

// NotFoundError reports that a referenced entity id does not resolve.
// It always carries the entity kind and the id that was looked up.
type NotFoundError struct {
	Kind string
	ID   string
}

func NewNotFound(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %s not found", e.Kind, e.ID)
}

// RuleViolation is implemented by every business-rule error: state-invariant
// violations, eligibility failures, uniqueness conflicts and overdue guards.
// RuleCode returns a stable identifier used as the error code on the wire.
type RuleViolation interface {
	error
	RuleCode() string
}

// StateError reports a transition attempted from a state that forbids it.
type StateError struct {
	Code    string
	Message string
}

func NewStateError(code, format string, args ...any) *StateError {
	return &StateError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *StateError) Error() string    { return e.Message }
func (e *StateError) RuleCode() string { return e.Code }

// ConflictError reports a uniqueness violation (duplicate email, name, ...).
type ConflictError struct {
	Code    string
	Message string
}

func NewConflict(code, format string, args ...any) *ConflictError {
	return &ConflictError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *ConflictError) Error() string    { return e.Message }
func (e *ConflictError) RuleCode() string { return e.Code }

// EligibilityError reports a guard-service-computed ineligibility. It is
// distinct from StateError because it depends on a query over sibling
// aggregates, not only on the entity's own fields.
type EligibilityError struct {
	Code    string
	Message string
}

func NewEligibility(code, format string, args ...any) *EligibilityError {
	return &EligibilityError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *EligibilityError) Error() string    { return e.Message }
func (e *EligibilityError) RuleCode() string { return e.Code }
