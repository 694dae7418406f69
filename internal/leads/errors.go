package leads

import (
	"errors"
	"fmt"
)

var (
	// ErrLeadNotFound is returned when no lead matches a lookup
	ErrLeadNotFound = errors.New("lead not found")

	// ErrSchemaViolation is returned when a lead fails the persistence-level schema
	ErrSchemaViolation = errors.New("lead validation failed")
)

// FailureKind classifies a rejected cart submission.
type FailureKind string

const (
	MissingFields   FailureKind = "MissingFields"
	InvalidFormat   FailureKind = "InvalidFormat"
	InvalidFlavor   FailureKind = "InvalidFlavor"
	InvalidQuantity FailureKind = "InvalidQuantity"
)

// ValidationError rejects a cart submission before any store access.
// Details maps each failing field to a human readable reason.
type ValidationError struct {
	Kind    FailureKind
	Message string
	Details map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("leads: %s (%s)", e.Message, e.Kind)
}

const duplicateCartMessage = "You have already added this specific product and flavor combination to your cart."

// ConflictError is returned when a cart lead for the same email, format and
// flavour already exists.
type ConflictError struct {
	Key     CartKey
	Message string
	Details string
}

func newConflictError(key CartKey) *ConflictError {
	return &ConflictError{
		Key:     key,
		Message: duplicateCartMessage,
		Details: "Duplicate entry",
	}
}

func (e *ConflictError) Error() string {
	return "leads: duplicate cart entry for " + e.Key.Email
}

// PersistenceError wraps a failure reported by the lead store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
