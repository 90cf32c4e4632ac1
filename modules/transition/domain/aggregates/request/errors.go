package request

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when no request exists for the given ID
	// within the current tenant.
	ErrNotFound = errors.New("transition request not found")

	// ErrConcurrentModification is returned when a status update lost the
	// race against another writer.
	ErrConcurrentModification = errors.New("transition request was modified concurrently")
)

// InvalidTransitionError reports an illegal status move, either because the
// edge does not exist or because the actor type is not allowed to take it.
type InvalidTransitionError struct {
	From  Status
	To    Status
	Actor ActorType
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transition %s -> %s is not allowed for actor type %s", e.From, e.To, e.Actor)
}

// ValidationError reports a submission payload that fails the category
// policy. The request is never persisted when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid submission: %s: %s", e.Field, e.Message)
}
