package apperrors

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ValidationError reports malformed or missing user input.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s (fields: %v)", e.Message, e.Fields)
	}
	return e.Message
}

func NewValidation(msg string, fields ...string) error {
	return &ValidationError{Message: msg, Fields: fields}
}

// NotFoundError reports a missing referenced entity.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func NewNotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// InactiveResourceError reports a referenced definition that is
// administratively disabled.
type InactiveResourceError struct {
	Resource string
	ID       string
}

func (e *InactiveResourceError) Error() string {
	return fmt.Sprintf("%s %s is not active", e.Resource, e.ID)
}

func NewInactive(resource, id string) error {
	return &InactiveResourceError{Resource: resource, ID: id}
}

// ForbiddenError reports that the actor lacks authorization for the
// specific action or step.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

func NewForbidden(msg string) error {
	return &ForbiddenError{Message: msg}
}

// InvalidStateError reports an operation that is not legal in the
// entity's current state, e.g. acting on a terminal submission.
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string { return e.Message }

func NewInvalidState(msg string) error {
	return &InvalidStateError{Message: msg}
}

// ConflictError reports a lost concurrent-update race. Callers should
// re-read and retry.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func NewConflict(msg string) error {
	return &ConflictError{Message: msg}
}

// DuplicateKeyError reports a uniqueness violation on names or keys.
type DuplicateKeyError struct {
	Resource string
	Key      string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Resource, e.Key)
}

func NewDuplicateKey(resource, key string) error {
	return &DuplicateKeyError{Resource: resource, Key: key}
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

func IsForbidden(err error) bool {
	var e *ForbiddenError
	return errors.As(err, &e)
}

// StatusFor maps a domain error to the HTTP status the controllers
// answer with. Unknown errors map to 500.
func StatusFor(err error) int {
	var (
		validation *ValidationError
		notFound   *NotFoundError
		inactive   *InactiveResourceError
		forbidden  *ForbiddenError
		state      *InvalidStateError
		conflict   *ConflictError
		duplicate  *DuplicateKeyError
	)
	switch {
	case errors.As(err, &validation):
		return fiber.StatusBadRequest
	case errors.As(err, &notFound):
		return fiber.StatusNotFound
	case errors.As(err, &inactive):
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &forbidden):
		return fiber.StatusForbidden
	case errors.As(err, &state):
		return fiber.StatusConflict
	case errors.As(err, &conflict):
		return fiber.StatusConflict
	case errors.As(err, &duplicate):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
