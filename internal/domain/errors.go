package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Domain errors
var (
	// Not found errors
	ErrVisitorNotFound = errors.New("visitor not found")
	ErrAmenityNotFound = errors.New("amenity not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrAlertNotFound   = errors.New("alert not found")
	ErrUserNotFound    = errors.New("user not found")

	// Duplicate errors
	ErrVisitorExists = errors.New("visitor already exists")
	ErrAmenityExists = errors.New("amenity already exists")
	ErrBookingExists = errors.New("booking already exists")
	ErrAlertExists   = errors.New("alert already exists")
	ErrQRCodeIssued  = errors.New("qr code already issued")

	// State errors
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrVisitorBlacklisted     = errors.New("visitor is blacklisted")

	// Amenity errors
	ErrCapacityExceeded       = errors.New("capacity exceeded")
	ErrAmenityUnavailable     = errors.New("amenity unavailable")
	ErrUnsupportedAmenityMode = errors.New("operation not supported by amenity type")
	ErrBookingOverlap         = errors.New("booking overlaps an existing reservation")

	// Access errors
	ErrForbidden          = errors.New("operation not permitted")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Payment errors
	ErrPaymentNotRequired = errors.New("booking does not require payment")
	ErrPaymentFailed      = errors.New("payment failed")
)

// ValidationError carries field-level messages accumulated during input validation
type ValidationError struct {
	fields map[string][]string
	order  []string
}

// NewValidationError creates an empty validation error
func NewValidationError() *ValidationError {
	return &ValidationError{fields: make(map[string][]string)}
}

// Add records a message for a field
func (e *ValidationError) Add(field, message string) {
	if _, ok := e.fields[field]; !ok {
		e.order = append(e.order, field)
	}
	e.fields[field] = append(e.fields[field], message)
}

// HasErrors reports whether any message was recorded
func (e *ValidationError) HasErrors() bool {
	return len(e.order) > 0
}

// Fields returns a copy of the messages keyed by field
func (e *ValidationError) Fields() map[string][]string {
	out := make(map[string][]string, len(e.fields))
	for k, v := range e.fields {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Messages returns all messages in the order fields were first reported
func (e *ValidationError) Messages() []string {
	var msgs []string
	for _, f := range e.order {
		msgs = append(msgs, e.fields[f]...)
	}
	return msgs
}

// OrNil returns nil when nothing was recorded, so callers can return it directly
func (e *ValidationError) OrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.fields[k], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// TransitionError reports an action that is not legal from the record's current status
type TransitionError struct {
	Entity string
	From   string
	Action string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s %s in status %s", e.Action, e.Entity, e.From)
}

// Unwrap lets errors.Is match ErrInvalidStateTransition
func (e *TransitionError) Unwrap() error {
	return ErrInvalidStateTransition
}

func newTransitionError(entity, from, action string) error {
	return &TransitionError{Entity: entity, From: from, Action: action}
}

// AsValidationError extracts a ValidationError from the chain
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	_, ok := AsValidationError(err)
	return ok
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrVisitorNotFound) ||
		errors.Is(err, ErrAmenityNotFound) ||
		errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrAlertNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsAlreadyExistsError checks if the error is a duplicate id or qr code
func IsAlreadyExistsError(err error) bool {
	return errors.Is(err, ErrVisitorExists) ||
		errors.Is(err, ErrAmenityExists) ||
		errors.Is(err, ErrBookingExists) ||
		errors.Is(err, ErrAlertExists) ||
		errors.Is(err, ErrQRCodeIssued)
}

// IsConflictError checks if the error is a conflict with current state
func IsConflictError(err error) bool {
	return IsAlreadyExistsError(err) ||
		errors.Is(err, ErrInvalidStateTransition) ||
		errors.Is(err, ErrCapacityExceeded) ||
		errors.Is(err, ErrBookingOverlap) ||
		errors.Is(err, ErrVisitorBlacklisted) ||
		errors.Is(err, ErrPaymentNotRequired)
}

// IsUnprocessableError checks if the amenity cannot serve the request in its current mode or state
func IsUnprocessableError(err error) bool {
	return errors.Is(err, ErrAmenityUnavailable) ||
		errors.Is(err, ErrUnsupportedAmenityMode) ||
		errors.Is(err, ErrPaymentFailed)
}
