package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// Member errors
var (
	ErrMemberNotFound    = errors.New("member not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateIDNumber = errors.New("id number already registered")
	ErrMemberHasInvoices = errors.New("member has non-cancelled invoices")
	ErrStaffUserNotFound = errors.New("staff user not found")
	ErrStaffUserExists   = errors.New("staff user already exists")
)

// Catalog errors
var (
	ErrPlanNotFound    = errors.New("membership plan not found")
	ErrPlanInactive    = errors.New("membership plan is not active")
	ErrTierNotFound    = errors.New("pricing tier not found")
	ErrCatalogMismatch = errors.New("pricing tier does not belong to the selected plan")
)

// Billing errors
var (
	ErrMembershipNotFound     = errors.New("membership not found")
	ErrLiveMembershipExists   = errors.New("member already has a live membership")
	ErrMembershipNotActive    = errors.New("membership is not active")
	ErrMembershipNotPaused    = errors.New("membership is not paused")
	ErrMembershipTerminal     = errors.New("membership is in a terminal state")
	ErrInvoiceNotFound        = errors.New("invoice not found")
	ErrInvoiceCancelled       = errors.New("invoice is cancelled")
	ErrInvoiceAlreadyPaid     = errors.New("invoice is already paid")
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrPaymentSettled         = errors.New("payment already settled")
	ErrPaymentCancelled       = errors.New("payment is cancelled")
	ErrDuplicateInvoiceNumber = errors.New("invoice number already exists")
	ErrDuplicateBillingPeriod = errors.New("billing period already invoiced")
	ErrInvalidTransition      = errors.New("invalid membership state transition")
)

// ValidationError carries per-field validation messages. It is returned to
// callers as-is and never retried.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError creates an empty validation error
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

// Add appends a message for a field
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// Any reports whether any field has a message
func (e *ValidationError) Any() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msgs := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(msgs, "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// AsValidationError unwraps err into a *ValidationError if it is one
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
