package handlers

import (
	"errors"
	"log"

	"gympulse/internal/core/domain"
	"gympulse/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// notFoundErrors map to 404
var notFoundErrors = []error{
	domain.ErrNotFound,
	domain.ErrMemberNotFound,
	domain.ErrStaffUserNotFound,
	domain.ErrPlanNotFound,
	domain.ErrTierNotFound,
	domain.ErrMembershipNotFound,
	domain.ErrInvoiceNotFound,
	domain.ErrPaymentNotFound,
}

// conflictErrors map to 409
var conflictErrors = []error{
	domain.ErrDuplicateEntry,
	domain.ErrDuplicateEmail,
	domain.ErrDuplicateIDNumber,
	domain.ErrStaffUserExists,
	domain.ErrMemberHasInvoices,
	domain.ErrPlanInactive,
	domain.ErrCatalogMismatch,
	domain.ErrLiveMembershipExists,
	domain.ErrMembershipNotActive,
	domain.ErrMembershipNotPaused,
	domain.ErrMembershipTerminal,
	domain.ErrInvoiceCancelled,
	domain.ErrInvoiceAlreadyPaid,
	domain.ErrPaymentSettled,
	domain.ErrPaymentCancelled,
	domain.ErrDuplicateInvoiceNumber,
	domain.ErrDuplicateBillingPeriod,
	domain.ErrInvalidTransition,
}

// handleDomainError translates a service error into the matching HTTP
// response. Anything unrecognized is a 500 and gets logged.
func handleDomainError(c *fiber.Ctx, err error) error {
	if ve, ok := domain.AsValidationError(err); ok {
		return response.ValidationFailed(c, ve.Fields)
	}

	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return response.NotFound(c, err.Error())
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return response.Conflict(c, err.Error())
		}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return response.Unauthorized(c, "Invalid username or password")
	case errors.Is(err, domain.ErrUnauthorized):
		return response.Unauthorized(c, "Unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, "Forbidden")
	case errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, err.Error())
	}

	log.Printf("❌ Unhandled error: %v", err)
	return response.InternalServerError(c, "Something went wrong")
}
