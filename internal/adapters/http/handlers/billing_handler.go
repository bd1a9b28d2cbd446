package handlers

import (
	"time"

	"gympulse/internal/adapters/persistence/models"
	"gympulse/internal/adapters/persistence/repositories"
	"gympulse/internal/core/domain"
	"gympulse/internal/core/services"
	"gympulse/internal/pkg/pagination"
	"gympulse/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BillingHandler handles invoice and payment endpoints
type BillingHandler struct {
	paymentService *services.PaymentService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(paymentService *services.PaymentService) *BillingHandler {
	return &BillingHandler{paymentService: paymentService}
}

// ListInvoices lists invoices
// @Summary List invoices
// @Description List invoices; filter by status, member, membership and issue date range
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param status query string false "Invoice status"
// @Param member_id query string false "Member ID"
// @Param membership_id query string false "Membership ID"
// @Param from query string false "Issued from (YYYY-MM-DD)"
// @Param to query string false "Issued to (YYYY-MM-DD)"
// @Success 200 {object} pagination.Response
// @Router /invoices [get]
func (h *BillingHandler) ListInvoices(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	var filter repositories.InvoiceFilter
	if raw := c.Query("status"); raw != "" {
		s := domain.InvoiceStatus(raw)
		filter.Status = &s
	}
	if raw := c.Query("member_id"); raw != "" {
		filter.MemberID = &raw
	}
	if raw := c.Query("membership_id"); raw != "" {
		filter.MembershipID = &raw
	}
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			return response.BadRequest(c, "from must be YYYY-MM-DD")
		}
		filter.IssuedFrom = &parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			return response.BadRequest(c, "to must be YYYY-MM-DD")
		}
		filter.IssuedTo = &parsed
	}

	invoices, total, err := h.paymentService.ListInvoices(c.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		return handleDomainError(c, err)
	}

	data := make([]*models.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		data = append(data, inv.ToResponse())
	}
	return c.JSON(pagination.NewResponse(data, params, total))
}

// GetInvoice gets an invoice with its payments
// @Summary Get invoice
// @Description Get an invoice by ID with its payments
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /invoices/{id} [get]
func (h *BillingHandler) GetInvoice(c *fiber.Ctx) error {
	invoice, err := h.paymentService.GetInvoice(c.Context(), c.Params("id"))
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "", invoice.ToResponse())
}

// CancelInvoiceRequest represents cancel invoice request
type CancelInvoiceRequest struct {
	Reason string `json:"reason,omitempty"`
}

// CancelInvoice voids an invoice
// @Summary Cancel invoice
// @Description Void an invoice and its pending payments; invoices with settled money cannot be cancelled
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Param body body CancelInvoiceRequest false "Cancellation reason"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /invoices/{id}/cancel [post]
func (h *BillingHandler) CancelInvoice(c *fiber.Ctx) error {
	var req CancelInvoiceRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return response.BadRequest(c, "Invalid request body")
	}

	invoice, alreadyCancelled, err := h.paymentService.CancelInvoice(c.Context(), c.Params("id"), req.Reason)
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Invoice cancelled", fiber.Map{
		"invoice":         invoice.ToResponse(),
		"already_applied": alreadyCancelled,
	})
}

// ListPayments lists payments
// @Summary List payments
// @Description List payments; filter by status, member, membership and invoice
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param status query string false "Payment status"
// @Param member_id query string false "Member ID"
// @Param membership_id query string false "Membership ID"
// @Param invoice_id query string false "Invoice ID"
// @Success 200 {object} pagination.Response
// @Router /payments [get]
func (h *BillingHandler) ListPayments(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	var filter repositories.PaymentFilter
	if raw := c.Query("status"); raw != "" {
		s := domain.PaymentStatus(raw)
		filter.Status = &s
	}
	if raw := c.Query("member_id"); raw != "" {
		filter.MemberID = &raw
	}
	if raw := c.Query("membership_id"); raw != "" {
		filter.MembershipID = &raw
	}
	if raw := c.Query("invoice_id"); raw != "" {
		filter.InvoiceID = &raw
	}

	payments, total, err := h.paymentService.ListPayments(c.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		return handleDomainError(c, err)
	}

	data := make([]*models.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		data = append(data, p.ToResponse())
	}
	return c.JSON(pagination.NewResponse(data, params, total))
}

// GetPayment gets a payment by ID
// @Summary Get payment
// @Description Get a payment by ID
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /payments/{id} [get]
func (h *BillingHandler) GetPayment(c *fiber.Ctx) error {
	payment, err := h.paymentService.GetPayment(c.Context(), c.Params("id"))
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "", payment.ToResponse())
}

// RecordOutcome records an externally reported payment result
// @Summary Record payment outcome
// @Description Apply a PAID, FAILED or CANCELLED outcome to a payment. Repeating an outcome is a no-op.
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Param body body services.RecordOutcomeInput true "Outcome data"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /payments/{id}/outcome [post]
func (h *BillingHandler) RecordOutcome(c *fiber.Ctx) error {
	var req services.RecordOutcomeInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	payment, alreadyApplied, err := h.paymentService.RecordOutcome(c.Context(), c.Params("id"), &req)
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Payment outcome recorded", fiber.Map{
		"payment":         payment.ToResponse(),
		"already_applied": alreadyApplied,
	})
}

// RecordInvoiceOutcome records a payment result keyed by invoice
// @Summary Record payment outcome for an invoice
// @Description Apply a PAID, FAILED or CANCELLED outcome to the invoice's payment. Repeating an outcome is a no-op.
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Param body body services.RecordOutcomeInput true "Outcome data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /invoices/{id}/outcome [post]
func (h *BillingHandler) RecordInvoiceOutcome(c *fiber.Ctx) error {
	var req services.RecordOutcomeInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	payment, alreadyApplied, err := h.paymentService.RecordOutcomeForInvoice(c.Context(), c.Params("id"), &req)
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Payment outcome recorded", fiber.Map{
		"payment":         payment.ToResponse(),
		"already_applied": alreadyApplied,
	})
}
