package services

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"gympulse/internal/adapters/persistence/models"
	"gympulse/internal/adapters/persistence/repositories"
	"gympulse/internal/core/domain"
)

// PaymentService records payment outcomes reported by the front desk or the
// payment provider and keeps invoice and membership state in sync with them.
type PaymentService struct {
	txm       *repositories.TxManager
	lifecycle *LifecycleService
	clock     domain.Clock
}

// NewPaymentService creates a new payment service
func NewPaymentService(txm *repositories.TxManager, lifecycle *LifecycleService, clock domain.Clock) *PaymentService {
	return &PaymentService{
		txm:       txm,
		lifecycle: lifecycle,
		clock:     clock,
	}
}

// RecordOutcomeInput represents record payment outcome input
type RecordOutcomeInput struct {
	Outcome       string  `json:"outcome" validate:"required"`
	PaymentMethod *string `json:"payment_method,omitempty"`
	TransactionID *string `json:"transaction_id,omitempty"`
}

// RecordOutcome applies an externally reported payment result. Re-reporting
// the outcome a payment already has is a no-op signalled through the
// alreadyApplied flag; conflicting reports are rejected.
func (s *PaymentService) RecordOutcome(ctx context.Context, paymentID string, input *RecordOutcomeInput) (*models.Payment, bool, error) {
	outcome := domain.PaymentOutcome(input.Outcome)
	if !outcome.Valid() {
		ve := domain.NewValidationError()
		ve.Add("outcome", "outcome must be PAID, FAILED or CANCELLED")
		return nil, false, ve
	}

	alreadyApplied := false
	err := s.txm.WithTransaction(ctx, func(tx *gorm.DB) error {
		billingRepo := repositories.NewBillingRepository(tx)

		payment, err := billingRepo.GetPaymentByIDForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}

		var invoice *models.Invoice
		if payment.InvoiceID != nil {
			invoice, err = billingRepo.GetInvoiceByIDForUpdate(ctx, *payment.InvoiceID)
			if err != nil {
				return err
			}
			if invoice.Status == domain.InvoiceCancelled && outcome != domain.OutcomeCancelled {
				return domain.ErrInvoiceCancelled
			}
		}

		switch outcome {
		case domain.OutcomePaid:
			if payment.Status == domain.PaymentPaid {
				alreadyApplied = true
				return nil
			}
			if payment.Status == domain.PaymentCancelled {
				return domain.ErrPaymentCancelled
			}
			return s.applyPaid(ctx, tx, billingRepo, payment, invoice, input)

		case domain.OutcomeFailed:
			if payment.Status == domain.PaymentFailed {
				alreadyApplied = true
				return nil
			}
			if payment.Status == domain.PaymentPaid {
				return domain.ErrPaymentSettled
			}
			if payment.Status == domain.PaymentCancelled {
				return domain.ErrPaymentCancelled
			}
			payment.Status = domain.PaymentFailed
			payment.PaymentMethod = input.PaymentMethod
			payment.TransactionID = input.TransactionID
			return billingRepo.UpdatePayment(ctx, payment)

		default: // CANCELLED
			if payment.Status == domain.PaymentCancelled {
				alreadyApplied = true
				return nil
			}
			if payment.Status == domain.PaymentPaid {
				return domain.ErrPaymentSettled
			}
			payment.Status = domain.PaymentCancelled
			if err := billingRepo.UpdatePayment(ctx, payment); err != nil {
				return err
			}
			if invoice != nil && invoice.Status != domain.InvoiceCancelled && paidTotal(invoice).IsZero() {
				invoice.Status = domain.InvoiceCancelled
				invoice.Notes = "Cancelled: payment cancelled"
				return billingRepo.UpdateInvoice(ctx, invoice)
			}
			return nil
		}
	})
	if err != nil {
		return nil, false, err
	}

	payment, err := repositories.NewBillingRepository(s.txm.DB()).GetPaymentByID(ctx, paymentID)
	return payment, alreadyApplied, err
}

// RecordOutcomeForInvoice resolves the invoice's payment and records the
// outcome against it. Billing providers report per invoice, so this is the
// surface the outcome webhook and the front desk both use.
func (s *PaymentService) RecordOutcomeForInvoice(ctx context.Context, invoiceID string, input *RecordOutcomeInput) (*models.Payment, bool, error) {
	invoice, err := repositories.NewBillingRepository(s.txm.DB()).GetInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, false, err
	}
	if len(invoice.Payments) == 0 {
		return nil, false, domain.ErrPaymentNotFound
	}
	return s.RecordOutcome(ctx, invoice.Payments[0].ID, input)
}

// applyPaid settles a payment and cascades the result to its invoice and,
// when the payment clears the way, to the membership lifecycle.
func (s *PaymentService) applyPaid(ctx context.Context, tx *gorm.DB, billingRepo *repositories.BillingRepository, payment *models.Payment, invoice *models.Invoice, input *RecordOutcomeInput) error {
	now := s.clock.Now()
	payment.Status = domain.PaymentPaid
	payment.PaidDate = &now
	payment.PaymentMethod = input.PaymentMethod
	payment.TransactionID = input.TransactionID
	if err := billingRepo.UpdatePayment(ctx, payment); err != nil {
		return err
	}

	if invoice != nil {
		paid := paidTotal(invoice).Add(payment.Amount)
		switch {
		case paid.GreaterThanOrEqual(invoice.Total):
			invoice.Status = domain.InvoicePaid
			invoice.PaidDate = &now
		case invoice.Status == domain.InvoiceIssued:
			invoice.Status = domain.InvoicePartiallyPaid
		}
		// A partially covered OVERDUE invoice stays OVERDUE
		if err := billingRepo.UpdateInvoice(ctx, invoice); err != nil {
			return err
		}
	}

	membershipRepo := repositories.NewMembershipRepository(tx)
	membership, err := membershipRepo.GetByIDForUpdate(ctx, payment.MembershipID)
	if err != nil {
		return err
	}

	switch membership.Status {
	case domain.MembershipPending:
		pending, err := billingRepo.CountPendingPayments(ctx, membership.ID)
		if err != nil {
			return err
		}
		if pending == 0 {
			return s.lifecycle.Apply(ctx, tx, membership, domain.MembershipActive)
		}
	case domain.MembershipFrozen:
		overdue, err := billingRepo.CountOverdueInvoices(ctx, membership.ID)
		if err != nil {
			return err
		}
		if overdue == 0 {
			return s.lifecycle.Apply(ctx, tx, membership, domain.MembershipActive)
		}
	}

	return nil
}

// paidTotal sums the already settled payments loaded on an invoice
func paidTotal(invoice *models.Invoice) decimal.Decimal {
	total := decimal.Zero
	for i := range invoice.Payments {
		if invoice.Payments[i].Status == domain.PaymentPaid {
			total = total.Add(invoice.Payments[i].Amount)
		}
	}
	return total
}

// CancelInvoice voids a single invoice and its pending payments. Invoices
// with settled money on them cannot be cancelled.
func (s *PaymentService) CancelInvoice(ctx context.Context, invoiceID, reason string) (*models.Invoice, bool, error) {
	alreadyCancelled := false
	err := s.txm.WithTransaction(ctx, func(tx *gorm.DB) error {
		billingRepo := repositories.NewBillingRepository(tx)

		invoice, err := billingRepo.GetInvoiceByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}

		if invoice.Status == domain.InvoiceCancelled {
			alreadyCancelled = true
			return nil
		}
		if invoice.Status == domain.InvoicePaid || !paidTotal(invoice).IsZero() {
			return domain.ErrInvoiceAlreadyPaid
		}

		invoice.Status = domain.InvoiceCancelled
		if reason != "" {
			invoice.Notes = reason
		}
		if err := billingRepo.UpdateInvoice(ctx, invoice); err != nil {
			return err
		}

		return tx.WithContext(ctx).
			Model(&models.Payment{}).
			Where("invoice_id = ? AND status IN ?", invoice.ID,
				[]domain.PaymentStatus{domain.PaymentPending, domain.PaymentFailed}).
			Update("status", domain.PaymentCancelled).Error
	})
	if err != nil {
		return nil, false, err
	}

	invoice, err := repositories.NewBillingRepository(s.txm.DB()).GetInvoiceByID(ctx, invoiceID)
	return invoice, alreadyCancelled, err
}

// GetInvoice gets an invoice with its payments
func (s *PaymentService) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	return repositories.NewBillingRepository(s.txm.DB()).GetInvoiceByID(ctx, id)
}

// ListInvoices lists invoices with filters
func (s *PaymentService) ListInvoices(ctx context.Context, filter repositories.InvoiceFilter, offset, limit int) ([]*models.Invoice, int64, error) {
	return repositories.NewBillingRepository(s.txm.DB()).ListInvoices(ctx, filter, offset, limit)
}

// GetPayment gets a payment by ID
func (s *PaymentService) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	return repositories.NewBillingRepository(s.txm.DB()).GetPaymentByID(ctx, id)
}

// ListPayments lists payments with filters
func (s *PaymentService) ListPayments(ctx context.Context, filter repositories.PaymentFilter, offset, limit int) ([]*models.Payment, int64, error) {
	return repositories.NewBillingRepository(s.txm.DB()).ListPayments(ctx, filter, offset, limit)
}
