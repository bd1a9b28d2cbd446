package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"gympulse/internal/adapters/persistence/models"
	"gympulse/internal/core/domain"
)

// InvoiceBuilder assembles invoice and payment rows for the billing engine.
// All amounts come in as the tier's monthly price; proration and period
// arithmetic happen here so the services stay declarative.
type InvoiceBuilder struct {
	clock    domain.Clock
	currency string
}

// NewInvoiceBuilder creates a new invoice builder
func NewInvoiceBuilder(clock domain.Clock, currency string) *InvoiceBuilder {
	return &InvoiceBuilder{clock: clock, currency: currency}
}

// nextInvoiceNumber derives a human-readable invoice number from the clock
// and the membership it bills.
func (b *InvoiceBuilder) nextInvoiceNumber(membershipID string) string {
	suffix := membershipID
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return fmt.Sprintf("INV-%06d-%s", b.clock.Now().UnixMilli()%1000000, suffix)
}

// InitialInvoice builds the prorated first-month invoice for a freshly
// assigned membership, with its PENDING payment attached. Tax and discount
// are passed through untouched. The payment's billing period is half-open:
// it runs from the start date up to the first day of the following month,
// where recurring periods take over.
func (b *InvoiceBuilder) InitialInvoice(membership *models.Membership, monthlyPrice, tax, discount decimal.Decimal) *models.Invoice {
	startDate := domain.DateOf(membership.StartDate)
	subtotal := domain.Prorate(monthlyPrice, startDate)
	total := subtotal.Add(tax).Sub(discount)
	periodEnd := domain.FirstDayOfNextMonth(startDate)
	dueDate := startDate.AddDate(0, 0, 1)

	return &models.Invoice{
		MemberID:      membership.MemberID,
		MembershipID:  membership.ID,
		InvoiceNumber: b.nextInvoiceNumber(membership.ID),
		Subtotal:      subtotal,
		Tax:           tax,
		Discount:      discount,
		Total:         total,
		Status:        domain.InvoiceIssued,
		IssueDate:     domain.Today(b.clock),
		DueDate:       dueDate,
		Notes:         "Prorated membership fee for first month",
		Payments: []models.Payment{
			{
				MemberID:     membership.MemberID,
				MembershipID: membership.ID,
				Amount:       total,
				Currency:     b.currency,
				Status:       domain.PaymentPending,
				PeriodStart:  startDate,
				PeriodEnd:    periodEnd,
				DueDate:      dueDate,
			},
		},
	}
}

// RecurringInvoice builds a full-month invoice for the billing period
// starting at periodStart (always the first of a month), with its PENDING
// payment attached. The period ends where the next one begins, so the
// payment slices of a membership tile its billing timeline without gaps.
func (b *InvoiceBuilder) RecurringInvoice(membership *models.Membership, monthlyPrice decimal.Decimal, periodStart time.Time) *models.Invoice {
	periodStart = domain.DateOf(periodStart)
	periodEnd := domain.FirstDayOfNextMonth(periodStart)
	amount := monthlyPrice.Round(2)

	return &models.Invoice{
		MemberID:      membership.MemberID,
		MembershipID:  membership.ID,
		InvoiceNumber: b.nextInvoiceNumber(membership.ID),
		Subtotal:      amount,
		Tax:           decimal.Zero,
		Discount:      decimal.Zero,
		Total:         amount,
		Status:        domain.InvoiceIssued,
		IssueDate:     domain.Today(b.clock),
		DueDate:       periodStart,
		Notes:         fmt.Sprintf("Membership fee %s", periodStart.Format("January 2006")),
		Payments: []models.Payment{
			{
				MemberID:     membership.MemberID,
				MembershipID: membership.ID,
				Amount:       amount,
				Currency:     b.currency,
				Status:       domain.PaymentPending,
				PeriodStart:  periodStart,
				PeriodEnd:    periodEnd,
				DueDate:      periodStart,
			},
		},
	}
}
