package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"gympulse/internal/adapters/persistence/models"
	"gympulse/internal/core/domain"
)

// InvoiceFilter narrows invoice list queries
type InvoiceFilter struct {
	Status       *domain.InvoiceStatus
	MemberID     *string
	MembershipID *string
	IssuedFrom   *time.Time
	IssuedTo     *time.Time
}

// PaymentFilter narrows payment list queries
type PaymentFilter struct {
	Status       *domain.PaymentStatus
	MemberID     *string
	MembershipID *string
	InvoiceID    *string
}

// BillingRepository handles invoice and payment data access
type BillingRepository struct {
	db *gorm.DB
}

// NewBillingRepository creates a new billing repository
func NewBillingRepository(db *gorm.DB) *BillingRepository {
	return &BillingRepository{db: db}
}

// ============================================================
// Invoices
// ============================================================

// CreateInvoice creates an invoice together with its payment rows. A
// duplicate billing period (same membership, same period start) surfaces as
// ErrDuplicateBillingPeriod so sweeps can treat it as already done.
func (r *BillingRepository) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	err := r.db.WithContext(ctx).Create(invoice).Error
	if err != nil && IsDuplicate(err) {
		return duplicateInvoiceError(err)
	}
	return err
}

// GetInvoiceByID gets an invoice with member and payments loaded
func (r *BillingRepository) GetInvoiceByID(ctx context.Context, id string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Member").
		Preload("Payments").
		First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvoiceNotFound
	}
	return &invoice, err
}

// GetInvoiceByIDForUpdate locks the invoice row and loads its payments.
// Callers must run inside TxManager.WithTransaction.
func (r *BillingRepository) GetInvoiceByIDForUpdate(ctx context.Context, id string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := LockForUpdate(r.db.WithContext(ctx)).
		First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Where("invoice_id = ?", invoice.ID).
		Find(&invoice.Payments).Error
	return &invoice, err
}

// ListInvoices lists invoices with filters and pagination
func (r *BillingRepository) ListInvoices(ctx context.Context, filter InvoiceFilter, offset, limit int) ([]*models.Invoice, int64, error) {
	var invoices []*models.Invoice
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Invoice{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.MemberID != nil {
		query = query.Where("member_id = ?", *filter.MemberID)
	}
	if filter.MembershipID != nil {
		query = query.Where("membership_id = ?", *filter.MembershipID)
	}
	if filter.IssuedFrom != nil {
		query = query.Where("issue_date >= ?", *filter.IssuedFrom)
	}
	if filter.IssuedTo != nil {
		query = query.Where("issue_date <= ?", *filter.IssuedTo)
	}

	query.Count(&total)

	err := query.
		Preload("Member").
		Preload("Payments").
		Order("issue_date DESC, created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&invoices).Error

	return invoices, total, err
}

// OverdueCandidates returns ISSUED and PARTIALLY_PAID invoices whose due date
// is strictly before cutoff, capped at limit. Used by the overdue sweep.
func (r *BillingRepository) OverdueCandidates(ctx context.Context, cutoff time.Time, limit int) ([]*models.Invoice, error) {
	var invoices []*models.Invoice
	err := r.db.WithContext(ctx).
		Where("status IN ? AND due_date < ?",
			[]domain.InvoiceStatus{domain.InvoiceIssued, domain.InvoicePartiallyPaid}, cutoff).
		Order("due_date ASC").
		Limit(limit).
		Find(&invoices).Error
	return invoices, err
}

// UpdateInvoice saves the invoice row without touching relations
func (r *BillingRepository) UpdateInvoice(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).
		Omit("Member", "Membership", "Payments").
		Save(invoice).Error
}

// CancelOpenInvoices cancels every invoice of a membership that is not yet
// PAID, OVERDUE and PARTIALLY_PAID included. Returns the number of invoices
// cancelled.
func (r *BillingRepository) CancelOpenInvoices(ctx context.Context, membershipID, note string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("membership_id = ? AND status NOT IN ?", membershipID,
			[]domain.InvoiceStatus{domain.InvoicePaid, domain.InvoiceCancelled}).
		Updates(map[string]interface{}{
			"status": domain.InvoiceCancelled,
			"notes":  note,
		})
	return result.RowsAffected, result.Error
}

// CountOverdueInvoices counts OVERDUE invoices for a membership
func (r *BillingRepository) CountOverdueInvoices(ctx context.Context, membershipID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("membership_id = ? AND status = ?", membershipID, domain.InvoiceOverdue).
		Count(&count).Error
	return count, err
}

// CountNonCancelledInvoicesByMember counts a member's invoices that are not
// cancelled; used to block member deletion with billing history.
func (r *BillingRepository) CountNonCancelledInvoicesByMember(ctx context.Context, memberID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("member_id = ? AND status <> ?", memberID, domain.InvoiceCancelled).
		Count(&count).Error
	return count, err
}

// ============================================================
// Payments
// ============================================================

// CreatePayment creates a payment row; a duplicate (membership, period start)
// pair surfaces as ErrDuplicateBillingPeriod.
func (r *BillingRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	err := r.db.WithContext(ctx).Create(payment).Error
	if err != nil && IsDuplicate(err) {
		return domain.ErrDuplicateBillingPeriod
	}
	return err
}

// GetPaymentByID gets a payment by ID
func (r *BillingRepository) GetPaymentByID(ctx context.Context, id string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrPaymentNotFound
	}
	return &payment, err
}

// GetPaymentByIDForUpdate locks the payment row. Callers must run inside
// TxManager.WithTransaction.
func (r *BillingRepository) GetPaymentByIDForUpdate(ctx context.Context, id string) (*models.Payment, error) {
	var payment models.Payment
	err := LockForUpdate(r.db.WithContext(ctx)).
		First(&payment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrPaymentNotFound
	}
	return &payment, err
}

// ListPayments lists payments with filters and pagination
func (r *BillingRepository) ListPayments(ctx context.Context, filter PaymentFilter, offset, limit int) ([]*models.Payment, int64, error) {
	var payments []*models.Payment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Payment{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.MemberID != nil {
		query = query.Where("member_id = ?", *filter.MemberID)
	}
	if filter.MembershipID != nil {
		query = query.Where("membership_id = ?", *filter.MembershipID)
	}
	if filter.InvoiceID != nil {
		query = query.Where("invoice_id = ?", *filter.InvoiceID)
	}

	query.Count(&total)

	err := query.
		Order("period_start DESC, created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&payments).Error

	return payments, total, err
}

// UpdatePayment saves the payment row without touching relations
func (r *BillingRepository) UpdatePayment(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).
		Omit("Member", "Membership", "Invoice").
		Save(payment).Error
}

// CountPendingPayments counts PENDING payments for a membership
func (r *BillingRepository) CountPendingPayments(ctx context.Context, membershipID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("membership_id = ? AND status = ?", membershipID, domain.PaymentPending).
		Count(&count).Error
	return count, err
}

// SumPaidBetween sums the amounts of payments settled within [from, to)
func (r *BillingRepository) SumPaidBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("SUM(amount) as total").
		Where("status = ? AND paid_date >= ? AND paid_date < ?", domain.PaymentPaid, from, to).
		Scan(&result).Error
	if err != nil || !result.Total.Valid {
		return decimal.Zero, err
	}
	return result.Total.Decimal, nil
}

// CountInvoicesByStatus returns invoice counts grouped by status
func (r *BillingRepository) CountInvoicesByStatus(ctx context.Context) (map[domain.InvoiceStatus]int64, error) {
	type row struct {
		Status domain.InvoiceStatus
		Count  int64
	}
	var rows []row

	err := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.InvoiceStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// CancelOutstandingPayments cancels every PENDING and FAILED payment of a
// membership. Returns the number of payments cancelled.
func (r *BillingRepository) CancelOutstandingPayments(ctx context.Context, membershipID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("membership_id = ? AND status IN ?", membershipID,
			[]domain.PaymentStatus{domain.PaymentPending, domain.PaymentFailed}).
		Update("status", domain.PaymentCancelled)
	return result.RowsAffected, result.Error
}

func duplicateInvoiceError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "idx_membership_period"), strings.Contains(msg, "period_start"):
		return domain.ErrDuplicateBillingPeriod
	case strings.Contains(msg, "invoice_number"):
		return domain.ErrDuplicateInvoiceNumber
	}
	return domain.ErrDuplicateEntry
}
