package services

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"gympulse/internal/adapters/persistence/repositories"
	"gympulse/internal/core/domain"
)

// SchedulerService runs the two daily billing sweeps. Both ticks are
// idempotent: re-running them on the same day finds nothing left to do
// because each processed row stops matching the selection criteria.
type SchedulerService struct {
	txm       *repositories.TxManager
	lifecycle *LifecycleService
	builder   *InvoiceBuilder
	clock     domain.Clock
	graceDays int
	batchSize int
}

// NewSchedulerService creates a new scheduler service
func NewSchedulerService(txm *repositories.TxManager, lifecycle *LifecycleService, builder *InvoiceBuilder, clock domain.Clock, graceDays, batchSize int) *SchedulerService {
	return &SchedulerService{
		txm:       txm,
		lifecycle: lifecycle,
		builder:   builder,
		clock:     clock,
		graceDays: graceDays,
		batchSize: batchSize,
	}
}

// RecurringTickSummary reports what a recurring sweep did
type RecurringTickSummary struct {
	Processed int `json:"processed"`
	Invoiced  int `json:"invoiced"`
	Renewed   int `json:"renewed"`
	Expired   int `json:"expired"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

// OverdueTickSummary reports what an overdue sweep did
type OverdueTickSummary struct {
	Scanned       int `json:"scanned"`
	MarkedOverdue int `json:"marked_overdue"`
	Frozen        int `json:"frozen"`
	Errors        int `json:"errors"`
}

// TickRecurring issues the monthly invoices for every ACTIVE membership whose
// next billing date has arrived. Each membership is processed in its own
// transaction so one bad row cannot poison the batch.
func (s *SchedulerService) TickRecurring(ctx context.Context) (*RecurringTickSummary, error) {
	today := domain.Today(s.clock)
	summary := &RecurringTickSummary{}

	due, err := repositories.NewMembershipRepository(s.txm.DB()).DueForBilling(ctx, today, s.batchSize)
	if err != nil {
		return nil, err
	}

	for _, m := range due {
		outcome, err := s.processDue(ctx, m.ID, today)
		if err != nil {
			summary.Errors++
			log.Printf("❌ Recurring tick failed for membership %s: %v", m.ID, err)
			continue
		}
		summary.Processed++
		switch outcome {
		case tickInvoiced:
			summary.Invoiced++
		case tickRenewed:
			summary.Renewed++
		case tickExpired:
			summary.Expired++
		case tickSkipped:
			summary.Skipped++
		}
	}

	log.Printf("✅ Recurring tick done [processed: %d, invoiced: %d, renewed: %d, expired: %d, skipped: %d, errors: %d]",
		summary.Processed, summary.Invoiced, summary.Renewed, summary.Expired, summary.Skipped, summary.Errors)
	return summary, nil
}

type tickOutcome string

const (
	tickInvoiced tickOutcome = "invoiced"
	tickRenewed  tickOutcome = "renewed"
	tickExpired  tickOutcome = "expired"
	tickSkipped  tickOutcome = "skipped"
)

// processDue handles one due membership inside its own transaction. The row
// is re-checked after locking because the batch query ran without locks.
func (s *SchedulerService) processDue(ctx context.Context, membershipID string, today time.Time) (tickOutcome, error) {
	outcome := tickSkipped

	err := s.txm.WithTransaction(ctx, func(tx *gorm.DB) error {
		membershipRepo := repositories.NewMembershipRepository(tx)
		billingRepo := repositories.NewBillingRepository(tx)

		membership, err := membershipRepo.GetByIDForUpdate(ctx, membershipID)
		if err != nil {
			return err
		}
		if membership.Status != domain.MembershipActive || membership.NextBillingDate.After(today) {
			// Already handled by a concurrent run
			outcome = tickSkipped
			return nil
		}

		tier := membership.PricingTier
		required := tier.Duration.Months()
		fields := map[string]interface{}{}
		renewed := false

		if membership.PaidMonths >= required {
			if !membership.AutoRenew {
				outcome = tickExpired
				return s.lifecycle.Apply(ctx, tx, membership, domain.MembershipExpired)
			}
			// Commitment complete: roll into a fresh one starting at the due
			// period.
			membership.PaidMonths = 0
			newEnd := domain.LastDayOfMonth(domain.AddMonths(membership.NextBillingDate, required-1))
			fields["end_date"] = newEnd
			renewed = true
		}

		period := domain.DateOf(membership.NextBillingDate)
		invoice := s.builder.RecurringInvoice(membership, tier.MonthlyPrice, period)
		err = billingRepo.CreateInvoice(ctx, invoice)
		if err != nil && !errors.Is(err, domain.ErrDuplicateBillingPeriod) {
			return err
		}
		// A duplicate period means a previous partial run already issued the
		// invoice; advancing the billing cursor is all that is left to do.

		fields["paid_months"] = membership.PaidMonths + 1
		fields["next_billing_date"] = domain.FirstDayOfNextMonth(period)
		if err := membershipRepo.UpdateFields(ctx, membership.ID, fields); err != nil {
			return err
		}

		if renewed {
			outcome = tickRenewed
		} else {
			outcome = tickInvoiced
		}
		return nil
	})

	return outcome, err
}

// TickOverdue marks invoices unpaid past the grace period as OVERDUE and
// freezes the memberships behind them.
func (s *SchedulerService) TickOverdue(ctx context.Context) (*OverdueTickSummary, error) {
	today := domain.Today(s.clock)
	cutoff := today.AddDate(0, 0, -s.graceDays)
	summary := &OverdueTickSummary{}

	candidates, err := repositories.NewBillingRepository(s.txm.DB()).OverdueCandidates(ctx, cutoff, s.batchSize)
	if err != nil {
		return nil, err
	}

	for _, inv := range candidates {
		marked, frozen, err := s.processOverdue(ctx, inv.ID, cutoff)
		if err != nil {
			summary.Errors++
			log.Printf("❌ Overdue tick failed for invoice %s: %v", inv.ID, err)
			continue
		}
		summary.Scanned++
		if marked {
			summary.MarkedOverdue++
		}
		if frozen {
			summary.Frozen++
		}
	}

	log.Printf("✅ Overdue tick done [scanned: %d, marked: %d, frozen: %d, errors: %d]",
		summary.Scanned, summary.MarkedOverdue, summary.Frozen, summary.Errors)
	return summary, nil
}

// processOverdue handles one overdue candidate inside its own transaction
func (s *SchedulerService) processOverdue(ctx context.Context, invoiceID string, cutoff time.Time) (marked, frozen bool, err error) {
	err = s.txm.WithTransaction(ctx, func(tx *gorm.DB) error {
		billingRepo := repositories.NewBillingRepository(tx)
		membershipRepo := repositories.NewMembershipRepository(tx)

		invoice, err := billingRepo.GetInvoiceByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if invoice.Status != domain.InvoiceIssued && invoice.Status != domain.InvoicePartiallyPaid {
			return nil
		}
		if !invoice.DueDate.Before(cutoff) {
			return nil
		}

		invoice.Status = domain.InvoiceOverdue
		if err := billingRepo.UpdateInvoice(ctx, invoice); err != nil {
			return err
		}
		marked = true

		membership, err := membershipRepo.GetByIDForUpdate(ctx, invoice.MembershipID)
		if err != nil {
			return err
		}
		if membership.Status == domain.MembershipActive {
			if err := s.lifecycle.Apply(ctx, tx, membership, domain.MembershipFrozen); err != nil {
				return err
			}
			frozen = true
		}
		return nil
	})

	return marked, frozen, err
}
