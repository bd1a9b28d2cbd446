package services

import (
	"context"

	"gympulse/internal/adapters/persistence/repositories"
	"gympulse/internal/core/domain"
)

// DashboardService aggregates the numbers the staff dashboard shows
type DashboardService struct {
	txm   *repositories.TxManager
	clock domain.Clock
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(txm *repositories.TxManager, clock domain.Clock) *DashboardService {
	return &DashboardService{txm: txm, clock: clock}
}

// Stats represents dashboard statistics
type Stats struct {
	Memberships     map[domain.MembershipStatus]int64 `json:"memberships"`
	Invoices        map[domain.InvoiceStatus]int64    `json:"invoices"`
	RevenueMonth    string                            `json:"revenue_month"`
	RevenueLifetime string                            `json:"revenue_lifetime"`
}

// GetStats collects membership counts, invoice counts and settled revenue
// for the current calendar month.
func (s *DashboardService) GetStats(ctx context.Context) (*Stats, error) {
	db := s.txm.DB()
	membershipRepo := repositories.NewMembershipRepository(db)
	billingRepo := repositories.NewBillingRepository(db)

	memberships, err := membershipRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	invoices, err := billingRepo.CountInvoicesByStatus(ctx)
	if err != nil {
		return nil, err
	}

	today := domain.Today(s.clock)
	monthStart := today.AddDate(0, 0, -(today.Day() - 1))
	monthEnd := domain.FirstDayOfNextMonth(today)

	revenueMonth, err := billingRepo.SumPaidBetween(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	// All time: epoch to the end of the current month
	revenueAll, err := billingRepo.SumPaidBetween(ctx, domain.DateOf(today.AddDate(-100, 0, 0)), monthEnd)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Memberships:     memberships,
		Invoices:        invoices,
		RevenueMonth:    revenueMonth.StringFixed(2),
		RevenueLifetime: revenueAll.StringFixed(2),
	}, nil
}
