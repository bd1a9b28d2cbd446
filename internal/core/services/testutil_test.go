package services

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gympulse/internal/adapters/persistence/models"
	"gympulse/internal/adapters/persistence/repositories"
	"gympulse/internal/core/domain"
)

// fixture wires the billing engine against an in-memory ledger with a
// deterministic clock.
type fixture struct {
	t     *testing.T
	db    *gorm.DB
	clock *domain.FixedClock
	txm   *repositories.TxManager

	members     *MemberService
	catalog     *CatalogService
	memberships *MembershipService
	payments    *PaymentService
	scheduler   *SchedulerService
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A pooled :memory: connection is a fresh empty database; keep one
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db))

	clock := &domain.FixedClock{FixedTime: now}
	txm := repositories.NewTxManager(db)
	lifecycle := NewLifecycleService()
	builder := NewInvoiceBuilder(clock, "USD")

	return &fixture{
		t:           t,
		db:          db,
		clock:       clock,
		txm:         txm,
		members:     NewMemberService(txm),
		catalog:     NewCatalogService(txm),
		memberships: NewMembershipService(txm, lifecycle, builder, clock),
		payments:    NewPaymentService(txm, lifecycle, clock),
		scheduler:   NewSchedulerService(txm, lifecycle, builder, clock, 5, 100),
	}
}

// advanceTo moves the fixture clock to 09:00 UTC on the given day
func (f *fixture) advanceTo(y int, m time.Month, d int) {
	f.clock.FixedTime = time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
}

func (f *fixture) seedMember(email, idNumber string) *models.Member {
	f.t.Helper()
	member, err := f.members.Create(context.Background(), &CreateMemberInput{
		Name:     "Test Member",
		Email:    email,
		IDNumber: idNumber,
	})
	require.NoError(f.t, err)
	return member
}

func (f *fixture) seedPlan(name string, tiers map[domain.Duration]string) *models.Plan {
	f.t.Helper()
	input := &CreatePlanInput{Name: name, Description: "test plan"}
	for d, monthly := range tiers {
		input.Tiers = append(input.Tiers, TierInput{Duration: string(d), MonthlyPrice: monthly})
	}
	plan, err := f.catalog.CreatePlan(context.Background(), input)
	require.NoError(f.t, err)
	return plan
}

func (f *fixture) assign(input *AssignMembershipInput) *models.Membership {
	f.t.Helper()
	membership, err := f.memberships.Assign(context.Background(), input)
	require.NoError(f.t, err)
	return membership
}

func (f *fixture) invoicesFor(membershipID string) []*models.Invoice {
	f.t.Helper()
	list, _, err := f.payments.ListInvoices(context.Background(),
		repositories.InvoiceFilter{MembershipID: &membershipID}, 0, 50)
	require.NoError(f.t, err)
	return list
}

func (f *fixture) paymentsFor(membershipID string, status domain.PaymentStatus) []*models.Payment {
	f.t.Helper()
	list, _, err := f.payments.ListPayments(context.Background(),
		repositories.PaymentFilter{MembershipID: &membershipID, Status: &status}, 0, 50)
	require.NoError(f.t, err)
	return list
}

// settle records a PAID outcome on the membership's single pending payment
func (f *fixture) settle(membershipID string) *models.Payment {
	f.t.Helper()
	pending := f.paymentsFor(membershipID, domain.PaymentPending)
	require.Len(f.t, pending, 1)

	paid, already, err := f.payments.RecordOutcome(context.Background(), pending[0].ID,
		&RecordOutcomeInput{Outcome: string(domain.OutcomePaid)})
	require.NoError(f.t, err)
	require.False(f.t, already)
	return paid
}

func (f *fixture) reloadMembership(id string) *models.Membership {
	f.t.Helper()
	membership, err := f.memberships.GetByID(context.Background(), id)
	require.NoError(f.t, err)
	return membership
}

func (f *fixture) reloadMember(id string) *models.Member {
	f.t.Helper()
	member, err := f.members.GetByID(context.Background(), id)
	require.NoError(f.t, err)
	return member
}

func ymd(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
