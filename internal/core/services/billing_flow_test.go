package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gympulse/internal/core/domain"
)

func TestAssignCreatesProratedInvoice(t *testing.T) {
	f := newFixture(t, time.Date(2025, time.January, 16, 10, 0, 0, 0, time.UTC))
	member := f.seedMember("jane@example.com", "ID-1001")
	plan := f.seedPlan("Standard", map[domain.Duration]string{domain.DurationMonthly: "100.00"})
	tier := plan.TierFor(domain.DurationMonthly)
	require.NotNil(t, tier)

	membership := f.assign(&AssignMembershipInput{
		MemberID:      member.ID,
		PlanID:        plan.ID,
		PricingTierID: tier.ID,
	})

	assert.Equal(t, domain.MembershipPending, membership.Status)
	assert.Equal(t, "51.61", membership.ProratedAmount.StringFixed(2))
	assert.Equal(t, "2025-01-16", ymd(membership.StartDate))
	assert.Equal(t, "2025-01-31", ymd(membership.EndDate))
	assert.Equal(t, "2025-01-16", ymd(membership.BillingStartDate))
	assert.Equal(t, "2025-02-01", ymd(membership.NextBillingDate))
	assert.Equal(t, 0, membership.PaidMonths)

	invoices := f.invoicesFor(membership.ID)
	require.Len(t, invoices, 1)
	assert.Equal(t, domain.InvoiceIssued, invoices[0].Status)
	assert.Equal(t, "51.61", invoices[0].Total.StringFixed(2))
	assert.Equal(t, "2025-01-16", ymd(invoices[0].IssueDate))
	assert.Equal(t, "2025-01-17", ymd(invoices[0].DueDate))

	pending := f.paymentsFor(membership.ID, domain.PaymentPending)
	require.Len(t, pending, 1)
	assert.Equal(t, "51.61", pending[0].Amount.StringFixed(2))
	assert.Equal(t, "USD", pending[0].Currency)
	assert.Equal(t, "2025-01-16", ymd(pending[0].PeriodStart))
	assert.Equal(t, "2025-02-01", ymd(pending[0].PeriodEnd))
	assert.Equal(t, "2025-01-17", ymd(pending[0].DueDate))

	// New member stays inactive until the membership activates
	assert.False(t, f.reloadMember(member.ID).Active)
}

func TestAssignOnFirstOfMonthChargesFullPrice(t *testing.T) {
	f := newFixture(t, time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC))
	member := f.seedMember("ana@example.com", "ID-1002")
	plan := f.seedPlan("Basic", map[domain.Duration]string{domain.DurationMonthly: "29.99"})

	membership := f.assign(&AssignMembershipInput{
		MemberID:      member.ID,
		PlanID:        plan.ID,
		PricingTierID: plan.TierFor(domain.DurationMonthly).ID,
	})

	assert.Equal(t, "29.99", membership.ProratedAmount.StringFixed(2))
	assert.Equal(t, "2025-04-01", ymd(membership.NextBillingDate))
}

func TestAssignActiveImmediately(t *testing.T) {
	f := newFixture(t, time.Date(2025, time.January, 16, 10, 0, 0, 0, time.UTC))
	member := f.seedMember("walkin@example.com", "ID-1003")
	plan := f.seedPlan("Standard", map[domain.Duration]string{domain.DurationMonthly: "100.00"})

	membership := f.assign(&AssignMembershipInput{
		MemberID:      member.ID,
		PlanID:        plan.ID,
		PricingTierID: plan.TierFor(domain.DurationMonthly).ID,
		InitialStatus: string(domain.MembershipActive),
	})

	assert.Equal(t, domain.MembershipActive, membership.Status)
	assert.True(t, f.reloadMember(member.ID).Active)
}

func TestAssignRejectsSecondLiveMembership(t *testing.T) {
	f := newFixture(t, time.Date(2025, time.January, 16, 10, 0, 0, 0, time.UTC))
	member := f.seedMember("dup@example.com", "ID-1004")
	plan := f.seedPlan("Standard", map[domain.Duration]string{domain.DurationMonthly: "100.00"})
	tierID := plan.TierFor(domain.DurationMonthly).ID

	f.assign(&AssignMembershipInput{MemberID: member.ID, PlanID: plan.ID, PricingTierID: tierID})

	_, err := f.memberships.Assign(context.Background(), &AssignMembershipInput{
		MemberID:      member.ID,
		PlanID:        plan.ID,
		PricingTierID: tierID,
	})
	assert.ErrorIs(t, err, domain.ErrLiveMembershipExists)
}

func TestAssignValidatesInput(t *testing.T) {
	f := newFixture(t, time.Date(2025, time.January, 16, 10, 0, 0, 0, time.UTC))

	_, err := f.memberships.Assign(context.Background(), &AssignMembershipInput{
		StartDate:        "16-01-2025",
		BillingStartDate: "Feb 2025",
		InitialStatus:    "FROZEN",
		Tax:              "-1.00",
		Discount:         "free",
	})
	require.Error(t, err)

	ve, ok := domain.AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "member_id")
	assert.Contains(t, ve.Fields, "plan_id")
	assert.Contains(t, ve.Fields, "pricing_tier_id")
	assert.Contains(t, ve.Fields, "start_date")
	assert.Contains(t, ve.Fields, "billing_start_date")
	assert.Contains(t, ve.Fields, "initial_status")
	assert.Contains(t, ve.Fields, "tax")
	assert.Contains(t, ve.Fields, "discount")
}

func TestAssignHonorsBillingStartDate(t *testing.T) {
	f := newFixture(t, time.Date(2025, time.January, 16, 10, 0, 0, 0, time.UTC))
	member := f.seedMember("later@example.com", "ID-1006")
	plan := f.seedPlan("Standard", map[domain.Duration]string{domain.DurationMonthly: "100.00"})

	membership := f.assign(&AssignMembershipInput{
		MemberID:         member.ID,
		PlanID:           plan.ID,
		PricingTierID:    plan.TierFor(domain.DurationMonthly).ID,
		BillingStartDate: "2025-02-15",
	})

	assert.Equal(t, "2025-02-15", ymd(membership.BillingStartDate))
	// The next billing date lands on the first of the month after billing
	// starts, never on the billing start itself
	assert.Equal(t, "2025-03-01", ymd(membership.NextBillingDate))
}

func TestAssignPassesThroughTaxAndDiscount(t *testing.T) {
	f := newFixture(t, time.Date(2025, time.January, 16, 10, 0, 0, 0, time.UTC))
	member := f.seedMember("taxed@example.com", "ID-1007")
	plan := f.seedPlan("Standard", map[domain.Duration]string{domain.DurationMonthly: "100.00"})

	membership := f.assign(&AssignMembershipInput{
		MemberID:      member.ID,
		PlanID:        plan.ID,
		PricingTierID: plan.TierFor(domain.DurationMonthly).ID,
		Tax:           "5.00",
		Discount:      "2.50",
	})

	invoices := f.invoicesFor(membership.ID)
	require.Len(t, invoices, 1)
	assert.Equal(t, "51.61", invoices[0].Subtotal.StringFixed(2))
	assert.Equal(t, "5.00", invoices[0].Tax.StringFixed(2))
	assert.Equal(t, "2.50", invoices[0].Discount.StringFixed(2))
	assert.Equal(t, "54.11", invoices[0].Total.StringFixed(2))

	pending := f.paymentsFor(membership.ID, domain.PaymentPending)
	require.Len(t, pending, 1)
	assert.Equal(t, "54.11", pending[0].Amount.StringFixed(2))

	// A discount swallowing the whole invoice is rejected
	other := f.seedMember("comped@example.com", "ID-1008")
	_, err := f.memberships.Assign(context.Background(), &AssignMembershipInput{
		MemberID:      other.ID,
		PlanID:        plan.ID,
		PricingTierID: plan.TierFor(domain.DurationMonthly).ID,
		Discount:      "60.00",
	})
	require.Error(t, err)
	ve, ok := domain.AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "discount")
}

func TestAssignRejectsTierFromAnotherPlan(t *testing.T) {
	f := newFixture(t, time.Date(2025, time.January, 16, 10, 0, 0, 0, time.UTC))
	member := f.seedMember("mismatch@example.com", "ID-1005")
	planA := f.seedPlan("Basic", map[domain.Duration]string{domain.DurationMonthly: "29.99"})
	planB := f.seedPlan("Premium", map[domain.Duration]string{domain.DurationMonthly: "79.99"})

	_, err := f.memberships.Assign(context.Background(), &AssignMembershipInput{
		MemberID:      member.ID,
		PlanID:        planA.ID,
		PricingTierID: planB.TierFor(domain.DurationMonthly).ID,
	})
	assert.ErrorIs(t, err, domain.ErrCatalogMismatch)
}

func TestPaymentActivatesPendingMembership(t *testing.T) {
	f := newFixture(t, time.Date(2025, time.January, 16, 10, 0, 0, 0, time.UTC))
	member := f.seedMember("pay@example.com", "ID-2001")
	plan := f.seedPlan("Standard", map[domain.Duration]string{domain.DurationMonthly: "100.00"})

	membership := f.assign(&AssignMembershipInput{
		MemberID:      member.ID,
		PlanID:        plan.ID,
		PricingTierID: plan.TierFor(domain.DurationMonthly).ID,
	})

	paid := f.settle(membership.ID)
	assert.Equal(t, domain.PaymentPaid, paid.Status)
	require.NotNil(t, paid.PaidDate)

	invoices := f.invoicesFor(membership.ID)
	require.Len(t, invoices, 1)
	assert.Equal(t, domain.InvoicePaid, invoices[0].Status)
	require.NotNil(t, invoices[0].PaidDate)

	assert.Equal(t, domain.MembershipActive, f.reloadMembership(membership.ID).Status)
	assert.True(t, f.reloadMember(member.ID).Active)
}

func TestRecordOutcomeIsIdempotent(t *testing.T) {
	f := newFixture(t, time.Date(2025, time.January, 16, 10, 0, 0, 0, time.UTC))
	member := f.seedMember("idem@example.com", "ID-2002")
	plan := f.seedPlan("Standard", map[domain.Duration]string{domain.DurationMonthly: "100.00"})

	membership := f.assign(&AssignMembershipInput{
		MemberID:      member.ID,
		PlanID:        plan.ID,
		PricingTierID: plan.TierFor(domain.DurationMonthly).ID,
	})
	paid := f.settle(membership.ID)

	again, already, err := f.payments.RecordOutcome(context.Background(), paid.ID,
		&RecordOutcomeInput{Outcome: string(domain.OutcomePaid)})
	require.NoError(t, err)
	assert.True(t, already)
	assert.Equal(t, domain.PaymentPaid, again.Status)

	// A conflicting report is rejected, not silently applied
	_, _, err = f.payments.RecordOutcome(context.Background(), paid.ID,
		&RecordOutcomeInput{Outcome: string(domain.OutcomeFailed)})
	assert.ErrorIs(t, err, domain.ErrPaymentSettled)
}

func TestFailedOutcomeLeavesInvoiceOpen(t *testing.T) {
	f := newFixture(t, time.Date(2025, time.January, 16, 10, 0, 0, 0, time.UTC))
	member := f.seedMember("fail@example.com", "ID-2003")
	plan := f.seedPlan("Standard", map[domain.Duration]string{domain.DurationMonthly: "100.00"})

	membership := f.assign(&AssignMembershipInput{
		MemberID:      member.ID,
		PlanID:        plan.ID,
		PricingTierID: plan.TierFor(domain.DurationMonthly).ID,
	})

	pending := f.paymentsFor(membership.ID, domain.PaymentPending)
	require.Len(t, pending, 1)

	failed, already, err := f.payments.RecordOutcome(context.Background(), pending[0].ID,
		&RecordOutcomeInput{Outcome: string(domain.OutcomeFailed)})
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, domain.PaymentFailed, failed.Status)

	invoices := f.invoicesFor(membership.ID)
	assert.Equal(t, domain.InvoiceIssued, invoices[0].Status)
	assert.Equal(t, domain.MembershipPending, f.reloadMembership(membership.ID).Status)

	// A later successful retry still activates the membership
	retried, already, err := f.payments.RecordOutcome(context.Background(), failed.ID,
		&RecordOutcomeInput{Outcome: string(domain.OutcomePaid)})
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, domain.PaymentPaid, retried.Status)
	assert.Equal(t, domain.MembershipActive, f.reloadMembership(membership.ID).Status)
}

func TestRecurringTickIssuesMonthlyInvoice(t *testing.T) {
	f := newFixture(t, time.Date(2025, time.January, 16, 10, 0, 0, 0, time.UTC))
	member := f.seedMember("recur@example.com", "ID-3001")
	plan := f.seedPlan("Standard", map[domain.Duration]string{domain.DurationMonthly: "100.00"})

	membership := f.assign(&AssignMembershipInput{
		MemberID:      member.ID,
		PlanID:        plan.ID,
		PricingTierID: plan.TierFor(domain.DurationMonthly).ID,
		InitialStatus: string(domain.MembershipActive),
		AutoRenew:     true,
	})
	f.settle(membership.ID)

	f.advanceTo(2025, time.February, 1)
	summary, err := f.scheduler.TickRecurring(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Invoiced)
	assert.Equal(t, 0, summary.Errors)

	reloaded := f.reloadMembership(membership.ID)
	assert.Equal(t, 1, reloaded.PaidMonths)
	assert.Equal(t, "2025-03-01", ymd(reloaded.NextBillingDate))

	invoices := f.invoicesFor(membership.ID)
	require.Len(t, invoices, 2)

	var recurring bool
	for _, inv := range invoices {
		if ymd(inv.IssueDate) == "2025-02-01" {
			recurring = true
			assert.Equal(t, "100.00", inv.Total.StringFixed(2))
			assert.Equal(t, domain.InvoiceIssued, inv.Status)
		}
	}
	assert.True(t, recurring)

	// February's payment covers [Feb 1, Mar 1): periods tile month to month
	// without gaps
	pending := f.paymentsFor(membership.ID, domain.PaymentPending)
	require.Len(t, pending, 1)
	assert.Equal(t, "2025-02-01", ymd(pending[0].PeriodStart))
	assert.Equal(t, "2025-03-01", ymd(pending[0].PeriodEnd))

	// Re-running the tick on the same day finds nothing to do
	summary, err = f.scheduler.TickRecurring(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	require.Len(t, f.invoicesFor(membership.ID), 2)
}

func TestRecurringTickSkipsNonActiveMemberships(t *testing.T) {
	f := newFixture(t, time.Date(2025, time.January, 16, 10, 0, 0, 0, time.UTC))
	member := f.seedMember("frozen@example.com", "ID-3002")
	plan := f.seedPlan("Standard", map[domain.Duration]string{domain.DurationMonthly: "100.00"})

	membership := f.assign(&AssignMembershipInput{
		MemberID:      member.ID,
		PlanID:        plan.ID,
		PricingTierID: plan.TierFor(domain.DurationMonthly).ID,
	})

	// Still PENDING: the sweep must not bill it
	f.advanceTo(2025, time.February, 1)
	summary, err := f.scheduler.TickRecurring(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	require.Len(t, f.invoicesFor(membership.ID), 1)
}

func TestOverdueTickFreezesMembership(t *testing.T) {
	f := newFixture(t, time.Date(2025, time.January, 16, 10, 0, 0, 0, time.UTC))
	member := f.seedMember("late@example.com", "ID-4001")
	plan := f.seedPlan("Standard", map[domain.Duration]string{domain.DurationMonthly: "100.00"})

	membership := f.assign(&AssignMembershipInput{
		MemberID:      member.ID,
		PlanID:        plan.ID,
		PricingTierID: plan.TierFor(domain.DurationMonthly).ID,
		InitialStatus: string(domain.MembershipActive),
		AutoRenew:     true,
	})
	f.settle(membership.ID)

	f.advanceTo(2025, time.February, 1)
	_, err := f.scheduler.TickRecurring(context.Background())
	require.NoError(t, err)

	// Inside the grace period nothing happens
	f.advanceTo(2025, time.February, 6)
	summary, err := f.scheduler.TickOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.MarkedOverdue)
	assert.Equal(t, domain.MembershipActive, f.reloadMembership(membership.ID).Status)

	// One day past the grace period the invoice flips and the membership
	// freezes
	f.advanceTo(2025, time.February, 7)
	summary, err = f.scheduler.TickOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.MarkedOverdue)
	assert.Equal(t, 1, summary.Frozen)

	assert.Equal(t, domain.MembershipFrozen, f.reloadMembership(membership.ID).Status)
	assert.False(t, f.reloadMember(member.ID).Active)

	// Re-running the sweep is a no-op
	summary, err = f.scheduler.TickOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.MarkedOverdue)

	// Settling the overdue invoice thaws the membership
	f.settle(membership.ID)
	assert.Equal(t, domain.MembershipActive, f.reloadMembership(membership.ID).Status)
	assert.True(t, f.reloadMember(member.ID).Active)
}

func TestCommitmentExpiresWithoutAutoRenew(t *testing.T) {
	f := newFixture(t, time.Date(2025, time.January, 16, 10, 0, 0, 0, time.UTC))
	member := f.seedMember("expire@example.com", "ID-5001")
	plan := f.seedPlan("Standard", map[domain.Duration]string{domain.DurationThreeMonth: "90.00"})

	membership := f.assign(&AssignMembershipInput{
		MemberID:      member.ID,
		PlanID:        plan.ID,
		PricingTierID: plan.TierFor(domain.DurationThreeMonth).ID,
		InitialStatus: string(domain.MembershipActive),
		AutoRenew:     false,
	})
	assert.Equal(t, "2025-03-31", ymd(membership.EndDate))

	// Bill three recurring months
	for _, m := range []time.Month{time.February, time.March, time.April} {
		f.advanceTo(2025, m, 1)
		summary, err := f.scheduler.TickRecurring(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Invoiced, "month %s", m)
	}
	assert.Equal(t, 3, f.reloadMembership(membership.ID).PaidMonths)

	// The commitment is complete and autoRenew is off: next due date expires
	// the membership
	f.advanceTo(2025, time.May, 1)
	summary, err := f.scheduler.TickRecurring(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Expired)

	reloaded := f.reloadMembership(membership.ID)
	assert.Equal(t, domain.MembershipExpired, reloaded.Status)
	assert.False(t, f.reloadMember(member.ID).Active)
}

func TestCommitmentRenewsWithAutoRenew(t *testing.T) {
	f := newFixture(t, time.Date(2025, time.January, 16, 10, 0, 0, 0, time.UTC))
	member := f.seedMember("renew@example.com", "ID-5002")
	plan := f.seedPlan("Standard", map[domain.Duration]string{domain.DurationThreeMonth: "90.00"})

	membership := f.assign(&AssignMembershipInput{
		MemberID:      member.ID,
		PlanID:        plan.ID,
		PricingTierID: plan.TierFor(domain.DurationThreeMonth).ID,
		InitialStatus: string(domain.MembershipActive),
		AutoRenew:     true,
	})

	for _, m := range []time.Month{time.February, time.March, time.April} {
		f.advanceTo(2025, m, 1)
		_, err := f.scheduler.TickRecurring(context.Background())
		require.NoError(t, err)
	}

	f.advanceTo(2025, time.May, 1)
	summary, err := f.scheduler.TickRecurring(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Renewed)
	assert.Equal(t, 0, summary.Expired)

	reloaded := f.reloadMembership(membership.ID)
	assert.Equal(t, domain.MembershipActive, reloaded.Status)
	assert.Equal(t, 1, reloaded.PaidMonths)
	assert.Equal(t, "2025-07-31", ymd(reloaded.EndDate))
	assert.Equal(t, "2025-06-01", ymd(reloaded.NextBillingDate))

	// The renewal month got its invoice
	var mayInvoice bool
	for _, inv := range f.invoicesFor(membership.ID) {
		if ymd(inv.IssueDate) == "2025-05-01" {
			mayInvoice = true
		}
	}
	assert.True(t, mayInvoice)
}

func TestCancelMembership(t *testing.T) {
	f := newFixture(t, time.Date(2025, time.January, 16, 10, 0, 0, 0, time.UTC))
	member := f.seedMember("cancel@example.com", "ID-6001")
	plan := f.seedPlan("Standard", map[domain.Duration]string{domain.DurationMonthly: "100.00"})

	membership := f.assign(&AssignMembershipInput{
		MemberID:      member.ID,
		PlanID:        plan.ID,
		PricingTierID: plan.TierFor(domain.DurationMonthly).ID,
		InitialStatus: string(domain.MembershipActive),
	})

	cancelled, already, err := f.memberships.Cancel(context.Background(), membership.ID,
		&CancelMembershipInput{Reason: "moving away"})
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, domain.MembershipCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancellationReason)
	assert.Equal(t, "moving away", *cancelled.CancellationReason)
	assert.False(t, f.reloadMember(member.ID).Active)

	// Open invoice and pending payment were voided
	invoices := f.invoicesFor(membership.ID)
	require.Len(t, invoices, 1)
	assert.Equal(t, domain.InvoiceCancelled, invoices[0].Status)
	assert.Empty(t, f.paymentsFor(membership.ID, domain.PaymentPending))

	// Cancellation is mirrored into the custom-field blob
	fields, err := f.memberships.GetCustomFields(context.Background(), membership.ID)
	require.NoError(t, err)
	assert.Contains(t, fields, "cancellation")

	// Cancelling again is a reported no-op
	_, already, err = f.memberships.Cancel(context.Background(), membership.ID,
		&CancelMembershipInput{Reason: "again"})
	require.NoError(t, err)
	assert.True(t, already)
}

func TestChangeTier(t *testing.T) {
	f := newFixture(t, time.Date(2025, time.January, 16, 10, 0, 0, 0, time.UTC))
	member := f.seedMember("tier@example.com", "ID-7001")
	plan := f.seedPlan("Standard", map[domain.Duration]string{
		domain.DurationMonthly:    "100.00",
		domain.DurationThreeMonth: "90.00",
	})
	other := f.seedPlan("Premium", map[domain.Duration]string{domain.DurationMonthly: "150.00"})

	membership := f.assign(&AssignMembershipInput{
		MemberID:      member.ID,
		PlanID:        plan.ID,
		PricingTierID: plan.TierFor(domain.DurationMonthly).ID,
		InitialStatus: string(domain.MembershipActive),
	})

	// A tier from another plan is rejected
	_, err := f.memberships.ChangeTier(context.Background(), membership.ID,
		other.TierFor(domain.DurationMonthly).ID)
	assert.ErrorIs(t, err, domain.ErrCatalogMismatch)

	changed, err := f.memberships.ChangeTier(context.Background(), membership.ID,
		plan.TierFor(domain.DurationThreeMonth).ID)
	require.NoError(t, err)
	assert.Equal(t, plan.TierFor(domain.DurationThreeMonth).ID, changed.PricingTierID)
	assert.Equal(t, "2025-04-30", ymd(changed.EndDate))
}

func TestChangePlanResetsPaidMonths(t *testing.T) {
	f := newFixture(t, time.Date(2025, time.January, 16, 10, 0, 0, 0, time.UTC))
	member := f.seedMember("plan@example.com", "ID-7002")
	planA := f.seedPlan("Standard", map[domain.Duration]string{domain.DurationMonthly: "100.00"})
	planB := f.seedPlan("Premium", map[domain.Duration]string{domain.DurationSixMonth: "70.00"})

	membership := f.assign(&AssignMembershipInput{
		MemberID:      member.ID,
		PlanID:        planA.ID,
		PricingTierID: planA.TierFor(domain.DurationMonthly).ID,
		InitialStatus: string(domain.MembershipActive),
		AutoRenew:     true,
	})

	f.advanceTo(2025, time.February, 1)
	_, err := f.scheduler.TickRecurring(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, f.reloadMembership(membership.ID).PaidMonths)

	changed, err := f.memberships.ChangePlan(context.Background(), membership.ID,
		planB.ID, planB.TierFor(domain.DurationSixMonth).ID)
	require.NoError(t, err)
	assert.Equal(t, planB.ID, changed.PlanID)
	assert.Equal(t, 0, changed.PaidMonths)
	assert.Equal(t, "2025-07-31", ymd(changed.EndDate))
}

func TestPauseAndResume(t *testing.T) {
	f := newFixture(t, time.Date(2025, time.January, 16, 10, 0, 0, 0, time.UTC))
	member := f.seedMember("pause@example.com", "ID-8001")
	plan := f.seedPlan("Standard", map[domain.Duration]string{domain.DurationMonthly: "100.00"})

	membership := f.assign(&AssignMembershipInput{
		MemberID:      member.ID,
		PlanID:        plan.ID,
		PricingTierID: plan.TierFor(domain.DurationMonthly).ID,
		InitialStatus: string(domain.MembershipActive),
	})
	nextBilling := ymd(membership.NextBillingDate)

	paused, already, err := f.memberships.Pause(context.Background(), membership.ID)
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, domain.MembershipPaused, paused.Status)
	assert.False(t, f.reloadMember(member.ID).Active)

	// Pausing does not shift billing dates
	assert.Equal(t, nextBilling, ymd(paused.NextBillingDate))

	_, already, err = f.memberships.Pause(context.Background(), membership.ID)
	require.NoError(t, err)
	assert.True(t, already)

	resumed, already, err := f.memberships.Resume(context.Background(), membership.ID)
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, domain.MembershipActive, resumed.Status)
	assert.True(t, f.reloadMember(member.ID).Active)
}

func TestCancelInvoice(t *testing.T) {
	f := newFixture(t, time.Date(2025, time.January, 16, 10, 0, 0, 0, time.UTC))
	member := f.seedMember("void@example.com", "ID-9001")
	plan := f.seedPlan("Standard", map[domain.Duration]string{domain.DurationMonthly: "100.00"})

	membership := f.assign(&AssignMembershipInput{
		MemberID:      member.ID,
		PlanID:        plan.ID,
		PricingTierID: plan.TierFor(domain.DurationMonthly).ID,
	})

	invoices := f.invoicesFor(membership.ID)
	require.Len(t, invoices, 1)

	cancelled, already, err := f.payments.CancelInvoice(context.Background(), invoices[0].ID, "front desk error")
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, domain.InvoiceCancelled, cancelled.Status)
	assert.Empty(t, f.paymentsFor(membership.ID, domain.PaymentPending))

	// Paying against a cancelled invoice is rejected
	cancelledPayments := f.paymentsFor(membership.ID, domain.PaymentCancelled)
	require.Len(t, cancelledPayments, 1)
	_, _, err = f.payments.RecordOutcome(context.Background(), cancelledPayments[0].ID,
		&RecordOutcomeInput{Outcome: string(domain.OutcomePaid)})
	assert.ErrorIs(t, err, domain.ErrInvoiceCancelled)

	_, already, err = f.payments.CancelInvoice(context.Background(), invoices[0].ID, "")
	require.NoError(t, err)
	assert.True(t, already)
}

func TestCancelInvoiceWithSettledMoneyRejected(t *testing.T) {
	f := newFixture(t, time.Date(2025, time.January, 16, 10, 0, 0, 0, time.UTC))
	member := f.seedMember("settled@example.com", "ID-9002")
	plan := f.seedPlan("Standard", map[domain.Duration]string{domain.DurationMonthly: "100.00"})

	membership := f.assign(&AssignMembershipInput{
		MemberID:      member.ID,
		PlanID:        plan.ID,
		PricingTierID: plan.TierFor(domain.DurationMonthly).ID,
	})
	f.settle(membership.ID)

	invoices := f.invoicesFor(membership.ID)
	_, _, err := f.payments.CancelInvoice(context.Background(), invoices[0].ID, "too late")
	assert.ErrorIs(t, err, domain.ErrInvoiceAlreadyPaid)
}

func TestCancelFrozenMembershipVoidsOverdueInvoices(t *testing.T) {
	f := newFixture(t, time.Date(2025, time.January, 16, 10, 0, 0, 0, time.UTC))
	member := f.seedMember("debtor@example.com", "ID-6002")
	plan := f.seedPlan("Standard", map[domain.Duration]string{domain.DurationMonthly: "100.00"})

	membership := f.assign(&AssignMembershipInput{
		MemberID:      member.ID,
		PlanID:        plan.ID,
		PricingTierID: plan.TierFor(domain.DurationMonthly).ID,
		InitialStatus: string(domain.MembershipActive),
		AutoRenew:     true,
	})
	f.settle(membership.ID)

	f.advanceTo(2025, time.February, 1)
	_, err := f.scheduler.TickRecurring(context.Background())
	require.NoError(t, err)

	// February's charge bounces, then blows through the grace period
	pending := f.paymentsFor(membership.ID, domain.PaymentPending)
	require.Len(t, pending, 1)
	_, _, err = f.payments.RecordOutcome(context.Background(), pending[0].ID,
		&RecordOutcomeInput{Outcome: string(domain.OutcomeFailed)})
	require.NoError(t, err)

	f.advanceTo(2025, time.February, 7)
	summary, err := f.scheduler.TickOverdue(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, summary.MarkedOverdue)
	require.Equal(t, domain.MembershipFrozen, f.reloadMembership(membership.ID).Status)

	cancelled, already, err := f.memberships.Cancel(context.Background(), membership.ID,
		&CancelMembershipInput{Reason: "unpaid"})
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, domain.MembershipCancelled, cancelled.Status)

	// Cancellation leaves no invoice or payment in a live state: the overdue
	// invoice and the failed payment are voided, settled money stays settled
	for _, inv := range f.invoicesFor(membership.ID) {
		assert.Contains(t,
			[]domain.InvoiceStatus{domain.InvoicePaid, domain.InvoiceCancelled},
			inv.Status, "invoice %s", inv.InvoiceNumber)
	}
	assert.Empty(t, f.paymentsFor(membership.ID, domain.PaymentPending))
	assert.Empty(t, f.paymentsFor(membership.ID, domain.PaymentFailed))
	assert.Len(t, f.paymentsFor(membership.ID, domain.PaymentCancelled), 1)
	assert.Len(t, f.paymentsFor(membership.ID, domain.PaymentPaid), 1)
}

func TestRecordOutcomeByInvoice(t *testing.T) {
	f := newFixture(t, time.Date(2025, time.January, 16, 10, 0, 0, 0, time.UTC))
	member := f.seedMember("byinvoice@example.com", "ID-2004")
	plan := f.seedPlan("Standard", map[domain.Duration]string{domain.DurationMonthly: "100.00"})

	membership := f.assign(&AssignMembershipInput{
		MemberID:      member.ID,
		PlanID:        plan.ID,
		PricingTierID: plan.TierFor(domain.DurationMonthly).ID,
	})

	invoices := f.invoicesFor(membership.ID)
	require.Len(t, invoices, 1)

	paid, already, err := f.payments.RecordOutcomeForInvoice(context.Background(), invoices[0].ID,
		&RecordOutcomeInput{Outcome: string(domain.OutcomePaid)})
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, domain.PaymentPaid, paid.Status)
	assert.Equal(t, domain.MembershipActive, f.reloadMembership(membership.ID).Status)

	_, already, err = f.payments.RecordOutcomeForInvoice(context.Background(), invoices[0].ID,
		&RecordOutcomeInput{Outcome: string(domain.OutcomePaid)})
	require.NoError(t, err)
	assert.True(t, already)

	_, _, err = f.payments.RecordOutcomeForInvoice(context.Background(), "no-such-invoice",
		&RecordOutcomeInput{Outcome: string(domain.OutcomePaid)})
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}
