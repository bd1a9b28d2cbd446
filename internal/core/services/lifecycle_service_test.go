package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"gympulse/internal/core/domain"
)

func TestCanTransition(t *testing.T) {
	s := NewLifecycleService()

	tests := []struct {
		from    domain.MembershipStatus
		to      domain.MembershipStatus
		allowed bool
	}{
		{domain.MembershipPending, domain.MembershipActive, true},
		{domain.MembershipPending, domain.MembershipCancelled, true},
		{domain.MembershipPending, domain.MembershipFrozen, false},
		{domain.MembershipPending, domain.MembershipPaused, false},
		{domain.MembershipPending, domain.MembershipExpired, false},

		{domain.MembershipActive, domain.MembershipFrozen, true},
		{domain.MembershipActive, domain.MembershipPaused, true},
		{domain.MembershipActive, domain.MembershipCancelled, true},
		{domain.MembershipActive, domain.MembershipExpired, true},
		{domain.MembershipActive, domain.MembershipPending, false},

		{domain.MembershipFrozen, domain.MembershipActive, true},
		{domain.MembershipFrozen, domain.MembershipCancelled, true},
		{domain.MembershipFrozen, domain.MembershipExpired, true},
		{domain.MembershipFrozen, domain.MembershipPaused, false},

		{domain.MembershipPaused, domain.MembershipActive, true},
		{domain.MembershipPaused, domain.MembershipCancelled, true},
		{domain.MembershipPaused, domain.MembershipFrozen, false},
		{domain.MembershipPaused, domain.MembershipExpired, false},

		// Terminal states allow nothing
		{domain.MembershipCancelled, domain.MembershipActive, false},
		{domain.MembershipCancelled, domain.MembershipPending, false},
		{domain.MembershipExpired, domain.MembershipActive, false},
		{domain.MembershipExpired, domain.MembershipCancelled, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, s.CanTransition(tt.from, tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestApplySyncsMemberActiveFlag(t *testing.T) {
	f := newFixture(t, time.Date(2025, time.January, 16, 10, 0, 0, 0, time.UTC))
	member := f.seedMember("flag@example.com", "ID-LC-1")
	plan := f.seedPlan("Standard", map[domain.Duration]string{domain.DurationMonthly: "100.00"})

	membership := f.assign(&AssignMembershipInput{
		MemberID:      member.ID,
		PlanID:        plan.ID,
		PricingTierID: plan.TierFor(domain.DurationMonthly).ID,
	})

	lifecycle := NewLifecycleService()

	err := f.txm.WithTransaction(context.Background(), func(tx *gorm.DB) error {
		return lifecycle.Apply(context.Background(), tx, membership, domain.MembershipActive)
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MembershipActive, membership.Status)
	assert.True(t, f.reloadMember(member.ID).Active)

	err = f.txm.WithTransaction(context.Background(), func(tx *gorm.DB) error {
		return lifecycle.Apply(context.Background(), tx, membership, domain.MembershipFrozen)
	})
	require.NoError(t, err)
	assert.False(t, f.reloadMember(member.ID).Active)
}

func TestApplyRejectsInvalidTransition(t *testing.T) {
	f := newFixture(t, time.Date(2025, time.January, 16, 10, 0, 0, 0, time.UTC))
	member := f.seedMember("bad@example.com", "ID-LC-2")
	plan := f.seedPlan("Standard", map[domain.Duration]string{domain.DurationMonthly: "100.00"})

	membership := f.assign(&AssignMembershipInput{
		MemberID:      member.ID,
		PlanID:        plan.ID,
		PricingTierID: plan.TierFor(domain.DurationMonthly).ID,
	})

	lifecycle := NewLifecycleService()
	err := f.txm.WithTransaction(context.Background(), func(tx *gorm.DB) error {
		return lifecycle.Apply(context.Background(), tx, membership, domain.MembershipFrozen)
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Same-status applications are silent no-ops
	err = f.txm.WithTransaction(context.Background(), func(tx *gorm.DB) error {
		return lifecycle.Apply(context.Background(), tx, membership, domain.MembershipPending)
	})
	assert.NoError(t, err)
}
