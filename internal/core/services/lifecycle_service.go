package services

import (
	"context"

	"gorm.io/gorm"

	"gympulse/internal/adapters/persistence/models"
	"gympulse/internal/adapters/persistence/repositories"
	"gympulse/internal/core/domain"
)

// allowedTransitions is the membership state machine. CANCELLED and EXPIRED
// are terminal.
var allowedTransitions = map[domain.MembershipStatus][]domain.MembershipStatus{
	domain.MembershipPending: {
		domain.MembershipActive,
		domain.MembershipCancelled,
	},
	domain.MembershipActive: {
		domain.MembershipFrozen,
		domain.MembershipPaused,
		domain.MembershipCancelled,
		domain.MembershipExpired,
	},
	domain.MembershipFrozen: {
		domain.MembershipActive,
		domain.MembershipCancelled,
		domain.MembershipExpired,
	},
	domain.MembershipPaused: {
		domain.MembershipActive,
		domain.MembershipCancelled,
	},
}

// LifecycleService owns every membership status write. Status changes always
// go through Apply so the member's derived active flag can never drift.
type LifecycleService struct{}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService() *LifecycleService {
	return &LifecycleService{}
}

// CanTransition reports whether from → to is a legal status change
func (s *LifecycleService) CanTransition(from, to domain.MembershipStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Apply transitions the membership to the target status inside tx and syncs
// the member's active flag. The membership row must already be locked by the
// caller.
func (s *LifecycleService) Apply(ctx context.Context, tx *gorm.DB, membership *models.Membership, to domain.MembershipStatus) error {
	if membership.Status == to {
		return nil
	}
	if !s.CanTransition(membership.Status, to) {
		return domain.ErrInvalidTransition
	}

	membershipRepo := repositories.NewMembershipRepository(tx)
	if err := membershipRepo.UpdateFields(ctx, membership.ID, map[string]interface{}{
		"status": to,
	}); err != nil {
		return err
	}
	membership.Status = to

	// A member checks in only while their membership is ACTIVE
	memberRepo := repositories.NewMemberRepository(tx)
	return memberRepo.SetActive(ctx, membership.MemberID, to == domain.MembershipActive)
}
