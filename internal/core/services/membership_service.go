package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"gympulse/internal/adapters/persistence/models"
	"gympulse/internal/adapters/persistence/repositories"
	"gympulse/internal/core/domain"
)

const dateLayout = "2006-01-02"

// MembershipService handles membership lifecycle business logic
type MembershipService struct {
	txm       *repositories.TxManager
	lifecycle *LifecycleService
	builder   *InvoiceBuilder
	clock     domain.Clock
}

// NewMembershipService creates a new membership service
func NewMembershipService(txm *repositories.TxManager, lifecycle *LifecycleService, builder *InvoiceBuilder, clock domain.Clock) *MembershipService {
	return &MembershipService{
		txm:       txm,
		lifecycle: lifecycle,
		builder:   builder,
		clock:     clock,
	}
}

// AssignMembershipInput represents assign membership input
type AssignMembershipInput struct {
	MemberID         string                 `json:"member_id" validate:"required"`
	PlanID           string                 `json:"plan_id" validate:"required"`
	PricingTierID    string                 `json:"pricing_tier_id" validate:"required"`
	StartDate        string                 `json:"start_date,omitempty"`
	BillingStartDate string                 `json:"billing_start_date,omitempty"`
	AutoRenew        bool                   `json:"auto_renew"`
	InitialStatus    string                 `json:"initial_status,omitempty"`
	Tax              string                 `json:"tax,omitempty"`
	Discount         string                 `json:"discount,omitempty"`
	CustomFields     map[string]interface{} `json:"custom_fields,omitempty"`
}

// Assign creates a membership for a member, together with its prorated
// first-month invoice and pending payment. A member can hold at most one
// live membership at a time.
func (s *MembershipService) Assign(ctx context.Context, input *AssignMembershipInput) (*models.Membership, error) {
	ve := domain.NewValidationError()
	if input.MemberID == "" {
		ve.Add("member_id", "member_id is required")
	}
	if input.PlanID == "" {
		ve.Add("plan_id", "plan_id is required")
	}
	if input.PricingTierID == "" {
		ve.Add("pricing_tier_id", "pricing_tier_id is required")
	}

	startDate := domain.Today(s.clock)
	if input.StartDate != "" {
		parsed, err := time.ParseInLocation(dateLayout, input.StartDate, time.UTC)
		if err != nil {
			ve.Add("start_date", "start_date must be YYYY-MM-DD")
		} else {
			startDate = parsed
		}
	}

	// Billing defaults to starting with the membership itself; recurring
	// invoices begin on the first of the month after the billing start.
	billingStart := startDate
	if input.BillingStartDate != "" {
		parsed, err := time.ParseInLocation(dateLayout, input.BillingStartDate, time.UTC)
		if err != nil {
			ve.Add("billing_start_date", "billing_start_date must be YYYY-MM-DD")
		} else {
			billingStart = parsed
		}
	}

	tax := decimal.Zero
	if input.Tax != "" {
		parsed, err := decimal.NewFromString(input.Tax)
		if err != nil || parsed.IsNegative() {
			ve.Add("tax", "tax must be a non-negative decimal")
		} else {
			tax = parsed.Round(2)
		}
	}

	discount := decimal.Zero
	if input.Discount != "" {
		parsed, err := decimal.NewFromString(input.Discount)
		if err != nil || parsed.IsNegative() {
			ve.Add("discount", "discount must be a non-negative decimal")
		} else {
			discount = parsed.Round(2)
		}
	}

	initialStatus := domain.MembershipPending
	switch input.InitialStatus {
	case "", string(domain.MembershipPending):
	case string(domain.MembershipActive):
		initialStatus = domain.MembershipActive
	default:
		ve.Add("initial_status", "initial_status must be PENDING or ACTIVE")
	}

	if ve.Any() {
		return nil, ve
	}

	var created *models.Membership
	err := s.txm.WithTransaction(ctx, func(tx *gorm.DB) error {
		memberRepo := repositories.NewMemberRepository(tx)
		catalogRepo := repositories.NewCatalogRepository(tx)
		membershipRepo := repositories.NewMembershipRepository(tx)
		billingRepo := repositories.NewBillingRepository(tx)

		member, err := memberRepo.GetByID(ctx, input.MemberID)
		if err != nil {
			return err
		}

		plan, err := catalogRepo.GetPlanByID(ctx, input.PlanID)
		if err != nil {
			return err
		}
		if !plan.IsActive {
			return domain.ErrPlanInactive
		}

		tier, err := catalogRepo.GetTierByID(ctx, input.PricingTierID)
		if err != nil {
			return err
		}
		if tier.PlanID != plan.ID {
			return domain.ErrCatalogMismatch
		}

		// One live membership per member
		_, err = membershipRepo.FindLiveByMemberID(ctx, member.ID)
		if err == nil {
			return domain.ErrLiveMembershipExists
		}
		if !errors.Is(err, domain.ErrMembershipNotFound) {
			return err
		}

		prorated := domain.Prorate(tier.MonthlyPrice, startDate)
		if prorated.Add(tax).Sub(discount).IsNegative() {
			dve := domain.NewValidationError()
			dve.Add("discount", "discount exceeds the invoice amount")
			return dve
		}

		membership := &models.Membership{
			MemberID:         member.ID,
			PlanID:           plan.ID,
			PricingTierID:    tier.ID,
			Status:           domain.MembershipPending,
			StartDate:        startDate,
			EndDate:          domain.CommitmentEndDate(startDate, tier.Duration),
			BillingStartDate: billingStart,
			NextBillingDate:  domain.FirstDayOfNextMonth(billingStart),
			AutoRenew:        input.AutoRenew,
			PaidMonths:       0,
			ProratedAmount:   prorated,
		}
		if err := membershipRepo.Create(ctx, membership); err != nil {
			return err
		}

		invoice := s.builder.InitialInvoice(membership, tier.MonthlyPrice, tax, discount)
		if err := billingRepo.CreateInvoice(ctx, invoice); err != nil {
			return err
		}

		if initialStatus == domain.MembershipActive {
			if err := s.lifecycle.Apply(ctx, tx, membership, domain.MembershipActive); err != nil {
				return err
			}
		}

		if len(input.CustomFields) > 0 {
			if err := membershipRepo.MergeCustomFields(ctx, membership.ID, input.CustomFields); err != nil {
				return err
			}
		}

		created = membership
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, created.ID)
}

// CancelMembershipInput represents cancel membership input
type CancelMembershipInput struct {
	Reason        string `json:"reason" validate:"required"`
	EffectiveDate string `json:"effective_date,omitempty"`
}

// Cancel cancels a membership, voids its open invoices and pending payments
// and deactivates the member. Cancelling an already cancelled membership is
// reported via the alreadyCancelled flag, not as an error.
func (s *MembershipService) Cancel(ctx context.Context, membershipID string, input *CancelMembershipInput) (*models.Membership, bool, error) {
	ve := domain.NewValidationError()
	if input.Reason == "" {
		ve.Add("reason", "reason is required")
	}

	effective := domain.Today(s.clock)
	if input.EffectiveDate != "" {
		parsed, err := time.ParseInLocation(dateLayout, input.EffectiveDate, time.UTC)
		if err != nil {
			ve.Add("effective_date", "effective_date must be YYYY-MM-DD")
		} else {
			effective = parsed
		}
	}

	if ve.Any() {
		return nil, false, ve
	}

	alreadyCancelled := false
	err := s.txm.WithTransaction(ctx, func(tx *gorm.DB) error {
		membershipRepo := repositories.NewMembershipRepository(tx)
		billingRepo := repositories.NewBillingRepository(tx)

		membership, err := membershipRepo.GetByIDForUpdate(ctx, membershipID)
		if err != nil {
			return err
		}

		if membership.Status == domain.MembershipCancelled {
			alreadyCancelled = true
			return nil
		}
		if membership.Status == domain.MembershipExpired {
			return domain.ErrMembershipTerminal
		}

		if err := s.lifecycle.Apply(ctx, tx, membership, domain.MembershipCancelled); err != nil {
			return err
		}

		now := s.clock.Now()
		if err := membershipRepo.UpdateFields(ctx, membership.ID, map[string]interface{}{
			"cancellation_reason":    input.Reason,
			"cancelled_at":           now,
			"cancellation_effective": effective,
		}); err != nil {
			return err
		}

		if _, err := billingRepo.CancelOpenInvoices(ctx, membership.ID, "Membership cancelled"); err != nil {
			return err
		}
		if _, err := billingRepo.CancelOutstandingPayments(ctx, membership.ID); err != nil {
			return err
		}

		// Mirror into the custom-fields blob for dashboard history
		return membershipRepo.MergeCustomFields(ctx, membership.ID, map[string]interface{}{
			"cancellation": map[string]interface{}{
				"reason":         input.Reason,
				"cancelled_at":   now.Format(time.RFC3339),
				"effective_date": effective.Format(dateLayout),
			},
		})
	})
	if err != nil {
		return nil, false, err
	}

	membership, err := s.GetByID(ctx, membershipID)
	return membership, alreadyCancelled, err
}

// ChangeTier moves an active membership to another pricing tier of the same
// plan. The commitment end date is recomputed from the original start date
// with the new tier's duration.
func (s *MembershipService) ChangeTier(ctx context.Context, membershipID, newTierID string) (*models.Membership, error) {
	if newTierID == "" {
		ve := domain.NewValidationError()
		ve.Add("pricing_tier_id", "pricing_tier_id is required")
		return nil, ve
	}

	err := s.txm.WithTransaction(ctx, func(tx *gorm.DB) error {
		membershipRepo := repositories.NewMembershipRepository(tx)
		catalogRepo := repositories.NewCatalogRepository(tx)

		membership, err := membershipRepo.GetByIDForUpdate(ctx, membershipID)
		if err != nil {
			return err
		}
		if membership.Status.IsTerminal() {
			return domain.ErrMembershipTerminal
		}
		if membership.Status != domain.MembershipActive {
			return domain.ErrMembershipNotActive
		}

		tier, err := catalogRepo.GetTierByID(ctx, newTierID)
		if err != nil {
			return err
		}
		if tier.PlanID != membership.PlanID {
			return domain.ErrCatalogMismatch
		}

		newEnd := domain.LastDayOfMonth(domain.AddMonths(membership.StartDate, tier.Duration.Months()))
		if err := membershipRepo.UpdateFields(ctx, membership.ID, map[string]interface{}{
			"pricing_tier_id": tier.ID,
			"end_date":        newEnd,
		}); err != nil {
			return err
		}

		return membershipRepo.MergeCustomFields(ctx, membership.ID, map[string]interface{}{
			"last_tier_change": map[string]interface{}{
				"from":       membership.PricingTierID,
				"to":         tier.ID,
				"changed_at": s.clock.Now().Format(time.RFC3339),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, membershipID)
}

// ChangePlan moves an active membership to a different plan and tier. The
// paid-month counter restarts because the commitment is a new one.
func (s *MembershipService) ChangePlan(ctx context.Context, membershipID, newPlanID, newTierID string) (*models.Membership, error) {
	ve := domain.NewValidationError()
	if newPlanID == "" {
		ve.Add("plan_id", "plan_id is required")
	}
	if newTierID == "" {
		ve.Add("pricing_tier_id", "pricing_tier_id is required")
	}
	if ve.Any() {
		return nil, ve
	}

	err := s.txm.WithTransaction(ctx, func(tx *gorm.DB) error {
		membershipRepo := repositories.NewMembershipRepository(tx)
		catalogRepo := repositories.NewCatalogRepository(tx)

		membership, err := membershipRepo.GetByIDForUpdate(ctx, membershipID)
		if err != nil {
			return err
		}
		if membership.Status.IsTerminal() {
			return domain.ErrMembershipTerminal
		}
		if membership.Status != domain.MembershipActive {
			return domain.ErrMembershipNotActive
		}

		plan, err := catalogRepo.GetPlanByID(ctx, newPlanID)
		if err != nil {
			return err
		}
		if !plan.IsActive {
			return domain.ErrPlanInactive
		}

		tier, err := catalogRepo.GetTierByID(ctx, newTierID)
		if err != nil {
			return err
		}
		if tier.PlanID != plan.ID {
			return domain.ErrCatalogMismatch
		}

		newEnd := domain.LastDayOfMonth(domain.AddMonths(membership.StartDate, tier.Duration.Months()))
		if err := membershipRepo.UpdateFields(ctx, membership.ID, map[string]interface{}{
			"plan_id":         plan.ID,
			"pricing_tier_id": tier.ID,
			"end_date":        newEnd,
			"paid_months":     0,
		}); err != nil {
			return err
		}

		return membershipRepo.MergeCustomFields(ctx, membership.ID, map[string]interface{}{
			"last_plan_change": map[string]interface{}{
				"from_plan":  membership.PlanID,
				"to_plan":    plan.ID,
				"to_tier":    tier.ID,
				"changed_at": s.clock.Now().Format(time.RFC3339),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, membershipID)
}

// Pause suspends an active membership at the member's request. Billing dates
// are not shifted; the pause is a front-desk convenience, not a billing
// holiday.
func (s *MembershipService) Pause(ctx context.Context, membershipID string) (*models.Membership, bool, error) {
	alreadyPaused := false
	err := s.txm.WithTransaction(ctx, func(tx *gorm.DB) error {
		membershipRepo := repositories.NewMembershipRepository(tx)

		membership, err := membershipRepo.GetByIDForUpdate(ctx, membershipID)
		if err != nil {
			return err
		}
		if membership.Status == domain.MembershipPaused {
			alreadyPaused = true
			return nil
		}
		if membership.Status.IsTerminal() {
			return domain.ErrMembershipTerminal
		}
		if membership.Status != domain.MembershipActive {
			return domain.ErrMembershipNotActive
		}

		return s.lifecycle.Apply(ctx, tx, membership, domain.MembershipPaused)
	})
	if err != nil {
		return nil, false, err
	}

	membership, err := s.GetByID(ctx, membershipID)
	return membership, alreadyPaused, err
}

// Resume reactivates a paused membership
func (s *MembershipService) Resume(ctx context.Context, membershipID string) (*models.Membership, bool, error) {
	alreadyActive := false
	err := s.txm.WithTransaction(ctx, func(tx *gorm.DB) error {
		membershipRepo := repositories.NewMembershipRepository(tx)

		membership, err := membershipRepo.GetByIDForUpdate(ctx, membershipID)
		if err != nil {
			return err
		}
		if membership.Status == domain.MembershipActive {
			alreadyActive = true
			return nil
		}
		if membership.Status.IsTerminal() {
			return domain.ErrMembershipTerminal
		}
		if membership.Status != domain.MembershipPaused {
			return domain.ErrMembershipNotPaused
		}

		return s.lifecycle.Apply(ctx, tx, membership, domain.MembershipActive)
	})
	if err != nil {
		return nil, false, err
	}

	membership, err := s.GetByID(ctx, membershipID)
	return membership, alreadyActive, err
}

// GetByID gets a membership with its relations
func (s *MembershipService) GetByID(ctx context.Context, id string) (*models.Membership, error) {
	return repositories.NewMembershipRepository(s.txm.DB()).GetByID(ctx, id)
}

// List lists memberships with optional status and member filters
func (s *MembershipService) List(ctx context.Context, status *domain.MembershipStatus, memberID *string, offset, limit int) ([]*models.Membership, int64, error) {
	return repositories.NewMembershipRepository(s.txm.DB()).List(ctx, status, memberID, offset, limit)
}

// GetCustomFields returns the membership's custom-field blob
func (s *MembershipService) GetCustomFields(ctx context.Context, membershipID string) (map[string]interface{}, error) {
	repo := repositories.NewMembershipRepository(s.txm.DB())
	if _, err := repo.GetByID(ctx, membershipID); err != nil {
		return nil, err
	}
	return repo.GetCustomFields(ctx, membershipID)
}
