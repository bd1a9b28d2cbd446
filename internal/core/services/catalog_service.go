package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"gympulse/internal/adapters/persistence/models"
	"gympulse/internal/adapters/persistence/repositories"
	"gympulse/internal/core/domain"
)

// CatalogService handles plan catalog business logic
type CatalogService struct {
	txm *repositories.TxManager
}

// NewCatalogService creates a new catalog service
func NewCatalogService(txm *repositories.TxManager) *CatalogService {
	return &CatalogService{txm: txm}
}

// TierInput represents one pricing tier of a plan
type TierInput struct {
	Duration     string `json:"duration" validate:"required"`
	MonthlyPrice string `json:"monthly_price" validate:"required"`
}

// CreatePlanInput represents create plan input
type CreatePlanInput struct {
	Name        string      `json:"name" validate:"required"`
	Description string      `json:"description,omitempty"`
	Tiers       []TierInput `json:"pricing_tiers" validate:"required,min=1"`
}

// UpdatePlanInput represents update plan input; nil fields are unchanged
type UpdatePlanInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// CreatePlan creates a catalog plan with its pricing tiers
func (s *CatalogService) CreatePlan(ctx context.Context, input *CreatePlanInput) (*models.Plan, error) {
	ve := domain.NewValidationError()
	if strings.TrimSpace(input.Name) == "" {
		ve.Add("name", "name is required")
	}
	if len(input.Tiers) == 0 {
		ve.Add("pricing_tiers", "at least one pricing tier is required")
	}

	plan := &models.Plan{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		IsActive:    true,
	}

	seen := map[domain.Duration]bool{}
	for _, t := range input.Tiers {
		d := domain.Duration(t.Duration)
		if !d.Valid() {
			ve.Add("pricing_tiers", "unknown duration: "+t.Duration)
			continue
		}
		if seen[d] {
			ve.Add("pricing_tiers", "duplicate duration: "+t.Duration)
			continue
		}
		seen[d] = true

		monthly, err := decimal.NewFromString(t.MonthlyPrice)
		if err != nil || monthly.IsNegative() || monthly.IsZero() {
			ve.Add("pricing_tiers", "monthly_price must be a positive decimal")
			continue
		}
		monthly = monthly.Round(2)

		plan.PricingTiers = append(plan.PricingTiers, models.PricingTier{
			Duration:     d,
			MonthlyPrice: monthly,
			TotalPrice:   monthly.Mul(decimal.NewFromInt(int64(d.Months()))).Round(2),
		})
	}

	if ve.Any() {
		return nil, ve
	}

	repo := repositories.NewCatalogRepository(s.txm.DB())
	if err := repo.CreatePlan(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// GetPlan gets a plan with its tiers
func (s *CatalogService) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	return repositories.NewCatalogRepository(s.txm.DB()).GetPlanByID(ctx, id)
}

// ListPlans lists catalog plans
func (s *CatalogService) ListPlans(ctx context.Context, activeOnly bool) ([]*models.Plan, error) {
	return repositories.NewCatalogRepository(s.txm.DB()).ListPlans(ctx, activeOnly)
}

// UpdatePlan applies a partial update to a plan
func (s *CatalogService) UpdatePlan(ctx context.Context, id string, input *UpdatePlanInput) (*models.Plan, error) {
	repo := repositories.NewCatalogRepository(s.txm.DB())

	plan, err := repo.GetPlanByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			ve := domain.NewValidationError()
			ve.Add("name", "name must not be empty")
			return nil, ve
		}
		plan.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		plan.Description = *input.Description
	}
	if input.IsActive != nil {
		plan.IsActive = *input.IsActive
	}

	if err := repo.UpdatePlan(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// SetTier creates or reprices the tier for a (plan, duration) pair. Existing
// memberships keep billing at the price of the tier row, so a reprice applies
// to them from the next invoice on.
func (s *CatalogService) SetTier(ctx context.Context, planID string, input *TierInput) (*models.Plan, error) {
	ve := domain.NewValidationError()

	d := domain.Duration(input.Duration)
	if !d.Valid() {
		ve.Add("duration", "unknown duration: "+input.Duration)
	}

	monthly, err := decimal.NewFromString(input.MonthlyPrice)
	if err != nil || monthly.IsNegative() || monthly.IsZero() {
		ve.Add("monthly_price", "monthly_price must be a positive decimal")
	}

	if ve.Any() {
		return nil, ve
	}
	monthly = monthly.Round(2)

	repo := repositories.NewCatalogRepository(s.txm.DB())
	if _, err := repo.GetPlanByID(ctx, planID); err != nil {
		return nil, err
	}

	tier := &models.PricingTier{
		PlanID:       planID,
		Duration:     d,
		MonthlyPrice: monthly,
		TotalPrice:   monthly.Mul(decimal.NewFromInt(int64(d.Months()))).Round(2),
	}
	if err := repo.UpsertTier(ctx, tier); err != nil {
		return nil, err
	}

	return repo.GetPlanByID(ctx, planID)
}

// DeactivatePlan retires a plan from the catalog
func (s *CatalogService) DeactivatePlan(ctx context.Context, id string) error {
	return repositories.NewCatalogRepository(s.txm.DB()).DeactivatePlan(ctx, id)
}
