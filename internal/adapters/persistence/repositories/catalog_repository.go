package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"gympulse/internal/adapters/persistence/models"
	"gympulse/internal/core/domain"
)

// CatalogRepository handles plan and pricing tier data access
type CatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// CreatePlan creates a plan together with its pricing tiers
func (r *CatalogRepository) CreatePlan(ctx context.Context, plan *models.Plan) error {
	err := r.db.WithContext(ctx).Create(plan).Error
	if err != nil && IsDuplicate(err) {
		return domain.ErrDuplicateEntry
	}
	return err
}

// GetPlanByID gets a plan with its pricing tiers
func (r *CatalogRepository) GetPlanByID(ctx context.Context, id string) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.WithContext(ctx).
		Preload("PricingTiers").
		First(&plan, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrPlanNotFound
	}
	return &plan, err
}

// GetPlanByName gets a plan by its unique name
func (r *CatalogRepository) GetPlanByName(ctx context.Context, name string) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.WithContext(ctx).
		Preload("PricingTiers").
		First(&plan, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrPlanNotFound
	}
	return &plan, err
}

// ListPlans lists plans, optionally only active ones
func (r *CatalogRepository) ListPlans(ctx context.Context, activeOnly bool) ([]*models.Plan, error) {
	var plans []*models.Plan

	query := r.db.WithContext(ctx).Preload("PricingTiers")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	err := query.Order("name ASC").Find(&plans).Error
	return plans, err
}

// UpdatePlan updates plan attributes (not tiers)
func (r *CatalogRepository) UpdatePlan(ctx context.Context, plan *models.Plan) error {
	err := r.db.WithContext(ctx).Omit("PricingTiers").Save(plan).Error
	if err != nil && IsDuplicate(err) {
		return domain.ErrDuplicateEntry
	}
	return err
}

// DeactivatePlan soft-retires a plan from the catalog; existing memberships
// on it are unaffected.
func (r *CatalogRepository) DeactivatePlan(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Plan{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrPlanNotFound
	}
	return nil
}

// GetTierByID gets a pricing tier with its parent plan
func (r *CatalogRepository) GetTierByID(ctx context.Context, id string) (*models.PricingTier, error) {
	var tier models.PricingTier
	err := r.db.WithContext(ctx).
		Preload("Plan").
		First(&tier, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTierNotFound
	}
	return &tier, err
}

// UpsertTier creates or replaces the tier for a (plan, duration) pair
func (r *CatalogRepository) UpsertTier(ctx context.Context, tier *models.PricingTier) error {
	var existing models.PricingTier
	err := r.db.WithContext(ctx).
		First(&existing, "plan_id = ? AND duration = ?", tier.PlanID, tier.Duration).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(tier).Error
	}
	if err != nil {
		return err
	}

	existing.MonthlyPrice = tier.MonthlyPrice
	existing.TotalPrice = tier.TotalPrice
	tier.ID = existing.ID
	return r.db.WithContext(ctx).Save(&existing).Error
}

// CountPlans returns the number of plans in the catalog
func (r *CatalogRepository) CountPlans(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Plan{}).Count(&count).Error
	return count, err
}
