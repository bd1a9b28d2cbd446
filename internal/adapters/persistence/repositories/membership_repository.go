package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"gympulse/internal/adapters/persistence/models"
	"gympulse/internal/core/domain"
)

// MembershipRepository handles membership data access
type MembershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// Create creates a new membership
func (r *MembershipRepository) Create(ctx context.Context, membership *models.Membership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

// GetByID gets a membership with member, plan and tier loaded
func (r *MembershipRepository) GetByID(ctx context.Context, id string) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.WithContext(ctx).
		Preload("Member").
		Preload("Plan").
		Preload("PricingTier").
		First(&membership, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrMembershipNotFound
	}
	return &membership, err
}

// GetByIDForUpdate locks the membership row for the duration of the enclosing
// transaction, then loads its relations. Callers must run inside
// TxManager.WithTransaction.
func (r *MembershipRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Membership, error) {
	var membership models.Membership
	err := LockForUpdate(r.db.WithContext(ctx)).
		First(&membership, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrMembershipNotFound
	}
	if err != nil {
		return nil, err
	}

	var plan models.Plan
	err = r.db.WithContext(ctx).
		Preload("PricingTiers").
		First(&plan, "id = ?", membership.PlanID).Error
	if err != nil {
		return nil, err
	}
	membership.Plan = &plan

	var tier models.PricingTier
	err = r.db.WithContext(ctx).
		First(&tier, "id = ?", membership.PricingTierID).Error
	if err != nil {
		return nil, err
	}
	membership.PricingTier = &tier

	var member models.Member
	err = r.db.WithContext(ctx).
		First(&member, "id = ?", membership.MemberID).Error
	if err != nil {
		return nil, err
	}
	membership.Member = &member

	return &membership, nil
}

// FindLiveByMemberID returns the member's live membership (PENDING, ACTIVE,
// FROZEN or PAUSED), or ErrMembershipNotFound when there is none.
func (r *MembershipRepository) FindLiveByMemberID(ctx context.Context, memberID string) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND status IN ?", memberID, domain.LiveStatuses).
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrMembershipNotFound
	}
	return &membership, err
}

// List lists memberships with optional status and member filters
func (r *MembershipRepository) List(ctx context.Context, status *domain.MembershipStatus, memberID *string, offset, limit int) ([]*models.Membership, int64, error) {
	var memberships []*models.Membership
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Membership{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if memberID != nil {
		query = query.Where("member_id = ?", *memberID)
	}

	query.Count(&total)

	err := query.
		Preload("Member").
		Preload("Plan").
		Preload("PricingTier").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&memberships).Error

	return memberships, total, err
}

// DueForBilling returns ACTIVE memberships whose next billing date is on or
// before today, oldest first, capped at limit. Used by the recurring sweep.
func (r *MembershipRepository) DueForBilling(ctx context.Context, today time.Time, limit int) ([]*models.Membership, error) {
	var memberships []*models.Membership
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_billing_date <= ?", domain.MembershipActive, today).
		Order("next_billing_date ASC").
		Limit(limit).
		Find(&memberships).Error
	return memberships, err
}

// Update saves the full membership row
func (r *MembershipRepository) Update(ctx context.Context, membership *models.Membership) error {
	return r.db.WithContext(ctx).
		Omit("Member", "Plan", "PricingTier", "Invoices", "Payments", "Custom").
		Save(membership).Error
}

// UpdateFields applies a partial update to a membership row
func (r *MembershipRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// MergeCustomFields merges patch into the membership's custom-field blob,
// creating the blob row on first write. Existing keys not present in patch
// are preserved.
func (r *MembershipRepository) MergeCustomFields(ctx context.Context, membershipID string, patch map[string]interface{}) error {
	var blob models.CustomFieldBlob
	err := r.db.WithContext(ctx).
		First(&blob, "membership_id = ?", membershipID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		blob = models.CustomFieldBlob{
			MembershipID: membershipID,
			Data:         patch,
		}
		return r.db.WithContext(ctx).Create(&blob).Error
	}
	if err != nil {
		return err
	}

	if blob.Data == nil {
		blob.Data = map[string]interface{}{}
	}
	for k, v := range patch {
		blob.Data[k] = v
	}
	return r.db.WithContext(ctx).Save(&blob).Error
}

// GetCustomFields returns the membership's custom-field blob data, empty map
// when no blob exists yet.
func (r *MembershipRepository) GetCustomFields(ctx context.Context, membershipID string) (map[string]interface{}, error) {
	var blob models.CustomFieldBlob
	err := r.db.WithContext(ctx).
		First(&blob, "membership_id = ?", membershipID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return map[string]interface{}{}, nil
	}
	if err != nil {
		return nil, err
	}
	return blob.Data, nil
}

// CountByStatus returns membership counts grouped by status
func (r *MembershipRepository) CountByStatus(ctx context.Context) (map[domain.MembershipStatus]int64, error) {
	type row struct {
		Status domain.MembershipStatus
		Count  int64
	}
	var rows []row

	err := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.MembershipStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
