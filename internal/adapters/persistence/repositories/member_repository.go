package repositories

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"gympulse/internal/adapters/persistence/models"
	"gympulse/internal/core/domain"
)

// MemberRepository handles member data access
type MemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// Create creates a new member, mapping unique-index violations to the
// matching domain error.
func (r *MemberRepository) Create(ctx context.Context, member *models.Member) error {
	err := r.db.WithContext(ctx).Create(member).Error
	if err != nil && IsDuplicate(err) {
		return duplicateMemberError(err)
	}
	return err
}

// GetByID gets a member by ID
func (r *MemberRepository) GetByID(ctx context.Context, id string) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).First(&member, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrMemberNotFound
	}
	return &member, err
}

// GetByEmail gets a member by email
func (r *MemberRepository) GetByEmail(ctx context.Context, email string) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).First(&member, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrMemberNotFound
	}
	return &member, err
}

// List lists members with pagination; active filters on the derived flag
func (r *MemberRepository) List(ctx context.Context, active *bool, offset, limit int) ([]*models.Member, int64, error) {
	var members []*models.Member
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Member{})
	if active != nil {
		query = query.Where("active = ?", *active)
	}

	query.Count(&total)

	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&members).Error

	return members, total, err
}

// Update updates a member
func (r *MemberRepository) Update(ctx context.Context, member *models.Member) error {
	err := r.db.WithContext(ctx).Save(member).Error
	if err != nil && IsDuplicate(err) {
		return duplicateMemberError(err)
	}
	return err
}

// SetActive flips the derived active flag
func (r *MemberRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ?", id).
		Update("active", active).Error
}

// Delete removes a member row
func (r *MemberRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Member{}, "id = ?", id).Error
}

func duplicateMemberError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "id_number"):
		return domain.ErrDuplicateIDNumber
	case strings.Contains(msg, "email"):
		return domain.ErrDuplicateEmail
	}
	return domain.ErrDuplicateEntry
}

// StaffUserRepository handles staff user data access
type StaffUserRepository struct {
	db *gorm.DB
}

// NewStaffUserRepository creates a new staff user repository
func NewStaffUserRepository(db *gorm.DB) *StaffUserRepository {
	return &StaffUserRepository{db: db}
}

// Create creates a staff user
func (r *StaffUserRepository) Create(ctx context.Context, user *models.StaffUser) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if err != nil && IsDuplicate(err) {
		return domain.ErrStaffUserExists
	}
	return err
}

// GetByID gets a staff user by ID
func (r *StaffUserRepository) GetByID(ctx context.Context, id uint) (*models.StaffUser, error) {
	var user models.StaffUser
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrStaffUserNotFound
	}
	return &user, err
}

// GetByUsername gets a staff user by username
func (r *StaffUserRepository) GetByUsername(ctx context.Context, username string) (*models.StaffUser, error) {
	var user models.StaffUser
	err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrStaffUserNotFound
	}
	return &user, err
}

// ExistsByUsername checks if a username is taken
func (r *StaffUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.StaffUser{}).
		Where("username = ?", username).
		Count(&count).Error
	return count > 0, err
}
