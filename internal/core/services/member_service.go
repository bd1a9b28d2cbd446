package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"gympulse/internal/adapters/persistence/models"
	"gympulse/internal/adapters/persistence/repositories"
	"gympulse/internal/core/domain"
)

// MemberService handles member business logic
type MemberService struct {
	txm *repositories.TxManager
}

// NewMemberService creates a new member service
func NewMemberService(txm *repositories.TxManager) *MemberService {
	return &MemberService{txm: txm}
}

// CreateMemberInput represents create member input
type CreateMemberInput struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone,omitempty"`
	IDNumber     string `json:"id_number" validate:"required"`
	AddressLine1 string `json:"address_line1,omitempty"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	Country      string `json:"country,omitempty"`
}

// UpdateMemberInput represents update member input; nil fields are unchanged
type UpdateMemberInput struct {
	Name         *string `json:"name,omitempty"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	AddressLine1 *string `json:"address_line1,omitempty"`
	AddressLine2 *string `json:"address_line2,omitempty"`
	City         *string `json:"city,omitempty"`
	State        *string `json:"state,omitempty"`
	PostalCode   *string `json:"postal_code,omitempty"`
	Country      *string `json:"country,omitempty"`
}

func (in *CreateMemberInput) validate() error {
	ve := domain.NewValidationError()
	if strings.TrimSpace(in.Name) == "" {
		ve.Add("name", "name is required")
	}
	if !validEmail(in.Email) {
		ve.Add("email", "a valid email is required")
	}
	if strings.TrimSpace(in.IDNumber) == "" {
		ve.Add("id_number", "id_number is required")
	}
	if ve.Any() {
		return ve
	}
	return nil
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return false
	}
	return strings.Contains(email[at+1:], ".")
}

// Create registers a new member. New members start inactive; the active flag
// is derived from membership status.
func (s *MemberService) Create(ctx context.Context, input *CreateMemberInput) (*models.Member, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	member := &models.Member{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:        input.Phone,
		IDNumber:     strings.TrimSpace(input.IDNumber),
		AddressLine1: input.AddressLine1,
		AddressLine2: input.AddressLine2,
		City:         input.City,
		State:        input.State,
		PostalCode:   input.PostalCode,
		Country:      input.Country,
		Active:       false,
	}

	if err := repositories.NewMemberRepository(s.txm.DB()).Create(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// GetByID gets a member by ID
func (s *MemberService) GetByID(ctx context.Context, id string) (*models.Member, error) {
	return repositories.NewMemberRepository(s.txm.DB()).GetByID(ctx, id)
}

// List lists members with pagination
func (s *MemberService) List(ctx context.Context, active *bool, offset, limit int) ([]*models.Member, int64, error) {
	return repositories.NewMemberRepository(s.txm.DB()).List(ctx, active, offset, limit)
}

// Update applies a partial update to a member
func (s *MemberService) Update(ctx context.Context, id string, input *UpdateMemberInput) (*models.Member, error) {
	repo := repositories.NewMemberRepository(s.txm.DB())

	member, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			ve := domain.NewValidationError()
			ve.Add("name", "name must not be empty")
			return nil, ve
		}
		member.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		if !validEmail(*input.Email) {
			ve := domain.NewValidationError()
			ve.Add("email", "a valid email is required")
			return nil, ve
		}
		member.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Phone != nil {
		member.Phone = *input.Phone
	}
	if input.AddressLine1 != nil {
		member.AddressLine1 = *input.AddressLine1
	}
	if input.AddressLine2 != nil {
		member.AddressLine2 = *input.AddressLine2
	}
	if input.City != nil {
		member.City = *input.City
	}
	if input.State != nil {
		member.State = *input.State
	}
	if input.PostalCode != nil {
		member.PostalCode = *input.PostalCode
	}
	if input.Country != nil {
		member.Country = *input.Country
	}

	if err := repo.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// Delete removes a member. Members with a live membership or billing history
// cannot be deleted; cancel the membership first.
func (s *MemberService) Delete(ctx context.Context, id string) error {
	return s.txm.WithTransaction(ctx, func(tx *gorm.DB) error {
		memberRepo := repositories.NewMemberRepository(tx)
		membershipRepo := repositories.NewMembershipRepository(tx)
		billingRepo := repositories.NewBillingRepository(tx)

		if _, err := memberRepo.GetByID(ctx, id); err != nil {
			return err
		}

		_, err := membershipRepo.FindLiveByMemberID(ctx, id)
		if err == nil {
			return domain.ErrLiveMembershipExists
		}
		if !errors.Is(err, domain.ErrMembershipNotFound) {
			return err
		}

		count, err := billingRepo.CountNonCancelledInvoicesByMember(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrMemberHasInvoices
		}

		return memberRepo.Delete(ctx, id)
	})
}
