package services

import (
	"context"

	"gympulse/internal/adapters/persistence/models"
	"gympulse/internal/adapters/persistence/repositories"
	"gympulse/internal/config"
	"gympulse/internal/core/domain"
	"gympulse/internal/pkg/jwt"
	"gympulse/internal/pkg/password"
)

// AuthService handles staff authentication
type AuthService struct {
	staffRepo *repositories.StaffUserRepository
	jwtConfig config.JWTConfig
}

// NewAuthService creates a new auth service
func NewAuthService(staffRepo *repositories.StaffUserRepository, jwtConfig config.JWTConfig) *AuthService {
	return &AuthService{
		staffRepo: staffRepo,
		jwtConfig: jwtConfig,
	}
}

// LoginInput represents login input
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult represents a successful login
type LoginResult struct {
	AccessToken string            `json:"access_token"`
	User        *models.StaffUser `json:"user"`
}

// Login authenticates a staff user and issues an access token
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginResult, error) {
	if input.Username == "" || input.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.staffRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		// Same error whether the user exists or not
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}
	if !password.Verify(input.Password, user.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := jwt.GenerateAccessToken(user.ID, user.Username, string(user.Role), s.jwtConfig.Secret, s.jwtConfig.AccessTokenMins)
	if err != nil {
		return nil, err
	}

	return &LoginResult{AccessToken: token, User: user}, nil
}

// CreateStaffInput represents create staff user input
type CreateStaffInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role,omitempty"`
}

// CreateStaff registers a new staff user (admin only at the route level)
func (s *AuthService) CreateStaff(ctx context.Context, input *CreateStaffInput) (*models.StaffUser, error) {
	ve := domain.NewValidationError()
	if input.Username == "" {
		ve.Add("username", "username is required")
	}
	if !validEmail(input.Email) {
		ve.Add("email", "a valid email is required")
	}
	if !password.ValidatePassword(input.Password) {
		ve.Add("password", "password must be at least 8 characters")
	}

	role := domain.RoleStaff
	switch input.Role {
	case "", string(domain.RoleStaff):
	case string(domain.RoleAdmin):
		role = domain.RoleAdmin
	default:
		ve.Add("role", "role must be STAFF or ADMIN")
	}

	if ve.Any() {
		return nil, ve
	}

	exists, err := s.staffRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrStaffUserExists
	}

	hash, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.StaffUser{
		Username: input.Username,
		Email:    input.Email,
		Password: hash,
		Role:     role,
		IsActive: true,
	}
	if err := s.staffRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetProfile returns the authenticated staff user
func (s *AuthService) GetProfile(ctx context.Context, userID uint) (*models.StaffUser, error) {
	return s.staffRepo.GetByID(ctx, userID)
}
