package handlers

import (
	"gympulse/internal/core/services"
	"gympulse/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles staff authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login authenticates a staff user
// @Summary Staff login
// @Description Authenticate with username and password, returns a JWT
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Credentials"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.authService.Login(c.Context(), &req)
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Login successful", fiber.Map{
		"access_token": result.AccessToken,
		"user": fiber.Map{
			"id":       result.User.ID,
			"username": result.User.Username,
			"email":    result.User.Email,
			"role":     result.User.Role,
		},
	})
}

// CreateStaff registers a new staff user
// @Summary Create staff user
// @Description Register a new staff account (Admin only)
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateStaffInput true "Staff data"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/staff [post]
func (h *AuthHandler) CreateStaff(c *fiber.Ctx) error {
	var req services.CreateStaffInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.authService.CreateStaff(c.Context(), &req)
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Created(c, "Staff user created", fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	})
}

// Profile returns the authenticated staff user
// @Summary Get profile
// @Description Get the authenticated staff user's profile
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)

	user, err := h.authService.GetProfile(c.Context(), userID)
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "", fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	})
}
