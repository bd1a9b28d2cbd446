package handlers

import (
	"strconv"

	"gympulse/internal/adapters/persistence/models"
	"gympulse/internal/core/services"
	"gympulse/internal/pkg/pagination"
	"gympulse/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MemberHandler handles member endpoints
type MemberHandler struct {
	memberService *services.MemberService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *services.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// Create registers a new member
// @Summary Create member
// @Description Register a new gym member
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateMemberInput true "Member data"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /members [post]
func (h *MemberHandler) Create(c *fiber.Ctx) error {
	var req services.CreateMemberInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.memberService.Create(c.Context(), &req)
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Created(c, "Member created", member.ToResponse())
}

// Get gets a member by ID
// @Summary Get member
// @Description Get a member by ID
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id} [get]
func (h *MemberHandler) Get(c *fiber.Ctx) error {
	member, err := h.memberService.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "", member.ToResponse())
}

// List lists members
// @Summary List members
// @Description List members with pagination; filter by active flag
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param active query bool false "Filter by active flag"
// @Success 200 {object} pagination.Response
// @Router /members [get]
func (h *MemberHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	var active *bool
	if raw := c.Query("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return response.BadRequest(c, "active must be true or false")
		}
		active = &parsed
	}

	members, total, err := h.memberService.List(c.Context(), active, params.Offset, params.Limit)
	if err != nil {
		return handleDomainError(c, err)
	}

	data := make([]*models.MemberResponse, 0, len(members))
	for _, m := range members {
		data = append(data, m.ToResponse())
	}

	return c.JSON(pagination.NewResponse(data, params, total))
}

// Update updates a member
// @Summary Update member
// @Description Apply a partial update to a member
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Param body body services.UpdateMemberInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id} [put]
func (h *MemberHandler) Update(c *fiber.Ctx) error {
	var req services.UpdateMemberInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.memberService.Update(c.Context(), c.Params("id"), &req)
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Member updated", member.ToResponse())
}

// Delete removes a member without billing history
// @Summary Delete member
// @Description Delete a member; blocked while a live membership or billing history exists (Admin only)
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /members/{id} [delete]
func (h *MemberHandler) Delete(c *fiber.Ctx) error {
	if err := h.memberService.Delete(c.Context(), c.Params("id")); err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "Member deleted", nil)
}
