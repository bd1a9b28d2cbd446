package handlers

import (
	"gympulse/internal/adapters/persistence/models"
	"gympulse/internal/core/domain"
	"gympulse/internal/core/services"
	"gympulse/internal/pkg/pagination"
	"gympulse/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MembershipHandler handles membership lifecycle endpoints
type MembershipHandler struct {
	membershipService *services.MembershipService
}

// NewMembershipHandler creates a new membership handler
func NewMembershipHandler(membershipService *services.MembershipService) *MembershipHandler {
	return &MembershipHandler{membershipService: membershipService}
}

// Assign assigns a membership to a member
// @Summary Assign membership
// @Description Create a membership with its prorated first invoice and pending payment
// @Tags Memberships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.AssignMembershipInput true "Assignment data"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /memberships [post]
func (h *MembershipHandler) Assign(c *fiber.Ctx) error {
	var req services.AssignMembershipInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	membership, err := h.membershipService.Assign(c.Context(), &req)
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Created(c, "Membership assigned", membership.ToResponse())
}

// Get gets a membership
// @Summary Get membership
// @Description Get a membership by ID
// @Tags Memberships
// @Produce json
// @Security BearerAuth
// @Param id path string true "Membership ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /memberships/{id} [get]
func (h *MembershipHandler) Get(c *fiber.Ctx) error {
	membership, err := h.membershipService.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "", membership.ToResponse())
}

// List lists memberships
// @Summary List memberships
// @Description List memberships; filter by status and member
// @Tags Memberships
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param status query string false "Membership status"
// @Param member_id query string false "Member ID"
// @Success 200 {object} pagination.Response
// @Router /memberships [get]
func (h *MembershipHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	var status *domain.MembershipStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.MembershipStatus(raw)
		status = &s
	}

	var memberID *string
	if raw := c.Query("member_id"); raw != "" {
		memberID = &raw
	}

	memberships, total, err := h.membershipService.List(c.Context(), status, memberID, params.Offset, params.Limit)
	if err != nil {
		return handleDomainError(c, err)
	}

	data := make([]*models.MembershipResponse, 0, len(memberships))
	for _, m := range memberships {
		data = append(data, m.ToResponse())
	}
	return c.JSON(pagination.NewResponse(data, params, total))
}

// Cancel cancels a membership
// @Summary Cancel membership
// @Description Cancel a membership, voiding open invoices and pending payments. Repeating the call is a no-op.
// @Tags Memberships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Membership ID"
// @Param body body services.CancelMembershipInput true "Cancellation data"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /memberships/{id}/cancel [post]
func (h *MembershipHandler) Cancel(c *fiber.Ctx) error {
	var req services.CancelMembershipInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	membership, alreadyCancelled, err := h.membershipService.Cancel(c.Context(), c.Params("id"), &req)
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Membership cancelled", fiber.Map{
		"membership":      membership.ToResponse(),
		"already_applied": alreadyCancelled,
	})
}

// ChangeTierRequest represents change tier request
type ChangeTierRequest struct {
	PricingTierID string `json:"pricing_tier_id"`
}

// ChangeTier moves a membership to another tier of its plan
// @Summary Change pricing tier
// @Description Move an active membership to another pricing tier of the same plan
// @Tags Memberships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Membership ID"
// @Param body body ChangeTierRequest true "New tier"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /memberships/{id}/tier [put]
func (h *MembershipHandler) ChangeTier(c *fiber.Ctx) error {
	var req ChangeTierRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	membership, err := h.membershipService.ChangeTier(c.Context(), c.Params("id"), req.PricingTierID)
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "Pricing tier changed", membership.ToResponse())
}

// ChangePlanRequest represents change plan request
type ChangePlanRequest struct {
	PlanID        string `json:"plan_id"`
	PricingTierID string `json:"pricing_tier_id"`
}

// ChangePlan moves a membership to a different plan
// @Summary Change plan
// @Description Move an active membership to a different plan and tier
// @Tags Memberships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Membership ID"
// @Param body body ChangePlanRequest true "New plan and tier"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /memberships/{id}/plan [put]
func (h *MembershipHandler) ChangePlan(c *fiber.Ctx) error {
	var req ChangePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	membership, err := h.membershipService.ChangePlan(c.Context(), c.Params("id"), req.PlanID, req.PricingTierID)
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "Plan changed", membership.ToResponse())
}

// Pause suspends an active membership
// @Summary Pause membership
// @Description Suspend an active membership. Repeating the call is a no-op.
// @Tags Memberships
// @Produce json
// @Security BearerAuth
// @Param id path string true "Membership ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /memberships/{id}/pause [post]
func (h *MembershipHandler) Pause(c *fiber.Ctx) error {
	membership, alreadyPaused, err := h.membershipService.Pause(c.Context(), c.Params("id"))
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Membership paused", fiber.Map{
		"membership":      membership.ToResponse(),
		"already_applied": alreadyPaused,
	})
}

// Resume reactivates a paused membership
// @Summary Resume membership
// @Description Reactivate a paused membership. Repeating the call is a no-op.
// @Tags Memberships
// @Produce json
// @Security BearerAuth
// @Param id path string true "Membership ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /memberships/{id}/resume [post]
func (h *MembershipHandler) Resume(c *fiber.Ctx) error {
	membership, alreadyActive, err := h.membershipService.Resume(c.Context(), c.Params("id"))
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Success(c, "Membership resumed", fiber.Map{
		"membership":      membership.ToResponse(),
		"already_applied": alreadyActive,
	})
}

// CustomFields returns the membership's custom-field blob
// @Summary Get custom fields
// @Description Get the opaque custom-field blob of a membership
// @Tags Memberships
// @Produce json
// @Security BearerAuth
// @Param id path string true "Membership ID"
// @Success 200 {object} response.Response
// @Router /memberships/{id}/custom-fields [get]
func (h *MembershipHandler) CustomFields(c *fiber.Ctx) error {
	fields, err := h.membershipService.GetCustomFields(c.Context(), c.Params("id"))
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "", fields)
}
