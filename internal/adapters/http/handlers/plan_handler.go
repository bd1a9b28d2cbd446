package handlers

import (
	"strconv"

	"gympulse/internal/adapters/persistence/models"
	"gympulse/internal/core/services"
	"gympulse/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PlanHandler handles plan catalog endpoints
type PlanHandler struct {
	catalogService *services.CatalogService
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(catalogService *services.CatalogService) *PlanHandler {
	return &PlanHandler{catalogService: catalogService}
}

// Create creates a plan
// @Summary Create plan
// @Description Create a catalog plan with its pricing tiers (Admin only)
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreatePlanInput true "Plan data"
// @Success 201 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /plans [post]
func (h *PlanHandler) Create(c *fiber.Ctx) error {
	var req services.CreatePlanInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	plan, err := h.catalogService.CreatePlan(c.Context(), &req)
	if err != nil {
		return handleDomainError(c, err)
	}

	return response.Created(c, "Plan created", plan.ToResponse())
}

// Get gets a plan with its tiers
// @Summary Get plan
// @Description Get a plan by ID with its pricing tiers
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /plans/{id} [get]
func (h *PlanHandler) Get(c *fiber.Ctx) error {
	plan, err := h.catalogService.GetPlan(c.Context(), c.Params("id"))
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "", plan.ToResponse())
}

// List lists catalog plans
// @Summary List plans
// @Description List catalog plans; active_only=true hides retired plans
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param active_only query bool false "Only active plans"
// @Success 200 {object} response.Response
// @Router /plans [get]
func (h *PlanHandler) List(c *fiber.Ctx) error {
	activeOnly, _ := strconv.ParseBool(c.Query("active_only", "false"))

	plans, err := h.catalogService.ListPlans(c.Context(), activeOnly)
	if err != nil {
		return handleDomainError(c, err)
	}

	data := make([]*models.PlanResponse, 0, len(plans))
	for _, p := range plans {
		data = append(data, p.ToResponse())
	}
	return response.Success(c, "", data)
}

// Update updates a plan
// @Summary Update plan
// @Description Apply a partial update to a plan (Admin only)
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param body body services.UpdatePlanInput true "Fields to update"
// @Success 200 {object} response.Response
// @Router /plans/{id} [put]
func (h *PlanHandler) Update(c *fiber.Ctx) error {
	var req services.UpdatePlanInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	plan, err := h.catalogService.UpdatePlan(c.Context(), c.Params("id"), &req)
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "Plan updated", plan.ToResponse())
}

// SetTier creates or reprices a pricing tier
// @Summary Set pricing tier
// @Description Create or reprice the tier for a duration class of a plan (Admin only)
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param body body services.TierInput true "Tier data"
// @Success 200 {object} response.Response
// @Router /plans/{id}/tiers [put]
func (h *PlanHandler) SetTier(c *fiber.Ctx) error {
	var req services.TierInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	plan, err := h.catalogService.SetTier(c.Context(), c.Params("id"), &req)
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "Tier saved", plan.ToResponse())
}

// Deactivate retires a plan from the catalog
// @Summary Deactivate plan
// @Description Retire a plan; existing memberships are unaffected (Admin only)
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 200 {object} response.Response
// @Router /plans/{id} [delete]
func (h *PlanHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.catalogService.DeactivatePlan(c.Context(), c.Params("id")); err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "Plan deactivated", nil)
}
