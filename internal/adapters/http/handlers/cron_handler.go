package handlers

import (
	"gympulse/internal/core/services"
	"gympulse/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CronHandler exposes the billing ticks to an external scheduler. Routes are
// guarded by the cron bearer secret, not a staff session.
type CronHandler struct {
	schedulerService *services.SchedulerService
}

// NewCronHandler creates a new cron handler
func NewCronHandler(schedulerService *services.SchedulerService) *CronHandler {
	return &CronHandler{schedulerService: schedulerService}
}

// TickRecurring runs the recurring billing sweep
// @Summary Run recurring tick
// @Description Issue monthly invoices for memberships whose billing date has arrived. Safe to re-run.
// @Tags Cron
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /cron/tick-recurring [get]
func (h *CronHandler) TickRecurring(c *fiber.Ctx) error {
	summary, err := h.schedulerService.TickRecurring(c.Context())
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "Recurring tick complete", summary)
}

// TickOverdue runs the overdue sweep
// @Summary Run overdue tick
// @Description Mark invoices past the grace period as overdue and freeze their memberships. Safe to re-run.
// @Tags Cron
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /cron/tick-overdue [get]
func (h *CronHandler) TickOverdue(c *fiber.Ctx) error {
	summary, err := h.schedulerService.TickOverdue(c.Context())
	if err != nil {
		return handleDomainError(c, err)
	}
	return response.Success(c, "Overdue tick complete", summary)
}
