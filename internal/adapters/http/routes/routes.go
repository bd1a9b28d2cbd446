package routes

import (
	"gympulse/internal/adapters/http/handlers"
	"gympulse/internal/adapters/http/middleware"
	"gympulse/internal/adapters/persistence/repositories"
	"gympulse/internal/config"
	"gympulse/internal/core/domain"
	"gympulse/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup configures all routes for the application and returns the scheduler
// service so the cron runner can share it.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) *services.SchedulerService {
	clock := domain.RealClock{}

	// Initialize transaction manager and standalone repositories
	txm := repositories.NewTxManager(db)
	staffRepo := repositories.NewStaffUserRepository(db)

	// Initialize services
	lifecycle := services.NewLifecycleService()
	builder := services.NewInvoiceBuilder(clock, cfg.Billing.Currency)

	authService := services.NewAuthService(staffRepo, cfg.JWT)
	memberService := services.NewMemberService(txm)
	catalogService := services.NewCatalogService(txm)
	membershipService := services.NewMembershipService(txm, lifecycle, builder, clock)
	paymentService := services.NewPaymentService(txm, lifecycle, clock)
	schedulerService := services.NewSchedulerService(txm, lifecycle, builder, clock,
		cfg.Billing.GraceDays, cfg.Billing.TickBatchSize)
	dashboardService := services.NewDashboardService(txm, clock)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService)
	memberHandler := handlers.NewMemberHandler(memberService)
	planHandler := handlers.NewPlanHandler(catalogService)
	membershipHandler := handlers.NewMembershipHandler(membershipService)
	billingHandler := handlers.NewBillingHandler(paymentService)
	cronHandler := handlers.NewCronHandler(schedulerService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Auth routes
	auth := apiV1.Group("/auth")
	auth.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	auth.Get("/me", middleware.AuthMiddleware(cfg), authHandler.Profile)
	auth.Post("/staff", middleware.AuthMiddleware(cfg), middleware.AdminOnly(), authHandler.CreateStaff)

	// Staff routes (STAFF or ADMIN)
	staff := apiV1.Group("", middleware.AuthMiddleware(cfg), middleware.StaffOrAdmin())

	// Members
	staff.Post("/members", memberHandler.Create)
	staff.Get("/members", memberHandler.List)
	staff.Get("/members/:id", memberHandler.Get)
	staff.Put("/members/:id", memberHandler.Update)
	staff.Delete("/members/:id", middleware.AdminOnly(), memberHandler.Delete)

	// Plan catalog
	staff.Get("/plans", planHandler.List)
	staff.Get("/plans/:id", planHandler.Get)
	staff.Post("/plans", middleware.AdminOnly(), planHandler.Create)
	staff.Put("/plans/:id", middleware.AdminOnly(), planHandler.Update)
	staff.Put("/plans/:id/tiers", middleware.AdminOnly(), planHandler.SetTier)
	staff.Delete("/plans/:id", middleware.AdminOnly(), planHandler.Deactivate)

	// Memberships
	staff.Post("/memberships", membershipHandler.Assign)
	staff.Get("/memberships", membershipHandler.List)
	staff.Get("/memberships/:id", membershipHandler.Get)
	staff.Post("/memberships/:id/cancel", membershipHandler.Cancel)
	staff.Put("/memberships/:id/tier", membershipHandler.ChangeTier)
	staff.Put("/memberships/:id/plan", membershipHandler.ChangePlan)
	staff.Post("/memberships/:id/pause", membershipHandler.Pause)
	staff.Post("/memberships/:id/resume", membershipHandler.Resume)
	staff.Get("/memberships/:id/custom-fields", membershipHandler.CustomFields)

	// Billing
	staff.Get("/invoices", billingHandler.ListInvoices)
	staff.Get("/invoices/:id", billingHandler.GetInvoice)
	staff.Post("/invoices/:id/cancel", billingHandler.CancelInvoice)
	staff.Post("/invoices/:id/outcome", billingHandler.RecordInvoiceOutcome)
	staff.Get("/payments", billingHandler.ListPayments)
	staff.Get("/payments/:id", billingHandler.GetPayment)
	staff.Post("/payments/:id/outcome", billingHandler.RecordOutcome)

	// Dashboard
	staff.Get("/dashboard/stats", dashboardHandler.Stats)

	// Cron routes (shared-secret auth for external schedulers)
	cron := apiV1.Group("/cron", middleware.CronAuth(cfg))
	cron.Get("/tick-recurring", cronHandler.TickRecurring)
	cron.Get("/tick-overdue", cronHandler.TickOverdue)

	return schedulerService
}
