package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"gympulse/internal/adapters/http/middleware"
	"gympulse/internal/adapters/http/routes"
	"gympulse/internal/adapters/persistence/models"
	"gympulse/internal/config"
	"gympulse/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// @title GymPulse Billing API
// @version 1.0
// @description Membership billing engine for the GymPulse staff dashboard

// @contact.name API Support
// @contact.email support@gympulse.fit

// @host api.gympulse.fit
// @BasePath /api/v1
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed plan catalog and default admin
	if err := config.SeedMasterData(db); err != nil {
		log.Printf("⚠️ Warning: Failed to seed master data: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "GymPulse Billing API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	schedulerService := routes.Setup(app, db, cfg)

	// Start the in-process daily billing tick unless an external scheduler
	// drives the /cron endpoints instead.
	if cfg.Billing.CronEnabled {
		cronService := services.NewCronService(schedulerService)
		if err := cronService.Start(); err != nil {
			log.Fatalf("❌ Failed to start cron scheduler: %v", err)
		}
		defer cronService.Stop()
	}

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
