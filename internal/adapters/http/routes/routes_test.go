package routes

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"gympulse/internal/adapters/persistence/models"
	"gympulse/internal/config"
	"gympulse/internal/pkg/jwt"
)

const testCronSecret = "cron-secret"

func newTestApp(t *testing.T) (*fiber.App, *config.Config) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// A pooled :memory: connection is a database of its own
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db))

	cfg := &config.Config{
		AppMode: "dev",
		JWT:     config.JWTConfig{Secret: "test-secret", AccessTokenMins: 60},
		Billing: config.BillingConfig{
			GraceDays:     5,
			TickBatchSize: 100,
			Currency:      "USD",
			CronSecret:    testCronSecret,
		},
	}

	app := fiber.New()
	Setup(app, db, cfg)
	return app, cfg
}

func TestCronTicksAreGetRoutes(t *testing.T) {
	app, _ := newTestApp(t)

	for _, path := range []string{
		"/api/v1/cron/tick-recurring",
		"/api/v1/cron/tick-overdue",
	} {
		req := httptest.NewRequest(fiber.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+testCronSecret)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, "GET %s", path)

		req = httptest.NewRequest(fiber.MethodPost, path, nil)
		req.Header.Set("Authorization", "Bearer "+testCronSecret)
		resp, err = app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusMethodNotAllowed, resp.StatusCode, "POST %s", path)
	}
}

func TestCronTicksRejectMissingSecret(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/cron/tick-recurring", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestInvoiceOutcomeRoute(t *testing.T) {
	app, cfg := newTestApp(t)

	token, err := jwt.GenerateAccessToken(1, "frontdesk", "STAFF", cfg.JWT.Secret, cfg.JWT.AccessTokenMins)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/invoices/no-such-invoice/outcome",
		strings.NewReader(`{"outcome":"PAID"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// The route sits behind staff auth
	resp, err = app.Test(httptest.NewRequest(fiber.MethodPost, "/api/v1/invoices/no-such-invoice/outcome", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
