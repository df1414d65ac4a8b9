package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/RenewalHub/RenewalHub/app/controllers"
	"github.com/RenewalHub/RenewalHub/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1")

	// Scan triggers, authorized by the shared cron secret.
	cron := v1.Group("/cron", middleware.CronAuthMiddleware())
	cron.Get("/renewal-scan", controllers.HandleRenewalScan)
	cron.Get("/weekly-digest", controllers.HandleWeeklyDigest)

	// Tenant settings and ledger inspection.
	tenants := v1.Group("/tenants")
	tenants.Put("/:id/settings", controllers.HandleUpsertSettings)
	tenants.Get("/:id/notifications", controllers.HandleListNotifications)
	tenants.Delete("/:id/notifications/today", middleware.CronAuthMiddleware(), controllers.HandleResetToday)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
