package handlers

import (
	"github.com/gofiber/fiber/v3"
)

// Register подключает health-пробы и маршруты паттерна.
func Register(app *fiber.App, pattern *PatternHandler, health *HealthHandler) {
	app.Get("/health/live", health.Live)
	app.Get("/health/ready", health.Ready)

	app.Post("/pattern", pattern.BuildPattern)
	app.Post("/pattern/settings/check", pattern.CheckSettings)
}
