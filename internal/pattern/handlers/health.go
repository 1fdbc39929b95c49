package handlers

import (
	"time"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Health Check Handlers
// ============================================================

type HealthHandler struct {
	started time.Time
	pattern *PatternHandler
}

func NewHealthHandler(pattern *PatternHandler) *HealthHandler {
	return &HealthHandler{started: time.Now(), pattern: pattern}
}

// Live проверяет, что процесс отвечает
func (h *HealthHandler) Live(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// Ready сообщает, что сервис принимает загрузки, и сколько их было
func (h *HealthHandler) Ready(c fiber.Ctx) error {
	if h.pattern == nil || h.pattern.builder == nil {
		return c.Status(503).JSON(fiber.Map{
			"status": "not ready",
		})
	}
	return c.JSON(fiber.Map{
		"status": "ready",
		"loads":  h.pattern.Loads(),
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}
