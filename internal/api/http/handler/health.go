package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/iequus/iequus_backend/internal/service/health"
)

type HealthHandler struct {
	svc health.Service
}

func NewHealthHandler(svc health.Service) *HealthHandler {
	return &HealthHandler{svc: svc}
}

// GET /health
func (h *HealthHandler) Check(c fiber.Ctx) error {
	report := h.svc.Check(c.Context())
	if !report.Healthy() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(report)
	}
	return ok(c, report)
}
