package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/iequus/iequus_backend/internal/api/http/handler"
)

func registerHospitalRoutes(app fiber.Router, h *handler.HospitalHandler, authRequired fiber.Handler) {
	// Public
	app.Get("/hospitals", h.List)
	app.Get("/hospital/:id", h.Get)

	app.Post("/hospital", authRequired, h.Create)
	app.Put("/hospital/:id", authRequired, h.Update)
	app.Get("/hospital/:id/veterinarians", authRequired, h.Members)
}
