package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/iequus/iequus_backend/internal/api/http/handler"
)

func registerAppointmentRoutes(app fiber.Router, h *handler.AppointmentHandler, authRequired fiber.Handler) {
	appts := app.Group("/appointments", authRequired)
	appts.Get("/", h.List)
	appts.Get("/horse/:horseId", h.ListByHorse)

	appt := app.Group("/appointment", authRequired)
	appt.Post("/", h.Create)
	appt.Get("/:id", h.Get)
	appt.Put("/:id", h.Update)
	appt.Delete("/:id", h.Delete)
}
