package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/iequus/iequus_backend/internal/api/http/handler"
)

func registerMeasureRoutes(app fiber.Router, h *handler.MeasureHandler, authRequired fiber.Handler) {
	measures := app.Group("/measures", authRequired)
	measures.Get("/", h.List)
	measures.Get("/horse/:horseId", h.ListByHorse)
	measures.Get("/appointment/:appointmentId", h.ListByAppointment)

	m := app.Group("/measure", authRequired)
	m.Post("/", h.Create)
	m.Get("/:id", h.Get)
	m.Put("/:id", h.Update)
	m.Delete("/:id", h.Delete)
}
