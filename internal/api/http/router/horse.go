package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/iequus/iequus_backend/internal/api/http/handler"
)

func registerHorseRoutes(app fiber.Router, h *handler.HorseHandler, authRequired fiber.Handler) {
	app.Get("/horses", authRequired, h.List)

	horse := app.Group("/horse", authRequired)
	horse.Post("/", h.Create)

	one := horse.Group("/:id")
	one.Get("/", h.Get)
	one.Put("/", h.Update)
	one.Delete("/", h.Delete)
	one.Get("/clients", h.Clients)
	one.Get("/measures/export", h.ExportMeasures)
}
