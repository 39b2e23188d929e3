package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/iequus/iequus_backend/internal/api/http/handler"
)

func registerVeterinarianRoutes(app fiber.Router, h *handler.VeterinarianHandler, authRequired fiber.Handler) {
	app.Get("/veterinarians", authRequired, h.List)

	vet := app.Group("/veterinarian", authRequired)
	vet.Get("/", h.Me)
	vet.Get("/:id", h.Get)
	vet.Put("/:id", h.Update)
	vet.Delete("/:id", h.Delete)
}
