package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/iequus/iequus_backend/internal/api/http/handler"
)

func registerClientRoutes(app fiber.Router, h *handler.ClientHandler, authRequired fiber.Handler) {
	app.Get("/clients", authRequired, h.List)

	client := app.Group("/client", authRequired)
	client.Post("/", h.Create)

	one := client.Group("/:id")
	one.Get("/", h.Get)
	one.Put("/", h.Update)
	one.Delete("/", h.Delete)
	one.Get("/horses", h.Horses)
	one.Post("/horse", h.AddHorse)
	one.Put("/horse", h.SetOwner)
	one.Delete("/horse", h.RemoveHorse)
}
