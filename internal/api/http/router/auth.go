package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/iequus/iequus_backend/internal/api/http/handler"
)

func registerAuthRoutes(app fiber.Router, h *handler.AuthHandler, authRequired fiber.Handler) {
	app.Post("/register", h.Register)
	app.Post("/login", h.Login)
	app.Post("/change-password", authRequired, h.ChangePassword)
}
