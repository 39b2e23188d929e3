package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"
)

const msgNoChanges = "No fields provided or values unchanged."

func ok(c fiber.Ctx, data any) error {
	return c.JSON(data)
}

func created(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

func message(c fiber.Ctx, msg string) error {
	return c.JSON(fiber.Map{"message": msg})
}

func noChanges(c fiber.Ctx) error {
	return message(c, msgNoChanges)
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func unauthorized(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
}

func notFound(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msg})
}

func conflict(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": msg})
}

func tooManyRequests(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": msg})
}

// internalError logs err with the request context and hides it from the client.
func internalError(c fiber.Ctx, err error) error {
	slog.ErrorContext(c.Context(), "request failed",
		"method", c.Method(),
		"path", c.Path(),
		"error", err,
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}
