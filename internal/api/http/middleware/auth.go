package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/iequus/iequus_backend/internal/service/auth"
	"github.com/iequus/iequus_backend/pkg/reqctx"
)

// AuthRequired validates a Bearer access token and checks that its subject
// still exists. On success the veterinarian id is attached to the request
// context for handlers and services.
func AuthRequired(svc auth.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		h := c.Get(fiber.HeaderAuthorization)
		if h == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "malformed authorization header")
		}

		vetID, err := svc.Authenticate(c.Context(), strings.TrimSpace(parts[1]))
		if errors.Is(err, auth.ErrUnauthorized) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}
		if err != nil {
			return fmt.Errorf("authenticate: %w", err)
		}

		c.SetContext(reqctx.WithVeterinarianID(c.Context(), vetID))
		return c.Next()
	}
}
