package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iequus/iequus_backend/internal/service/auth"
	"github.com/iequus/iequus_backend/pkg/reqctx"
)

type fakeAuth struct {
	auth.Service
	tokens map[string]int64
}

func (f fakeAuth) Authenticate(_ context.Context, raw string) (int64, error) {
	if raw == "db-down" {
		return 0, errors.New("pq: connection refused")
	}
	if id, ok := f.tokens[raw]; ok {
		return id, nil
	}
	return 0, auth.ErrUnauthorized
}

func TestAuthRequired(t *testing.T) {
	app := fiber.New()
	app.Get("/me", AuthRequired(fakeAuth{tokens: map[string]int64{"good": 42}}), func(c fiber.Ctx) error {
		id, ok := reqctx.VeterinarianIDFromContext(c.Context())
		if !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.SendString(strconv.FormatInt(id, 10))
	})

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic Z29vZA==", fiber.StatusUnauthorized},
		{"unknown token", "Bearer nope", fiber.StatusUnauthorized},
		{"lookup failure", "Bearer db-down", fiber.StatusInternalServerError},
		{"valid token", "bearer good", fiber.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
			if tc.status == fiber.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, "42", string(body))
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString(c.Locals(LocalRequestID).(string))
	})

	t.Run("generated", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		id := resp.Header.Get(HeaderRequestID)
		assert.NotEmpty(t, id)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, id, string(body))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "abc-123")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "abc-123", resp.Header.Get(HeaderRequestID))
	})
}
