package middleware_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/zata-zhangtao/SideBySide/internal/domain"
	"github.com/zata-zhangtao/SideBySide/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", domain.NewNotFoundError("session not found"), fiber.StatusNotFound, "NOT_FOUND"},
		{"validation", domain.NewValidationError("bad ratio"), fiber.StatusBadRequest, "VALIDATION_ERROR"},
		{"parse", domain.NewParseError("broken CSV", nil), fiber.StatusBadRequest, "PARSE_ERROR"},
		{"permission", domain.NewPermissionError("not yours"), fiber.StatusForbidden, "PERMISSION_DENIED"},
		{"unauthorized", domain.NewUnauthorizedError("bad token"), fiber.StatusUnauthorized, "UNAUTHORIZED"},
		{"llm outage", domain.NewLLMServiceError(assert.AnError), fiber.StatusServiceUnavailable, "LLM_SERVICE_ERROR"},
		{"internal", domain.NewInternalError("boom", assert.AnError), fiber.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
			app.Get("/boom", func(c *fiber.Ctx) error {
				return tc.err
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)

			var body middleware.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.wantCode, body.Code)
			assert.Equal(t, tc.wantStatus, body.Status)
		})
	}

	t.Run("plain errors become 500", func(t *testing.T) {
		app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
		app.Get("/boom", func(c *fiber.Ctx) error {
			return assert.AnError
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	})
}
