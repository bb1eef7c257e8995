package middleware_test

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/zata-zhangtao/SideBySide/internal/domain"
	"github.com/zata-zhangtao/SideBySide/internal/dto"
	"github.com/zata-zhangtao/SideBySide/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAuthService satisfies service.AuthService; only ValidateToken is
// reachable from the middleware.
type stubAuthService struct {
	claims *dto.AuthClaims
	err    error
}

func (s *stubAuthService) Register(context.Context, *dto.RegisterRequest) (*dto.TokenResponse, error) {
	panic("not reachable from middleware")
}

func (s *stubAuthService) Login(context.Context, *dto.LoginRequest) (*dto.TokenResponse, error) {
	panic("not reachable from middleware")
}

func (s *stubAuthService) ValidateToken(string) (*dto.AuthClaims, error) {
	return s.claims, s.err
}

func newTestApp(auth *stubAuthService) *fiber.App {
	app := fiber.New()
	app.Get("/protected", middleware.Protected(auth), func(c *fiber.Ctx) error {
		return c.SendString(middleware.CurrentUserID(c))
	})
	return app
}

func TestProtected(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		app := newTestApp(&stubAuthService{})
		resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))

		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		app := newTestApp(&stubAuthService{})
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Basic abc")
		resp, err := app.Test(req)

		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("invalid token", func(t *testing.T) {
		app := newTestApp(&stubAuthService{err: domain.NewUnauthorizedError("invalid or expired token")})
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		resp, err := app.Test(req)

		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid token exposes the user id", func(t *testing.T) {
		app := newTestApp(&stubAuthService{claims: &dto.AuthClaims{UserID: "u1", TokenType: "access"}})
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		resp, err := app.Test(req)

		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "u1", string(body))
	})
}
