package handler

import (
	"github.com/zata-zhangtao/SideBySide/internal/domain"
	"github.com/zata-zhangtao/SideBySide/internal/dto"
	"github.com/zata-zhangtao/SideBySide/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /api/auth/register. Accepts JSON or form fields.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}

	resp, err := h.authService.Register(c.Context(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login handles POST /api/auth/login. Accepts form-encoded credentials.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}

	resp, err := h.authService.Login(c.Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
