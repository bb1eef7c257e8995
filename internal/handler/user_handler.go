package handler

import (
	"github.com/zata-zhangtao/SideBySide/internal/domain"
	"github.com/zata-zhangtao/SideBySide/internal/middleware"
	"github.com/zata-zhangtao/SideBySide/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UserHandler serves the profile and friends endpoints.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me handles GET /api/users/me.
func (h *UserHandler) Me(c *fiber.Ctx) error {
	resp, err := h.userService.GetMe(c.Context(), middleware.CurrentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// AddFriend handles POST /api/friends/add?username=.
func (h *UserHandler) AddFriend(c *fiber.Ctx) error {
	username := c.Query("username")
	if username == "" {
		return domain.NewValidationError("username is required")
	}

	resp, err := h.userService.AddFriend(c.Context(), middleware.CurrentUserID(c), username)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ListFriends handles GET /api/friends.
func (h *UserHandler) ListFriends(c *fiber.Ctx) error {
	resp, err := h.userService.ListFriends(c.Context(), middleware.CurrentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
