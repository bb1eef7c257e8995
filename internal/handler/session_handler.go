package handler

import (
	"github.com/zata-zhangtao/SideBySide/internal/domain"
	"github.com/zata-zhangtao/SideBySide/internal/dto"
	"github.com/zata-zhangtao/SideBySide/internal/middleware"
	"github.com/zata-zhangtao/SideBySide/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SessionHandler serves the quiz session endpoints.
type SessionHandler struct {
	sessionService service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Create handles POST /api/sessions. Parameters come from the body or,
// for older clients, from the query string.
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return domain.NewValidationError("invalid request body")
	}
	if v := c.Query("wordlist_id"); v != "" {
		req.WordlistID = v
	}
	if v := c.Query("friend_username"); v != "" {
		req.FriendUsername = v
	}
	if v := c.QueryInt("zh2en_ratio", -1); v >= 0 {
		req.Zh2EnRatio = &v
	}
	if v := c.QueryInt("practice_ratio", -1); v >= 0 {
		req.PracticeRatio = &v
	}

	resp, err := h.sessionService.Create(c.Context(), middleware.CurrentUserID(c), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Get handles GET /api/sessions/:id.
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	resp, err := h.sessionService.Get(c.Context(), middleware.CurrentUserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// List handles GET /api/sessions?created_by_me=.
func (h *SessionHandler) List(c *fiber.Ctx) error {
	createdByMe := c.QueryBool("created_by_me")

	resp, err := h.sessionService.List(c.Context(), middleware.CurrentUserID(c), createdByMe)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// NextWord handles GET /api/sessions/:id/next_word?direction=&reset=.
func (h *SessionHandler) NextWord(c *fiber.Ctx) error {
	resp, err := h.sessionService.NextWord(
		c.Context(), middleware.CurrentUserID(c), c.Params("id"),
		c.Query("direction"), c.QueryBool("reset"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SubmitAttempt handles POST /api/sessions/:id/attempts. Parameters come
// from the body or the query string.
func (h *SessionHandler) SubmitAttempt(c *fiber.Ctx) error {
	var req dto.SubmitAttemptRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return domain.NewValidationError("invalid request body")
	}
	if v := c.Query("word_id"); v != "" {
		req.WordID = v
	}
	if v := c.Query("answer"); v != "" {
		req.Answer = v
	}
	if v := c.Query("direction"); v != "" {
		req.Direction = v
	}
	if req.WordID == "" {
		return domain.NewValidationError("word_id is required")
	}

	resp, err := h.sessionService.SubmitAttempt(c.Context(), middleware.CurrentUserID(c), c.Params("id"), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Scoreboard handles GET /api/sessions/:id/scoreboard.
func (h *SessionHandler) Scoreboard(c *fiber.Ctx) error {
	resp, err := h.sessionService.Scoreboard(c.Context(), middleware.CurrentUserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Progress handles GET /api/sessions/:id/progress.
func (h *SessionHandler) Progress(c *fiber.Ctx) error {
	resp, err := h.sessionService.Progress(c.Context(), middleware.CurrentUserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Wrongbook handles GET /api/sessions/:id/wrongbook.
func (h *SessionHandler) Wrongbook(c *fiber.Ctx) error {
	resp, err := h.sessionService.Wrongbook(c.Context(), middleware.CurrentUserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SetStatus handles POST /api/sessions/:id/status?status=.
func (h *SessionHandler) SetStatus(c *fiber.Ctx) error {
	status := c.Query("status")
	if status == "" {
		var req dto.SetStatusRequest
		if err := c.BodyParser(&req); err == nil {
			status = req.Status
		}
	}

	resp, err := h.sessionService.SetStatus(c.Context(), middleware.CurrentUserID(c), c.Params("id"), status)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Delete handles DELETE /api/sessions/:id.
func (h *SessionHandler) Delete(c *fiber.Ctx) error {
	if err := h.sessionService.Delete(c.Context(), middleware.CurrentUserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "session deleted"})
}
