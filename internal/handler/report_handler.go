package handler

import (
	"github.com/zata-zhangtao/SideBySide/internal/domain"
	"github.com/zata-zhangtao/SideBySide/internal/middleware"
	"github.com/zata-zhangtao/SideBySide/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ReportHandler serves the leaderboard and weekly report endpoints.
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Leaderboard handles GET /api/leaderboard?period=.
func (h *ReportHandler) Leaderboard(c *fiber.Ctx) error {
	resp, err := h.reportService.Leaderboard(c.Context(), c.Query("period"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// WeeklyReport handles GET /api/reports/weekly?user2_username=.
func (h *ReportHandler) WeeklyReport(c *fiber.Ctx) error {
	otherUsername := c.Query("user2_username")
	if otherUsername == "" {
		return domain.NewValidationError("user2_username is required")
	}

	resp, err := h.reportService.WeeklyReport(c.Context(), middleware.CurrentUserID(c), otherUsername)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
