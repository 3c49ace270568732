package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/loan-service/internal/api/dto"
	"github.com/spec-kit/loan-service/internal/service"
	apperrors "github.com/spec-kit/loan-service/pkg/util"
)

// PortfolioHandler serves aggregate loan metrics to admins.
type PortfolioHandler struct {
	portfolio *service.PortfolioService
}

// NewPortfolioHandler constructs handler.
func NewPortfolioHandler(portfolio *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolio: portfolio}
}

// Metrics handles GET /portfolio-metrics?startDate=&endDate=.
func (h *PortfolioHandler) Metrics(c *fiber.Ctx) error {
	details := map[string]any{}
	start, ok := parseDate(c.Query("startDate"))
	if !ok {
		details["startDate"] = "must be a date (YYYY-MM-DD) or RFC 3339 timestamp"
	}
	end, ok := parseDate(c.Query("endDate"))
	if !ok {
		details["endDate"] = "must be a date (YYYY-MM-DD) or RFC 3339 timestamp"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid reporting period", details)
	}

	metrics, err := h.portfolio.Metrics(c.UserContext(), start, end)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPortfolioMetricsResponse(metrics)})
}

func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
