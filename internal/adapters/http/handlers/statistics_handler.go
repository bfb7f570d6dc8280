package handlers

import (
	"epersmip-backend/internal/core/domain"
	"epersmip-backend/internal/core/services"
	"epersmip-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// StatisticsHandler handles library statistics endpoints (admin)
type StatisticsHandler struct {
	statsService *services.StatisticsService
}

// NewStatisticsHandler creates a new statistics handler
func NewStatisticsHandler(statsService *services.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statsService: statsService}
}

// Summary returns the statistics summary
// @Summary Statistics summary
// @Description Counts of books, users, borrows by status and reviews
// @Tags Statistics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /statistics/summary [get]
func (h *StatisticsHandler) Summary(c *fiber.Ctx) error {
	data, err := h.statsService.GetSummary(c.Context())
	if err != nil {
		return response.InternalServerError(c, domain.CodeInternal, "Failed to get statistics")
	}

	return response.Success(c, "Statistics retrieved successfully", data)
}

// BorrowsByMonth returns monthly borrow counts for the last 12 months
// @Summary Borrows by month
// @Tags Statistics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /statistics/borrows-by-month [get]
func (h *StatisticsHandler) BorrowsByMonth(c *fiber.Ctx) error {
	data, err := h.statsService.GetBorrowsByMonth(c.Context())
	if err != nil {
		return response.InternalServerError(c, domain.CodeInternal, "Failed to get statistics")
	}

	return response.Success(c, "Statistics retrieved successfully", fiber.Map{
		"months": data,
	})
}

// PopularBooks returns the most borrowed books
// @Summary Popular books
// @Tags Statistics
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Number of books (default 10, max 50)"
// @Success 200 {object} response.Response
// @Router /statistics/popular-books [get]
func (h *StatisticsHandler) PopularBooks(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)

	data, err := h.statsService.GetPopularBooks(c.Context(), limit)
	if err != nil {
		return response.InternalServerError(c, domain.CodeInternal, "Failed to get statistics")
	}

	return response.Success(c, "Statistics retrieved successfully", fiber.Map{
		"books": data,
	})
}
