package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/postboard/blog-api/internal/core/ports"
)

// StatsHandler serves the dashboard aggregates.
type StatsHandler struct {
	service ports.StatsService
}

func NewStatsHandler(service ports.StatsService) *StatsHandler {
	return &StatsHandler{service: service}
}

// Get handles GET /api/stats.
//
// @Summary      Dashboard statistics
// @Description  User and post totals, top posts by views, recent posts and top authors.
// @Tags         stats
// @Produce      json
// @Success      200  {object}  statsResponse
// @Failure      500  {object}  errorResponse
// @Router       /stats [get]
func (h *StatsHandler) Get(c echo.Context) error {
	snap, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statsResponse{Data: snap})
}
