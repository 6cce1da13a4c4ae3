package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"n8n-copilot/backend/pkg/models"
)

const (
	defaultExecutionLimit = 100
	defaultDailyWindow    = 14
)

// ListExecutions returns execution logs ordered newest-first.
// (GET /api/executions?limit=N)
func (h *Handler) ListExecutions(c echo.Context) error {
	limit := intQueryParam(c, "limit", defaultExecutionLimit)
	if limit < 1 {
		limit = defaultExecutionLimit
	}

	logs, err := h.executions.List(c.Request().Context(), limit)
	if err != nil {
		return h.failWith(c, err)
	}
	if logs == nil {
		logs = []models.ExecutionLog{}
	}
	return c.JSON(http.StatusOK, logs)
}

// ExecutionStats returns the global execution roll-up.
// (GET /api/executions/stats)
func (h *Handler) ExecutionStats(c echo.Context) error {
	stats, err := h.executions.Stats(c.Request().Context())
	if err != nil {
		return h.failWith(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// DailyStats returns the day-bucketed trend series.
// (GET /api/executions/daily?days=N)
func (h *Handler) DailyStats(c echo.Context) error {
	days := intQueryParam(c, "days", defaultDailyWindow)
	if days < 1 {
		return errorJSON(c, http.StatusBadRequest, "days must be a positive integer")
	}

	daily, err := h.executions.Daily(c.Request().Context(), days)
	if err != nil {
		return h.failWith(c, err)
	}
	return c.JSON(http.StatusOK, daily)
}

func intQueryParam(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
