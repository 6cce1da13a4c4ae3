// Package api contains the HTTP handlers for the n8n copilot service
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"n8n-copilot/backend/internal/logging"
	"n8n-copilot/backend/internal/services"
	"n8n-copilot/backend/pkg/models"
)

// ExecutionReader is the slice of the execution service the handlers need.
type ExecutionReader interface {
	List(ctx context.Context, limit int) ([]models.ExecutionLog, error)
	Stats(ctx context.Context) (*models.ExecutionStats, error)
	Daily(ctx context.Context, days int) ([]models.DailyStats, error)
}

// Converser is the slice of the assistant the chat handler needs.
type Converser interface {
	Converse(ctx context.Context, workflow any, history []models.ChatMessage, userMessage string, images []models.ImageAttachment) (*services.ChatResult, error)
}

// Handler holds the dependencies for the REST API.
type Handler struct {
	executions ExecutionReader
	workflows  services.WorkflowClient
	assistant  Converser
	sessions   *services.SessionManager
	logger     *logging.Logger

	chatTurns      metric.Int64Counter
	applies        metric.Int64Counter
	upstreamErrors metric.Int64Counter
}

// NewHandler creates a new Handler with required dependencies.
func NewHandler(executions ExecutionReader, workflows services.WorkflowClient, assistant Converser, sessions *services.SessionManager, logger *logging.Logger) *Handler {
	meter := otel.Meter("n8n-copilot/backend/internal/api")
	chatTurns, _ := meter.Int64Counter("copilot_chat_turns_total",
		metric.WithDescription("Conversation turns sent to the model"))
	applies, _ := meter.Int64Counter("copilot_workflow_applies_total",
		metric.WithDescription("Workflow modifications pushed to n8n"))
	upstreamErrors, _ := meter.Int64Counter("copilot_upstream_errors_total",
		metric.WithDescription("Non-2xx responses from downstream dependencies"))

	return &Handler{
		executions:     executions,
		workflows:      workflows,
		assistant:      assistant,
		sessions:       sessions,
		logger:         logger,
		chatTurns:      chatTurns,
		applies:        applies,
		upstreamErrors: upstreamErrors,
	}
}

// Register mounts all routes on the given group.
func (h *Handler) Register(g *echo.Group) {
	g.GET("/executions", h.ListExecutions)
	g.GET("/executions/stats", h.ExecutionStats)
	g.GET("/executions/daily", h.DailyStats)

	g.GET("/workflows", h.ListWorkflows)
	g.GET("/workflows/:id", h.GetWorkflow)
	g.PUT("/workflows/:id", h.UpdateWorkflow)

	g.POST("/chat", h.Chat)

	g.POST("/sessions", h.OpenSession)
	g.GET("/sessions/:id", h.GetSession)
	g.POST("/sessions/:id/chat", h.SessionChat)
	g.POST("/sessions/:id/apply", h.SessionApply)
	g.DELETE("/sessions/:id", h.CloseSession)
}

// HealthStatus represents the health check response.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

// HandleHealth returns basic health status (always returns 200 OK).
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Service:   "n8n-copilot",
		Version:   "1.0.0",
	})
}

// errorJSON writes the uniform {error: message} body the dashboard expects.
func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}

// failWith maps a service error onto an HTTP response, logging it server-side.
func (h *Handler) failWith(c echo.Context, err error) error {
	h.logger.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)

	var upstream *services.UpstreamError
	if errors.As(err, &upstream) {
		h.upstreamErrors.Add(c.Request().Context(), 1)
	}

	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return errorJSON(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrSessionBusy), errors.Is(err, services.ErrSessionFailed):
		return errorJSON(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrNoPendingModification):
		return errorJSON(c, http.StatusBadRequest, err.Error())
	default:
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
}
