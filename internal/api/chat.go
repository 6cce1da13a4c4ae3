package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"n8n-copilot/backend/pkg/models"
)

// ChatRequest is the body of POST /api/chat: a stateless conversation turn
// where the client carries the workflow and transcript itself.
type ChatRequest struct {
	Workflow    map[string]any           `json:"workflow"`
	Messages    []models.ChatMessage     `json:"messages"`
	UserMessage string                   `json:"userMessage"`
	Images      []models.ImageAttachment `json:"images,omitempty"`
}

// Chat runs one assistant turn against a client-supplied workflow and history.
// (POST /api/chat)
func (h *Handler) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if req.Workflow == nil {
		return errorJSON(c, http.StatusBadRequest, "Workflow is required")
	}
	if req.UserMessage == "" {
		return errorJSON(c, http.StatusBadRequest, "User message is required")
	}

	result, err := h.assistant.Converse(c.Request().Context(), req.Workflow, req.Messages, req.UserMessage, req.Images)
	if err != nil {
		return h.failWith(c, err)
	}

	h.chatTurns.Add(c.Request().Context(), 1)
	return c.JSON(http.StatusOK, result)
}
