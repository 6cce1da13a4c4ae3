package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"n8n-copilot/backend/pkg/models"
)

// OpenSessionRequest is the body of POST /api/sessions.
type OpenSessionRequest struct {
	WorkflowID string `json:"workflowId"`
}

// SessionChatRequest is the body of POST /api/sessions/:id/chat.
type SessionChatRequest struct {
	Message string                   `json:"message"`
	Images  []models.ImageAttachment `json:"images,omitempty"`
}

// OpenSession opens an editor session for a workflow and fetches its
// definition. A failed fetch still returns the session, in the failed state.
// (POST /api/sessions)
func (h *Handler) OpenSession(c echo.Context) error {
	var req OpenSessionRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if req.WorkflowID == "" {
		return errorJSON(c, http.StatusBadRequest, "Workflow ID is required")
	}

	session := h.sessions.Open(c.Request().Context(), req.WorkflowID)
	return c.JSON(http.StatusCreated, session.View())
}

// GetSession returns the current session snapshot.
// (GET /api/sessions/:id)
func (h *Handler) GetSession(c echo.Context) error {
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		return h.failWith(c, err)
	}
	return c.JSON(http.StatusOK, session.View())
}

// SessionChat runs one conversation turn inside a session.
// (POST /api/sessions/:id/chat)
func (h *Handler) SessionChat(c echo.Context) error {
	var req SessionChatRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if req.Message == "" {
		return errorJSON(c, http.StatusBadRequest, "Message is required")
	}

	reply, err := h.sessions.Send(c.Request().Context(), c.Param("id"), req.Message, req.Images)
	if err != nil {
		return h.failWith(c, err)
	}

	h.chatTurns.Add(c.Request().Context(), 1)
	return c.JSON(http.StatusOK, reply)
}

// SessionApply commits the session's pending modification to n8n. An apply
// failure is reported in the transcript and via the status code; the pending
// modification stays in place for retry.
// (POST /api/sessions/:id/apply)
func (h *Handler) SessionApply(c echo.Context) error {
	reply, err := h.sessions.Apply(c.Request().Context(), c.Param("id"))
	if err != nil {
		// When the apply ran and failed upstream the transcript already
		// carries the error turn; the status code reports it either way.
		return h.failWith(c, err)
	}

	h.applies.Add(c.Request().Context(), 1)
	return c.JSON(http.StatusOK, reply)
}

// CloseSession discards a session and its transcript.
// (DELETE /api/sessions/:id)
func (h *Handler) CloseSession(c echo.Context) error {
	if err := h.sessions.Close(c.Param("id")); err != nil {
		return h.failWith(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
