package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ListWorkflows returns every workflow visible to the configured API key.
// (GET /api/workflows)
func (h *Handler) ListWorkflows(c echo.Context) error {
	workflows, err := h.workflows.ListWorkflows(c.Request().Context())
	if err != nil {
		return h.failWith(c, err)
	}
	return c.JSON(http.StatusOK, workflows)
}

// GetWorkflow fetches one workflow definition from n8n.
// (GET /api/workflows/:id)
func (h *Handler) GetWorkflow(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return errorJSON(c, http.StatusBadRequest, "Workflow ID is required")
	}

	workflow, err := h.workflows.GetWorkflow(c.Request().Context(), id)
	if err != nil {
		return h.failWith(c, err)
	}
	return c.JSON(http.StatusOK, workflow)
}

// UpdateWorkflow pushes a replacement definition to n8n. The body must carry
// nodes and connections; validation happens before the upstream call so an
// invalid body never reaches n8n.
// (PUT /api/workflows/:id)
func (h *Handler) UpdateWorkflow(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return errorJSON(c, http.StatusBadRequest, "Workflow ID is required")
	}

	var body map[string]any
	if err := c.Bind(&body); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if body["nodes"] == nil || body["connections"] == nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid workflow: nodes and connections are required")
	}

	updated, err := h.workflows.UpdateWorkflow(c.Request().Context(), id, body)
	if err != nil {
		return h.failWith(c, err)
	}

	h.applies.Add(c.Request().Context(), 1)
	return c.JSON(http.StatusOK, updated)
}
