package services

import (
	"context"

	"n8n-copilot/backend/pkg/models"
)

// WorkflowClient is an interface for communicating with the n8n REST API.
type WorkflowClient interface {
	// GetWorkflow fetches a workflow definition by id.
	GetWorkflow(ctx context.Context, id string) (*models.Workflow, error)
	// UpdateWorkflow replaces a workflow definition. The candidate may carry
	// arbitrary fields; only the fields the n8n API accepts are sent.
	UpdateWorkflow(ctx context.Context, id string, candidate map[string]any) (*models.Workflow, error)
	// ListWorkflows returns all workflows visible to the configured API key.
	ListWorkflows(ctx context.Context) ([]models.Workflow, error)
}

// ModelMessage is one role-tagged turn submitted to the language model.
type ModelMessage struct {
	Role   string
	Text   string
	Images []models.ImageAttachment
}

// ModelClient is an interface for the hosted language model completion API.
type ModelClient interface {
	// CreateMessage submits the system instruction and ordered transcript in
	// a single blocking round trip and returns the concatenated text reply.
	CreateMessage(ctx context.Context, system string, messages []ModelMessage) (string, error)
}
