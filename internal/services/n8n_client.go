package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"n8n-copilot/backend/pkg/models"
)

// updatableFields is the exact field set the n8n PUT /workflows/{id} endpoint
// accepts. Anything else in a candidate modification is silently dropped.
var updatableFields = []string{"name", "nodes", "connections", "settings"}

// N8nClient is an HTTP implementation of the WorkflowClient interface against
// the n8n public REST API (v1).
type N8nClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewN8nClient creates a new N8nClient. A missing API key is not an error
// here; requests fail with a ConfigError at call time.
func NewN8nClient(baseURL, apiKey string) *N8nClient {
	return &N8nClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
	}
}

// GetWorkflow fetches a workflow definition by id.
func (c *N8nClient) GetWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	var workflow models.Workflow
	if err := c.do(ctx, http.MethodGet, "/workflows/"+id, nil, &workflow); err != nil {
		return nil, err
	}
	return &workflow, nil
}

// UpdateWorkflow replaces a workflow definition. The outgoing payload is
// filtered to the fields the n8n API accepts, and absent fields are omitted
// entirely rather than sent as nulls.
func (c *N8nClient) UpdateWorkflow(ctx context.Context, id string, candidate map[string]any) (*models.Workflow, error) {
	payload := FilterUpdatePayload(candidate)

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workflow payload: %w", err)
	}

	var workflow models.Workflow
	if err := c.do(ctx, http.MethodPut, "/workflows/"+id, body, &workflow); err != nil {
		return nil, err
	}
	return &workflow, nil
}

// ListWorkflows returns all workflows visible to the configured API key.
func (c *N8nClient) ListWorkflows(ctx context.Context) ([]models.Workflow, error) {
	var envelope struct {
		Data []models.Workflow `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/workflows", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// FilterUpdatePayload reduces a candidate modification to the fields the n8n
// update endpoint accepts, dropping absent values. Exported so the apply path
// can be exercised directly in tests.
func FilterUpdatePayload(candidate map[string]any) map[string]any {
	payload := make(map[string]any, len(updatableFields))
	for _, field := range updatableFields {
		if value, ok := candidate[field]; ok && value != nil {
			payload[field] = value
		}
	}
	return payload
}

func (c *N8nClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	if c.apiKey == "" {
		return &ConfigError{Setting: "N8N_API_KEY"}
	}

	url := c.baseURL + "/api/v1" + path
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-N8N-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("n8n request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read n8n response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{Service: "n8n", Status: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode n8n response: %w", err)
		}
	}
	return nil
}
