package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestN8nClientMissingKeyFailsBeforeNetwork(t *testing.T) {
	hit := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer ts.Close()

	client := NewN8nClient(ts.URL, "")

	_, err := client.GetWorkflow(context.Background(), "abc")
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "N8N_API_KEY", cfgErr.Setting)
	assert.False(t, hit, "no request must be made without a credential")
}

func TestN8nClientGetWorkflow(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/workflows/abc", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-N8N-API-KEY"))
		io.WriteString(w, `{"id": "abc", "name": "Daily Report", "active": true, "nodes": [], "connections": {}}`)
	}))
	defer ts.Close()

	client := NewN8nClient(ts.URL, "secret")

	workflow, err := client.GetWorkflow(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", workflow.ID)
	assert.Equal(t, "Daily Report", workflow.Name)
	assert.True(t, workflow.Active)
}

func TestN8nClientUpdateFiltersPayload(t *testing.T) {
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/workflows/abc", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		io.WriteString(w, `{"id": "abc", "name": "Daily Report", "nodes": [], "connections": {}}`)
	}))
	defer ts.Close()

	client := NewN8nClient(ts.URL, "secret")

	candidate := map[string]any{
		"name":        "Daily Report",
		"nodes":       []any{},
		"connections": map[string]any{},
		"id":          "abc",
		"active":      true,
		"createdAt":   "2026-01-01T00:00:00Z",
		"pinData":     map[string]any{},
	}

	_, err := client.UpdateWorkflow(context.Background(), "abc", candidate)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"name":        "Daily Report",
		"nodes":       []any{},
		"connections": map[string]any{},
	}, gotBody)
}

func TestFilterUpdatePayloadIdempotentOverExtraFields(t *testing.T) {
	base := map[string]any{
		"name":        "X",
		"nodes":       []any{map[string]any{"id": "n1"}},
		"connections": map[string]any{},
		"settings":    map[string]any{"timezone": "UTC"},
	}
	withExtras := map[string]any{
		"name":        "X",
		"nodes":       []any{map[string]any{"id": "n1"}},
		"connections": map[string]any{},
		"settings":    map[string]any{"timezone": "UTC"},
		"id":          "abc",
		"active":      false,
		"updatedAt":   "now",
	}

	assert.Equal(t, FilterUpdatePayload(base), FilterUpdatePayload(withExtras))
}

func TestFilterUpdatePayloadOmitsAbsentFields(t *testing.T) {
	payload := FilterUpdatePayload(map[string]any{
		"nodes":       []any{},
		"connections": map[string]any{},
		"settings":    nil,
	})

	assert.NotContains(t, payload, "settings", "nil values must be omitted, not sent as null")
	assert.NotContains(t, payload, "name")
}

func TestN8nClientUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message": "invalid api key"}`)
	}))
	defer ts.Close()

	client := NewN8nClient(ts.URL, "wrong")

	_, err := client.GetWorkflow(context.Background(), "abc")
	require.Error(t, err)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusUnauthorized, upstream.Status)
	assert.Contains(t, upstream.Body, "invalid api key")
	assert.Equal(t, "n8n", upstream.Service)
}

func TestN8nClientListWorkflows(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/workflows", r.URL.Path)
		io.WriteString(w, `{"data": [{"id": "a", "name": "One"}, {"id": "b", "name": "Two"}]}`)
	}))
	defer ts.Close()

	client := NewN8nClient(ts.URL, "secret")

	workflows, err := client.ListWorkflows(context.Background())
	require.NoError(t, err)
	require.Len(t, workflows, 2)
	assert.Equal(t, "One", workflows[0].Name)
}
