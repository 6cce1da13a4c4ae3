package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"n8n-copilot/backend/internal/logging"
	"n8n-copilot/backend/pkg/models"
)

// fakeModel replays a canned response and records what it was asked.
type fakeModel struct {
	response string
	err      error

	gotSystem   string
	gotMessages []ModelMessage
}

func (f *fakeModel) CreateMessage(ctx context.Context, system string, messages []ModelMessage) (string, error) {
	f.gotSystem = system
	f.gotMessages = messages
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func testWorkflow() map[string]any {
	return map[string]any{
		"id":   "wf-1",
		"name": "Daily Report",
		"nodes": []any{
			map[string]any{"id": "n1", "name": "Webhook", "type": "n8n-nodes-base.webhook"},
		},
		"connections": map[string]any{},
	}
}

func TestConverseExtractsProposal(t *testing.T) {
	model := &fakeModel{response: "Here you go.\n<workflow_json>\n{\"name\": \"Changed\", \"nodes\": []}\n</workflow_json>\nLet me know."}
	a := NewAssistant(model, logging.NewLogger())

	result, err := a.Converse(context.Background(), testWorkflow(), nil, "rename it", nil)
	require.NoError(t, err)

	require.NotNil(t, result.ModifiedWorkflow)
	assert.Equal(t, "Changed", result.ModifiedWorkflow["name"])

	assert.NotContains(t, result.Response, "<workflow_json>")
	assert.NotContains(t, result.Response, "</workflow_json>")
	assert.Contains(t, result.Response, "[Workflow JSON ready to apply]")
	assert.Contains(t, result.Response, "Here you go.")
	assert.Contains(t, result.Response, "Let me know.")
}

func TestConverseMalformedProposalDegradesToText(t *testing.T) {
	model := &fakeModel{response: "Almost.\n<workflow_json>\n{not valid json\n</workflow_json>"}
	a := NewAssistant(model, logging.NewLogger())

	result, err := a.Converse(context.Background(), testWorkflow(), nil, "change it", nil)
	require.NoError(t, err)

	assert.Nil(t, result.ModifiedWorkflow)
	assert.NotContains(t, result.Response, "<workflow_json>")
	assert.Contains(t, result.Response, "Almost.")
}

func TestConverseNoProposal(t *testing.T) {
	model := &fakeModel{response: "  This workflow posts a daily report to Slack.  "}
	a := NewAssistant(model, logging.NewLogger())

	result, err := a.Converse(context.Background(), testWorkflow(), nil, "what does it do?", nil)
	require.NoError(t, err)

	assert.Nil(t, result.ModifiedWorkflow)
	assert.Equal(t, "This workflow posts a daily report to Slack.", result.Response)
}

func TestConverseTranscriptOrder(t *testing.T) {
	model := &fakeModel{response: "ok"}
	a := NewAssistant(model, logging.NewLogger())

	history := []models.ChatMessage{
		{Role: models.ChatRoleUser, Content: "first question"},
		{Role: models.ChatRoleAssistant, Content: "first answer"},
	}
	images := []models.ImageAttachment{{Encoding: "base64", MediaType: "image/png", Data: "aGk="}}

	_, err := a.Converse(context.Background(), testWorkflow(), history, "second question", images)
	require.NoError(t, err)

	require.Len(t, model.gotMessages, 5)

	// Synthetic pair: pretty-printed workflow JSON, then the fixed ack.
	assert.Equal(t, "user", model.gotMessages[0].Role)
	assert.Contains(t, model.gotMessages[0].Text, "Here is the current workflow JSON:")
	assert.Contains(t, model.gotMessages[0].Text, "\"name\": \"Daily Report\"")
	assert.Equal(t, "assistant", model.gotMessages[1].Role)
	assert.Equal(t, workflowAckMessage, model.gotMessages[1].Text)

	assert.Equal(t, "first question", model.gotMessages[2].Text)
	assert.Equal(t, "first answer", model.gotMessages[3].Text)

	last := model.gotMessages[4]
	assert.Equal(t, "user", last.Role)
	assert.Equal(t, "second question", last.Text)
	require.Len(t, last.Images, 1)
	assert.Equal(t, "image/png", last.Images[0].MediaType)

	// The delimiter contract is part of the fixed system instruction.
	assert.True(t, strings.Contains(model.gotSystem, "<workflow_json>"))
}

func TestConverseModelErrorPropagates(t *testing.T) {
	upstream := &UpstreamError{Service: "anthropic", Status: 429, Body: "rate limited"}
	model := &fakeModel{err: upstream}
	a := NewAssistant(model, logging.NewLogger())

	_, err := a.Converse(context.Background(), testWorkflow(), nil, "hello", nil)
	require.Error(t, err)

	var got *UpstreamError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, 429, got.Status)
}
