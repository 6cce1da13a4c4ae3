package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"n8n-copilot/backend/internal/logging"
	"n8n-copilot/backend/pkg/models"
)

// workflowSystemPrompt is the fixed system instruction for the workflow
// editing assistant. The delimiter contract in "Output Format" is what
// extractProposal parses against.
const workflowSystemPrompt = `You are an expert n8n workflow developer. You help users understand and modify their n8n workflows.

When the user asks about a workflow:
1. Analyze the current workflow structure (nodes, connections, parameters)
2. Provide clear explanations of what each part does
3. Suggest improvements or changes when asked

When the user wants to make changes:
1. Explain what changes you'll make and why
2. Ask for confirmation if the change is significant
3. When ready to apply, output the complete modified workflow JSON

## Workflow Structure
- **nodes**: Array of node objects with id, name, type, typeVersion, position, parameters
- **connections**: Object mapping source node names to their output connections
- **settings**: Workflow-level settings (execution order, timezone, etc.)

## Important Rules
- ALWAYS preserve node IDs - never change them
- ALWAYS preserve credential references - never remove or modify them
- Maintain existing connections unless explicitly asked to change them
- Keep node positions reasonable (don't stack nodes on top of each other)

## Output Format for Changes
When outputting a modified workflow, wrap it in these tags:
<workflow_json>
{
  "nodes": [...],
  "connections": {...},
  "settings": {...}
}
</workflow_json>

Only include the workflow JSON inside the tags, no other text.`

// workflowAckMessage is the synthetic assistant reply paired with the
// workflow-context turn, so the visible transcript starts on a model
// context that already contains the authoritative workflow state.
const workflowAckMessage = "I've analyzed this workflow. How can I help you with it?"

// proposalPlaceholder replaces the delimited JSON block in display text so
// raw workflow JSON is never shown in the transcript.
const proposalPlaceholder = "[Workflow JSON ready to apply]"

var workflowBlockRe = regexp.MustCompile(`(?s)<workflow_json>(.*?)</workflow_json>`)

// ChatResult is the outcome of one conversation turn.
type ChatResult struct {
	Response         string         `json:"response"`
	ModifiedWorkflow map[string]any `json:"modifiedWorkflow,omitempty"`
}

// Assistant drives the conversational workflow editor: it round-trips the
// current workflow definition and chat history through the language model and
// extracts any proposed replacement definition from the reply.
type Assistant struct {
	model  ModelClient
	logger *logging.Logger
}

// NewAssistant creates a new Assistant.
func NewAssistant(model ModelClient, logger *logging.Logger) *Assistant {
	return &Assistant{model: model, logger: logger}
}

// Converse sends one user turn. The workflow argument must be the current
// authoritative state: the latest pending modification if one exists,
// otherwise the last-fetched definition. Re-sending the whole definition
// every turn keeps the model's view from drifting from what the user is
// about to commit.
func (a *Assistant) Converse(ctx context.Context, workflow any, history []models.ChatMessage, userMessage string, images []models.ImageAttachment) (*ChatResult, error) {
	workflowJSON, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workflow: %w", err)
	}

	transcript := make([]ModelMessage, 0, len(history)+3)
	transcript = append(transcript, ModelMessage{
		Role: string(models.ChatRoleUser),
		Text: fmt.Sprintf("Here is the current workflow JSON:\n```json\n%s\n```", workflowJSON),
	})
	transcript = append(transcript, ModelMessage{
		Role: string(models.ChatRoleAssistant),
		Text: workflowAckMessage,
	})
	for _, m := range history {
		transcript = append(transcript, ModelMessage{
			Role:   string(m.Role),
			Text:   m.Content,
			Images: m.Images,
		})
	}
	transcript = append(transcript, ModelMessage{
		Role:   string(models.ChatRoleUser),
		Text:   userMessage,
		Images: images,
	})

	raw, err := a.model.CreateMessage(ctx, workflowSystemPrompt, transcript)
	if err != nil {
		return nil, err
	}

	proposal := a.extractProposal(raw)
	display := strings.TrimSpace(workflowBlockRe.ReplaceAllString(raw, proposalPlaceholder))

	return &ChatResult{Response: display, ModifiedWorkflow: proposal}, nil
}

// extractProposal pulls the delimited JSON block out of the raw model text.
// A malformed block is logged and dropped; the textual reply still stands.
// The parsed object is accepted as-is, without shape validation: the apply
// path filters it to the fields n8n accepts anyway.
func (a *Assistant) extractProposal(raw string) map[string]any {
	match := workflowBlockRe.FindStringSubmatch(raw)
	if match == nil {
		return nil
	}

	var proposal map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(match[1])), &proposal); err != nil {
		a.logger.Warn("failed to parse workflow JSON from model response", "error", err)
		return nil
	}
	return proposal
}
