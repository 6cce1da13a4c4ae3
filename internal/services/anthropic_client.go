package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	anthropicAPIURL     = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion = "2023-06-01"
)

// AnthropicClient is an HTTP implementation of the ModelClient interface
// against the Anthropic Messages API. No streaming; every conversation turn
// is a single blocking round trip.
type AnthropicClient struct {
	apiKey     string
	model      string
	maxTokens  int
	baseURL    string
	httpClient *http.Client
}

// NewAnthropicClient creates a new AnthropicClient. A missing API key is
// reported as a ConfigError at call time, before any network I/O.
func NewAnthropicClient(apiKey, model string, maxTokens int) *AnthropicClient {
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	return &AnthropicClient{
		apiKey:     apiKey,
		model:      model,
		maxTokens:  maxTokens,
		baseURL:    anthropicAPIURL,
		httpClient: http.DefaultClient,
	}
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string or []anthropicContentBlock
}

type anthropicContentBlock struct {
	Type   string                `json:"type"` // text or image
	Text   string                `json:"text,omitempty"`
	Source *anthropicImageSource `json:"source,omitempty"`
}

type anthropicImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
	Error   *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// CreateMessage submits the system instruction and ordered transcript and
// returns the concatenated text blocks of the reply.
func (c *AnthropicClient) CreateMessage(ctx context.Context, system string, messages []ModelMessage) (string, error) {
	if c.apiKey == "" {
		return "", &ConfigError{Setting: "ANTHROPIC_API_KEY"}
	}

	apiReq := anthropicRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages:  make([]anthropicMessage, 0, len(messages)),
	}
	for _, m := range messages {
		apiReq.Messages = append(apiReq.Messages, buildMessage(m))
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal model request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("model request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read model response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &UpstreamError{Service: "anthropic", Status: resp.StatusCode, Body: string(respBody)}
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("failed to decode model response: %w", err)
	}
	if apiResp.Error != nil {
		return "", &UpstreamError{Service: "anthropic", Status: resp.StatusCode, Body: apiResp.Error.Message}
	}

	var texts []string
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			texts = append(texts, block.Text)
		}
	}
	return strings.Join(texts, "\n"), nil
}

// buildMessage flattens a ModelMessage into the wire format. Plain text turns
// stay strings; turns with image attachments become content block lists.
func buildMessage(m ModelMessage) anthropicMessage {
	if len(m.Images) == 0 {
		return anthropicMessage{Role: m.Role, Content: m.Text}
	}

	blocks := make([]anthropicContentBlock, 0, len(m.Images)+1)
	for _, img := range m.Images {
		blocks = append(blocks, anthropicContentBlock{
			Type: "image",
			Source: &anthropicImageSource{
				Type:      img.Encoding,
				MediaType: img.MediaType,
				Data:      img.Data,
			},
		})
	}
	if m.Text != "" {
		blocks = append(blocks, anthropicContentBlock{Type: "text", Text: m.Text})
	}
	return anthropicMessage{Role: m.Role, Content: blocks}
}
