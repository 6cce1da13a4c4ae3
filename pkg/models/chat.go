package models

// ChatRole tags a chat message as coming from the user or the assistant.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn in a workflow editing conversation. Messages are
// append-only for the life of a session and are never persisted.
type ChatMessage struct {
	Role    ChatRole          `json:"role"`
	Content string            `json:"content"`
	Images  []ImageAttachment `json:"images,omitempty"`
}

// ImageAttachment carries a base64-encoded image pasted into the chat.
type ImageAttachment struct {
	Encoding  string `json:"encoding"`
	MediaType string `json:"mediaType"`
	Data      string `json:"data"`
}

// AllowedImageMediaTypes is the fixed set of image MIME types the model
// API accepts as attachments.
var AllowedImageMediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}
