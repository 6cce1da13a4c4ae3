package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"n8n-copilot/backend/internal/logging"
	"n8n-copilot/backend/pkg/models"
)

// SessionState is the lifecycle state of an editor session.
type SessionState string

const (
	// SessionAwaitingWorkflow covers the initial fetch of the definition.
	SessionAwaitingWorkflow SessionState = "awaiting_workflow"
	// SessionReady accepts the next send or apply.
	SessionReady SessionState = "ready"
	// SessionSending has a model round trip in flight.
	SessionSending SessionState = "sending"
	// SessionApplying has an n8n update in flight.
	SessionApplying SessionState = "applying"
	// SessionFailed is terminal: the workflow fetch failed and the session
	// must be closed and reopened.
	SessionFailed SessionState = "failed"
)

// Session is the per-panel editing session: the authoritative workflow, the
// visible transcript, and the at-most-one pending modification proposed by
// the assistant but not yet committed. Nothing here is persisted; closing the
// session discards it all.
type Session struct {
	ID         string
	WorkflowID string

	mu       sync.Mutex
	state    SessionState
	workflow *models.Workflow
	pending  map[string]any
	messages []models.ChatMessage
	loadErr  string
}

// SessionView is the read snapshot of a session returned to clients.
type SessionView struct {
	ID         string               `json:"id"`
	WorkflowID string               `json:"workflowId"`
	State      SessionState         `json:"state"`
	Workflow   *models.Workflow     `json:"workflow,omitempty"`
	HasPending bool                 `json:"hasPendingModification"`
	Messages   []models.ChatMessage `json:"messages"`
	Error      string               `json:"error,omitempty"`
}

// SessionManager owns all open editor sessions. Sessions are independent;
// no state is shared across them.
type SessionManager struct {
	workflows WorkflowClient
	assistant *Assistant
	logger    *logging.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionManager creates a new SessionManager.
func NewSessionManager(workflows WorkflowClient, assistant *Assistant, logger *logging.Logger) *SessionManager {
	return &SessionManager{
		workflows: workflows,
		assistant: assistant,
		logger:    logger,
		sessions:  make(map[string]*Session),
	}
}

// Open creates a session for a workflow and fetches its definition. A fetch
// failure still produces a session, in the terminal failed state, so the
// client can display the error and offer to reopen.
func (m *SessionManager) Open(ctx context.Context, workflowID string) *Session {
	s := &Session{
		ID:         uuid.New().String(),
		WorkflowID: workflowID,
		state:      SessionAwaitingWorkflow,
	}

	workflow, err := m.workflows.GetWorkflow(ctx, workflowID)
	if err != nil {
		m.logger.Error("failed to fetch workflow for session", "workflow_id", workflowID, "error", err)
		s.state = SessionFailed
		s.loadErr = err.Error()
	} else {
		s.workflow = workflow
		s.state = SessionReady
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns an open session by id.
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close discards a session and its transcript.
func (m *SessionManager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Send runs one conversation turn. The user turn is appended to the
// transcript before the model responds; a model failure is appended as an
// assistant turn prefixed "Error:" so the conversation keeps its continuity.
// Only one send or apply may be in flight per session.
func (m *SessionManager) Send(ctx context.Context, sessionID, userMessage string, images []models.ImageAttachment) (*models.ChatMessage, error) {
	s, err := m.Get(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	switch s.state {
	case SessionFailed:
		s.mu.Unlock()
		return nil, ErrSessionFailed
	case SessionSending, SessionApplying, SessionAwaitingWorkflow:
		s.mu.Unlock()
		return nil, ErrSessionBusy
	}
	s.state = SessionSending
	s.messages = append(s.messages, models.ChatMessage{
		Role:    models.ChatRoleUser,
		Content: userMessage,
		Images:  images,
	})
	// History excludes the turn just appended; the assistant receives it as
	// the new user turn.
	history := make([]models.ChatMessage, len(s.messages)-1)
	copy(history, s.messages[:len(s.messages)-1])
	workflow := s.currentWorkflowLocked()
	s.mu.Unlock()

	result, convErr := m.assistant.Converse(ctx, workflow, history, userMessage, images)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SessionReady

	var reply models.ChatMessage
	if convErr != nil {
		reply = models.ChatMessage{
			Role:    models.ChatRoleAssistant,
			Content: fmt.Sprintf("Error: %s", convErr.Error()),
		}
	} else {
		reply = models.ChatMessage{
			Role:    models.ChatRoleAssistant,
			Content: result.Response,
		}
		if result.ModifiedWorkflow != nil {
			// A newer proposal supersedes any earlier one.
			s.pending = result.ModifiedWorkflow
		}
	}
	s.messages = append(s.messages, reply)
	return &reply, nil
}

// Apply commits the pending modification to n8n. The payload's name is forced
// to the authoritative workflow's name: the remote API requires one and the
// model may omit or alter it. On success the server's returned definition
// becomes authoritative and the pending modification is cleared; on failure
// it is retained for retry and the error is appended to the transcript.
func (m *SessionManager) Apply(ctx context.Context, sessionID string) (*models.ChatMessage, error) {
	s, err := m.Get(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	switch s.state {
	case SessionFailed:
		s.mu.Unlock()
		return nil, ErrSessionFailed
	case SessionSending, SessionApplying, SessionAwaitingWorkflow:
		s.mu.Unlock()
		return nil, ErrSessionBusy
	}
	if s.pending == nil {
		s.mu.Unlock()
		return nil, ErrNoPendingModification
	}
	s.state = SessionApplying

	payload := make(map[string]any, len(s.pending)+1)
	for k, v := range s.pending {
		payload[k] = v
	}
	payload["name"] = s.workflow.Name
	s.mu.Unlock()

	updated, applyErr := m.workflows.UpdateWorkflow(ctx, s.WorkflowID, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SessionReady

	var reply models.ChatMessage
	if applyErr != nil {
		m.logger.Error("failed to apply workflow modification", "workflow_id", s.WorkflowID, "error", applyErr)
		reply = models.ChatMessage{
			Role:    models.ChatRoleAssistant,
			Content: fmt.Sprintf("Error applying changes: %s", applyErr.Error()),
		}
	} else {
		s.workflow = updated
		s.pending = nil
		reply = models.ChatMessage{
			Role:    models.ChatRoleAssistant,
			Content: "Changes applied successfully! The workflow has been updated in n8n.",
		}
	}
	s.messages = append(s.messages, reply)
	if applyErr != nil {
		return &reply, applyErr
	}
	return &reply, nil
}

// View returns a read snapshot of the session.
func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	messages := make([]models.ChatMessage, len(s.messages))
	copy(messages, s.messages)
	return SessionView{
		ID:         s.ID,
		WorkflowID: s.WorkflowID,
		State:      s.state,
		Workflow:   s.workflow,
		HasPending: s.pending != nil,
		Messages:   messages,
		Error:      s.loadErr,
	}
}

// currentWorkflowLocked returns the state the model should see: the latest
// pending modification if one exists, otherwise the fetched definition.
// Callers must hold s.mu.
func (s *Session) currentWorkflowLocked() any {
	if s.pending != nil {
		return s.pending
	}
	return s.workflow
}
