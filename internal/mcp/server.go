package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"n8n-copilot/backend/internal/services"
)

// Server exposes the copilot's read and chat operations as MCP tools so
// agent clients can inspect executions and converse about a workflow.
type Server struct {
	mcpServer  *server.MCPServer
	executions *services.ExecutionService
	workflows  services.WorkflowClient
	assistant  *services.Assistant
}

// NewServer creates a new Server and registers its tools.
func NewServer(executions *services.ExecutionService, workflows services.WorkflowClient, assistant *services.Assistant) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"n8n Copilot",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
		executions: executions,
		workflows:  workflows,
		assistant:  assistant,
	}

	s.registerTools()
	return s
}

// GetMCPServer returns the underlying MCP server for mounting.
func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_workflow",
			mcp.WithDescription("Fetch an n8n workflow definition by id"),
			mcp.WithString("id", mcp.Required(), mcp.Description("The workflow id")),
		),
		s.handleGetWorkflow,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"execution_stats",
			mcp.WithDescription("Global execution statistics across all logged runs"),
		),
		s.handleExecutionStats,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"chat_with_workflow",
			mcp.WithDescription("Ask the workflow assistant one question about a workflow"),
			mcp.WithString("id", mcp.Required(), mcp.Description("The workflow id")),
			mcp.WithString("message", mcp.Required(), mcp.Description("The question or instruction")),
		),
		s.handleChatWithWorkflow,
	)
}

func (s *Server) handleGetWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	id, ok := args["id"].(string)
	if !ok || id == "" {
		return mcp.NewToolResultError("Missing required parameter: id"), nil
	}

	workflow, err := s.workflows.GetWorkflow(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch workflow: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(workflow)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleExecutionStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.executions.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to compute stats: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(stats)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// handleChatWithWorkflow is a one-shot converse against the live definition:
// no session, no history, no apply. Any proposed modification is returned as
// part of the result for the agent to inspect.
func (s *Server) handleChatWithWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	id, ok := args["id"].(string)
	if !ok || id == "" {
		return mcp.NewToolResultError("Missing required parameter: id"), nil
	}
	message, ok := args["message"].(string)
	if !ok || message == "" {
		return mcp.NewToolResultError("Missing required parameter: message"), nil
	}

	workflow, err := s.workflows.GetWorkflow(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch workflow: %v", err)), nil
	}

	result, err := s.assistant.Converse(ctx, workflow, nil, message, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Chat failed: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(result)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// MountHTTPHandlers mounts the MCP SSE endpoints on the given mux.
func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
