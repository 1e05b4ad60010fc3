package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/airdesk-ai/airdesk/internal/application/chat"
	"github.com/airdesk-ai/airdesk/internal/domain/conversation"
	"github.com/airdesk-ai/airdesk/internal/domain/tool"
	"github.com/airdesk-ai/airdesk/internal/domain/workflow"
	"github.com/airdesk-ai/airdesk/pkg/logger"
)

// ChatHandler bridges the conversation service to the MCP server
// surface: two tools for driving a conversation and two resources for
// introspection.
type ChatHandler struct {
	chat      *chat.Service
	workflows *workflow.Registry
	tools     *tool.Registry
	logs      *logger.RingBuffer
	logger    *slog.Logger
}

func NewChatHandler(chatService *chat.Service, workflows *workflow.Registry, tools *tool.Registry, logs *logger.RingBuffer, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chat:      chatService,
		workflows: workflows,
		tools:     tools,
		logs:      logs,
		logger:    logger,
	}
}

// Register wires the chat tools and resources into the MCP server.
func (h *ChatHandler) Register(mcpServer *mcpserver.MCPServer) {
	mcpServer.AddTool(h.buildSendMessageTool(), h.handleSendMessage)
	mcpServer.AddTool(h.buildResetConversationTool(), h.handleResetConversation)

	workflowsResource := mcp.NewResource(
		"airdesk://workflows",
		"Registered workflows",
		mcp.WithResourceDescription("The registered workflows with their steps and tools"),
		mcp.WithMIMEType("application/json"),
	)
	mcpServer.AddResource(workflowsResource, h.handleWorkflowsResource)

	logsResource := mcp.NewResource(
		"airdesk://logs/recent",
		"Recent logs",
		mcp.WithResourceDescription("Recent server log lines with credentials redacted"),
		mcp.WithMIMEType("text/plain"),
	)
	mcpServer.AddResource(logsResource, h.handleLogsResource)

	h.logger.Debug("Chat handler registered",
		"tools", 2,
		"resources", 2)
}

func (h *ChatHandler) buildSendMessageTool() mcp.Tool {
	return mcp.NewTool(
		"send_message",
		mcp.WithDescription("Send a user message to the assistant and get its reply"),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("The user's message text"),
		),
		mcp.WithString("conversation_id",
			mcp.Description("Conversation to continue; omit to start a new one"),
		),
		mcp.WithString("language",
			mcp.Description("Preferred reply language, e.g. 'en-US'"),
		),
		mcp.WithString("timezone",
			mcp.Description("IANA timezone of the user, e.g. 'Asia/Riyadh'"),
		),
		mcp.WithObject("location",
			mcp.Description("Optional user location"),
			mcp.Properties(map[string]interface{}{ // NOTE: This is a valid exception
				"latitude":  map[string]interface{}{"type": "number"}, // NOTE: This is a valid exception
				"longitude": map[string]interface{}{"type": "number"}, // NOTE: This is a valid exception
				"country":   map[string]interface{}{"type": "string"}, // NOTE: This is a valid exception
				"city":      map[string]interface{}{"type": "string"}, // NOTE: This is a valid exception
			}),
		),
	)
}

func (h *ChatHandler) handleSendMessage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := req.RequireString("message")
	if err != nil || strings.TrimSpace(message) == "" {
		return Error("invalid_arguments", "A message is required", "Provide the user's message text", nil), nil
	}

	turn := chat.TurnRequest{
		ConversationID: req.GetString("conversation_id", ""),
		Message:        message,
		Language:       req.GetString("language", ""),
		Timezone:       req.GetString("timezone", ""),
		Location:       parseLocation(req.GetArguments()["location"]),
	}

	result := h.chat.ProcessTurn(ctx, turn)

	return NewResultWithLogger(ToolResponse{
		Status:  ToolStatusOK,
		Message: result.Reply,
		Data: map[string]any{
			"conversation_id": result.ConversationID,
		},
		Links: []ToolLink{
			{
				Rel:    "continue",
				Tool:   "send_message",
				Params: map[string]any{"conversation_id": result.ConversationID},
			},
			{
				Rel:    "reset",
				Tool:   "reset_conversation",
				Params: map[string]any{"conversation_id": result.ConversationID},
			},
		},
	}, h.logger), nil
}

func (h *ChatHandler) buildResetConversationTool() mcp.Tool {
	return mcp.NewTool(
		"reset_conversation",
		mcp.WithDescription("Delete a conversation's stored state and transcript"),
		mcp.WithString("conversation_id",
			mcp.Required(),
			mcp.Description("The conversation to reset"),
		),
	)
}

func (h *ChatHandler) handleResetConversation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conversationID, err := req.RequireString("conversation_id")
	if err != nil {
		return Error("invalid_arguments", "A conversation_id is required", "", nil), nil
	}

	if err := h.chat.Reset(ctx, conversationID); err != nil {
		if errors.Is(err, conversation.ErrNotFound) {
			return Error("not_found", fmt.Sprintf("Conversation '%s' does not exist", conversationID), "", nil), nil
		}
		h.logger.Error("Conversation reset failed", "conversation_id", conversationID, "error", err)
		return Error("reset_failed", "Failed to reset the conversation", "", nil), nil
	}

	return OK(fmt.Sprintf("Conversation '%s' reset", conversationID), nil), nil
}

func (h *ChatHandler) handleWorkflowsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	type stepInfo struct {
		Name           string   `json:"name"`
		Description    string   `json:"description"`
		NextSteps      []string `json:"next_steps,omitempty"`
		RequiredFields []string `json:"required_fields,omitempty"`
		Tools          []string `json:"tools,omitempty"`
		Terminal       bool     `json:"terminal,omitempty"`
	}
	type workflowInfo struct {
		Name        string     `json:"name"`
		Description string     `json:"description"`
		Steps       []stepInfo `json:"steps"`
	}

	var infos []workflowInfo
	for _, wf := range h.workflows.All() {
		info := workflowInfo{
			Name:        wf.Name,
			Description: wf.Description,
		}
		for _, step := range wf.Steps() {
			info.Steps = append(info.Steps, stepInfo{
				Name:           step.Name,
				Description:    step.Description,
				NextSteps:      step.NextSteps,
				RequiredFields: step.RequiredFields,
				Tools:          step.AllowedTools,
				Terminal:       step.Terminal,
			})
		}
		infos = append(infos, info)
	}

	jsonData, err := json.MarshalIndent(map[string]any{
		"workflows": infos,
		"tools":     h.tools.Names(),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workflows: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}

func (h *ChatHandler) handleLogsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	lines := SanitizeLogLines(h.logs.GetLast(200))

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     strings.Join(lines, "\n"),
		},
	}, nil
}

func parseLocation(raw any) *conversation.Location {
	values, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	loc := &conversation.Location{}
	if v, ok := values["latitude"].(float64); ok {
		loc.Latitude = v
	}
	if v, ok := values["longitude"].(float64); ok {
		loc.Longitude = v
	}
	if v, ok := values["country"].(string); ok {
		loc.Country = v
	}
	if v, ok := values["city"].(string); ok {
		loc.City = v
	}
	return loc
}
