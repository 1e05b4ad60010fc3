// Package llm implements the classification and execution collaborators
// on top of an OpenAI-compatible chat completion API.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/airdesk-ai/airdesk/internal/application/chat"
	"github.com/airdesk-ai/airdesk/internal/domain/conversation"
	"github.com/airdesk-ai/airdesk/internal/domain/tool"
	"github.com/airdesk-ai/airdesk/pkg/config"
)

// Client adapts an OpenAI-compatible endpoint to the collaborator
// interfaces consumed by the dispatcher.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	logger      *slog.Logger
}

// NewClient creates the LLM collaborator client.
func NewClient(cfg config.LLMConfig, logger *slog.Logger) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &Client{
		api:         openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

// Classify routes a message to a label. Malformed model output falls back
// to the general agent label in the dispatcher, so the raw trimmed text is
// returned as-is.
func (c *Client) Classify(ctx context.Context, input chat.ClassifyInput) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: chat.BuildClassificationPrompt(input)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("classification request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("classification returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Execute sends the prompt, the transcript and the step's tool set to the
// model and reports back the produced messages and requested tool calls.
// Tool calls are not executed here; the dispatcher resolves and runs them.
func (c *Client) Execute(ctx context.Context, req chat.ExecuteRequest) (*chat.ExecuteResult, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: req.Prompt},
	}
	messages = append(messages, transcriptMessages(req.State)...)

	completionReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages:    messages,
		Tools:       apiTools(req.Tools),
	}

	resp, err := c.api.CreateChatCompletion(ctx, completionReq)
	if err != nil {
		return nil, fmt.Errorf("execution request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("execution returned no choices")
	}

	choice := resp.Choices[0].Message
	result := &chat.ExecuteResult{}

	if choice.Content != "" {
		result.Messages = append(result.Messages, conversation.Message{
			Role:    conversation.RoleAssistant,
			Content: choice.Content,
		})
	}

	for _, call := range choice.ToolCalls {
		var args map[string]any
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				c.logger.Warn("Discarding tool call with malformed arguments",
					"tool", call.Function.Name,
					"error", err)
				continue
			}
		}
		result.Invocations = append(result.Invocations, tool.Invocation{
			ID:        call.ID,
			Name:      unsanitizeName(call.Function.Name),
			Arguments: args,
		})
	}

	return result, nil
}

// Answer handles the FAQ path. Document retrieval lives outside this
// module; the model is asked directly with the question and transcript
// context.
func (c *Client) Answer(ctx context.Context, question string, state *conversation.State) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: faqPrompt},
	}
	messages = append(messages, transcriptMessages(state)...)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: question,
	})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages:    messages,
	})
	if err != nil {
		return "", fmt.Errorf("knowledge base request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("knowledge base returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

const faqPrompt = `You are an airline customer support assistant. Answer the
user's question about airline policies and services concisely. If you do
not know the answer, say so and suggest contacting support.`

func transcriptMessages(state *conversation.State) []openai.ChatCompletionMessage {
	if state == nil {
		return nil
	}
	out := make([]openai.ChatCompletionMessage, 0, len(state.Messages))
	for _, m := range state.Messages {
		switch m.Role {
		case conversation.RoleUser:
			out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: m.Content})
		case conversation.RoleAssistant:
			out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: m.Content})
		case conversation.RoleTool:
			// Tool outputs are folded into user-visible context; replaying
			// provider-specific tool call ids across turns is not reliable.
			out = append(out, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("[%s] %s", m.Name, m.Content),
			})
		}
	}
	return out
}

func apiTools(tools map[string]tool.Tool) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}

	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]openai.Tool, 0, len(names))
	for _, name := range names {
		t := tools[name]
		params := t.Parameters
		if params == nil {
			params = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        sanitizeName(name),
				Description: t.Description,
				Parameters:  params,
			},
		})
	}
	return out
}

// The chat completion API restricts function names to [a-zA-Z0-9_-], so
// workflow-qualified names swap their dot for a double underscore on the
// wire and back again on the way in.
func sanitizeName(name string) string {
	return strings.ReplaceAll(name, ".", "__")
}

func unsanitizeName(name string) string {
	return strings.Replace(name, "__", ".", 1)
}
