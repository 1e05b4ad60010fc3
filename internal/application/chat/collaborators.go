package chat

import (
	"context"

	"github.com/airdesk-ai/airdesk/internal/domain/conversation"
	"github.com/airdesk-ai/airdesk/internal/domain/tool"
)

// Classification labels returned by the classifier. A workflow start is
// expressed as "start_workflow/<name>"; anything unrecognized routes to
// the general agent.
const (
	LabelAgent         = "agent"
	LabelFAQ           = "faq"
	StartWorkflowLabel = "start_workflow"
)

// ClassifyInput is the routing context handed to the classification
// collaborator.
type ClassifyInput struct {
	LastUserMessage      string
	WorkflowDescriptions string
	// ActiveWorkflowContext summarizes the active workflow, its step and
	// collected data, or states that no workflow is active.
	ActiveWorkflowContext string
	RecentMessages        []conversation.Message
}

// Classifier routes an incoming message. The engine treats the call as an
// opaque function over text.
type Classifier interface {
	Classify(ctx context.Context, input ClassifyInput) (string, error)
}

// ExecuteRequest binds the execution collaborator to a prompt, an exact
// tool set, and the current conversation state.
type ExecuteRequest struct {
	Prompt string
	// Tools is keyed by workflow-qualified name. Empty means the general
	// assistant persona with no tools.
	Tools map[string]tool.Tool
	State *conversation.State
}

// ExecuteResult carries the messages produced by the collaborator and the
// tool invocations it decided on. Invocations are resolved and executed by
// the dispatcher, never by the collaborator itself.
type ExecuteResult struct {
	Messages    []conversation.Message
	Invocations []tool.Invocation
}

// Executor is the LLM-backed execution collaborator.
type Executor interface {
	Execute(ctx context.Context, req ExecuteRequest) (*ExecuteResult, error)
}

// KnowledgeBase answers questions routed to the FAQ path. Retrieval is an
// external concern; the dispatcher only consumes the final answer text.
type KnowledgeBase interface {
	Answer(ctx context.Context, question string, state *conversation.State) (string, error)
}
