// Package tool holds the tool contract and the flat registry with
// per-workflow scoping.
package tool

import (
	"context"
	"errors"

	"github.com/airdesk-ai/airdesk/internal/domain/conversation"
)

// ErrNotFound is returned when a tool name resolves to nothing.
var ErrNotFound = errors.New("tool not found")

// Call carries everything a tool receives for one invocation: the declared
// arguments produced by the execution collaborator and a read view of the
// conversation state.
type Call struct {
	// Workflow is the workflow the invocation runs under; empty for tools
	// invoked outside a workflow.
	Workflow   string
	ToolCallID string
	Arguments  map[string]any
	State      *conversation.State
}

// Handler is a tool implementation. It returns a state patch rather than
// mutating state directly; the dispatcher merges the patch only after a
// successful return.
type Handler func(ctx context.Context, call Call) (*conversation.Patch, error)

// Tool is a named callable contributed by a workflow module.
type Tool struct {
	Name        string
	Description string
	// Parameters is the JSON-schema properties block advertised to the
	// execution collaborator.
	Parameters map[string]any
	Handler    Handler
}

// Invocation is one tool call requested by the execution collaborator,
// resolved against the registry by the dispatcher.
type Invocation struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// Qualified returns the workflow-scoped form of a tool name.
func Qualified(workflowName, name string) string {
	return workflowName + "." + name
}
