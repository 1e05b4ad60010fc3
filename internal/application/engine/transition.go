// Package engine implements step transition and derived-value evaluation
// for active workflows.
package engine

import (
	"log/slog"
	"reflect"

	"github.com/airdesk-ai/airdesk/internal/domain/conversation"
	"github.com/airdesk-ai/airdesk/internal/domain/workflow"
)

// Transition decides whether and where a workflow advances after a turn.
type Transition struct {
	logger *slog.Logger
}

// NewTransition creates a transition engine.
func NewTransition(logger *slog.Logger) *Transition {
	return &Transition{logger: logger}
}

// NextStep computes where the workflow goes from stepName given the data
// collected so far. It returns:
//   - "" when the step is unknown, required fields are missing, or a
//     non-terminal step has no successor (the workflow stays put);
//   - the same name for a satisfied terminal step, which the caller must
//     treat as "finish the workflow";
//   - the first declared successor otherwise.
func (t *Transition) NextStep(wf *workflow.Workflow, stepName string, collected map[string]any) string {
	step := wf.Step(stepName)
	if step == nil {
		t.logger.Warn("Step not found in workflow",
			"workflow", wf.Name,
			"step", stepName)
		return ""
	}

	if missing := MissingFields(step, collected); len(missing) > 0 {
		t.logger.Debug("Required fields missing, staying on step",
			"workflow", wf.Name,
			"step", stepName,
			"missing", missing)
		return ""
	}

	// Confirmation gating is intentionally not applied here even when the
	// step declares RequiresConfirmation.

	if step.Terminal {
		return step.Name
	}

	next := step.NextStep()
	if next == "" {
		// Dead end: a non-terminal step without successor. Registry
		// validation rejects this at startup; reaching it at runtime means
		// a definition was loaded past validation, so stall rather than
		// guess.
		t.logger.Warn("Non-terminal step has no successor",
			"workflow", wf.Name,
			"step", stepName)
		return ""
	}
	return next
}

// MissingFields lists the step's required fields that are absent or empty
// (nil, empty string, or empty list) in the collected data.
func MissingFields(step *workflow.Step, collected map[string]any) []string {
	var missing []string
	for _, field := range step.RequiredFields {
		value, ok := collected[field]
		if !ok || isEmptyValue(value) {
			missing = append(missing, field)
		}
	}
	return missing
}

func isEmptyValue(value any) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice {
		return rv.Len() == 0
	}
	return false
}

// InitWorkflowState builds the entry written into conversation state when
// a workflow is entered: the first declared step and a shallow copy of the
// workflow's initial values.
func InitWorkflowState(wf *workflow.Workflow) *conversation.WorkflowState {
	collected := make(map[string]any, len(wf.InitialData))
	for k, v := range wf.InitialData {
		collected[k] = v
	}
	return &conversation.WorkflowState{
		CurrentStep:   wf.FirstStep().Name,
		CollectedData: collected,
	}
}
