package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/airdesk-ai/airdesk/internal/domain/conversation"
	"github.com/airdesk-ai/airdesk/internal/domain/workflow"
)

// Fixed user-visible replies. Internal errors never surface exception
// text; the conversation stays resumable on the next turn.
const (
	FallbackReply  = "I can't process your request right now. Please try again later."
	ToolErrorReply = "An error occurred while processing your request. Please try again later."
)

const welcomePrompt = `You are a friendly airline assistant. Greet the user,
briefly mention that you can help with booking flights, checking flight
status, tracking baggage claims and ordering meals, and invite them to ask
a question. Answer in the user's language.`

const systemPrompt = `You are a helpful airline assistant. Answer the user's
question concisely and in the user's language. If the question relates to
booking, flight status, baggage or meals, tell the user you can guide them
through it.`

const classificationPrompt = `You are routing a message for an airline assistant.
Available workflows:
%s

%s

Recent messages:
%s

User message: %s

Reply with exactly one label:
- "start_workflow/<workflow_name>" to start one of the workflows above
- "faq" if the user asks a general question answerable from documentation
- "agent" for anything else, including continuing the current workflow`

// BuildClassificationPrompt renders the routing prompt for the classifier.
func BuildClassificationPrompt(input ClassifyInput) string {
	recent := make([]string, 0, len(input.RecentMessages))
	for _, m := range input.RecentMessages {
		recent = append(recent, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}
	return fmt.Sprintf(classificationPrompt,
		input.WorkflowDescriptions,
		input.ActiveWorkflowContext,
		strings.Join(recent, "\n"),
		input.LastUserMessage,
	)
}

// WorkflowContext summarizes the active workflow for the classifier, or
// reports that none is active.
func WorkflowContext(state *conversation.State) string {
	if state.CurrentWorkflow == "" {
		return "No active workflow"
	}
	ws := state.WorkflowData[state.CurrentWorkflow]
	if ws == nil {
		return "No active workflow"
	}
	return fmt.Sprintf("Current Workflow: %s\nCurrent Step: %s\nCollected Data: %v",
		state.CurrentWorkflow, ws.CurrentStep, ws.CollectedData)
}

// BuildStepPrompt renders the execution prompt for an active workflow
// step: the workflow description, the full step list with per-step tool
// allowlists, the current step instructions, the collected data, and the
// user's session context.
func BuildStepPrompt(wf *workflow.Workflow, step *workflow.Step, state *conversation.State) string {
	var b strings.Builder

	if desc := strings.TrimSpace(wf.Description); desc != "" {
		b.WriteString(desc)
		b.WriteString("\n")
	}
	if tmpl := strings.TrimSpace(wf.PromptTemplate); tmpl != "" {
		b.WriteString(tmpl)
		b.WriteString("\n")
	}

	b.WriteString("\nThis workflow consists of the following steps:\n")
	for _, s := range wf.Steps() {
		special := "None"
		if s.Terminal {
			special = "This is the final step."
		}
		fmt.Fprintf(&b, "- %s: %s. Special instructions: %s. Available tools for this step: [%s]\n",
			s.Name, s.Description, special, strings.Join(s.AllowedTools, ", "))
	}

	fmt.Fprintf(&b, "\nThe current step is: %s. You can only call the tools for this step. %s\n",
		step.Name, strings.TrimSpace(step.PromptTemplate))

	collected := map[string]any{}
	if ws := state.WorkflowData[wf.Name]; ws != nil {
		collected = ws.CollectedData
	}
	fmt.Fprintf(&b, "You've collected the following data so far for this workflow:\n%v\n", collected)

	city, country := "Not provided", "Not provided"
	if state.Location != nil {
		if state.Location.City != "" {
			city = state.Location.City
		}
		if state.Location.Country != "" {
			country = state.Location.Country
		}
	}

	timezone := state.Timezone
	if timezone == "" {
		timezone = "UTC"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
		timezone = "UTC"
	}
	now := time.Now().In(loc).Format("2006-01-02 15:04:05")

	b.WriteString("\nBelow is the general information about the user:\n")
	fmt.Fprintf(&b, "- Location:\n    - City: %s\n    - Country: %s\n", city, country)
	fmt.Fprintf(&b, "Current Time (%s): %s\n", timezone, now)

	return b.String()
}
