// Package chat implements the top-level turn dispatcher: classify, route,
// execute, advance the active workflow step, persist.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/airdesk-ai/airdesk/internal/application/engine"
	"github.com/airdesk-ai/airdesk/internal/domain/conversation"
	"github.com/airdesk-ai/airdesk/internal/domain/tool"
	"github.com/airdesk-ai/airdesk/internal/domain/workflow"
)

// recentMessageCount bounds the transcript excerpt given to the classifier.
const recentMessageCount = 3

// TurnRequest is one user message within a conversation. An empty
// ConversationID starts a new conversation; the session metadata fields
// are only honored on the first turn.
type TurnRequest struct {
	ConversationID string
	Message        string
	Language       string
	Timezone       string
	Location       *conversation.Location
}

// TurnResult is the outcome of a processed turn.
type TurnResult struct {
	ConversationID string
	Reply          string
}

// Service orchestrates a turn across the registries, the engine and the
// external collaborators. One instance serves all conversations; it holds
// no per-conversation state of its own.
type Service struct {
	workflows  *workflow.Registry
	tools      *tool.Registry
	transition *engine.Transition
	evaluator  *engine.Evaluator
	store      conversation.Store
	classifier Classifier
	executor   Executor
	knowledge  KnowledgeBase
	logger     *slog.Logger
}

// NewService creates the turn dispatcher.
func NewService(
	workflows *workflow.Registry,
	tools *tool.Registry,
	transition *engine.Transition,
	evaluator *engine.Evaluator,
	store conversation.Store,
	classifier Classifier,
	executor Executor,
	knowledge KnowledgeBase,
	logger *slog.Logger,
) *Service {
	return &Service{
		workflows:  workflows,
		tools:      tools,
		transition: transition,
		evaluator:  evaluator,
		store:      store,
		classifier: classifier,
		executor:   executor,
		knowledge:  knowledge,
		logger:     logger,
	}
}

// ProcessTurn runs one request/response cycle. A collaborator failure
// never corrupts stored state: the turn works on a copy and persists only
// after the chosen path completed.
func (s *Service) ProcessTurn(ctx context.Context, req TurnRequest) TurnResult {
	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	state, err := s.loadOrCreate(ctx, conversationID, req)
	if err != nil {
		s.logger.Error("Failed to load conversation state",
			"conversation_id", conversationID,
			"error", err)
		return TurnResult{ConversationID: conversationID, Reply: FallbackReply}
	}

	firstTurn := len(state.Messages) == 0

	state.AppendMessages(conversation.Message{
		Role:    conversation.RoleUser,
		Content: req.Message,
	})

	var reply string
	if firstTurn {
		reply, err = s.welcomeTurn(ctx, state)
	} else {
		reply, err = s.routedTurn(ctx, state)
	}
	if err != nil {
		// Merges from the failed path were applied to the working copy
		// only; the stored state is exactly as it was before the turn.
		s.logger.Error("Turn failed, returning fallback reply",
			"conversation_id", conversationID,
			"error", err)
		return TurnResult{ConversationID: conversationID, Reply: FallbackReply}
	}

	if err := s.store.Save(ctx, conversationID, state); err != nil {
		s.logger.Error("Failed to persist conversation state",
			"conversation_id", conversationID,
			"error", err)
	}

	return TurnResult{ConversationID: conversationID, Reply: reply}
}

// Reset deletes a conversation so the next turn starts fresh.
func (s *Service) Reset(ctx context.Context, conversationID string) error {
	return s.store.Delete(ctx, conversationID)
}

func (s *Service) loadOrCreate(ctx context.Context, id string, req TurnRequest) (*conversation.State, error) {
	state, err := s.store.Load(ctx, id)
	if errors.Is(err, conversation.ErrNotFound) {
		state = conversation.NewState()
		state.Language = req.Language
		state.Timezone = req.Timezone
		state.Location = req.Location
		return state, nil
	}
	if err != nil {
		return nil, err
	}
	return state, nil
}

// welcomeTurn handles the first message of a conversation: greet and end
// the turn without routing or step advancement.
func (s *Service) welcomeTurn(ctx context.Context, state *conversation.State) (string, error) {
	result, err := s.executor.Execute(ctx, ExecuteRequest{
		Prompt: welcomePrompt,
		State:  state,
	})
	if err != nil {
		return "", fmt.Errorf("welcome execution failed: %w", err)
	}

	state.AppendMessages(result.Messages...)
	return lastAssistantReply(state), nil
}

// routedTurn classifies the message and dispatches to the chosen path.
func (s *Service) routedTurn(ctx context.Context, state *conversation.State) (string, error) {
	label, err := s.classify(ctx, state)
	if err != nil {
		return "", fmt.Errorf("classification failed: %w", err)
	}

	s.logger.Info("Turn classified",
		"label", label,
		"active_workflow", state.CurrentWorkflow)

	switch {
	case strings.HasPrefix(label, StartWorkflowLabel):
		name := label[strings.LastIndex(label, "/")+1:]
		if s.workflows.Has(name) {
			s.initWorkflow(state, name)
		} else {
			s.logger.Warn("Classifier requested unknown workflow, falling back to agent",
				"workflow", name)
		}
	case label == LabelFAQ:
		return s.knowledgeTurn(ctx, state)
	}

	return s.agentTurn(ctx, state)
}

func (s *Service) classify(ctx context.Context, state *conversation.State) (string, error) {
	lastMsg, _ := conversation.LastUserMessage(state.Messages)

	recent := state.Messages
	if len(recent) > recentMessageCount {
		recent = recent[len(recent)-recentMessageCount:]
	}

	label, err := s.classifier.Classify(ctx, ClassifyInput{
		LastUserMessage:       lastMsg.Content,
		WorkflowDescriptions:  s.workflows.Describe(),
		ActiveWorkflowContext: WorkflowContext(state),
		RecentMessages:        recent,
	})
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(label)), nil
}

// initWorkflow enters a workflow: current step set to the first declared
// step, collected data seeded from the workflow's initial values.
func (s *Service) initWorkflow(state *conversation.State, name string) {
	wf, err := s.workflows.Get(name)
	if err != nil {
		return
	}
	state.CurrentWorkflow = name
	state.WorkflowData[name] = engine.InitWorkflowState(wf)

	s.logger.Info("Workflow initialized",
		"workflow", name,
		"first_step", state.WorkflowData[name].CurrentStep)
}

// knowledgeTurn answers from the knowledge base and ends the turn without
// passing through step advancement.
func (s *Service) knowledgeTurn(ctx context.Context, state *conversation.State) (string, error) {
	lastMsg, _ := conversation.LastUserMessage(state.Messages)

	answer, err := s.knowledge.Answer(ctx, lastMsg.Content, state)
	if err != nil {
		return "", fmt.Errorf("knowledge base failed: %w", err)
	}

	state.AppendMessages(conversation.Message{
		Role:    conversation.RoleAssistant,
		Content: answer,
	})
	return answer, nil
}

// agentTurn invokes the execution collaborator, with the active step's
// scoped tool set when a workflow is active, then advances the step.
func (s *Service) agentTurn(ctx context.Context, state *conversation.State) (string, error) {
	if state.CurrentWorkflow == "" {
		result, err := s.executor.Execute(ctx, ExecuteRequest{
			Prompt: systemPrompt,
			State:  state,
		})
		if err != nil {
			return "", fmt.Errorf("agent execution failed: %w", err)
		}
		state.AppendMessages(result.Messages...)
		return lastAssistantReply(state), nil
	}

	wf, err := s.workflows.Get(state.CurrentWorkflow)
	if err != nil {
		return "", err
	}

	ws := state.Workflow(wf.Name)
	step := wf.Step(ws.CurrentStep)
	if step == nil {
		s.logger.Warn("Current step not found in workflow",
			"workflow", wf.Name,
			"step", ws.CurrentStep)
		state.AppendMessages(conversation.Message{
			Role:    conversation.RoleAssistant,
			Content: ToolErrorReply,
		})
		return ToolErrorReply, nil
	}

	scoped, missing := s.tools.ScopedView(wf.Name, step.AllowedTools)
	if len(missing) > 0 {
		// Recovered per turn: generic reply, workflow data untouched.
		s.logger.Error("Allowed tools failed to resolve",
			"workflow", wf.Name,
			"step", step.Name,
			"missing", missing)
		state.AppendMessages(conversation.Message{
			Role:    conversation.RoleAssistant,
			Content: ToolErrorReply,
		})
		return ToolErrorReply, nil
	}

	result, err := s.executor.Execute(ctx, ExecuteRequest{
		Prompt: BuildStepPrompt(wf, step, state),
		Tools:  scoped,
		State:  state,
	})
	if err != nil {
		return "", fmt.Errorf("agent execution failed: %w", err)
	}

	state.AppendMessages(result.Messages...)
	s.applyInvocations(ctx, state, wf, scoped, result.Invocations)
	s.advanceStep(state, wf, step)

	return lastAssistantReply(state), nil
}

// applyInvocations resolves each requested tool call against the scoped
// view and merges its patch. A failing tool skips its patch; the rest of
// the turn proceeds.
func (s *Service) applyInvocations(ctx context.Context, state *conversation.State, wf *workflow.Workflow, scoped map[string]tool.Tool, invocations []tool.Invocation) {
	for _, inv := range invocations {
		impl, ok := scoped[inv.Name]
		if !ok {
			base := inv.Name
			if _, after, found := strings.Cut(inv.Name, "."); found {
				base = after
			}
			impl, ok = scoped[tool.Qualified(wf.Name, base)]
		}
		if !ok {
			s.logger.Warn("Execution collaborator requested a tool outside the step allowlist",
				"workflow", wf.Name,
				"tool", inv.Name)
			continue
		}

		patch, err := impl.Handler(ctx, tool.Call{
			Workflow:   wf.Name,
			ToolCallID: inv.ID,
			Arguments:  inv.Arguments,
			State:      state,
		})
		if err != nil {
			s.logger.Error("Tool invocation failed, patch not applied",
				"workflow", wf.Name,
				"tool", inv.Name,
				"error", err)
			continue
		}
		state.Apply(patch)
	}
}

// advanceStep runs value calculations on the current step, merges the
// results into collected data, then computes the transition. An unchanged
// terminal result finishes the workflow: its entry is cleared to nil and
// the conversation returns to open routing on the next turn.
func (s *Service) advanceStep(state *conversation.State, wf *workflow.Workflow, step *workflow.Step) {
	ws := state.WorkflowData[wf.Name]
	if ws == nil {
		return
	}

	if calculated := s.evaluator.Calculate(step, ws.CollectedData); len(calculated) > 0 {
		ws.CollectedData = conversation.Merge(ws.CollectedData, calculated)
	}

	next := s.transition.NextStep(wf, ws.CurrentStep, ws.CollectedData)
	switch {
	case next == "":
		// Missing fields or a stalled definition: stay on the step.
	case next == ws.CurrentStep && step.Terminal:
		s.logger.Info("Workflow completed",
			"workflow", wf.Name,
			"final_step", step.Name)
		state.ClearWorkflow(wf.Name)
	default:
		s.logger.Info("Workflow advanced",
			"workflow", wf.Name,
			"from", ws.CurrentStep,
			"to", next)
		ws.CurrentStep = next
	}
}

func lastAssistantReply(state *conversation.State) string {
	for i := len(state.Messages) - 1; i >= 0; i-- {
		if state.Messages[i].Role == conversation.RoleAssistant {
			return state.Messages[i].Content
		}
	}
	return FallbackReply
}
