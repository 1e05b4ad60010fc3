package chat_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/airdesk-ai/airdesk/internal/application/chat"
	"github.com/airdesk-ai/airdesk/internal/application/engine"
	"github.com/airdesk-ai/airdesk/internal/domain/conversation"
	"github.com/airdesk-ai/airdesk/internal/domain/tool"
	"github.com/airdesk-ai/airdesk/internal/domain/workflow"
	"github.com/airdesk-ai/airdesk/internal/infrastructure/statestore"
)

type stubClassifier struct {
	label  string
	err    error
	inputs []chat.ClassifyInput
}

func (c *stubClassifier) Classify(ctx context.Context, input chat.ClassifyInput) (string, error) {
	c.inputs = append(c.inputs, input)
	return c.label, c.err
}

type stubExecutor struct {
	execute  func(req chat.ExecuteRequest) (*chat.ExecuteResult, error)
	requests []chat.ExecuteRequest
}

func (e *stubExecutor) Execute(ctx context.Context, req chat.ExecuteRequest) (*chat.ExecuteResult, error) {
	e.requests = append(e.requests, req)
	if e.execute != nil {
		return e.execute(req)
	}
	return &chat.ExecuteResult{
		Messages: []conversation.Message{{Role: conversation.RoleAssistant, Content: "ok"}},
	}, nil
}

type stubKnowledge struct {
	answer string
	err    error
	asked  []string
}

func (k *stubKnowledge) Answer(ctx context.Context, question string, state *conversation.State) (string, error) {
	k.asked = append(k.asked, question)
	return k.answer, k.err
}

func assistantReply(content string) *chat.ExecuteResult {
	return &chat.ExecuteResult{
		Messages: []conversation.Message{{Role: conversation.RoleAssistant, Content: content}},
	}
}

var _ = Describe("Service", func() {
	var (
		ctx        context.Context
		workflows  *workflow.Registry
		tools      *tool.Registry
		store      *statestore.MemoryStore
		classifier *stubClassifier
		executor   *stubExecutor
		knowledge  *stubKnowledge
		service    *chat.Service
	)

	const conversationID = "conv-1"

	newService := func() *chat.Service {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		return chat.NewService(
			workflows,
			tools,
			engine.NewTransition(logger),
			engine.NewEvaluator(logger),
			store,
			classifier,
			executor,
			knowledge,
			logger,
		)
	}

	// The fixture workflow collects an origin city and finishes.
	buildFixtures := func() {
		wf := workflow.New("city_check", "Use this workflow to check a city")
		wf.MustAddStep(&workflow.Step{
			Name:           "collect",
			Description:    "Collect the city from the user",
			NextSteps:      []string{"finish"},
			RequiredFields: []string{"origin"},
			AllowedTools:   []string{"collect_origin"},
		})
		wf.MustAddStep(&workflow.Step{
			Name:         "finish",
			Description:  "Confirm and finish",
			AllowedTools: []string{"confirm_city"},
			Terminal:     true,
		})
		Expect(workflows.Register(wf)).To(Succeed())

		tools.RegisterAll("city_check", []tool.Tool{
			{
				Name: "collect_origin",
				Handler: func(ctx context.Context, call tool.Call) (*conversation.Patch, error) {
					return tool.DataPatch("city_check", map[string]any{
						"origin": tool.StringArg(call.Arguments, "origin"),
					}, tool.ResultMessage(call, "collect_origin", "origin recorded")), nil
				},
			},
			{
				Name: "confirm_city",
				Handler: func(ctx context.Context, call tool.Call) (*conversation.Patch, error) {
					return &conversation.Patch{
						Messages: []conversation.Message{tool.ResultMessage(call, "confirm_city", "confirmed")},
					}, nil
				},
			},
		})
	}

	// seedConversation stores a state that already holds a transcript so
	// the next turn takes the routed path.
	seedConversation := func(mutate func(*conversation.State)) {
		state := conversation.NewState()
		state.AppendMessages(
			conversation.Message{Role: conversation.RoleUser, Content: "hello"},
			conversation.Message{Role: conversation.RoleAssistant, Content: "welcome"},
		)
		if mutate != nil {
			mutate(state)
		}
		Expect(store.Save(ctx, conversationID, state)).To(Succeed())
	}

	BeforeEach(func() {
		ctx = context.Background()
		workflows = workflow.NewRegistry()
		tools = tool.NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))
		store = statestore.NewMemoryStore()
		classifier = &stubClassifier{label: chat.LabelAgent}
		executor = &stubExecutor{}
		knowledge = &stubKnowledge{answer: "from the docs"}
		buildFixtures()
		service = newService()
	})

	Describe("first turn", func() {
		It("should welcome without classifying", func() {
			executor.execute = func(req chat.ExecuteRequest) (*chat.ExecuteResult, error) {
				return assistantReply("Welcome aboard!"), nil
			}

			result := service.ProcessTurn(ctx, chat.TurnRequest{Message: "I want to book a flight"})

			Expect(result.Reply).To(Equal("Welcome aboard!"))
			Expect(result.ConversationID).NotTo(BeEmpty())
			Expect(classifier.inputs).To(BeEmpty())

			saved, err := store.Load(ctx, result.ConversationID)
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Messages).To(HaveLen(2))
			Expect(saved.Messages[0].Role).To(Equal(conversation.RoleUser))
		})

		It("should record session metadata from the request", func() {
			result := service.ProcessTurn(ctx, chat.TurnRequest{
				Message:  "hi",
				Language: "ar-SA",
				Timezone: "Asia/Riyadh",
				Location: &conversation.Location{City: "Riyadh", Country: "SA"},
			})

			saved, err := store.Load(ctx, result.ConversationID)
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Language).To(Equal("ar-SA"))
			Expect(saved.Timezone).To(Equal("Asia/Riyadh"))
			Expect(saved.Location.City).To(Equal("Riyadh"))
		})
	})

	Describe("workflow start", func() {
		It("should initialize the workflow and execute its first step", func() {
			seedConversation(nil)
			classifier.label = "start_workflow/city_check"
			executor.execute = func(req chat.ExecuteRequest) (*chat.ExecuteResult, error) {
				Expect(req.Tools).To(HaveKey("city_check.collect_origin"))
				return assistantReply("Which city?"), nil
			}

			result := service.ProcessTurn(ctx, chat.TurnRequest{
				ConversationID: conversationID,
				Message:        "check a city",
			})

			Expect(result.Reply).To(Equal("Which city?"))

			saved, err := store.Load(ctx, conversationID)
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.CurrentWorkflow).To(Equal("city_check"))
			// origin not collected yet, so the step does not advance
			Expect(saved.WorkflowData["city_check"].CurrentStep).To(Equal("collect"))
		})

		It("should fall back to the agent for an unknown workflow label", func() {
			seedConversation(nil)
			classifier.label = "start_workflow/no_such_workflow"
			executor.execute = func(req chat.ExecuteRequest) (*chat.ExecuteResult, error) {
				Expect(req.Tools).To(BeEmpty())
				return assistantReply("plain answer"), nil
			}

			result := service.ProcessTurn(ctx, chat.TurnRequest{
				ConversationID: conversationID,
				Message:        "do something odd",
			})

			Expect(result.Reply).To(Equal("plain answer"))

			saved, err := store.Load(ctx, conversationID)
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.CurrentWorkflow).To(BeEmpty())
		})
	})

	Describe("workflow progress", func() {
		activeWorkflow := func(state *conversation.State) {
			wf, err := workflows.Get("city_check")
			Expect(err).NotTo(HaveOccurred())
			state.CurrentWorkflow = "city_check"
			state.WorkflowData["city_check"] = engine.InitWorkflowState(wf)
		}

		It("should apply tool patches and advance when requirements are met", func() {
			seedConversation(activeWorkflow)
			executor.execute = func(req chat.ExecuteRequest) (*chat.ExecuteResult, error) {
				return &chat.ExecuteResult{
					Messages: []conversation.Message{{Role: conversation.RoleAssistant, Content: "Noted, Riyadh."}},
					Invocations: []tool.Invocation{{
						ID:        "call-1",
						Name:      "city_check.collect_origin",
						Arguments: map[string]any{"origin": "Riyadh"},
					}},
				}, nil
			}

			result := service.ProcessTurn(ctx, chat.TurnRequest{
				ConversationID: conversationID,
				Message:        "it's Riyadh",
			})

			Expect(result.Reply).To(Equal("Noted, Riyadh."))

			saved, err := store.Load(ctx, conversationID)
			Expect(err).NotTo(HaveOccurred())
			ws := saved.WorkflowData["city_check"]
			Expect(ws.CollectedData).To(HaveKeyWithValue("origin", "Riyadh"))
			Expect(ws.CurrentStep).To(Equal("finish"))
		})

		It("should finish a satisfied terminal step and clear the workflow", func() {
			seedConversation(func(state *conversation.State) {
				activeWorkflow(state)
				ws := state.WorkflowData["city_check"]
				ws.CurrentStep = "finish"
				ws.CollectedData["origin"] = "Riyadh"
			})
			executor.execute = func(req chat.ExecuteRequest) (*chat.ExecuteResult, error) {
				return assistantReply("All done."), nil
			}

			result := service.ProcessTurn(ctx, chat.TurnRequest{
				ConversationID: conversationID,
				Message:        "thanks",
			})

			Expect(result.Reply).To(Equal("All done."))

			saved, err := store.Load(ctx, conversationID)
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.CurrentWorkflow).To(BeEmpty())
			Expect(saved.WorkflowData).To(HaveKey("city_check"))
			Expect(saved.WorkflowData["city_check"]).To(BeNil())
		})

		It("should skip the patch of a failing tool and continue the turn", func() {
			tools.RegisterAll("city_check", []tool.Tool{{
				Name: "collect_origin",
				Handler: func(ctx context.Context, call tool.Call) (*conversation.Patch, error) {
					return nil, fmt.Errorf("backend unavailable")
				},
			}})
			seedConversation(activeWorkflow)
			executor.execute = func(req chat.ExecuteRequest) (*chat.ExecuteResult, error) {
				return &chat.ExecuteResult{
					Messages: []conversation.Message{{Role: conversation.RoleAssistant, Content: "Let me try."}},
					Invocations: []tool.Invocation{{
						ID:        "call-1",
						Name:      "city_check.collect_origin",
						Arguments: map[string]any{"origin": "Riyadh"},
					}},
				}, nil
			}

			result := service.ProcessTurn(ctx, chat.TurnRequest{
				ConversationID: conversationID,
				Message:        "it's Riyadh",
			})

			Expect(result.Reply).To(Equal("Let me try."))

			saved, err := store.Load(ctx, conversationID)
			Expect(err).NotTo(HaveOccurred())
			ws := saved.WorkflowData["city_check"]
			Expect(ws.CollectedData).NotTo(HaveKey("origin"))
			Expect(ws.CurrentStep).To(Equal("collect"))
		})

		It("should ignore invocations outside the step allowlist", func() {
			seedConversation(activeWorkflow)
			executor.execute = func(req chat.ExecuteRequest) (*chat.ExecuteResult, error) {
				return &chat.ExecuteResult{
					Messages: []conversation.Message{{Role: conversation.RoleAssistant, Content: "Hm."}},
					Invocations: []tool.Invocation{{
						ID:   "call-1",
						Name: "city_check.confirm_city",
					}},
				}, nil
			}

			result := service.ProcessTurn(ctx, chat.TurnRequest{
				ConversationID: conversationID,
				Message:        "confirm it",
			})

			Expect(result.Reply).To(Equal("Hm."))

			saved, err := store.Load(ctx, conversationID)
			Expect(err).NotTo(HaveOccurred())
			// confirm_city's message never entered the transcript
			for _, msg := range saved.Messages {
				Expect(msg.Name).NotTo(Equal("confirm_city"))
			}
		})

		It("should reply with the tool error text when allowed tools cannot resolve", func() {
			wf := workflow.New("broken_flow", "a flow whose tools were never contributed")
			wf.MustAddStep(&workflow.Step{
				Name:         "only",
				AllowedTools: []string{"ghost_tool"},
				Terminal:     true,
			})
			Expect(workflows.Register(wf)).To(Succeed())

			seedConversation(func(state *conversation.State) {
				state.CurrentWorkflow = "broken_flow"
				state.WorkflowData["broken_flow"] = engine.InitWorkflowState(wf)
			})

			result := service.ProcessTurn(ctx, chat.TurnRequest{
				ConversationID: conversationID,
				Message:        "go on",
			})

			Expect(result.Reply).To(Equal(chat.ToolErrorReply))

			saved, err := store.Load(ctx, conversationID)
			Expect(err).NotTo(HaveOccurred())
			// transcript persisted, workflow untouched
			Expect(saved.WorkflowData["broken_flow"].CurrentStep).To(Equal("only"))
			Expect(saved.Messages[len(saved.Messages)-1].Content).To(Equal(chat.ToolErrorReply))
		})
	})

	Describe("faq routing", func() {
		It("should answer from the knowledge base without step advancement", func() {
			seedConversation(nil)
			classifier.label = chat.LabelFAQ

			result := service.ProcessTurn(ctx, chat.TurnRequest{
				ConversationID: conversationID,
				Message:        "what is the baggage allowance?",
			})

			Expect(result.Reply).To(Equal("from the docs"))
			Expect(knowledge.asked).To(Equal([]string{"what is the baggage allowance?"}))
			Expect(executor.requests).To(BeEmpty())
		})
	})

	Describe("collaborator failure", func() {
		It("should return the fallback reply and not persist the turn", func() {
			seedConversation(nil)
			classifier.err = errors.New("classifier down")

			result := service.ProcessTurn(ctx, chat.TurnRequest{
				ConversationID: conversationID,
				Message:        "hello again",
			})

			Expect(result.Reply).To(Equal(chat.FallbackReply))

			saved, err := store.Load(ctx, conversationID)
			Expect(err).NotTo(HaveOccurred())
			// the failed turn's user message was not saved
			Expect(saved.Messages).To(HaveLen(2))
		})

		It("should return the fallback reply when the executor fails", func() {
			seedConversation(nil)
			executor.execute = func(req chat.ExecuteRequest) (*chat.ExecuteResult, error) {
				return nil, errors.New("llm unavailable")
			}

			result := service.ProcessTurn(ctx, chat.TurnRequest{
				ConversationID: conversationID,
				Message:        "hello again",
			})

			Expect(result.Reply).To(Equal(chat.FallbackReply))
		})
	})

	Describe("Reset", func() {
		It("should delete the conversation", func() {
			seedConversation(nil)

			Expect(service.Reset(ctx, conversationID)).To(Succeed())

			_, err := store.Load(ctx, conversationID)
			Expect(errors.Is(err, conversation.ErrNotFound)).To(BeTrue())
		})
	})
})
