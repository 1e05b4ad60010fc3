package baggagetracking_test

import (
	"context"
	"io"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/airdesk-ai/airdesk/internal/application/engine"
	"github.com/airdesk-ai/airdesk/internal/domain/conversation"
	"github.com/airdesk-ai/airdesk/internal/domain/tool"
	"github.com/airdesk-ai/airdesk/internal/workflow-plugins/baggagetracking"
)

func handlerFor(p *baggagetracking.Plugin, name string) tool.Handler {
	for _, t := range p.Tools() {
		if t.Name == name {
			return t.Handler
		}
	}
	Fail("no such tool: " + name)
	return nil
}

var _ = Describe("Baggage tracking tools", func() {
	var (
		ctx    context.Context
		plugin *baggagetracking.Plugin
		state  *conversation.State
	)

	BeforeEach(func() {
		ctx = context.Background()
		plugin = baggagetracking.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
		state = conversation.NewState()
	})

	call := func(args map[string]any) tool.Call {
		return tool.Call{
			Workflow:  baggagetracking.WorkflowName,
			Arguments: args,
			State:     state,
		}
	}

	Describe("check_baggage_status", func() {
		It("should report an approved compensation claim", func() {
			patch, err := handlerFor(plugin, "check_baggage_status")(ctx, call(map[string]any{
				"claim_number": "ABC123456",
			}))
			Expect(err).NotTo(HaveOccurred())

			state.Apply(patch)
			data := state.Workflow(baggagetracking.WorkflowName).CollectedData
			response, ok := data["baggage_system_response"].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(response).To(HaveKeyWithValue("status", "COMPENSATION_APPROVED"))
			Expect(response).To(HaveKeyWithValue("compensation", 1500.00))
		})

		It("should fall back to the claim number collected earlier", func() {
			patch, err := handlerFor(plugin, "collect_claim_number")(ctx, call(map[string]any{
				"claim_number": "DEF654321",
			}))
			Expect(err).NotTo(HaveOccurred())
			state.Apply(patch)

			patch, err = handlerFor(plugin, "check_baggage_status")(ctx, call(nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(patch.Messages[0].Content).To(ContainSubstring("IN_REVIEW"))
		})

		It("should answer NOT_FOUND for an unknown claim", func() {
			patch, err := handlerFor(plugin, "check_baggage_status")(ctx, call(map[string]any{
				"claim_number": "ZZZ000000",
			}))
			Expect(err).NotTo(HaveOccurred())

			state.Apply(patch)
			response := state.Workflow(baggagetracking.WorkflowName).
				CollectedData["baggage_system_response"].(map[string]any)
			Expect(response).To(HaveKeyWithValue("status", "NOT_FOUND"))
		})

		It("should fail when no claim number is known at all", func() {
			_, err := handlerFor(plugin, "check_baggage_status")(ctx, call(nil))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("workflow definition", func() {
		var evaluator *engine.Evaluator

		BeforeEach(func() {
			evaluator = engine.NewEvaluator(slog.New(slog.NewTextHandler(io.Discard, nil)))
		})

		It("should keep the derived status empty before the backend answered", func() {
			wf, err := plugin.Workflow()
			Expect(err).NotTo(HaveOccurred())
			Expect(wf.Validate()).To(Succeed())

			derived := evaluator.Calculate(wf.FirstStep(), map[string]any{
				"claim_number": "ABC123456",
			})
			Expect(derived).To(HaveKeyWithValue("status", ""))
		})

		It("should derive status and compensation from the backend response", func() {
			wf, err := plugin.Workflow()
			Expect(err).NotTo(HaveOccurred())

			derived := evaluator.Calculate(wf.FirstStep(), map[string]any{
				"baggage_system_response": map[string]any{
					"status":       "COMPENSATION_APPROVED",
					"compensation": 1500.00,
				},
			})
			Expect(derived).To(HaveKeyWithValue("status", "COMPENSATION_APPROVED"))
			Expect(derived["compensation_amount"]).To(BeNumerically("==", 1500))
		})
	})
})
