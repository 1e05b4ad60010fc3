package engine_test

import (
	"io"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/airdesk-ai/airdesk/internal/application/engine"
	"github.com/airdesk-ai/airdesk/internal/domain/workflow"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ = Describe("Transition", func() {
	var (
		transition *engine.Transition
		wf         *workflow.Workflow
	)

	BeforeEach(func() {
		transition = engine.NewTransition(discardLogger())

		wf = workflow.New("flight_booking", "booking")
		wf.MustAddStep(&workflow.Step{
			Name:           "search",
			NextSteps:      []string{"select", "review"},
			RequiredFields: []string{"origin", "destination"},
		})
		wf.MustAddStep(&workflow.Step{
			Name:           "select",
			NextSteps:      []string{"book"},
			RequiredFields: []string{"selected_flight"},
		})
		wf.MustAddStep(&workflow.Step{
			Name:     "book",
			Terminal: true,
		})
	})

	Describe("NextStep", func() {
		It("should stay put while required fields are missing", func() {
			next := transition.NextStep(wf, "search", map[string]any{"origin": "RUH"})

			Expect(next).To(BeEmpty())
		})

		It("should treat empty strings and empty lists as missing", func() {
			collected := map[string]any{"origin": "", "destination": []any{}}

			Expect(transition.NextStep(wf, "search", collected)).To(BeEmpty())
		})

		It("should treat zero as present", func() {
			step := &workflow.Step{
				Name:           "count",
				RequiredFields: []string{"passengers_count"},
			}

			Expect(engine.MissingFields(step, map[string]any{"passengers_count": 0})).To(BeEmpty())
		})

		It("should advance to the first declared successor when satisfied", func() {
			collected := map[string]any{"origin": "RUH", "destination": "JED"}

			Expect(transition.NextStep(wf, "search", collected)).To(Equal("select"))
		})

		It("should return the terminal step's own name when satisfied", func() {
			Expect(transition.NextStep(wf, "book", map[string]any{})).To(Equal("book"))
		})

		It("should return empty for an unknown step", func() {
			Expect(transition.NextStep(wf, "no_such_step", map[string]any{})).To(BeEmpty())
		})

		It("should stall on a non-terminal step without successor", func() {
			stuck := workflow.New("stuck", "dead end")
			stuck.MustAddStep(&workflow.Step{Name: "search"})

			Expect(transition.NextStep(stuck, "search", map[string]any{})).To(BeEmpty())
		})

		It("should ignore a pending confirmation flag", func() {
			confirm := workflow.New("order_meals", "meals")
			confirm.MustAddStep(&workflow.Step{
				Name:                 "do_order",
				RequiresConfirmation: true,
				Terminal:             true,
			})

			Expect(transition.NextStep(confirm, "do_order", map[string]any{})).To(Equal("do_order"))
		})
	})

	Describe("MissingFields", func() {
		It("should list every absent or empty field", func() {
			step := &workflow.Step{
				Name:           "search",
				RequiredFields: []string{"origin", "destination", "flight_date"},
			}
			collected := map[string]any{"origin": "RUH", "destination": ""}

			Expect(engine.MissingFields(step, collected)).To(Equal([]string{"destination", "flight_date"}))
		})

		It("should treat nil values as missing", func() {
			step := &workflow.Step{Name: "search", RequiredFields: []string{"flight_status"}}

			Expect(engine.MissingFields(step, map[string]any{"flight_status": nil})).To(Equal([]string{"flight_status"}))
		})
	})

	Describe("InitWorkflowState", func() {
		It("should start at the first declared step with copied initial data", func() {
			wf.InitialData = map[string]any{"origin": "", "passengers_count": 0}

			ws := engine.InitWorkflowState(wf)

			Expect(ws.CurrentStep).To(Equal("search"))
			Expect(ws.CollectedData).To(HaveKeyWithValue("passengers_count", 0))

			ws.CollectedData["origin"] = "RUH"
			Expect(wf.InitialData["origin"]).To(Equal(""))
		})
	})
})
