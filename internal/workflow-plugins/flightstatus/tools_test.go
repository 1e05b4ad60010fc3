package flightstatus_test

import (
	"context"
	"io"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/airdesk-ai/airdesk/internal/domain/conversation"
	"github.com/airdesk-ai/airdesk/internal/domain/tool"
	"github.com/airdesk-ai/airdesk/internal/workflow-plugins/flightstatus"
)

func handlerFor(p *flightstatus.Plugin, name string) tool.Handler {
	for _, t := range p.Tools() {
		if t.Name == name {
			return t.Handler
		}
	}
	Fail("no such tool: " + name)
	return nil
}

var _ = Describe("Flight status tools", func() {
	var (
		ctx    context.Context
		plugin *flightstatus.Plugin
		state  *conversation.State
	)

	BeforeEach(func() {
		ctx = context.Background()
		plugin = flightstatus.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
		state = conversation.NewState()
	})

	call := func(args map[string]any) tool.Call {
		return tool.Call{
			Workflow:  flightstatus.WorkflowName,
			Arguments: args,
			State:     state,
		}
	}

	Describe("search_flight_status_by_route", func() {
		It("should find the scheduled flights on a known route", func() {
			patch, err := handlerFor(plugin, "search_flight_status_by_route")(ctx, call(map[string]any{
				"origin":      "ruh",
				"destination": "jed",
				"flight_date": "2026-09-01",
			}))
			Expect(err).NotTo(HaveOccurred())

			state.Apply(patch)
			data := state.Workflow(flightstatus.WorkflowName).CollectedData
			Expect(data["flight_status"]).To(HaveLen(1))
			Expect(data).To(HaveKeyWithValue("origin", "RUH"))
		})

		It("should answer without recording anything for an unknown route", func() {
			patch, err := handlerFor(plugin, "search_flight_status_by_route")(ctx, call(map[string]any{
				"origin":      "RUH",
				"destination": "LHR",
				"flight_date": "2026-09-01",
			}))
			Expect(err).NotTo(HaveOccurred())
			Expect(patch.WorkflowData).To(BeEmpty())
			Expect(patch.Messages).To(HaveLen(1))
			Expect(patch.Messages[0].Content).To(ContainSubstring("No flights found"))
		})
	})

	Describe("search_flight_status_by_number", func() {
		It("should accept the flight number with or without the carrier prefix", func() {
			for _, number := range []string{"61", "XY61", "xy 61"} {
				patch, err := handlerFor(plugin, "search_flight_status_by_number")(ctx, call(map[string]any{
					"flight_number": number,
					"flight_date":   "2026-09-01",
				}))
				Expect(err).NotTo(HaveOccurred())
				Expect(patch.WorkflowData[flightstatus.WorkflowName]).NotTo(BeNil(),
					"flight number %q", number)
			}
		})

		It("should reject a search without a date", func() {
			_, err := handlerFor(plugin, "search_flight_status_by_number")(ctx, call(map[string]any{
				"flight_number": "61",
			}))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("display_flight_status", func() {
		It("should format the flights found by an earlier search", func() {
			patch, err := handlerFor(plugin, "search_flight_status_by_number")(ctx, call(map[string]any{
				"flight_number": "XY215",
				"flight_date":   "2026-09-01",
			}))
			Expect(err).NotTo(HaveOccurred())
			state.Apply(patch)

			patch, err = handlerFor(plugin, "display_flight_status")(ctx, call(nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(patch.Messages).To(HaveLen(1))
			Expect(patch.Messages[0].Content).To(ContainSubstring("XY215"))
			Expect(patch.Messages[0].Content).To(ContainSubstring("DELAYED"))
		})

		It("should report when no search has happened yet", func() {
			patch, err := handlerFor(plugin, "display_flight_status")(ctx, call(nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(patch.Messages[0].Content).To(ContainSubstring("No flight status information"))
		})
	})

	Describe("collect_info", func() {
		It("should record only the criteria that were provided", func() {
			patch, err := handlerFor(plugin, "collect_info")(ctx, call(map[string]any{
				"flight_date":   "2026-09-01",
				"flight_number": "61",
			}))
			Expect(err).NotTo(HaveOccurred())

			state.Apply(patch)
			data := state.Workflow(flightstatus.WorkflowName).CollectedData
			Expect(data).To(HaveKeyWithValue("flight_date", "2026-09-01"))
			Expect(data).NotTo(HaveKey("origin"))
		})
	})

	Describe("workflow definition", func() {
		It("should stay on the search step until a status is found", func() {
			wf, err := plugin.Workflow()
			Expect(err).NotTo(HaveOccurred())
			Expect(wf.Validate()).To(Succeed())

			step := wf.FirstStep()
			Expect(step.Terminal).To(BeTrue())
			Expect(step.RequiredFields).To(ConsistOf("flight_status"))
		})
	})
})
