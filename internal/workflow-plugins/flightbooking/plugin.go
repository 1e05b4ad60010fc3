// Package flightbooking is the flight booking workflow module: a six-step
// workflow from search to a booked ticket, with mock airline data behind
// the tools.
package flightbooking

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/airdesk-ai/airdesk/internal/domain/tool"
	"github.com/airdesk-ai/airdesk/internal/domain/workflow"
	workflowplugins "github.com/airdesk-ai/airdesk/internal/workflow-plugins"
)

const WorkflowName = "flight_booking"

type Plugin struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Plugin {
	return &Plugin{logger: logger}
}

func (p *Plugin) WorkflowName() string {
	return WorkflowName
}

func (p *Plugin) Workflow() (*workflow.Workflow, error) {
	wf := workflow.New(WorkflowName, "Use this workflow if the user wants to book a flight")
	wf.InitialData = map[string]any{
		"origin":           "",
		"destination":      "",
		"departure_date":   "",
		"return_date":      "",
		"passengers_count": 0,
		"passengers":       []any{},
	}

	steps := []*workflow.Step{
		{
			Name:           "search",
			Description:    "Search for flights based on the user's input",
			PromptTemplate: "Try to extract the required information for the tool call from the user's prompt",
			NextSteps:      []string{"select"},
			RequiredFields: []string{"origin", "destination", "departure_date", "passengers_count"},
			AllowedTools:   []string{"search_flights"},
		},
		{
			Name:           "select",
			Description:    "Select a flight from the available options based on the user's input",
			NextSteps:      []string{"passenger_info"},
			RequiredFields: []string{"selected_flight"},
			AllowedTools:   []string{"select_flight"},
		},
		{
			Name:           "passenger_info",
			Description:    "Collect the passenger information from the user",
			NextSteps:      []string{"contact_info"},
			RequiredFields: []string{"passengers"},
			AllowedTools:   []string{"collect_passenger_info"},
			ValueCalculations: map[string]string{
				"total_amount": "selected_flight.price * passengers.length",
			},
		},
		{
			Name:           "contact_info",
			Description:    "Collect the contact information from the user",
			NextSteps:      []string{"payment"},
			RequiredFields: []string{"contact_info"},
			AllowedTools:   []string{"collect_contact_info"},
		},
		{
			Name:                 "payment",
			Description:          "Collect the payment information from the user and prepare the booking summary",
			NextSteps:            []string{"book_flight"},
			RequiredFields:       []string{"payment"},
			AllowedTools:         []string{"collect_payment_info", "booking_summary"},
			RequiresConfirmation: true,
		},
		{
			Name:         "book_flight",
			Description:  "Book the flight and show the final booking details to the user",
			AllowedTools: []string{"book_flight"},
			Terminal:     true,
		},
	}

	for _, step := range steps {
		if err := wf.AddStep(step); err != nil {
			return nil, err
		}
	}
	return wf, nil
}

var Module = fx.Module("flight-booking",
	fx.Provide(
		fx.Annotate(
			New,
			fx.As(new(workflowplugins.Plugin)),
			fx.ResultTags(`group:"workflow_plugins"`),
		),
	),
)

var _ tool.Source = (*Plugin)(nil)
