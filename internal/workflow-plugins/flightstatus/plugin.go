// Package flightstatus is the flight status workflow module: a single
// lookup step that resolves a flight either by route or by flight
// number.
package flightstatus

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/airdesk-ai/airdesk/internal/domain/tool"
	"github.com/airdesk-ai/airdesk/internal/domain/workflow"
	workflowplugins "github.com/airdesk-ai/airdesk/internal/workflow-plugins"
)

const WorkflowName = "flight_status"

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
	wf := workflow.New(WorkflowName,
		"Use this workflow if the user wants to check flight status. "+
			"The status can be looked up by origin, destination and flight date, "+
			"or by flight number and flight date")
	wf.InitialData = map[string]any{
		"origin":        "",
		"destination":   "",
		"flight_date":   "",
		"flight_number": "",
		"flight_status": nil,
	}

	// The lookup completes in place once a search populated
	// flight_status, so the single step is terminal.
	err := wf.AddStep(&workflow.Step{
		Name:           "search",
		Description:    "Search for flight status using either route or flight number",
		PromptTemplate: "Determine whether the user is searching by route or by flight number before calling a tool",
		RequiredFields: []string{"flight_status"},
		AllowedTools: []string{
			"search_flight_status_by_route",
			"search_flight_status_by_number",
			"display_flight_status",
		},
		Terminal: true,
	})
	if err != nil {
		return nil, err
	}
	return wf, nil
}

var Module = fx.Module("flight-status",
	fx.Provide(
		fx.Annotate(
			New,
			fx.As(new(workflowplugins.Plugin)),
			fx.ResultTags(`group:"workflow_plugins"`),
		),
	),
)

var _ tool.Source = (*Plugin)(nil)
