// Package baggagetracking is the baggage claim workflow module: collect
// a claim number and report the claim's status and any approved
// compensation.
package baggagetracking

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/airdesk-ai/airdesk/internal/domain/tool"
	"github.com/airdesk-ai/airdesk/internal/domain/workflow"
	workflowplugins "github.com/airdesk-ai/airdesk/internal/workflow-plugins"
)

const WorkflowName = "baggage_tracking"

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
		"Use this workflow if the user wants to track baggage claim status. "+
			"The claim number must be collected first, then the status of the baggage claim is checked")
	wf.InitialData = map[string]any{
		"claim_number":        "",
		"status":              "",
		"compensation_amount": 0.0,
	}

	err := wf.AddStep(&workflow.Step{
		Name:           "check_status",
		Description:    "Check baggage claim status using the provided claim number",
		RequiredFields: []string{"claim_number", "status"},
		AllowedTools:   []string{"collect_claim_number", "check_baggage_status"},
		ValueCalculations: map[string]string{
			// The derived status stays empty until the backend answered,
			// otherwise the step would satisfy its required fields early.
			"status":              "typeof baggage_system_response === 'undefined' ? '' : baggage_system_response.status",
			"compensation_amount": "typeof baggage_system_response === 'undefined' ? 0.0 : baggage_system_response.compensation",
		},
		Terminal: true,
	})
	if err != nil {
		return nil, err
	}
	return wf, nil
}

var Module = fx.Module("baggage-tracking",
	fx.Provide(
		fx.Annotate(
			New,
			fx.As(new(workflowplugins.Plugin)),
			fx.ResultTags(`group:"workflow_plugins"`),
		),
	),
)

var _ tool.Source = (*Plugin)(nil)
