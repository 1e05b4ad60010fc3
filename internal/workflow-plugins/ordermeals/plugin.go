// Package ordermeals is the meal ordering workflow module: pick a meal
// and quantity, review the total, then confirm the order.
package ordermeals

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/airdesk-ai/airdesk/internal/domain/tool"
	"github.com/airdesk-ai/airdesk/internal/domain/workflow"
	workflowplugins "github.com/airdesk-ai/airdesk/internal/workflow-plugins"
)

const WorkflowName = "order_meals"

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
	wf := workflow.New(WorkflowName, "Use this workflow if the user wants to order meals")
	wf.InitialData = map[string]any{
		"meal_type":    "",
		"quantity":     0,
		"total_amount": 0,
	}

	steps := []*workflow.Step{
		{
			Name:           "collect_meal_order",
			Description:    "Collect the meal type and quantity from the user",
			NextSteps:      []string{"order_summary"},
			RequiredFields: []string{"meal_type", "quantity"},
			AllowedTools:   []string{"collect_meal_order"},
		},
		{
			Name:         "order_summary",
			Description:  "Show the order summary to the user",
			NextSteps:    []string{"do_order"},
			AllowedTools: []string{"order_summary"},
			ValueCalculations: map[string]string{
				"total_amount": "unit_price * quantity",
			},
		},
		{
			Name:                 "do_order",
			Description:          "Confirm the order with the user and show the final order details",
			RequiresConfirmation: true,
			Terminal:             true,
		},
	}

	for _, step := range steps {
		if err := wf.AddStep(step); err != nil {
			return nil, err
		}
	}
	return wf, nil
}

var Module = fx.Module("order-meals",
	fx.Provide(
		fx.Annotate(
			New,
			fx.As(new(workflowplugins.Plugin)),
			fx.ResultTags(`group:"workflow_plugins"`),
		),
	),
)

var _ tool.Source = (*Plugin)(nil)
