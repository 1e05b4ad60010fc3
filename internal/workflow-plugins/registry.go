// Package workflowplugins collects the workflow modules and runs the
// two-phase registry build: workflows first, then tool discovery.
package workflowplugins

import (
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/airdesk-ai/airdesk/internal/domain/tool"
	"github.com/airdesk-ai/airdesk/internal/domain/workflow"
	workflowfiles "github.com/airdesk-ai/airdesk/internal/infrastructure/workflows"
	"github.com/airdesk-ai/airdesk/pkg/config"
)

// Plugin is one workflow module: a workflow definition plus the tools it
// contributes to the shared registry.
type Plugin interface {
	// WorkflowName is the unique workflow identifier, also used to qualify
	// the module's tool names.
	WorkflowName() string

	// Workflow builds the workflow definition.
	Workflow() (*workflow.Workflow, error)

	// Tools returns the module's tool implementations by base name.
	Tools() []tool.Tool
}

// BuildParams carries everything the registry build needs. Plugins arrive
// through the fx value group so adding a workflow module is a one-line
// change in the app wiring.
type BuildParams struct {
	fx.In

	Plugins   []Plugin `group:"workflow_plugins"`
	Workflows *workflow.Registry
	Tools     *tool.Registry
	Config    *config.ServerConfig
	Logger    *slog.Logger
}

// Build populates both registries and validates the result. Phase one
// registers every workflow definition (plugins, then the optional YAML
// file); phase two rebuilds the tool registry from all modules at once so
// lazily-registered plugins are fully reflected before the first turn.
// Any error is startup-fatal.
func Build(params BuildParams) error {
	for _, plugin := range params.Plugins {
		wf, err := plugin.Workflow()
		if err != nil {
			return fmt.Errorf("failed to build workflow %q: %w", plugin.WorkflowName(), err)
		}
		if err := params.Workflows.Register(wf); err != nil {
			return err
		}
	}

	provider := workflowfiles.NewYAMLFileProvider(params.Config.Workflows.DefinitionsPath)
	extra, err := provider.Load()
	if err != nil {
		return err
	}
	for _, wf := range extra {
		if err := params.Workflows.Register(wf); err != nil {
			return err
		}
		params.Logger.Info("Loaded workflow definition from file",
			"workflow", wf.Name,
			"path", params.Config.Workflows.DefinitionsPath)
	}

	for _, plugin := range params.Plugins {
		params.Tools.AddSource(plugin)
	}
	total := params.Tools.Refresh()

	if err := params.Workflows.Validate(); err != nil {
		return err
	}

	params.Logger.Info("Workflow registries built",
		"workflows", len(params.Workflows.Names()),
		"tools", total,
		"collisions", len(params.Tools.Collisions()))
	return nil
}

// Module wires the registries and runs the build during app construction.
var Module = fx.Module("workflow-plugins",
	fx.Provide(
		workflow.NewRegistry,
		tool.NewRegistry,
	),
	fx.Invoke(Build),
)
