// Package workflows loads extra workflow definitions from YAML files.
// Built-in workflows are declared in code by their plugin modules; this
// provider lets operators add simple definitions without rebuilding, as
// long as every tool they reference is contributed by an existing plugin.
package workflows

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/airdesk-ai/airdesk/internal/domain/workflow"
)

type workflowFile struct {
	Workflows []workflowDefinition `yaml:"workflows"`
}

type workflowDefinition struct {
	Name           string           `yaml:"name"`
	Description    string           `yaml:"description"`
	PromptTemplate string           `yaml:"prompt_template"`
	InitialData    map[string]any   `yaml:"initial_data"`
	Steps          []*workflow.Step `yaml:"steps"`
}

// YAMLFileProvider parses workflow definitions from a single YAML file.
type YAMLFileProvider struct {
	path string
}

// NewYAMLFileProvider creates a provider for the given file path. An
// empty path yields no workflows.
func NewYAMLFileProvider(path string) *YAMLFileProvider {
	return &YAMLFileProvider{path: path}
}

// Load parses the file into workflow definitions. The structural
// invariants (at least one step, successors resolvable) are checked by
// registry validation after registration, not here.
func (p *YAMLFileProvider) Load() ([]*workflow.Workflow, error) {
	if p.path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read workflow definitions: %w", err)
	}

	var file workflowFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse workflow definitions: %w", err)
	}

	out := make([]*workflow.Workflow, 0, len(file.Workflows))
	for _, def := range file.Workflows {
		if def.Name == "" {
			return nil, fmt.Errorf("workflow definition without a name in %s", p.path)
		}
		if def.Description == "" {
			return nil, fmt.Errorf("workflow %q: description is required", def.Name)
		}

		wf := workflow.New(def.Name, def.Description)
		wf.PromptTemplate = def.PromptTemplate
		if def.InitialData != nil {
			wf.InitialData = def.InitialData
		}
		for _, step := range def.Steps {
			if step.Name == "" {
				return nil, fmt.Errorf("workflow %q: step without a name", def.Name)
			}
			if err := wf.AddStep(step); err != nil {
				return nil, err
			}
		}
		out = append(out, wf)
	}

	return out, nil
}
