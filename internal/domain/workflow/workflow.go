// Package workflow holds the declarative workflow/step model and the
// definition registry.
package workflow

import "fmt"

// Step is one stage of a workflow: its own tool allowlist, the fields that
// must be collected before leaving it, and its successor.
type Step struct {
	Name           string            `yaml:"name" json:"name"`
	Description    string            `yaml:"description" json:"description"`
	PromptTemplate string            `yaml:"prompt_template,omitempty" json:"prompt_template,omitempty"`
	AllowedTools   []string          `yaml:"tools" json:"tools"`
	NextSteps      []string          `yaml:"next_steps,omitempty" json:"next_steps,omitempty"`
	RequiredFields []string          `yaml:"required_fields,omitempty" json:"required_fields,omitempty"`
	Terminal       bool              `yaml:"terminal,omitempty" json:"terminal,omitempty"`
	// RequiresConfirmation is carried in the definition but the transition
	// engine does not gate on it. Confirmation gating is pending a product
	// decision; see DESIGN.md.
	RequiresConfirmation bool              `yaml:"requires_confirmation,omitempty" json:"requires_confirmation,omitempty"`
	ConfirmationPrompt   string            `yaml:"confirmation_prompt,omitempty" json:"confirmation_prompt,omitempty"`
	ValueCalculations    map[string]string `yaml:"value_calculations,omitempty" json:"value_calculations,omitempty"`
}

// NextStep returns the single successor the engine follows. NextSteps is
// kept as a list for forward compatibility but only the first entry is
// ever consumed.
func (s *Step) NextStep() string {
	if len(s.NextSteps) == 0 {
		return ""
	}
	return s.NextSteps[0]
}

// Workflow is a named, declaratively defined multi-step task. Steps keep
// their insertion order; the first added step is where the workflow starts.
type Workflow struct {
	Name           string
	Description    string
	PromptTemplate string
	InitialData    map[string]any

	steps     map[string]*Step
	stepOrder []string
}

// New creates an empty workflow definition.
func New(name, description string) *Workflow {
	return &Workflow{
		Name:        name,
		Description: description,
		InitialData: make(map[string]any),
		steps:       make(map[string]*Step),
	}
}

// AddStep appends a step to the workflow. Step names are unique within a
// workflow; re-adding a name is a configuration error.
func (w *Workflow) AddStep(step *Step) error {
	if _, exists := w.steps[step.Name]; exists {
		return fmt.Errorf("%w: step %q in workflow %q", ErrDuplicateStep, step.Name, w.Name)
	}
	w.steps[step.Name] = step
	w.stepOrder = append(w.stepOrder, step.Name)
	return nil
}

// MustAddStep is AddStep for statically declared workflows, where a
// duplicate name is a programming error.
func (w *Workflow) MustAddStep(step *Step) {
	if err := w.AddStep(step); err != nil {
		panic(err)
	}
}

// Step returns the named step, or nil when absent.
func (w *Workflow) Step(name string) *Step {
	return w.steps[name]
}

// FirstStep returns the first declared step, or nil for an empty workflow.
func (w *Workflow) FirstStep() *Step {
	if len(w.stepOrder) == 0 {
		return nil
	}
	return w.steps[w.stepOrder[0]]
}

// StepNames returns step names in declaration order.
func (w *Workflow) StepNames() []string {
	return append([]string(nil), w.stepOrder...)
}

// Steps returns the steps in declaration order.
func (w *Workflow) Steps() []*Step {
	steps := make([]*Step, 0, len(w.stepOrder))
	for _, name := range w.stepOrder {
		steps = append(steps, w.steps[name])
	}
	return steps
}

// Validate checks the structural invariants of the definition: at least
// one step, and every non-terminal step has a declared successor that
// exists. Violations are startup-fatal.
func (w *Workflow) Validate() error {
	if len(w.stepOrder) == 0 {
		return fmt.Errorf("%w: workflow %q has no steps", ErrConfiguration, w.Name)
	}

	for _, name := range w.stepOrder {
		step := w.steps[name]
		if step.Terminal {
			continue
		}
		next := step.NextStep()
		if next == "" {
			return fmt.Errorf("%w: step %q of workflow %q is not terminal and has no successor", ErrConfiguration, name, w.Name)
		}
		if _, ok := w.steps[next]; !ok {
			return fmt.Errorf("%w: step %q of workflow %q names unknown successor %q", ErrConfiguration, name, w.Name, next)
		}
	}
	return nil
}
