package workflow

import (
	"fmt"
	"strings"
	"sync"
)

// Registry keys workflow definitions by name. It is populated during the
// two-phase build at process start and treated as read-only afterwards,
// so unsynchronized concurrent reads are safe; the mutex only guards the
// build phase.
type Registry struct {
	mu        sync.RWMutex
	workflows map[string]*Workflow
	order     []string
}

// NewRegistry creates an empty workflow definition registry.
func NewRegistry() *Registry {
	return &Registry{
		workflows: make(map[string]*Workflow),
	}
}

// Register adds a workflow. Re-registering a name is an error, not a
// replacement.
func (r *Registry) Register(wf *Workflow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.workflows[wf.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateWorkflow, wf.Name)
	}
	r.workflows[wf.Name] = wf
	r.order = append(r.order, wf.Name)
	return nil
}

// Get returns the named workflow.
func (r *Registry) Get(name string) (*Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wf, ok := r.workflows[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return wf, nil
}

// Has reports whether the name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.workflows[name]
	return ok
}

// Names returns workflow names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// All returns the workflows in registration order.
func (r *Registry) All() []*Workflow {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Workflow, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.workflows[name])
	}
	return out
}

// Describe renders "- name: description" lines for every workflow, in
// registration order. The text is consumed verbatim by the classification
// collaborator's routing prompt.
func (r *Registry) Describe() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var b strings.Builder
	for i, name := range r.order {
		if i > 0 {
			b.WriteString("\n")
		}
		wf := r.workflows[name]
		fmt.Fprintf(&b, "- %s: %s", wf.Name, strings.TrimSpace(wf.Description))
	}
	return b.String()
}

// Validate checks every registered workflow. Called once after the build
// phase; any error is startup-fatal.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		if err := r.workflows[name].Validate(); err != nil {
			return err
		}
	}
	return nil
}
