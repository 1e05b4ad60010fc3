package tool

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Collision records two workflows contributing the same base tool name.
// The later registration wins in the flat namespace; the collision is kept
// observable instead of silently dropping a tool.
type Collision struct {
	Name          string
	PreviousOwner string
	NewOwner      string
}

// Source contributes a workflow module's tools to the registry. Sources
// are collected during the two-phase build so the registry can be rebuilt
// from scratch once every module has registered itself.
type Source interface {
	WorkflowName() string
	Tools() []Tool
}

// Registry aggregates tool implementations from all workflow modules into
// one flat namespace, tracking ownership so per-workflow scoped views can
// prefer a workflow's own implementation over a same-named one from
// another module. Built once at process start, read-only afterwards.
type Registry struct {
	logger *slog.Logger

	mu         sync.RWMutex
	flat       map[string]Tool            // base name -> last registered
	byWorkflow map[string]map[string]Tool // workflow -> base name -> tool
	owners     map[string]string          // base name -> owning workflow
	collisions []Collision
	sources    []Source
}

// NewRegistry creates an empty tool registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:     logger,
		flat:       make(map[string]Tool),
		byWorkflow: make(map[string]map[string]Tool),
		owners:     make(map[string]string),
	}
}

// AddSource records a workflow module whose tools are (re)registered on
// Refresh.
func (r *Registry) AddSource(source Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, source)
}

// Refresh rebuilds the registry from every known source. Workflow modules
// may register lazily, so the build phase calls Refresh once all of them
// are known, before the first user turn.
func (r *Registry) Refresh() int {
	r.mu.Lock()
	sources := append([]Source(nil), r.sources...)
	r.flat = make(map[string]Tool)
	r.byWorkflow = make(map[string]map[string]Tool)
	r.owners = make(map[string]string)
	r.collisions = nil
	r.mu.Unlock()

	total := 0
	for _, source := range sources {
		total += r.RegisterAll(source.WorkflowName(), source.Tools())
	}
	return total
}

// RegisterAll adds a workflow module's tools, recording a collision for
// every base name already owned by another workflow before overwriting.
// Returns the number of tools added.
func (r *Registry) RegisterAll(workflowName string, tools []Tool) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	scoped := r.byWorkflow[workflowName]
	if scoped == nil {
		scoped = make(map[string]Tool)
		r.byWorkflow[workflowName] = scoped
	}

	for _, t := range tools {
		if previous, taken := r.owners[t.Name]; taken && previous != workflowName {
			r.collisions = append(r.collisions, Collision{
				Name:          t.Name,
				PreviousOwner: previous,
				NewOwner:      workflowName,
			})
			r.logger.Warn("Tool name collision, last registration wins",
				"tool", t.Name,
				"previous_owner", previous,
				"new_owner", workflowName)
		}
		r.flat[t.Name] = t
		r.owners[t.Name] = workflowName
		scoped[t.Name] = t
	}

	r.logger.Debug("Registered workflow tools",
		"workflow", workflowName,
		"count", len(tools))
	return len(tools)
}

// Resolve looks a tool up by unscoped name first; when absent and the name
// is not already workflow-qualified, the workflow-qualified form is tried.
// Step definitions list unscoped names but external integrations may
// reference qualified ones, so both forms must resolve.
func (r *Registry) Resolve(workflowName, name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolveLocked(workflowName, name)
}

func (r *Registry) resolveLocked(workflowName, name string) (Tool, bool) {
	if workflowName != "" {
		if scoped, ok := r.byWorkflow[workflowName]; ok {
			if t, ok := scoped[name]; ok {
				return t, true
			}
		}
	}

	if t, ok := r.flat[name]; ok {
		return t, true
	}

	// Accept already-qualified references ("workflow.tool").
	if owner, base, found := strings.Cut(name, "."); found {
		if scoped, ok := r.byWorkflow[owner]; ok {
			if t, ok := scoped[base]; ok {
				return t, true
			}
		}
	} else if workflowName != "" {
		if t, ok := r.flat[Qualified(workflowName, name)]; ok {
			return t, true
		}
	}

	return Tool{}, false
}

// ScopedView returns the subset of tools a step may use, re-keyed under
// workflow-qualified names so the execution collaborator can never invoke
// a tool outside the allowlist. Names that resolve to nothing are reported
// back rather than failing, so the dispatcher can degrade gracefully.
func (r *Registry) ScopedView(workflowName string, allowedNames []string) (map[string]Tool, []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	view := make(map[string]Tool, len(allowedNames))
	var missing []string

	for _, name := range allowedNames {
		t, ok := r.resolveLocked(workflowName, name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		base := name
		if _, after, found := strings.Cut(name, "."); found {
			base = after
		}
		view[Qualified(workflowName, base)] = t
	}

	return view, missing
}

// Collisions returns the collisions observed since the last Refresh.
func (r *Registry) Collisions() []Collision {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]Collision(nil), r.collisions...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns all base tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.flat))
	for name := range r.flat {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
