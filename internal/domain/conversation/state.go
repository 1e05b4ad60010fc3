package conversation

// Location is optional session metadata captured at conversation start.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country"`
	City      string  `json:"city"`
}

// WorkflowState tracks the progress of one workflow within a conversation.
type WorkflowState struct {
	CurrentStep   string         `json:"current_step"`
	CollectedData map[string]any `json:"collected_data"`
}

// State is the per-conversation data round-tripped through the store every
// turn. CurrentWorkflow is empty when no workflow is active. A completed
// workflow leaves a nil entry in WorkflowData rather than being deleted.
type State struct {
	Messages        []Message                 `json:"messages"`
	Language        string                    `json:"language,omitempty"`
	Location        *Location                 `json:"location,omitempty"`
	Timezone        string                    `json:"timezone,omitempty"`
	CurrentWorkflow string                    `json:"current_workflow,omitempty"`
	WorkflowData    map[string]*WorkflowState `json:"workflow_data,omitempty"`
}

// NewState returns an empty conversation state.
func NewState() *State {
	return &State{
		Messages:     []Message{},
		WorkflowData: make(map[string]*WorkflowState),
	}
}

// Patch is a partial state update produced by a tool invocation. Tools
// never mutate State directly; the dispatcher applies their patches after
// a successful invocation.
type Patch struct {
	// WorkflowData maps workflow name to a partial entry. The reserved key
	// "current_step" overrides the step pointer; "collected_data" is
	// deep-merged into the workflow's collected data.
	WorkflowData map[string]map[string]any `json:"workflow_data,omitempty"`
	Messages     []Message                 `json:"messages,omitempty"`
}

// Workflow returns the entry for name, allocating it when absent or
// previously cleared.
func (s *State) Workflow(name string) *WorkflowState {
	if s.WorkflowData == nil {
		s.WorkflowData = make(map[string]*WorkflowState)
	}
	ws := s.WorkflowData[name]
	if ws == nil {
		ws = &WorkflowState{CollectedData: make(map[string]any)}
		s.WorkflowData[name] = ws
	}
	return ws
}

// AppendMessages adds messages to the transcript.
func (s *State) AppendMessages(messages ...Message) {
	s.Messages = append(s.Messages, messages...)
}

// Apply merges a tool patch into the state. Collected data is merged with
// the Merge algebra; transcript messages are appended.
func (s *State) Apply(patch *Patch) {
	if patch == nil {
		return
	}

	for name, entry := range patch.WorkflowData {
		if entry == nil {
			s.ClearWorkflow(name)
			continue
		}

		ws := s.Workflow(name)
		if step, ok := entry["current_step"].(string); ok && step != "" {
			ws.CurrentStep = step
		}
		if data, ok := entry["collected_data"].(map[string]any); ok {
			ws.CollectedData = Merge(ws.CollectedData, data)
		}
	}

	s.AppendMessages(patch.Messages...)
}

// ClearWorkflow marks a workflow as finished. The entry is kept with a nil
// value so later merges see the termination instead of resurrecting stale
// collected data.
func (s *State) ClearWorkflow(name string) {
	if s.WorkflowData == nil {
		s.WorkflowData = make(map[string]*WorkflowState)
	}
	s.WorkflowData[name] = nil
	if s.CurrentWorkflow == name {
		s.CurrentWorkflow = ""
	}
}

// CollectedData returns the collected data of the active workflow, or nil
// when no workflow is active.
func (s *State) CollectedData() map[string]any {
	if s.CurrentWorkflow == "" {
		return nil
	}
	ws := s.WorkflowData[s.CurrentWorkflow]
	if ws == nil {
		return nil
	}
	return ws.CollectedData
}

// Clone returns a deep copy of the state. The dispatcher snapshots state
// before invoking collaborators so a failed turn leaves the stored state
// untouched.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}

	clone := &State{
		Language:        s.Language,
		Timezone:        s.Timezone,
		CurrentWorkflow: s.CurrentWorkflow,
		Messages:        append([]Message(nil), s.Messages...),
		WorkflowData:    make(map[string]*WorkflowState, len(s.WorkflowData)),
	}

	if s.Location != nil {
		loc := *s.Location
		clone.Location = &loc
	}

	for name, ws := range s.WorkflowData {
		if ws == nil {
			clone.WorkflowData[name] = nil
			continue
		}
		clone.WorkflowData[name] = &WorkflowState{
			CurrentStep:   ws.CurrentStep,
			CollectedData: cloneValue(ws.CollectedData).(map[string]any),
		}
	}

	return clone
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
