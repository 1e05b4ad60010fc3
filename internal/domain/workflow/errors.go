package workflow

import "errors"

// ErrConfiguration marks definition problems that must prevent the process
// from serving traffic.
var ErrConfiguration = errors.New("workflow configuration error")

// ErrDuplicateWorkflow is returned when a workflow name is registered twice.
var ErrDuplicateWorkflow = errors.New("duplicate workflow")

// ErrDuplicateStep is returned when a step name is added twice to the same
// workflow.
var ErrDuplicateStep = errors.New("duplicate step")

// ErrNotFound is returned when a workflow name is not registered.
var ErrNotFound = errors.New("workflow not found")
