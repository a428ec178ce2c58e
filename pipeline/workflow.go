package pipeline

import (
	"context"
	"fmt"
)

// Workflow is an ordered sequence of steps. Steps execute strictly in the
// sequence they were added; a later step may depend on types produced by
// any earlier step or present in the seed data.
type Workflow struct {
	steps []*Step
}

// New creates an empty workflow.
func New() *Workflow {
	return &Workflow{}
}

// AddSteps appends steps to the workflow. The order in which steps are
// added determines the order in which they execute. It returns the same
// workflow for chaining.
func (w *Workflow) AddSteps(steps ...*Step) *Workflow {
	w.steps = append(w.steps, steps...)
	return w
}

// StepCount returns the number of steps added so far.
func (w *Workflow) StepCount() int {
	return len(w.steps)
}

// Initialize seeds a new Registry with the given values and returns an
// Execution over it. Each value is keyed by its own runtime type; a later
// duplicate-typed seed overwrites an earlier one, and nil values are
// ignored.
func (w *Workflow) Initialize(seed ...any) *Execution {
	reg := NewRegistry()
	for _, v := range seed {
		reg.Set(v)
	}
	return &Execution{workflow: w, registry: reg}
}

// Execution is a workflow bound to a live Registry. The Registry evolves as
// steps run and is returned to the caller as the pipeline result.
type Execution struct {
	workflow *Workflow
	registry *Registry
}

// AddData stores an additional value in the Registry, keyed by its runtime
// type. This is for data that no task produces but that is also not
// available at initialization. It returns the same execution for chaining.
func (e *Execution) AddData(v any) *Execution {
	e.registry.Set(v)
	return e
}

// Registry returns the execution's current Registry.
func (e *Execution) Registry() *Registry {
	return e.registry
}

// ExecuteStep runs the step at the given index (0 is the first step)
// against the current Registry and returns the extended Registry.
func (e *Execution) ExecuteStep(ctx context.Context, index int) (*Registry, error) {
	if index < 0 || index >= len(e.workflow.steps) {
		return nil, fmt.Errorf("pipeline: step index %d out of range, workflow has %d steps", index, len(e.workflow.steps))
	}
	if err := e.workflow.steps[index].Execute(ctx, e.registry); err != nil {
		return nil, err
	}
	return e.registry, nil
}

// Execute runs every step in sequence and returns the final Registry.
func (e *Execution) Execute(ctx context.Context) (*Registry, error) {
	for i := range e.workflow.steps {
		if _, err := e.ExecuteStep(ctx, i); err != nil {
			return nil, err
		}
	}
	return e.registry, nil
}
