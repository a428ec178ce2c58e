package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/optiflow/optiflow/ctxlog"
)

// Step is an unordered collection of tasks scheduled together against one
// Registry. Registration order is preserved only as a tie-break within a
// pass, not as a correctness mechanism.
type Step struct {
	name        string
	tasks       []Task
	parallelism int
}

// NewStep creates an empty step with the given name.
func NewStep(name string) *Step {
	return &Step{name: name, parallelism: 1}
}

// Name returns the step's name.
func (s *Step) Name() string { return s.name }

// AddTasks registers tasks to run in this step. It returns the same step
// for chaining.
func (s *Step) AddTasks(tasks ...Task) *Step {
	s.tasks = append(s.tasks, tasks...)
	return s
}

// WithParallelism sets the number of workers used to execute one pass's
// ready set. Ready tasks within a pass have no declared inter-dependency,
// so they may run concurrently; their outputs are written back to the
// Registry in registration order after the pass completes, which keeps
// duplicate-producer resolution deterministic. Values below 2 keep the
// default sequential execution.
func (s *Step) WithParallelism(n int) *Step {
	s.parallelism = n
	return s
}

// readyTask is a task whose dependencies were all present at the start of a
// pass, bound to the dependency values read at that moment.
type readyTask struct {
	task   Task
	inputs *Inputs
}

// Execute runs every task in the step exactly once, in an order consistent
// with the dependency graph, extending reg with each task's output. It
// fails with a *StallError when no valid order exists, with a *ConfigError
// when a task descriptor is invalid, or with the task's own error when a
// task fails; in every case the remaining tasks do not run and reg keeps
// the writes already made.
func (s *Step) Execute(ctx context.Context, reg *Registry) error {
	logger := ctxlog.FromContext(ctx).With("step", s.name)
	start := time.Now()
	logger.Info("▶️ Executing step.", "tasks", len(s.tasks))

	if err := s.validateTasks(); err != nil {
		return err
	}

	pending := make([]Task, len(s.tasks))
	copy(pending, s.tasks)

	for pass := 1; len(pending) > 0; pass++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		ready, notReady, stuck := s.bindReady(pending, reg)
		if len(ready) == 0 {
			return &StallError{Step: s.name, Stuck: stuck}
		}
		logger.Debug("Scheduling pass.", "pass", pass, "ready", len(ready), "pending", len(pending))

		var err error
		if s.parallelism > 1 && len(ready) > 1 {
			err = s.runParallel(ctx, reg, ready)
		} else {
			err = s.runSequential(ctx, reg, ready)
		}
		if err != nil {
			return err
		}

		pending = notReady
	}

	logger.Info("✅ Finished step.", "duration", time.Since(start))
	return nil
}

// validateTasks checks that every task descriptor can be resolved. A
// failure here is a configuration error, detected before any task runs.
func (s *Step) validateTasks() error {
	for _, t := range s.tasks {
		if t == nil {
			return &ConfigError{Task: "<nil>", Reason: "nil task registered"}
		}
		if t.Name() == "" {
			return &ConfigError{Task: t.Name(), Reason: "task has no name"}
		}
		seen := make(map[TypeKey]struct{}, len(t.Dependencies()))
		for _, d := range t.Dependencies() {
			if d.Key == nil {
				return &ConfigError{Task: t.Name(), Reason: fmt.Sprintf("dependency %q has no type key", d.Param)}
			}
			if _, dup := seen[d.Key]; dup {
				return &ConfigError{Task: t.Name(), Reason: fmt.Sprintf("duplicate dependency on %s", d.Key)}
			}
			seen[d.Key] = struct{}{}
		}
	}
	return nil
}

// bindReady splits the pending tasks into those whose dependencies are all
// present in the Registry and those still waiting. Dependency values for
// ready tasks are read now, at the start of the pass, so every task in the
// pass observes the same Registry snapshot regardless of execution order.
func (s *Step) bindReady(pending []Task, reg *Registry) (ready []readyTask, notReady []Task, stuck []StuckTask) {
	for _, t := range pending {
		deps := t.Dependencies()
		var missing []TypeKey
		for _, d := range deps {
			if !reg.Contains(d.Key) {
				missing = append(missing, d.Key)
			}
		}
		if len(missing) > 0 {
			notReady = append(notReady, t)
			stuck = append(stuck, StuckTask{Task: t.Name(), Missing: missing})
			continue
		}

		values := make([]any, len(deps))
		for i, d := range deps {
			values[i], _ = reg.Value(d.Key)
		}
		ready = append(ready, readyTask{task: t, inputs: &Inputs{deps: deps, values: values}})
	}
	return ready, notReady, stuck
}

// runSequential executes the ready set in registration order, writing each
// output into the Registry as soon as its task succeeds.
func (s *Step) runSequential(ctx context.Context, reg *Registry, ready []readyTask) error {
	logger := ctxlog.FromContext(ctx).With("step", s.name)
	for _, rt := range ready {
		out, err := s.executeOne(ctx, rt)
		if err != nil {
			return err
		}
		if key := rt.task.Output(); key != nil {
			reg.setKey(key, out)
		}
		logger.Debug("Task executed.", "task", rt.task.Name())
	}
	return nil
}

// runParallel executes the ready set on a bounded worker group. Outputs are
// collected per task and written back in registration order once every task
// has finished; if any task fails, the whole pass's outputs are discarded.
func (s *Step) runParallel(ctx context.Context, reg *Registry, ready []readyTask) error {
	logger := ctxlog.FromContext(ctx).With("step", s.name)

	outputs := make([]any, len(ready))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	for i, rt := range ready {
		i, rt := i, rt
		g.Go(func() error {
			out, err := s.executeOne(gctx, rt)
			if err != nil {
				return err
			}
			outputs[i] = out
			logger.Debug("Task executed.", "task", rt.task.Name())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, rt := range ready {
		if key := rt.task.Output(); key != nil {
			reg.setKey(key, outputs[i])
		}
	}
	return nil
}

// executeOne runs a single bound task and enforces its output contract.
func (s *Step) executeOne(ctx context.Context, rt readyTask) (any, error) {
	name := rt.task.Name()
	out, err := rt.task.Execute(ctx, rt.inputs)
	if err != nil {
		return nil, fmt.Errorf("step %q: task %q: %w", s.name, name, err)
	}

	key := rt.task.Output()
	if key != nil && out == nil {
		return nil, &ConfigError{
			Task:   name,
			Reason: fmt.Sprintf("declared output %s but returned no value", key),
		}
	}
	if key == nil && out != nil {
		return nil, &ConfigError{
			Task:   name,
			Reason: "returned a value but declares no output, so the value cannot be made available to other tasks",
		}
	}
	return out, nil
}
