package optimize

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/optiflow/optiflow/ctxlog"
	"github.com/optiflow/optiflow/mip"
	"github.com/optiflow/optiflow/pipeline"
)

// The pipeline phases, in execution order. Each phase is one workflow step.
const (
	PhaseValidate        = "validate"
	PhasePreProcess      = "pre_process"
	PhaseBuildModel      = "build_model"
	PhaseSolve           = "solve"
	PhaseExtractSolution = "extract_solution"
)

// phaseOrder fixes the workflow position of each phase.
var phaseOrder = []string{
	PhaseValidate,
	PhasePreProcess,
	PhaseBuildModel,
	PhaseSolve,
	PhaseExtractSolution,
}

const (
	stepValidate = iota
	stepPreProcess
	stepBuildModel
	stepSolve
	stepExtractSolution
)

// Module bundles the tasks a problem domain contributes to the pipeline,
// one optional task per recognized phase. The modules implement the entire
// functionality; without any, the optimizer does nothing useful.
type Module struct {
	Validate        pipeline.Task
	PreProcess      pipeline.Task
	BuildModel      pipeline.Task
	ExtractSolution pipeline.Task
}

// Optimizer configures an optimization problem. Add modules, then
// Initialize it with the data that defines a concrete instance.
type Optimizer struct {
	name        string
	sense       mip.Sense
	modules     []Module
	parallelism int
}

// New creates an optimizer for a problem with the given name and objective
// sense.
func New(name string, sense mip.Sense) *Optimizer {
	return &Optimizer{name: name, sense: sense, parallelism: 1}
}

// AddModules registers modules with the optimizer. It returns the same
// optimizer for chaining.
func (o *Optimizer) AddModules(modules ...Module) *Optimizer {
	o.modules = append(o.modules, modules...)
	return o
}

// WithParallelism sets the worker count used for each step's ready set.
func (o *Optimizer) WithParallelism(n int) *Optimizer {
	o.parallelism = n
	return o
}

// Initialize seeds the optimizer with the data defining the problem
// instance. Which values need to be supplied depends on the modules that
// were added.
func (o *Optimizer) Initialize(data ...any) *InitializedOptimizer {
	steps := make([]*pipeline.Step, len(phaseOrder))
	for i, phase := range phaseOrder {
		steps[i] = pipeline.NewStep(phase)
		if o.parallelism > 1 {
			steps[i].WithParallelism(o.parallelism)
		}
	}

	// Phase-boundary tasks are scheduled like any module task.
	steps[stepBuildModel].AddTasks(newCreateProblemTask())
	steps[stepSolve].AddTasks(newSolveTask())
	steps[stepExtractSolution].AddTasks(newObjectiveTask())

	for _, m := range o.modules {
		if m.Validate != nil {
			steps[stepValidate].AddTasks(m.Validate)
		}
		if m.PreProcess != nil {
			steps[stepPreProcess].AddTasks(m.PreProcess)
		}
		if m.BuildModel != nil {
			steps[stepBuildModel].AddTasks(m.BuildModel)
		}
		if m.ExtractSolution != nil {
			steps[stepExtractSolution].AddTasks(m.ExtractSolution)
		}
	}

	exec := pipeline.New().
		AddSteps(steps...).
		Initialize(data...).
		AddData(ProblemSettings{Name: o.name, Sense: o.sense})

	return &InitializedOptimizer{
		exec:  exec,
		runID: uuid.NewString(),
	}
}

// withRun attaches the run identifier to the context's logger so every log
// line of one optimization run can be correlated.
func withRun(ctx context.Context, runID string) context.Context {
	return ctxlog.WithLogger(ctx, ctxlog.FromContext(ctx).With("run", runID))
}

// InitializedOptimizer is an optimizer bound to a concrete problem
// instance.
type InitializedOptimizer struct {
	exec  *pipeline.Execution
	runID string
}

// AddData stores an additional value in the run's registry, for inputs
// that are not available at initialization.
func (o *InitializedOptimizer) AddData(v any) *InitializedOptimizer {
	o.exec.AddData(v)
	return o
}

// Validate runs the validation phase on the instance data.
func (o *InitializedOptimizer) Validate(ctx context.Context) (*ValidatedOptimizer, error) {
	ctx = withRun(ctx, o.runID)
	start := time.Now()
	if _, err := o.exec.ExecuteStep(ctx, stepValidate); err != nil {
		return nil, err
	}
	return &ValidatedOptimizer{
		exec:         o.exec,
		runID:        o.runID,
		validateTime: time.Since(start),
	}, nil
}

// Solve runs every phase in sequence with the given solver (nil selects
// the bundled one). It is a shorthand for
// Validate().PreProcess().BuildModel().Solve(solver).
func (o *InitializedOptimizer) Solve(ctx context.Context, solver mip.Solver) (*pipeline.Registry, error) {
	validated, err := o.Validate(ctx)
	if err != nil {
		return nil, err
	}
	preProcessed, err := validated.PreProcess(ctx)
	if err != nil {
		return nil, err
	}
	built, err := preProcessed.BuildModel(ctx)
	if err != nil {
		return nil, err
	}
	return built.Solve(ctx, solver)
}

// ValidatedOptimizer is an optimizer whose instance data passed validation.
type ValidatedOptimizer struct {
	exec         *pipeline.Execution
	runID        string
	validateTime time.Duration
}

// PreProcess runs the pre-processing phase. Pre-processing can shrink the
// model, which in turn shrinks the solve time.
func (o *ValidatedOptimizer) PreProcess(ctx context.Context) (*PreProcessedOptimizer, error) {
	ctx = withRun(ctx, o.runID)
	start := time.Now()
	if _, err := o.exec.ExecuteStep(ctx, stepPreProcess); err != nil {
		return nil, err
	}
	return &PreProcessedOptimizer{
		exec:           o.exec,
		runID:          o.runID,
		validateTime:   o.validateTime,
		preProcessTime: time.Since(start),
	}, nil
}

// PreProcessedOptimizer is an optimizer whose pre-processing phase has run.
type PreProcessedOptimizer struct {
	exec           *pipeline.Execution
	runID          string
	validateTime   time.Duration
	preProcessTime time.Duration
}

// BuildModel constructs the mip model for the problem instance.
func (o *PreProcessedOptimizer) BuildModel(ctx context.Context) (*BuiltOptimizer, error) {
	ctx = withRun(ctx, o.runID)
	start := time.Now()
	if _, err := o.exec.ExecuteStep(ctx, stepBuildModel); err != nil {
		return nil, err
	}
	return &BuiltOptimizer{
		exec:           o.exec,
		runID:          o.runID,
		validateTime:   o.validateTime,
		preProcessTime: o.preProcessTime,
		buildTime:      time.Since(start),
	}, nil
}

// BuiltOptimizer is an optimizer whose model has been built.
type BuiltOptimizer struct {
	exec           *pipeline.Execution
	runID          string
	validateTime   time.Duration
	preProcessTime time.Duration
	buildTime      time.Duration
}

// Problem returns the built model.
func (o *BuiltOptimizer) Problem() *mip.Problem {
	p, _ := pipeline.Get[*mip.Problem](o.exec.Registry())
	return p
}

// ModelString renders the built model as an LP-style listing, truncated to
// lineLimit lines (0 disables truncation).
func (o *BuiltOptimizer) ModelString(lineLimit int) string {
	return o.Problem().Format(lineLimit)
}

// Solve runs the solve and extract-solution phases and returns the final
// registry, extended with StepTimes and ModelSize metrics. A nil solver
// selects the bundled branch-and-bound solver.
func (o *BuiltOptimizer) Solve(ctx context.Context, solver mip.Solver) (*pipeline.Registry, error) {
	ctx = withRun(ctx, o.runID)
	o.exec.AddData(SolveSettings{Solver: solver})

	solveStart := time.Now()
	if _, err := o.exec.ExecuteStep(ctx, stepSolve); err != nil {
		return nil, err
	}
	solveTime := time.Since(solveStart)

	extractStart := time.Now()
	reg, err := o.exec.ExecuteStep(ctx, stepExtractSolution)
	if err != nil {
		return nil, err
	}
	extractTime := time.Since(extractStart)

	problem := o.Problem()
	pipeline.Put(reg, StepTimes{
		Validate:        o.validateTime,
		PreProcess:      o.preProcessTime,
		BuildModel:      o.buildTime,
		Solve:           solveTime,
		ExtractSolution: extractTime,
	})
	pipeline.Put(reg, ModelSize{
		Variables:   problem.NumVariables(),
		Constraints: problem.NumConstraints(),
	})

	ctxlog.FromContext(ctx).Info("🏁 Optimization finished.",
		"solve_duration", solveTime,
		"variables", problem.NumVariables(),
		"constraints", problem.NumConstraints(),
	)
	return reg, nil
}
