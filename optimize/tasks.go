package optimize

import (
	"context"
	"fmt"

	"github.com/optiflow/optiflow/ctxlog"
	"github.com/optiflow/optiflow/mip"
	"github.com/optiflow/optiflow/pipeline"
)

// ProblemSettings configures the model that the build phase constructs. It
// is seeded into the registry by Optimizer.Initialize.
type ProblemSettings struct {
	Name  string
	Sense mip.Sense
}

// SolveSettings configures the solve phase. A nil Solver selects the
// bundled branch-and-bound solver.
type SolveSettings struct {
	Solver mip.Solver
}

// SolutionObjective is the objective value of the solution, extracted by a
// default task in the extract-solution phase.
type SolutionObjective struct {
	Value float64
}

// newCreateProblemTask builds the empty mip.Problem that module tasks in
// the build phase extend.
func newCreateProblemTask() pipeline.Task {
	return pipeline.NewTask1("create_problem", func(ctx context.Context, settings ProblemSettings) (*mip.Problem, error) {
		return mip.NewProblem(settings.Name, settings.Sense), nil
	})
}

// newSolveTask invokes the solver on the built model. Everything between
// its inputs and its error is opaque to the engine.
func newSolveTask() pipeline.Task {
	return pipeline.NewTask2("solve", func(ctx context.Context, problem *mip.Problem, settings SolveSettings) (pipeline.None, error) {
		solver := settings.Solver
		if solver == nil {
			solver = mip.NewBranchBound()
		}

		status, err := solver.Solve(ctx, problem)
		if err != nil {
			return pipeline.None{}, err
		}
		if status != mip.StatusOptimal {
			return pipeline.None{}, fmt.Errorf("%w (solver status: %s)", ErrInfeasible, status)
		}

		ctxlog.FromContext(ctx).Debug("Solver finished.",
			"status", status.String(),
			"objective", problem.ObjectiveValue(),
		)
		return pipeline.None{}, nil
	})
}

// newObjectiveTask extracts the objective value from the solved model.
func newObjectiveTask() pipeline.Task {
	return pipeline.NewTask1("extract_objective", func(ctx context.Context, problem *mip.Problem) (SolutionObjective, error) {
		return SolutionObjective{Value: problem.ObjectiveValue()}, nil
	})
}
