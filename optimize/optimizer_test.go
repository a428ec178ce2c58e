package optimize

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optiflow/optiflow/mip"
	"github.com/optiflow/optiflow/pipeline"
)

// A minimal test domain: choose a subset of n indistinguishable units, at
// most Limit of them, each worth one profit unit.
type unitData struct {
	Units int
	Limit int
}

type unitModelData struct {
	selected []*mip.Var
}

type unitSolution struct {
	Selected int
}

func unitModule() Module {
	return Module{
		Validate: pipeline.NewTask1("validate_units", func(ctx context.Context, data unitData) (pipeline.None, error) {
			if data.Units < 0 {
				return pipeline.None{}, fmt.Errorf("unit count must not be negative, got %d", data.Units)
			}
			return pipeline.None{}, nil
		}),
		BuildModel: pipeline.NewTask2("build_units", func(ctx context.Context, data unitData, problem *mip.Problem) (unitModelData, error) {
			md := unitModelData{}
			limit := mip.NewExpr()
			for i := 0; i < data.Units; i++ {
				v := problem.NewBinaryVar(fmt.Sprintf("unit(%d)", i))
				md.selected = append(md.selected, v)
				limit.AddTerm(v, 1)
				problem.AddObjective(mip.Term(v, 1))
			}
			problem.AddConstraint("limit", limit, mip.LessEq, float64(data.Limit))
			return md, nil
		}),
		ExtractSolution: pipeline.NewTask2("extract_units", func(ctx context.Context, md unitModelData, problem *mip.Problem) (unitSolution, error) {
			count := 0
			for _, v := range md.selected {
				if v.Value() > 0.5 {
					count++
				}
			}
			return unitSolution{Selected: count}, nil
		}),
	}
}

func TestOptimizer_StagedPhasesProduceSolution(t *testing.T) {
	// --- Arrange ---
	opt := New("units", mip.Maximize).AddModules(unitModule())
	ctx := context.Background()

	// --- Act ---
	validated, err := opt.Initialize(unitData{Units: 5, Limit: 3}).Validate(ctx)
	require.NoError(t, err)
	preProcessed, err := validated.PreProcess(ctx)
	require.NoError(t, err)
	built, err := preProcessed.BuildModel(ctx)
	require.NoError(t, err)
	reg, err := built.Solve(ctx, nil)
	require.NoError(t, err)

	// --- Assert ---
	sol, ok := pipeline.Get[unitSolution](reg)
	require.True(t, ok)
	assert.Equal(t, 3, sol.Selected)

	obj, ok := pipeline.Get[SolutionObjective](reg)
	require.True(t, ok)
	assert.InDelta(t, 3.0, obj.Value, 1e-9)
}

func TestOptimizer_SolveShorthand(t *testing.T) {
	reg, err := New("units", mip.Maximize).
		AddModules(unitModule()).
		Initialize(unitData{Units: 4, Limit: 2}).
		Solve(context.Background(), nil)

	require.NoError(t, err)
	sol, _ := pipeline.Get[unitSolution](reg)
	assert.Equal(t, 2, sol.Selected)
}

func TestOptimizer_MetricsWrittenAfterSolve(t *testing.T) {
	reg, err := New("units", mip.Maximize).
		AddModules(unitModule()).
		Initialize(unitData{Units: 3, Limit: 1}).
		Solve(context.Background(), nil)
	require.NoError(t, err)

	size, ok := pipeline.Get[ModelSize](reg)
	require.True(t, ok)
	assert.Equal(t, ModelSize{Variables: 3, Constraints: 1}, size)

	_, ok = pipeline.Get[StepTimes](reg)
	assert.True(t, ok)
}

func TestOptimizer_ValidationFailureAbortsRun(t *testing.T) {
	_, err := New("units", mip.Maximize).
		AddModules(unitModule()).
		Initialize(unitData{Units: -1, Limit: 1}).
		Solve(context.Background(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be negative")
}

func TestOptimizer_MissingSeedDataStalls(t *testing.T) {
	// The unit module's validation task requires unitData, which was never
	// seeded.
	_, err := New("units", mip.Maximize).
		AddModules(unitModule()).
		Initialize().
		Validate(context.Background())

	var stall *pipeline.StallError
	require.ErrorAs(t, err, &stall)
	assert.Equal(t, PhaseValidate, stall.Step)
}

func TestOptimizer_InfeasibleModelSurfacesErrInfeasible(t *testing.T) {
	impossible := Module{
		BuildModel: pipeline.NewTask1("build_impossible", func(ctx context.Context, problem *mip.Problem) (pipeline.None, error) {
			x := problem.NewBinaryVar("x")
			problem.AddConstraint("contradiction", mip.Term(x, 1), mip.GreaterEq, 2)
			return pipeline.None{}, nil
		}),
	}

	_, err := New("impossible", mip.Minimize).
		AddModules(impossible).
		Initialize().
		Solve(context.Background(), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInfeasible)
}

func TestOptimizer_ModelStringRendersProblem(t *testing.T) {
	built, err := buildUnits(t, unitData{Units: 2, Limit: 1})
	require.NoError(t, err)

	out := built.ModelString(0)

	assert.Contains(t, out, "units")
	assert.Contains(t, out, "unit(0)")
	assert.Contains(t, out, "limit:")
}

func TestOptimizer_ProblemAccessor(t *testing.T) {
	built, err := buildUnits(t, unitData{Units: 2, Limit: 1})
	require.NoError(t, err)

	p := built.Problem()
	require.NotNil(t, p)
	assert.Equal(t, 2, p.NumVariables())
	assert.Equal(t, mip.Maximize, p.Sense())
}

func TestOptimizer_WithParallelismStillSolves(t *testing.T) {
	reg, err := New("units", mip.Maximize).
		AddModules(unitModule()).
		WithParallelism(4).
		Initialize(unitData{Units: 6, Limit: 2}).
		Solve(context.Background(), nil)

	require.NoError(t, err)
	sol, _ := pipeline.Get[unitSolution](reg)
	assert.Equal(t, 2, sol.Selected)
}

func TestOptimizer_AddDataAfterInitialize(t *testing.T) {
	init := New("units", mip.Maximize).AddModules(unitModule()).Initialize()
	init.AddData(unitData{Units: 2, Limit: 2})

	reg, err := init.Solve(context.Background(), nil)

	require.NoError(t, err)
	sol, _ := pipeline.Get[unitSolution](reg)
	assert.Equal(t, 2, sol.Selected)
}

func buildUnits(t *testing.T, data unitData) (*BuiltOptimizer, error) {
	t.Helper()
	ctx := context.Background()
	validated, err := New("units", mip.Maximize).
		AddModules(unitModule()).
		Initialize(data).
		Validate(ctx)
	if err != nil {
		return nil, err
	}
	preProcessed, err := validated.PreProcess(ctx)
	if err != nil {
		return nil, err
	}
	return preProcessed.BuildModel(ctx)
}
