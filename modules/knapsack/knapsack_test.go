package knapsack

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optiflow/optiflow/mip"
	"github.com/optiflow/optiflow/optimize"
	"github.com/optiflow/optiflow/pipeline"
)

func baseOptimizer() *optimize.Optimizer {
	return optimize.New("knapsack_base", mip.Maximize).AddModules(BaseModule())
}

func conflictOptimizer() *optimize.Optimizer {
	return optimize.New("knapsack_conflict", mip.Maximize).AddModules(BaseModule(), ConflictModule())
}

func TestKnapsack_OneFittingItem(t *testing.T) {
	reg, err := baseOptimizer().
		Initialize(BaseData{
			Items:     []string{"apple"},
			Profits:   map[string]float64{"apple": 1.0},
			Weights:   map[string]float64{"apple": 1.0},
			MaxWeight: 1.0,
		}).
		Solve(context.Background(), nil)

	require.NoError(t, err)
	obj, _ := pipeline.Get[optimize.SolutionObjective](reg)
	assert.InDelta(t, 1.0, obj.Value, 1e-9)
	sol, _ := pipeline.Get[SolutionData](reg)
	assert.Equal(t, []string{"apple"}, sol.PackedItems)
}

func TestKnapsack_TwoItemsOneFits(t *testing.T) {
	reg, err := baseOptimizer().
		Initialize(BaseData{
			Items:     []string{"apple", "banana"},
			Profits:   map[string]float64{"apple": 1.0, "banana": 2.0},
			Weights:   map[string]float64{"apple": 1.0, "banana": 1.0},
			MaxWeight: 1.0,
		}).
		Solve(context.Background(), nil)

	require.NoError(t, err)
	obj, _ := pipeline.Get[optimize.SolutionObjective](reg)
	assert.InDelta(t, 2.0, obj.Value, 1e-9)
	sol, _ := pipeline.Get[SolutionData](reg)
	assert.Equal(t, []string{"banana"}, sol.PackedItems)
}

func TestKnapsack_ConflictForcesThirdItem(t *testing.T) {
	// The first two items fit together and would yield the most profit,
	// but they conflict; the third item fills the knapsack on its own and
	// beats either one alone.
	reg, err := conflictOptimizer().
		Initialize(
			BaseData{
				Items:     []string{"apple", "banana", "kiwi"},
				Profits:   map[string]float64{"apple": 2.0, "banana": 2.0, "kiwi": 3.0},
				Weights:   map[string]float64{"apple": 1.0, "banana": 1.0, "kiwi": 2.0},
				MaxWeight: 2.0,
			},
			ConflictData{
				Conflicts: [][2]string{{"apple", "banana"}},
			},
		).
		Solve(context.Background(), nil)

	require.NoError(t, err)
	obj, _ := pipeline.Get[optimize.SolutionObjective](reg)
	assert.InDelta(t, 3.0, obj.Value, 1e-9)
	sol, _ := pipeline.Get[SolutionData](reg)
	assert.Equal(t, []string{"kiwi"}, sol.PackedItems)
}

func TestKnapsack_ModelSizeBase(t *testing.T) {
	// One variable per item, one capacity constraint.
	reg, err := baseOptimizer().
		Initialize(BaseData{
			Items:     []string{"apple", "banana"},
			Profits:   map[string]float64{"apple": 1.0, "banana": 2.0},
			Weights:   map[string]float64{"apple": 1.0, "banana": 1.5},
			MaxWeight: 2.0,
		}).
		Solve(context.Background(), nil)

	require.NoError(t, err)
	size, _ := pipeline.Get[optimize.ModelSize](reg)
	assert.Equal(t, optimize.ModelSize{Variables: 2, Constraints: 1}, size)
}

func TestKnapsack_ModelSizeConflict(t *testing.T) {
	// One variable per item, the capacity constraint plus one constraint
	// per conflict pair.
	reg, err := conflictOptimizer().
		Initialize(
			BaseData{
				Items:     []string{"apple", "banana", "kiwi"},
				Profits:   map[string]float64{"apple": 1.0, "banana": 2.0, "kiwi": 1.0},
				Weights:   map[string]float64{"apple": 1.0, "banana": 1.5, "kiwi": 1.0},
				MaxWeight: 2.0,
			},
			ConflictData{
				Conflicts: [][2]string{{"apple", "banana"}, {"banana", "kiwi"}},
			},
		).
		Solve(context.Background(), nil)

	require.NoError(t, err)
	size, _ := pipeline.Get[optimize.ModelSize](reg)
	assert.Equal(t, optimize.ModelSize{Variables: 3, Constraints: 3}, size)
}

func TestKnapsack_ValidationRejectsMissingProfit(t *testing.T) {
	_, err := baseOptimizer().
		Initialize(BaseData{
			Items:     []string{"apple"},
			Profits:   map[string]float64{},
			Weights:   map[string]float64{"apple": 1.0},
			MaxWeight: 1.0,
		}).
		Solve(context.Background(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no profit defined")
}

func TestKnapsack_ValidationRejectsNegativeWeight(t *testing.T) {
	_, err := baseOptimizer().
		Initialize(BaseData{
			Items:     []string{"apple"},
			Profits:   map[string]float64{"apple": 1.0},
			Weights:   map[string]float64{"apple": -1.0},
			MaxWeight: 1.0,
		}).
		Solve(context.Background(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be negative")
}

func TestKnapsack_ConflictValidationRejectsUnknownItem(t *testing.T) {
	_, err := conflictOptimizer().
		Initialize(
			BaseData{
				Items:     []string{"apple"},
				Profits:   map[string]float64{"apple": 1.0},
				Weights:   map[string]float64{"apple": 1.0},
				MaxWeight: 1.0,
			},
			ConflictData{Conflicts: [][2]string{{"apple", "pear"}}},
		).
		Solve(context.Background(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `"pear"`)
}

func TestKnapsack_ConflictValidationRejectsSelfConflict(t *testing.T) {
	_, err := conflictOptimizer().
		Initialize(
			BaseData{
				Items:     []string{"apple"},
				Profits:   map[string]float64{"apple": 1.0},
				Weights:   map[string]float64{"apple": 1.0},
				MaxWeight: 1.0,
			},
			ConflictData{Conflicts: [][2]string{{"apple", "apple"}}},
		).
		Solve(context.Background(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "conflicting with itself")
}

func TestKnapsack_NothingFits(t *testing.T) {
	reg, err := baseOptimizer().
		Initialize(BaseData{
			Items:     []string{"anvil"},
			Profits:   map[string]float64{"anvil": 10.0},
			Weights:   map[string]float64{"anvil": 5.0},
			MaxWeight: 1.0,
		}).
		Solve(context.Background(), nil)

	require.NoError(t, err)
	obj, _ := pipeline.Get[optimize.SolutionObjective](reg)
	assert.InDelta(t, 0.0, obj.Value, 1e-9)
	sol, _ := pipeline.Get[SolutionData](reg)
	assert.Empty(t, sol.PackedItems)
}
