package knapsack

import (
	"context"
	"fmt"

	"github.com/optiflow/optiflow/mip"
	"github.com/optiflow/optiflow/optimize"
	"github.com/optiflow/optiflow/pipeline"
)

// BaseData describes an instance of the knapsack problem.
type BaseData struct {
	// The available items.
	Items []string
	// The profit of each item; the packed items' total profit is maximized.
	Profits map[string]float64
	// The weight of each item.
	Weights map[string]float64
	// The capacity of the knapsack.
	MaxWeight float64
}

// BaseModelData is the model state added by the base module: one pack /
// don't-pack decision variable per item.
type BaseModelData struct {
	PackItem map[string]*mip.Var
}

// SolutionData is the solution to the knapsack problem.
type SolutionData struct {
	PackedItems []string
}

// BaseModule provides the data validation, model construction and solution
// extraction that every knapsack variant needs.
func BaseModule() optimize.Module {
	return optimize.Module{
		Validate:        pipeline.NewTask1("validate_base_data", validateBaseData),
		BuildModel:      pipeline.NewTask2("build_base_model", buildBaseModel),
		ExtractSolution: pipeline.NewTask3("extract_solution", extractSolution),
	}
}

func validateBaseData(ctx context.Context, data BaseData) (pipeline.None, error) {
	none := pipeline.None{}

	if data.MaxWeight < 0 {
		return none, fmt.Errorf("the maximum weight must not be negative, got %g", data.MaxWeight)
	}
	for _, item := range data.Items {
		profit, ok := data.Profits[item]
		if !ok {
			return none, fmt.Errorf("no profit defined for item %q", item)
		}
		if profit < 0 {
			return none, fmt.Errorf("the profit of item %q must not be negative, got %g", item, profit)
		}

		weight, ok := data.Weights[item]
		if !ok {
			return none, fmt.Errorf("no weight defined for item %q", item)
		}
		if weight < 0 {
			return none, fmt.Errorf("the weight of item %q must not be negative, got %g", item, weight)
		}
	}
	return none, nil
}

func buildBaseModel(ctx context.Context, data BaseData, problem *mip.Problem) (BaseModelData, error) {
	packItem := make(map[string]*mip.Var, len(data.Items))
	capacity := mip.NewExpr()
	profit := mip.NewExpr()

	for _, item := range data.Items {
		v := problem.NewBinaryVar(fmt.Sprintf("pack_item(%s)", item))
		packItem[item] = v
		capacity.AddTerm(v, data.Weights[item])
		profit.AddTerm(v, data.Profits[item])
	}

	problem.AddConstraint("respect_capacity", capacity, mip.LessEq, data.MaxWeight)
	problem.AddObjective(profit)

	return BaseModelData{PackItem: packItem}, nil
}

func extractSolution(ctx context.Context, data BaseData, model BaseModelData, problem *mip.Problem) (SolutionData, error) {
	var packed []string
	for _, item := range data.Items {
		if model.PackItem[item].Value() > 0.5 {
			packed = append(packed, item)
		}
	}
	return SolutionData{PackedItems: packed}, nil
}
