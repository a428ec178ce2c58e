package knapsack

import (
	"context"
	"fmt"

	"github.com/optiflow/optiflow/mip"
	"github.com/optiflow/optiflow/optimize"
	"github.com/optiflow/optiflow/pipeline"
)

// ConflictData lists item pairs which must not be packed together.
type ConflictData struct {
	Conflicts [][2]string
}

// ConflictModule extends the base module with pairwise packing conflicts.
// It requires ConflictData in addition to the base module's inputs.
func ConflictModule() optimize.Module {
	return optimize.Module{
		Validate:   pipeline.NewTask2("validate_conflict_data", validateConflictData),
		BuildModel: pipeline.NewTask3("build_conflict_model", buildConflictModel),
	}
}

func validateConflictData(ctx context.Context, base BaseData, conflicts ConflictData) (pipeline.None, error) {
	none := pipeline.None{}

	known := make(map[string]struct{}, len(base.Items))
	for _, item := range base.Items {
		known[item] = struct{}{}
	}

	for _, pair := range conflicts.Conflicts {
		for _, item := range pair {
			if _, ok := known[item]; !ok {
				return none, fmt.Errorf("conflict references item %q, which is not defined in the base data", item)
			}
		}
		if pair[0] == pair[1] {
			return none, fmt.Errorf("item %q is conflicting with itself", pair[0])
		}
	}
	return none, nil
}

func buildConflictModel(ctx context.Context, model BaseModelData, conflicts ConflictData, problem *mip.Problem) (pipeline.None, error) {
	// Prevent the conflicting items from being packed together.
	for _, pair := range conflicts.Conflicts {
		expr := mip.Sum(
			mip.Term(model.PackItem[pair[0]], 1),
			mip.Term(model.PackItem[pair[1]], 1),
		)
		problem.AddConstraint(fmt.Sprintf("conflict(%s,%s)", pair[0], pair[1]), expr, mip.LessEq, 1)
	}
	return pipeline.None{}, nil
}
