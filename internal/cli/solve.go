package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/optiflow/optiflow/internal/instance"
	"github.com/optiflow/optiflow/mip"
	"github.com/optiflow/optiflow/modules/knapsack"
	"github.com/optiflow/optiflow/optimize"
	"github.com/optiflow/optiflow/pipeline"
)

func newSolveCmd() *cobra.Command {
	var printModel bool
	var timings bool
	var parallel int

	cmd := &cobra.Command{
		Use:   "solve <instance-file>",
		Short: "Solve a knapsack instance loaded from a file",
		Long: `Solve loads a knapsack problem instance from an .hcl, .yaml or .yml
file, builds the model, and prints the packed items with their total
profit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, args[0], printModel, timings, parallel)
		},
	}

	cmd.Flags().BoolVar(&printModel, "print-model", false, "Print the built model before solving.")
	cmd.Flags().BoolVar(&timings, "timings", false, "Print per-phase durations after solving.")
	cmd.Flags().IntVar(&parallel, "parallel", 1, "Number of concurrent workers per pipeline phase.")
	return cmd
}

func runSolve(cmd *cobra.Command, path string, printModel, timings bool, parallel int) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	loader, err := instance.ForPath(path)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	inst, err := loader.Load(ctx, path)
	if err != nil {
		return err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	opt := optimize.New(name, mip.Maximize).AddModules(knapsack.BaseModule())
	if inst.HasConflicts() {
		opt.AddModules(knapsack.ConflictModule())
	}
	if parallel > 1 {
		opt.WithParallelism(parallel)
	}

	initialized := opt.Initialize(inst.BaseData())
	if inst.HasConflicts() {
		initialized.AddData(inst.ConflictData())
	}

	validated, err := initialized.Validate(ctx)
	if err != nil {
		return err
	}
	preProcessed, err := validated.PreProcess(ctx)
	if err != nil {
		return err
	}
	built, err := preProcessed.BuildModel(ctx)
	if err != nil {
		return err
	}

	if printModel {
		fmt.Fprintln(out, built.ModelString(0))
	}

	reg, err := built.Solve(ctx, nil)
	if err != nil {
		if errors.Is(err, optimize.ErrInfeasible) {
			return &ExitError{Code: 1, Message: fmt.Sprintf("instance %s: %v", path, err)}
		}
		return err
	}

	printSolution(out, reg)
	if timings {
		printTimings(out, reg)
	}
	return nil
}

func printSolution(out io.Writer, reg *pipeline.Registry) {
	solution, _ := pipeline.Get[knapsack.SolutionData](reg)
	objective, _ := pipeline.Get[optimize.SolutionObjective](reg)

	if len(solution.PackedItems) == 0 {
		fmt.Fprintln(out, "No items packed.")
	} else {
		fmt.Fprintf(out, "Packed items (%d): %s\n", len(solution.PackedItems), strings.Join(solution.PackedItems, ", "))
	}
	fmt.Fprintf(out, "Total profit: %g\n", objective.Value)
}

func printTimings(out io.Writer, reg *pipeline.Registry) {
	times, _ := pipeline.Get[optimize.StepTimes](reg)
	size, _ := pipeline.Get[optimize.ModelSize](reg)

	fmt.Fprintf(out, "Model size: %d variables, %d constraints\n", size.Variables, size.Constraints)
	fmt.Fprintln(out, "Timings:")
	fmt.Fprintf(out, "  validate:         %s\n", times.Validate)
	fmt.Fprintf(out, "  pre_process:      %s\n", times.PreProcess)
	fmt.Fprintf(out, "  build_model:      %s\n", times.BuildModel)
	fmt.Fprintf(out, "  solve:            %s\n", times.Solve)
	fmt.Fprintf(out, "  extract_solution: %s\n", times.ExtractSolution)
}
