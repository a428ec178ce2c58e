// Package optimize layers a modular optimization pipeline on top of the
// pipeline engine.
//
// An Optimizer assembles a five-phase workflow — validate, pre-process,
// build the model, solve, extract the solution — from the Modules added to
// it. Each Module contributes at most one task per phase; the phase
// boundaries themselves (creating the mip.Problem, invoking the solver,
// extracting the objective value) are injected as default tasks and
// scheduled like any other task.
//
// The phase order is a convention of this package, expressed as an ordered
// list of named steps; the engine below knows nothing about it.
package optimize
