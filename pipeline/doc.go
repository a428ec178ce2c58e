// Package pipeline implements a small execution engine that runs a fixed
// sequence of steps, each composed of tasks whose execution order is not
// declared explicitly but inferred from the data each task consumes and
// produces.
//
// Data flows through a Registry, a type-keyed store holding at most one
// value per type. A Task declares the types it needs and the type it
// produces; a Step schedules its tasks with an iterative ready-set
// (fixpoint) algorithm against the Registry; a Workflow executes its steps
// strictly in the order they were added, threading the Registry between
// them.
//
// The scheduler repeats passes over the tasks that have not yet run. A task
// is ready when every one of its declared dependency types is present in
// the Registry. Each pass executes every ready task and writes its output
// back into the Registry; a pass that executes nothing while tasks remain
// pending fails with a StallError naming every stuck task and the types it
// is still missing. This single check uniformly detects circular
// dependencies, missing producers, and data that was never supplied.
package pipeline
