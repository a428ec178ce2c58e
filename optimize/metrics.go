package optimize

import "time"

// StepTimes records the wall-clock time spent in each phase of the
// optimization. It is written into the result registry after solving.
type StepTimes struct {
	Validate        time.Duration
	PreProcess      time.Duration
	BuildModel      time.Duration
	Solve           time.Duration
	ExtractSolution time.Duration
}

// ModelSize records the size of the built model.
type ModelSize struct {
	Variables   int
	Constraints int
}
