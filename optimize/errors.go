package optimize

import "errors"

// ErrInfeasible reports that the optimization problem has no feasible
// solution. The solve task wraps it with the solver's status; match it
// with errors.Is.
var ErrInfeasible = errors.New("the optimization problem does not have a solution")
