package mip

import (
	"context"
	"fmt"
	"math"
)

// Status is the outcome of a solve attempt.
type Status int

const (
	StatusNotSolved Status = iota
	StatusOptimal
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusNotSolved:
		return "not solved"
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Solver solves a Problem in place: on an optimal outcome it assigns every
// variable's value and the problem's objective value.
type Solver interface {
	Solve(ctx context.Context, p *Problem) (Status, error)
}

// BranchBound is the bundled exact solver for binary linear programs. It
// searches variable assignments depth-first, pruning branches that cannot
// satisfy a constraint or cannot beat the incumbent objective.
type BranchBound struct{}

// NewBranchBound creates the bundled solver.
func NewBranchBound() *BranchBound {
	return &BranchBound{}
}

const solveEpsilon = 1e-9

// row is a constraint normalized to the form `sum(coeffs*x) <= rhs`.
type row struct {
	coeffs []float64
	rhs    float64
}

type searchState struct {
	obj        []float64 // objective coefficients, normalized to maximize
	rows       []row
	assignment []int8 // -1 unassigned, else 0/1
	best       []int8
	bestValue  float64
	found      bool
	nodes      int
	ctx        context.Context
}

// Solve implements Solver. The search order is the variable registration
// order, so repeated solves of the same model are deterministic.
func (bb *BranchBound) Solve(ctx context.Context, p *Problem) (Status, error) {
	n := len(p.vars)
	index := make(map[*Var]int, n)
	for i, v := range p.vars {
		index[v] = i
	}

	// Normalize the objective to maximization.
	obj := make([]float64, n)
	for _, v := range p.objective.Vars() {
		obj[index[v]] = p.objective.Coefficient(v)
	}
	if p.sense == Minimize {
		for i := range obj {
			obj[i] = -obj[i]
		}
	}

	rows, err := normalizeRows(p, index)
	if err != nil {
		return StatusNotSolved, err
	}

	st := &searchState{
		obj:        obj,
		rows:       rows,
		assignment: make([]int8, n),
		best:       make([]int8, n),
		bestValue:  math.Inf(-1),
		ctx:        ctx,
	}
	for i := range st.assignment {
		st.assignment[i] = -1
	}

	if err := st.search(0, 0); err != nil {
		return StatusNotSolved, err
	}

	if !st.found {
		p.status = StatusInfeasible
		return StatusInfeasible, nil
	}

	objective := p.objective.Constant()
	for i, v := range p.vars {
		v.value = float64(st.best[i])
		objective += p.objective.Coefficient(v) * v.value
	}
	p.objectiveValue = objective
	p.status = StatusOptimal
	return StatusOptimal, nil
}

// normalizeRows rewrites every constraint as one or two `<=` rows over the
// full variable vector, folding the expression constant into the rhs.
func normalizeRows(p *Problem, index map[*Var]int) ([]row, error) {
	var rows []row
	for _, c := range p.constraints {
		coeffs := make([]float64, len(p.vars))
		for _, v := range c.expr.Vars() {
			i, ok := index[v]
			if !ok {
				return nil, fmt.Errorf("constraint %q references a variable not registered with problem %q", c.name, p.name)
			}
			coeffs[i] = c.expr.Coefficient(v)
		}
		rhs := c.rhs - c.expr.Constant()

		switch c.op {
		case LessEq:
			rows = append(rows, row{coeffs: coeffs, rhs: rhs})
		case GreaterEq:
			rows = append(rows, negate(row{coeffs: coeffs, rhs: rhs}))
		case Equal:
			rows = append(rows, row{coeffs: coeffs, rhs: rhs})
			rows = append(rows, negate(row{coeffs: coeffs, rhs: rhs}))
		default:
			return nil, fmt.Errorf("constraint %q has unknown operator %v", c.name, c.op)
		}
	}
	return rows, nil
}

func negate(r row) row {
	coeffs := make([]float64, len(r.coeffs))
	for i, c := range r.coeffs {
		coeffs[i] = -c
	}
	return row{coeffs: coeffs, rhs: -r.rhs}
}

// search assigns variables from position i onward. current is the objective
// contribution of the assigned prefix.
func (st *searchState) search(i int, current float64) error {
	st.nodes++
	if st.nodes%1024 == 0 {
		if err := st.ctx.Err(); err != nil {
			return err
		}
	}

	// Bound: even taking every remaining positive coefficient cannot beat
	// the incumbent.
	optimistic := current
	for j := i; j < len(st.obj); j++ {
		if st.obj[j] > 0 {
			optimistic += st.obj[j]
		}
	}
	if st.found && optimistic <= st.bestValue+solveEpsilon {
		return nil
	}

	if !st.feasiblePrefix(i) {
		return nil
	}

	if i == len(st.assignment) {
		if !st.found || current > st.bestValue+solveEpsilon {
			st.found = true
			st.bestValue = current
			copy(st.best, st.assignment)
		}
		return nil
	}

	// Try the more promising value first.
	order := [2]int8{1, 0}
	if st.obj[i] < 0 {
		order = [2]int8{0, 1}
	}
	for _, val := range order {
		st.assignment[i] = val
		if err := st.search(i+1, current+float64(val)*st.obj[i]); err != nil {
			return err
		}
	}
	st.assignment[i] = -1
	return nil
}

// feasiblePrefix reports whether some completion of the first i assigned
// variables can still satisfy every row: the fixed contribution plus the
// most favourable (most negative) contribution of the free variables must
// not exceed the rhs.
func (st *searchState) feasiblePrefix(i int) bool {
	for _, r := range st.rows {
		lower := 0.0
		for j, c := range r.coeffs {
			if j < i {
				lower += c * float64(st.assignment[j])
			} else if c < 0 {
				lower += c
			}
		}
		if lower > r.rhs+solveEpsilon {
			return false
		}
	}
	return true
}
