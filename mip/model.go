package mip

import "fmt"

// Sense states whether the objective is minimized or maximized.
type Sense int

const (
	Minimize Sense = iota
	Maximize
)

func (s Sense) String() string {
	switch s {
	case Minimize:
		return "minimize"
	case Maximize:
		return "maximize"
	default:
		return fmt.Sprintf("Sense(%d)", int(s))
	}
}

// Var is a binary decision variable. Its value is populated after an
// optimal solve.
type Var struct {
	name  string
	value float64
}

// Name returns the variable's name.
func (v *Var) Name() string { return v.name }

// Value returns the variable's value in the last optimal solution, 0 or 1.
func (v *Var) Value() float64 { return v.value }

// Expr is a linear expression: a weighted sum of variables plus a constant.
type Expr struct {
	terms    map[*Var]float64
	order    []*Var
	constant float64
}

// NewExpr creates an empty expression.
func NewExpr() *Expr {
	return &Expr{terms: make(map[*Var]float64)}
}

// Term creates an expression holding a single weighted variable.
func Term(v *Var, coefficient float64) *Expr {
	return NewExpr().AddTerm(v, coefficient)
}

// Sum adds the given expressions together into a new expression.
func Sum(exprs ...*Expr) *Expr {
	out := NewExpr()
	for _, e := range exprs {
		out.Add(e)
	}
	return out
}

// AddTerm adds coefficient*v to the expression. It returns the same
// expression for chaining.
func (e *Expr) AddTerm(v *Var, coefficient float64) *Expr {
	if _, seen := e.terms[v]; !seen {
		e.order = append(e.order, v)
	}
	e.terms[v] += coefficient
	return e
}

// AddConst adds a constant to the expression.
func (e *Expr) AddConst(c float64) *Expr {
	e.constant += c
	return e
}

// Add accumulates another expression into this one.
func (e *Expr) Add(other *Expr) *Expr {
	for _, v := range other.order {
		e.AddTerm(v, other.terms[v])
	}
	e.constant += other.constant
	return e
}

// Coefficient returns the weight of v in the expression, 0 if absent.
func (e *Expr) Coefficient(v *Var) float64 {
	return e.terms[v]
}

// Constant returns the expression's constant part.
func (e *Expr) Constant() float64 { return e.constant }

// Vars returns the expression's variables in first-added order.
func (e *Expr) Vars() []*Var { return e.order }

// Op is a constraint comparison operator.
type Op int

const (
	LessEq Op = iota
	GreaterEq
	Equal
)

func (o Op) String() string {
	switch o {
	case LessEq:
		return "<="
	case GreaterEq:
		return ">="
	case Equal:
		return "="
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Constraint is a named linear constraint `expr op rhs`.
type Constraint struct {
	name string
	expr *Expr
	op   Op
	rhs  float64
}

// Name returns the constraint's name.
func (c *Constraint) Name() string { return c.name }

// Problem is a linear program over binary variables.
type Problem struct {
	name        string
	sense       Sense
	vars        []*Var
	constraints []*Constraint
	objective   *Expr

	status         Status
	objectiveValue float64
}

// NewProblem creates an empty problem with the given name and objective
// sense. The objective starts as an empty expression that model tasks
// extend additively.
func NewProblem(name string, sense Sense) *Problem {
	return &Problem{
		name:      name,
		sense:     sense,
		objective: NewExpr(),
		status:    StatusNotSolved,
	}
}

// Name returns the problem's name.
func (p *Problem) Name() string { return p.name }

// Sense returns the problem's objective sense.
func (p *Problem) Sense() Sense { return p.sense }

// NewBinaryVar creates a binary decision variable and registers it with the
// problem. Variable creation order fixes the solver's search order.
func (p *Problem) NewBinaryVar(name string) *Var {
	v := &Var{name: name}
	p.vars = append(p.vars, v)
	return v
}

// AddConstraint adds the named constraint `expr op rhs`.
func (p *Problem) AddConstraint(name string, expr *Expr, op Op, rhs float64) {
	p.constraints = append(p.constraints, &Constraint{name: name, expr: expr, op: op, rhs: rhs})
}

// AddObjective accumulates an expression into the objective.
func (p *Problem) AddObjective(e *Expr) {
	p.objective.Add(e)
}

// Objective returns the current objective expression.
func (p *Problem) Objective() *Expr { return p.objective }

// NumVariables returns the number of registered variables.
func (p *Problem) NumVariables() int { return len(p.vars) }

// NumConstraints returns the number of registered constraints.
func (p *Problem) NumConstraints() int { return len(p.constraints) }

// Status returns the outcome of the last solve.
func (p *Problem) Status() Status { return p.status }

// ObjectiveValue returns the objective value of the last optimal solution,
// including the objective's constant part.
func (p *Problem) ObjectiveValue() float64 { return p.objectiveValue }
