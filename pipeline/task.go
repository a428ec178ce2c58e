package pipeline

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Dependency is one named, typed input required by a task.
type Dependency struct {
	// Param is a human-readable parameter name, used in diagnostics.
	Param string
	// Key is the TypeKey that must be present in the Registry before the
	// task can run.
	Key TypeKey
}

// Dep builds a Dependency on the type T with an explicit parameter name.
// The generic task constructors derive parameter names automatically; Dep
// is for hand-written Task implementations.
func Dep[T any](param string) Dependency {
	return Dependency{Param: param, Key: KeyOf[T]()}
}

// Inputs carries the dependency values bound to a task at the start of the
// scheduling pass in which it runs. Tasks receive all of their data through
// Inputs and must not read the Registry directly.
type Inputs struct {
	deps   []Dependency
	values []any
}

// At returns the value bound to the i-th declared dependency.
func (in *Inputs) At(i int) any {
	return in.values[i]
}

// Value returns the value bound to the dependency with the given parameter
// name.
func (in *Inputs) Value(param string) (any, bool) {
	for i, d := range in.deps {
		if d.Param == param {
			return in.values[i], true
		}
	}
	return nil, false
}

// Task is the unit of work. A task declares a fixed, ordered list of typed
// dependencies and an optional typed output, and is executed exactly once,
// after all of its dependencies are available in the Registry.
//
// Implementations are normally created through the NewTask constructors,
// which compute the dependency and output keys from the function signature
// at registration time.
type Task interface {
	// Name identifies the task in logs and error messages.
	Name() string
	// Dependencies returns the ordered list of required inputs.
	Dependencies() []Dependency
	// Output returns the TypeKey the task produces, or nil for none.
	Output() TypeKey
	// Execute performs the task's work. Inputs arrive exclusively through
	// in; the returned value is registered under the Output key.
	Execute(ctx context.Context, in *Inputs) (any, error)
}

// None marks a task that produces no output. Use it as the Out type
// parameter of a NewTask constructor.
type None struct{}

var noneKey = KeyOf[None]()

type funcTask struct {
	name string
	deps []Dependency
	out  TypeKey
	run  func(ctx context.Context, in *Inputs) (any, error)
}

func (t *funcTask) Name() string               { return t.name }
func (t *funcTask) Dependencies() []Dependency { return t.deps }
func (t *funcTask) Output() TypeKey            { return t.out }

func (t *funcTask) Execute(ctx context.Context, in *Inputs) (any, error) {
	out, err := t.run(ctx, in)
	if err != nil || t.out == nil {
		return nil, err
	}
	return out, nil
}

// NewTask0 creates a task with no dependencies.
func NewTask0[Out any](name string, fn func(ctx context.Context) (Out, error)) Task {
	return &funcTask{
		name: name,
		out:  outKey[Out](),
		run: func(ctx context.Context, _ *Inputs) (any, error) {
			return fn(ctx)
		},
	}
}

// NewTask1 creates a task with one dependency.
func NewTask1[A, Out any](name string, fn func(ctx context.Context, a A) (Out, error)) Task {
	return &funcTask{
		name: name,
		deps: []Dependency{depOf[A]()},
		out:  outKey[Out](),
		run: func(ctx context.Context, in *Inputs) (any, error) {
			return fn(ctx, in.At(0).(A))
		},
	}
}

// NewTask2 creates a task with two dependencies.
func NewTask2[A, B, Out any](name string, fn func(ctx context.Context, a A, b B) (Out, error)) Task {
	return &funcTask{
		name: name,
		deps: []Dependency{depOf[A](), depOf[B]()},
		out:  outKey[Out](),
		run: func(ctx context.Context, in *Inputs) (any, error) {
			return fn(ctx, in.At(0).(A), in.At(1).(B))
		},
	}
}

// NewTask3 creates a task with three dependencies.
func NewTask3[A, B, C, Out any](name string, fn func(ctx context.Context, a A, b B, c C) (Out, error)) Task {
	return &funcTask{
		name: name,
		deps: []Dependency{depOf[A](), depOf[B](), depOf[C]()},
		out:  outKey[Out](),
		run: func(ctx context.Context, in *Inputs) (any, error) {
			return fn(ctx, in.At(0).(A), in.At(1).(B), in.At(2).(C))
		},
	}
}

// NewTask4 creates a task with four dependencies.
func NewTask4[A, B, C, D, Out any](name string, fn func(ctx context.Context, a A, b B, c C, d D) (Out, error)) Task {
	return &funcTask{
		name: name,
		deps: []Dependency{depOf[A](), depOf[B](), depOf[C](), depOf[D]()},
		out:  outKey[Out](),
		run: func(ctx context.Context, in *Inputs) (any, error) {
			return fn(ctx, in.At(0).(A), in.At(1).(B), in.At(2).(C), in.At(3).(D))
		},
	}
}

// outKey maps the Out type parameter to an output key, treating None as
// "no output".
func outKey[Out any]() TypeKey {
	k := KeyOf[Out]()
	if k == noneKey {
		return nil
	}
	return k
}

func depOf[T any]() Dependency {
	k := KeyOf[T]()
	return Dependency{Param: paramName(k), Key: k}
}

// paramName derives a parameter name from a type, e.g. "*mip.Problem"
// becomes "problem". Dependencies within one task have distinct types, so
// the derived names are unique.
func paramName(k TypeKey) string {
	n := k.String()
	if i := strings.LastIndexByte(n, '.'); i >= 0 {
		n = n[i+1:]
	}
	if n == "" {
		return "value"
	}
	r, size := utf8.DecodeRuneInString(n)
	return string(unicode.ToLower(r)) + n[size:]
}
