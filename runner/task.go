// Package runner executes tasks against their configuration space. It
// provides the sequential, detached and parameter-search execution models
// behind a common push/pull interface, and the runnable façade that binds a
// user task to the runner the coordinator selects for it.
package runner

import (
	"fmt"

	"github.com/ariadne-cps/pExplore/constraint"
)

// Task is the user-authored computation: a deterministic function from an
// input and a fully-instantiated configuration to an output. Run may fail by
// returning an error; the name is used to label workers in logs.
type Task[I, O any, C any] interface {
	Name() string
	Run(input I, cfg C) (O, error)
}

// taskState couples a task with the constraint bookkeeping the engine keeps
// for it. The runner owns it exclusively.
type taskState[I, O any, C any] struct {
	task  Task[I, O, C]
	state *constraint.ConstrainingState[I, O]
}

func newTaskState[I, O any, C any](task Task[I, O, C], constraints []constraint.Constraint[I, O]) *taskState[I, O, C] {
	return &taskState[I, O, C]{
		task:  task,
		state: constraint.NewConstrainingState(constraints),
	}
}

// update advances the constraining state with the chosen output and reports
// a terminal *constraint.NoActiveConstraintsError once no constraint is
// active any more.
func (t *taskState[I, O, C]) update(input I, output O) error {
	if err := t.state.UpdateFrom(input, output); err != nil {
		return err
	}
	if t.state.IsInactive() {
		return &constraint.NoActiveConstraintsError{States: t.state.Snapshots()}
	}
	return nil
}

// AllFailedError reports that every worker of an iteration failed, leaving
// no output to score.
type AllFailedError struct {
	Failures int
}

func (e *AllFailedError) Error() string {
	return fmt.Sprintf("all %d task executions of the iteration failed", e.Failures)
}
