package runner

import (
	"fmt"

	"github.com/ariadne-cps/pExplore/constraint"
	"github.com/ariadne-cps/pExplore/manager"
	"github.com/ariadne-cps/pExplore/space"
)

// Runnable binds a user task and its configuration to the runner the
// coordinator selects for them. A fresh runnable starts on a sequential
// runner; installing constraints re-selects the runner, switching to
// parameter search when the configuration spans a search space and more than
// one worker is available.
type Runnable[I, O any, C space.Configuration[C]] struct {
	task        Task[I, O, C]
	cfg         C
	mgr         *manager.Manager
	runner      Runner[I, O]
	constraints []constraint.Constraint[I, O]
}

// NewRunnable creates a runnable backed by the process-wide manager.
func NewRunnable[I, O any, C space.Configuration[C]](task Task[I, O, C], cfg C) *Runnable[I, O, C] {
	return NewRunnableWith(task, cfg, manager.Instance())
}

// NewRunnableWith creates a runnable backed by the given manager, providing
// an isolated seam for tests.
func NewRunnableWith[I, O any, C space.Configuration[C]](task Task[I, O, C], cfg C, mgr *manager.Manager) *Runnable[I, O, C] {
	r := &Runnable[I, O, C]{task: task, cfg: cfg, mgr: mgr}
	opts := DefaultOptions[I, O]()
	opts.Logger = mgr.Logger()
	r.runner = NewSequential(task, cfg, opts)
	return r
}

// Runner returns the currently installed runner.
func (r *Runnable[I, O, C]) Runner() Runner[I, O] {
	return r.runner
}

// Constraints returns the constraints installed on the current runner.
func (r *Runnable[I, O, C]) Constraints() []constraint.Constraint[I, O] {
	return r.constraints
}

// SetConstraints installs the constraint list and re-selects the runner,
// seeded at the search space's initial point. The list must not be empty.
func (r *Runnable[I, O, C]) SetConstraints(constraints []constraint.Constraint[I, O]) error {
	if len(constraints) == 0 {
		return fmt.Errorf("at least one constraint is required")
	}
	return r.chooseRunner(constraints, r.cfg.SearchSpace().InitialPoint())
}

// SetInitialPoint re-selects the runner seeded at the given point, keeping
// the current constraints. Constraints must have been set before.
func (r *Runnable[I, O, C]) SetInitialPoint(point space.Point) error {
	if len(r.constraints) == 0 {
		return fmt.Errorf("set constraints before the initial point")
	}
	return r.chooseRunner(r.constraints, point)
}

// chooseRunner mirrors the coordinator's selection rule: parameter search
// when constraints are present, the configuration is non-singleton and more
// than one worker is available; sequential otherwise, frozen at the point.
func (r *Runnable[I, O, C]) chooseRunner(constraints []constraint.Constraint[I, O], initial space.Point) error {
	if err := r.runner.Close(); err != nil {
		return fmt.Errorf("closing the previous runner: %w", err)
	}

	opts := DefaultOptions[I, O]()
	opts.Constraints = constraints
	opts.InitialPoint = &initial
	opts.Logger = r.mgr.Logger()

	concurrency := r.mgr.Concurrency()
	switch {
	case concurrency > 1 && !r.cfg.IsSingleton():
		opts.Concurrency = concurrency
		opts.Exploration = r.mgr.Exploration()
		opts.Sink = r.mgr
		search, err := NewParameterSearch(r.task, r.cfg, opts)
		if err != nil {
			return err
		}
		r.runner = search
	case !r.cfg.IsSingleton():
		logger := r.mgr.Logger()
		logger.Info().Stringer("initial_point", initial).
			Msg("the configuration is not singleton: using the initial point for sequential running")
		r.runner = NewSequential(r.task, r.cfg, opts)
	default:
		r.runner = NewSequential(r.task, r.cfg, opts)
	}
	r.constraints = constraints
	return nil
}

// Push delegates to the current runner.
func (r *Runnable[I, O, C]) Push(input I) error {
	return r.runner.Push(input)
}

// Pull delegates to the current runner.
func (r *Runnable[I, O, C]) Pull() (O, error) {
	return r.runner.Pull()
}

// Close releases the current runner.
func (r *Runnable[I, O, C]) Close() error {
	return r.runner.Close()
}
