package runner

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ariadne-cps/pExplore/constraint"
	"github.com/ariadne-cps/pExplore/space"
)

// Sequential runs the task on the caller goroutine against a singleton
// configuration. A non-singleton configuration is frozen at the option's
// initial point, or at the space's initial point by default.
type Sequential[I, O any, C space.Configuration[C]] struct {
	ts         *taskState[I, O, C]
	cfg        C
	lastOutput *O
	log        zerolog.Logger
}

// NewSequential creates a sequential runner for the task.
func NewSequential[I, O any, C space.Configuration[C]](task Task[I, O, C], cfg C, opts *Options[I, O]) *Sequential[I, O, C] {
	opts = opts.withDefaults()
	if !cfg.IsSingleton() {
		point := cfg.SearchSpace().InitialPoint()
		if opts.InitialPoint != nil {
			point = *opts.InitialPoint
		}
		cfg = cfg.Singleton(point)
	}
	return &Sequential[I, O, C]{
		ts:  newTaskState(task, opts.Constraints),
		cfg: cfg,
		log: opts.Logger,
	}
}

// Push runs the task on the input and updates the constraining state when
// constraints are present. A terminal update surfaces here as
// *constraint.NoActiveConstraintsError.
func (r *Sequential[I, O, C]) Push(input I) error {
	output, err := r.ts.task.Run(input, r.cfg)
	if err != nil {
		r.log.Debug().Err(err).Str("task", r.ts.task.Name()).Msg("task failed")
		return fmt.Errorf("task %s: %w", r.ts.task.Name(), err)
	}
	if r.ts.state.NumActive() > 0 {
		if err := r.ts.update(input, output); err != nil {
			r.lastOutput = &output
			return err
		}
	}
	r.lastOutput = &output
	return nil
}

// Pull returns the output of the last pushed input.
func (r *Sequential[I, O, C]) Pull() (O, error) {
	if r.lastOutput == nil {
		var zero O
		return zero, fmt.Errorf("no output available: push an input first")
	}
	return *r.lastOutput, nil
}

// Close is a no-op for the sequential runner.
func (r *Sequential[I, O, C]) Close() error {
	return nil
}

// ConstrainingState exposes the runner's constraint bookkeeping.
func (r *Sequential[I, O, C]) ConstrainingState() *constraint.ConstrainingState[I, O] {
	return r.ts.state
}

// Configuration returns the singleton configuration the runner executes.
func (r *Sequential[I, O, C]) Configuration() C {
	return r.cfg
}
