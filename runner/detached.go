package runner

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ariadne-cps/pExplore/constraint"
	"github.com/ariadne-cps/pExplore/space"
)

type detachedResult[O any] struct {
	output O
	err    error
}

// Detached runs the task on a single background goroutine, allowing the
// caller to do other work between pushing an input and pulling its output.
// Queues have capacity one, so a second push blocks until the previous output
// has been pulled.
type Detached[I, O any, C space.Configuration[C]] struct {
	ts        *taskState[I, O, C]
	cfg       C
	input     chan I
	output    chan detachedResult[O]
	lastInput chan I
	stop      chan struct{}
	done      chan struct{}
	active    bool
	closeOnce sync.Once
	log       zerolog.Logger
}

// NewDetached creates a detached runner. The worker starts on the first Push.
func NewDetached[I, O any, C space.Configuration[C]](task Task[I, O, C], cfg C, opts *Options[I, O]) *Detached[I, O, C] {
	opts = opts.withDefaults()
	if !cfg.IsSingleton() {
		point := cfg.SearchSpace().InitialPoint()
		if opts.InitialPoint != nil {
			point = *opts.InitialPoint
		}
		cfg = cfg.Singleton(point)
	}
	return &Detached[I, O, C]{
		ts:        newTaskState(task, opts.Constraints),
		cfg:       cfg,
		input:     make(chan I, 1),
		output:    make(chan detachedResult[O], 1),
		lastInput: make(chan I, 1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		log:       opts.Logger,
	}
}

func (r *Detached[I, O, C]) loop() {
	defer close(r.done)
	for {
		select {
		case <-r.stop:
			return
		case input := <-r.input:
			output, err := r.ts.task.Run(input, r.cfg)
			select {
			case r.output <- detachedResult[O]{output: output, err: err}:
			case <-r.stop:
				return
			}
		}
	}
}

// Push enqueues an input for the background worker.
func (r *Detached[I, O, C]) Push(input I) error {
	if !r.active {
		r.active = true
		go r.loop()
	}
	r.input <- input
	r.lastInput <- input
	return nil
}

// Pull waits for the worker's output and updates the constraining state with
// the input that produced it.
func (r *Detached[I, O, C]) Pull() (O, error) {
	var zero O
	if !r.active {
		return zero, fmt.Errorf("no output available: push an input first")
	}
	res := <-r.output
	input := <-r.lastInput
	if res.err != nil {
		r.log.Debug().Err(res.err).Str("task", r.ts.task.Name()).Msg("task failed")
		return zero, fmt.Errorf("task %s: %w", r.ts.task.Name(), res.err)
	}
	if r.ts.state.NumActive() > 0 {
		if err := r.ts.update(input, res.output); err != nil {
			return res.output, err
		}
	}
	return res.output, nil
}

// Close stops the worker and waits for it to exit.
func (r *Detached[I, O, C]) Close() error {
	r.closeOnce.Do(func() { close(r.stop) })
	if r.active {
		<-r.done
	}
	return nil
}

// ConstrainingState exposes the runner's constraint bookkeeping.
func (r *Detached[I, O, C]) ConstrainingState() *constraint.ConstrainingState[I, O] {
	return r.ts.state
}
