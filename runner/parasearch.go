package runner

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ariadne-cps/pExplore/cache"
	"github.com/ariadne-cps/pExplore/constraint"
	"github.com/ariadne-cps/pExplore/exploration"
	"github.com/ariadne-cps/pExplore/score"
	"github.com/ariadne-cps/pExplore/space"
)

type searchPackage[I any] struct {
	input I
	point space.Point
}

type searchResult[O any] struct {
	output     O
	pointScore score.PointScore
	failed     bool
}

// ParameterSearch fans every pushed input out to K concurrent evaluations of
// distinct search points, scores the outputs against the constraining state,
// and returns the best one while the exploration strategy prepares the next
// generation of points.
//
// The constraining state is written only by Pull, on the coordinator
// goroutine; workers call its pure Evaluate, which never advances controller
// state. No worker holds an outstanding package while Pull runs, so the
// protocol serialises access without a lock.
type ParameterSearch[I, O any, C space.Configuration[C]] struct {
	ts          *taskState[I, O, C]
	cfg         C
	concurrency int
	initial     space.Point
	exploration exploration.Strategy
	sink        ScoreSink
	outCache    *cache.OutputCache[O]
	inputKey    func(I) string

	pending   []space.Point
	lastInput I
	failures  atomic.Uint32
	input     chan searchPackage[I]
	output    chan searchResult[O]
	stop      chan struct{}
	group     *errgroup.Group
	active    bool
	closeOnce sync.Once
	log       zerolog.Logger
}

// NewParameterSearch creates a parameter-search runner with K workers, where
// K is the option's concurrency capped by the size of the search space.
// The configuration must not be singleton and at least one constraint is
// required.
func NewParameterSearch[I, O any, C space.Configuration[C]](task Task[I, O, C], cfg C, opts *Options[I, O]) (*ParameterSearch[I, O, C], error) {
	opts = opts.withDefaults()
	if cfg.IsSingleton() {
		return nil, fmt.Errorf("parameter search needs a non-singleton configuration")
	}
	if len(opts.Constraints) == 0 {
		return nil, fmt.Errorf("parameter search needs at least one constraint")
	}
	concurrency := opts.Concurrency
	if concurrency < 1 {
		return nil, fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	if total := cfg.SearchSpace().TotalPoints(); concurrency > total {
		concurrency = total
	}
	initial := cfg.SearchSpace().InitialPoint()
	if opts.InitialPoint != nil {
		initial = *opts.InitialPoint
	}
	return &ParameterSearch[I, O, C]{
		ts:          newTaskState(task, opts.Constraints),
		cfg:         cfg,
		concurrency: concurrency,
		initial:     initial,
		exploration: opts.Exploration,
		sink:        opts.Sink,
		outCache:    opts.Cache,
		inputKey:    opts.InputKey,
		input:       make(chan searchPackage[I], concurrency),
		output:      make(chan searchResult[O], concurrency),
		stop:        make(chan struct{}),
		log:         opts.Logger,
	}, nil
}

// Concurrency returns the effective worker count K.
func (r *ParameterSearch[I, O, C]) Concurrency() int {
	return r.concurrency
}

// ConstrainingState exposes the runner's constraint bookkeeping. It must not
// be mutated by callers; Pull owns its transitions.
func (r *ParameterSearch[I, O, C]) ConstrainingState() *constraint.ConstrainingState[I, O] {
	return r.ts.state
}

func (r *ParameterSearch[I, O, C]) start() {
	r.group = &errgroup.Group{}
	for i := 0; i < r.concurrency; i++ {
		name := fmt.Sprintf("%s%02d", r.ts.task.Name(), i)
		r.group.Go(func() error {
			for {
				select {
				case <-r.stop:
					return nil
				case pkg := <-r.input:
					r.process(name, pkg)
				}
			}
		})
	}
}

// process evaluates one (input, point) package and always emits exactly one
// result, successful or failed.
func (r *ParameterSearch[I, O, C]) process(name string, pkg searchPackage[I]) {
	res := r.evaluate(name, pkg)
	if res.failed {
		r.failures.Add(1)
	}
	select {
	case r.output <- res:
	case <-r.stop:
	}
}

func (r *ParameterSearch[I, O, C]) evaluate(name string, pkg searchPackage[I]) (res searchResult[O]) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Debug().Str("worker", name).Interface("panic", p).Msg("task panicked")
			res = searchResult[O]{failed: true}
		}
	}()

	output, ok, err := r.runTask(pkg)
	if err != nil {
		r.log.Debug().Err(err).Str("worker", name).Str("point", pkg.point.Key()).Msg("task failed")
		return searchResult[O]{failed: true}
	}
	if !ok {
		r.log.Debug().Str("worker", name).Str("point", pkg.point.Key()).Msg("served from cache")
	}
	pointScore, err := r.ts.state.EvaluatePoint(pkg.point, pkg.input, output)
	if err != nil {
		r.log.Debug().Err(err).Str("worker", name).Msg("scoring failed")
		return searchResult[O]{failed: true}
	}
	return searchResult[O]{output: output, pointScore: pointScore}
}

// runTask executes the task body, or serves the output from the cache when
// one is configured. The ok result is false on a cache hit.
func (r *ParameterSearch[I, O, C]) runTask(pkg searchPackage[I]) (O, bool, error) {
	if r.outCache != nil && r.inputKey != nil {
		key := cache.Key(r.inputKey(pkg.input), pkg.point.Key())
		if cached, hit := r.outCache.Get(key); hit {
			return cached, false, nil
		}
		output, err := r.ts.task.Run(pkg.input, r.cfg.Singleton(pkg.point))
		if err == nil {
			r.outCache.Put(key, output)
		}
		return output, true, err
	}
	output, err := r.ts.task.Run(pkg.input, r.cfg.Singleton(pkg.point))
	return output, true, err
}

// Push fans the input out to the K pending search points. The first push
// seeds the generation by randomly shifting the initial point and starts the
// workers.
func (r *ParameterSearch[I, O, C]) Push(input I) error {
	if !r.active {
		shifted, err := r.initial.RandomShifted(r.concurrency)
		if err != nil {
			return fmt.Errorf("seeding the search: %w", err)
		}
		r.pending = append(r.pending, shifted...)
		r.active = true
		r.start()
	}
	if len(r.pending) < r.concurrency {
		return fmt.Errorf("push requires a completed pull: %d of %d points pending", len(r.pending), r.concurrency)
	}
	for i := 0; i < r.concurrency; i++ {
		point := r.pending[0]
		r.pending = r.pending[1:]
		select {
		case r.input <- searchPackage[I]{input: input, point: point}:
		case <-r.stop:
			return fmt.Errorf("runner is closed")
		}
	}
	r.lastInput = input
	return nil
}

// Pull gathers the iteration's results, publishes the scored generation,
// advances the constraining state on the best output and returns it.
func (r *ParameterSearch[I, O, C]) Pull() (O, error) {
	var zero O
	if !r.active {
		return zero, fmt.Errorf("no output available: push an input first")
	}

	outputs := make(map[string]O, r.concurrency)
	pointScores := make([]score.PointScore, 0, r.concurrency)
	failed := 0
	for received := 0; received < r.concurrency; received++ {
		select {
		case res := <-r.output:
			if res.failed {
				failed++
				continue
			}
			outputs[res.pointScore.Point().Key()] = res.output
			pointScores = append(pointScores, res.pointScore)
		case <-r.stop:
			return zero, fmt.Errorf("runner is closed")
		}
	}
	counted := int(r.failures.Swap(0))
	r.log.Debug().Int("completed", len(pointScores)).Int("failed", counted).Msg("received completed tasks")
	if counted != failed {
		return zero, fmt.Errorf("failure accounting mismatch: %d counted, %d observed", counted, failed)
	}

	if len(pointScores) == 0 {
		return zero, &AllFailedError{Failures: failed}
	}
	generation := score.NewGeneration(pointScores...)
	if generation.Len() != r.concurrency-failed || len(outputs) != generation.Len() {
		return zero, fmt.Errorf("expected %d distinct point scores, got %d", r.concurrency-failed, generation.Len())
	}

	next, err := r.exploration.NextPoints(generation)
	if err != nil {
		return zero, fmt.Errorf("exploration: %w", err)
	}
	if len(next) < r.concurrency {
		// Failed workers shrink the generation; pad back to K so the next
		// push has a full complement of points.
		next, err = space.ExtendByShifting(next, r.concurrency)
		if err != nil {
			return zero, fmt.Errorf("replenishing points: %w", err)
		}
	}
	r.pending = append(r.pending, next...)
	if len(r.pending) != r.concurrency {
		return zero, fmt.Errorf("expected %d pending points, got %d", r.concurrency, len(r.pending))
	}

	best := generation.Best()
	bestOutput := outputs[best.Point().Key()]
	if err := r.ts.update(r.lastInput, bestOutput); err != nil {
		return bestOutput, err
	}
	if r.sink != nil {
		r.sink.AppendScores(generation)
	}
	return bestOutput, nil
}

// Close stops the workers and waits for them to exit.
func (r *ParameterSearch[I, O, C]) Close() error {
	r.closeOnce.Do(func() { close(r.stop) })
	if r.group != nil {
		return r.group.Wait()
	}
	return nil
}
