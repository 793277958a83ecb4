package runner

import (
	"github.com/rs/zerolog"

	"github.com/ariadne-cps/pExplore/cache"
	"github.com/ariadne-cps/pExplore/constraint"
	"github.com/ariadne-cps/pExplore/exploration"
	"github.com/ariadne-cps/pExplore/score"
	"github.com/ariadne-cps/pExplore/space"
)

// Runner is the execution model of a task: inputs go in through Push, the
// output of the corresponding iteration comes back through Pull. Close
// releases any workers; it is idempotent.
type Runner[I, O any] interface {
	Push(input I) error
	Pull() (O, error)
	Close() error
}

// ScoreSink receives the scored generation of every completed iteration.
// The process-wide manager implements it.
type ScoreSink interface {
	AppendScores(generation score.Generation)
}

// Options configures runner construction. The zero value runs without
// constraints, logging or caching; DefaultOptions fills the documented
// defaults.
type Options[I, O any] struct {
	// Constraints seed the runner's constraining state.
	Constraints []constraint.Constraint[I, O]
	// InitialPoint seeds the search, or freezes a non-singleton
	// configuration for sequential running. Defaults to the space's
	// initial point.
	InitialPoint *space.Point
	// Exploration derives each next generation. Defaults to
	// ShiftAndKeepBestHalf. Parameter-search only.
	Exploration exploration.Strategy
	// Concurrency is the worker count K. Parameter-search only.
	Concurrency int
	// Sink receives each completed generation. Parameter-search only.
	Sink ScoreSink
	// Logger receives worker and coordinator events.
	Logger zerolog.Logger
	// Cache, together with InputKey, memoizes task outputs across
	// evaluations of the same (input, point) pair. Parameter-search only.
	Cache    *cache.OutputCache[O]
	InputKey func(I) string
}

// DefaultOptions returns options with a no-op logger and the default
// exploration strategy.
func DefaultOptions[I, O any]() *Options[I, O] {
	return &Options[I, O]{
		Exploration: exploration.ShiftAndKeepBestHalf{},
		Logger:      zerolog.Nop(),
	}
}

func (o *Options[I, O]) withDefaults() *Options[I, O] {
	if o == nil {
		return DefaultOptions[I, O]()
	}
	out := *o
	if out.Exploration == nil {
		out.Exploration = exploration.ShiftAndKeepBestHalf{}
	}
	return &out
}
