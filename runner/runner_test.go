package runner

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"testing"

	"github.com/ariadne-cps/pExplore/cache"
	"github.com/ariadne-cps/pExplore/constraint"
	"github.com/ariadne-cps/pExplore/manager"
	"github.com/ariadne-cps/pExplore/space"
)

// searchConfig is a one-parameter configuration whose order collapses to the
// value a bound point assigns to it.
type searchConfig struct {
	space *space.Space
	point *space.Point
}

func (c searchConfig) SearchSpace() *space.Space { return c.space }

func (c searchConfig) IsSingleton() bool { return c.point != nil }

func (c searchConfig) Singleton(p space.Point) searchConfig {
	return searchConfig{space: c.space, point: &p}
}

func (c searchConfig) order() int {
	v, err := c.point.Value("order")
	if err != nil {
		panic(err)
	}
	return v
}

func orderSpace(t *testing.T, seed int64) *space.Space {
	t.Helper()
	s, err := space.New(space.Parameter{Name: "order", Lower: 1, Upper: 5})
	if err != nil {
		t.Fatalf("space.New failed: %v", err)
	}
	s.Reseed(seed)
	return s
}

// additionTask adds the configured order to the input.
type additionTask struct{}

func (additionTask) Name() string { return "addition" }

func (additionTask) Run(x float64, cfg searchConfig) (float64, error) {
	return x + float64(cfg.order()), nil
}

// failingTask always fails.
type failingTask struct{}

func (failingTask) Name() string { return "failing" }

func (failingTask) Run(float64, searchConfig) (float64, error) {
	return 0, fmt.Errorf("deliberate failure")
}

func testManager(concurrency int) *manager.Manager {
	m := manager.New()
	m.SetConcurrency(concurrency)
	return m
}

func distanceConstraint() constraint.Constraint[float64, float64] {
	return constraint.NewBuilder(func(_ float64, out float64) float64 { return out - 5.0 }).
		WithName("target").
		WithFailureKind(constraint.FailureKindSoft).
		WithObjectiveImpact(constraint.ObjectiveImpactUnsigned).
		Build()
}

func TestSequentialRunnerFreezesConfiguration(t *testing.T) {
	cfg := searchConfig{space: orderSpace(t, 1)}
	r := NewSequential[float64, float64](additionTask{}, cfg, nil)

	// The initial point of order 1..5 is 3.
	if err := r.Push(1.0); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	out, err := r.Pull()
	if err != nil {
		t.Fatalf("Pull failed: %v", err)
	}
	if out != 4.0 {
		t.Errorf("Expected 1+3=4, got %v", out)
	}
}

func TestSequentialPullBeforePush(t *testing.T) {
	cfg := searchConfig{space: orderSpace(t, 1)}
	r := NewSequential[float64, float64](additionTask{}, cfg, nil)
	if _, err := r.Pull(); err == nil {
		t.Error("Expected error pulling before any push")
	}
}

func TestSequentialUpdatesConstrainingState(t *testing.T) {
	cfg := searchConfig{space: orderSpace(t, 1)}
	opts := DefaultOptions[float64, float64]()
	opts.Constraints = []constraint.Constraint[float64, float64]{
		constraint.NewBuilder(func(_ float64, out float64) float64 { return out }).
			WithGroupID(1).
			WithSuccessAction(constraint.SuccessActionDeactivate).
			Build(),
	}
	r := NewSequential(additionTask{}, cfg, opts)

	// The single constraint succeeds and deactivates, terminating the stream.
	err := r.Push(1.0)
	var nace *constraint.NoActiveConstraintsError
	if !errors.As(err, &nace) {
		t.Fatalf("Expected NoActiveConstraintsError, got %v", err)
	}
	if out, err := r.Pull(); err != nil || out != 4.0 {
		t.Errorf("Expected the last output to stay pullable, got %v, %v", out, err)
	}
}

func TestDetachedRunner(t *testing.T) {
	cfg := searchConfig{space: orderSpace(t, 1)}
	r := NewDetached[float64, float64](additionTask{}, cfg, nil)
	defer r.Close()

	if err := r.Push(2.0); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	out, err := r.Pull()
	if err != nil {
		t.Fatalf("Pull failed: %v", err)
	}
	if out != 5.0 {
		t.Errorf("Expected 2+3=5, got %v", out)
	}
}

func TestParameterSearchSingleConstraintSoftSuccess(t *testing.T) {
	m := testManager(4)
	cfg := searchConfig{space: orderSpace(t, 11)}
	r := NewRunnableWith[float64, float64](additionTask{}, cfg, m)
	defer r.Close()

	err := r.SetConstraints([]constraint.Constraint[float64, float64]{distanceConstraint()})
	if err != nil {
		t.Fatalf("SetConstraints failed: %v", err)
	}
	if _, ok := r.Runner().(*ParameterSearch[float64, float64, searchConfig]); !ok {
		t.Fatalf("Expected a parameter-search runner, got %T", r.Runner())
	}

	if err := r.Push(1.0); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	out, err := r.Pull()
	if err != nil {
		t.Fatalf("Pull failed: %v", err)
	}
	// Four distinct orders around 3 always include order 4, whose output 5
	// hits the target exactly; no other output comes closer.
	if out != 5.0 {
		t.Errorf("Expected best output 5, got %v", out)
	}

	generations := m.Scores()
	if len(generations) != 1 {
		t.Fatalf("Expected 1 generation, got %d", len(generations))
	}
	if generations[0].Len() != 4 {
		t.Errorf("Expected generation of size 4, got %d", generations[0].Len())
	}
	best := generations[0].Best()
	if len(best.Score().Successes()) == 0 {
		t.Error("Expected the best score to have successes")
	}
	if len(best.Score().HardFailures()) != 0 || len(best.Score().SoftFailures()) != 0 {
		t.Error("Expected the best score to have no failures")
	}
}

func TestParameterSearchIterations(t *testing.T) {
	m := testManager(4)
	cfg := searchConfig{space: orderSpace(t, 23)}
	r := NewRunnableWith[float64, float64](additionTask{}, cfg, m)
	defer r.Close()

	// A constraint that never resolves keeps steering every iteration
	// towards the target output 5.
	steering := constraint.NewBuilder(func(_ float64, out float64) float64 {
		return -math.Abs(out-5.0) - 0.1
	}).
		WithName("steering").
		WithFailureKind(constraint.FailureKindSoft).
		WithObjectiveImpact(constraint.ObjectiveImpactUnsigned).
		Build()
	if err := r.SetConstraints([]constraint.Constraint[float64, float64]{steering}); err != nil {
		t.Fatalf("SetConstraints failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := r.Push(1.0); err != nil {
			t.Fatalf("Push %d failed: %v", i, err)
		}
		out, err := r.Pull()
		if err != nil {
			t.Fatalf("Pull %d failed: %v", i, err)
		}
		if out != 5.0 {
			t.Errorf("Iteration %d: expected the best output 5, got %v", i, out)
		}
	}
	if len(m.Scores()) != 5 {
		t.Errorf("Expected 5 generations, got %d", len(m.Scores()))
	}

	optimal := m.OptimalPoint()
	if len(optimal) != 1 {
		t.Fatalf("Expected a one-dimensional optimal point, got %v", optimal)
	}
	if optimal[0] != 4 {
		t.Errorf("Expected the optimum at order 4, got %d", optimal[0])
	}
}

func TestParameterSearchHardFailureTerminatesStream(t *testing.T) {
	m := testManager(4)
	cfg := searchConfig{space: orderSpace(t, 3)}
	r := NewRunnableWith[float64, float64](additionTask{}, cfg, m)
	defer r.Close()

	constraints := []constraint.Constraint[float64, float64]{
		constraint.NewBuilder(func(_ float64, _ float64) float64 { return -1.0 }).
			WithName("impossible").WithGroupID(7).
			WithFailureKind(constraint.FailureKindHard).
			Build(),
		constraint.NewBuilder(func(_ float64, _ float64) float64 { return 1.0 }).
			WithName("permissive").WithGroupID(7).
			Build(),
	}
	if err := r.SetConstraints(constraints); err != nil {
		t.Fatalf("SetConstraints failed: %v", err)
	}

	if err := r.Push(1.0); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	_, err := r.Pull()
	var nace *constraint.NoActiveConstraintsError
	if !errors.As(err, &nace) {
		t.Fatalf("Expected NoActiveConstraintsError, got %v", err)
	}
	if len(nace.States) != 2 {
		t.Errorf("Expected 2 diagnostic snapshots, got %d", len(nace.States))
	}
	for _, s := range nace.States {
		if s.Active {
			t.Errorf("Expected %q to be deactivated", s.Name)
		}
	}
	// The terminated iteration publishes no generation.
	if len(m.Scores()) != 0 {
		t.Errorf("Expected no generations, got %d", len(m.Scores()))
	}
}

func TestParameterSearchAllWorkersFailed(t *testing.T) {
	m := testManager(4)
	cfg := searchConfig{space: orderSpace(t, 5)}
	r := NewRunnableWith[float64, float64](failingTask{}, cfg, m)
	defer r.Close()

	if err := r.SetConstraints([]constraint.Constraint[float64, float64]{distanceConstraint()}); err != nil {
		t.Fatalf("SetConstraints failed: %v", err)
	}
	if err := r.Push(1.0); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	_, err := r.Pull()
	var afe *AllFailedError
	if !errors.As(err, &afe) {
		t.Fatalf("Expected AllFailedError, got %v", err)
	}
	if afe.Failures != 4 {
		t.Errorf("Expected 4 failures, got %d", afe.Failures)
	}
}

func TestRunnerSelection(t *testing.T) {
	// With concurrency one the parameter-search runner must not be chosen.
	m := testManager(1)
	cfg := searchConfig{space: orderSpace(t, 1)}
	r := NewRunnableWith[float64, float64](additionTask{}, cfg, m)
	defer r.Close()

	if err := r.SetConstraints([]constraint.Constraint[float64, float64]{distanceConstraint()}); err != nil {
		t.Fatalf("SetConstraints failed: %v", err)
	}
	if _, ok := r.Runner().(*Sequential[float64, float64, searchConfig]); !ok {
		t.Errorf("Expected a sequential runner with concurrency 1, got %T", r.Runner())
	}

	// A singleton configuration is sequential regardless of concurrency.
	m2 := testManager(8)
	s := orderSpace(t, 1)
	point, _ := s.Point([]int{2})
	singleton := searchConfig{space: s}.Singleton(point)
	r2 := NewRunnableWith[float64, float64](additionTask{}, singleton, m2)
	defer r2.Close()
	if err := r2.SetConstraints([]constraint.Constraint[float64, float64]{distanceConstraint()}); err != nil {
		t.Fatalf("SetConstraints failed: %v", err)
	}
	if _, ok := r2.Runner().(*Sequential[float64, float64, searchConfig]); !ok {
		t.Errorf("Expected a sequential runner for a singleton configuration, got %T", r2.Runner())
	}
}

func TestSetConstraintsRequiresNonEmptyList(t *testing.T) {
	m := testManager(4)
	cfg := searchConfig{space: orderSpace(t, 1)}
	r := NewRunnableWith[float64, float64](additionTask{}, cfg, m)
	defer r.Close()

	if err := r.SetConstraints(nil); err == nil {
		t.Error("Expected error for an empty constraint list")
	}
	if err := r.SetInitialPoint(cfg.SearchSpace().InitialPoint()); err == nil {
		t.Error("Expected error setting the initial point before constraints")
	}
}

func TestConcurrencyCappedBySpaceSize(t *testing.T) {
	m := testManager(16)
	cfg := searchConfig{space: orderSpace(t, 1)}
	r := NewRunnableWith[float64, float64](additionTask{}, cfg, m)
	defer r.Close()

	if err := r.SetConstraints([]constraint.Constraint[float64, float64]{distanceConstraint()}); err != nil {
		t.Fatalf("SetConstraints failed: %v", err)
	}
	search, ok := r.Runner().(*ParameterSearch[float64, float64, searchConfig])
	if !ok {
		t.Fatalf("Expected a parameter-search runner, got %T", r.Runner())
	}
	if search.Concurrency() != 5 {
		t.Errorf("Expected concurrency capped at 5 points, got %d", search.Concurrency())
	}
}

func TestParameterSearchWithCache(t *testing.T) {
	m := testManager(4)
	cfg := searchConfig{space: orderSpace(t, 17)}

	opts := DefaultOptions[float64, float64]()
	opts.Constraints = []constraint.Constraint[float64, float64]{distanceConstraint()}
	opts.Concurrency = 4
	opts.Sink = m
	opts.Cache = cache.New[float64](0)
	opts.InputKey = func(x float64) string { return strconv.FormatFloat(x, 'g', -1, 64) }

	r, err := NewParameterSearch[float64, float64](additionTask{}, cfg, opts)
	if err != nil {
		t.Fatalf("NewParameterSearch failed: %v", err)
	}
	defer r.Close()

	for i := 0; i < 4; i++ {
		if err := r.Push(1.0); err != nil {
			t.Fatalf("Push failed: %v", err)
		}
		if _, err := r.Pull(); err != nil {
			t.Fatalf("Pull failed: %v", err)
		}
	}
	stats := opts.Cache.Stats()
	if stats.Size == 0 {
		t.Error("Expected cached outputs after several iterations")
	}
	// A five-point space evaluated four points per iteration: revisits are
	// inevitable, so hits must show up.
	if stats.Hits == 0 {
		t.Error("Expected cache hits on revisited points")
	}
}

func TestNewParameterSearchValidation(t *testing.T) {
	cfg := searchConfig{space: orderSpace(t, 1)}

	opts := DefaultOptions[float64, float64]()
	opts.Concurrency = 4
	if _, err := NewParameterSearch[float64, float64](additionTask{}, cfg, opts); err == nil {
		t.Error("Expected error without constraints")
	}

	opts.Constraints = []constraint.Constraint[float64, float64]{distanceConstraint()}
	point, _ := cfg.SearchSpace().Point([]int{2})
	if _, err := NewParameterSearch[float64, float64](additionTask{}, cfg.Singleton(point), opts); err == nil {
		t.Error("Expected error for a singleton configuration")
	}

	opts.Concurrency = 0
	if _, err := NewParameterSearch[float64, float64](additionTask{}, cfg, opts); err == nil {
		t.Error("Expected error for non-positive concurrency")
	}
}
