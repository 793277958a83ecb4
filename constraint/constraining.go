package constraint

import (
	"math"

	"github.com/ariadne-cps/pExplore/score"
	"github.com/ariadne-cps/pExplore/space"
)

// ConstrainingState is the ordered collection of constraint states for one
// iteration stream, together with the live count of active constraints.
// It is constructed once from a constraint list and mutated only through
// UpdateFrom; concurrent readers may call Evaluate, which never touches
// controller state.
type ConstrainingState[I, O any] struct {
	states    []*State[I, O]
	numActive int
}

// NewConstrainingState clones each constraint into a fresh state, all active.
func NewConstrainingState[I, O any](constraints []Constraint[I, O]) *ConstrainingState[I, O] {
	states := make([]*State[I, O], 0, len(constraints))
	for _, c := range constraints {
		states = append(states, newState(c))
	}
	return &ConstrainingState[I, O]{states: states, numActive: len(constraints)}
}

// NumActive returns the number of active constraints.
func (cs *ConstrainingState[I, O]) NumActive() int { return cs.numActive }

// IsInactive reports whether no constraint is active any more.
func (cs *ConstrainingState[I, O]) IsInactive() bool { return cs.numActive == 0 }

// States returns the constraint states in declaration order. The slice is a
// copy but the states are shared; callers must not retain them across an
// UpdateFrom.
func (cs *ConstrainingState[I, O]) States() []*State[I, O] {
	states := make([]*State[I, O], len(cs.states))
	copy(states, cs.states)
	return states
}

// Snapshots returns the diagnostic view of every constraint state.
func (cs *ConstrainingState[I, O]) Snapshots() []StateSnapshot {
	snapshots := make([]StateSnapshot, len(cs.states))
	for i, s := range cs.states {
		snapshots[i] = s.Snapshot()
	}
	return snapshots
}

// Constraints returns the wrapped constraints in declaration order,
// regardless of their life state.
func (cs *ConstrainingState[I, O]) Constraints() []Constraint[I, O] {
	constraints := make([]Constraint[I, O], len(cs.states))
	for i, s := range cs.states {
		constraints[i] = s.Constraint()
	}
	return constraints
}

// ActiveConstraints returns the constraints still active.
func (cs *ConstrainingState[I, O]) ActiveConstraints() []Constraint[I, O] {
	var result []Constraint[I, O]
	for _, s := range cs.states {
		if s.IsActive() {
			result = append(result, s.Constraint())
		}
	}
	return result
}

// Evaluate scores the given input/output pair against the active, unresolved
// constraints without advancing any controller state. It fails with
// *NoActiveConstraintsError when no constraint is active.
func (cs *ConstrainingState[I, O]) Evaluate(input I, output O) (score.Score, error) {
	return cs.evaluate(input, output, false)
}

// EvaluatePoint couples Evaluate with the point that produced the output.
func (cs *ConstrainingState[I, O]) EvaluatePoint(p space.Point, input I, output O) (score.PointScore, error) {
	s, err := cs.Evaluate(input, output)
	if err != nil {
		return score.PointScore{}, err
	}
	return score.NewPointScore(p, s), nil
}

func (cs *ConstrainingState[I, O]) evaluate(input I, output O, update bool) (score.Score, error) {
	if cs.numActive == 0 {
		return score.Score{}, &NoActiveConstraintsError{States: cs.Snapshots()}
	}
	objective := 0.0
	var successes, hardFailures, softFailures score.IndexSet
	for i, s := range cs.states {
		if !s.IsActive() || s.HasSucceeded() || s.HasFailed() {
			continue
		}
		c := s.Constraint()
		robustness := c.Robustness(input, output, update)
		switch c.ObjectiveImpact() {
		case ObjectiveImpactUnsigned:
			objective += math.Abs(robustness)
		case ObjectiveImpactSigned:
			objective += robustness
		case ObjectiveImpactNone:
		default:
			panic("unhandled ObjectiveImpact for score evaluation")
		}
		if robustness < 0 {
			switch c.FailureKind() {
			case FailureKindHard:
				hardFailures = hardFailures.With(i)
			case FailureKindSoft:
				softFailures = softFailures.With(i)
			case FailureKindNone:
			default:
				panic("unhandled FailureKind for score evaluation")
			}
		} else {
			successes = successes.With(i)
		}
	}
	return score.New(successes, hardFailures, softFailures, objective), nil
}

// UpdateFrom is the authoritative state transition, invoked once per
// iteration with the chosen best output. It re-evaluates with controller
// updates enabled, marks successes and failures, and deactivates every
// constraint whose group was flagged, in two passes so that a flagged group
// catches members visited before the flagging constraint.
func (cs *ConstrainingState[I, O]) UpdateFrom(input I, output O) error {
	eval, err := cs.evaluate(input, output, true)
	if err != nil {
		return err
	}

	groupsToDeactivate := make(map[int]bool)
	for i, s := range cs.states {
		if eval.Successes().Contains(i) {
			s.setSuccess()
			if s.Constraint().SuccessAction() == SuccessActionDeactivate {
				groupsToDeactivate[s.Constraint().GroupID()] = true
			}
		}
		if eval.HardFailures().Contains(i) {
			s.setFailure()
			groupsToDeactivate[s.Constraint().GroupID()] = true
		}
	}
	for _, s := range cs.states {
		if s.IsActive() && groupsToDeactivate[s.Constraint().GroupID()] {
			s.deactivate()
			cs.numActive--
		}
	}
	return nil
}
