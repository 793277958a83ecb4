package constraint

import "fmt"

// RobustnessFunc measures the degree of satisfaction of a constraint on an
// input/output pair. Positive means satisfied.
type RobustnessFunc[I, O any] func(input I, output O) float64

// Constraint is an immutable predicate over task executions, expressed as
// f(input, output) > 0, together with the policy for scoring and for reacting
// to its success or failure. Build one with NewBuilder.
type Constraint[I, O any] struct {
	name            string
	groupID         int
	successAction   SuccessAction
	failureKind     FailureKind
	objectiveImpact ObjectiveImpact
	fn              RobustnessFunc[I, O]
	controller      Controller[I, O]
}

// Name returns the constraint name.
func (c Constraint[I, O]) Name() string { return c.name }

// GroupID returns the deactivation group the constraint belongs to.
func (c Constraint[I, O]) GroupID() int { return c.groupID }

// SuccessAction returns the action taken when the constraint succeeds.
func (c Constraint[I, O]) SuccessAction() SuccessAction { return c.successAction }

// FailureKind returns the severity of a negative robustness.
func (c Constraint[I, O]) FailureKind() FailureKind { return c.failureKind }

// ObjectiveImpact returns how the robustness feeds the objective.
func (c Constraint[I, O]) ObjectiveImpact() ObjectiveImpact { return c.objectiveImpact }

// Robustness computes the effective robustness for the given pair, passing
// the raw function value through the controller. With update false the
// controller state is left untouched.
func (c Constraint[I, O]) Robustness(input I, output O, update bool) float64 {
	return c.controller.Apply(c.fn(input, output), input, output, update)
}

// Clone duplicates the constraint, giving the copy an independent controller
// that starts its own trajectory from fresh state.
func (c Constraint[I, O]) Clone() Constraint[I, O] {
	clone := c
	clone.controller = c.controller.Clone()
	return clone
}

func (c Constraint[I, O]) String() string {
	return fmt.Sprintf("{%q group %d, on_success %v, failure %v, impact %v}",
		c.name, c.groupID, c.successAction, c.failureKind, c.objectiveImpact)
}

// Builder assembles a Constraint. Every option defaults to its zero policy:
// empty name, group 0, no success action, no failure kind, no objective
// impact, identity controller.
type Builder[I, O any] struct {
	constraint Constraint[I, O]
}

// NewBuilder starts a builder around the required robustness function.
// A nil function is a programmer error.
func NewBuilder[I, O any](fn RobustnessFunc[I, O]) *Builder[I, O] {
	if fn == nil {
		panic("nil robustness function for Constraint")
	}
	return &Builder[I, O]{constraint: Constraint[I, O]{
		fn:         fn,
		controller: NewIdentityController[I, O](),
	}}
}

// WithName sets the constraint name.
func (b *Builder[I, O]) WithName(name string) *Builder[I, O] {
	b.constraint.name = name
	return b
}

// WithGroupID sets the deactivation group.
func (b *Builder[I, O]) WithGroupID(id int) *Builder[I, O] {
	b.constraint.groupID = id
	return b
}

// WithSuccessAction sets the success action.
func (b *Builder[I, O]) WithSuccessAction(action SuccessAction) *Builder[I, O] {
	b.constraint.successAction = action
	return b
}

// WithFailureKind sets the failure severity.
func (b *Builder[I, O]) WithFailureKind(kind FailureKind) *Builder[I, O] {
	b.constraint.failureKind = kind
	return b
}

// WithObjectiveImpact sets the objective contribution policy.
func (b *Builder[I, O]) WithObjectiveImpact(impact ObjectiveImpact) *Builder[I, O] {
	b.constraint.objectiveImpact = impact
	return b
}

// WithController sets the robustness controller.
func (b *Builder[I, O]) WithController(controller Controller[I, O]) *Builder[I, O] {
	b.constraint.controller = controller
	return b
}

// Build returns the immutable constraint.
func (b *Builder[I, O]) Build() Constraint[I, O] {
	return b.constraint
}
