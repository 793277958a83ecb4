package constraint

// Controller transforms the raw robustness returned by a constraint function
// into the effective robustness used for scoring. Implementations may carry
// state across calls, but when update is false Apply must be pure: it returns
// the value the stateful call would return without advancing any state.
// Controllers are cloned along with their constraint so that each evaluation
// stream owns its trajectory.
type Controller[I, O any] interface {
	Apply(robustness float64, input I, output O, update bool) float64
	Clone() Controller[I, O]
}

// IdentityController returns the robustness unchanged.
type IdentityController[I, O any] struct{}

// NewIdentityController creates the stateless identity controller.
func NewIdentityController[I, O any]() *IdentityController[I, O] {
	return &IdentityController[I, O]{}
}

func (c *IdentityController[I, O]) Apply(robustness float64, _ I, _ O, _ bool) float64 {
	return robustness
}

func (c *IdentityController[I, O]) Clone() Controller[I, O] {
	return &IdentityController[I, O]{}
}

// TimeFunc extracts the current time of an evaluation from its input and output.
type TimeFunc[I, O any] func(input I, output O) float64

// TimeProgressLinearController spreads the allowed error linearly with
// respect to the time progressed towards a final time. On each updating call
// with current time t it returns r - (t - tPrev)*A, then advances the
// accumulator A by result/(tFinal - t) and sets tPrev = t.
type TimeProgressLinearController[I, O any] struct {
	timeFunc     TimeFunc[I, O]
	finalTime    float64
	previousTime float64
	accumulated  float64
}

// NewTimeProgressLinearController creates the controller with zeroed state.
func NewTimeProgressLinearController[I, O any](timeFunc TimeFunc[I, O], finalTime float64) *TimeProgressLinearController[I, O] {
	if timeFunc == nil {
		panic("nil time function for TimeProgressLinearController")
	}
	return &TimeProgressLinearController[I, O]{timeFunc: timeFunc, finalTime: finalTime}
}

func (c *TimeProgressLinearController[I, O]) Apply(robustness float64, input I, output O, update bool) float64 {
	currentTime := c.timeFunc(input, output)
	result := robustness - (currentTime-c.previousTime)*c.accumulated
	if update {
		c.previousTime = currentTime
		c.accumulated += result / (c.finalTime - currentTime)
	}
	return result
}

// Clone returns a controller with the same time function and final time but
// fresh state, so the new evaluation stream starts its own trajectory.
func (c *TimeProgressLinearController[I, O]) Clone() Controller[I, O] {
	return NewTimeProgressLinearController(c.timeFunc, c.finalTime)
}
