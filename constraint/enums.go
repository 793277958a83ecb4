// Package constraint defines user constraints over task executions, the
// controllers that shape their robustness values, and the per-iteration state
// machine that tracks successes, failures and deactivation across a stream of
// inputs.
package constraint

import "fmt"

// SuccessAction selects what happens to a constraint once it succeeds.
type SuccessAction int

const (
	// SuccessActionNone leaves the constraint active after a success.
	SuccessActionNone SuccessAction = iota
	// SuccessActionDeactivate deactivates the constraint's whole group.
	SuccessActionDeactivate
)

func (a SuccessAction) String() string {
	switch a {
	case SuccessActionNone:
		return "NONE"
	case SuccessActionDeactivate:
		return "DEACTIVATE"
	default:
		panic(fmt.Sprintf("unhandled SuccessAction value %d", int(a)))
	}
}

// FailureKind grades the severity of a negative robustness.
type FailureKind int

const (
	// FailureKindNone records no failure for negative robustness.
	FailureKindNone FailureKind = iota
	// FailureKindSoft records a soft failure, penalising the score.
	FailureKindSoft
	// FailureKindHard records a hard failure and deactivates the group.
	FailureKindHard
)

func (k FailureKind) String() string {
	switch k {
	case FailureKindNone:
		return "NONE"
	case FailureKindSoft:
		return "SOFT"
	case FailureKindHard:
		return "HARD"
	default:
		panic(fmt.Sprintf("unhandled FailureKind value %d", int(k)))
	}
}

// ObjectiveImpact selects how a robustness value feeds the score objective.
type ObjectiveImpact int

const (
	// ObjectiveImpactNone contributes nothing to the objective.
	ObjectiveImpactNone ObjectiveImpact = iota
	// ObjectiveImpactSigned adds the robustness as-is.
	ObjectiveImpactSigned
	// ObjectiveImpactUnsigned adds the absolute robustness.
	ObjectiveImpactUnsigned
)

func (o ObjectiveImpact) String() string {
	switch o {
	case ObjectiveImpactNone:
		return "NONE"
	case ObjectiveImpactSigned:
		return "SIGNED"
	case ObjectiveImpactUnsigned:
		return "UNSIGNED"
	default:
		panic(fmt.Sprintf("unhandled ObjectiveImpact value %d", int(o)))
	}
}
