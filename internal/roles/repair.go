// Package roles resolves role distributions whose probability mass is zero.
package roles

import (
	"fmt"
	"math"

	"github.com/suykerbuyk/padroles/internal/record"
)

const (
	// SumTolerance is how far a distribution's total may stray from 1.
	SumTolerance = 0.1
	// ShortConversation is the largest message count treated as too short to
	// ground a role.
	ShortConversation = 3

	BreakdownType       = "non-grounding"
	BreakdownConfidence = 0.9
)

// InBand reports whether sum is within SumTolerance of 1.
func InBand(sum float64) bool {
	return math.Abs(sum-1) <= SumTolerance+1e-9
}

// Action is the decision taken for one distribution.
type Action int

const (
	Balanced      Action = iota // sum within tolerance, untouched
	Uniform                     // zero-sum in a short or abstained conversation, spread evenly
	Breakdown                   // zero-sum kept, breakdown diagnostic attached
	BreakdownKept               // zero-sum kept, diagnostic already present
	InvalidSum                  // partial or over-filled; reported, never repaired here
)

func (a Action) String() string {
	switch a {
	case Balanced:
		return "balanced"
	case Uniform:
		return "uniform"
	case Breakdown:
		return "breakdown"
	case BreakdownKept:
		return "breakdown-kept"
	case InvalidSum:
		return "invalid-sum"
	default:
		return "unknown"
	}
}

// Context is what the decision needs to know about the conversation.
type Context struct {
	MessageCount int
	Abstain      bool
}

// Diagnostic describes what Repair decided.
type Diagnostic struct {
	Action Action
	Sum    float64 // total before repair
}

// Changed reports whether Repair mutated the distribution.
func (d Diagnostic) Changed() bool {
	return d.Action == Uniform || d.Action == Breakdown
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s (sum %.3f)", d.Action, d.Sum)
}

// Repair applies the zero-sum policy to rd in place. Only the distribution and
// breakdown members are ever written; confidence, evidence and rationale are
// left alone. roleSet is the canonical role list for rd's side.
//
// Synthetic mass is fabricated only for short or abstained conversations. A
// zero-sum distribution anywhere else is kept as-is and marked as a role
// breakdown, once; an existing detected diagnostic is never replaced, while an
// undetected placeholder is.
func Repair(rd *record.RoleDistribution, roleSet []string, ctx Context) Diagnostic {
	sum := rd.Sum()
	diag := Diagnostic{Sum: sum}

	switch {
	case InBand(sum):
		diag.Action = Balanced
	case rd.AllZero():
		if (ctx.MessageCount <= ShortConversation || ctx.Abstain) && len(roleSet) > 0 {
			spreadEvenly(rd, roleSet)
			diag.Action = Uniform
		} else if !rd.BrokenDown() {
			rd.Breakdown = &record.Breakdown{
				Detected:   true,
				Type:       BreakdownType,
				Confidence: BreakdownConfidence,
			}
			diag.Action = Breakdown
		} else {
			diag.Action = BreakdownKept
		}
	default:
		diag.Action = InvalidSum
	}
	return diag
}

func spreadEvenly(rd *record.RoleDistribution, roleSet []string) {
	dist := make(map[string]float64, len(roleSet))
	share := 1 / float64(len(roleSet))
	for _, role := range roleSet {
		dist[role] = share
	}
	rd.Distribution = dist
}
