// Package pad scores messages on the Pleasure-Arousal-Dominance axes and
// upgrades stored PAD values to the complete form.
package pad

import (
	"math"

	"github.com/suykerbuyk/padroles/internal/markers"
	"github.com/suykerbuyk/padroles/internal/record"
)

// Baselines before any marker modifier.
const (
	pleasurePositive = 0.8
	pleasureSerious  = 0.3
	neutral          = 0.5

	arousalHigh      = 0.7
	arousalReactive  = 0.3
	arousalExploring = 0.6
	arousalAffirming = 0.45

	dominanceHuman = 0.6
	dominanceAI    = 0.4
)

// Context is the conversation-level input to scoring.
type Context struct {
	Tone       string // emotionalTone category
	Engagement string // engagementStyle category
}

// ContextOf extracts the scoring context from a classification. A nil
// classification yields the neutral context.
func ContextOf(c *record.Classification) Context {
	return Context{Tone: c.Tone(), Engagement: c.Engagement()}
}

// Options configures an Engine.
type Options struct {
	Formula              Formula
	ApologyRaisesArousal bool
	Bank                 *markers.Bank // nil means markers.Default()
}

// Engine is a deterministic PAD scorer. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	opts Options
	bank *markers.Bank
}

// New returns an Engine.
func New(opts Options) *Engine {
	bank := opts.Bank
	if bank == nil {
		bank = markers.Default()
	}
	return &Engine{opts: opts, bank: bank}
}

// Formula returns the intensity formula the engine applies.
func (e *Engine) Formula() Formula { return e.opts.Formula }

// Value is the result of scoring one message.
type Value struct {
	Pleasure           float64
	Arousal            float64
	Dominance          float64
	EmotionalIntensity float64
	Markers            []string // fired marker families, sorted
}

// Score computes the PAD value of one message.
func (e *Engine) Score(role, content string, ctx Context) Value {
	p := basePleasure(ctx.Tone)
	a := baseArousal(ctx.Engagement)
	d := baseDominance(role)

	hits := e.bank.Detect(content)

	// Order is fixed; each modifier sees the previous one's output.
	if hits[markers.Frustration] {
		p = lower(p, 0.25, 0.1)
		a = raise(a, 0.25, 1.0)
	}
	if hits[markers.Satisfaction] {
		p = raise(p, 0.25, 1.0)
		a = lower(a, 0.15, 0.2)
	}
	if hits[markers.Urgency] {
		a = raise(a, 0.3, 1.0)
	}
	if hits[markers.Apology] {
		p = lower(p, 0.1, 0.2)
		d = lower(d, 0.2, 0.2)
		if e.opts.ApologyRaisesArousal {
			a = raise(a, 0.1, 1.0)
		}
	}

	p, a, d = round3(clip(p)), round3(clip(a)), round3(clip(d))
	return Value{
		Pleasure:           p,
		Arousal:            a,
		Dominance:          d,
		EmotionalIntensity: e.opts.Formula.Intensity(p, a, d),
		Markers:            hits.Names(),
	}
}

// PAD converts v into a stored PAD value.
func (v Value) PAD() *record.PAD {
	return &record.PAD{
		Pleasure:           record.Float(v.Pleasure),
		Arousal:            record.Float(v.Arousal),
		Dominance:          record.Float(v.Dominance),
		EmotionalIntensity: record.Float(v.EmotionalIntensity),
	}
}

func basePleasure(tone string) float64 {
	switch tone {
	case "playful", "supportive", "empathetic":
		return pleasurePositive
	case "serious":
		return pleasureSerious
	default:
		return neutral
	}
}

func baseArousal(engagement string) float64 {
	switch engagement {
	case "questioning", "challenging":
		return arousalHigh
	case "reactive":
		return arousalReactive
	case "exploring":
		return arousalExploring
	case "affirming":
		return arousalAffirming
	default:
		return neutral
	}
}

func baseDominance(role string) float64 {
	switch record.RoleSide(role) {
	case record.SideHuman:
		return dominanceHuman
	case record.SideAI:
		return dominanceAI
	default:
		return neutral
	}
}

// lower applies a decrement only while v is above floor.
func lower(v, delta, floor float64) float64 {
	if v > floor {
		return v - delta
	}
	return v
}

// raise applies an increment capped at ceil.
func raise(v, delta, ceil float64) float64 {
	return math.Min(v+delta, ceil)
}
