package pad

import "github.com/suykerbuyk/padroles/internal/record"

// Action reports what Complete did to a message.
type Action int

const (
	Unchanged      Action = iota // already complete
	Upgraded                     // shorthand copied to full names, intensity computed
	IntensityAdded               // axes present, intensity computed
	Scored                       // no usable value, scored from text
	Rescored                     // stored value out of range, scored from text
)

func (a Action) String() string {
	switch a {
	case Unchanged:
		return "unchanged"
	case Upgraded:
		return "upgraded"
	case IntensityAdded:
		return "intensity-added"
	case Scored:
		return "scored"
	case Rescored:
		return "rescored"
	default:
		return "unknown"
	}
}

// Backfill upgrades p in place from the legacy shorthand and computes a
// missing emotionalIntensity. It never re-scores: the stored axes are kept
// as they are. It returns Unchanged for complete values and for values that
// cannot be upgraded (absent, partial or out of range).
func (e *Engine) Backfill(p *record.PAD) Action {
	switch p.Form() {
	case record.PADShorthand:
		pl, ar, do, _ := p.Axes()
		p.Pleasure, p.Arousal, p.Dominance = record.Float(pl), record.Float(ar), record.Float(do)
		if p.EmotionalIntensity == nil {
			p.EmotionalIntensity = record.Float(e.opts.Formula.Intensity(pl, ar, do))
		}
		return Upgraded
	case record.PADNoIntensity:
		p.EmotionalIntensity = record.Float(e.opts.Formula.Intensity(*p.Pleasure, *p.Arousal, *p.Dominance))
		return IntensityAdded
	default:
		return Unchanged
	}
}

// Complete ensures m carries a complete PAD value. Complete values are left
// alone; shorthand and intensity-less values are backfilled; anything else is
// scored from the message text. Out-of-range values are replaced by a fresh
// score, never clipped. Unknown members of an existing PAD survive.
func (e *Engine) Complete(m *record.Message, ctx Context) Action {
	action := Scored
	switch m.PAD.Form() {
	case record.PADComplete:
		return Unchanged
	case record.PADShorthand, record.PADNoIntensity:
		return e.Backfill(m.PAD)
	case record.PADOutOfRange:
		action = Rescored
	}

	v := e.Score(m.Role, m.Content, ctx)
	if m.PAD == nil {
		m.PAD = v.PAD()
		return Scored
	}
	fresh := v.PAD()
	m.PAD.Pleasure = fresh.Pleasure
	m.PAD.Arousal = fresh.Arousal
	m.PAD.Dominance = fresh.Dominance
	m.PAD.EmotionalIntensity = fresh.EmotionalIntensity
	return action
}

// Convert recomputes the intensity of a complete PAD whose stored value was
// produced by the alternate formula. Values matching neither formula are left
// untouched and reported as such.
func (e *Engine) Convert(p *record.PAD, tol float64) (bool, Agreement) {
	agr := Agree(p, e.opts.Formula, tol)
	if agr != AgreeAlternate {
		return false, agr
	}
	p.EmotionalIntensity = record.Float(e.opts.Formula.Intensity(*p.Pleasure, *p.Arousal, *p.Dominance))
	return true, agr
}
