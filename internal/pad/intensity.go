package pad

import (
	"fmt"
	"math"
	"strings"

	"github.com/suykerbuyk/padroles/internal/record"
)

// Formula selects how emotionalIntensity is derived from the three axes. A
// corpus must use exactly one.
type Formula int

const (
	// Linear is (1-pleasure)*0.6 + arousal*0.4.
	Linear Formula = iota
	// Euclidean is the distance from the neutral point (0.5, 0.5, 0.5),
	// normalized by the largest possible distance sqrt(0.75).
	Euclidean
)

func (f Formula) String() string {
	switch f {
	case Linear:
		return "linear"
	case Euclidean:
		return "euclidean"
	default:
		return fmt.Sprintf("formula(%d)", int(f))
	}
}

// ParseFormula accepts "linear" or "euclidean". Empty means Linear.
func ParseFormula(s string) (Formula, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear":
		return Linear, nil
	case "euclidean":
		return Euclidean, nil
	default:
		return Linear, fmt.Errorf("unknown intensity formula %q (want linear or euclidean)", s)
	}
}

// Other returns the formula not chosen.
func (f Formula) Other() Formula {
	if f == Linear {
		return Euclidean
	}
	return Linear
}

// Intensity computes emotionalIntensity, clipped to [0,1] and rounded.
func (f Formula) Intensity(p, a, d float64) float64 {
	var v float64
	switch f {
	case Euclidean:
		v = math.Sqrt((p-0.5)*(p-0.5)+(a-0.5)*(a-0.5)+(d-0.5)*(d-0.5)) / math.Sqrt(0.75)
	default:
		v = (1-p)*0.6 + a*0.4
	}
	return round3(clip(v))
}

// Agreement says which formula a stored intensity was computed with.
type Agreement int

const (
	AgreeChosen    Agreement = iota // matches the corpus formula
	AgreeAlternate                  // matches only the other formula
	AgreeNeither                    // matches no known formula
)

func (a Agreement) String() string {
	switch a {
	case AgreeChosen:
		return "chosen"
	case AgreeAlternate:
		return "alternate"
	default:
		return "unknown"
	}
}

// Agree recomputes the intensity of a complete PAD under both formulas and
// compares each against the stored value within tol. Incomplete values agree
// trivially since there is nothing stored to compare.
func Agree(p *record.PAD, chosen Formula, tol float64) Agreement {
	if !p.Complete() {
		return AgreeChosen
	}
	pl, ar, do := *p.Pleasure, *p.Arousal, *p.Dominance
	stored := *p.EmotionalIntensity
	if math.Abs(chosen.Intensity(pl, ar, do)-stored) <= tol {
		return AgreeChosen
	}
	if math.Abs(chosen.Other().Intensity(pl, ar, do)-stored) <= tol {
		return AgreeAlternate
	}
	return AgreeNeither
}

func clip(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
