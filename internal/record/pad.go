package record

import "encoding/json"

// PAD is a Pleasure-Arousal-Dominance value attached to one message.
//
// Files written by older tooling carry the shorthand form {p, a, d}. Both forms
// are decoded into the same struct and Form reports which variant is present.
// Non-numeric members are kept in Extra and treated as absent.
type PAD struct {
	Pleasure           *float64 `json:"pleasure,omitempty" jsonschema:"minimum=0,maximum=1"`
	Arousal            *float64 `json:"arousal,omitempty" jsonschema:"minimum=0,maximum=1"`
	Dominance          *float64 `json:"dominance,omitempty" jsonschema:"minimum=0,maximum=1"`
	EmotionalIntensity *float64 `json:"emotionalIntensity,omitempty" jsonschema:"minimum=0,maximum=1"`

	// Legacy shorthand.
	P *float64 `json:"p,omitempty"`
	A *float64 `json:"a,omitempty"`
	D *float64 `json:"d,omitempty"`

	Extra Extra `json:"-"`
}

// PADForm identifies the variant of a stored PAD value.
type PADForm int

const (
	PADAbsent      PADForm = iota // no usable axis at all
	PADPartial                    // some axes missing with no shorthand to fill them
	PADShorthand                  // axes recoverable from p/a/d
	PADNoIntensity                // three axes present, emotionalIntensity missing
	PADComplete                   // all four members present and numeric
	PADOutOfRange                 // an axis or the intensity lies outside [0,1]
)

func (f PADForm) String() string {
	switch f {
	case PADAbsent:
		return "absent"
	case PADPartial:
		return "partial"
	case PADShorthand:
		return "shorthand"
	case PADNoIntensity:
		return "no-intensity"
	case PADComplete:
		return "complete"
	case PADOutOfRange:
		return "out-of-range"
	default:
		return "unknown"
	}
}

// Form classifies p. A nil PAD is PADAbsent.
func (p *PAD) Form() PADForm {
	if p == nil {
		return PADAbsent
	}
	for _, v := range []*float64{orElse(p.Pleasure, p.P), orElse(p.Arousal, p.A), orElse(p.Dominance, p.D), p.EmotionalIntensity} {
		if v != nil && (*v < 0 || *v > 1) {
			return PADOutOfRange
		}
	}
	full := p.Pleasure != nil && p.Arousal != nil && p.Dominance != nil
	switch {
	case full && p.EmotionalIntensity != nil:
		return PADComplete
	case full:
		return PADNoIntensity
	}
	if orElse(p.Pleasure, p.P) != nil && orElse(p.Arousal, p.A) != nil && orElse(p.Dominance, p.D) != nil {
		return PADShorthand
	}
	if p.Pleasure == nil && p.Arousal == nil && p.Dominance == nil && p.P == nil && p.A == nil && p.D == nil {
		return PADAbsent
	}
	return PADPartial
}

// Complete reports whether all four named members are present and within
// [0,1].
func (p *PAD) Complete() bool {
	return p.Form() == PADComplete
}

// Axes returns pleasure, arousal and dominance, falling back to the shorthand
// members for any missing full-named axis. ok is false if an axis is missing
// in both forms.
func (p *PAD) Axes() (pleasure, arousal, dominance float64, ok bool) {
	if p == nil {
		return 0, 0, 0, false
	}
	pl, ar, do := orElse(p.Pleasure, p.P), orElse(p.Arousal, p.A), orElse(p.Dominance, p.D)
	if pl == nil || ar == nil || do == nil {
		return 0, 0, 0, false
	}
	return *pl, *ar, *do, true
}

func orElse(a, b *float64) *float64 {
	if a != nil {
		return a
	}
	return b
}

// Float returns a pointer to v, for building PAD literals.
func Float(v float64) *float64 { return &v }

func (p *PAD) UnmarshalJSON(data []byte) error {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	*p = PAD{}
	slots := map[string]**float64{
		"pleasure":           &p.Pleasure,
		"arousal":            &p.Arousal,
		"dominance":          &p.Dominance,
		"emotionalIntensity": &p.EmotionalIntensity,
		"p":                  &p.P,
		"a":                  &p.A,
		"d":                  &p.D,
	}
	for k, raw := range all {
		if slot, ok := slots[k]; ok {
			var v float64
			if err := json.Unmarshal(raw, &v); err == nil {
				*slot = &v
				continue
			}
		}
		if p.Extra == nil {
			p.Extra = make(Extra)
		}
		p.Extra[k] = raw
	}
	return nil
}

// MarshalJSON writes the typed members; a repaired member supersedes the
// non-numeric original kept in Extra.
func (p PAD) MarshalJSON() ([]byte, error) {
	type plain PAD
	return joinExtra(plain(p), p.Extra)
}
