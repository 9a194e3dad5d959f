package pad

import (
	"math"
	"testing"

	"github.com/suykerbuyk/padroles/internal/record"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestScore_Baselines(t *testing.T) {
	e := New(Options{})
	tests := []struct {
		name       string
		role       string
		ctx        Context
		wantP      float64
		wantA      float64
		wantD      float64
	}{
		{"neutral human", "user", Context{}, 0.5, 0.5, 0.6},
		{"neutral ai", "assistant", Context{}, 0.5, 0.5, 0.4},
		{"unknown role", "tool", Context{}, 0.5, 0.5, 0.5},
		{"playful questioning", "human", Context{Tone: "playful", Engagement: "questioning"}, 0.8, 0.7, 0.6},
		{"supportive challenging", "ai", Context{Tone: "supportive", Engagement: "challenging"}, 0.8, 0.7, 0.4},
		{"empathetic exploring", "system", Context{Tone: "empathetic", Engagement: "exploring"}, 0.8, 0.6, 0.4},
		{"serious reactive", "user", Context{Tone: "serious", Engagement: "reactive"}, 0.3, 0.3, 0.6},
		{"affirming", "user", Context{Engagement: "affirming"}, 0.5, 0.45, 0.6},
		{"unknown categories", "user", Context{Tone: "wistful", Engagement: "meandering"}, 0.5, 0.5, 0.6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := e.Score(tt.role, "The report is attached.", tt.ctx)
			if !approx(v.Pleasure, tt.wantP) || !approx(v.Arousal, tt.wantA) || !approx(v.Dominance, tt.wantD) {
				t.Errorf("Score = (%v, %v, %v), want (%v, %v, %v)",
					v.Pleasure, v.Arousal, v.Dominance, tt.wantP, tt.wantA, tt.wantD)
			}
		})
	}
}

func TestScore_FrustrationAndApologyCompose(t *testing.T) {
	e := New(Options{})
	v := e.Score("assistant", "This doesn't work!! Sorry about that.", Context{})

	if !approx(v.Pleasure, 0.15) {
		t.Errorf("pleasure = %v, want 0.15", v.Pleasure)
	}
	if !approx(v.Arousal, 0.75) {
		t.Errorf("arousal = %v, want 0.75", v.Arousal)
	}
	if !approx(v.Dominance, 0.2) {
		t.Errorf("dominance = %v, want 0.2", v.Dominance)
	}
	if !approx(v.EmotionalIntensity, 0.81) {
		t.Errorf("intensity = %v, want 0.81", v.EmotionalIntensity)
	}
	if len(v.Markers) != 2 || v.Markers[0] != "apology" || v.Markers[1] != "frustration" {
		t.Errorf("markers = %v", v.Markers)
	}
}

func TestScore_ApologyRaisesArousalVariant(t *testing.T) {
	e := New(Options{ApologyRaisesArousal: true})
	v := e.Score("assistant", "Sorry, my mistake.", Context{})
	if !approx(v.Arousal, 0.6) {
		t.Errorf("arousal = %v, want 0.6", v.Arousal)
	}
	if !approx(New(Options{}).Score("assistant", "Sorry, my mistake.", Context{}).Arousal, 0.5) {
		t.Error("default engine should not raise arousal on apology")
	}
}

func TestScore_SatisfactionAndUrgency(t *testing.T) {
	e := New(Options{})

	v := e.Score("user", "Perfect, thank you!", Context{})
	if !approx(v.Pleasure, 0.75) || !approx(v.Arousal, 0.35) {
		t.Errorf("satisfaction = (%v, %v), want (0.75, 0.35)", v.Pleasure, v.Arousal)
	}

	v = e.Score("user", "I need this fixed asap", Context{Engagement: "questioning"})
	if !approx(v.Arousal, 1.0) {
		t.Errorf("urgency arousal = %v, want 1.0 (ceiling)", v.Arousal)
	}
}

func TestScore_FloorStopsFurtherDecrements(t *testing.T) {
	e := New(Options{})
	// Serious tone starts pleasure at 0.3; frustration takes it to 0.05 (below
	// the apology floor), so apology leaves pleasure alone.
	v := e.Score("user", "Ugh, useless. Sorry.", Context{Tone: "serious"})
	if !approx(v.Pleasure, 0.05) {
		t.Errorf("pleasure = %v, want 0.05", v.Pleasure)
	}
}

func TestScore_ValuesWithinUnitInterval(t *testing.T) {
	e := New(Options{Formula: Euclidean})
	texts := []string{
		"", "URGENT!!! this is broken, sorry, thanks 🎉 asap???",
		"```\nsorry\n```", "why won't it work", "great great great",
	}
	for _, text := range texts {
		for _, role := range []string{"user", "assistant", "x"} {
			v := e.Score(role, text, Context{Tone: "playful", Engagement: "challenging"})
			for _, x := range []float64{v.Pleasure, v.Arousal, v.Dominance, v.EmotionalIntensity} {
				if x < 0 || x > 1 {
					t.Errorf("Score(%q, %q) out of range: %+v", role, text, v)
				}
			}
		}
	}
}

func TestScore_Deterministic(t *testing.T) {
	e := New(Options{})
	a := e.Score("user", "why doesn't this work??", Context{Tone: "serious"})
	b := e.Score("user", "why doesn't this work??", Context{Tone: "serious"})
	if a.Pleasure != b.Pleasure || a.Arousal != b.Arousal || a.Dominance != b.Dominance || a.EmotionalIntensity != b.EmotionalIntensity {
		t.Errorf("non-deterministic: %+v vs %+v", a, b)
	}
}

func TestContextOf(t *testing.T) {
	if got := ContextOf(nil); got != (Context{}) {
		t.Errorf("ContextOf(nil) = %+v", got)
	}
	c := &record.Classification{
		EmotionalTone:   &record.Label{Category: " Supportive "},
		EngagementStyle: &record.Label{Category: "Exploring"},
	}
	if got := ContextOf(c); got.Tone != "supportive" || got.Engagement != "exploring" {
		t.Errorf("ContextOf = %+v", got)
	}
}
