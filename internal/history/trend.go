package history

import (
	"fmt"
	"math"
	"strings"

	"github.com/suykerbuyk/padroles/internal/audit"
)

const trendWindow = 4

// TrendPoint is the valid rate of one run.
type TrendPoint struct {
	RunID      string  `json:"runId"`
	Label      string  `json:"label"`
	ValidPct   float64 `json:"validPct"`
	RollingAvg float64 `json:"rollingAvg,omitempty"` // 0 until a full window exists
	Anomaly    bool    `json:"anomaly,omitempty"`    // >1.5 stddev from the rolling average
}

// Trend is corpus health over recorded runs.
type Trend struct {
	Points    []TrendPoint `json:"points"` // most recent first
	Direction string       `json:"direction"`
	DeltaPct  float64      `json:"deltaPct"`
}

// ComputeTrend builds the valid-rate trend from runs given newest first, as
// List returns them.
func ComputeTrend(runs []Run) Trend {
	n := len(runs)
	pts := make([]TrendPoint, n)
	values := make([]float64, n)
	for i := range runs {
		r := runs[n-1-i] // oldest first
		v := 0.0
		if r.Total > 0 {
			v = float64(r.Counts[audit.Valid]) * 100 / float64(r.Total)
		}
		values[i] = v
		pts[i] = TrendPoint{RunID: r.ID, Label: r.At.Format("Jan 02 15:04"), ValidPct: v}
	}

	for i := range pts {
		if i < trendWindow-1 {
			continue
		}
		ra := rollingAvg(values, i, trendWindow)
		pts[i].RollingAvg = ra
		if sd := rollingStddev(values, i, trendWindow); sd > 0 && math.Abs(values[i]-ra) > 1.5*sd {
			pts[i].Anomaly = true
		}
	}

	t := Trend{Points: make([]TrendPoint, n)}
	for i, p := range pts {
		t.Points[n-1-i] = p
	}
	t.Direction, t.DeltaPct = direction(values)
	return t
}

// direction compares the last window of runs with the one before it.
func direction(values []float64) (string, float64) {
	n := len(values)
	if n < 2*trendWindow {
		return "stable", 0
	}
	recent := rollingAvg(values, n-1, trendWindow)
	prev := rollingAvg(values, n-1-trendWindow, trendWindow)
	if prev == 0 {
		return "stable", 0
	}
	delta := (recent - prev) / prev * 100
	switch {
	case math.Abs(delta) < 10:
		return "stable", delta
	case delta > 0:
		return "improving", delta
	default:
		return "worsening", delta
	}
}

// rollingAvg averages the window values ending at end (inclusive).
func rollingAvg(values []float64, end, window int) float64 {
	start := end - window + 1
	if start < 0 {
		start = 0
	}
	var sum float64
	for i := start; i <= end; i++ {
		sum += values[i]
	}
	return sum / float64(end-start+1)
}

func rollingStddev(values []float64, end, window int) float64 {
	start := end - window + 1
	if start < 0 {
		start = 0
	}
	mean := rollingAvg(values, end, window)
	var ss float64
	for i := start; i <= end; i++ {
		ss += (values[i] - mean) * (values[i] - mean)
	}
	return math.Sqrt(ss / float64(end-start+1))
}

// FormatTrend renders t as an aligned table.
func FormatTrend(t Trend) string {
	if len(t.Points) == 0 {
		return "no recorded runs\n"
	}
	var b strings.Builder
	arrow := map[string]string{"improving": "↑", "worsening": "↓"}[t.Direction]
	if arrow == "" {
		arrow = "→"
	}
	detail := ""
	if t.Direction != "stable" {
		detail = fmt.Sprintf(" (%+.0f%%)", t.DeltaPct)
	}
	fmt.Fprintf(&b, "valid rate %s %s%s\n\n", arrow, t.Direction, detail)
	fmt.Fprintf(&b, "  %-14s %8s %8s\n", "Run", "Valid", "Avg")
	for _, p := range t.Points {
		avg := ""
		if p.RollingAvg > 0 {
			avg = fmt.Sprintf("%.1f%%", p.RollingAvg)
		}
		marker := ""
		if p.Anomaly {
			if p.ValidPct > p.RollingAvg {
				marker = "  ^ spike"
			} else {
				marker = "  v dip"
			}
		}
		fmt.Fprintf(&b, "  %-14s %7.1f%% %8s%s\n", p.Label, p.ValidPct, avg, marker)
	}
	return b.String()
}
