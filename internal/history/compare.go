package history

import (
	"fmt"
	"strings"

	"github.com/suykerbuyk/padroles/internal/audit"
)

// Delta is the change of one outcome count between two runs.
type Delta struct {
	Outcome audit.Outcome `json:"outcome"`
	Before  int           `json:"before"`
	After   int           `json:"after"`
}

// Diff returns After - Before.
func (d Delta) Diff() int { return d.After - d.Before }

// Compare returns the per-outcome deltas from before to after, in gate order.
func Compare(before, after Run) []Delta {
	out := make([]Delta, 0, len(audit.Outcomes))
	for _, o := range audit.Outcomes {
		out = append(out, Delta{Outcome: o, Before: before.Counts[o], After: after.Counts[o]})
	}
	return out
}

// FormatRuns renders runs as a table, newest first as given.
func FormatRuns(runs []Run) string {
	if len(runs) == 0 {
		return "no recorded runs\n"
	}
	var b strings.Builder
	for _, r := range runs {
		fmt.Fprintf(&b, "%s  %-6s  %s  total %d  valid %d  errors %d",
			r.At.Format("2006-01-02 15:04:05"), r.Kind, short(r.ID), r.Total, r.Counts[audit.Valid], r.Errors)
		if r.BackupSet != "" {
			fmt.Fprintf(&b, "  backup %s", r.BackupSet)
		}
		fmt.Fprintf(&b, "\n    %s\n", r.Root)
	}
	return b.String()
}

// FormatCompare renders the deltas between two runs.
func FormatCompare(before, after Run) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s) -> %s (%s)\n\n",
		short(before.ID), before.At.Format("2006-01-02 15:04"), short(after.ID), after.At.Format("2006-01-02 15:04"))
	for _, d := range Compare(before, after) {
		fmt.Fprintf(&b, "  %-17s %6d -> %6d  (%+d)\n", d.Outcome, d.Before, d.After, d.Diff())
	}
	return b.String()
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
