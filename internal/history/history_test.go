package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suykerbuyk/padroles/internal/audit"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func report(root string, valid, legacy int) audit.Report {
	return audit.Report{
		Root:   root,
		Total:  valid + legacy,
		Counts: map[audit.Outcome]int{audit.Valid: valid, audit.OldTaxonomy: legacy},
		Errors: []audit.FileError{{File: "x.json", Err: "x.json: bad"}},
	}
}

func TestAddGetList(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	at := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

	first, err := s.Add(ctx, KindAudit, report("/a", 3, 7), 0, "", at)
	require.NoError(t, err)
	second, err := s.Add(ctx, KindRepair, report("/a", 10, 0), 7, "20261015-080100.000", at.Add(time.Minute))
	require.NoError(t, err)
	_, err = s.Add(ctx, KindAudit, report("/b", 1, 0), 0, "", at)
	require.NoError(t, err)

	got, err := s.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, got)
	assert.Equal(t, 0, got.Counts[audit.NoMessages])
	assert.Equal(t, 1, got.Errors)

	runs, err := s.List(ctx, "/a", 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, 7, runs[0].Changed)
	assert.Equal(t, "20261015-080100.000", runs[0].BackupSet)

	all, err := s.List(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "/b", all[0].Root)
}

func TestGet_NotFound(t *testing.T) {
	s := openStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound), "err = %v", err)
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	run, err := s.Add(context.Background(), KindAudit, report("/a", 1, 1), 0, "", time.Now())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Counts[audit.OldTaxonomy])
}

func TestCompare(t *testing.T) {
	before := Run{ID: "aaaaaaaa-1", Counts: map[audit.Outcome]int{audit.Valid: 3, audit.OldTaxonomy: 7}}
	after := Run{ID: "bbbbbbbb-2", Counts: map[audit.Outcome]int{audit.Valid: 10}}

	deltas := Compare(before, after)
	require.Len(t, deltas, len(audit.Outcomes))
	for _, d := range deltas {
		switch d.Outcome {
		case audit.Valid:
			assert.Equal(t, 7, d.Diff())
		case audit.OldTaxonomy:
			assert.Equal(t, -7, d.Diff())
		default:
			assert.Equal(t, 0, d.Diff())
		}
	}

	out := FormatCompare(before, after)
	assert.Contains(t, out, "aaaaaaaa (")
	assert.Contains(t, out, "(+7)")
	assert.Contains(t, out, "(-7)")
}

func TestFormatRuns(t *testing.T) {
	assert.Equal(t, "no recorded runs\n", FormatRuns(nil))
	out := FormatRuns([]Run{{ID: "abc", Kind: KindRepair, Root: "/a", BackupSet: "set-1", Counts: map[audit.Outcome]int{audit.Valid: 2}, Total: 2}})
	assert.Contains(t, out, "repair")
	assert.Contains(t, out, "valid 2")
	assert.Contains(t, out, "backup set-1")
}

func runsWithValid(valid ...int) []Run {
	// newest first, like List
	at := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	runs := make([]Run, len(valid))
	for i, v := range valid {
		runs[len(valid)-1-i] = Run{
			ID:     "run",
			At:     at.Add(time.Duration(i) * time.Hour),
			Total:  100,
			Counts: map[audit.Outcome]int{audit.Valid: v},
		}
	}
	return runs
}

func TestComputeTrend(t *testing.T) {
	tests := []struct {
		name  string
		valid []int // oldest first
		want  string
	}{
		{"too few runs", []int{10, 90}, "stable"},
		{"improving", []int{10, 10, 10, 10, 50, 60, 70, 80}, "improving"},
		{"worsening", []int{90, 90, 90, 90, 40, 40, 40, 40}, "worsening"},
		{"flat", []int{50, 51, 50, 49, 50, 50, 51, 50}, "stable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := ComputeTrend(runsWithValid(tt.valid...))
			assert.Equal(t, tt.want, tr.Direction)
			require.Len(t, tr.Points, len(tt.valid))
			assert.Equal(t, float64(tt.valid[len(tt.valid)-1]), tr.Points[0].ValidPct)
		})
	}
}

func TestComputeTrend_RollingAndAnomaly(t *testing.T) {
	tr := ComputeTrend(runsWithValid(50, 50, 50, 50, 50, 50, 50, 10))
	newest := tr.Points[0]
	assert.InDelta(t, 40.0, newest.RollingAvg, 1e-9)
	assert.True(t, newest.Anomaly)
	assert.Zero(t, tr.Points[len(tr.Points)-1].RollingAvg)
	assert.Contains(t, FormatTrend(tr), "v dip")
}
