package audit

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/suykerbuyk/padroles/internal/corpus"
	"github.com/suykerbuyk/padroles/internal/record"
)

// FileError is a record that could not be audited at all.
type FileError struct {
	File string `json:"file"`
	Err  string `json:"error"`
}

// Drift is the corpus-wide intensity agreement tally with sample files.
type Drift struct {
	Formula string `json:"formula"`
	Tally
	AlternateFiles []string `json:"alternateFiles,omitempty"`
	UnknownFiles   []string `json:"unknownFiles,omitempty"`
}

// Report aggregates a corpus audit. Counts cover every audited record;
// structurally broken files are listed under Errors and are not counted.
type Report struct {
	Root    string               `json:"root"`
	Total   int                  `json:"total"`
	Counts  map[Outcome]int      `json:"counts"`
	Samples map[Outcome][]string `json:"samples"`
	Errors  []FileError          `json:"errors,omitempty"`

	Intensity           Drift    `json:"intensity"`
	MissingAlternatives int      `json:"missingAlternatives"`
	MissingAltFiles     []string `json:"missingAlternativeFiles,omitempty"`
	Breakdowns          int      `json:"breakdowns"`
}

// Clean reports whether every audited record is valid and no file failed to
// load.
func (r Report) Clean() bool {
	return len(r.Errors) == 0 && r.Counts[Valid] == r.Total
}

// Invalid returns the number of audited records with a non-valid outcome.
func (r Report) Invalid() int {
	return r.Total - r.Counts[Valid]
}

// CheckFile loads and audits one record file.
func CheckFile(cc corpus.Context, path string) Result {
	rec, err := record.Load(path)
	if err != nil {
		return Result{File: filepath.Base(path), Err: err}
	}
	res := Check(rec, cc.Engine.Formula(), cc.Tolerance)
	res.File = filepath.Base(path)
	return res
}

// Run audits every record under the corpus root. The corpus is never
// modified. Only an unreadable root or cancellation is returned as an error;
// per-record failures are reported in the Report.
func Run(ctx context.Context, cc corpus.Context) (Report, error) {
	paths, err := cc.List()
	if err != nil {
		return Report{}, err
	}
	cc.Log().Debug("audit started", zap.String("root", cc.Root), zap.Int("files", len(paths)))

	results, err := corpus.Each(ctx, cc, paths, func(_ context.Context, path string) Result {
		return CheckFile(cc, path)
	})
	if err != nil {
		return Report{}, err
	}

	rep := Aggregate(cc, results)
	cc.Log().Info("audit finished",
		zap.String("root", cc.Root),
		zap.Int("total", rep.Total),
		zap.Int("valid", rep.Counts[Valid]),
		zap.Int("errors", len(rep.Errors)),
	)
	return rep, nil
}

// Aggregate folds per-record results into a Report. Samples keep at most
// cc.SampleLimit file names per outcome, in file-name order.
func Aggregate(cc corpus.Context, results []Result) Report {
	rep := Report{
		Root:    cc.Root,
		Counts:  make(map[Outcome]int, len(Outcomes)),
		Samples: make(map[Outcome][]string, len(Outcomes)),
	}
	if cc.Engine != nil {
		rep.Intensity.Formula = cc.Engine.Formula().String()
	}
	for _, o := range Outcomes {
		rep.Counts[o] = 0
	}

	sorted := make([]Result, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].File < sorted[j].File })

	for _, res := range sorted {
		if res.Err != nil {
			rep.Errors = append(rep.Errors, FileError{File: res.File, Err: res.Err.Error()})
			continue
		}
		rep.Total++
		rep.Counts[res.Outcome]++
		rep.Samples[res.Outcome] = sample(rep.Samples[res.Outcome], res.File, cc.SampleLimit)

		rep.Intensity.Chosen += res.Intensity.Chosen
		rep.Intensity.Alternate += res.Intensity.Alternate
		rep.Intensity.Unknown += res.Intensity.Unknown
		if res.Intensity.Alternate > 0 {
			rep.Intensity.AlternateFiles = sample(rep.Intensity.AlternateFiles, res.File, cc.SampleLimit)
		}
		if res.Intensity.Unknown > 0 {
			rep.Intensity.UnknownFiles = sample(rep.Intensity.UnknownFiles, res.File, cc.SampleLimit)
		}
		if res.MissingAlternatives > 0 {
			rep.MissingAlternatives += res.MissingAlternatives
			rep.MissingAltFiles = sample(rep.MissingAltFiles, res.File, cc.SampleLimit)
		}
		rep.Breakdowns += len(res.Breakdowns)
	}
	return rep
}

func sample(list []string, name string, limit int) []string {
	if limit > 0 && len(list) >= limit {
		return list
	}
	return append(list, name)
}

// Format returns the human-readable report.
func (r Report) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "padroles audit %s\n\n", r.Root)

	if r.Total == 0 && len(r.Errors) == 0 {
		b.WriteString("  no records found\n")
		return b.String()
	}

	for _, o := range Outcomes {
		n := r.Counts[o]
		fmt.Fprintf(&b, "  %-17s %6d  %5.1f%%\n", o, n, percent(n, r.Total))
		if o == Valid {
			continue
		}
		for _, name := range r.Samples[o] {
			fmt.Fprintf(&b, "      %s\n", name)
		}
	}
	fmt.Fprintf(&b, "  %-17s %6d\n", "total", r.Total)

	if len(r.Errors) > 0 {
		fmt.Fprintf(&b, "\n  unreadable: %d\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "      %s\n", e.Err)
		}
	}

	d := r.Intensity
	if d.Alternate > 0 || d.Unknown > 0 {
		fmt.Fprintf(&b, "\n  intensity drift (%s): %d chosen, %d alternate, %d unknown\n",
			d.Formula, d.Chosen, d.Alternate, d.Unknown)
		for _, name := range d.AlternateFiles {
			fmt.Fprintf(&b, "      alternate: %s\n", name)
		}
		for _, name := range d.UnknownFiles {
			fmt.Fprintf(&b, "      unknown:   %s\n", name)
		}
	}
	if r.MissingAlternatives > 0 {
		fmt.Fprintf(&b, "\n  low-confidence labels without alternative: %d\n", r.MissingAlternatives)
	}
	if r.Breakdowns > 0 {
		fmt.Fprintf(&b, "  role breakdowns: %d\n", r.Breakdowns)
	}
	return b.String()
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}
