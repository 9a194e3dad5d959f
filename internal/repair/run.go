package repair

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/suykerbuyk/padroles/internal/archive"
	"github.com/suykerbuyk/padroles/internal/audit"
	"github.com/suykerbuyk/padroles/internal/corpus"
	"github.com/suykerbuyk/padroles/internal/record"
)

// Options controls a corpus repair run.
type Options struct {
	DryRun           bool   // compute and report, write nothing
	Backup           bool   // keep a compressed copy of every file before it is overwritten
	BackupDir        string // parent of the per-run backup sets
	ConvertAlternate bool   // recompute intensities stored under the alternate formula
}

// FileResult is the outcome of repairing one record file.
type FileResult struct {
	File    string  `json:"file"`
	Changes Changes `json:"changes"`
	Written bool    `json:"written"`
	Err     error   `json:"-"`
}

// Report summarizes a corpus repair run.
type Report struct {
	Root      string            `json:"root"`
	DryRun    bool              `json:"dryRun"`
	BackupSet string            `json:"backupSet,omitempty"`
	Total     int               `json:"total"`
	Changed   int               `json:"changed"`
	Written   int               `json:"written"`
	Steps     map[string]int    `json:"steps"`
	Files     []string          `json:"files,omitempty"` // changed files, bounded sample
	Errors    []audit.FileError `json:"errors,omitempty"`
}

// Run repairs every record under the corpus root. A record is written back
// only when a step changed it. Per-record failures, including unmapped legacy
// roles, are reported and never stop the run; the failing file is left as it
// was.
func Run(ctx context.Context, cc corpus.Context, opts Options) (Report, error) {
	paths, err := cc.List()
	if err != nil {
		return Report{}, err
	}

	rp := &Repairer{
		Engine:           cc.Engine,
		Reconciler:       cc.Reconciler,
		Tolerance:        cc.Tolerance,
		ConvertAlternate: opts.ConvertAlternate,
	}

	var set archive.Set
	backup := opts.Backup && !opts.DryRun
	if backup {
		set = archive.NewSet(opts.BackupDir, time.Now())
	}

	log := cc.Log()
	log.Debug("repair started",
		zap.String("root", cc.Root),
		zap.Int("files", len(paths)),
		zap.Bool("dry_run", opts.DryRun),
	)

	results, err := corpus.Each(ctx, cc, paths, func(_ context.Context, path string) FileResult {
		res := repairFile(rp, path, opts.DryRun, backup, set)
		if res.Err != nil {
			log.Warn("repair failed", zap.String("file", res.File), zap.Error(res.Err))
		} else if res.Changes.Any() {
			log.Debug("record repaired",
				zap.String("file", res.File),
				zap.String("changes", res.Changes.String()),
				zap.Bool("written", res.Written),
			)
		}
		return res
	})
	if err != nil {
		return Report{}, err
	}

	rep := Summarize(cc, results)
	rep.DryRun = opts.DryRun
	if backup && rep.Written > 0 {
		rep.BackupSet = set.ID
	}
	log.Info("repair finished",
		zap.String("root", cc.Root),
		zap.Int("total", rep.Total),
		zap.Int("changed", rep.Changed),
		zap.Int("written", rep.Written),
		zap.Int("errors", len(rep.Errors)),
	)
	return rep, nil
}

func repairFile(rp *Repairer, path string, dryRun, backup bool, set archive.Set) FileResult {
	res := FileResult{File: filepath.Base(path)}

	rec, err := record.Load(path)
	if err != nil {
		res.Err = err
		return res
	}

	out, ch, err := rp.Record(rec)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", res.File, err)
		return res
	}
	res.Changes = ch
	if !ch.Any() || dryRun {
		return res
	}

	if backup {
		if _, err := set.Backup(path); err != nil {
			res.Err = fmt.Errorf("%s: backup: %w", res.File, err)
			return res
		}
	}
	if err := record.Save(path, out); err != nil {
		res.Err = fmt.Errorf("%s: %w", res.File, err)
		return res
	}
	res.Written = true
	return res
}

// Summarize folds per-file results into a Report.
func Summarize(cc corpus.Context, results []FileResult) Report {
	rep := Report{Root: cc.Root, Steps: make(map[string]int)}

	sorted := make([]FileResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].File < sorted[j].File })

	for _, res := range sorted {
		if res.Err != nil {
			rep.Errors = append(rep.Errors, audit.FileError{File: res.File, Err: res.Err.Error()})
			continue
		}
		rep.Total++
		if !res.Changes.Any() {
			continue
		}
		rep.Changed++
		if res.Written {
			rep.Written++
		}
		if cc.SampleLimit <= 0 || len(rep.Files) < cc.SampleLimit {
			rep.Files = append(rep.Files, res.File)
		}

		ch := res.Changes
		for action, n := range ch.PAD {
			rep.Steps["pad "+action] += n
		}
		if ch.Converted > 0 {
			rep.Steps["pad converted"] += ch.Converted
		}
		for _, field := range ch.Migrated {
			rep.Steps["migrated "+field]++
		}
		for field, action := range ch.Roles {
			rep.Steps[field+" "+action]++
		}
		if ch.Flattened {
			rep.Steps["flattened"]++
		}
	}
	return rep
}

// Format returns the human-readable report.
func (r Report) Format() string {
	var b strings.Builder
	mode := ""
	if r.DryRun {
		mode = " (dry run)"
	}
	fmt.Fprintf(&b, "padroles repair %s%s\n\n", r.Root, mode)

	fmt.Fprintf(&b, "  records   %6d\n", r.Total)
	fmt.Fprintf(&b, "  changed   %6d\n", r.Changed)
	fmt.Fprintf(&b, "  written   %6d\n", r.Written)
	fmt.Fprintf(&b, "  failed    %6d\n", len(r.Errors))

	if len(r.Steps) > 0 {
		b.WriteString("\n")
		keys := make([]string, 0, len(r.Steps))
		for k := range r.Steps {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %-28s %6d\n", k, r.Steps[k])
		}
	}
	if len(r.Files) > 0 {
		b.WriteString("\n")
		for _, f := range r.Files {
			fmt.Fprintf(&b, "      %s\n", f)
		}
	}
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "  error: %s\n", e.Err)
	}
	if r.BackupSet != "" {
		fmt.Fprintf(&b, "\n  backup set %s (padroles restore %s)\n", r.BackupSet, r.BackupSet)
	}
	return b.String()
}
