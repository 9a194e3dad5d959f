// Package corpus carries the explicit corpus context and enumerates and fans
// out over the record files under a corpus root.
package corpus

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	"go.uber.org/zap"

	"github.com/suykerbuyk/padroles/internal/config"
	"github.com/suykerbuyk/padroles/internal/pad"
	"github.com/suykerbuyk/padroles/internal/taxonomy"
)

// Context is everything an audit or repair run needs. It is built once from
// configuration and passed by value; nothing in it is mutated during a run.
type Context struct {
	Root        string
	Exclude     map[string]bool // file names never treated as records
	Patterns    []glob.Glob     // exclusion patterns matched against file names
	Reconciler  *taxonomy.Reconciler
	Engine      *pad.Engine
	Tolerance   float64 // intensity agreement tolerance
	SampleLimit int     // file names retained per outcome
	Concurrency int
	Logger      *zap.Logger
}

// FromConfig resolves cfg into a Context.
func FromConfig(cfg config.Config, logger *zap.Logger) (Context, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	formula, err := pad.ParseFormula(cfg.Scoring.IntensityFormula)
	if err != nil {
		return Context{}, err
	}

	tables := taxonomy.DefaultTables().Merge(taxonomy.Tables{
		Human: cfg.Taxonomy.HumanLegacy,
		AI:    cfg.Taxonomy.AILegacy,
	})
	if cfg.Taxonomy.File != "" {
		fromFile, err := taxonomy.LoadFile(cfg.Taxonomy.File)
		if err != nil {
			return Context{}, err
		}
		tables = tables.Merge(fromFile)
	}
	rec, err := taxonomy.NewReconciler(tables)
	if err != nil {
		return Context{}, fmt.Errorf("taxonomy tables: %w", err)
	}

	exclude := map[string]bool{cfg.ManifestName: true}
	var patterns []glob.Glob
	for _, name := range cfg.Exclude {
		if !strings.ContainsAny(name, "*?[{") {
			exclude[name] = true
			continue
		}
		g, err := glob.Compile(name)
		if err != nil {
			return Context{}, fmt.Errorf("exclude pattern %q: %w", name, err)
		}
		patterns = append(patterns, g)
	}

	return Context{
		Root:       cfg.CorpusRoot,
		Exclude:    exclude,
		Patterns:   patterns,
		Reconciler: rec,
		Engine: pad.New(pad.Options{
			Formula:              formula,
			ApologyRaisesArousal: cfg.Scoring.ApologyRaisesArousal,
		}),
		Tolerance:   cfg.Scoring.IntensityTolerance,
		SampleLimit: cfg.SampleLimit,
		Concurrency: cfg.Concurrency,
		Logger:      logger,
	}, nil
}

// Default returns a Context over root with default configuration.
func Default(root string) Context {
	cfg := config.DefaultConfig()
	cfg.CorpusRoot = root
	cc, err := FromConfig(cfg, nil)
	if err != nil {
		// The built-in defaults always resolve.
		panic(err)
	}
	return cc
}

// Log returns the context's logger, never nil.
func (c Context) Log() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
