package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all padroles configuration.
type Config struct {
	CorpusRoot   string   `toml:"corpus_root"`
	ManifestName string   `toml:"manifest_name"`
	Exclude      []string `toml:"exclude"` // names or glob patterns
	Concurrency  int      `toml:"concurrency"`
	SampleLimit  int      `toml:"sample_limit"`

	Scoring  ScoringConfig  `toml:"scoring"`
	Taxonomy TaxonomyConfig `toml:"taxonomy"`
	Backup   BackupConfig   `toml:"backup"`
	History  HistoryConfig  `toml:"history"`
}

type ScoringConfig struct {
	IntensityFormula     string  `toml:"intensity_formula"`
	ApologyRaisesArousal bool    `toml:"apology_raises_arousal"`
	IntensityTolerance   float64 `toml:"intensity_tolerance"`
}

type TaxonomyConfig struct {
	File        string            `toml:"file"`
	HumanLegacy map[string]string `toml:"human_legacy"`
	AILegacy    map[string]string `toml:"ai_legacy"`
}

type BackupConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		CorpusRoot:   "~/padroles/conversations",
		ManifestName: "manifest.json",
		Concurrency:  8,
		SampleLimit:  10,
		Scoring: ScoringConfig{
			IntensityFormula:   "linear",
			IntensityTolerance: 0.01,
		},
		Backup: BackupConfig{
			Enabled: true,
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// Load reads config from path, or from the standard locations when path is
// empty, falling back to defaults when no file exists.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else {
		for _, p := range configPaths() {
			if _, err := os.Stat(p); err == nil {
				if _, err := toml.DecodeFile(p, &cfg); err != nil {
					return cfg, fmt.Errorf("parse config %s: %w", p, err)
				}
				break
			}
		}
	}

	cfg.Resolve()
	return cfg, cfg.Validate()
}

// Resolve expands ~ in path settings and fills state paths derived from the
// corpus root. Call it again after overriding CorpusRoot.
func (c *Config) Resolve() {
	c.CorpusRoot = expandHome(c.CorpusRoot)
	c.Taxonomy.File = expandHome(c.Taxonomy.File)
	c.Backup.Dir = expandHome(c.Backup.Dir)
	c.History.Path = expandHome(c.History.Path)
}

// Validate rejects settings no run could use.
func (c Config) Validate() error {
	if c.CorpusRoot == "" {
		return fmt.Errorf("corpus_root is empty")
	}
	if c.ManifestName == "" {
		return fmt.Errorf("manifest_name is empty")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must be >= 0")
	}
	if c.SampleLimit < 0 {
		return fmt.Errorf("sample_limit must be >= 0")
	}
	if c.Scoring.IntensityTolerance < 0 {
		return fmt.Errorf("scoring.intensity_tolerance must be >= 0")
	}
	return nil
}

func configPaths() []string {
	var paths []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "padroles", "config.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "padroles", "config.toml"))
	}

	return paths
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// StateDir returns the .padroles state directory inside the corpus root.
func (c Config) StateDir() string {
	return filepath.Join(c.CorpusRoot, ".padroles")
}

// BackupDir returns where pre-repair backups are written.
func (c Config) BackupDir() string {
	if c.Backup.Dir != "" {
		return c.Backup.Dir
	}
	return filepath.Join(c.StateDir(), "backups")
}

// HistoryPath returns the audit history database path.
func (c Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return filepath.Join(c.StateDir(), "history.db")
}
