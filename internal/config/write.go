package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigDir returns the padroles config directory path.
// Uses $XDG_CONFIG_HOME/padroles if set, otherwise ~/.config/padroles.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "padroles")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "padroles")
}

// WriteDefault writes a default config.toml pointing to corpusRoot.
// Returns the config file path. Skips if config.toml already exists.
func WriteDefault(corpusRoot string) (string, error) {
	dir := ConfigDir()
	path := filepath.Join(dir, "config.toml")

	if _, err := os.Stat(path); err == nil {
		return path, nil // already exists
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}

	portablePath := CompressHome(corpusRoot)

	content := fmt.Sprintf(`corpus_root = %q
manifest_name = "manifest.json"
# extra file names or glob patterns, e.g. ["*.bak.json"]
exclude = []
concurrency = 8
sample_limit = 10

[scoring]
# linear: (1-pleasure)*0.6 + arousal*0.4
# euclidean: distance from (0.5, 0.5, 0.5) / sqrt(0.75)
intensity_formula = "linear"
apology_raises_arousal = false
intensity_tolerance = 0.01

[taxonomy]
# file = "~/padroles/legacy-roles.toml"

[taxonomy.human_legacy]
# "old-name" = "seeker"

[taxonomy.ai_legacy]
# "old-name" = "expert"

[backup]
enabled = true
# dir = "~/padroles/backups"

[history]
enabled = true
# path = "~/padroles/history.db"
`, portablePath)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}

	return path, nil
}

// CompressHome replaces $HOME prefix with ~/ for portable config values.
func CompressHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home+"/") {
		return "~/" + path[len(home)+1:]
	}
	if path == home {
		return "~"
	}
	return path
}
