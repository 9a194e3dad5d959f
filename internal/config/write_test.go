package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
)

func TestWriteDefault_CreatesConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, err := WriteDefault("/data/conversations")
	if err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	want := filepath.Join(dir, "padroles", "config.toml")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}

	content := string(data)
	for _, section := range []string{"corpus_root", "[scoring]", "[taxonomy]", "[backup]", "[history]"} {
		if !strings.Contains(content, section) {
			t.Errorf("config missing %s", section)
		}
	}

	// The written file must decode back to the defaults it documents.
	cfg := Config{}
	if _, err := toml.Decode(content, &cfg); err != nil {
		t.Fatalf("decode written config: %v", err)
	}
	if cfg.CorpusRoot != "/data/conversations" || cfg.Scoring.IntensityFormula != "linear" {
		t.Errorf("decoded = %+v", cfg)
	}
}

func TestWriteDefault_KeepsExisting(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	configDir := filepath.Join(dir, "padroles")
	os.MkdirAll(configDir, 0o755)
	existing := filepath.Join(configDir, "config.toml")
	os.WriteFile(existing, []byte(`corpus_root = "~/custom"`), 0o644)

	path, err := WriteDefault("/some/other/path")
	if err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	if path != existing {
		t.Errorf("path = %q, want %q", path, existing)
	}

	data, _ := os.ReadFile(existing)
	if string(data) != `corpus_root = "~/custom"` {
		t.Errorf("existing config overwritten: %q", data)
	}
}

func TestCompressHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in, want string
	}{
		{filepath.Join(home, "corpus"), "~/corpus"},
		{home, "~"},
		{"/elsewhere/corpus", "/elsewhere/corpus"},
	}
	for _, tt := range tests {
		if got := CompressHome(tt.in); got != tt.want {
			t.Errorf("CompressHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
