package test

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// binary is the path to the compiled padroles binary, set by TestMain.
var binary string

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(0)
	}

	tmpDir, err := os.MkdirTemp("", "padroles-integration-build-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "create temp dir: %v\n", err)
		os.Exit(1)
	}

	binary = filepath.Join(tmpDir, "padroles")
	cmd := exec.Command("go", "build", "-o", binary, "./cmd/padroles")
	// Test working dir is test/, so go up one level to project root
	cmd.Dir = filepath.Join("..")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "build padroles binary: %v\n", err)
		os.RemoveAll(tmpDir)
		os.Exit(1)
	}

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}

// --- Fixtures ---

// fixtureLegacy: shorthand PAD, unscored message, legacy role names on both sides.
const fixtureLegacy = `{
  "id": "conv-legacy",
  "source": "import-2024",
  "messages": [
    {"role": "user", "content": "It still doesn't work!!", "pad": {"p": 0.2, "a": 0.9, "d": 0.5}},
    {"role": "assistant", "content": "Sorry about that. Try the flag below."}
  ],
  "classification": {
    "emotionalTone": {"category": "serious", "confidence": 0.7, "alternative": null},
    "humanRole": {"distribution": {"information-seeker": 0.6, "critic": 0.4}, "confidence": 0.7, "alternative": null},
    "aiRole": {"distribution": {"expert-system": 1}, "confidence": 0.8, "alternative": null}
  }
}`

// fixtureBreakdown: long conversation with an all-zero AI distribution.
const fixtureBreakdown = `{
  "id": "conv-breakdown",
  "messages": [
    {"role": "user", "content": "one"}, {"role": "assistant", "content": "two"},
    {"role": "user", "content": "three"}, {"role": "assistant", "content": "four"},
    {"role": "user", "content": "five"}
  ],
  "classification": {
    "humanRole": {"distribution": {"seeker": 0.5, "sharer": 0.5}, "alternative": null},
    "aiRole": {"distribution": {"expert": 0, "advisor": 0, "facilitator": 0, "reflector": 0, "peer": 0, "affiliative": 0}, "alternative": null}
  }
}`

// fixtureNested: a whole record nested under classification.classification.
const fixtureNested = `{
  "id": "conv-nested",
  "messages": [{"role": "user", "content": "hi"}, {"role": "assistant", "content": "hello"}],
  "classification": {
    "id": "conv-nested",
    "classification": {
      "humanRole": {"distribution": {"seeker": 1}, "alternative": null},
      "aiRole": {"distribution": {"tutor": 1}, "alternative": null}
    }
  }
}`

// --- Helpers ---

func run(t *testing.T, env []string, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	cmd := exec.Command(binary, args...)
	cmd.Env = env
	var out, errOut strings.Builder
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		code = exitErr.ExitCode()
	default:
		t.Fatalf("run padroles %v: %v", args, err)
	}
	return out.String(), errOut.String(), code
}

func buildEnv(t *testing.T) []string {
	t.Helper()
	return []string{
		"HOME=" + t.TempDir(),
		"XDG_CONFIG_HOME=" + t.TempDir(),
		"PATH=" + os.Getenv("PATH"),
	}
}

func seed(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range map[string]string{
		"conv-legacy.json":    fixtureLegacy,
		"conv-breakdown.json": fixtureBreakdown,
		"conv-nested.json":    fixtureNested,
		"manifest.json":       `{"records": 3}`,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func auditCounts(t *testing.T, env []string, dir string) map[string]int {
	t.Helper()
	out, stderr, code := run(t, env, "audit", "--root", dir, "--json")
	if code != 0 {
		t.Fatalf("audit exit %d: %s", code, stderr)
	}
	var rep struct {
		Total  int            `json:"total"`
		Counts map[string]int `json:"counts"`
	}
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("audit json: %v\n%s", err, out)
	}
	return rep.Counts
}

// --- Tests ---

func TestAuditRepairCycle(t *testing.T) {
	env := buildEnv(t)
	dir := seed(t)

	before := auditCounts(t, env, dir)
	if before["incompletePAD"] != 3 {
		t.Errorf("incompletePAD before = %d, want 3 (%v)", before["incompletePAD"], before)
	}

	if _, _, code := run(t, env, "audit", "--root", dir, "--strict"); code != 3 {
		t.Errorf("strict audit exit = %d, want 3", code)
	}

	if _, stderr, code := run(t, env, "repair", "--root", dir); code != 0 {
		t.Fatalf("repair exit %d: %s", code, stderr)
	}

	after := auditCounts(t, env, dir)
	if after["valid"] != 3 {
		t.Errorf("valid after = %d, want 3 (%v)", after["valid"], after)
	}
	if _, _, code := run(t, env, "audit", "--root", dir, "--strict"); code != 0 {
		t.Errorf("strict audit after repair exit = %d, want 0", code)
	}

	// Unknown members survive the rewrite.
	data, err := os.ReadFile(filepath.Join(dir, "conv-legacy.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"source": "import-2024"`) {
		t.Errorf("source field lost:\n%s", data)
	}

	// The breakdown is kept, not smoothed over.
	data, err = os.ReadFile(filepath.Join(dir, "conv-breakdown.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"type": "non-grounding"`) {
		t.Errorf("breakdown diagnostic missing:\n%s", data)
	}

	// Repair is a fixed point.
	out, _, code := run(t, env, "repair", "--root", dir, "--json")
	if code != 0 {
		t.Fatalf("second repair exit %d", code)
	}
	if !strings.Contains(out, `"changed": 0`) {
		t.Errorf("second repair changed records:\n%s", out)
	}
}

func TestRepairDryRunLeavesCorpus(t *testing.T) {
	env := buildEnv(t)
	dir := seed(t)

	if _, stderr, code := run(t, env, "repair", "--root", dir, "--dry-run"); code != 0 {
		t.Fatalf("dry run exit %d: %s", code, stderr)
	}
	data, err := os.ReadFile(filepath.Join(dir, "conv-nested.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != fixtureNested {
		t.Error("dry run modified conv-nested.json")
	}
	if _, err := os.Stat(filepath.Join(dir, ".padroles", "backups")); !os.IsNotExist(err) {
		t.Error("dry run created a backup directory")
	}
}

func TestScoreFromStdin(t *testing.T) {
	env := buildEnv(t)
	cmd := exec.Command(binary, "score", "--role", "assistant")
	cmd.Env = env
	cmd.Stdin = strings.NewReader("This doesn't work!! Sorry about that.")
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	var v map[string]any
	if err := json.Unmarshal(out, &v); err != nil {
		t.Fatal(err)
	}
	if v["pleasure"] != 0.15 || v["arousal"] != 0.75 || v["dominance"] != 0.2 {
		t.Errorf("score = %v", v)
	}
}
