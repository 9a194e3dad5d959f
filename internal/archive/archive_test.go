package archive

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestBackupRestoreRoundTrip(t *testing.T) {
	corpusDir := t.TempDir()
	backupDir := t.TempDir()

	original := `{"id": "conv-1", "messages": [{"role": "user", "content": "hello"}]}` + "\n"
	srcPath := filepath.Join(corpusDir, "conv-1.json")
	if err := os.WriteFile(srcPath, []byte(original), 0o600); err != nil {
		t.Fatal(err)
	}

	set := NewSet(backupDir, time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC))
	if set.ID != "20261015-093000.000" {
		t.Errorf("ID = %q", set.ID)
	}

	bakPath, err := set.Backup(srcPath)
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if want := filepath.Join(backupDir, set.ID, "conv-1.json.zst"); bakPath != want {
		t.Errorf("backup path = %q, want %q", bakPath, want)
	}

	// Simulate the repair overwrite.
	if err := os.WriteFile(srcPath, []byte(`{"id": "conv-1"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	opened, err := Open(backupDir, set.ID)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	names, err := opened.Restore(corpusDir)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if len(names) != 1 || names[0] != "conv-1.json" {
		t.Errorf("restored = %v", names)
	}

	got, err := os.ReadFile(srcPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != original {
		t.Errorf("restored content mismatch\ngot:  %q\nwant: %q", got, original)
	}
	info, _ := os.Stat(srcPath)
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestList(t *testing.T) {
	backupDir := t.TempDir()

	sets, err := List(filepath.Join(backupDir, "missing"))
	if err != nil || len(sets) != 0 {
		t.Fatalf("List(missing) = %v, %v", sets, err)
	}

	for _, name := range []string{"20261015-100000.000", "20261014-100000.000", "not-a-set"} {
		if err := os.Mkdir(filepath.Join(backupDir, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	sets, err = List(backupDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(sets) != 2 || sets[0].ID != "20261014-100000.000" || sets[1].ID != "20261015-100000.000" {
		t.Errorf("List = %+v", sets)
	}
}

func TestOpen_Unknown(t *testing.T) {
	backupDir := t.TempDir()
	for _, id := range []string{"", "..", "nope", "a/b"} {
		if _, err := Open(backupDir, id); !errors.Is(err, ErrNoSet) {
			t.Errorf("Open(%q) err = %v, want ErrNoSet", id, err)
		}
	}
}

func TestFiles_SkipsForeignEntries(t *testing.T) {
	set := NewSet(t.TempDir(), time.Now())
	if err := os.MkdirAll(set.Dir, 0o755); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(set.Dir, "b.json.zst"), nil, 0o644)
	os.WriteFile(filepath.Join(set.Dir, "a.json.zst"), nil, 0o644)
	os.WriteFile(filepath.Join(set.Dir, "notes.txt"), nil, 0o644)

	names, err := set.Files()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "a.json" || names[1] != "b.json" {
		t.Errorf("Files = %v", names)
	}
}
