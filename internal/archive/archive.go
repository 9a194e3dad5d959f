// Package archive keeps zstd-compressed copies of record files taken before a
// repair overwrites them, grouped into one backup set per repair run.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/suykerbuyk/padroles/internal/record"
)

const ext = ".zst"

// idLayout names a backup set after the UTC start time of its run.
const idLayout = "20060102-150405.000"

// ErrNoSet is returned when a backup set ID does not exist.
var ErrNoSet = errors.New("no such backup set")

// Set is one directory of compressed record copies.
type Set struct {
	ID  string
	Dir string
}

// NewSet returns the backup set for a run started at now. The directory is
// created lazily by the first Backup.
func NewSet(backupDir string, now time.Time) Set {
	id := now.UTC().Format(idLayout)
	return Set{ID: id, Dir: filepath.Join(backupDir, id)}
}

// Open returns an existing backup set.
func Open(backupDir, id string) (Set, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return Set{}, fmt.Errorf("%w: %q", ErrNoSet, id)
	}
	s := Set{ID: id, Dir: filepath.Join(backupDir, id)}
	info, err := os.Stat(s.Dir)
	if err != nil || !info.IsDir() {
		return Set{}, fmt.Errorf("%w: %s", ErrNoSet, id)
	}
	return s, nil
}

// List returns the backup sets under backupDir, oldest first. A missing
// backupDir yields no sets.
func List(backupDir string) ([]Set, error) {
	entries, err := os.ReadDir(backupDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	var sets []Set
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := time.Parse(idLayout, e.Name()); err != nil {
			continue
		}
		sets = append(sets, Set{ID: e.Name(), Dir: filepath.Join(backupDir, e.Name())})
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].ID < sets[j].ID })
	return sets, nil
}

// Path returns where the backup of the record file name is stored.
func (s Set) Path(name string) string {
	return filepath.Join(s.Dir, filepath.Base(name)+ext)
}

// Backup compresses srcPath into the set and returns the backup path.
// Concurrent calls for distinct files are safe.
func (s Set) Backup(srcPath string) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	destPath := s.Path(srcPath)
	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}
	defer dest.Close()

	encoder, err := zstd.NewWriter(dest)
	if err != nil {
		return "", fmt.Errorf("create zstd encoder: %w", err)
	}

	if _, err := io.Copy(encoder, src); err != nil {
		encoder.Close()
		return "", fmt.Errorf("compress: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("finalize compression: %w", err)
	}

	return destPath, nil
}

// Files returns the record file names held by the set, sorted.
func (s Set) Files() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("read backup set: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(names)
	return names, nil
}

// Read returns the decompressed backup of the record file name.
func (s Set) Read(name string) ([]byte, error) {
	src, err := os.Open(s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("open backup: %w", err)
	}
	defer src.Close()

	decoder, err := zstd.NewReader(src)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer decoder.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, decoder); err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return buf.Bytes(), nil
}

// Restore writes every file in the set back into destDir, replacing the
// current versions. It returns the restored names.
func (s Set) Restore(destDir string) ([]string, error) {
	names, err := s.Files()
	if err != nil {
		return nil, err
	}
	for i, name := range names {
		data, err := s.Read(name)
		if err != nil {
			return names[:i], fmt.Errorf("%s: %w", name, err)
		}
		if err := record.WriteFile(filepath.Join(destDir, name), data); err != nil {
			return names[:i], fmt.Errorf("restore %s: %w", name, err)
		}
	}
	return names, nil
}
