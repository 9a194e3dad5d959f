package record

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// StructuralError reports a record file that cannot be read as a record at
// all. Such files are excluded from aggregate counts.
type StructuralError struct {
	Path string
	Err  error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: %v", filepath.Base(e.Path), e.Err)
}

func (e *StructuralError) Unwrap() error { return e.Err }

// Load reads and decodes one record file.
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &StructuralError{Path: path, Err: err}
	}
	return Decode(path, data)
}

// Decode parses a record document. path is only used for error reporting.
func Decode(path string, data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &StructuralError{Path: path, Err: fmt.Errorf("parse record: %w", err)}
	}
	return &rec, nil
}

// Encode renders rec as indented JSON with a trailing newline.
func Encode(rec *Record) ([]byte, error) {
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return append(b, '\n'), nil
}

// Save replaces the record file at path. The document is serialized in memory
// first and swapped in with a same-directory rename, so readers see either the
// previous or the new version.
func Save(path string, rec *Record) error {
	b, err := Encode(rec)
	if err != nil {
		return err
	}
	if err := WriteFile(path, b); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// WriteFile replaces path with data through a same-directory temp file and
// rename. An existing file's permissions are kept.
func WriteFile(path string, data []byte) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	return writeFileAtomic(path, data, mode)
}

func writeFileAtomic(path string, data []byte, mode fs.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp_record_*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Clone returns a deep copy of rec.
func (r *Record) Clone() (*Record, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("clone record: %w", err)
	}
	var out Record
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("clone record: %w", err)
	}
	return &out, nil
}
