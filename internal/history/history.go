// Package history keeps a SQLite ledger of audit results so corpus health
// can be compared across runs.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/suykerbuyk/padroles/internal/audit"
)

// Run kinds.
const (
	KindAudit  = "audit"
	KindRepair = "repair"
)

// ErrNotFound is returned by Get for an unknown run ID.
var ErrNotFound = errors.New("run not found")

// Run is one recorded audit. For repair runs the counts are those of the
// audit taken after the repair was written.
type Run struct {
	ID        string                `json:"id"`
	Kind      string                `json:"kind"`
	Root      string                `json:"root"`
	At        time.Time             `json:"at"`
	Total     int                   `json:"total"`
	Errors    int                   `json:"errors"`
	Changed   int                   `json:"changed,omitempty"`
	BackupSet string                `json:"backupSet,omitempty"`
	Counts    map[audit.Outcome]int `json:"counts"`
}

// Store is an open ledger.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the ledger at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS runs (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		kind TEXT NOT NULL,
		root TEXT NOT NULL,
		at_ns INTEGER NOT NULL,
		total INTEGER NOT NULL,
		errors INTEGER NOT NULL,
		changed INTEGER NOT NULL DEFAULT 0,
		backup_set TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_runs_root ON runs(root);

	CREATE TABLE IF NOT EXISTS run_counts (
		run_id TEXT NOT NULL REFERENCES runs(id),
		outcome TEXT NOT NULL,
		count INTEGER NOT NULL,
		PRIMARY KEY (run_id, outcome)
	);
	`)
	return err
}

// Add records rep under a fresh run ID and returns the stored run.
func (s *Store) Add(ctx context.Context, kind string, rep audit.Report, changed int, backupSet string, at time.Time) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		Kind:      kind,
		Root:      rep.Root,
		At:        at.UTC(),
		Total:     rep.Total,
		Errors:    len(rep.Errors),
		Changed:   changed,
		BackupSet: backupSet,
		Counts:    make(map[audit.Outcome]int, len(audit.Outcomes)),
	}
	for _, o := range audit.Outcomes {
		run.Counts[o] = rep.Counts[o]
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, kind, root, at_ns, total, errors, changed, backup_set) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Kind, run.Root, run.At.UnixNano(), run.Total, run.Errors, run.Changed, run.BackupSet,
	); err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	for _, o := range audit.Outcomes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_counts (run_id, outcome, count) VALUES (?, ?, ?)`,
			run.ID, string(o), run.Counts[o],
		); err != nil {
			return Run{}, fmt.Errorf("insert counts: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit: %w", err)
	}
	return run, nil
}

// List returns up to limit runs, newest first. An empty root lists every
// corpus; limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, root string, limit int) ([]Run, error) {
	query := `SELECT id, kind, root, at_ns, total, errors, changed, backup_set FROM runs`
	var args []any
	if root != "" {
		query += ` WHERE root = ?`
		args = append(args, root)
	}
	query += ` ORDER BY seq DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range runs {
		if runs[i].Counts, err = s.counts(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// Get returns one run by ID.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, root, at_ns, total, errors, changed, backup_set FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Run{}, err
	}
	if run.Counts, err = s.counts(ctx, id); err != nil {
		return Run{}, err
	}
	return run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run Run
		ns  int64
	)
	if err := sc.Scan(&run.ID, &run.Kind, &run.Root, &ns, &run.Total, &run.Errors, &run.Changed, &run.BackupSet); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.At = time.Unix(0, ns).UTC()
	return run, nil
}

func (s *Store) counts(ctx context.Context, id string) (map[audit.Outcome]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT outcome, count FROM run_counts WHERE run_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("read counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[audit.Outcome]int, len(audit.Outcomes))
	for rows.Next() {
		var (
			o string
			n int
		)
		if err := rows.Scan(&o, &n); err != nil {
			return nil, fmt.Errorf("scan counts: %w", err)
		}
		counts[audit.Outcome(o)] = n
	}
	return counts, rows.Err()
}
