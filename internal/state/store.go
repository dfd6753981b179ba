package state

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Status is the outcome of an import.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Import is one version import of one run.
type Import struct {
	RunID        string    `json:"run_id"`
	Version      string    `json:"version"`
	Repo         string    `json:"repo"`
	Branch       string    `json:"branch"`
	Commit       string    `json:"commit"`
	Documents    int       `json:"documents"`
	Changed      int       `json:"changed"`
	Placeholders int       `json:"placeholders"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Status       Status    `json:"status"`
	Error        string    `json:"error,omitempty"`
}

// Duration returns how long the import took.
func (i Import) Duration() time.Duration { return i.FinishedAt.Sub(i.StartedAt) }

// Store implements the import history on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the database at path. Use MemoryPath for tests.
func Open(path string) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS imports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		version TEXT NOT NULL,
		repo TEXT NOT NULL,
		branch TEXT NOT NULL,
		commit_hash TEXT NOT NULL,
		documents INTEGER NOT NULL,
		changed INTEGER NOT NULL,
		placeholders INTEGER NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		status TEXT NOT NULL,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_imports_version ON imports(version, status);
	CREATE INDEX IF NOT EXISTS idx_imports_run ON imports(run_id);
	CREATE TABLE IF NOT EXISTS documents (
		version TEXT NOT NULL,
		path TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		PRIMARY KEY (version, path)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordImport appends an import to the history.
func (s *Store) RecordImport(ctx context.Context, imp Import) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO imports (run_id, version, repo, branch, commit_hash, documents, changed, placeholders, started_at, finished_at, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		imp.RunID, imp.Version, imp.Repo, imp.Branch, imp.Commit,
		imp.Documents, imp.Changed, imp.Placeholders,
		imp.StartedAt.UnixMilli(), imp.FinishedAt.UnixMilli(),
		string(imp.Status), imp.Error,
	)
	if err != nil {
		return fmt.Errorf("insert import: %w", err)
	}
	return nil
}

const importColumns = `run_id, version, repo, branch, commit_hash, documents, changed, placeholders, started_at, finished_at, status, error`

// LastImport returns the most recent import of version that was not skipped,
// whatever its outcome.
func (s *Store) LastImport(ctx context.Context, version string) (Import, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+importColumns+` FROM imports WHERE version = ? AND status != ? ORDER BY id DESC LIMIT 1`,
		version, string(StatusSkipped),
	)
	if err != nil {
		return Import{}, false, fmt.Errorf("query imports: %w", err)
	}
	defer rows.Close()

	imports, err := scanImports(rows)
	if err != nil || len(imports) == 0 {
		return Import{}, false, err
	}
	return imports[0], true, nil
}

// ListImports returns up to limit imports, newest first. A limit of zero or
// less returns the whole history.
func (s *Store) ListImports(ctx context.Context, limit int) ([]Import, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+importColumns+` FROM imports ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query imports: %w", err)
	}
	defer rows.Close()

	return scanImports(rows)
}

func scanImports(rows *sql.Rows) ([]Import, error) {
	var imports []Import
	for rows.Next() {
		var (
			imp               Import
			started, finished int64
			status            string
			errText           sql.NullString
		)
		err := rows.Scan(&imp.RunID, &imp.Version, &imp.Repo, &imp.Branch, &imp.Commit,
			&imp.Documents, &imp.Changed, &imp.Placeholders, &started, &finished, &status, &errText)
		if err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		imp.StartedAt = time.UnixMilli(started)
		imp.FinishedAt = time.UnixMilli(finished)
		imp.Status = Status(status)
		imp.Error = errText.String
		imports = append(imports, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return imports, nil
}
