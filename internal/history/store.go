// Package history keeps a SQLite record of completed crack runs.
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
	"github.com/oklog/ulid/v2"
	"github.com/tidwall/gjson"
	_ "modernc.org/sqlite" // SQLite driver
)

// ErrNotFound is returned by Get for an unknown run id.
var ErrNotFound = errors.New("run not found")

// Run is one stored crack result. Report holds the JSON document produced by the
// reporter; the other fields are extracted from it when the run is recorded.
type Run struct {
	ID         string
	SessionID  string
	RecordedAt time.Time
	Source     string
	Mode       string
	Key        int
	Score      int
	Report     []byte
}

// Store is a SQLite-backed run history. A Store is safe for concurrent use.
type Store struct {
	db         *sql.DB
	sessionID  string
	insertStmt *sql.Stmt
}

// Open creates or opens the history database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	store := &Store{db: db, sessionID: uuid.NewString()}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	stmt, err := db.Prepare(`
		INSERT INTO runs (id, session_id, recorded_at, source, mode, key, score, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare statement: %w", err)
	}
	store.insertStmt = stmt

	return store, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		recorded_at DATETIME NOT NULL,
		source TEXT,
		mode TEXT,
		key INTEGER NOT NULL,
		score INTEGER NOT NULL,
		report TEXT NOT NULL -- JSON
	);

	CREATE INDEX IF NOT EXISTS idx_runs_session ON runs(session_id);
	CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// SessionID identifies the process that opened the store.
func (s *Store) SessionID() string {
	return s.sessionID
}

// Record stores a rendered JSON report under runID and returns the stored run. A new
// ULID is generated when runID is empty.
func (s *Store) Record(ctx context.Context, runID string, report []byte) (Run, error) {
	if !gjson.ValidBytes(report) {
		return Run{}, errors.New("report is not valid JSON")
	}
	fields := gjson.GetManyBytes(report, "source", "mode", "key", "score")
	if !fields[2].Exists() || !fields[3].Exists() {
		return Run{}, errors.New("report is missing key or score")
	}

	if runID == "" {
		runID = ulid.Make().String()
	}
	run := Run{
		ID:         runID,
		SessionID:  s.sessionID,
		RecordedAt: time.Now().UTC(),
		Source:     fields[0].String(),
		Mode:       fields[1].String(),
		Key:        int(fields[2].Int()),
		Score:      int(fields[3].Int()),
		Report:     append([]byte(nil), report...),
	}

	if _, err := s.insertStmt.ExecContext(ctx,
		run.ID,
		run.SessionID,
		run.RecordedAt,
		run.Source,
		run.Mode,
		run.Key,
		run.Score,
		string(run.Report),
	); err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// List returns up to limit runs, newest first. A limit of zero or less returns all runs.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, session_id, recorded_at, source, mode, key, score, report FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Get returns the run with the given id.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, recorded_at, source, mode, key, score, report FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run    Run
		source sql.NullString
		mode   sql.NullString
		report string
	)
	if err := row.Scan(&run.ID, &run.SessionID, &run.RecordedAt, &source, &mode, &run.Key, &run.Score, &report); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Source = source.String
	run.Mode = mode.String
	run.Report = []byte(report)
	return run, nil
}

// Close releases the prepared statement and database handle.
func (s *Store) Close() error {
	if s.insertStmt != nil {
		_ = s.insertStmt.Close()
	}
	return s.db.Close()
}
