// =============================================================================
// Shelf Inventory Reconciler - Run History Store
// =============================================================================
//
// This module records completed inventory runs in SQLite.
//
// Every generated report is summarized as a Run row so past inventories of
// a shelf range can be listed and compared. Full item lists are not kept;
// the exported workbook is the durable artifact and its path is recorded.
//
// TABLES:
//   runs : One row per generated report, counts stored as JSON
//
// CONCURRENCY:
//   Guarded by a sync.RWMutex. SQLite is opened in WAL mode so readers do
//   not block the single writer.
//
// USAGE:
//   store, err := history.Open("./shelf-inventory.db")
//   defer store.Close()
//   err = store.Save(ctx, history.NewRun(data, outputPath))
//
// =============================================================================

package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ginjaninja78/shelf-inventory/internal/report"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 50

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run summarizes one generated report.
type Run struct {
	ID           string        `json:"id"`
	CreatedAt    time.Time     `json:"createdAt"`
	Library      string        `json:"library"`
	Locations    []string      `json:"locations"`
	Scheme       string        `json:"scheme"`
	ProblemMode  string        `json:"problemMode"`
	ItemCount    int           `json:"itemCount"`
	ProblemCount int           `json:"problemCount"`
	Counts       report.Counts `json:"counts"`
	OutputFile   string        `json:"outputFile,omitempty"`
}

// NewRun summarizes a report. outputFile may be empty when no workbook was
// written.
func NewRun(data *report.ReportData, outputFile string) Run {
	return Run{
		ID:           data.ID,
		CreatedAt:    data.GeneratedAt.UTC(),
		Library:      data.Parameters.Library,
		Locations:    append([]string(nil), data.Parameters.Locations...),
		Scheme:       string(data.Parameters.Scheme),
		ProblemMode:  string(data.Parameters.ProblemMode),
		ItemCount:    data.Counts.Total,
		ProblemCount: data.Counts.WithProblems,
		Counts:       data.Counts,
		OutputFile:   outputFile,
	}
}

// Store persists runs in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the history database at path.
// Use ":memory:" for an in-memory database.
func Open(path string) (*Store, error) {
	dsn := path + "?_foreign_keys=on&_journal_mode=WAL"
	if path == ":memory:" {
		dsn = path
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to :memory: is a separate database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		library TEXT NOT NULL,
		locations TEXT NOT NULL,
		scheme TEXT NOT NULL,
		problem_mode TEXT NOT NULL,
		item_count INTEGER NOT NULL,
		problem_count INTEGER NOT NULL,
		counts_json TEXT NOT NULL,
		output_file TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at
		ON runs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_library
		ON runs(library, created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save inserts a run. Saving the same ID twice is an error.
func (s *Store) Save(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	countsJSON, err := json.Marshal(run.Counts)
	if err != nil {
		return fmt.Errorf("failed to encode counts: %w", err)
	}

	query := `
		INSERT INTO runs (id, created_at, library, locations, scheme, problem_mode,
			item_count, problem_count, counts_json, output_file)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		run.ID, run.CreatedAt.UTC().Format(timeLayout), run.Library,
		strings.Join(run.Locations, ","), run.Scheme, run.ProblemMode,
		run.ItemCount, run.ProblemCount, string(countsJSON), nullString(run.OutputFile),
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

const selectRun = `SELECT id, created_at, library, locations, scheme, problem_mode,
	item_count, problem_count, counts_json, output_file FROM runs`

// Get retrieves a run by ID.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, err := scanRun(s.db.QueryRowContext(ctx, selectRun+" WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// List returns the most recent runs, newest first. A non-empty library
// restricts the result to that library.
func (s *Store) List(ctx context.Context, library string, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultListLimit
	}

	var (
		rows *sql.Rows
		err  error
	)
	if library == "" {
		rows, err = s.db.QueryContext(ctx, selectRun+" ORDER BY created_at DESC LIMIT ?", limit)
	} else {
		rows, err = s.db.QueryContext(ctx, selectRun+" WHERE library = ? ORDER BY created_at DESC LIMIT ?", library, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Delete removes a run.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run        Run
		createdAt  string
		locations  string
		countsJSON string
		outputFile sql.NullString
	)
	if err := row.Scan(&run.ID, &createdAt, &run.Library, &locations, &run.Scheme,
		&run.ProblemMode, &run.ItemCount, &run.ProblemCount, &countsJSON, &outputFile); err != nil {
		return nil, err
	}

	run.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	if locations != "" {
		run.Locations = strings.Split(locations, ",")
	}
	run.OutputFile = outputFile.String
	if err := json.Unmarshal([]byte(countsJSON), &run.Counts); err != nil {
		return nil, fmt.Errorf("failed to decode counts of run %s: %w", run.ID, err)
	}
	return &run, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
