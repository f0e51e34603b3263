// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps an optional SQLite ledger of flashcard runs.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/flashcard-engine/pkg/types"
)

// ErrNotFound is returned by Get for an unknown run ID.
var ErrNotFound = errors.New("run not found")

// Recorder is the part of Store the pipeline depends on.
type Recorder interface {
	Record(ctx context.Context, rec types.RunRecord) error
}

// Store manages the run ledger database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the ledger at path, creating its parent
// directory and the schema if needed.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			document_name TEXT NOT NULL,
			document_path TEXT NOT NULL,
			chunks INTEGER NOT NULL,
			state TEXT NOT NULL,
			failed_stage TEXT,
			reason TEXT,
			output_path TEXT,
			model TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts rec, replacing an earlier record with the same ID.
func (s *Store) Record(ctx context.Context, rec types.RunRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, document_name, document_path, chunks, state,
			failed_stage, reason, output_path, model, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_name = excluded.document_name,
			document_path = excluded.document_path,
			chunks = excluded.chunks,
			state = excluded.state,
			failed_stage = excluded.failed_stage,
			reason = excluded.reason,
			output_path = excluded.output_path,
			model = excluded.model,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at`,
		rec.ID, rec.Document.Name, rec.Document.Path, rec.Chunks, string(rec.State),
		string(rec.FailedStage), rec.Reason, rec.OutputPath, rec.Model,
		formatTime(rec.StartedAt), formatTime(rec.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", rec.ID, err)
	}
	return nil
}

// List returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]types.RunRecord, error) {
	query := `SELECT id, document_name, document_path, chunks, state, failed_stage,
			reason, output_path, model, started_at, finished_at
		FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var records []types.RunRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get returns the run with the given ID.
func (s *Store) Get(ctx context.Context, id string) (types.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, document_name, document_path, chunks,
			state, failed_stage, reason, output_path, model, started_at, finished_at
		FROM runs WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.RunRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, err
}

// ExportYAML writes up to limit runs, newest first, as a YAML sequence.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, limit int) error {
	records, err := s.List(ctx, limit)
	if err != nil {
		return err
	}
	if records == nil {
		records = []types.RunRecord{}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (types.RunRecord, error) {
	var (
		rec                             types.RunRecord
		state                           string
		failedStage, reason, out, model sql.NullString
		startedAt, finishedAt           string
	)
	err := sc.Scan(&rec.ID, &rec.Document.Name, &rec.Document.Path, &rec.Chunks,
		&state, &failedStage, &reason, &out, &model, &startedAt, &finishedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("scanning run: %w", err)
	}

	rec.State = types.RunState(state)
	rec.FailedStage = types.RunState(failedStage.String)
	rec.Reason = reason.String
	rec.OutputPath = out.String
	rec.Model = model.String
	if rec.StartedAt, err = parseTime(startedAt); err != nil {
		return rec, err
	}
	if rec.FinishedAt, err = parseTime(finishedAt); err != nil {
		return rec, err
	}
	return rec, nil
}

// timeLayout has fixed-width fractional seconds so stored timestamps sort
// lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// LazyStore opens the ledger on the first Record call, so runs that end
// before anything is recorded never create the database file.
type LazyStore struct {
	path  string
	store *Store
}

// NewLazyStore returns a Recorder for the ledger at path without touching disk.
func NewLazyStore(path string) *LazyStore {
	return &LazyStore{path: path}
}

// Record opens the ledger if needed and records rec.
func (l *LazyStore) Record(ctx context.Context, rec types.RunRecord) error {
	if l.store == nil {
		s, err := NewStore(l.path)
		if err != nil {
			return err
		}
		l.store = s
	}
	return l.store.Record(ctx, rec)
}

// Close releases the database connection if it was opened.
func (l *LazyStore) Close() error {
	if l.store == nil {
		return nil
	}
	return l.store.Close()
}
