package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"subgen/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; old databases must be deleted.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Record is one completed (or failed) pipeline run.
type Record struct {
	ID           int64
	RunID        string
	VideoPath    string
	SubtitlePath string
	VideoOutput  string
	Language     string
	Model        string
	State        string
	FailedStage  string
	ErrorMessage string
	SegmentCount int
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Store persists run outcomes in SQLite under the log directory.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.HistoryDBPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Add inserts a run record and returns it with its assigned identifier.
func (s *Store) Add(ctx context.Context, record Record) (Record, error) {
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (
            run_id, video_path, subtitle_path, video_output, language, model,
            state, failed_stage, error_message, segment_count, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.RunID,
		record.VideoPath,
		nullableString(record.SubtitlePath),
		nullableString(record.VideoOutput),
		nullableString(record.Language),
		nullableString(record.Model),
		record.State,
		nullableString(record.FailedStage),
		nullableString(record.ErrorMessage),
		record.SegmentCount,
		record.StartedAt.UTC().Format(time.RFC3339Nano),
		record.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Record{}, fmt.Errorf("last insert id: %w", err)
	}
	record.ID = id
	return record, nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, run_id, video_path, subtitle_path, video_output, language, model,
                state, failed_stage, error_message, segment_count, started_at, finished_at
         FROM runs ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetByRunID fetches one run by its identifier, or nil when absent.
func (s *Store) GetByRunID(ctx context.Context, runID string) (*Record, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, run_id, video_path, subtitle_path, video_output, language, model,
                state, failed_stage, error_message, segment_count, started_at, finished_at
         FROM runs WHERE run_id = ?`,
		runID,
	)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &record, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var record Record
	var subtitlePath, videoOutput, lang, model, failedStage, errorMessage sql.NullString
	var startedAt, finishedAt string

	err := row.Scan(
		&record.ID,
		&record.RunID,
		&record.VideoPath,
		&subtitlePath,
		&videoOutput,
		&lang,
		&model,
		&record.State,
		&failedStage,
		&errorMessage,
		&record.SegmentCount,
		&startedAt,
		&finishedAt,
	)
	if err != nil {
		return Record{}, err
	}

	record.SubtitlePath = subtitlePath.String
	record.VideoOutput = videoOutput.String
	record.Language = lang.String
	record.Model = model.String
	record.FailedStage = failedStage.String
	record.ErrorMessage = errorMessage.String
	if t, parseErr := time.Parse(time.RFC3339Nano, startedAt); parseErr == nil {
		record.StartedAt = t
	}
	if t, parseErr := time.Parse(time.RFC3339Nano, finishedAt); parseErr == nil {
		record.FinishedAt = t
	}
	return record, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
