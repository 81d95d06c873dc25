package datastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aleister1102/isolatedaudit/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Batch statuses.
const (
	BatchStatusCompleted = "COMPLETED"
	BatchStatusPartial   = "PARTIAL"
	BatchStatusAborted   = "ABORTED"
	BatchStatusCancelled = "CANCELLED"
)

// BatchRecord is one invocation of the harness and the results it produced.
type BatchRecord struct {
	ID           string
	URL          string
	NumberOfRuns int
	Patterns     []string
	StartedAt    time.Time
	FinishedAt   time.Time
	Status       string
	CSVPath      string
	Failures     int
	Results      []models.AuditResult
}

// BatchEntry is a batch as listed from history, without its runs.
type BatchEntry struct {
	ID           string
	URL          string
	NumberOfRuns int
	Patterns     []string
	StartedAt    time.Time
	FinishedAt   time.Time
	Status       string
	CSVPath      string
	Failures     int
	Rows         int
}

// HistoryStore keeps batches and their runs in a SQLite database.
type HistoryStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewHistoryStore opens (creating if needed) the database at path and ensures the schema.
func NewHistoryStore(path string, logger zerolog.Logger) (*HistoryStore, error) {
	moduleLogger := logger.With().Str("component", "HistoryStore").Logger()
	moduleLogger.Debug().Str("db_path", path).Msg("Initializing history database connection")

	dbDir := filepath.Dir(path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history database directory %s: %w", dbDir, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sql.Open failed for %s: %w", path, err)
	}
	// A single connection keeps sqlite writes serialized.
	db.SetMaxOpenConns(1)

	store := &HistoryStore{db: db, logger: moduleLogger}
	if err := store.InitSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *HistoryStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InitSchema creates the batches and runs tables if they don't already exist.
func (s *HistoryStore) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS batches (
		id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		number_of_runs INTEGER NOT NULL,
		patterns TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		status TEXT NOT NULL,
		csv_path TEXT,
		failures INTEGER DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		batch_id TEXT NOT NULL REFERENCES batches(id),
		position INTEGER NOT NULL,
		pattern TEXT NOT NULL,
		repetition INTEGER NOT NULL,
		first_contentful_paint TEXT NOT NULL,
		largest_contentful_paint TEXT NOT NULL,
		speed_index TEXT NOT NULL,
		max_potential_fid TEXT NOT NULL,
		cumulative_layout_shift TEXT NOT NULL,
		total_blocking_time TEXT NOT NULL,
		time_to_interactive TEXT NOT NULL,
		audited_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_batch ON runs(batch_id, position);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		s.logger.Error().Err(err).Msg("Failed to initialize history schema")
		return err
	}
	return nil
}

// RecordBatch stores the batch row and one row per result in a single
// transaction. An empty ID is replaced by a new UUID, which is returned.
func (s *HistoryStore) RecordBatch(ctx context.Context, batch BatchRecord) (id string, err error) {
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}

	patternsJSON, err := json.Marshal(batch.Patterns)
	if err != nil {
		return "", fmt.Errorf("failed to marshal patterns: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO batches (id, url, number_of_runs, patterns, started_at, finished_at, status, csv_path, failures) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		batch.ID, batch.URL, batch.NumberOfRuns, string(patternsJSON),
		batch.StartedAt.UnixMilli(), batch.FinishedAt.UnixMilli(), batch.Status,
		sql.NullString{String: batch.CSVPath, Valid: batch.CSVPath != ""}, batch.Failures,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert batch %s: %w", batch.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO runs (batch_id, position, pattern, repetition, first_contentful_paint, largest_contentful_paint, speed_index, max_potential_fid, cumulative_layout_shift, total_blocking_time, time_to_interactive, audited_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare run insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range batch.Results {
		_, err = stmt.ExecContext(ctx,
			batch.ID, i+1, r.Pattern, r.Repetition,
			r.FirstContentfulPaint, r.LargestContentfulPaint, r.SpeedIndex, r.MaxPotentialFID,
			r.CumulativeLayoutShift, r.TotalBlockingTime, r.TimeToInteractive,
			r.AuditedAt.UnixMilli(),
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert run %d of batch %s: %w", i+1, batch.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit batch %s: %w", batch.ID, err)
	}

	s.logger.Info().Str("batch_id", batch.ID).Int("runs", len(batch.Results)).Str("status", batch.Status).Msg("Recorded batch in history")
	return batch.ID, nil
}

// ListBatches returns the most recent batches first.
func (s *HistoryStore) ListBatches(ctx context.Context, limit int) ([]BatchEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.url, b.number_of_runs, b.patterns, b.started_at, b.finished_at, b.status,
		       COALESCE(b.csv_path, ''), b.failures, COUNT(r.id)
		FROM batches b LEFT JOIN runs r ON r.batch_id = b.id
		GROUP BY b.id
		ORDER BY b.started_at DESC, b.rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	var entries []BatchEntry
	for rows.Next() {
		var (
			e            BatchEntry
			patternsJSON string
			started      int64
			finished     int64
		)
		if err := rows.Scan(&e.ID, &e.URL, &e.NumberOfRuns, &patternsJSON, &started, &finished, &e.Status, &e.CSVPath, &e.Failures, &e.Rows); err != nil {
			return nil, fmt.Errorf("failed to scan batch row: %w", err)
		}
		if err := json.Unmarshal([]byte(patternsJSON), &e.Patterns); err != nil {
			return nil, fmt.Errorf("failed to decode patterns of batch %s: %w", e.ID, err)
		}
		e.StartedAt = time.UnixMilli(started).UTC()
		e.FinishedAt = time.UnixMilli(finished).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// BatchResults returns the stored runs of a batch in their original order.
func (s *HistoryStore) BatchResults(ctx context.Context, batchID string) ([]models.AuditResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.url, r.pattern, r.repetition, r.first_contentful_paint, r.largest_contentful_paint,
		       r.speed_index, r.max_potential_fid, r.cumulative_layout_shift, r.total_blocking_time,
		       r.time_to_interactive, r.audited_at
		FROM runs r JOIN batches b ON b.id = r.batch_id
		WHERE r.batch_id = ?
		ORDER BY r.position`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs of batch %s: %w", batchID, err)
	}
	defer rows.Close()

	var results []models.AuditResult
	for rows.Next() {
		var (
			r         models.AuditResult
			auditedAt int64
		)
		if err := rows.Scan(&r.URL, &r.Pattern, &r.Repetition, &r.FirstContentfulPaint, &r.LargestContentfulPaint,
			&r.SpeedIndex, &r.MaxPotentialFID, &r.CumulativeLayoutShift, &r.TotalBlockingTime,
			&r.TimeToInteractive, &auditedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		r.AuditedAt = time.UnixMilli(auditedAt).UTC()
		results = append(results, r)
	}
	return results, rows.Err()
}
