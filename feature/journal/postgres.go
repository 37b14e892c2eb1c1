package journal

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the postgres driver.
	_ "github.com/lib/pq"

	"github.com/hupe1980/graphmesh/event"
)

// PostgresStore persists journal records in a PostgreSQL table, one row per
// record, ordered by an append sequence.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection and ensures the journal table exists.
func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.ensureSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

// NewPostgresStoreFromDB wraps an existing connection pool.
func NewPostgresStoreFromDB(db *sql.DB) (*PostgresStore, error) {
	store := &PostgresStore{db: db}
	if err := store.ensureSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS run_journal (
			seq       BIGSERIAL PRIMARY KEY,
			run_id    TEXT        NOT NULL,
			stage     TEXT        NOT NULL,
			scope_id  TEXT        NOT NULL,
			parent_id TEXT,
			time      TIMESTAMPTZ NOT NULL,
			payload   JSONB
		);
		CREATE INDEX IF NOT EXISTS run_journal_run_idx ON run_journal (run_id, seq);
	`)
	if err != nil {
		return fmt.Errorf("ensure journal schema: %w", err)
	}
	return nil
}

// Append inserts one record.
func (s *PostgresStore) Append(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO run_journal (run_id, stage, scope_id, parent_id, time, payload)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
	`, rec.RunID, string(rec.Stage), rec.ScopeID, rec.ParentID, rec.Time, []byte(rec.Payload))
	if err != nil {
		return fmt.Errorf("append journal record: %w", err)
	}
	return nil
}

// Records returns a run's record stream in append order.
func (s *PostgresStore) Records(ctx context.Context, runID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, stage, scope_id, COALESCE(parent_id, ''), time, COALESCE(payload, 'null'::jsonb)
		FROM run_journal
		WHERE run_id = $1
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query journal records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var stage string
		var payload []byte
		if err := rows.Scan(&rec.RunID, &stage, &rec.ScopeID, &rec.ParentID, &rec.Time, &payload); err != nil {
			return nil, fmt.Errorf("scan journal record: %w", err)
		}
		rec.Stage = event.Stage(stage)
		rec.Payload = payload
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error { return s.db.Close() }
