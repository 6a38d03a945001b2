package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

const schema = `
	CREATE TABLE IF NOT EXISTS benchmark_samples (
		run_id      UUID NOT NULL,
		frontend    TEXT NOT NULL,
		position    INTEGER NOT NULL,
		operation   TEXT NOT NULL,
		duration_ms DOUBLE PRECISION NOT NULL,
		degraded    BOOLEAN NOT NULL DEFAULT FALSE,
		run_ok      BOOLEAN NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (run_id, position)
	)
`

// PostgresSink stores one row per sample, all rows of a run in one
// transaction.
type PostgresSink struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresSink(ctx context.Context, connectionString string) (*PostgresSink, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresSink{db: db, now: time.Now}, nil
}

func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create benchmark_samples: %w", err)
	}
	return nil
}

func (s *PostgresSink) Emit(ctx context.Context, env Envelope) error {
	if len(env.Samples) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	query := `
		INSERT INTO benchmark_samples (
			run_id, frontend, position, operation,
			duration_ms, degraded, run_ok, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	runID := uuid.New().String()
	recordedAt := s.now()
	for i, sample := range env.Samples {
		if _, err := tx.ExecContext(ctx, query,
			runID,
			env.Frontend,
			i,
			sample.Operation,
			sample.Duration,
			sample.Degraded,
			env.OK,
			recordedAt,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert sample %q: %w", sample.Operation, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit samples: %w", err)
	}
	return nil
}

func (s *PostgresSink) Close() error {
	return s.db.Close()
}
