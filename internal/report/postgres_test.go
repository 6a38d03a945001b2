package report

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresSink) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	fixed := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	sink := &PostgresSink{db: db, now: func() time.Time { return fixed }}
	return db, mock, sink
}

func TestNewPostgresSink(t *testing.T) {
	t.Run("successful connection", func(t *testing.T) {
		t.Skip("Integration test - requires real database")
	})

	t.Run("connection failure", func(t *testing.T) {
		_, err := NewPostgresSink(context.Background(), "invalid connection string")
		assert.Error(t, err)
	})
}

func TestPostgresSink_EnsureSchema(t *testing.T) {
	db, mock, sink := setupMockDB(t)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS benchmark_samples").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, sink.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSink_Emit(t *testing.T) {
	db, mock, sink := setupMockDB(t)
	defer func() { _ = db.Close() }()

	env := NewEnvelope(testReport(), nil)

	mock.ExpectBegin()
	for i, s := range env.Samples {
		mock.ExpectExec("INSERT INTO benchmark_samples").
			WithArgs(sqlmock.AnyArg(), "headless", i, s.Operation, s.Duration, s.Degraded, true, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, sink.Emit(context.Background(), env))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSink_EmitRollsBack(t *testing.T) {
	db, mock, sink := setupMockDB(t)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO benchmark_samples").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO benchmark_samples").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := sink.Emit(context.Background(), NewEnvelope(testReport(), nil))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Render 500")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSink_EmitNoSamples(t *testing.T) {
	db, mock, sink := setupMockDB(t)
	defer func() { _ = db.Close() }()

	require.NoError(t, sink.Emit(context.Background(), ErrorEnvelope(errors.New("busy"))))
	assert.NoError(t, mock.ExpectationsWereMet())
}
