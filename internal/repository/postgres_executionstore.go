package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"n8n-copilot/backend/pkg/models"
)

// PostgresExecutionStore is a PostgreSQL implementation of the ExecutionStore
// interface, backed by the n8n_execution_logs table.
type PostgresExecutionStore struct {
	db *pgxpool.Pool
}

// NewPostgresExecutionStore creates a new PostgresExecutionStore.
func NewPostgresExecutionStore(db *pgxpool.Pool) *PostgresExecutionStore {
	return &PostgresExecutionStore{db: db}
}

// List returns up to limit execution logs ordered newest-first.
func (s *PostgresExecutionStore) List(ctx context.Context, limit int) ([]models.ExecutionLog, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, execution_id, workflow_id, workflow_name, status, finished,
		       started_at, finished_at, duration_ms, mode, node_count,
		       error_message, execution_data, workflow_data, created_at
		FROM n8n_execution_logs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.ExecutionLog
	for rows.Next() {
		var l models.ExecutionLog
		err := rows.Scan(&l.ID, &l.ExecutionID, &l.WorkflowID, &l.WorkflowName,
			&l.Status, &l.Finished, &l.StartedAt, &l.FinishedAt, &l.DurationMs,
			&l.Mode, &l.NodeCount, &l.ErrorMessage, &l.ExecutionData,
			&l.WorkflowData, &l.CreatedAt)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// StatusDurations returns the (status, duration) projection of every row.
func (s *PostgresExecutionStore) StatusDurations(ctx context.Context) ([]models.StatusDuration, error) {
	rows, err := s.db.Query(ctx, "SELECT status, duration_ms FROM n8n_execution_logs")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.StatusDuration
	for rows.Next() {
		var sd models.StatusDuration
		if err := rows.Scan(&sd.Status, &sd.DurationMs); err != nil {
			return nil, err
		}
		out = append(out, sd)
	}
	return out, rows.Err()
}

// StatusTimestamps returns the (status, created_at) projection of rows created
// at or after since, ordered ascending.
func (s *PostgresExecutionStore) StatusTimestamps(ctx context.Context, since time.Time) ([]models.StatusTimestamp, error) {
	rows, err := s.db.Query(ctx, `
		SELECT status, created_at FROM n8n_execution_logs
		WHERE created_at >= $1
		ORDER BY created_at ASC`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.StatusTimestamp
	for rows.Next() {
		var st models.StatusTimestamp
		if err := rows.Scan(&st.Status, &st.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// Insert writes a single execution log row.
func (s *PostgresExecutionStore) Insert(ctx context.Context, l *models.ExecutionLog) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO n8n_execution_logs
			(id, execution_id, workflow_id, workflow_name, status, finished,
			 started_at, finished_at, duration_ms, mode, node_count,
			 error_message, execution_data, workflow_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		l.ID, l.ExecutionID, l.WorkflowID, l.WorkflowName, l.Status, l.Finished,
		l.StartedAt, l.FinishedAt, l.DurationMs, l.Mode, l.NodeCount,
		l.ErrorMessage, l.ExecutionData, l.WorkflowData, l.CreatedAt)
	return err
}

// Schema is the DDL for the execution log table, applied by cmd/seed and by
// the repository integration test. Production tables are managed by the
// ingestion side; this exists for local development.
const Schema = `
CREATE TABLE IF NOT EXISTS n8n_execution_logs (
	id UUID PRIMARY KEY,
	execution_id TEXT NOT NULL,
	workflow_id TEXT NOT NULL,
	workflow_name TEXT NOT NULL,
	status TEXT NOT NULL,
	finished BOOLEAN NOT NULL DEFAULT FALSE,
	started_at TIMESTAMPTZ,
	finished_at TIMESTAMPTZ,
	duration_ms BIGINT,
	mode TEXT,
	node_count INT,
	error_message TEXT,
	execution_data JSONB,
	workflow_data JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_execution_logs_created_at ON n8n_execution_logs (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_execution_logs_status ON n8n_execution_logs (status);
`
