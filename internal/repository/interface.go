package repository

import (
	"context"
	"time"

	"n8n-copilot/backend/pkg/models"
)

// ExecutionStore is a read-mostly interface over the execution log table.
// Rows are written by an external ingestion process; Insert exists for the
// seed command and for tests.
type ExecutionStore interface {
	// List returns up to limit execution logs ordered newest-first.
	List(ctx context.Context, limit int) ([]models.ExecutionLog, error)
	// StatusDurations returns the (status, duration) projection of every row.
	StatusDurations(ctx context.Context) ([]models.StatusDuration, error)
	// StatusTimestamps returns the (status, created_at) projection of rows
	// created at or after since, ordered ascending.
	StatusTimestamps(ctx context.Context, since time.Time) ([]models.StatusTimestamp, error)
	// Insert writes a single execution log row.
	Insert(ctx context.Context, log *models.ExecutionLog) error
}
