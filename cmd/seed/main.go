package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"n8n-copilot/backend/internal/config"
	"n8n-copilot/backend/internal/logging"
	"n8n-copilot/backend/internal/repository"
	"n8n-copilot/backend/pkg/models"
)

// Seeds the execution log table with two weeks of sample runs so the
// dashboard has something to show in local development.
func main() {
	ctx := context.Background()
	logger := logging.NewLogger()

	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to DB
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode,
	)
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pool.Close()

	// 1. Ensure the table exists
	if _, err := pool.Exec(ctx, repository.Schema); err != nil {
		log.Fatalf("Failed to create table: %v", err)
	}

	// 2. Skip seeding if there is already data
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM n8n_execution_logs").Scan(&count); err != nil {
		log.Fatalf("Failed to count existing rows: %v", err)
	}
	if count > 0 {
		logger.Info("Execution logs already present, skipping seed", "rows", count)
		return
	}

	store := repository.NewPostgresExecutionStore(pool)

	workflows := []struct {
		ID   string
		Name string
	}{
		{"wf-daily-report", "Daily Report Mailer"},
		{"wf-lead-sync", "CRM Lead Sync"},
		{"wf-invoice-ocr", "Invoice OCR Pipeline"},
	}
	statuses := []models.ExecutionStatus{
		models.ExecutionStatusSuccess,
		models.ExecutionStatusSuccess,
		models.ExecutionStatusSuccess,
		models.ExecutionStatusError,
		models.ExecutionStatusRunning,
		models.ExecutionStatusWaiting,
		models.ExecutionStatusCanceled,
	}

	// 3. Insert sample rows across the trailing 14 days
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	inserted := 0
	for day := 0; day < 14; day++ {
		runs := 3 + rng.Intn(8)
		for i := 0; i < runs; i++ {
			wf := workflows[rng.Intn(len(workflows))]
			status := statuses[rng.Intn(len(statuses))]

			createdAt := time.Now().UTC().AddDate(0, 0, -day).
				Add(-time.Duration(rng.Intn(20)) * time.Hour)
			startedAt := createdAt
			mode := "trigger"
			nodeCount := 4 + rng.Intn(9)

			logRow := &models.ExecutionLog{
				ID:           uuid.New().String(),
				ExecutionID:  fmt.Sprintf("%d", 100000+inserted),
				WorkflowID:   wf.ID,
				WorkflowName: wf.Name,
				Status:       status,
				StartedAt:    &startedAt,
				Mode:         &mode,
				NodeCount:    &nodeCount,
				CreatedAt:    createdAt,
			}

			switch status {
			case models.ExecutionStatusSuccess, models.ExecutionStatusError, models.ExecutionStatusCanceled:
				duration := int64(200 + rng.Intn(30000))
				finishedAt := startedAt.Add(time.Duration(duration) * time.Millisecond)
				logRow.Finished = true
				logRow.FinishedAt = &finishedAt
				logRow.DurationMs = &duration
			}
			if status == models.ExecutionStatusError {
				msg := "Node \"HTTP Request\" failed: connect ETIMEDOUT"
				logRow.ErrorMessage = &msg
			}

			if err := store.Insert(ctx, logRow); err != nil {
				log.Fatalf("Failed to insert execution log: %v", err)
			}
			inserted++
		}
	}

	logger.Info("Seeding complete!", "rows", inserted)
}
