package services

import (
	"context"
	"time"

	"n8n-copilot/backend/internal/repository"
	"n8n-copilot/backend/pkg/models"
)

// dailyDateFormat renders bucket labels like "Jan 2".
const dailyDateFormat = "Jan 2"

// ExecutionService reads execution logs and derives aggregate statistics.
// Aggregates are computed on read and never stored.
type ExecutionService struct {
	store repository.ExecutionStore
	now   func() time.Time
}

// NewExecutionService creates a new ExecutionService.
func NewExecutionService(store repository.ExecutionStore) *ExecutionService {
	return &ExecutionService{store: store, now: time.Now}
}

// List returns up to limit execution logs, newest first.
func (s *ExecutionService) List(ctx context.Context, limit int) ([]models.ExecutionLog, error) {
	return s.store.List(ctx, limit)
}

// Stats rolls up every execution log into global counts, the mean duration
// over rows that have one, and the success rate as a percentage.
func (s *ExecutionService) Stats(ctx context.Context) (*models.ExecutionStats, error) {
	rows, err := s.store.StatusDurations(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.ExecutionStats{TotalExecutions: len(rows)}
	var durationSum, durationCount int64
	for _, row := range rows {
		switch row.Status {
		case models.ExecutionStatusSuccess:
			stats.SuccessCount++
		case models.ExecutionStatusError:
			stats.ErrorCount++
		case models.ExecutionStatusRunning:
			stats.RunningCount++
		case models.ExecutionStatusWaiting:
			stats.WaitingCount++
		case models.ExecutionStatusCanceled:
			stats.CanceledCount++
		}
		if row.DurationMs != nil {
			durationSum += *row.DurationMs
			durationCount++
		}
	}

	if durationCount > 0 {
		stats.AvgDurationMs = float64(durationSum) / float64(durationCount)
	}
	if stats.TotalExecutions > 0 {
		stats.SuccessRate = float64(stats.SuccessCount) / float64(stats.TotalExecutions) * 100
	}
	return stats, nil
}

// Daily buckets executions by UTC calendar day over a trailing window ending
// today. The result has exactly `days` entries in chronological order,
// zero-filled for days with no records.
func (s *ExecutionService) Daily(ctx context.Context, days int) ([]models.DailyStats, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)
	windowStart := today.AddDate(0, 0, -(days - 1))

	rows, err := s.store.StatusTimestamps(ctx, windowStart)
	if err != nil {
		return nil, err
	}

	buckets := make([]models.DailyStats, days)
	index := make(map[string]*models.DailyStats, days)
	for i := 0; i < days; i++ {
		day := windowStart.AddDate(0, 0, i)
		buckets[i] = models.DailyStats{Date: day.Format(dailyDateFormat)}
		index[day.Format(dailyDateFormat)] = &buckets[i]
	}

	for _, row := range rows {
		bucket, ok := index[row.CreatedAt.UTC().Format(dailyDateFormat)]
		if !ok {
			continue
		}
		bucket.Total++
		switch row.Status {
		case models.ExecutionStatusSuccess:
			bucket.Success++
		case models.ExecutionStatusError:
			bucket.Error++
		}
	}
	return buckets, nil
}
