package services

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"n8n-copilot/backend/pkg/models"
)

// fakeExecutionStore serves canned projections; List/Insert are unused here.
type fakeExecutionStore struct {
	durations  []models.StatusDuration
	timestamps []models.StatusTimestamp
	gotSince   time.Time
}

func (f *fakeExecutionStore) List(ctx context.Context, limit int) ([]models.ExecutionLog, error) {
	return nil, nil
}

func (f *fakeExecutionStore) StatusDurations(ctx context.Context) ([]models.StatusDuration, error) {
	return f.durations, nil
}

func (f *fakeExecutionStore) StatusTimestamps(ctx context.Context, since time.Time) ([]models.StatusTimestamp, error) {
	f.gotSince = since
	var out []models.StatusTimestamp
	for _, st := range f.timestamps {
		if !st.CreatedAt.Before(since) {
			out = append(out, st)
		}
	}
	return out, nil
}

func (f *fakeExecutionStore) Insert(ctx context.Context, log *models.ExecutionLog) error {
	return nil
}

func int64Ptr(v int64) *int64 { return &v }

func TestStatsScenario(t *testing.T) {
	store := &fakeExecutionStore{durations: []models.StatusDuration{
		{Status: models.ExecutionStatusSuccess, DurationMs: int64Ptr(100)},
		{Status: models.ExecutionStatusError, DurationMs: nil},
	}}
	svc := NewExecutionService(store)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, &models.ExecutionStats{
		TotalExecutions: 2,
		SuccessCount:    1,
		ErrorCount:      1,
		RunningCount:    0,
		WaitingCount:    0,
		CanceledCount:   0,
		AvgDurationMs:   100,
		SuccessRate:     50,
	}, stats)
}

func TestStatsEmpty(t *testing.T) {
	svc := NewExecutionService(&fakeExecutionStore{})

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TotalExecutions)
	assert.Equal(t, float64(0), stats.AvgDurationMs)
	assert.Equal(t, float64(0), stats.SuccessRate)
}

func TestDailyZeroFilledWindow(t *testing.T) {
	store := &fakeExecutionStore{}
	svc := NewExecutionService(store)
	now := time.Date(2026, 8, 31, 10, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	daily, err := svc.Daily(context.Background(), 14)
	require.NoError(t, err)

	require.Len(t, daily, 14)
	assert.Equal(t, "Aug 18", daily[0].Date)
	assert.Equal(t, "Aug 31", daily[13].Date)
	for _, bucket := range daily {
		assert.Zero(t, bucket.Total)
		assert.Zero(t, bucket.Success)
		assert.Zero(t, bucket.Error)
	}
	assert.Equal(t, time.Date(2026, 8, 18, 0, 0, 0, 0, time.UTC), store.gotSince)
}

func TestDailyBucketsByUTCDate(t *testing.T) {
	now := time.Date(2026, 8, 31, 23, 0, 0, 0, time.UTC)
	store := &fakeExecutionStore{timestamps: []models.StatusTimestamp{
		{Status: models.ExecutionStatusSuccess, CreatedAt: time.Date(2026, 8, 31, 0, 15, 0, 0, time.UTC)},
		{Status: models.ExecutionStatusError, CreatedAt: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)},
		{Status: models.ExecutionStatusRunning, CreatedAt: time.Date(2026, 8, 31, 13, 0, 0, 0, time.UTC)},
		{Status: models.ExecutionStatusSuccess, CreatedAt: time.Date(2026, 8, 30, 23, 59, 59, 0, time.UTC)},
	}}
	svc := NewExecutionService(store)
	svc.now = func() time.Time { return now }

	daily, err := svc.Daily(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, daily, 3)

	assert.Equal(t, models.DailyStats{Date: "Aug 29"}, daily[0])
	assert.Equal(t, models.DailyStats{Date: "Aug 30", Total: 1, Success: 1}, daily[1])
	assert.Equal(t, models.DailyStats{Date: "Aug 31", Total: 3, Success: 1, Error: 1}, daily[2])
}

// Randomized property: every window has exactly N buckets, each bucket's
// total covers all statuses, and success/error counts match an independent
// assignment of timestamps to UTC dates.
func TestDailyRandomizedAssignment(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	now := time.Date(2026, 8, 31, 18, 0, 0, 0, time.UTC)
	statuses := []models.ExecutionStatus{
		models.ExecutionStatusSuccess,
		models.ExecutionStatusError,
		models.ExecutionStatusRunning,
		models.ExecutionStatusWaiting,
		models.ExecutionStatusCanceled,
	}

	for _, days := range []int{1, 7, 14, 30} {
		store := &fakeExecutionStore{}
		windowStart := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(days - 1))

		type counts struct{ total, success, errors int }
		expected := make(map[string]*counts)
		for i := 0; i < days; i++ {
			expected[windowStart.AddDate(0, 0, i).Format("Jan 2")] = &counts{}
		}

		for i := 0; i < 500; i++ {
			ts := windowStart.Add(time.Duration(rng.Int63n(int64(days) * int64(24*time.Hour))))
			status := statuses[rng.Intn(len(statuses))]
			store.timestamps = append(store.timestamps, models.StatusTimestamp{Status: status, CreatedAt: ts})

			bucket := expected[ts.UTC().Format("Jan 2")]
			bucket.total++
			if status == models.ExecutionStatusSuccess {
				bucket.success++
			}
			if status == models.ExecutionStatusError {
				bucket.errors++
			}
		}

		svc := NewExecutionService(store)
		svc.now = func() time.Time { return now }

		daily, err := svc.Daily(context.Background(), days)
		require.NoError(t, err)
		require.Len(t, daily, days)

		for i, bucket := range daily {
			day := windowStart.AddDate(0, 0, i)
			assert.Equal(t, day.Format("Jan 2"), bucket.Date)

			want := expected[bucket.Date]
			assert.Equal(t, want.total, bucket.Total, "total for %s (days=%d)", bucket.Date, days)
			assert.Equal(t, want.success, bucket.Success, "success for %s (days=%d)", bucket.Date, days)
			assert.Equal(t, want.errors, bucket.Error, "error for %s (days=%d)", bucket.Date, days)
			assert.GreaterOrEqual(t, bucket.Total, bucket.Success+bucket.Error)
		}
	}
}
