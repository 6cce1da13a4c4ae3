// Package models defines the domain models for the n8n copilot service
package models

import (
	"time"
)

// ExecutionStatus represents the terminal or in-flight state of a workflow execution
type ExecutionStatus string

const (
	ExecutionStatusSuccess  ExecutionStatus = "success"
	ExecutionStatusError    ExecutionStatus = "error"
	ExecutionStatusRunning  ExecutionStatus = "running"
	ExecutionStatusWaiting  ExecutionStatus = "waiting"
	ExecutionStatusCanceled ExecutionStatus = "canceled"
)

// ExecutionLog is an immutable record of a single workflow execution,
// ingested into Postgres by an external collector. This service only reads them.
type ExecutionLog struct {
	ID            string          `json:"id" db:"id"`
	ExecutionID   string          `json:"execution_id" db:"execution_id"`
	WorkflowID    string          `json:"workflow_id" db:"workflow_id"`
	WorkflowName  string          `json:"workflow_name" db:"workflow_name"`
	Status        ExecutionStatus `json:"status" db:"status"`
	Finished      bool            `json:"finished" db:"finished"`
	StartedAt     *time.Time      `json:"started_at" db:"started_at"`
	FinishedAt    *time.Time      `json:"finished_at" db:"finished_at"`
	DurationMs    *int64          `json:"duration_ms" db:"duration_ms"`
	Mode          *string         `json:"mode" db:"mode"`
	NodeCount     *int            `json:"node_count" db:"node_count"`
	ErrorMessage  *string         `json:"error_message" db:"error_message"`
	ExecutionData map[string]any  `json:"execution_data" db:"execution_data"`
	WorkflowData  map[string]any  `json:"workflow_data" db:"workflow_data"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// ExecutionStats is the global roll-up over all execution logs, computed on read.
type ExecutionStats struct {
	TotalExecutions int     `json:"totalExecutions"`
	SuccessCount    int     `json:"successCount"`
	ErrorCount      int     `json:"errorCount"`
	RunningCount    int     `json:"runningCount"`
	WaitingCount    int     `json:"waitingCount"`
	CanceledCount   int     `json:"canceledCount"`
	AvgDurationMs   float64 `json:"avgDurationMs"`
	SuccessRate     float64 `json:"successRate"`
}

// DailyStats is one UTC calendar-day bucket in the execution trend series.
type DailyStats struct {
	Date    string `json:"date"`
	Total   int    `json:"total"`
	Success int    `json:"success"`
	Error   int    `json:"error"`
}

// StatusDuration is the projection used for global stats aggregation.
type StatusDuration struct {
	Status     ExecutionStatus
	DurationMs *int64
}

// StatusTimestamp is the projection used for daily bucketing.
type StatusTimestamp struct {
	Status    ExecutionStatus
	CreatedAt time.Time
}
