package domain

import "time"

// JobStatus is the lifecycle state of the background job
type JobStatus string

const (
	JobStatusIdle    JobStatus = "idle"
	JobStatusRunning JobStatus = "running"
	JobStatusSuccess JobStatus = "success"
	JobStatusError   JobStatus = "error"
)

// JobName identifies the periodic email check job
const JobName = "email_check"

// JobState is the live status of the background job runner, a singleton row
// mutated on every transition.
type JobState struct {
	ID                 int        `json:"-" gorm:"primaryKey"`
	JobName            string     `json:"jobName"`
	LastRunTimestamp   *time.Time `json:"lastRunTimestamp"`
	LastRunDurationMs  int64      `json:"lastRunDurationMs"`
	LastStatus         JobStatus  `json:"lastStatus" gorm:"default:idle"`
	LastError          string     `json:"lastError,omitempty"`
	NewInvoicesCount   int        `json:"newInvoicesCount"`
	TotalInvoicesCount int        `json:"totalInvoicesCount"`
	ConsecutiveErrors  int        `json:"consecutiveErrors"`
	NextScheduledRun   *time.Time `json:"nextScheduledRun"`
	UpdatedAt          time.Time  `json:"-"`
}

// JobExecution is one append-only history row per terminal outcome of a
// retry cycle (or per successful run).
type JobExecution struct {
	ID                 string    `json:"id" gorm:"primaryKey"`
	JobName            string    `json:"jobName"`
	StartedAt          time.Time `json:"startedAt"`
	CompletedAt        time.Time `json:"completedAt"`
	Status             JobStatus `json:"status"`
	Error              string    `json:"error,omitempty"`
	NewInvoicesCount   int       `json:"newInvoicesCount"`
	TotalInvoicesCount int       `json:"totalInvoicesCount"`
	DurationMs         int64     `json:"durationMs"`
	CreatedAt          time.Time `json:"-"`
}
