package repository

import jobdomain "faktury-backend/internal/job/domain"

// JobStateRepository persists the singleton live job status
type JobStateRepository interface {
	// Get returns the current state, initialized to idle when none exists
	Get() (*jobdomain.JobState, error)

	// Update overwrites the singleton state row
	Update(state *jobdomain.JobState) error
}

// JobExecutionRepository is the append-only run history
type JobExecutionRepository interface {
	// Append adds one history row
	Append(execution *jobdomain.JobExecution) error

	// List returns the most recent rows, newest first
	List(limit int) ([]*jobdomain.JobExecution, error)
}
