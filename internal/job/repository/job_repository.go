package repository

import (
	"errors"
	"time"

	jobdomain "faktury-backend/internal/job/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// jobStateRepository implements JobStateRepository using GORM
type jobStateRepository struct {
	db *gorm.DB
}

// NewJobStateRepository creates a new instance of jobStateRepository
func NewJobStateRepository(db *gorm.DB) JobStateRepository {
	return &jobStateRepository{
		db: db,
	}
}

func (r *jobStateRepository) Get() (*jobdomain.JobState, error) {
	var state jobdomain.JobState
	err := r.db.First(&state, 1).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &jobdomain.JobState{
				ID:         1,
				JobName:    jobdomain.JobName,
				LastStatus: jobdomain.JobStatusIdle,
			}, nil
		}
		return nil, err
	}
	return &state, nil
}

func (r *jobStateRepository) Update(state *jobdomain.JobState) error {
	state.ID = 1
	if state.JobName == "" {
		state.JobName = jobdomain.JobName
	}
	state.UpdatedAt = time.Now()
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(state).Error
}

// jobExecutionRepository implements JobExecutionRepository using GORM
type jobExecutionRepository struct {
	db *gorm.DB
}

// NewJobExecutionRepository creates a new instance of jobExecutionRepository
func NewJobExecutionRepository(db *gorm.DB) JobExecutionRepository {
	return &jobExecutionRepository{
		db: db,
	}
}

func (r *jobExecutionRepository) Append(execution *jobdomain.JobExecution) error {
	if execution.ID == "" {
		execution.ID = uuid.New().String()
	}
	execution.CreatedAt = time.Now()
	return r.db.Create(execution).Error
}

func (r *jobExecutionRepository) List(limit int) ([]*jobdomain.JobExecution, error) {
	if limit <= 0 {
		limit = 20
	}
	var executions []*jobdomain.JobExecution
	err := r.db.Order("started_at DESC").Limit(limit).Find(&executions).Error
	return executions, err
}
