package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	authdomain "faktury-backend/internal/auth/domain"
	emaildomain "faktury-backend/internal/email/domain"
	jobdomain "faktury-backend/internal/job/domain"
	"faktury-backend/internal/job/repository"
)

// ErrJobAlreadyRunning is returned by TriggerManual while a scan cycle is in
// flight; concurrent runs are rejected, not queued.
var ErrJobAlreadyRunning = errors.New("job already running")

// Syncer runs one scan cycle
type Syncer interface {
	SyncEmails(ctx context.Context, autoExtract bool) (*emaildomain.SyncResult, error)
}

// EmailCheckScheduler periodically drives scan cycles with retry/backoff,
// persisted run state and history, and a consecutive-error circuit breaker.
type EmailCheckScheduler struct {
	syncer    Syncer
	stateRepo repository.JobStateRepository
	execRepo  repository.JobExecutionRepository

	interval             time.Duration
	maxRetries           int
	retryDelay           time.Duration
	maxConsecutiveErrors int

	// running guards the whole retry cycle; a tick or manual trigger that
	// finds it set is a no-op rather than queued
	running  atomic.Bool
	stopChan chan struct{}
	stopOnce sync.Once
	stopped  atomic.Bool
}

// NewEmailCheckScheduler creates a new scheduler
func NewEmailCheckScheduler(
	syncer Syncer,
	stateRepo repository.JobStateRepository,
	execRepo repository.JobExecutionRepository,
	interval time.Duration,
) *EmailCheckScheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &EmailCheckScheduler{
		syncer:               syncer,
		stateRepo:            stateRepo,
		execRepo:             execRepo,
		interval:             interval,
		maxRetries:           3,
		retryDelay:           5 * time.Second,
		maxConsecutiveErrors: 5,
		stopChan:             make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *EmailCheckScheduler) Start() {
	log.Printf("[JobScheduler] Starting email check scheduler (interval: %s)", s.interval)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runScheduled()
			case <-s.stopChan:
				log.Println("[JobScheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop halts the scheduler; there is no automatic re-arm
func (s *EmailCheckScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.stopped.Store(true)
		close(s.stopChan)
	})
}

// IsStopped reports whether the circuit breaker (or an explicit Stop) halted
// the scheduler
func (s *EmailCheckScheduler) IsStopped() bool {
	return s.stopped.Load()
}

// IsRunning reports whether a scan cycle is currently in flight
func (s *EmailCheckScheduler) IsRunning() bool {
	return s.running.Load()
}

// TriggerManual runs a single scan attempt outside the timer, still
// respecting the running guard.
func (s *EmailCheckScheduler) TriggerManual(ctx context.Context) (*emaildomain.SyncResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrJobAlreadyRunning
	}
	defer s.running.Store(false)

	startedAt := time.Now()
	result, err := s.attempt(ctx)
	if err != nil {
		s.recordTerminalFailure(startedAt, err)
		return nil, err
	}
	return result, nil
}

// runScheduled executes one tick: a full retry cycle under the running guard
func (s *EmailCheckScheduler) runScheduled() {
	if !s.running.CompareAndSwap(false, true) {
		log.Println("[JobScheduler] Job already running, skipping this execution")
		return
	}
	defer s.running.Store(false)

	s.runWithRetry(context.Background())
}

// runWithRetry attempts the scan up to maxRetries times with exponential
// backoff, then records a single terminal failure for the whole cycle.
func (s *EmailCheckScheduler) runWithRetry(ctx context.Context) {
	startedAt := time.Now()

	var lastErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		_, err := s.attempt(ctx)
		if err == nil {
			return
		}
		lastErr = err
		log.Printf("[JobScheduler] Error in background job (attempt %d/%d): %v", attempt+1, s.maxRetries, err)

		// No amount of retrying fixes a missing login
		if errors.Is(err, authdomain.ErrNotAuthenticated) {
			break
		}

		if attempt < s.maxRetries-1 {
			delay := s.retryDelay * time.Duration(1<<attempt)
			log.Printf("[JobScheduler] Retrying in %s...", delay)
			time.Sleep(delay)
		}
	}

	s.recordTerminalFailure(startedAt, lastErr)
}

// attempt runs one scan cycle, writing the running and success state
// transitions. Failure state is left to the terminal-failure recorder so a
// retry cycle yields exactly one history row.
func (s *EmailCheckScheduler) attempt(ctx context.Context) (*emaildomain.SyncResult, error) {
	startTime := time.Now()

	state, err := s.stateRepo.Get()
	if err != nil {
		return nil, err
	}
	state.LastStatus = jobdomain.JobStatusRunning
	state.LastRunTimestamp = &startTime
	state.LastError = ""
	if err := s.stateRepo.Update(state); err != nil {
		return nil, err
	}

	log.Println("[JobScheduler] Checking emails...")

	result, err := s.syncer.SyncEmails(ctx, true)
	if err != nil {
		return nil, err
	}

	endTime := time.Now()
	duration := endTime.Sub(startTime).Milliseconds()
	nextRun := endTime.Add(s.interval)

	state.LastStatus = jobdomain.JobStatusSuccess
	state.LastRunTimestamp = &endTime
	state.LastRunDurationMs = duration
	state.LastError = ""
	state.NewInvoicesCount = result.NewInvoices
	state.TotalInvoicesCount = result.TotalInvoices
	state.ConsecutiveErrors = 0
	state.NextScheduledRun = &nextRun
	if err := s.stateRepo.Update(state); err != nil {
		log.Printf("[JobScheduler] Failed to update job state: %v", err)
	}

	if err := s.execRepo.Append(&jobdomain.JobExecution{
		JobName:            jobdomain.JobName,
		StartedAt:          startTime,
		CompletedAt:        endTime,
		Status:             jobdomain.JobStatusSuccess,
		NewInvoicesCount:   result.NewInvoices,
		TotalInvoicesCount: result.TotalInvoices,
		DurationMs:         duration,
	}); err != nil {
		log.Printf("[JobScheduler] Failed to append job execution: %v", err)
	}

	log.Printf("[JobScheduler] Completed: %d new emails, %d invoices extracted", result.NewEmails, result.NewInvoices)
	return result, nil
}

// recordTerminalFailure writes the error state, appends one history row for
// the whole retry cycle and trips the circuit breaker when too many cycles
// failed in a row.
func (s *EmailCheckScheduler) recordTerminalFailure(startedAt time.Time, runErr error) {
	endTime := time.Now()
	errMsg := "unknown error"
	if runErr != nil {
		errMsg = runErr.Error()
	}

	state, err := s.stateRepo.Get()
	if err != nil {
		log.Printf("[JobScheduler] Failed to read job state: %v", err)
		state = &jobdomain.JobState{JobName: jobdomain.JobName}
	}
	state.LastStatus = jobdomain.JobStatusError
	state.LastError = errMsg
	state.LastRunTimestamp = &endTime
	state.LastRunDurationMs = endTime.Sub(startedAt).Milliseconds()
	state.ConsecutiveErrors++
	if err := s.stateRepo.Update(state); err != nil {
		log.Printf("[JobScheduler] Failed to update job state: %v", err)
	}

	if err := s.execRepo.Append(&jobdomain.JobExecution{
		JobName:     jobdomain.JobName,
		StartedAt:   startedAt,
		CompletedAt: endTime,
		Status:      jobdomain.JobStatusError,
		Error:       errMsg,
		DurationMs:  endTime.Sub(startedAt).Milliseconds(),
	}); err != nil {
		log.Printf("[JobScheduler] Failed to append job execution: %v", err)
	}

	if state.ConsecutiveErrors >= s.maxConsecutiveErrors {
		log.Printf("[JobScheduler] Too many consecutive errors (%d), stopping background job", state.ConsecutiveErrors)
		s.Stop()
	}
}
