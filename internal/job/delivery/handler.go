package delivery

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	jobrepo "faktury-backend/internal/job/repository"
	"faktury-backend/internal/job/scheduler"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	scheduler *scheduler.EmailCheckScheduler
	stateRepo jobrepo.JobStateRepository
	execRepo  jobrepo.JobExecutionRepository
}

func NewJobHandler(sched *scheduler.EmailCheckScheduler, stateRepo jobrepo.JobStateRepository, execRepo jobrepo.JobExecutionRepository) *JobHandler {
	return &JobHandler{
		scheduler: sched,
		stateRepo: stateRepo,
		execRepo:  execRepo,
	}
}

// GetState returns the live job state. This is an operator-facing diagnostic
// view, so the raw error message is included.
func (h *JobHandler) GetState(c *gin.Context) {
	state, err := h.stateRepo.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read job state"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state":            state,
		"schedulerStopped": h.scheduler.IsStopped(),
		"isRunning":        h.scheduler.IsRunning(),
	})
}

// GetHistory returns recent job executions, newest first
func (h *JobHandler) GetHistory(c *gin.Context) {
	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	executions, err := h.execRepo.List(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read job history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"executions": executions})
}

// Trigger runs a scan cycle outside the timer. A cycle already in flight is
// a conflict, not a queue entry.
func (h *JobHandler) Trigger(c *gin.Context) {
	result, err := h.scheduler.TriggerManual(c.Request.Context())
	if err != nil {
		if errors.Is(err, scheduler.ErrJobAlreadyRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": "Job already running"})
			return
		}
		log.Printf("[Job] Manual trigger failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Job run failed", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
