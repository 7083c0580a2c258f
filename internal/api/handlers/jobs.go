package handlers

import (
	"net/http"

	"github.com/wonny/stockpick/internal/scheduler"
)

// JobStatsProvider reports scheduler statistics
type JobStatsProvider interface {
	GetJobStats() map[string]scheduler.JobStats
}

// JobsHandler exposes scheduler state
type JobsHandler struct {
	scheduler JobStatsProvider
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(s JobStatsProvider) *JobsHandler {
	return &JobsHandler{scheduler: s}
}

// GetJobs returns statistics for every scheduled job
// GET /api/jobs
func (h *JobsHandler) GetJobs(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.scheduler.GetJobStats())
}
