package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"batch-run-inspector/core/inspector"
	"batch-run-inspector/core/models"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// RunInspector reconstructs the structure of a workflow run
type RunInspector interface {
	HeadJob(ctx context.Context, runID string) (*models.JobRecord, error)
	TaskOutputs(ctx context.Context, head models.JobRecord) (*models.TaskSummary, error)
	ChildJobs(ctx context.Context, head models.JobRecord) ([]models.JobRecord, error)
}

// RunHandler handles workflow run HTTP requests
type RunHandler struct {
	inspector RunInspector
	timeout   time.Duration
	log       *logrus.Entry
}

// NewRunHandler creates a new run handler. Every request is bounded by timeout.
func NewRunHandler(insp RunInspector, timeout time.Duration, log *logrus.Entry) *RunHandler {
	return &RunHandler{
		inspector: insp,
		timeout:   timeout,
		log:       log,
	}
}

// ChildJobsResponse lists the child batch jobs of a run
type ChildJobsResponse struct {
	Items []models.JobRecord `json:"items"`
}

// GetRunTasks handles GET /v1/runs/{id}/tasks
func (h *RunHandler) GetRunTasks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, log := h.begin(r)
	defer cancel()

	head, ok := h.headJob(ctx, w, log, mux.Vars(r)["id"])
	if !ok {
		return
	}

	summary, err := h.inspector.TaskOutputs(ctx, *head)
	if err != nil {
		h.fail(w, log, err, "Failed to query task outputs")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// GetRunChildren handles GET /v1/runs/{id}/children
func (h *RunHandler) GetRunChildren(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, log := h.begin(r)
	defer cancel()

	head, ok := h.headJob(ctx, w, log, mux.Vars(r)["id"])
	if !ok {
		return
	}

	children, err := h.inspector.ChildJobs(ctx, *head)
	if err != nil {
		h.fail(w, log, err, "Failed to query child jobs")
		return
	}

	writeJSON(w, http.StatusOK, ChildJobsResponse{Items: children})
}

// begin applies the request deadline and tags the request logger
func (h *RunHandler) begin(r *http.Request) (context.Context, context.CancelFunc, *logrus.Entry) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	log := h.log.WithFields(logrus.Fields{
		"request_id": uuid.NewString(),
		"run_id":     mux.Vars(r)["id"],
	})
	return ctx, cancel, log
}

func (h *RunHandler) headJob(ctx context.Context, w http.ResponseWriter, log *logrus.Entry, runID string) (*models.JobRecord, bool) {
	head, err := h.inspector.HeadJob(ctx, runID)
	if errors.Is(err, inspector.ErrJobNotFound) {
		http.Error(w, "Run not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		h.fail(w, log, err, "Failed to describe run")
		return nil, false
	}
	return head, true
}

// fail logs the cause and returns an opaque server error
func (h *RunHandler) fail(w http.ResponseWriter, log *logrus.Entry, err error, msg string) {
	if errors.Is(err, context.DeadlineExceeded) {
		log.WithError(err).Warn("Request timed out")
		http.Error(w, msg+": timed out", http.StatusGatewayTimeout)
		return
	}
	log.WithError(err).Error(msg)
	http.Error(w, msg, http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
