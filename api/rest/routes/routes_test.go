package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"batch-run-inspector/api/rest/handlers"
	"batch-run-inspector/core/inspector"
	"batch-run-inspector/core/logquery"
	"batch-run-inspector/core/models"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInspector struct {
	head     *models.JobRecord
	summary  *models.TaskSummary
	children []models.JobRecord
	err      error
	deadline bool
}

func (f *fakeInspector) HeadJob(ctx context.Context, runID string) (*models.JobRecord, error) {
	_, f.deadline = ctx.Deadline()
	if f.head == nil || f.head.ID != runID {
		return nil, inspector.ErrJobNotFound
	}
	return f.head, nil
}

func (f *fakeInspector) TaskOutputs(context.Context, models.JobRecord) (*models.TaskSummary, error) {
	return f.summary, f.err
}

func (f *fakeInspector) ChildJobs(context.Context, models.JobRecord) ([]models.JobRecord, error) {
	return f.children, f.err
}

func newRouter(insp handlers.RunInspector) *mux.Router {
	l := logrus.New()
	l.SetOutput(io.Discard)

	r := mux.NewRouter()
	SetupRoutes(r, insp, time.Second, logrus.NewEntry(l))
	return r
}

func get(t *testing.T, r http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestGetRunTasks(t *testing.T) {
	exit := "0"
	insp := &fakeInspector{
		head:    &models.JobRecord{ID: "head"},
		summary: &models.TaskSummary{ID: "head", Outputs: []models.TaskOutcome{{Exit: &exit}}},
	}

	rec := get(t, newRouter(insp), "/v1/runs/head/tasks")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.True(t, insp.deadline, "request must run under a deadline")

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "head", body["id"])
	assert.Equal(t, []interface{}{map[string]interface{}{"exit": "0"}}, body["outputs"])
}

func TestGetRunChildren(t *testing.T) {
	insp := &fakeInspector{
		head:     &models.JobRecord{ID: "head"},
		children: []models.JobRecord{{ID: "j1", Status: "SUCCEEDED"}},
	}

	rec := get(t, newRouter(insp), "/v1/runs/head/children")
	require.Equal(t, http.StatusOK, rec.Code)

	var body handlers.ChildJobsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []models.JobRecord{{ID: "j1", Status: "SUCCEEDED"}}, body.Items)
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		insp   *fakeInspector
		status int
	}{
		{
			name:   "unknown run",
			path:   "/v1/runs/missing/tasks",
			insp:   &fakeInspector{head: &models.JobRecord{ID: "head"}},
			status: http.StatusNotFound,
		},
		{
			name: "query failed",
			path: "/v1/runs/head/tasks",
			insp: &fakeInspector{
				head: &models.JobRecord{ID: "head"},
				err:  &logquery.ServiceError{JobID: "head", Op: "logs query q1", Err: logquery.ErrQueryFailed},
			},
			status: http.StatusInternalServerError,
		},
		{
			name: "describe failed",
			path: "/v1/runs/head/children",
			insp: &fakeInspector{
				head: &models.JobRecord{ID: "head"},
				err:  errors.New("access denied"),
			},
			status: http.StatusInternalServerError,
		},
		{
			name: "timed out",
			path: "/v1/runs/head/children",
			insp: &fakeInspector{
				head: &models.JobRecord{ID: "head"},
				err:  &logquery.ServiceError{JobID: "head", Op: "poll logs query", Err: context.DeadlineExceeded},
			},
			status: http.StatusGatewayTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newRouter(tt.insp), tt.path)
			assert.Equal(t, tt.status, rec.Code)
			assert.NotContains(t, rec.Body.String(), "access denied")
		})
	}
}

func TestHealth(t *testing.T) {
	rec := get(t, newRouter(&fakeInspector{}), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
