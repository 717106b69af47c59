package logquery

import (
	"context"
	"time"

	"batch-run-inspector/core/models"

	"github.com/sirupsen/logrus"
)

// RecordLocatorField is the backend's internal row pointer, never returned to callers
const RecordLocatorField = "@ptr"

// MaxResultLimit is the largest row count a single Logs Insights query may return
const MaxResultLimit int32 = 10_000

// DefaultPollInterval is the wait between two status checks of a query
const DefaultPollInterval = time.Second

// QueryRequest is one windowed search against a log group
type QueryRequest struct {
	LogGroup    string
	StartTime   int64
	EndTime     int64
	QueryString string
	Limit       int32
}

// ResultField is one field/value pair of a raw result row
type ResultField struct {
	Field string
	Value string
}

// QueryResult is the state of a submitted query and, once complete, its rows
type QueryResult struct {
	Status QueryStatus
	Rows   [][]ResultField
}

// Backend is the log-search service the executor submits queries to
type Backend interface {
	StartQuery(ctx context.Context, req QueryRequest) (string, error)
	GetQueryResults(ctx context.Context, queryID string) (*QueryResult, error)
}

// Options configures an Executor. Zero values fall back to defaults.
type Options struct {
	LogGroup      string
	WindowSeconds int64
	Limit         int32
	PollInterval  time.Duration
	Waiter        Waiter
	Now           func() int64
	Logger        *logrus.Entry
}

// Executor runs a query over a job's lifetime, one window at a time
type Executor struct {
	backend       Backend
	logGroup      string
	windowSeconds int64
	limit         int32
	pollInterval  time.Duration
	waiter        Waiter
	now           func() int64
	log           *logrus.Entry
}

// NewExecutor creates a new windowed query executor
func NewExecutor(backend Backend, opts Options) *Executor {
	e := &Executor{
		backend:       backend,
		logGroup:      opts.LogGroup,
		windowSeconds: opts.WindowSeconds,
		limit:         opts.Limit,
		pollInterval:  opts.PollInterval,
		waiter:        opts.Waiter,
		now:           opts.Now,
		log:           opts.Logger,
	}

	if e.windowSeconds <= 0 {
		e.windowSeconds = DefaultWindowSeconds
	}
	if e.limit <= 0 || e.limit > MaxResultLimit {
		e.limit = MaxResultLimit
	}
	if e.pollInterval <= 0 {
		e.pollInterval = DefaultPollInterval
	}
	if e.waiter == nil {
		e.waiter = SleepWaiter{}
	}
	if e.now == nil {
		e.now = func() int64 { return time.Now().Unix() }
	}
	if e.log == nil {
		e.log = logrus.NewEntry(logrus.StandardLogger())
	}

	return e
}

// Query runs queryString over every window of the job's lifetime and returns
// the rows in window order. Jobs that have not started or have no log stream
// yield no rows and issue no query. A single failed window fails the whole call.
func (e *Executor) Query(ctx context.Context, job models.JobRecord, queryString string) ([]models.LogRow, error) {
	if !job.HasLogs() {
		return []models.LogRow{}, nil
	}

	// Fix "now" once so the final window and the boundary rule agree
	now := e.now()
	windows := PlanJob(job, e.windowSeconds, func() int64 { return now })
	if len(windows) == 0 {
		return []models.LogRow{}, nil
	}
	end := windows[len(windows)-1].End

	log := e.log.WithField("job_id", job.ID)
	log.WithField("windows", len(windows)).Debug("Querying job logs")

	rows := []models.LogRow{}
	for _, w := range windows {
		windowRows, err := e.queryWindow(ctx, log, job.ID, w, end, queryString)
		if err != nil {
			return nil, err
		}
		rows = append(rows, windowRows...)
	}

	return rows, nil
}

// queryWindow submits one window query and polls it to a terminal state
func (e *Executor) queryWindow(
	ctx context.Context,
	log *logrus.Entry,
	jobID string,
	w TimeWindow,
	lastEnd int64,
	queryString string,
) ([]models.LogRow, error) {
	req := QueryRequest{
		LogGroup:    e.logGroup,
		StartTime:   w.Start,
		EndTime:     queryEnd(w, lastEnd),
		QueryString: queryString,
		Limit:       e.limit,
	}

	queryID, err := e.backend.StartQuery(ctx, req)
	if err != nil {
		return nil, &ServiceError{JobID: jobID, Op: "start logs query", Err: err}
	}

	log = log.WithFields(logrus.Fields{
		"query_id":     queryID,
		"window_start": req.StartTime,
		"window_end":   req.EndTime,
	})

	result, err := e.poll(ctx, log, queryID)
	if err != nil {
		return nil, &ServiceError{JobID: jobID, Op: "poll logs query", Err: err}
	}

	if !result.Status.Succeeded() {
		log.WithField("status", result.Status).Warn("Logs query did not complete")
		return nil, &ServiceError{JobID: jobID, Op: "logs query " + queryID, Err: ErrQueryFailed}
	}

	rows := make([]models.LogRow, 0, len(result.Rows))
	for _, fields := range result.Rows {
		rows = append(rows, normalize(fields))
	}
	return rows, nil
}

// poll waits and re-checks until the query leaves the scheduled/running states
func (e *Executor) poll(ctx context.Context, log *logrus.Entry, queryID string) (*QueryResult, error) {
	for {
		log.Debug("Waiting for query to complete")
		if err := e.waiter.Wait(ctx, e.pollInterval); err != nil {
			return nil, err
		}

		result, err := e.backend.GetQueryResults(ctx, queryID)
		if err != nil {
			return nil, err
		}
		if !result.Status.Pending() {
			return result, nil
		}
	}
}

// queryEnd pulls every non-final window end back by one second so an event
// stamped exactly on a boundary is only picked up by the later window.
func queryEnd(w TimeWindow, lastEnd int64) int64 {
	if w.End == lastEnd {
		return w.End
	}
	return w.End - 1
}

// normalize converts a raw result row into a LogRow without the record locator
func normalize(fields []ResultField) models.LogRow {
	row := make(models.LogRow, len(fields))
	for _, f := range fields {
		if f.Field == RecordLocatorField {
			continue
		}
		row[f.Field] = f.Value
	}
	return row
}
