package inspector

import (
	"context"
	"errors"
	"sort"

	"batch-run-inspector/core/logquery"
	"batch-run-inspector/core/models"
	"batch-run-inspector/core/spec"

	"github.com/sirupsen/logrus"
)

// ErrJobNotFound is returned when a run id does not resolve to a batch job
var ErrJobNotFound = errors.New("job not found")

// JobDescriber resolves batch job ids. Ids that no longer exist are left out of the result.
type JobDescriber interface {
	DescribeJobs(ctx context.Context, ids []string) ([]models.JobRecord, error)
}

// LogQuerier runs a query over a job's log stream lifetime
type LogQuerier interface {
	Query(ctx context.Context, job models.JobRecord, queryString string) ([]models.LogRow, error)
}

// Inspector reconstructs the task outcomes and child jobs of a workflow run
// from the head job's log stream
type Inspector struct {
	describer JobDescriber
	querier   LogQuerier
	profile   *spec.Profile
	log       *logrus.Entry
}

// NewInspector creates a new run inspector
func NewInspector(
	describer JobDescriber,
	querier LogQuerier,
	profile *spec.Profile,
	log *logrus.Entry,
) *Inspector {
	if profile == nil {
		profile = spec.NextflowProfile()
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Inspector{
		describer: describer,
		querier:   querier,
		profile:   profile,
		log:       log,
	}
}

// HeadJob resolves the head job of a run
func (i *Inspector) HeadJob(ctx context.Context, runID string) (*models.JobRecord, error) {
	jobs, err := i.describer.DescribeJobs(ctx, []string{runID})
	if err != nil {
		return nil, &logquery.ServiceError{JobID: runID, Op: "describe job", Err: err}
	}
	for _, job := range jobs {
		if job.ID == runID {
			return &job, nil
		}
	}
	return nil, ErrJobNotFound
}

// TaskOutputs returns the task completion records logged by the head job
func (i *Inspector) TaskOutputs(ctx context.Context, head models.JobRecord) (*models.TaskSummary, error) {
	summary := &models.TaskSummary{
		ID:      head.ID,
		Outputs: []models.TaskOutcome{},
	}
	if !head.HasLogs() {
		return summary, nil
	}

	rows, err := i.querier.Query(ctx, head, TaskOutcomeQuery(i.profile, head.LogStreamName))
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		if i.profile.TaskCompletion.Parse == spec.ParseLocal {
			row = i.extractLocally(row)
		}
		summary.Outputs = append(summary.Outputs, models.TaskOutcomeFromRow(row))
	}

	i.log.WithFields(logrus.Fields{
		"job_id": head.ID,
		"tasks":  len(summary.Outputs),
	}).Debug("Collected task outputs")

	return summary, nil
}

// extractLocally parses the raw message of a row with the profile's field markers
func (i *Inspector) extractLocally(row models.LogRow) models.LogRow {
	message, ok := row.Get(spec.MessageField)
	if !ok {
		return row
	}
	return models.LogRow(i.profile.TaskCompletion.ExtractFields(message))
}

// ChildJobs returns the child batch jobs the head job announced it submitted.
// Children that can no longer be described are omitted.
func (i *Inspector) ChildJobs(ctx context.Context, head models.JobRecord) ([]models.JobRecord, error) {
	if !head.HasLogs() {
		return []models.JobRecord{}, nil
	}

	rows, err := i.querier.Query(ctx, head, ChildSubmissionQuery(i.profile, head.LogStreamName))
	if err != nil {
		return nil, err
	}

	ids := childIDs(rows, i.profile.ChildSubmission.IDField.Name)
	if len(ids) == 0 {
		return []models.JobRecord{}, nil
	}

	children, err := i.describer.DescribeJobs(ctx, ids)
	if err != nil {
		return nil, &logquery.ServiceError{JobID: head.ID, Op: "describe child jobs", Err: err}
	}

	if len(children) < len(ids) {
		i.log.WithFields(logrus.Fields{
			"job_id":    head.ID,
			"announced": len(ids),
			"resolved":  len(children),
		}).Info("Some child jobs no longer resolve")
	}

	return inAnnouncementOrder(children, ids), nil
}

// inAnnouncementOrder sorts described jobs by the position their id was first announced
func inAnnouncementOrder(jobs []models.JobRecord, ids []string) []models.JobRecord {
	if jobs == nil {
		return []models.JobRecord{}
	}
	position := make(map[string]int, len(ids))
	for i, id := range ids {
		position[id] = i
	}
	sort.SliceStable(jobs, func(a, b int) bool {
		return position[jobs[a].ID] < position[jobs[b].ID]
	})
	return jobs
}

// childIDs collects announced job ids in order. The backend dedupes within a
// window; an id seen again in a later window is skipped here.
func childIDs(rows []models.LogRow, field string) []string {
	seen := make(map[string]bool, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		id, ok := row.Get(field)
		if !ok || id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
