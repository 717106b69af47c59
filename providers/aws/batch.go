package aws

import (
	"context"
	"fmt"

	"batch-run-inspector/core/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/batch"
	"github.com/aws/aws-sdk-go-v2/service/batch/types"
)

// describeJobsMaxIDs is the Batch API limit on ids per DescribeJobs call
const describeJobsMaxIDs = 100

// DescribeJobs resolves batch job ids into job records.
// Ids Batch no longer knows about (purged after expiry) are omitted.
func (c *Client) DescribeJobs(ctx context.Context, ids []string) ([]models.JobRecord, error) {
	jobs := make([]models.JobRecord, 0, len(ids))

	for start := 0; start < len(ids); start += describeJobsMaxIDs {
		end := start + describeJobsMaxIDs
		if end > len(ids) {
			end = len(ids)
		}

		result, err := c.batchClient.DescribeJobs(ctx, &batch.DescribeJobsInput{
			Jobs: ids[start:end],
		})
		if err != nil {
			return nil, fmt.Errorf("failed to describe jobs: %w", err)
		}

		for _, detail := range result.Jobs {
			jobs = append(jobs, toJobRecord(detail))
		}
	}

	return jobs, nil
}

// toJobRecord converts a Batch job detail. Batch reports epoch milliseconds;
// the start is floored and the stop rounded up so no logged second is lost.
func toJobRecord(detail types.JobDetail) models.JobRecord {
	job := models.JobRecord{
		ID:           aws.ToString(detail.JobId),
		Name:         aws.ToString(detail.JobName),
		Status:       string(detail.Status),
		StatusReason: aws.ToString(detail.StatusReason),
	}

	if detail.CreatedAt != nil {
		job.CreatedAt = aws.Int64(*detail.CreatedAt / 1000)
	}
	if detail.StartedAt != nil {
		job.StartedAt = aws.Int64(*detail.StartedAt / 1000)
	}
	if detail.StoppedAt != nil {
		job.StoppedAt = aws.Int64((*detail.StoppedAt + 999) / 1000)
	}
	if detail.Container != nil {
		job.LogStreamName = aws.ToString(detail.Container.LogStreamName)
	}

	return job
}
