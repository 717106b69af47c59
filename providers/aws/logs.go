package aws

import (
	"context"
	"fmt"

	"batch-run-inspector/core/logquery"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
)

// StartQuery submits a Logs Insights query and returns its id
func (c *Client) StartQuery(ctx context.Context, req logquery.QueryRequest) (string, error) {
	input := &cloudwatchlogs.StartQueryInput{
		LogGroupName: aws.String(req.LogGroup),
		StartTime:    aws.Int64(req.StartTime),
		EndTime:      aws.Int64(req.EndTime),
		QueryString:  aws.String(req.QueryString),
		Limit:        aws.Int32(req.Limit),
	}

	result, err := c.logsClient.StartQuery(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to start logs query: %w", err)
	}
	if result.QueryId == nil {
		return "", fmt.Errorf("logs query for %s returned no query id", req.LogGroup)
	}

	return *result.QueryId, nil
}

// GetQueryResults fetches the status and, once complete, the rows of a query
func (c *Client) GetQueryResults(ctx context.Context, queryID string) (*logquery.QueryResult, error) {
	result, err := c.logsClient.GetQueryResults(ctx, &cloudwatchlogs.GetQueryResultsInput{
		QueryId: aws.String(queryID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get logs query results: %w", err)
	}

	rows := make([][]logquery.ResultField, len(result.Results))
	for i, fields := range result.Results {
		row := make([]logquery.ResultField, 0, len(fields))
		for _, f := range fields {
			row = append(row, logquery.ResultField{
				Field: aws.ToString(f.Field),
				Value: aws.ToString(f.Value),
			})
		}
		rows[i] = row
	}

	return &logquery.QueryResult{
		Status: queryStatus(result.Status),
		Rows:   rows,
	}, nil
}

// queryStatus maps the SDK query status onto the executor's state enum
func queryStatus(s types.QueryStatus) logquery.QueryStatus {
	switch s {
	case types.QueryStatusScheduled:
		return logquery.StatusScheduled
	case types.QueryStatusRunning:
		return logquery.StatusRunning
	case types.QueryStatusComplete:
		return logquery.StatusComplete
	case types.QueryStatusFailed:
		return logquery.StatusFailed
	case types.QueryStatusCancelled:
		return logquery.StatusCancelled
	case types.QueryStatusTimeout:
		return logquery.StatusTimeout
	default:
		return logquery.StatusUnknown
	}
}
