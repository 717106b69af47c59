package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/batch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
)

// logsAPI is the subset of the CloudWatch Logs client used for Insights queries
type logsAPI interface {
	StartQuery(ctx context.Context, params *cloudwatchlogs.StartQueryInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.StartQueryOutput, error)
	GetQueryResults(ctx context.Context, params *cloudwatchlogs.GetQueryResultsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.GetQueryResultsOutput, error)
}

// batchAPI is the subset of the Batch client used to describe jobs
type batchAPI interface {
	DescribeJobs(ctx context.Context, params *batch.DescribeJobsInput, optFns ...func(*batch.Options)) (*batch.DescribeJobsOutput, error)
}

// Client is the AWS provider client. It is built once per process and
// shared by all requests; the SDK clients are safe for concurrent use.
type Client struct {
	logsClient  logsAPI
	batchClient batchAPI
	region      string
}

// NewClient creates a new AWS client for the given region
func NewClient(ctx context.Context, region string) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}

	return &Client{
		logsClient:  cloudwatchlogs.NewFromConfig(cfg),
		batchClient: batch.NewFromConfig(cfg),
		region:      region,
	}, nil
}

// Region returns the region the client talks to
func (c *Client) Region() string {
	return c.region
}
