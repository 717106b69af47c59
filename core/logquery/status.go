package logquery

import (
	"context"
	"time"
)

// QueryStatus is the lifecycle state of a submitted log query
type QueryStatus string

const (
	StatusScheduled QueryStatus = "Scheduled"
	StatusRunning   QueryStatus = "Running"
	StatusComplete  QueryStatus = "Complete"
	StatusFailed    QueryStatus = "Failed"
	StatusCancelled QueryStatus = "Cancelled"
	StatusTimeout   QueryStatus = "Timeout"
	StatusUnknown   QueryStatus = "Unknown"
)

// Pending reports whether the query has not reached a terminal state yet
func (s QueryStatus) Pending() bool {
	return s == StatusScheduled || s == StatusRunning
}

// Succeeded reports whether the query finished with results
func (s QueryStatus) Succeeded() bool {
	return s == StatusComplete
}

// Waiter blocks between polls. It is the only suspension point of a query.
type Waiter interface {
	Wait(ctx context.Context, d time.Duration) error
}

// SleepWaiter waits on the wall clock, returning early if ctx is done
type SleepWaiter struct{}

// Wait sleeps for d or until ctx is cancelled
func (SleepWaiter) Wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
