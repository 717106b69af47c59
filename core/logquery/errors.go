package logquery

import (
	"errors"
	"fmt"
)

// ErrQueryFailed is returned when a window query ends in a non-complete terminal state
var ErrQueryFailed = errors.New("logs query was not successful")

// ServiceError is the single failure surfaced for a job's log aggregation.
// Backend errors are carried unmodified in Err.
type ServiceError struct {
	JobID string
	Op    string
	Err   error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s for job %s: %v", e.Op, e.JobID, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// IsServiceError reports whether err is or wraps a *ServiceError
func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}
