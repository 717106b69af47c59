package logquery

import (
	"batch-run-inspector/core/models"
)

// DefaultWindowSeconds keeps each window under the backend result cap.
// Assumes <= 10k matching events per 10 minutes of engine log.
const DefaultWindowSeconds int64 = 600

// TimeWindow is a bounded time range covered by one log query, in epoch seconds
type TimeWindow struct {
	Start int64
	End   int64
}

// Plan partitions [start, end] into consecutive windows of at most windowSeconds.
// end is stop when known, otherwise now(). The last window may be shorter, and
// a zero-length run still gets one window.
func Plan(start int64, stop *int64, windowSeconds int64, now func() int64) []TimeWindow {
	end := effectiveEnd(start, stop, now)

	if windowSeconds <= 0 {
		windowSeconds = end - start + 1
	}

	points := []int64{start}
	for p := start + windowSeconds; p < end; p += windowSeconds {
		points = append(points, p)
	}
	points = append(points, end)

	if len(points) < 2 {
		return nil
	}

	windows := make([]TimeWindow, 0, len(points)-1)
	for i := 0; i < len(points)-1; i++ {
		windows = append(windows, TimeWindow{Start: points[i], End: points[i+1]})
	}
	return windows
}

// PlanJob plans the windows covering a job's lifetime, or nil if it has not started
func PlanJob(job models.JobRecord, windowSeconds int64, now func() int64) []TimeWindow {
	if !job.Started() {
		return nil
	}
	return Plan(*job.StartedAt, job.StoppedAt, windowSeconds, now)
}

// effectiveEnd is the stop time, or now for running jobs. Clamped to start
// so a skewed clock never yields an inverted range.
func effectiveEnd(start int64, stop *int64, now func() int64) int64 {
	var end int64
	if stop != nil {
		end = *stop
	} else {
		end = now()
	}
	if end < start {
		end = start
	}
	return end
}
