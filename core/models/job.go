package models

// JobRecord is the read-only view of a batch job used to locate its logs.
// Timestamps are epoch seconds.
type JobRecord struct {
	ID            string `json:"id"`
	Name          string `json:"name,omitempty"`
	Status        string `json:"status,omitempty"`
	StatusReason  string `json:"status_reason,omitempty"`
	CreatedAt     *int64 `json:"created_at,omitempty"`
	StartedAt     *int64 `json:"started_at,omitempty"`      // nil until the job starts
	StoppedAt     *int64 `json:"stopped_at,omitempty"`      // nil while the job is running
	LogStreamName string `json:"log_stream_name,omitempty"` // empty if the job never logged
}

// Started reports whether the job has a start time
func (j JobRecord) Started() bool {
	return j.StartedAt != nil
}

// HasLogs reports whether the job has a log stream to query
func (j JobRecord) HasLogs() bool {
	return j.LogStreamName != ""
}
