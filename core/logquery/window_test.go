package logquery

import (
	"testing"

	"batch-run-inspector/core/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func fixedNow(v int64) func() int64 {
	return func() int64 { return v }
}

func TestPlan_Windows(t *testing.T) {
	tests := []struct {
		name     string
		start    int64
		stop     *int64
		now      int64
		window   int64
		expected []TimeWindow
	}{
		{
			name:     "exact multiple of window",
			start:    1000,
			stop:     int64Ptr(2200),
			window:   600,
			expected: []TimeWindow{{1000, 1600}, {1600, 2200}},
		},
		{
			name:     "partial final window",
			start:    1000,
			stop:     int64Ptr(2000),
			window:   600,
			expected: []TimeWindow{{1000, 1600}, {1600, 2000}},
		},
		{
			name:     "shorter than one window",
			start:    1000,
			stop:     int64Ptr(1030),
			window:   600,
			expected: []TimeWindow{{1000, 1030}},
		},
		{
			name:     "running job ends at now",
			start:    1000,
			now:      1700,
			window:   600,
			expected: []TimeWindow{{1000, 1600}, {1600, 1700}},
		},
		{
			name:     "zero duration job",
			start:    1000,
			stop:     int64Ptr(1000),
			window:   600,
			expected: []TimeWindow{{1000, 1000}},
		},
		{
			name:     "running job started now",
			start:    1000,
			now:      1000,
			window:   600,
			expected: []TimeWindow{{1000, 1000}},
		},
		{
			name:     "clock behind start",
			start:    1000,
			now:      900,
			window:   600,
			expected: []TimeWindow{{1000, 1000}},
		},
		{
			name:     "non-positive window size",
			start:    1000,
			stop:     int64Ptr(5000),
			window:   0,
			expected: []TimeWindow{{1000, 5000}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plan(tt.start, tt.stop, tt.window, fixedNow(tt.now))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPlan_ContiguousCoverage(t *testing.T) {
	for _, window := range []int64{7, 60, 600, 3600} {
		for _, duration := range []int64{1, 59, 600, 601, 86_400, 86_401} {
			start := int64(1_700_000_000)
			stop := start + duration

			windows := Plan(start, &stop, window, fixedNow(0))
			require.NotEmpty(t, windows)

			assert.Equal(t, start, windows[0].Start)
			assert.Equal(t, stop, windows[len(windows)-1].End)
			for i, w := range windows {
				assert.Less(t, w.Start, w.End)
				assert.LessOrEqual(t, w.End-w.Start, window)
				if i > 0 {
					assert.Equal(t, windows[i-1].End, w.Start, "windows must be contiguous")
				}
			}
		}
	}
}

func TestPlanJob_NotStarted(t *testing.T) {
	job := models.JobRecord{ID: "head", LogStreamName: "stream"}

	assert.Empty(t, PlanJob(job, 600, fixedNow(5000)))
}

func TestPlanJob_Started(t *testing.T) {
	job := models.JobRecord{ID: "head", StartedAt: int64Ptr(1000), StoppedAt: int64Ptr(1300)}

	assert.Equal(t, []TimeWindow{{1000, 1300}}, PlanJob(job, 600, fixedNow(5000)))
}
