package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsCurrent(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	futureEnd := now.Add(30 * 24 * time.Hour)
	pastEnd := now.Add(-30 * 24 * time.Hour)

	tests := []struct {
		name      string
		windowEnd time.Time
		createdOn *time.Time
		expected  bool
	}{
		{
			name:      "nil createdOn is never current",
			windowEnd: pastEnd,
			createdOn: nil,
			expected:  false,
		},
		{
			name:      "created five minutes ago",
			windowEnd: futureEnd,
			createdOn: timePtr(now.Add(-5 * time.Minute)),
			expected:  true,
		},
		{
			name:      "created after window end",
			windowEnd: pastEnd,
			createdOn: timePtr(pastEnd.Add(time.Hour)),
			expected:  true,
		},
		{
			name:      "stale snapshot with future window end",
			windowEnd: futureEnd,
			createdOn: timePtr(now.Add(-time.Hour)),
			expected:  false,
		},
		{
			name:      "exactly at the freshness boundary",
			windowEnd: futureEnd,
			createdOn: timePtr(now.Add(-FreshnessWindow)),
			expected:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsCurrent(tt.windowEnd, tt.createdOn, now))
		})
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
