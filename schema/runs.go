package schema

import "time"

// RunCounts summarizes what one aggregation run touched.
type RunCounts struct {
	ChatMessages int `json:"chatMessages"`
	ReviewPulls  int `json:"reviewPulls"`
	GitFolders   int `json:"gitFolders"`
}

// RunRecord is one recorded aggregation run.
type RunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int64
	WindowFrom    time.Time
	WindowTo      time.Time
	Counts        RunCounts
	ConfigParams  *string
}

// RunStoreStatus carries summary information about the run store.
type RunStoreStatus struct {
	Backend      string
	Connected    bool
	TotalRuns    int64
	LastRunTime  time.Time
	FirstRunTime time.Time
}
