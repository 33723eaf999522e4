package schema

import "time"

// CacheStatus represents the status of the profile cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// HistoryStatus represents the status of the evaluation history store.
type HistoryStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalSamples  int64            `json:"total_samples"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// EvaluationRunRecord represents a row from the fcst_evaluation_runs table.
type EvaluationRunRecord struct {
	RunID        int64
	ModelName    string
	StartTime    time.Time
	EndTime      *time.Time
	RunDuration  *int32 // milliseconds
	Samples      int32
	TrainLength  int32
	SMAPEW       *float64
	RMSSEW       *float64
	MAE          *float64
	RMSE         *float64
	ConfigParams *string
}

// CategoryMetricsRecord represents a row from the fcst_category_metrics table.
type CategoryMetricsRecord struct {
	RunID    int64
	Category string
	Samples  int32
	SMAPEW   float64
	RMSSEW   float64
	MAE      float64
	RMSE     float64
}
