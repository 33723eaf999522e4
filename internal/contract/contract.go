// Package contract provides interfaces and shared utilities for the fcst CLI's internal architecture.
package contract

import (
	"time"

	"github.com/mccforecast/fcst/schema"
)

// StoreManager defines the interface for managing the persistence stores.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetProfileStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for key/value cache storage.
// The column-profile cache of the converter is backed by it.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for recording evaluation runs and their metrics.
type HistoryStore interface {
	// BeginRun creates a new evaluation run and returns its unique ID
	BeginRun(modelName string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun stores completion data and the overall metrics of a run
	EndRun(runID int64, endTime time.Time, samples, trainLength int, overall schema.MetricBundle) error

	// RecordCategoryMetrics stores the metrics computed for one category of a run
	RecordCategoryMetrics(runID int64, category string, samples int, metrics schema.MetricBundle) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// Close closes the underlying connection
	Close() error
}
