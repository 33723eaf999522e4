package iocache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mccforecast/fcst/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportHistory(t *testing.T) {
	store := newTestHistoryStore(t)
	start := time.Now()
	runID, err := store.BeginRun("ets", start, map[string]any{"model": "ets"})
	require.NoError(t, err)
	require.NoError(t, store.RecordCategoryMetrics(runID, "a", 3, schema.MetricBundle{SMAPEW: 1, RMSSEW: 2, MAE: 3, RMSE: 4}))
	require.NoError(t, store.EndRun(runID, start.Add(time.Second), 3, 10, schema.MetricBundle{SMAPEW: 1, RMSSEW: 2, MAE: 3, RMSE: 4}))

	base := filepath.Join(t.TempDir(), "history")
	var buf bytes.Buffer
	require.NoError(t, ExportHistory(store, base, &buf))

	for _, suffix := range []string{".evaluation_runs.parquet", ".category_metrics.parquet"} {
		info, err := os.Stat(base + suffix)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
	assert.Contains(t, buf.String(), "Total evaluation runs: 1")
	assert.Contains(t, buf.String(), "Exported 1 category records to:")
}

func TestExportHistory_Errors(t *testing.T) {
	store := newTestHistoryStore(t)

	assert.ErrorContains(t, ExportHistory(store, "", &bytes.Buffer{}), "--output-file")
	assert.ErrorContains(t, ExportHistory(nil, "out", &bytes.Buffer{}), "history is disabled")
	assert.ErrorContains(t, ExportHistory(store, filepath.Join(t.TempDir(), "out"), &bytes.Buffer{}), "no evaluation history")

	mockStore := &MockHistoryStore{}
	assert.ErrorContains(t, ExportHistory(mockStore, "out", &bytes.Buffer{}), "does not support export")
}

func TestPrintCacheStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintCacheStatus(&buf, schema.CacheStatus{Backend: "none"})
	assert.Equal(t, "Cache Backend: none\nConnected: false\n", buf.String())

	buf.Reset()
	ts := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	PrintCacheStatus(&buf, schema.CacheStatus{
		Backend: "sqlite", Connected: true, TotalEntries: 2,
		LastEntryTime: ts, OldestEntryTime: ts, TableSizeBytes: 4096,
	})
	assert.Contains(t, buf.String(), "Total Entries: 2\n")
	assert.Contains(t, buf.String(), "Last Entry: 2025-02-03 04:05:06\n")
	assert.Contains(t, buf.String(), "Table Size: 4096 bytes\n")
}

func TestPrintHistoryStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintHistoryStatus(&buf, schema.HistoryStatus{
		Backend: "sqlite", Connected: true, TotalRuns: 3, LastRunID: 3, TotalSamples: 42,
		TableSizes: map[string]int64{evaluationRunsTable: 3, categoryMetricsTable: 7},
	})
	out := buf.String()
	assert.Contains(t, out, "Total Runs: 3\n")
	assert.Contains(t, out, "Total Samples Evaluated: 42\n")
	assert.Contains(t, out, "Table Sizes:\n  fcst_category_metrics: 7 rows\n  fcst_evaluation_runs: 3 rows\n")
}
