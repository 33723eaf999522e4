package iocache

import (
	"database/sql"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/mccforecast/fcst/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHistoryStore(t *testing.T) *HistoryStoreImpl {
	t.Helper()
	store, err := NewHistoryStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "profile_cache", false},
		{"leading underscore", "_t1", false},
		{"empty", "", true},
		{"leading digit", "1table", true},
		{"injection", "t; DROP TABLE x", true},
		{"dash", "profile-cache", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`runs`", quoteTableName("runs", schema.MySQLBackend))
	assert.Equal(t, `"runs"`, quoteTableName("runs", schema.PostgreSQLBackend))
	assert.Equal(t, `"runs"`, quoteTableName("runs", schema.SQLiteBackend))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"?", "?", "?"}, placeholders(schema.MySQLBackend, 3))
	assert.Equal(t, []string{"$1", "$2"}, placeholders(schema.PostgreSQLBackend, 2))
	assert.Empty(t, placeholders(schema.SQLiteBackend, 0))
}

func TestNullableTimeScan(t *testing.T) {
	ref := time.Date(2025, 6, 1, 8, 30, 15, 250000000, time.UTC)
	tests := []struct {
		name  string
		src   any
		valid bool
	}{
		{"nil", nil, false},
		{"native", ref, true},
		{"rfc3339", ref.Format(time.RFC3339Nano), true},
		{"mysql bytes", []byte("2025-06-01 08:30:15.25"), true},
		{"mysql seconds", "2025-06-01 08:30:15", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var nt nullableTime
			require.NoError(t, nt.Scan(tt.src))
			assert.Equal(t, tt.valid, nt.Valid)
			if tt.valid {
				assert.WithinDuration(t, ref, nt.Time, time.Second)
			}
		})
	}

	var nt nullableTime
	assert.Error(t, nt.Scan("yesterday"))
	assert.Error(t, nt.Scan(42))
}

func TestOpenDatabaseUnsupportedBackend(t *testing.T) {
	_, err := openDatabase("oracle", "", "")
	assert.ErrorContains(t, err, "unsupported backend")
}

func TestCacheStore_SQLite(t *testing.T) {
	store, err := NewCacheStore(profileTable, schema.SQLiteBackend, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, _, _, err = store.Get("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, store.Set("a.csv|10|1", []byte(`{"v":1}`), 1, 100))
	require.NoError(t, store.Set("b.csv|20|2", []byte(`{"v":2}`), 1, 200))
	require.NoError(t, store.Set("a.csv|10|1", []byte(`{"v":3}`), 2, 300))

	value, version, ts, err := store.Get("a.csv|10|1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"v":3}`), value)
	assert.Equal(t, 2, version)
	assert.Equal(t, int64(300), ts)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, time.Unix(300, 0), status.LastEntryTime)
	assert.Equal(t, time.Unix(200, 0), status.OldestEntryTime)
	assert.Greater(t, status.TableSizeBytes, int64(0))
}

func TestCacheStore_NoneBackend(t *testing.T) {
	store, err := NewCacheStore(profileTable, schema.NoneBackend, "")
	require.NoError(t, err)

	require.NoError(t, store.Set("k", []byte("v"), 1, 1))
	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestCacheStore_InvalidTableName(t *testing.T) {
	_, err := NewCacheStore("bad name", schema.SQLiteBackend, "")
	assert.Error(t, err)
}

func TestHistoryStore_RunLifecycle(t *testing.T) {
	store := newTestHistoryStore(t)

	start := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	runID, err := store.BeginRun("lightgbm", start, map[string]any{"input": "forecast.csv"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), runID)

	overall := schema.MetricBundle{SMAPEW: 12.5, RMSSEW: 0.75, MAE: 3, RMSE: math.Inf(1)}
	require.NoError(t, store.EndRun(runID, start.Add(2*time.Second), 100, 400, overall))
	require.NoError(t, store.RecordCategoryMetrics(runID, "5812", 40, schema.MetricBundle{SMAPEW: 10, RMSSEW: 0.5, MAE: 2, RMSE: 3}))
	require.NoError(t, store.RecordCategoryMetrics(runID, "5411", 60, schema.MetricBundle{SMAPEW: math.NaN(), RMSSEW: 1, MAE: 4, RMSE: 5}))

	// A second run that never completes
	second, err := store.BeginRun("naive", start.Add(time.Hour), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second)

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)

	first := runs[0]
	assert.Equal(t, "lightgbm", first.ModelName)
	assert.True(t, first.StartTime.Equal(start))
	require.NotNil(t, first.EndTime)
	assert.True(t, first.EndTime.Equal(start.Add(2*time.Second)))
	require.NotNil(t, first.RunDuration)
	assert.Equal(t, int32(2000), *first.RunDuration)
	assert.Equal(t, int32(100), first.Samples)
	assert.Equal(t, int32(400), first.TrainLength)
	require.NotNil(t, first.SMAPEW)
	assert.Equal(t, 12.5, *first.SMAPEW)
	assert.Nil(t, first.RMSE, "non-finite metrics are stored as NULL")
	require.NotNil(t, first.ConfigParams)
	assert.JSONEq(t, `{"input":"forecast.csv"}`, *first.ConfigParams)

	assert.Nil(t, runs[1].EndTime)
	assert.Nil(t, runs[1].SMAPEW)

	categories, err := store.GetAllCategoryMetrics()
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "5411", categories[0].Category)
	assert.True(t, math.IsNaN(categories[0].SMAPEW))
	assert.Equal(t, int32(60), categories[0].Samples)
	assert.Equal(t, "5812", categories[1].Category)
	assert.Equal(t, 10.0, categories[1].SMAPEW)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalRuns)
	assert.Equal(t, int64(2), status.LastRunID)
	assert.True(t, status.OldestRunTime.Equal(start))
	assert.Equal(t, int64(100), status.TotalSamples)
	assert.Equal(t, int64(2), status.TableSizes[evaluationRunsTable])
	assert.Equal(t, int64(2), status.TableSizes[categoryMetricsTable])
}

func TestHistoryStore_DuplicateCategory(t *testing.T) {
	store := newTestHistoryStore(t)
	runID, err := store.BeginRun("m", time.Now(), nil)
	require.NoError(t, err)

	require.NoError(t, store.RecordCategoryMetrics(runID, "a", 1, schema.MetricBundle{}))
	assert.Error(t, store.RecordCategoryMetrics(runID, "a", 1, schema.MetricBundle{}))
}

func TestHistoryStore_EndUnknownRun(t *testing.T) {
	store := newTestHistoryStore(t)
	assert.Error(t, store.EndRun(99, time.Now(), 1, 1, schema.MetricBundle{}))
}

func TestHistoryStore_NoneBackend(t *testing.T) {
	store, err := NewHistoryStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun("m", time.Now(), nil)
	require.NoError(t, err)
	assert.Zero(t, runID)
	assert.NoError(t, store.EndRun(runID, time.Now(), 1, 1, schema.MetricBundle{}))
	assert.NoError(t, store.RecordCategoryMetrics(runID, "a", 1, schema.MetricBundle{}))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	assert.Empty(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}
