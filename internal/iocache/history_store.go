package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mccforecast/fcst/internal/contract"
	"github.com/mccforecast/fcst/schema"
)

// Table names for evaluation history.
const (
	evaluationRunsTable  = "fcst_evaluation_runs"
	categoryMetricsTable = "fcst_category_metrics"
)

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (*HistoryStoreImpl, error) {
	if backend == schema.NoneBackend {
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDatabase(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// createHistoryTables creates the evaluation history tables.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{evaluationRunsTable, getCreateEvaluationRunsQuery(backend)},
		{categoryMetricsTable, getCreateCategoryMetricsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateEvaluationRunsQuery returns the CREATE TABLE query for fcst_evaluation_runs.
func getCreateEvaluationRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(evaluationRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				model_name VARCHAR(255) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				samples INT,
				train_length INT,
				smape_w DOUBLE,
				rmsse_w DOUBLE,
				mae DOUBLE,
				rmse DOUBLE,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				model_name TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				samples INT,
				train_length INT,
				smape_w DOUBLE PRECISION,
				rmsse_w DOUBLE PRECISION,
				mae DOUBLE PRECISION,
				rmse DOUBLE PRECISION,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				model_name TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				samples INTEGER,
				train_length INTEGER,
				smape_w REAL,
				rmsse_w REAL,
				mae REAL,
				rmse REAL,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateCategoryMetricsQuery returns the CREATE TABLE query for fcst_category_metrics.
func getCreateCategoryMetricsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(categoryMetricsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				category VARCHAR(255) NOT NULL,
				samples INT NOT NULL,
				smape_w DOUBLE,
				rmsse_w DOUBLE,
				mae DOUBLE,
				rmse DOUBLE,
				PRIMARY KEY (run_id, category)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				category TEXT NOT NULL,
				samples INT NOT NULL,
				smape_w DOUBLE PRECISION,
				rmsse_w DOUBLE PRECISION,
				mae DOUBLE PRECISION,
				rmse DOUBLE PRECISION,
				PRIMARY KEY (run_id, category)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				category TEXT NOT NULL,
				samples INTEGER NOT NULL,
				smape_w REAL,
				rmsse_w REAL,
				mae REAL,
				rmse REAL,
				PRIMARY KEY (run_id, category)
			);
		`, quotedTableName)
	}
}

// finiteOrNull maps NaN and infinities to NULL, which every backend can store.
func finiteOrNull(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

// BeginRun creates a new evaluation run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(modelName string, startTime time.Time, configParams map[string]any) (int64, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(evaluationRunsTable, hs.backend)
	params := strings.Join(placeholders(hs.backend, 3), ", ")

	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (model_name, start_time, config_params) VALUES (%s) RETURNING run_id`, quotedTableName, params)
		err = hs.db.QueryRow(query, modelName, startTime, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (model_name, start_time, config_params) VALUES (%s)`, quotedTableName, params)
		var result sql.Result
		result, err = hs.db.Exec(query, modelName, formatTime(startTime, hs.backend), string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert evaluation run: %w", err)
	}
	return runID, nil
}

// EndRun stores completion data and the overall metrics of a run.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, samples, trainLength int, overall schema.MetricBundle) error {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(evaluationRunsTable, hs.backend)
	p := placeholders(hs.backend, 10)

	var startTime nullableTime
	selectQuery := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, p[0])
	if err := hs.db.QueryRow(selectQuery, runID).Scan(&startTime); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	durationMs := endTime.Sub(startTime.Time).Milliseconds()

	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, samples = %s, train_length = %s,
		smape_w = %s, rmsse_w = %s, mae = %s, rmse = %s WHERE run_id = %s`,
		quotedTableName, p[0], p[1], p[2], p[3], p[4], p[5], p[6], p[7], p[8])
	args := []any{
		formatTime(endTime, hs.backend), durationMs, samples, trainLength,
		finiteOrNull(overall.SMAPEW), finiteOrNull(overall.RMSSEW), finiteOrNull(overall.MAE), finiteOrNull(overall.RMSE),
		runID,
	}
	if _, err := hs.db.Exec(updateQuery, args...); err != nil {
		return fmt.Errorf("failed to update evaluation run: %w", err)
	}
	return nil
}

// RecordCategoryMetrics stores the metrics computed for one category of a run.
func (hs *HistoryStoreImpl) RecordCategoryMetrics(runID int64, category string, samples int, metrics schema.MetricBundle) error {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_id, category, samples, smape_w, rmsse_w, mae, rmse) VALUES (%s)`,
		quoteTableName(categoryMetricsTable, hs.backend), strings.Join(placeholders(hs.backend, 7), ", "))
	args := []any{
		runID, category, samples,
		finiteOrNull(metrics.SMAPEW), finiteOrNull(metrics.RMSSEW), finiteOrNull(metrics.MAE), finiteOrNull(metrics.RMSE),
	}
	if _, err := hs.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert category metrics for %q: %w", category, err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if hs.backend == schema.NoneBackend || hs.db == nil {
		return status, nil
	}

	runsTable := quoteTableName(evaluationRunsTable, hs.backend)
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runsTable)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var lastRunTime, oldestRunTime nullableTime
		lastQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", runsTable)
		if err := hs.db.QueryRow(lastQuery).Scan(&status.LastRunID, &lastRunTime); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunTime = lastRunTime.Time

		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runsTable)
		if err := hs.db.QueryRow(oldestQuery).Scan(&oldestRunTime); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldestRunTime.Time

		samplesQuery := fmt.Sprintf("SELECT COALESCE(SUM(samples), 0) FROM %s", runsTable)
		if err := hs.db.QueryRow(samplesQuery).Scan(&status.TotalSamples); err != nil {
			return status, fmt.Errorf("failed to get total samples: %w", err)
		}
	}

	for _, table := range []string{evaluationRunsTable, categoryMetricsTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))
		if err := hs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all evaluation runs from the store.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.EvaluationRunRecord, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, model_name, start_time, end_time, run_duration_ms, samples, train_length,
		smape_w, rmsse_w, mae, rmse, config_params FROM %s ORDER BY run_id`, quoteTableName(evaluationRunsTable, hs.backend))

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluation runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.EvaluationRunRecord
	for rows.Next() {
		var record schema.EvaluationRunRecord
		var startTime, endTime nullableTime
		var duration, samples, trainLength sql.NullInt32
		var smape, rmsse, mae, rmse sql.NullFloat64
		var configParams sql.NullString

		if err := rows.Scan(&record.RunID, &record.ModelName, &startTime, &endTime, &duration, &samples, &trainLength,
			&smape, &rmsse, &mae, &rmse, &configParams); err != nil {
			return nil, fmt.Errorf("failed to scan evaluation run: %w", err)
		}

		record.StartTime = startTime.Time
		if endTime.Valid {
			t := endTime.Time
			record.EndTime = &t
		}
		if duration.Valid {
			d := duration.Int32
			record.RunDuration = &d
		}
		record.Samples = samples.Int32
		record.TrainLength = trainLength.Int32
		record.SMAPEW = nullFloatPtr(smape)
		record.RMSSEW = nullFloatPtr(rmsse)
		record.MAE = nullFloatPtr(mae)
		record.RMSE = nullFloatPtr(rmse)
		if configParams.Valid {
			s := configParams.String
			record.ConfigParams = &s
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating evaluation runs: %w", err)
	}
	return results, nil
}

// GetAllCategoryMetrics retrieves all per-category metrics from the store.
// Metrics stored as NULL come back as NaN.
func (hs *HistoryStoreImpl) GetAllCategoryMetrics() ([]schema.CategoryMetricsRecord, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, category, samples, smape_w, rmsse_w, mae, rmse FROM %s ORDER BY run_id, category`,
		quoteTableName(categoryMetricsTable, hs.backend))

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query category metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.CategoryMetricsRecord
	for rows.Next() {
		var record schema.CategoryMetricsRecord
		var smape, rmsse, mae, rmse sql.NullFloat64
		if err := rows.Scan(&record.RunID, &record.Category, &record.Samples, &smape, &rmsse, &mae, &rmse); err != nil {
			return nil, fmt.Errorf("failed to scan category metrics: %w", err)
		}
		record.SMAPEW = nullFloatOrNaN(smape)
		record.RMSSEW = nullFloatOrNaN(rmsse)
		record.MAE = nullFloatOrNaN(mae)
		record.RMSE = nullFloatOrNaN(rmse)
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category metrics: %w", err)
	}
	return results, nil
}

func nullFloatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullFloatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
