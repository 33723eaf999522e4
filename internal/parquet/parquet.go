// Package parquet provides data structures and functions for exporting fcst
// evaluation data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/mccforecast/fcst/schema"
	"github.com/parquet-go/parquet-go"
)

// EvaluationRun represents a single recorded evaluation with its overall metrics.
// This struct maps to the fcst_evaluation_runs database table.
type EvaluationRun struct {
	// RunID is the unique identifier for this evaluation run
	RunID int64 `parquet:"run_id,snappy"`

	// ModelName is the name of the evaluated model
	ModelName string `parquet:"model_name,snappy,dict"`

	// StartTime is when the evaluation began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the evaluation completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	Samples     int32 `parquet:"samples,snappy"`
	TrainLength int32 `parquet:"train_length,snappy"`

	// Overall metrics are null when the run never completed or the value was not finite
	SMAPEW *float64 `parquet:"smape_w,optional,snappy"`
	RMSSEW *float64 `parquet:"rmsse_w,optional,snappy"`
	MAE    *float64 `parquet:"mae,optional,snappy"`
	RMSE   *float64 `parquet:"rmse,optional,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// CategoryMetrics represents the metrics of one category within a run.
// This struct maps to the fcst_category_metrics database table.
type CategoryMetrics struct {
	RunID    int64   `parquet:"run_id,snappy"`
	Category string  `parquet:"category,snappy,dict"`
	Samples  int32   `parquet:"samples,snappy"`
	SMAPEW   float64 `parquet:"smape_w,snappy"`
	RMSSEW   float64 `parquet:"rmsse_w,snappy"`
	MAE      float64 `parquet:"mae,snappy"`
	RMSE     float64 `parquet:"rmse,snappy"`
}

// MetricRow is one metric value of an evaluation in long format.
// Scope is "overall" or "category"; Category is empty for overall rows.
type MetricRow struct {
	Model    string  `parquet:"model,snappy,dict"`
	Scope    string  `parquet:"scope,snappy,dict"`
	Category string  `parquet:"category,snappy,dict"`
	Metric   string  `parquet:"metric,snappy,dict"`
	Value    float64 `parquet:"value,snappy"`
}

// Metric row scopes.
const (
	OverallScope  = "overall"
	CategoryScope = "category"
)

// writeRows writes rows to outputPath with a schema inferred from T's struct tags.
func writeRows[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// WriteEvaluationRunsParquet writes a slice of EvaluationRun structs to a Parquet file.
func WriteEvaluationRunsParquet(data []EvaluationRun, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteCategoryMetricsParquet writes a slice of CategoryMetrics structs to a Parquet file.
func WriteCategoryMetricsParquet(data []CategoryMetrics, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteMetricRowsParquet writes evaluation metrics in long format to a Parquet file.
func WriteMetricRowsParquet(data []MetricRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// ConvertEvaluationRunRecords converts schema.EvaluationRunRecord to EvaluationRun for Parquet export.
func ConvertEvaluationRunRecords(records []schema.EvaluationRunRecord) []EvaluationRun {
	result := make([]EvaluationRun, len(records))
	for i, record := range records {
		result[i] = EvaluationRun{
			RunID:         record.RunID,
			ModelName:     record.ModelName,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDuration,
			Samples:       record.Samples,
			TrainLength:   record.TrainLength,
			SMAPEW:        record.SMAPEW,
			RMSSEW:        record.RMSSEW,
			MAE:           record.MAE,
			RMSE:          record.RMSE,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertCategoryMetricsRecords converts schema.CategoryMetricsRecord to CategoryMetrics for Parquet export.
func ConvertCategoryMetricsRecords(records []schema.CategoryMetricsRecord) []CategoryMetrics {
	result := make([]CategoryMetrics, len(records))
	for i, record := range records {
		result[i] = CategoryMetrics{
			RunID:    record.RunID,
			Category: record.Category,
			Samples:  record.Samples,
			SMAPEW:   record.SMAPEW,
			RMSSEW:   record.RMSSEW,
			MAE:      record.MAE,
			RMSE:     record.RMSE,
		}
	}
	return result
}

// MetricRowsFromResult flattens an evaluation into overall rows followed by
// category rows ordered by label.
func MetricRowsFromResult(result schema.EvaluationResult) []MetricRow {
	rows := make([]MetricRow, 0, len(schema.AllMetricNames)*(1+len(result.Categories)))
	for _, e := range result.Overall.Entries() {
		rows = append(rows, MetricRow{Model: result.ModelName, Scope: OverallScope, Metric: string(e.Name), Value: e.Value})
	}
	for _, label := range result.Categories.Keys() {
		for _, e := range result.Categories[label].Entries() {
			rows = append(rows, MetricRow{Model: result.ModelName, Scope: CategoryScope, Category: label, Metric: string(e.Name), Value: e.Value})
		}
	}
	return rows
}
