package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/mccforecast/fcst/internal/contract"
	"github.com/mccforecast/fcst/internal/parquet"
	"github.com/mccforecast/fcst/schema"
)

// historyReader is implemented by history stores that can return their full contents.
type historyReader interface {
	GetStatus() (schema.HistoryStatus, error)
	GetAllRuns() ([]schema.EvaluationRunRecord, error)
	GetAllCategoryMetrics() ([]schema.CategoryMetricsRecord, error)
}

// ExecuteHistoryExport exports the global history store to Parquet files.
func ExecuteHistoryExport(outputFile string, w io.Writer) error {
	return ExportHistory(Manager.GetHistoryStore(), outputFile, w)
}

// ExportHistory writes all evaluation runs and category metrics of store to
// <outputFile>.evaluation_runs.parquet and <outputFile>.category_metrics.parquet.
func ExportHistory(store contract.HistoryStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history is disabled. Set --history-backend to enable it")
	}

	reader, ok := store.(historyReader)
	if !ok {
		return fmt.Errorf("history store %T does not support export", store)
	}

	status, err := reader.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no evaluation history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total evaluation runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total category records: %d\n", status.TableSizes[categoryMetricsTable])

	runs, err := reader.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve evaluation runs: %w", err)
	}
	categories, err := reader.GetAllCategoryMetrics()
	if err != nil {
		return fmt.Errorf("failed to retrieve category metrics: %w", err)
	}

	parquetRuns := parquet.ConvertEvaluationRunRecords(runs)
	parquetCategories := parquet.ConvertCategoryMetricsRecords(categories)

	runsFile := outputFile + ".evaluation_runs.parquet"
	if err := parquet.WriteEvaluationRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write evaluation runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d evaluation runs to: %s\n", len(parquetRuns), runsFile)

	categoriesFile := outputFile + ".category_metrics.parquet"
	if err := parquet.WriteCategoryMetricsParquet(parquetCategories, categoriesFile); err != nil {
		return fmt.Errorf("failed to write category metrics: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d category records to: %s\n", len(parquetCategories), categoriesFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be read with pandas (via pyarrow), DuckDB, Spark or any other Parquet-compatible tool.")
	return nil
}
