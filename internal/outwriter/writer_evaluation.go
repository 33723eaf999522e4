package outwriter

import (
	"encoding/csv"
	"io"

	"github.com/mccforecast/fcst/internal/parquet"
	"github.com/mccforecast/fcst/schema"
)

// writeEvaluationCSV writes an evaluation in long format: one row per metric,
// overall rows first.
func writeEvaluationCSV(w io.Writer, result schema.EvaluationResult) error {
	header := []string{"model", "scope", "category", "metric", "value"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, row := range parquet.MetricRowsFromResult(result) {
			rec := []string{row.Model, row.Scope, row.Category, row.Metric, formatMetric(row.Value)}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
