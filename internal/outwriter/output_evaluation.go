package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/mccforecast/fcst/internal/contract"
	"github.com/mccforecast/fcst/internal/parquet"
	"github.com/mccforecast/fcst/schema"
)

// jsonMetrics is a MetricBundle with non-finite values rendered as null.
type jsonMetrics struct {
	SMAPEW *float64 `json:"sMAPE_w"`
	RMSSEW *float64 `json:"RMSSE_w"`
	MAE    *float64 `json:"MAE"`
	RMSE   *float64 `json:"RMSE"`
}

type jsonCategory struct {
	Category string `json:"category"`
	Samples  int    `json:"samples"`
	jsonMetrics
}

// EvaluationDocument is the JSON form of an evaluation.
type EvaluationDocument struct {
	Model       string         `json:"model"`
	Samples     int            `json:"samples"`
	TrainLength int            `json:"train_length"`
	Overall     jsonMetrics    `json:"overall"`
	Categories  []jsonCategory `json:"categories,omitempty"`
	Report      string         `json:"report,omitempty"`
}

func toJSONMetrics(b schema.MetricBundle) jsonMetrics {
	return jsonMetrics{
		SMAPEW: finiteOrNil(b.SMAPEW),
		RMSSEW: finiteOrNil(b.RMSSEW),
		MAE:    finiteOrNil(b.MAE),
		RMSE:   finiteOrNil(b.RMSE),
	}
}

// NewEvaluationDocument builds the JSON document of an evaluation without the
// text report. Categories are ordered by label.
func NewEvaluationDocument(result schema.EvaluationResult) EvaluationDocument {
	out := EvaluationDocument{
		Model:       result.ModelName,
		Samples:     result.Samples,
		TrainLength: result.TrainLength,
		Overall:     toJSONMetrics(result.Overall),
	}
	for _, label := range result.Categories.Keys() {
		out.Categories = append(out.Categories, jsonCategory{
			Category:    label,
			Samples:     result.CategoryN[label],
			jsonMetrics: toJSONMetrics(result.Categories[label]),
		})
	}
	return out
}

// WriteReport sends the text report rendered by render to stdout or outputFile.
func WriteReport(outputFile string, render func(io.Writer) error) error {
	return writeWithFile(outputFile, render, "Wrote report")
}

// PrintEvaluation outputs an evaluation, dispatching based on the output format configured.
func PrintEvaluation(result schema.EvaluationResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, NewEvaluationDocument(result))
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEvaluationCSV(w, result)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires --output-file")
		}
		if err := parquet.WriteMetricRowsParquet(parquet.MetricRowsFromResult(result), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		contract.LogInfo(cfg.Quiet, "💾 Wrote Parquet to %s", cfg.OutputFile)
	default:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			_, err := fmt.Fprintln(w, result.Report)
			return err
		}, "Wrote report"); err != nil {
			return err
		}
	}
	contract.LogInfo(cfg.Quiet, "Evaluated %d samples in %v", result.Samples, duration)
	return nil
}
