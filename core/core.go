// Package core evaluates forecasts against actuals and renders the MCC
// aggregates accuracy report.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mccforecast/fcst/core/convert"
	"github.com/mccforecast/fcst/core/metrics"
	"github.com/mccforecast/fcst/internal/contract"
	"github.com/mccforecast/fcst/internal/dataio"
	"github.com/mccforecast/fcst/internal/outwriter"
	"github.com/mccforecast/fcst/schema"
)

// ExecutorFunc defines the function signature for executing a CLI mode.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// EvaluateAndReport evaluates the forecast overall and per category, formats
// the report and, when printReport is set, writes it to w followed by a newline.
// It returns the overall metrics and the report text.
func EvaluateAndReport(w io.Writer, modelName string, yTrue, yPred, yTrain []float64, categories []string, printReport bool) (schema.MetricBundle, string, error) {
	overall, table, err := EvaluateByCategory(yTrue, yPred, yTrain, categories)
	if err != nil {
		return overall, "", err
	}
	report := FormatReport(modelName, overall, table)
	if printReport {
		if _, err := fmt.Fprintln(w, report); err != nil {
			return overall, report, fmt.Errorf("failed to write report: %w", err)
		}
	}
	return overall, report, nil
}

// EvaluateResult runs the full evaluation and collects everything the output
// writers and the history store need.
func EvaluateResult(modelName string, yTrue, yPred, yTrain []float64, categories []string) (schema.EvaluationResult, error) {
	overall, table, err := EvaluateByCategory(yTrue, yPred, yTrain, categories)
	if err != nil {
		return schema.EvaluationResult{}, err
	}
	result := schema.EvaluationResult{
		ModelName:   modelName,
		Samples:     len(yTrue),
		TrainLength: len(yTrain),
		Overall:     overall,
		Categories:  table,
		Report:      FormatReport(modelName, overall, table),
	}
	if categories != nil {
		result.CategoryN = CategorySampleCounts(categories)
	}
	return result, nil
}

// ExecuteEvaluate loads the forecast input, evaluates it, records the run when
// history is enabled and writes the result in the configured format.
func ExecuteEvaluate(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	if cfg.InputPath == "" {
		return errors.New("--input is required")
	}

	forecast, err := dataio.LoadForecast(cfg.InputPath, cfg.TrueCol, cfg.PredCol, cfg.CategoryCol)
	if err != nil {
		return fmt.Errorf("failed to load forecast: %w", err)
	}
	trainPath := cfg.TrainPath
	if trainPath == "" {
		trainPath = cfg.InputPath
	}
	yTrain, err := dataio.LoadSeries(trainPath, cfg.TrainCol)
	if err != nil {
		return fmt.Errorf("failed to load training series: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var store contract.HistoryStore
	if mgr != nil {
		store = mgr.GetHistoryStore()
	}

	if cfg.Output == schema.TextOut || cfg.Output == "" {
		if err := outwriter.WriteReport(cfg.OutputFile, func(w io.Writer) error {
			_, _, err := EvaluateAndReport(w, cfg.ModelName, forecast.YTrue, forecast.YPred, yTrain, forecast.Categories, true)
			return err
		}); err != nil {
			return err
		}
		if store != nil {
			result, err := EvaluateResult(cfg.ModelName, forecast.YTrue, forecast.YPred, yTrain, forecast.Categories)
			if err != nil {
				return err
			}
			if err := recordHistory(store, cfg, start, result); err != nil {
				contract.LogWarn("Failed to record evaluation history", err)
			}
		}
		contract.LogInfo(cfg.Quiet, "Evaluated %d samples in %v", len(forecast.YTrue), time.Since(start))
		return nil
	}

	result, err := EvaluateResult(cfg.ModelName, forecast.YTrue, forecast.YPred, yTrain, forecast.Categories)
	if err != nil {
		return err
	}
	if err := recordHistory(store, cfg, start, result); err != nil {
		contract.LogWarn("Failed to record evaluation history", err)
	}
	return outwriter.PrintEvaluation(result, cfg, time.Since(start))
}

// ExecuteConvert converts the configured CSV files to Parquet and prints a summary.
func ExecuteConvert(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	opts := convert.Options{
		ChunkSize:     cfg.ChunkSize,
		Force:         cfg.Force,
		CategoryRatio: cfg.CategoryRatio,
		Categorical:   cfg.Categorical,
		StripCurrency: cfg.StripCurrency,
	}
	if !cfg.Quiet {
		opts.Progress = os.Stderr
	}

	var cache contract.CacheStore
	if mgr != nil {
		cache = mgr.GetProfileStore()
	}

	results, convErr := convert.ConvertAll(ctx, cfg.DataDir, cfg.Files, opts, cache)
	if err := outwriter.PrintConversionResults(results, cfg, time.Since(start)); err != nil {
		return err
	}
	return convErr
}

// ExecuteMetrics prints the metric definitions.
func ExecuteMetrics(_ context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	return outwriter.PrintMetricsDefinitions(metrics.RenderModel(), cfg)
}
