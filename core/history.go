package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/mccforecast/fcst/internal/contract"
	"github.com/mccforecast/fcst/schema"
)

// historyConfigParams captures the configuration that shaped a run.
func historyConfigParams(cfg *contract.Config) map[string]any {
	return map[string]any{
		"input":        cfg.InputPath,
		"train":        cfg.TrainPath,
		"true_col":     cfg.TrueCol,
		"pred_col":     cfg.PredCol,
		"category_col": cfg.CategoryCol,
		"train_col":    cfg.TrainCol,
	}
}

// recordHistory stores one evaluation run with its category rows. A nil store
// means history is disabled.
func recordHistory(store contract.HistoryStore, cfg *contract.Config, start time.Time, result schema.EvaluationResult) error {
	if store == nil {
		return nil
	}

	runID, err := store.BeginRun(result.ModelName, start, historyConfigParams(cfg))
	if err != nil {
		return err
	}
	// The run is always ended so a failed category insert leaves no open run.
	var categoryErr error
	for _, label := range result.Categories.Keys() {
		if err := store.RecordCategoryMetrics(runID, label, result.CategoryN[label], result.Categories[label]); err != nil {
			categoryErr = fmt.Errorf("run %d category %q: %w", runID, label, err)
			break
		}
	}
	if err := store.EndRun(runID, time.Now(), result.Samples, result.TrainLength, result.Overall); err != nil {
		return errors.Join(categoryErr, fmt.Errorf("run %d: %w", runID, err))
	}
	return categoryErr
}
