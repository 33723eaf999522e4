package core

import (
	"fmt"
	"slices"

	"github.com/mccforecast/fcst/core/metrics"
	"github.com/mccforecast/fcst/schema"
)

// Evaluate computes every accuracy metric for one forecast against its actuals.
// yTrain is the in-sample series used to scale RMSSE.
func Evaluate(yTrue, yPred, yTrain []float64) (schema.MetricBundle, error) {
	var bundle schema.MetricBundle
	if len(yTrue) != len(yPred) {
		return bundle, fmt.Errorf("%w: y_true has %d samples, y_pred has %d", metrics.ErrShapeMismatch, len(yTrue), len(yPred))
	}

	smape, err := metrics.SMAPE(yTrue, yPred)
	if err != nil {
		return bundle, fmt.Errorf("failed to compute %s: %w", schema.SMAPEW, err)
	}
	rmsse, err := metrics.RMSSE(yTrue, yPred, yTrain)
	if err != nil {
		return bundle, fmt.Errorf("failed to compute %s: %w", schema.RMSSEW, err)
	}
	mae, err := metrics.MAE(yTrue, yPred)
	if err != nil {
		return bundle, fmt.Errorf("failed to compute %s: %w", schema.MAE, err)
	}
	rmse, err := metrics.RMSE(yTrue, yPred)
	if err != nil {
		return bundle, fmt.Errorf("failed to compute %s: %w", schema.RMSE, err)
	}

	bundle.SMAPEW = smape
	bundle.RMSSEW = rmsse
	bundle.MAE = mae
	bundle.RMSE = rmse
	return bundle, nil
}

// EvaluateByCategory evaluates the whole forecast and, when categories is
// non-nil, each category's subset of samples. Every subset is scaled against
// the full training series, not a per-category slice of it.
func EvaluateByCategory(yTrue, yPred, yTrain []float64, categories []string) (schema.MetricBundle, schema.CategoryTable, error) {
	table := schema.CategoryTable{}
	overall, err := Evaluate(yTrue, yPred, yTrain)
	if err != nil {
		return overall, table, err
	}
	if categories == nil {
		return overall, table, nil
	}
	if len(categories) != len(yTrue) {
		return overall, table, fmt.Errorf("%w: categories has %d labels, y_true has %d samples", metrics.ErrShapeMismatch, len(categories), len(yTrue))
	}

	for _, label := range distinctLabels(categories) {
		subTrue, subPred := maskByLabel(yTrue, yPred, categories, label)
		if len(subTrue) == 0 {
			continue
		}
		bundle, err := Evaluate(subTrue, subPred, yTrain)
		if err != nil {
			return overall, table, fmt.Errorf("category %q: %w", label, err)
		}
		table[label] = bundle
	}
	return overall, table, nil
}

// CategorySampleCounts returns how many samples each label selects.
func CategorySampleCounts(categories []string) map[string]int {
	counts := make(map[string]int, len(categories))
	for _, c := range categories {
		counts[c]++
	}
	return counts
}

// distinctLabels returns the unique labels in lexicographic order.
func distinctLabels(categories []string) []string {
	seen := make(map[string]struct{}, len(categories))
	labels := make([]string, 0)
	for _, c := range categories {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		labels = append(labels, c)
	}
	slices.Sort(labels)
	return labels
}

// maskByLabel copies the samples whose category equals label.
func maskByLabel(yTrue, yPred []float64, categories []string, label string) ([]float64, []float64) {
	var subTrue, subPred []float64
	for i, c := range categories {
		if c == label {
			subTrue = append(subTrue, yTrue[i])
			subPred = append(subPred, yPred[i])
		}
	}
	return subTrue, subPred
}
