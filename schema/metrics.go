package schema

import (
	"slices"
)

// MetricBundle is the fixed set of accuracy metrics produced by one evaluation.
type MetricBundle struct {
	SMAPEW float64 `json:"sMAPE_w"`
	RMSSEW float64 `json:"RMSSE_w"`
	MAE    float64 `json:"MAE"`
	RMSE   float64 `json:"RMSE"`
}

// MetricEntry is a single named value from a MetricBundle.
type MetricEntry struct {
	Name  MetricName `json:"name"`
	Value float64    `json:"value"`
}

// Entries returns the bundle as name/value pairs in canonical order.
func (b MetricBundle) Entries() []MetricEntry {
	return []MetricEntry{
		{Name: SMAPEW, Value: b.SMAPEW},
		{Name: RMSSEW, Value: b.RMSSEW},
		{Name: MAE, Value: b.MAE},
		{Name: RMSE, Value: b.RMSE},
	}
}

// Get returns the value for the given metric name.
func (b MetricBundle) Get(name MetricName) (float64, bool) {
	switch name {
	case SMAPEW:
		return b.SMAPEW, true
	case RMSSEW:
		return b.RMSSEW, true
	case MAE:
		return b.MAE, true
	case RMSE:
		return b.RMSE, true
	default:
		return 0, false
	}
}

// CategoryTable maps a category label to the metrics computed on its samples.
type CategoryTable map[string]MetricBundle

// Keys returns the category labels in lexicographic order.
func (t CategoryTable) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// EvaluationResult is the full outcome of one evaluate run.
type EvaluationResult struct {
	ModelName   string         `json:"model"`
	Samples     int            `json:"samples"`
	TrainLength int            `json:"train_length"`
	Overall     MetricBundle   `json:"overall"`
	Categories  CategoryTable  `json:"categories,omitempty"`
	CategoryN   map[string]int `json:"category_samples,omitempty"`
	Report      string         `json:"-"`
}

// MetricDefinition describes one metric for the metrics command.
type MetricDefinition struct {
	Name        MetricName `json:"name"`
	Title       string     `json:"title"`
	Formula     string     `json:"formula"`
	Description string     `json:"description"`
}

// MetricsRenderModel is the complete model for printing metric definitions.
type MetricsRenderModel struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Epsilon     float64            `json:"epsilon"`
	Metrics     []MetricDefinition `json:"metrics"`
	Notes       []string           `json:"notes"`
}
