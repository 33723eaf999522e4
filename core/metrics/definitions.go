package metrics

import "github.com/mccforecast/fcst/schema"

// Definitions returns the metric definitions in report order.
func Definitions() []schema.MetricDefinition {
	return []schema.MetricDefinition{
		{
			Name:        schema.SMAPEW,
			Title:       "Symmetric MAPE",
			Formula:     "100 * mean(2*|pred-true| / (|true|+|pred|+eps))",
			Description: "Scale-free percentage error in [0, 200]. Zero when both actual and forecast are zero.",
		},
		{
			Name:        schema.RMSSEW,
			Title:       "Root Mean Squared Scaled Error",
			Formula:     "sqrt(mean((true-pred)^2) / (mean(diff(train)^2)+eps))",
			Description: "Squared error relative to a lag-1 naive forecast on the training series. Below 1 beats the naive forecast.",
		},
		{
			Name:        schema.MAE,
			Title:       "Mean Absolute Error",
			Formula:     "mean(|true-pred|)",
			Description: "Average absolute deviation in the units of the series.",
		},
		{
			Name:        schema.RMSE,
			Title:       "Root Mean Squared Error",
			Formula:     "sqrt(mean((true-pred)^2))",
			Description: "Like MAE but penalizes large misses more heavily.",
		},
	}
}

// RenderModel returns the full model printed by the metrics command.
func RenderModel() schema.MetricsRenderModel {
	return schema.MetricsRenderModel{
		Title:       "Forecast Accuracy Metrics",
		Description: "Metrics reported for every evaluation, overall and per merchant category code (MCC).",
		Epsilon:     Epsilon,
		Metrics:     Definitions(),
		Notes: []string{
			"eps guards divisions by zero; a constant training series makes RMSSE very large but finite.",
			"Per-category RMSSE is scaled by the full training series, not a per-category slice.",
			"RMSSE needs at least 2 training observations.",
		},
	}
}
