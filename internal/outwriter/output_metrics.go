package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/mccforecast/fcst/internal/contract"
	"github.com/mccforecast/fcst/schema"
)

// PrintMetricsDefinitions displays the metric definitions based on the output format.
func PrintMetricsDefinitions(model schema.MetricsRenderModel, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, model)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVMetrics(w, model)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return unsupportedOutput(cfg.Output, "metric definitions")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricsText(w, model)
		}, "Wrote text")
	}
}

// writeMetricsText writes the definitions as plain text.
func writeMetricsText(w io.Writer, model schema.MetricsRenderModel) error {
	if _, err := fmt.Fprintf(w, "📐 %s\n%s\n\n", model.Title, model.Description); err != nil {
		return err
	}
	for _, m := range model.Metrics {
		if _, err := fmt.Fprintf(w, "%s (%s)\n", m.Name, m.Title); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "   Formula: %s\n", m.Formula); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "   %s\n\n", m.Description); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "eps = %g\n", model.Epsilon); err != nil {
		return err
	}
	for _, note := range model.Notes {
		if _, err := fmt.Fprintf(w, "- %s\n", note); err != nil {
			return err
		}
	}
	return nil
}

// writeCSVMetrics writes one row per metric definition.
func writeCSVMetrics(w io.Writer, model schema.MetricsRenderModel) error {
	return writeCSVWithHeader(w, []string{"name", "title", "formula", "description"}, func(cw *csv.Writer) error {
		for _, m := range model.Metrics {
			if err := cw.Write([]string{string(m.Name), m.Title, m.Formula, m.Description}); err != nil {
				return err
			}
		}
		return nil
	})
}
