package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mccforecast/fcst/schema"
)

// Report layout. Existing reports are compared byte for byte against these.
const (
	bannerWidth       = 60
	overallLabelW     = 15
	overallValueW     = 15
	categoryLabelW    = 15
	categoryValueW    = 12
	reportPrecision   = 4
	reportTitlePrefix = "MCC AGGREGATES FORECASTING REPORT: "
)

// fixedTable renders left-justified, fixed-width rows. An optional separator
// is inserted between columns.
type fixedTable struct {
	widths    []int
	separator string
	precision int
	sb        *strings.Builder
}

func newFixedTable(sb *strings.Builder, separator string, widths ...int) *fixedTable {
	return &fixedTable{widths: widths, separator: separator, precision: reportPrecision, sb: sb}
}

// header writes a row of labels and returns its rendered length without the newline.
func (t *fixedTable) header(cells ...string) int {
	line := t.render(cells)
	t.sb.WriteString(line)
	t.sb.WriteByte('\n')
	return len(line)
}

// row writes a label followed by numeric values at the table precision.
func (t *fixedTable) row(label string, values ...float64) {
	cells := make([]string, 0, len(values)+1)
	cells = append(cells, label)
	for _, v := range values {
		cells = append(cells, formatFixed(v, t.precision))
	}
	t.sb.WriteString(t.render(cells))
	t.sb.WriteByte('\n')
}

func (t *fixedTable) render(cells []string) string {
	var b strings.Builder
	for i, c := range cells {
		if i > 0 {
			b.WriteString(t.separator)
		}
		w := t.widths[min(i, len(t.widths)-1)]
		b.WriteString(padRight(c, w))
	}
	return b.String()
}

// padRight left-justifies s in a field of width runes, never truncating.
func padRight(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// formatFixed formats v with a fixed number of decimals. Non-finite values
// are spelled nan, inf and -inf to keep reports stable across tools.
func formatFixed(v float64, precision int) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// FormatReport renders the overall and per-category metrics as a fixed-width
// text report. Category rows are ordered by label.
func FormatReport(modelName string, overall schema.MetricBundle, table schema.CategoryTable) string {
	var sb strings.Builder
	banner := strings.Repeat("=", bannerWidth)

	fmt.Fprintf(&sb, "\n%s\n", banner)
	sb.WriteString(reportTitlePrefix + strings.ToUpper(modelName) + "\n")
	fmt.Fprintf(&sb, "%s\n\n", banner)

	sb.WriteString("OVERALL PERFORMANCE:\n")
	overallTable := newFixedTable(&sb, " ", overallLabelW, overallValueW)
	overallTable.header("Metric", "Value")
	sb.WriteString(strings.Repeat("-", overallLabelW+overallValueW) + "\n")
	for _, e := range overall.Entries() {
		overallTable.row(string(e.Name), e.Value)
	}

	if len(table) > 0 {
		sb.WriteString("\nPER-CATEGORY PERFORMANCE:\n")
		catTable := newFixedTable(&sb, "", categoryLabelW, categoryValueW)
		headers := []string{"Category"}
		for _, name := range schema.AllMetricNames {
			headers = append(headers, string(name))
		}
		width := catTable.header(headers...)
		sb.WriteString(strings.Repeat("-", width) + "\n")
		for _, label := range table.Keys() {
			b := table[label]
			catTable.row(label, b.SMAPEW, b.RMSSEW, b.MAE, b.RMSE)
		}
	}

	fmt.Fprintf(&sb, "\n%s\n", banner)
	return sb.String()
}
