// Package dataio loads forecast columns from CSV files or from the Parquet
// files produced by the converter.
package dataio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Forecast holds the aligned columns of an evaluation input.
type Forecast struct {
	YTrue      []float64
	YPred      []float64
	Categories []string // nil when no category column was requested
}

// LoadForecast reads the actuals, predictions and (optionally) category labels
// from the file at path. An empty categoryCol skips the category column.
func LoadForecast(path, trueCol, predCol, categoryCol string) (Forecast, error) {
	cols := []string{trueCol, predCol}
	if categoryCol != "" {
		cols = append(cols, categoryCol)
	}
	table, err := readColumns(path, cols)
	if err != nil {
		return Forecast{}, err
	}

	var f Forecast
	if f.YTrue, err = parseNumbers(table[trueCol], trueCol); err != nil {
		return Forecast{}, err
	}
	if f.YPred, err = parseNumbers(table[predCol], predCol); err != nil {
		return Forecast{}, err
	}
	if categoryCol != "" {
		f.Categories = table[categoryCol]
	}
	return f, nil
}

// LoadSeries reads a single numeric column from the file at path.
func LoadSeries(path, col string) ([]float64, error) {
	table, err := readColumns(path, []string{col})
	if err != nil {
		return nil, err
	}
	return parseNumbers(table[col], col)
}

// parseNumbers converts cells to float64. Missing cells become NaN.
func parseNumbers(cells []string, col string) ([]float64, error) {
	out := make([]float64, len(cells))
	for i, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			out[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d, column %q: invalid number %q", i+1, col, cell)
		}
		out[i] = v
	}
	return out, nil
}

// readColumns returns the requested columns as text, keyed by column name.
func readColumns(path string, cols []string) (map[string][]string, error) {
	if path == "" {
		return nil, errors.New("input path is required")
	}
	cols = distinctColumns(cols)
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		return readParquetColumns(path, cols)
	}
	return readCSVColumns(path, cols)
}

// distinctColumns drops repeated names so an aliased column is read once.
func distinctColumns(cols []string) []string {
	seen := make(map[string]struct{}, len(cols))
	out := make([]string, 0, len(cols))
	for _, col := range cols {
		if _, ok := seen[col]; ok {
			continue
		}
		seen[col] = struct{}{}
		out = append(out, col)
	}
	return out
}

func readCSVColumns(path string, cols []string) (map[string][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.ReuseRecord = true
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	indexes := make([]int, len(cols))
	for i, col := range cols {
		indexes[i] = -1
		for j, name := range header {
			if strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) == col {
				indexes[i] = j
				break
			}
		}
		if indexes[i] < 0 {
			return nil, fmt.Errorf("column %q not found in %s", col, path)
		}
	}

	table := make(map[string][]string, len(cols))
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s line %d: %w", path, line, err)
		}
		for i, col := range cols {
			table[col] = append(table[col], record[indexes[i]])
		}
	}
	return table, nil
}

func readParquetColumns(path string, cols []string) (map[string][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	reader := parquet.NewReader(f)
	defer func() { _ = reader.Close() }()

	indexes := make(map[int]string, len(cols))
	for _, col := range cols {
		leaf, ok := reader.Schema().Lookup(col)
		if !ok {
			return nil, fmt.Errorf("column %q not found in %s", col, path)
		}
		indexes[leaf.ColumnIndex] = col
	}

	table := make(map[string][]string, len(cols))
	for _, col := range cols {
		table[col] = make([]string, 0, reader.NumRows())
	}

	rows := make([]parquet.Row, 1024)
	for {
		n, err := reader.ReadRows(rows)
		for _, row := range rows[:n] {
			for _, v := range row {
				if col, ok := indexes[v.Column()]; ok {
					table[col] = append(table[col], valueString(v))
				}
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read rows of %s: %w", path, err)
		}
	}
	return table, nil
}

// valueString renders a parquet value as text; nulls become "".
func valueString(v parquet.Value) string {
	if v.IsNull() {
		return ""
	}
	switch v.Kind() {
	case parquet.Boolean:
		return strconv.FormatBool(v.Boolean())
	case parquet.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case parquet.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case parquet.Float:
		// Shortest text that round-trips the float32, so 14.57 stays 14.57
		return strconv.FormatFloat(float64(v.Float()), 'g', -1, 32)
	case parquet.Double:
		return strconv.FormatFloat(v.Double(), 'g', -1, 64)
	default:
		return string(v.ByteArray())
	}
}
