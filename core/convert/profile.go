// Package convert turns CSV files into typed, snappy-compressed Parquet files.
//
// Conversion is two passes over the input. Profile streams the CSV once to
// infer each column's kind and value range; ConvertFile then re-reads it in
// chunks and writes rows with the narrowest physical type the profile allows.
package convert

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/mccforecast/fcst/schema"
)

// maxDistinct caps the distinct-value set tracked per column.
const maxDistinct = 100_000

// Options controls profiling and conversion.
type Options struct {
	ChunkSize     int       // rows per write batch
	Force         bool      // overwrite existing parquet output
	CategoryRatio float64   // distinct/non-null ratio at or below which strings are dictionary encoded
	Categorical   []string  // columns always dictionary encoded
	StripCurrency bool      // parse "$1,234.50" as 1234.5
	Progress      io.Writer // receives progress lines; nil discards them
}

// DefaultOptions returns the converter defaults.
func DefaultOptions() Options {
	return Options{
		ChunkSize:     1_000_000,
		CategoryRatio: 0.5,
		Categorical:   []string{"mcc"},
		StripCurrency: true,
	}
}

func (o Options) chunkSize() int {
	if o.ChunkSize <= 0 {
		return DefaultOptions().ChunkSize
	}
	return o.ChunkSize
}

func (o Options) progress() io.Writer {
	if o.Progress == nil {
		return io.Discard
	}
	return o.Progress
}

// Cells treated as missing values.
var nullTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "NaN": {}, "nan": {}, "null": {}, "NULL": {}, "None": {},
}

func isNull(cell string) bool {
	_, ok := nullTokens[strings.TrimSpace(cell)]
	return ok
}

// parseFloatCell parses a numeric cell, optionally stripping currency
// formatting. The second result reports whether a currency sign was removed.
func parseFloatCell(cell string, stripCurrency bool) (float64, bool, error) {
	s := strings.TrimSpace(cell)
	currency := false
	if stripCurrency && strings.Contains(s, "$") {
		s = strings.ReplaceAll(s, "$", "")
		s = strings.ReplaceAll(s, ",", "")
		currency = true
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, currency, err
}

// columnStats accumulates inference state for one column.
type columnStats struct {
	name     string
	kind     schema.ColumnKind // empty until the first non-null value
	nulls    int64
	nonNull  int64
	minInt   int64
	maxInt   int64
	currency bool
	distinct map[string]struct{}
	capped   bool
}

func newColumnStats(name string) *columnStats {
	return &columnStats{name: name, minInt: math.MaxInt64, maxInt: math.MinInt64, distinct: make(map[string]struct{})}
}

func (c *columnStats) observe(cell string, stripCurrency bool) {
	if isNull(cell) {
		c.nulls++
		return
	}
	c.nonNull++
	value := strings.TrimSpace(cell)
	if !c.capped {
		c.distinct[value] = struct{}{}
		if len(c.distinct) > maxDistinct {
			c.capped = true
			c.distinct = nil
		}
	}

	if c.kind == "" {
		c.kind = schema.IntColumn
	}
	if c.kind == schema.IntColumn {
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			c.minInt = min(c.minInt, v)
			c.maxInt = max(c.maxInt, v)
			return
		}
		c.kind = schema.FloatColumn
	}
	if c.kind == schema.FloatColumn {
		if _, currency, err := parseFloatCell(value, stripCurrency); err == nil {
			c.currency = c.currency || currency
			return
		}
		c.kind = schema.StringColumn
	}
}

func (c *columnStats) finish(opts Options) schema.ColumnProfile {
	p := schema.ColumnProfile{
		Name:        c.name,
		Kind:        c.kind,
		Nulls:       c.nulls,
		Currency:    c.currency && c.kind == schema.FloatColumn,
		Distinct:    len(c.distinct),
		DistinctCap: c.capped,
		Categorical: slices.Contains(opts.Categorical, c.name),
	}
	switch c.kind {
	case "":
		// Only nulls were seen
		p.Kind = schema.StringColumn
	case schema.IntColumn:
		p.MinInt, p.MaxInt = c.minInt, c.maxInt
		p.Narrowed = c.minInt >= math.MinInt32 && c.maxInt <= math.MaxInt32
	case schema.FloatColumn:
		p.Narrowed = true
	case schema.StringColumn:
		if !c.capped && c.nonNull > 0 && float64(len(c.distinct))/float64(c.nonNull) <= opts.CategoryRatio {
			p.Categorical = true
		}
	}
	return p
}

// Profile reads the CSV file at path and infers a profile for every column.
func Profile(path string, opts Options) (schema.FileProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return schema.FileProfile{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return profileReader(f, opts)
}

func newCSVReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true
	reader.FieldsPerRecord = 0 // every row must match the header
	return reader
}

// readHeader returns the column names, which must be present, non-empty and unique.
func readHeader(reader *csv.Reader) ([]string, error) {
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	names := slices.Clone(header)
	seen := make(map[string]struct{}, len(names))
	for i, name := range names {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i+1)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", name)
		}
		seen[name] = struct{}{}
		names[i] = name
	}
	return names, nil
}

func profileReader(r io.Reader, opts Options) (schema.FileProfile, error) {
	reader := newCSVReader(r)
	names, err := readHeader(reader)
	if err != nil {
		return schema.FileProfile{}, err
	}

	stats := make([]*columnStats, len(names))
	for i, name := range names {
		stats[i] = newColumnStats(name)
	}

	var rows int64
	chunk := int64(opts.chunkSize())
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return schema.FileProfile{}, fmt.Errorf("failed to read row %d: %w", rows+1, err)
		}
		for i, cell := range record {
			stats[i].observe(cell, opts.StripCurrency)
		}
		rows++
		if rows%chunk == 0 {
			_, _ = fmt.Fprintf(opts.progress(), "  Profiled %d rows...\n", rows)
		}
	}

	profile := schema.FileProfile{Rows: rows, Columns: make([]schema.ColumnProfile, len(stats))}
	for i, s := range stats {
		profile.Columns[i] = s.finish(opts)
	}
	return profile, nil
}
