package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mccforecast/fcst/internal/contract"
	"github.com/mccforecast/fcst/schema"
	"github.com/parquet-go/parquet-go"
)

// DefaultFiles are the CSV files converted when no explicit list is given,
// relative to the data directory.
var DefaultFiles = []string{
	"data/transactions_data.csv",
	"data/users_data.csv",
	"data/preprocessed/train_raw.csv",
	"data/preprocessed/test_raw.csv",
	"data/features/baseline_train.csv",
	"data/features/baseline_test.csv",
	"data/features/ml_train.csv",
	"data/features/ml_test.csv",
	"data/features/dl_train.csv",
	"data/features/dl_test.csv",
}

// ParquetPath returns the output path for a CSV input: x.csv becomes x.parquet.
func ParquetPath(csvPath string) string {
	ext := filepath.Ext(csvPath)
	if strings.EqualFold(ext, ".csv") {
		return strings.TrimSuffix(csvPath, ext) + ".parquet"
	}
	return csvPath + ".parquet"
}

// BuildSchema maps a file profile to a Parquet schema. Every column is optional
// and snappy compressed.
func BuildSchema(profile schema.FileProfile) *parquet.Schema {
	group := make(parquet.Group, len(profile.Columns))
	for _, col := range profile.Columns {
		group[col.Name] = columnNode(col)
	}
	return parquet.NewSchema("csv", group)
}

func columnNode(col schema.ColumnProfile) parquet.Node {
	var node parquet.Node
	switch col.Kind {
	case schema.IntColumn:
		if col.Narrowed {
			node = parquet.Int(32)
		} else {
			node = parquet.Int(64)
		}
	case schema.FloatColumn:
		node = parquet.Leaf(parquet.FloatType)
	default:
		node = parquet.String()
	}
	if col.Categorical {
		node = parquet.Encoded(node, &parquet.RLEDictionary)
	}
	return parquet.Optional(parquet.Compressed(node, &parquet.Snappy))
}

// rowBuilder converts CSV records into Parquet rows for a fixed profile.
type rowBuilder struct {
	columns       []schema.ColumnProfile
	indexes       []int // parquet column index of each CSV column
	stripCurrency bool
}

func newRowBuilder(s *parquet.Schema, profile schema.FileProfile, stripCurrency bool) (*rowBuilder, error) {
	b := &rowBuilder{columns: profile.Columns, indexes: make([]int, len(profile.Columns)), stripCurrency: stripCurrency}
	for i, col := range profile.Columns {
		leaf, ok := s.Lookup(col.Name)
		if !ok {
			return nil, fmt.Errorf("column %q missing from schema", col.Name)
		}
		b.indexes[i] = leaf.ColumnIndex
	}
	return b, nil
}

func (b *rowBuilder) build(record []string, line int64) (parquet.Row, error) {
	if len(record) != len(b.columns) {
		return nil, fmt.Errorf("row %d has %d fields, expected %d", line, len(record), len(b.columns))
	}
	row := make(parquet.Row, len(b.columns))
	for i, cell := range record {
		idx := b.indexes[i]
		if isNull(cell) {
			row[idx] = parquet.NullValue().Level(0, 0, idx)
			continue
		}
		v, err := b.value(b.columns[i], strings.TrimSpace(cell))
		if err != nil {
			return nil, fmt.Errorf("row %d, column %q: %w", line, b.columns[i].Name, err)
		}
		row[idx] = v.Level(0, 1, idx)
	}
	return row, nil
}

func (b *rowBuilder) value(col schema.ColumnProfile, cell string) (parquet.Value, error) {
	switch col.Kind {
	case schema.IntColumn:
		v, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			return parquet.Value{}, err
		}
		if col.Narrowed {
			return parquet.Int32Value(int32(v)), nil
		}
		return parquet.Int64Value(v), nil
	case schema.FloatColumn:
		v, _, err := parseFloatCell(cell, b.stripCurrency)
		if err != nil {
			return parquet.Value{}, err
		}
		return parquet.FloatValue(float32(v)), nil
	default:
		return parquet.ByteArrayValue([]byte(cell)), nil
	}
}

// writeParquet streams the CSV at csvPath into outPath using profile's schema.
// Rows are written in batches of opts.ChunkSize.
func writeParquet(ctx context.Context, csvPath, outPath string, profile schema.FileProfile, opts Options) (int64, error) {
	in, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", csvPath, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	s := BuildSchema(profile)
	builder, err := newRowBuilder(s, profile, opts.StripCurrency)
	if err != nil {
		return 0, err
	}

	reader := newCSVReader(in)
	if _, err := readHeader(reader); err != nil {
		return 0, err
	}

	writer := parquet.NewWriter(out, s)
	chunk := opts.chunkSize()
	batch := make([]parquet.Row, 0, min(chunk, 65_536))
	var rows int64

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := writer.WriteRows(batch); err != nil {
			return fmt.Errorf("failed to write rows: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = writer.Close()
			return rows, fmt.Errorf("failed to read row %d: %w", rows+1, err)
		}
		row, err := builder.build(record, rows+1)
		if err != nil {
			_ = writer.Close()
			return rows, err
		}
		batch = append(batch, row)
		rows++

		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				_ = writer.Close()
				return rows, err
			}
		}
		if rows%int64(chunk) == 0 {
			if err := ctx.Err(); err != nil {
				_ = writer.Close()
				return rows, err
			}
			_, _ = fmt.Fprintf(opts.progress(), "  Processed %d rows...\n", rows)
		}
	}

	if err := flush(); err != nil {
		_ = writer.Close()
		return rows, err
	}
	if err := writer.Close(); err != nil {
		return rows, fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return rows, out.Close()
}

// ConvertFile converts one CSV file to Parquet next to it.
//
// A missing input yields a MissingStatus result and an existing output yields
// SkippedStatus unless opts.Force is set; neither is an error. Profiles are
// read from and stored in cache when it is non-nil.
func ConvertFile(ctx context.Context, csvPath string, opts Options, cache contract.CacheStore) (schema.ConversionResult, error) {
	start := time.Now()
	result := schema.ConversionResult{CSVPath: csvPath, ParquetPath: ParquetPath(csvPath)}

	info, err := os.Stat(csvPath)
	if errors.Is(err, os.ErrNotExist) {
		result.Status = schema.MissingStatus
		return result, nil
	}
	if err != nil {
		return failed(result, start, fmt.Errorf("failed to stat %s: %w", csvPath, err))
	}
	if info.IsDir() {
		return failed(result, start, fmt.Errorf("%s is a directory", csvPath))
	}
	result.CSVBytes = info.Size()

	if existing, err := os.Stat(result.ParquetPath); err == nil && !opts.Force {
		result.Status = schema.SkippedStatus
		result.ParquetSize = existing.Size()
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return failed(result, start, err)
	}

	profile, err := cachedProfile(csvPath, info, opts, cache)
	if err != nil {
		return failed(result, start, err)
	}
	result.Columns = profile.Columns

	tmpPath := result.ParquetPath + ".tmp"
	rows, err := writeParquet(ctx, csvPath, tmpPath, profile, opts)
	if err != nil {
		_ = os.Remove(tmpPath)
		return failed(result, start, err)
	}
	if err := os.Rename(tmpPath, result.ParquetPath); err != nil {
		_ = os.Remove(tmpPath)
		return failed(result, start, fmt.Errorf("failed to move output into place: %w", err))
	}

	out, err := os.Stat(result.ParquetPath)
	if err != nil {
		return failed(result, start, err)
	}
	result.Status = schema.ConvertedStatus
	result.Rows = rows
	result.ParquetSize = out.Size()
	result.Duration = time.Since(start)
	return result, nil
}

func failed(result schema.ConversionResult, start time.Time, err error) (schema.ConversionResult, error) {
	result.Status = schema.FailedStatus
	result.Error = err.Error()
	result.Duration = time.Since(start)
	return result, err
}

// ConvertAll converts files (DefaultFiles when empty) resolved against dataDir.
// A file that fails is recorded as FailedStatus and the batch continues; only
// cancellation of ctx stops it early.
func ConvertAll(ctx context.Context, dataDir string, files []string, opts Options, cache contract.CacheStore) ([]schema.ConversionResult, error) {
	if len(files) == 0 {
		files = DefaultFiles
	}

	results := make([]schema.ConversionResult, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		path := file
		if !filepath.IsAbs(path) {
			path = filepath.Join(dataDir, file)
		}
		_, _ = fmt.Fprintf(opts.progress(), "Converting %s...\n", path)
		result, err := ConvertFile(ctx, path, opts, cache)
		if err != nil && ctx.Err() != nil {
			return append(results, result), ctx.Err()
		}
		results = append(results, result)
	}
	return results, nil
}
