package schema

import "time"

// ColumnProfile describes what profiling learned about one CSV column and the
// physical type chosen for it in the Parquet output.
type ColumnProfile struct {
	Name        string     `json:"name"`
	Kind        ColumnKind `json:"kind"`
	Nulls       int64      `json:"nulls"`
	MinInt      int64      `json:"min_int,omitempty"`
	MaxInt      int64      `json:"max_int,omitempty"`
	Currency    bool       `json:"currency,omitempty"`
	Distinct    int        `json:"distinct,omitempty"`
	DistinctCap bool       `json:"distinct_capped,omitempty"`
	Narrowed    bool       `json:"narrowed"`    // int64->int32 or float64->float32
	Categorical bool       `json:"categorical"` // dictionary encoded string
}

// FileProfile is the result of profiling a single CSV file.
type FileProfile struct {
	Rows    int64           `json:"rows"`
	Columns []ColumnProfile `json:"columns"`
}

// ConversionResult summarizes converting one CSV file to Parquet.
type ConversionResult struct {
	CSVPath     string           `json:"csv_path"`
	ParquetPath string           `json:"parquet_path"`
	Status      ConversionStatus `json:"status"`
	Rows        int64            `json:"rows"`
	CSVBytes    int64            `json:"csv_bytes"`
	ParquetSize int64            `json:"parquet_bytes"`
	Duration    time.Duration    `json:"duration_ns"`
	Columns     []ColumnProfile  `json:"columns,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// CompressionRatio returns csv size / parquet size, or 0 when unknown.
func (r ConversionResult) CompressionRatio() float64 {
	if r.ParquetSize <= 0 {
		return 0
	}
	return float64(r.CSVBytes) / float64(r.ParquetSize)
}
