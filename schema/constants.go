// Package schema has the shared models and constants for evaluation, conversion and persistence.
package schema

// Custom string types for type safety.
type (
	// MetricName represents one of the canonical forecast-accuracy metrics.
	MetricName string

	// OutputMode represents the format of the output.
	OutputMode string

	// ColumnKind represents the inferred storage kind of a CSV column.
	ColumnKind string

	// ConversionStatus represents the outcome of converting a single file.
	ConversionStatus string

	// DatabaseBackend represents the database backend for caching and history.
	DatabaseBackend string
)

// Canonical metric names, in report order.
const (
	SMAPEW MetricName = "sMAPE_w" // weekly symmetric MAPE
	RMSSEW MetricName = "RMSSE_w" // weekly RMSSE
	MAE    MetricName = "MAE"
	RMSE   MetricName = "RMSE"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// Column kinds produced by CSV profiling.
const (
	IntColumn    ColumnKind = "int"
	FloatColumn  ColumnKind = "float"
	StringColumn ColumnKind = "string"
)

// All conversion outcomes.
const (
	ConvertedStatus ConversionStatus = "converted"
	SkippedStatus   ConversionStatus = "skipped" // parquet output already present
	MissingStatus   ConversionStatus = "missing" // csv input not found
	FailedStatus    ConversionStatus = "failed"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// AllMetricNames returns the canonical metric names in display order.
var AllMetricNames = []MetricName{SMAPEW, RMSSEW, MAE, RMSE}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
