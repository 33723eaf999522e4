package contract

import (
	"fmt"
	"strings"

	"github.com/mccforecast/fcst/schema"
)

// Default values for configuration.
const (
	DefaultChunkSize     = 1_000_000
	DefaultCategoryRatio = 0.5
	DefaultModelName     = "model"
	DefaultTrueColumn    = "y_true"
	DefaultPredColumn    = "y_pred"
	DefaultDataDir       = "."
)

// DefaultCategoricalColumns are dictionary encoded regardless of cardinality.
var DefaultCategoricalColumns = []string{"mcc"}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration.
// This struct remains the "final, validated" config.
type Config struct {
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	Quiet      bool

	ModelName   string
	InputPath   string
	TrainPath   string
	TrueCol     string
	PredCol     string
	CategoryCol string
	TrainCol    string

	DataDir       string
	Files         []string
	ChunkSize     int
	Force         bool
	CategoryRatio float64
	Categorical   []string
	StripCurrency bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	Quiet            bool   `mapstructure:"quiet"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// --- Fields from evaluateCmd.Flags() ---
	Model       string `mapstructure:"model"`
	Input       string `mapstructure:"input"`
	Train       string `mapstructure:"train"`
	TrueCol     string `mapstructure:"true-col"`
	PredCol     string `mapstructure:"pred-col"`
	CategoryCol string `mapstructure:"category-col"`
	TrainCol    string `mapstructure:"train-col"`

	// --- Fields from convertCmd.Flags() ---
	DataDir       string  `mapstructure:"data-dir"`
	Files         string  `mapstructure:"files"`
	ChunkSize     int     `mapstructure:"chunk-size"`
	Force         bool    `mapstructure:"force"`
	CategoryRatio float64 `mapstructure:"category-ratio"`
	Categorical   string  `mapstructure:"categorical"`
	StripCurrency bool    `mapstructure:"strip-currency"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Files != nil {
		clone.Files = append([]string(nil), c.Files...)
	}
	if c.Categorical != nil {
		clone.Categorical = append([]string(nil), c.Categorical...)
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processEvaluateInputs(cfg, input); err != nil {
		return err
	}
	if err := processConvertInputs(cfg, input); err != nil {
		return err
	}
	return validateBackendConfigs(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- History Backend Validation (empty means disabled) ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("history-db-connect: %w", err)
	}

	// Cache and history must not share a database
	if cfg.CacheBackend == cfg.HistoryBackend && cfg.CacheBackend != schema.NoneBackend {
		cachePath, historyPath := cfg.CacheDBConnect, cfg.HistoryDBConnect
		if cfg.CacheBackend == schema.SQLiteBackend {
			if cachePath == "" {
				cachePath = GetCacheDBFilePath()
			}
			if historyPath == "" {
				historyPath = GetHistoryDBFilePath()
			}
		}
		if cachePath == historyPath {
			return fmt.Errorf("cache and history storage must use different databases. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// validateSimpleInputs processes output and presentation fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Quiet = input.Quiet

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Width < 0 {
		return fmt.Errorf("width must not be negative (received %d)", input.Width)
	}
	cfg.Width = input.Width

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	return nil
}

// processEvaluateInputs fills the evaluate fields, applying column defaults.
func processEvaluateInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.ModelName = strings.TrimSpace(input.Model)
	if cfg.ModelName == "" {
		cfg.ModelName = DefaultModelName
	}
	cfg.InputPath = input.Input
	cfg.TrainPath = input.Train

	cfg.TrueCol = firstNonEmpty(input.TrueCol, DefaultTrueColumn)
	cfg.PredCol = firstNonEmpty(input.PredCol, DefaultPredColumn)
	cfg.CategoryCol = strings.TrimSpace(input.CategoryCol)
	// The training series defaults to the same column as the actuals
	cfg.TrainCol = firstNonEmpty(input.TrainCol, cfg.TrueCol)

	if cfg.TrueCol == cfg.PredCol {
		return fmt.Errorf("true-col and pred-col must differ (both are %q)", cfg.TrueCol)
	}
	return nil
}

// processConvertInputs fills and validates the converter fields.
func processConvertInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.DataDir = firstNonEmpty(input.DataDir, DefaultDataDir)
	cfg.Files = SplitList(input.Files)
	cfg.Force = input.Force
	cfg.StripCurrency = input.StripCurrency

	cfg.ChunkSize = input.ChunkSize
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.ChunkSize < 0 {
		return fmt.Errorf("chunk-size must be greater than 0 (received %d)", input.ChunkSize)
	}

	cfg.CategoryRatio = input.CategoryRatio
	if cfg.CategoryRatio == 0 {
		cfg.CategoryRatio = DefaultCategoryRatio
	}
	if cfg.CategoryRatio < 0 || cfg.CategoryRatio > 1 {
		return fmt.Errorf("category-ratio must be between 0 and 1 (received %g)", input.CategoryRatio)
	}

	if input.Categorical == "" {
		cfg.Categorical = append([]string(nil), DefaultCategoricalColumns...)
	} else {
		cfg.Categorical = SplitList(input.Categorical)
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// SplitList splits a comma-separated list, trimming blanks.
func SplitList(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
