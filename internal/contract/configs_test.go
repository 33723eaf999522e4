package contract

import (
	"testing"

	"github.com/mccforecast/fcst/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Output:        "text",
		Color:         "yes",
		CacheBackend:  "sqlite",
		StripCurrency: true,
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}},
		{name: "json output", mutate: func(in *ConfigRawInput) { in.Output = "JSON" }},
		{name: "invalid output", mutate: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: true},
		{name: "parquet without file", mutate: func(in *ConfigRawInput) { in.Output = "parquet" }, expectError: true},
		{
			name: "parquet with file",
			mutate: func(in *ConfigRawInput) {
				in.Output = "parquet"
				in.OutputFile = "out.parquet"
			},
		},
		{name: "invalid color", mutate: func(in *ConfigRawInput) { in.Color = "sometimes" }, expectError: true},
		{name: "negative width", mutate: func(in *ConfigRawInput) { in.Width = -1 }, expectError: true},
		{name: "negative chunk size", mutate: func(in *ConfigRawInput) { in.ChunkSize = -5 }, expectError: true},
		{name: "category ratio above one", mutate: func(in *ConfigRawInput) { in.CategoryRatio = 1.5 }, expectError: true},
		{
			name: "same true and pred column",
			mutate: func(in *ConfigRawInput) {
				in.TrueCol = "amount"
				in.PredCol = "amount"
			},
			expectError: true,
		},
		{name: "invalid cache backend", mutate: func(in *ConfigRawInput) { in.CacheBackend = "redis" }, expectError: true},
		{name: "invalid history backend", mutate: func(in *ConfigRawInput) { in.HistoryBackend = "redis" }, expectError: true},
		{
			name: "mysql history without connection",
			mutate: func(in *ConfigRawInput) {
				in.HistoryBackend = "mysql"
			},
			expectError: true,
		},
		{
			name: "sqlite history on the same file as cache",
			mutate: func(in *ConfigRawInput) {
				in.CacheDBConnect = "/tmp/shared.db"
				in.HistoryBackend = "sqlite"
				in.HistoryDBConnect = "/tmp/shared.db"
			},
			expectError: true,
		},
		{
			name: "sqlite history on default paths",
			mutate: func(in *ConfigRawInput) {
				in.HistoryBackend = "sqlite"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput()))

	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.Equal(t, DefaultModelName, cfg.ModelName)
	assert.Equal(t, DefaultTrueColumn, cfg.TrueCol)
	assert.Equal(t, DefaultPredColumn, cfg.PredCol)
	assert.Equal(t, DefaultTrueColumn, cfg.TrainCol, "train column falls back to the actuals column")
	assert.Empty(t, cfg.CategoryCol)
	assert.Equal(t, DefaultChunkSize, cfg.ChunkSize)
	assert.InDelta(t, DefaultCategoryRatio, cfg.CategoryRatio, 1e-12)
	assert.Equal(t, DefaultCategoricalColumns, cfg.Categorical)
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Empty(t, cfg.Files)
	assert.Equal(t, schema.SQLiteBackend, cfg.CacheBackend)
	assert.Empty(t, cfg.HistoryBackend, "history is disabled unless configured")
	assert.True(t, cfg.UseColors)
	assert.True(t, cfg.StripCurrency)
}

func TestProcessAndValidateLists(t *testing.T) {
	input := validInput()
	input.Files = "data/a.csv, data/b.csv,,"
	input.Categorical = "mcc, merchant_state"
	input.Model = "  lightgbm "

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, []string{"data/a.csv", "data/b.csv"}, cfg.Files)
	assert.Equal(t, []string{"mcc", "merchant_state"}, cfg.Categorical)
	assert.Equal(t, "lightgbm", cfg.ModelName)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name        string
		backend     schema.DatabaseBackend
		connStr     string
		expectError bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"none empty", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/fcst", false},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"mysql no tcp", schema.MySQLBackend, "user:pass@localhost/fcst", true},
		{"mysql no db", schema.MySQLBackend, "user:pass@tcp(localhost:3306)", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost port=5432 user=u password=p dbname=fcst", false},
		{"postgres no host", schema.PostgreSQLBackend, "dbname=fcst", true},
		{"postgres no dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Files: []string{"a.csv"}, Categorical: []string{"mcc"}}
	clone := cfg.Clone()
	clone.Files[0] = "b.csv"
	clone.Categorical = append(clone.Categorical, "state")

	assert.Equal(t, "a.csv", cfg.Files[0])
	assert.Equal(t, []string{"mcc"}, cfg.Categorical)
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	require.NoError(t, ProcessProfilingConfig(profile, ""))
	assert.False(t, profile.Enabled)

	require.NoError(t, ProcessProfilingConfig(profile, "fcst"))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "fcst", profile.Prefix)
}
