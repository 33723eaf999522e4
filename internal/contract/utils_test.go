package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/mccforecast/fcst/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlainStatus(t *testing.T) {
	tests := []struct {
		status   schema.ConversionStatus
		expected string
	}{
		{schema.ConvertedStatus, "Converted"},
		{schema.SkippedStatus, "Skipped"},
		{schema.MissingStatus, "Missing"},
		{schema.FailedStatus, "Failed"},
		{schema.ConversionStatus("other"), "other"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.expected, GetPlainStatus(tt.status))
		})
	}
}

func TestGetColorStatus(t *testing.T) {
	original := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = original }()

	// With colors disabled the label equals the plain text
	assert.Equal(t, "Converted", GetColorStatus(schema.ConvertedStatus))
	assert.Equal(t, "Failed", GetColorStatus(schema.FailedStatus))
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestDBFilePaths(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	cachePath := GetCacheDBFilePath()
	assert.Contains(t, cachePath, ".fcst_cache.db")
	assert.True(t, strings.HasPrefix(cachePath, homeDir), "path %s should start with home dir %s", cachePath, homeDir)

	historyPath := GetHistoryDBFilePath()
	assert.Contains(t, historyPath, ".fcst_history.db")
	assert.NotEqual(t, cachePath, historyPath)
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		maxWidth int
		expected string
	}{
		{"short path untouched", "data/a.csv", 20, "data/a.csv"},
		{"long path truncated", "data/preprocessed/train_raw.csv", 12, "...n_raw.csv"},
		{"tiny width untouched", "data/preprocessed/train_raw.csv", 3, "data/preprocessed/train_raw.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncatePath(tt.path, tt.maxWidth)
			assert.Equal(t, tt.expected, got)
			if tt.maxWidth > 3 {
				assert.LessOrEqual(t, len([]rune(got)), tt.maxWidth)
			}
		})
	}
}

func TestFormatMegabytes(t *testing.T) {
	assert.Equal(t, "0.0 MB", FormatMegabytes(0))
	assert.Equal(t, "1.0 MB", FormatMegabytes(1024*1024))
	assert.Equal(t, "2.5 MB", FormatMegabytes(5*512*1024))
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "YES", "true", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}
