package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mccforecast/fcst/schema"
)

// Color variables for console output.
var (
	FailedColor    = color.New(color.FgRed, color.Bold) // FailedColor represents standard danger.
	SkippedColor   = color.New(color.FgYellow)          // SkippedColor represents standard caution, not bold.
	MissingColor   = color.New(color.FgCyan)            // MissingColor represents informational signal.
	ConvertedColor = color.New(color.FgGreen, color.Bold)
)

// GetPlainStatus returns the plain text label for a conversion outcome.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainStatus(status schema.ConversionStatus) string {
	switch status {
	case schema.ConvertedStatus:
		return "Converted"
	case schema.SkippedStatus:
		return "Skipped"
	case schema.MissingStatus:
		return "Missing"
	case schema.FailedStatus:
		return "Failed"
	default:
		return string(status)
	}
}

// GetColorStatus returns a colored status label for console output (table).
func GetColorStatus(status schema.ConversionStatus) string {
	text := GetPlainStatus(status)

	switch status {
	case schema.ConvertedStatus:
		return ConvertedColor.Sprint(text)
	case schema.SkippedStatus:
		return SkippedColor.Sprint(text)
	case schema.MissingStatus:
		return MissingColor.Sprint(text)
	default:
		return FailedColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// LogInfo writes a progress message to stderr unless quiet is set.
func LogInfo(quiet bool, format string, args ...any) {
	if quiet {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the profile cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".fcst_cache.db"
	}
	return filepath.Join(homeDir, ".fcst_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for evaluation history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".fcst_history.db"
	}
	return filepath.Join(homeDir, ".fcst_history.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 so there is room for the "..." prefix and at least one character.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// FormatMegabytes renders a byte count as megabytes with one decimal.
func FormatMegabytes(n int64) string {
	return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
