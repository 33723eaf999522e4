package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/mccforecast/fcst/internal/contract"
	"github.com/mccforecast/fcst/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintConversionResults outputs the conversion summary, dispatching based on the output format configured.
func PrintConversionResults(results []schema.ConversionResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, results)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeConversionCSV(w, results)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return unsupportedOutput(cfg.Output, "conversion summaries")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeConversionTable(results, cfg, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeConversionTable generates and writes the human-readable table.
func writeConversionTable(results []schema.ConversionResult, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"File", "Status", "Rows", "CSV", "Parquet", "Ratio", "Time"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	pathWidth := GetMaxTablePathWidth(cfg)
	var data [][]string
	var converted int
	var csvTotal, parquetTotal int64
	for _, r := range results {
		status := contract.GetPlainStatus(r.Status)
		if cfg.UseColors {
			status = contract.GetColorStatus(r.Status)
		}
		row := []string{contract.TruncatePath(r.CSVPath, pathWidth), status, "-", "-", "-", "-", "-"}
		if r.Status == schema.ConvertedStatus {
			converted++
			csvTotal += r.CSVBytes
			parquetTotal += r.ParquetSize
			row[2] = strconv.FormatInt(r.Rows, 10)
			row[3] = contract.FormatMegabytes(r.CSVBytes)
			row[4] = contract.FormatMegabytes(r.ParquetSize)
			row[5] = fmt.Sprintf("%.1fx", r.CompressionRatio())
			row[6] = r.Duration.Round(time.Millisecond).String()
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	for _, r := range results {
		if r.Status != schema.FailedStatus {
			continue
		}
		if _, err := fmt.Fprintf(writer, "Error converting %s: %s\n", r.CSVPath, r.Error); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(writer, "Converted %d of %d files (%s CSV -> %s Parquet)\n",
		converted, len(results), contract.FormatMegabytes(csvTotal), contract.FormatMegabytes(parquetTotal)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Conversion completed in %v. Cache backend: %s\n", duration, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeConversionCSV writes one row per file.
func writeConversionCSV(w io.Writer, results []schema.ConversionResult) error {
	header := []string{
		"csv_path",
		"parquet_path",
		"status",
		"rows",
		"csv_bytes",
		"parquet_bytes",
		"ratio",
		"duration_ms",
		"error",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range results {
			rec := []string{
				r.CSVPath,
				r.ParquetPath,
				contract.GetPlainStatus(r.Status),
				strconv.FormatInt(r.Rows, 10),
				strconv.FormatInt(r.CSVBytes, 10),
				strconv.FormatInt(r.ParquetSize, 10),
				fmt.Sprintf("%.2f", r.CompressionRatio()),
				strconv.FormatInt(r.Duration.Milliseconds(), 10),
				r.Error,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
