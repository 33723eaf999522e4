// Package main provides a performance benchmarking tool for the fcst CLI.
// It generates synthetic transaction extracts of several sizes, measures
// convert and evaluate execution times, running each test multiple times,
// treating the first successful run as cold and averaging the rest as warm,
// and writes CSV output for performance analysis and documentation.
//
// Prerequisites:
// - fcst binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where synthetic data is generated
package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset     string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Sizes       map[string]int // dataset name -> rows
	Order       []string
}

var mccCodes = []string{"5411", "5812", "5541", "5912", "4121", "5311", "5732", "7011"}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     5 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Sizes: map[string]int{
			"small":  10_000,
			"medium": 250_000,
			"large":  2_000_000,
		},
		Order: []string{"small", "medium", "large"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("fcst", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the fcst binary and the work directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("fcst"); err != nil {
		return fmt.Errorf("fcst binary not found in PATH")
	}
	if info, err := os.Stat(config.WorkDir); err != nil || !info.IsDir() {
		return fmt.Errorf("work directory %s not found", config.WorkDir)
	}
	return nil
}

// generateDataset writes a transactions extract and a matching forecast file.
func generateDataset(dir string, rows int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	rng := rand.New(rand.NewPCG(uint64(rows), 42))

	tx, err := os.Create(filepath.Join(dir, "transactions_data.csv"))
	if err != nil {
		return err
	}
	defer func() { _ = tx.Close() }()
	txWriter := csv.NewWriter(tx)
	if err := txWriter.Write([]string{"id", "date", "client_id", "amount", "use_chip", "mcc"}); err != nil {
		return err
	}
	start := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range rows {
		rec := []string{
			strconv.Itoa(i + 1),
			start.Add(time.Duration(i) * time.Minute).Format("2006-01-02 15:04:05"),
			strconv.Itoa(rng.IntN(2000)),
			fmt.Sprintf("$%.2f", rng.Float64()*500),
			[]string{"Chip Transaction", "Swipe Transaction", "Online Transaction"}[rng.IntN(3)],
			mccCodes[rng.IntN(len(mccCodes))],
		}
		if err := txWriter.Write(rec); err != nil {
			return err
		}
	}
	txWriter.Flush()
	if err := txWriter.Error(); err != nil {
		return err
	}

	fc, err := os.Create(filepath.Join(dir, "forecast.csv"))
	if err != nil {
		return err
	}
	defer func() { _ = fc.Close() }()
	fcWriter := csv.NewWriter(fc)
	if err := fcWriter.Write([]string{"mcc", "y_true", "y_pred"}); err != nil {
		return err
	}
	for i := range rows / 10 {
		actual := 1000 + 300*math.Sin(float64(i)/52*2*math.Pi) + rng.NormFloat64()*50
		pred := actual + rng.NormFloat64()*80
		rec := []string{mccCodes[i%len(mccCodes)], strconv.FormatFloat(actual, 'f', 2, 64), strconv.FormatFloat(pred, 'f', 2, 64)}
		if err := fcWriter.Write(rec); err != nil {
			return err
		}
	}
	fcWriter.Flush()
	return fcWriter.Error()
}

// runBenchmarks executes all benchmark tests across configured datasets
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Order), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, name := range config.Order {
		dir := filepath.Join(config.WorkDir, name)
		fmt.Printf("Generating %s dataset (%d rows)\n", name, config.Sizes[name])
		if err := generateDataset(dir, config.Sizes[name]); err != nil {
			return nil, fmt.Errorf("failed to generate %s dataset: %w", name, err)
		}

		args := fmt.Sprintf("--data-dir %s --files transactions_data.csv --force", dir)
		results = append(results, runBenchmarkSuite(config, name, "convert", "convert (profile + write)", args))

		args = fmt.Sprintf("--input %s --category-col mcc", filepath.Join(dir, "forecast.csv"))
		results = append(results, runBenchmarkSuite(config, name, "evaluate", "evaluate (per-MCC report)", args))
	}

	return results, nil
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, dataset, command, description, extraArgs string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", description, dataset)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, command, extraArgs, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Dataset:     dataset,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes an fcst command multiple times with specified cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, command, extraArgs, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{command, "--quiet", "--output", "csv", "--cache-backend", cacheBackend}
	args = append(args, strings.Fields(extraArgs)...)

	var times []float64
	for range numRuns {
		start := time.Now()
		cmd := exec.Command("fcst", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.Output()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output, command) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)
	if command == "convert" {
		return strings.Contains(outputStr, ",Converted,")
	}
	return strings.Contains(outputStr, "overall,,sMAPE_w,")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/fcst_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"dataset", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "convert", "Convert:")
	printCommandSummary(results, "evaluate", "Evaluate:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-8s: No-cache: %s, Cold: %s, Warm: %s\n", result.Dataset, result.NoCacheTime, result.ColdTime, result.WarmTime)
		}
	}
}
