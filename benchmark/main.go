// Package main provides a performance benchmarking tool for the ghsnap CLI.
// It generates synthetic snapshots of increasing size and measures the offline
// stages (summarize, validate, render) against them, running each test multiple
// times, treating the first successful run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - ghsnap binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where synthetic snapshots are generated
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/ghsnap/schema"
)

const benchmarkDate = "2024-03-01"

// BenchmarkResult holds the result of a benchmark run (no-history average, cold run and average of warm runs).
type BenchmarkResult struct {
	Size          int
	Command       string
	NoHistoryTime string
	ColdTime      string
	WarmTime      string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir       string
	Timeout       time.Duration
	NoHistoryRuns int
	HistoryRuns   int
	Sizes         []int
	Organizations int
	Contributors  int
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:       os.Args[1],
		Timeout:       2 * time.Minute,
		NoHistoryRuns: 3,
		HistoryRuns:   4,
		Sizes:         []int{100, 1000, 10000, 50000},
		Organizations: 8,
		Contributors:  20,
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Clearing history...\n")
	clearCmd := exec.Command("ghsnap", "history", "clear", "--history-backend", "sqlite")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear history: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("History cleared successfully\n")
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

// checkPrerequisites verifies that the ghsnap binary exists and the work dir is usable.
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("ghsnap"); err != nil {
		return fmt.Errorf("ghsnap binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// runBenchmarks generates snapshots for every size and times each offline stage.
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d sizes, %v timeout, no-history: %d runs, history: %d runs\n",
		len(config.Sizes), config.Timeout, config.NoHistoryRuns, config.HistoryRuns)

	for _, size := range config.Sizes {
		fmt.Printf("Benchmarking %d repositories\n", size)

		dir := filepath.Join(config.WorkDir, "size-"+strconv.Itoa(size))
		if err := generateSnapshots(config, dir, size); err != nil {
			return nil, fmt.Errorf("failed to generate snapshots for %d repositories: %w", size, err)
		}

		// Summarize first so validate and render have a summary to read
		results = append(results, runBenchmarkSuite(config, size, dir, "summarize", ""))
		results = append(results, runBenchmarkSuite(config, size, dir, "validate", ""))
		results = append(results, runBenchmarkSuite(config, size, dir, "render",
			"--web-dir "+filepath.Join(dir, "web")))
	}

	return results, nil
}

// generateSnapshots writes deterministic repository and contribution snapshots.
func generateSnapshots(config BenchmarkConfig, dir string, size int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	rng := rand.New(rand.NewPCG(uint64(size), 42))
	languages := []string{"Go", "Rust", "Python", "TypeScript", "Java", "C"}
	collected := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)

	repos := make([]schema.RepositoryRecord, 0, size)
	for i := range size {
		org := fmt.Sprintf("org-%02d", i%config.Organizations)
		name := fmt.Sprintf("repo-%05d", i)
		record := schema.RepositoryRecord{
			Organization:        org,
			Name:                name,
			FullName:            org + "/" + name,
			Stars:               rng.IntN(100000),
			Forks:               rng.IntN(10000),
			OpenIssues:          rng.IntN(500),
			Size:                rng.IntN(500000),
			CollectionDate:      benchmarkDate,
			CollectionTimestamp: collected,
		}
		if i%7 != 0 {
			lang := languages[rng.IntN(len(languages))]
			record.Language = &lang
		}
		repos = append(repos, record)
	}

	var contribs []schema.RepositoryContribution
	for _, repo := range repos[:min(len(repos), 30)] {
		contrib := schema.RepositoryContribution{
			RepoFullName:        repo.FullName,
			Organization:        repo.Organization,
			RepoName:            repo.Name,
			RepoStars:           repo.Stars,
			TotalContributors:   config.Contributors,
			CollectionDate:      benchmarkDate,
			CollectionTimestamp: collected,
		}
		for j := range config.Contributors {
			contrib.Contributors = append(contrib.Contributors, schema.ContributorRecord{
				Login:         fmt.Sprintf("dev-%03d", rng.IntN(config.Contributors*4)+j%2),
				Contributions: rng.IntN(1000) + 1,
				Type:          "User",
			})
		}
		contribs = append(contribs, contrib)
	}

	if err := writeJSON(filepath.Join(dir, schema.SnapshotFileName(schema.ReposFilePrefix, benchmarkDate)), repos); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, schema.SnapshotFileName(schema.ContributionFilePrefix, benchmarkDate)), contribs)
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// runBenchmarkSuite runs both no-history and history benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, size int, dir, command, extraArgs string) BenchmarkResult {
	fmt.Printf("Running %s on %d repositories\n", command, size)

	runPhase := func(historyBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, dir, command, extraArgs, historyBackend, numRuns)
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

	_, noHistoryAvg := runPhase("none", config.NoHistoryRuns, "No-history")
	coldTime, warmAvg := runPhase("sqlite", config.HistoryRuns, "History")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-history average: %s, Cold time: %s, Warm average: %s\n", noHistoryAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Size:          size,
		Command:       command,
		NoHistoryTime: noHistoryAvg,
		ColdTime:      coldTimeStr,
		WarmTime:      warmAvg,
	}
}

// runBenchmark executes a ghsnap command multiple times with the given history backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, dir, command, extraArgs, historyBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{
		command,
		"--output-dir", dir,
		"--date", benchmarkDate,
		"--history-backend", historyBackend,
		"--log-level", "error",
	}
	if extraArgs != "" {
		args = append(args, strings.Fields(extraArgs)...)
	}

	var times []float64
	for range numRuns {
		start := time.Now()

		cmd := exec.Command("ghsnap", args...)
		cmd.Dir = dir

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
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
func isSuccess(output []byte) bool {
	return !strings.Contains(string(output), "❌")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/ghsnap_benchmark_%s.csv", timestamp)

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

	if err := writer.Write([]string{"repositories", "cmd", "no_history_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write([]string{strconv.Itoa(result.Size), result.Command, result.NoHistoryTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "summarize", "Summarize:")
	printCommandSummary(results, "validate", "Validate:")
	printCommandSummary(results, "render", "Render:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-8d: No-history: %s, Cold: %s, Warm: %s\n", result.Size, result.NoHistoryTime, result.ColdTime, result.WarmTime)
		}
	}
}
