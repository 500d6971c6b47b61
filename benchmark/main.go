// Package main provides a performance benchmarking tool for the PersonaLens CLI.
// It measures execution times across corpus sizes and command types,
// running each test multiple times, treating the first successful run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - personalens binary installed and available in PATH
//
// Usage: go run benchmark/main.go [embedder]
//
//	embedder: hash (default, offline) or openai (needs PERSONALENS_EMBED_API_KEY)
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Corpus      string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Embedder    string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	CorpusSizes map[string]int
	Commands    []string
	WorkDir     string
}

// phrases are combined into synthetic statements of varying tone.
var phrases = []string{
	"we ship every week",
	"revenue grew 12% in Q3",
	"synergy will unlock transformative value",
	"I think we might possibly be on track",
	"we always deliver and never miss",
	"the team measured adoption across 40 accounts",
	"our roadmap leverages a holistic paradigm",
	"latency dropped from 300ms to 120ms",
}

func main() {
	embedder := "hash"
	if len(os.Args) == 2 {
		embedder = os.Args[1]
	} else if len(os.Args) > 2 {
		fmt.Printf("Usage: %s [embedder]\n", os.Args[0])
		os.Exit(1)
	}

	workDir, err := os.MkdirTemp("", "personalens-benchmark-*")
	if err != nil {
		fmt.Printf("Failed to create work dir: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	config := BenchmarkConfig{
		Embedder:    embedder,
		Timeout:     5 * time.Minute,
		Workers:     8,
		NoCacheRuns: 3,
		CacheRuns:   4,
		CorpusSizes: map[string]int{"small": 20, "medium": 200, "large": 2000},
		Commands:    []string{"drift", "timeline", "clusters", "reasons"},
		WorkDir:     workDir,
	}

	if err := checkPrerequisites(); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the personalens binary exists
func checkPrerequisites() error {
	if _, err := exec.LookPath("personalens"); err != nil {
		return fmt.Errorf("personalens binary not found in PATH")
	}
	return nil
}

// writeCorpus writes a YAML input with n dated statements and returns its path.
func writeCorpus(dir, name string, n int) (string, error) {
	var b strings.Builder
	b.WriteString("texts:\n")
	for i := range n {
		fmt.Fprintf(&b, "  - \"%s, %s (%d)\"\n", phrases[i%len(phrases)], phrases[(i*3+1)%len(phrases)], i)
	}
	b.WriteString("items:\n")
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range n {
		fmt.Fprintf(&b, "  - date: \"%s\"\n    text: \"%s (%d)\"\n", start.AddDate(0, 0, i).Format("2006-01-02"), phrases[i%len(phrases)], i)
	}
	path := filepath.Join(dir, name+".yaml")
	return path, os.WriteFile(path, []byte(b.String()), 0o644)
}

// runBenchmarks executes all benchmark tests across configured corpora
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d corpora, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.CorpusSizes), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, corpus := range []string{"small", "medium", "large"} {
		size := config.CorpusSizes[corpus]
		fmt.Printf("Benchmarking %s corpus (%d texts)\n", corpus, size)

		inputPath, err := writeCorpus(config.WorkDir, corpus, size)
		if err != nil {
			fmt.Printf("  Failed to write corpus: %v\n", err)
			continue
		}
		for _, command := range config.Commands {
			results = append(results, runBenchmarkSuite(config, corpus, command, inputPath))
		}
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, corpus, command, inputPath string) BenchmarkResult {
	fmt.Printf("Running %s on %s corpus\n", command, corpus)

	// Every suite starts from an empty embedding cache
	cacheDir := filepath.Join(config.WorkDir, "cache-"+corpus+"-"+command)

	runPhase := func(embedCache string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, command, inputPath, embedCache, cacheDir, numRuns)
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
	_, noCacheAvg := runPhase("no", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase("yes", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Corpus:      corpus,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a personalens command multiple times and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, command, inputPath, embedCache, cacheDir string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{
		command,
		"--input", inputPath,
		"--embedder", config.Embedder,
		"--embed-cache", embedCache,
		"--embed-cache-dir", cacheDir,
		"--workers", fmt.Sprint(config.Workers),
		"--vault-backend", "none",
	}

	var times []float64
	for range numRuns {
		start := time.Now()

		cmd := exec.Command("personalens", args...)
		cmd.Dir = config.WorkDir

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
			// Timeout - don't add to times
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
	outputStr := string(output)
	return strings.Contains(outputStr, "Analysis completed in") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/personalens_benchmark_%s.csv", timestamp)

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

	if err := writer.Write([]string{"corpus", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write([]string{result.Corpus, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	for _, command := range config.Commands {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-8s: No-cache: %s, Cold: %s, Warm: %s\n", result.Corpus, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}

	fmt.Printf("Benchmark script completed successfully\n")
}
