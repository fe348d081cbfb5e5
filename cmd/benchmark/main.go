// Command benchmark measures rule compilation and sanitization throughput
// across growing rule-set sizes. Adapted from the teacher's
// cmd/benchmark/main.go, rewired from the Rule/Redact-offset engine
// comparison (Go regex vs Hyperscan) to the new RedactionRule/Engine data
// model: a single Go-regexp pattern engine plus the entropy engine, since
// Hyperscan was dropped (see DESIGN.md).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cleansh/cleansh/pkg/cleansh"
	"github.com/cleansh/cleansh/pkg/model"
	"github.com/cleansh/cleansh/pkg/rules"
)

// BenchmarkResult holds the results of a single scenario's benchmark run.
type BenchmarkResult struct {
	RuleCount       int
	TotalBytes      int64
	MatchesFound    int64
	CompileDuration time.Duration
	ScanDuration    time.Duration
	ThroughputMBPS  float64
}

func main() {
	maxRules := flag.Int("max-rules", 0, "Maximum number of rules to test (0 = no limit)")
	repeat := flag.Int("repeat", 2000, "Number of times the synthetic corpus line set is repeated")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nBenchmark the cleansh rule compiler and pattern engine\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	defaultCfg, err := rules.LoadDefaultRules()
	if err != nil {
		log.Fatalf("Failed to load built-in rules: %v", err)
	}

	fmt.Println("=== cleansh Benchmark Tool ===")
	fmt.Printf("Built-in rules: %d\n\n", len(defaultCfg.Rules))

	corpus := []byte(strings.Repeat(syntheticLine(), *repeat))

	scenarios := []int{0, 10, 50, 100, 200, 500, 1000}
	var allResults []BenchmarkResult

	for _, dummyCount := range scenarios {
		ruleSet := append([]model.RedactionRule{}, defaultCfg.Rules...)
		ruleSet = append(ruleSet, generateDummyRules(dummyCount)...)

		if *maxRules > 0 && len(ruleSet) > *maxRules {
			fmt.Printf("=== Skipping %d built-in + %d dummy rules (%d total, exceeds max-rules=%d) ===\n\n",
				len(defaultCfg.Rules), dummyCount, len(ruleSet), *maxRules)
			continue
		}

		fmt.Printf("=== Testing with %d built-in + %d dummy rules (%d total) ===\n",
			len(defaultCfg.Rules), dummyCount, len(ruleSet))

		result := benchmarkRuleSet(ruleSet, defaultCfg.Engines, corpus)
		allResults = append(allResults, result)
		printResult(result)
		fmt.Println()
	}

	printSummaryTable(allResults)
}

func syntheticLine() string {
	return "user alice@example.com logged in from 10.0.0.1, AUTH_TOKEN=7f8a9b2c3d4e5f6a7b8c9d0e1f2a3b4c, card 4539-1488-0343-6467\n"
}

// generateDummyRules builds harmless, never-matching regex rules so
// compile/scan cost scales with rule count without perturbing match
// counts on the synthetic corpus.
func generateDummyRules(count int) []model.RedactionRule {
	out := make([]model.RedactionRule, count)
	for i := 0; i < count; i++ {
		n := fmt.Sprintf("%04d", i+1)
		out[i] = model.RedactionRule{
			Name:        fmt.Sprintf("dummy_rule_%s", n),
			Pattern:     fmt.Sprintf(`DUMMY%s_[A-Z0-9]{32,40}`, n),
			ReplaceWith: "[DUMMY]",
			Tags:        []string{"dummy", "benchmark"},
		}
	}
	return out
}

// benchmarkRuleSet compiles ruleSet, builds an Engine, and measures
// compile time plus a single full-corpus Sanitize pass.
func benchmarkRuleSet(ruleSet []model.RedactionRule, engines model.EngineConfig, corpus []byte) BenchmarkResult {
	result := BenchmarkResult{RuleCount: len(ruleSet), TotalBytes: int64(len(corpus))}

	compileStart := time.Now()
	engine, err := cleansh.New(model.RedactionConfig{Rules: ruleSet, Engines: engines}, model.EngineOptions{}, nil)
	if err != nil {
		log.Fatalf("Failed to compile rule set: %v", err)
	}
	result.CompileDuration = time.Since(compileStart)

	scanStart := time.Now()
	_, summary := engine.Sanitize(corpus)
	result.ScanDuration = time.Since(scanStart)

	for _, item := range summary {
		result.MatchesFound += int64(item.Occurrences)
	}
	if result.ScanDuration.Seconds() > 0 {
		result.ThroughputMBPS = float64(result.TotalBytes) / (1024 * 1024) / result.ScanDuration.Seconds()
	}

	return result
}

func printResult(result BenchmarkResult) {
	fmt.Printf("  Rules: %d\n", result.RuleCount)
	fmt.Printf("  Compilation Time: %v\n", result.CompileDuration)
	fmt.Printf("  Scan Time: %v\n", result.ScanDuration)
	fmt.Printf("  Corpus Size: %.2f MB\n", float64(result.TotalBytes)/(1024*1024))
	fmt.Printf("  Matches Found: %d\n", result.MatchesFound)
	fmt.Printf("  Throughput: %.2f MB/s\n", result.ThroughputMBPS)
}

func printSummaryTable(results []BenchmarkResult) {
	fmt.Println("=== BENCHMARK SUMMARY ===")
	fmt.Println()
	fmt.Printf("%-8s %-12s %-12s %-12s %-10s\n", "Rules", "Compile(ms)", "Scan(ms)", "Matches", "MB/s")
	fmt.Printf("%-8s %-12s %-12s %-12s %-10s\n", "-----", "-----------", "--------", "-------", "----")
	for _, r := range results {
		fmt.Printf("%-8d %-12.1f %-12.1f %-12d %-10.2f\n",
			r.RuleCount,
			float64(r.CompileDuration.Nanoseconds())/1e6,
			float64(r.ScanDuration.Nanoseconds())/1e6,
			r.MatchesFound,
			r.ThroughputMBPS,
		)
	}
	fmt.Println()
}
