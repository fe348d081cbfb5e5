// Command cleansh is a thin pass-through binary over pkg/cleansh: it
// loads rules (built-in defaults, optionally merged with a user YAML file
// and an optional signed profile overlay), sanitizes stdin or a file, and
// reports the redaction summary as text, JSON, or markdown. Adapted
// directly from the teacher's cmd/poltergeist/main.go.
package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/cleansh/cleansh/pkg/cleansh"
	"github.com/cleansh/cleansh/pkg/fingerprint"
	"github.com/cleansh/cleansh/pkg/model"
	"github.com/cleansh/cleansh/pkg/profile"
	"github.com/cleansh/cleansh/pkg/remediation"
	"github.com/cleansh/cleansh/pkg/remediation/providers"
	"github.com/cleansh/cleansh/pkg/rules"
	"github.com/cleansh/cleansh/pkg/stream"
)

var version = "dev"

var (
	rulesFlag        = flag.String("rules", "", "YAML file of additional/overriding redaction rules")
	profileFlag      = flag.String("profile", "", "Named or path profile overlay to apply")
	enableFlag       = flag.String("enable", "", "Comma-separated opt-in rule names to enable")
	disableFlag      = flag.String("disable", "", "Comma-separated rule names to disable")
	entropyThreshold = flag.Float64("entropy-threshold", 0, "Override engines.entropy.threshold (0 = use config default)")
	lineBufferedFlag = flag.Bool("lines", false, "Process input line-by-line instead of as one buffer")
	formatFlag       = flag.String("format", "text", "Output summary format: text, json, md")
	outputFlag       = flag.String("output", "", "Write sanitized output to file instead of stdout")
	summaryFlag      = flag.String("summary-output", "", "Write the report (text/json/md) to a file instead of stderr")
	failOverFlag     = flag.Int("fail-over-threshold", 0, "Exit non-zero when total match count exceeds this (0 = disabled)")
	noColorFlag      = flag.Bool("no-color", false, "Disable colored report output")
	helpFlag         = flag.Bool("help", false, "Show this help message")
	versionFlag      = flag.Bool("version", false, "Show version information")

	remediateFlag   = flag.Bool("remediate", false, "Verify live credentials and attempt provider-side revocation")
	vaultFlag       = flag.String("vault", "", "JSON fingerprint vault file (required with -remediate)")
	interactiveFlag = flag.Bool("interactive", false, "Prompt on stdin before remediating a verified-live secret below the auto threshold")
	maxActionsFlag  = flag.Int("max-remediations-per-min", remediation.DefaultMaxActions, "Governor limit: remediation actions allowed per 60s window")
)

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [options] [file]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\nReads from stdin when no file is given. Sanitized output goes to stdout\n")
	fmt.Fprintf(os.Stderr, "(or -output); a redaction report goes to stderr (or -summary-output).\n")
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Parse()

	if *helpFlag {
		printUsage()
		os.Exit(0)
	}
	if *versionFlag {
		fmt.Printf("cleansh %s\n", version)
		os.Exit(0)
	}

	logger := newLogger()

	cfg, err := loadConfig(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cleansh: %v\n", err)
		os.Exit(1)
	}

	engine, err := cleansh.New(cfg, model.EngineOptions{EngineVersion: version}, rules.NewCache())
	if err != nil {
		fmt.Fprintf(os.Stderr, "cleansh: compiling rules: %v\n", err)
		os.Exit(1)
	}

	in, sourceID, err := openInput()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cleansh: %v\n", err)
		os.Exit(1)
	}
	defer in.Close()
	engine.SetSourceID(sourceID)

	stopRemediation, err := maybeStartRemediation(engine, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cleansh: %v\n", err)
		os.Exit(1)
	}
	defer stopRemediation()

	out, closeOut, err := openOutput(*outputFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cleansh: %v\n", err)
		os.Exit(1)
	}
	defer closeOut()

	p := stream.New(engine)

	start := time.Now()
	var summary []model.RedactionSummaryItem
	if *lineBufferedFlag {
		summary, err = p.RunLines(in, out)
	} else {
		var sanitized []byte
		sanitized, summary, err = p.RunBuffer(in)
		if err == nil {
			_, err = out.Write(sanitized)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "cleansh: sanitizing input: %v\n", err)
		os.Exit(1)
	}
	duration := time.Since(start)

	totalMatches := 0
	for _, item := range summary {
		totalMatches += item.Occurrences
	}

	report, reportErr := renderReport(summary, totalMatches, duration, *formatFlag, !*noColorFlag)
	if reportErr != nil {
		fmt.Fprintf(os.Stderr, "cleansh: %v\n", reportErr)
		os.Exit(1)
	}
	if err := writeReport(report, *summaryFlag); err != nil {
		fmt.Fprintf(os.Stderr, "cleansh: %v\n", err)
		os.Exit(1)
	}

	if *failOverFlag > 0 && totalMatches > *failOverFlag {
		os.Exit(1)
	}
	os.Exit(0)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("CLEANSH_ALLOW_DEBUG_PII") == "true" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig assembles the effective RedactionConfig from built-in
// defaults, an optional -rules YAML overlay, an optional -profile overlay,
// and -enable/-disable rule filters.
func loadConfig(logger *slog.Logger) (model.RedactionConfig, error) {
	defaults, err := rules.LoadDefaultRules()
	if err != nil {
		return model.RedactionConfig{}, fmt.Errorf("loading built-in rules: %w", err)
	}

	cfg := defaults
	if *rulesFlag != "" {
		raw, err := os.ReadFile(*rulesFlag)
		if err != nil {
			return model.RedactionConfig{}, fmt.Errorf("reading -rules file: %w", err)
		}
		var user model.RedactionConfig
		if err := yaml.Unmarshal(raw, &user); err != nil {
			return model.RedactionConfig{}, fmt.Errorf("parsing -rules file: %w", err)
		}
		cfg = rules.MergeRules(defaults, user)
	}

	if *entropyThreshold > 0 {
		cfg.Engines.Entropy.Threshold = *entropyThreshold
	}

	if *profileFlag != "" {
		prof, err := profile.LoadProfile(*profileFlag)
		if err != nil {
			return model.RedactionConfig{}, fmt.Errorf("loading profile: %w", err)
		}
		if err := profile.Validate(prof, cfg); err != nil {
			return model.RedactionConfig{}, fmt.Errorf("validating profile: %w", err)
		}
		cfg = profile.Apply(prof, cfg, func(format string, args ...any) {
			logger.Warn(fmt.Sprintf(format, args...))
		})
	}

	cfg.Rules = rules.FilterActiveRules(cfg.Rules, splitCSV(*enableFlag), splitCSV(*disableFlag))
	return cfg, nil
}

// maybeStartRemediation wires the verify→gate→govern→act orchestrator
// (C11) to engine when -remediate is set: it attaches a remediation
// channel, starts the orchestrator on a background goroutine, and
// returns a function that closes the channel and waits for the
// orchestrator to drain before the CLI exits.
func maybeStartRemediation(engine *cleansh.Engine, logger *slog.Logger) (func(), error) {
	if !*remediateFlag {
		return func() {}, nil
	}
	if *vaultFlag == "" {
		return nil, fmt.Errorf("-remediate requires -vault <path>")
	}

	var orgSalt []byte
	if s := os.Getenv("CLEANSH_ORG_SALT"); s != "" {
		decoded, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("decoding CLEANSH_ORG_SALT from hex: %w", err)
		}
		orgSalt = decoded
	}

	provs := []remediation.Provider{
		providers.NewGitHubProvider(),
		providers.NewAWSProvider("", func(string) (string, bool) { return "", false }),
	}

	orch := remediation.NewOrchestrator(provs, fingerprint.NewFileVault(*vaultFlag), *maxActionsFlag, *interactiveFlag, orgSalt)
	orch.SetLogger(logger)

	ch := make(chan model.RedactionMatch, 100)
	engine.SetRemediationChannel(ch)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		if err := orch.Run(ctx, ch); err != nil && err != context.Canceled {
			logger.Warn("remediation orchestrator stopped", "error", err)
		}
		close(done)
	}()

	return func() {
		close(ch)
		<-done
		cancel()
	}, nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func openInput() (*os.File, string, error) {
	if flag.NArg() < 1 {
		return os.Stdin, "stdin", nil
	}
	path := flag.Arg(0)
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening %s: %w", path, err)
	}
	return f, path, nil
}

func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating -output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func writeReport(report, path string) error {
	if path == "" {
		fmt.Fprint(os.Stderr, report)
		return nil
	}
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		return fmt.Errorf("writing -summary-output file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Report written to %s\n", path)
	return nil
}

func renderReport(summary []model.RedactionSummaryItem, totalMatches int, duration time.Duration, format string, useColor bool) (string, error) {
	switch format {
	case "json":
		return renderJSON(summary, totalMatches, duration)
	case "md", "markdown":
		return renderMarkdown(summary, totalMatches, duration), nil
	case "text":
		return renderText(summary, totalMatches, duration, useColor), nil
	default:
		return "", fmt.Errorf("unknown -format %q (use text, json, or md)", format)
	}
}

func renderText(summary []model.RedactionSummaryItem, totalMatches int, duration time.Duration, useColor bool) string {
	color.NoColor = !useColor
	var b strings.Builder

	fmt.Fprintf(&b, "\n%s\n", strings.Repeat("-", 50))
	fmt.Fprintf(&b, "%s\n", color.New(color.Bold).Sprint("CLEANSH REDACTION SUMMARY"))
	fmt.Fprintf(&b, "%s\n\n", strings.Repeat("-", 50))

	if len(summary) == 0 {
		fmt.Fprintf(&b, "%s No sensitive data detected.\n\n", color.GreenString("OK"))
		return b.String()
	}

	fmt.Fprintf(&b, "Total matches: %s across %d rule(s)\n\n", color.RedString("%d", totalMatches), len(summary))

	table := tablewriter.NewWriter(&b)
	table.Header("Rule", "Occurrences", "Sample")
	for _, item := range summary {
		sample := ""
		if len(item.OriginalTexts) > 0 {
			sample = truncate(item.OriginalTexts[0], 40)
		}
		table.Append(item.RuleName, fmt.Sprintf("%d", item.Occurrences), sample)
	}
	table.Render()

	fmt.Fprintf(&b, "\nScan completed in %v\n\n", duration)
	return b.String()
}

func renderJSON(summary []model.RedactionSummaryItem, totalMatches int, duration time.Duration) (string, error) {
	out := struct {
		TotalMatches int                          `json:"total_matches"`
		DurationMs   int64                        `json:"duration_ms"`
		Rules        []model.RedactionSummaryItem `json:"rules"`
	}{
		TotalMatches: totalMatches,
		DurationMs:   duration.Milliseconds(),
		Rules:        summary,
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding JSON report: %w", err)
	}
	return string(data) + "\n", nil
}

func renderMarkdown(summary []model.RedactionSummaryItem, totalMatches int, duration time.Duration) string {
	var b strings.Builder
	b.WriteString("# cleansh Redaction Report\n\n")
	fmt.Fprintf(&b, "**Total matches:** %d  \n", totalMatches)
	fmt.Fprintf(&b, "**Scan duration:** %v  \n\n", duration)

	if len(summary) == 0 {
		b.WriteString("No sensitive data detected.\n")
		return b.String()
	}

	b.WriteString("| Rule | Occurrences |\n|------|-------------|\n")
	for _, item := range summary {
		fmt.Fprintf(&b, "| %s | %d |\n", item.RuleName, item.Occurrences)
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
