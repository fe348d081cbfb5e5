package remediation

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cleansh/cleansh/pkg/fingerprint"
	"github.com/cleansh/cleansh/pkg/model"
)

// PromptFunc blocks for human-in-the-loop approval of a remediation
// action. The default asks on stdin/stdout; tests and non-interactive
// runs supply a stub.
type PromptFunc func(providerName, ruleName string) bool

// EntropyFingerprintSink receives fingerprints fetched from the vault
// during the sync loop, so an entropy engine can recognize already-seen
// secrets across instances.
type EntropyFingerprintSink interface {
	UpdateFingerprints(fps []fingerprint.SecretFingerprint)
}

// Orchestrator implements the verify→gate→govern→act pipeline of
// spec.md §4.11, grounded on SelfHealingEngine.listen.
type Orchestrator struct {
	Providers   []Provider
	Vault       fingerprint.Vault
	Governor    *Governor
	Interactive bool
	OrgSalt     []byte
	Prompt      PromptFunc

	// SyncInterval governs the vault sync loop's period; zero disables
	// the loop even if a Vault and Sink are set.
	SyncInterval time.Duration
	Sink         EntropyFingerprintSink

	logger *slog.Logger
}

// NewOrchestrator constructs an Orchestrator. maxOpsPerMinute configures
// the embedded Governor (5 per 60s when zero).
func NewOrchestrator(providers []Provider, vault fingerprint.Vault, maxOpsPerMinute int, interactive bool, orgSalt []byte) *Orchestrator {
	return &Orchestrator{
		Providers:    providers,
		Vault:        vault,
		Governor:     NewGovernor(maxOpsPerMinute, 60*time.Second),
		Interactive:  interactive,
		OrgSalt:      orgSalt,
		Prompt:       stdinPrompt,
		SyncInterval: 5 * time.Minute,
		logger:       slog.Default(),
	}
}

// SetLogger overrides the orchestrator's structured logger.
func (o *Orchestrator) SetLogger(l *slog.Logger) { o.logger = l }

// Run consumes matches until ctx is done or the channel closes, applying
// the triple-lock safety pipeline to every (match, provider) pair where
// provider.CanHandle(match). It also starts the vault sync loop (if
// configured) in the same errgroup, so both goroutines share one
// cancellation path, mirroring the Rust original's task + sync-loop pair.
func (o *Orchestrator) Run(ctx context.Context, matches <-chan model.RedactionMatch) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return o.listen(ctx, matches)
	})

	if o.Vault != nil && o.Sink != nil && o.SyncInterval > 0 {
		g.Go(func() error {
			return o.syncLoop(ctx)
		})
	}

	return g.Wait()
}

func (o *Orchestrator) listen(ctx context.Context, matches <-chan model.RedactionMatch) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-matches:
			if !ok {
				return nil
			}
			o.handle(ctx, m)
		}
	}
}

func (o *Orchestrator) handle(ctx context.Context, m model.RedactionMatch) {
	for _, provider := range o.Providers {
		if !provider.CanHandle(m) {
			continue
		}

		isLive, err := provider.VerifyLiveStatus(ctx, m.OriginalString)
		if err != nil {
			isLive = false
		}

		confidence := assessConfidence(isLive, m.Rule.EffectivePatternType())

		authorized := false
		switch {
		case confidence >= provider.AutoRemediationThreshold():
			authorized = o.Governor.Allow()
		case o.Interactive && isLive:
			authorized = o.Prompt(provider.Name(), m.RuleName)
		}

		if !authorized {
			continue
		}

		outcome, err := provider.Remediate(ctx, m)
		if err != nil {
			o.logger.Error("remediation failed", "provider", provider.Name(), "rule", m.RuleName, "error", err)
			continue
		}

		o.logger.Info("remediation successful", "provider", provider.Name(), "rule", m.RuleName, "message", outcome.Message)

		if o.Vault != nil {
			fp := fingerprint.New(m.OriginalString, provider.Name(), o.OrgSalt, m.Rule.Severity)
			if err := o.Vault.Publish(fp); err != nil {
				o.logger.Warn("fingerprint publish failed", "provider", provider.Name(), "error", err)
			}
		}
	}
}

func (o *Orchestrator) syncLoop(ctx context.Context) error {
	ticker := time.NewTicker(o.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fps, err := o.Vault.FetchAll()
			if err != nil {
				o.logger.Warn("fingerprint sync failed", "error", err)
				continue
			}
			o.Sink.UpdateFingerprints(fps)
		}
	}
}

// stdinPrompt is the default interactive approval prompt, mirroring the
// Rust original's spawn_blocking terminal prompt. It runs on whatever
// goroutine calls it; the orchestrator's listen loop already does so off
// the errgroup's main select, so a blocking read here only stalls that
// one match's handling.
func stdinPrompt(providerName, ruleName string) bool {
	fmt.Println("\n\x1b[1;33m[CLEANSH SECURITY INTERVENTION]\x1b[0m")
	fmt.Printf("Live secret verified for: \x1b[1;36m%s\x1b[0m\n", providerName)
	fmt.Printf("Detection Rule: \x1b[1;32m%s\x1b[0m\n", ruleName)
	fmt.Print("Immediate revocation requested. Authorize? [y/N] > ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	choice := strings.ToLower(strings.TrimSpace(line))
	return choice == "y" || choice == "yes"
}
