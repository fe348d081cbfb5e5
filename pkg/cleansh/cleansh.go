// Package cleansh is the top-level facade: it wires the rule compiler,
// the pattern and entropy engines, the ANSI mapper, and the sanitizer
// applier into a single Engine, generalizing the teacher's PatternEngine
// interface to cover both concrete engines plus a remediation tee.
package cleansh

import (
	"time"

	"github.com/cleansh/cleansh/pkg/ansi"
	"github.com/cleansh/cleansh/pkg/entropy"
	"github.com/cleansh/cleansh/pkg/model"
	"github.com/cleansh/cleansh/pkg/rules"
	"github.com/cleansh/cleansh/pkg/sanitize"
)

// Engine is the unified sanitization surface: pattern matching, entropy
// analysis, and full redaction in one place.
type Engine struct {
	cfg         model.RedactionConfig
	compiled    *rules.CompiledRules
	pattern     *rules.PatternEngine
	entropyE    *entropy.Engine
	entropyRule *model.RedactionRule
	applier     *sanitize.Applier
	opts        model.EngineOptions
}

// New compiles cfg's rule set and constructs an Engine ready to sanitize
// input. A non-nil cache is reused across Engine instances sharing the
// same rule set, amortizing compilation.
//
// The entropy engine only runs when cfg.Rules carries an active
// pattern_type: entropy rule: absent such a rule (e.g. it was dropped by
// FilterActiveRules because it is opt-in and was not named in --enable),
// Sanitize skips entropy scanning entirely, so --enable/--disable on an
// entropy rule actually controls whether entropy redaction runs.
func New(cfg model.RedactionConfig, opts model.EngineOptions, cache *rules.Cache) (*Engine, error) {
	var compiled *rules.CompiledRules
	var err error
	if cache != nil {
		compiled, err = cache.GetOrCompile(cfg)
	} else {
		compiled, err = rules.Compile(cfg.Rules)
	}
	if err != nil {
		return nil, err
	}

	var entropyRule *model.RedactionRule
	var entropyE *entropy.Engine
	for i := range cfg.Rules {
		if cfg.Rules[i].EffectivePatternType() == "entropy" {
			r := cfg.Rules[i]
			entropyRule = &r
			entropyE = entropy.New(cfg.Engines.Entropy)
			break
		}
	}

	return &Engine{
		cfg:         cfg,
		compiled:    compiled,
		pattern:     rules.New(compiled),
		entropyE:    entropyE,
		entropyRule: entropyRule,
		applier:     sanitize.New(opts),
		opts:        opts,
	}, nil
}

// SetRemediationChannel attaches a non-blocking tee for every pattern
// match produced during Sanitize/FindMatches.
func (e *Engine) SetRemediationChannel(ch chan<- model.RedactionMatch) {
	e.pattern.SetRemediationChannel(ch)
}

// SetSourceID tags every match this engine produces with sourceID (e.g.
// a file path or "stdin").
func (e *Engine) SetSourceID(sourceID string) {
	e.pattern.SetSourceID(sourceID)
}

// SetPostProcessingTemplate overrides the sanitizer's token
// post-processing template.
func (e *Engine) SetPostProcessingTemplate(tmpl string) {
	e.applier.SetTemplate(tmpl)
}

// CompiledRules returns the engine's shared compiled rule set.
func (e *Engine) CompiledRules() *rules.CompiledRules { return e.compiled }

// GetRules returns the rule set this engine was built from.
func (e *Engine) GetRules() []model.RedactionRule { return e.cfg.Rules }

// GetOptions returns this engine's immutable runtime options.
func (e *Engine) GetOptions() model.EngineOptions { return e.opts }

// FindMatches runs only the pattern engine against stripped input.
func (e *Engine) FindMatches(stripped []byte) map[string][]model.RedactionMatch {
	return e.pattern.FindMatches(stripped)
}

// Analyze runs only the entropy locator against stripped input. It returns
// nil when no entropy rule is active in the engine's rule set.
func (e *Engine) Analyze(stripped []byte) []model.EntropyMatch {
	if e.entropyE == nil {
		return nil
	}
	return e.entropyE.Scan(stripped)
}

// HeatScores returns a per-byte entropy heat map, for diagnostic/report
// rendering. It returns nil when no entropy rule is active in the engine's
// rule set.
func (e *Engine) HeatScores(stripped []byte) []float64 {
	if e.entropyE == nil {
		return nil
	}
	return e.entropyE.HeatScores(stripped)
}

// Sanitize strips ANSI escapes from original, runs the pattern engine over
// the stripped view, and, if cfg.Rules carries an active entropy rule,
// also runs the entropy engine and converts its hits to RedactionMatch
// under that rule's name. Everything is merged through the applier, which
// returns the sanitized bytes plus a per-rule summary.
func (e *Engine) Sanitize(original []byte) ([]byte, []model.RedactionSummaryItem) {
	stripped, mapper := ansi.NewMapper(original)

	byRule := e.pattern.FindMatches(stripped)
	var all []model.RedactionMatch
	for _, ms := range byRule {
		all = append(all, ms...)
	}

	if e.entropyE != nil {
		for _, em := range e.entropyE.Scan(stripped) {
			all = append(all, e.entropyMatchToRedaction(stripped, em))
		}
	}

	return e.applier.Apply(original, stripped, mapper, all)
}

// entropyMatchToRedaction converts an intermediate entropy locator result
// into a RedactionMatch, using e.entropyRule's name and replacement text
// (falling back to the documented "[ENTROPY_REDACTED]" literal, matching
// the Rust original's entropy_engine.rs create_redaction_match).
func (e *Engine) entropyMatchToRedaction(stripped []byte, em model.EntropyMatch) model.RedactionMatch {
	name := "entropy-secret"
	replaceWith := "[ENTROPY_REDACTED]"
	rule := model.RedactionRule{Name: name, PatternType: "entropy"}
	if e.entropyRule != nil {
		rule = *e.entropyRule
		name = rule.Name
		if rule.ReplaceWith != "" {
			replaceWith = rule.ReplaceWith
		}
	}

	return model.RedactionMatch{
		RuleName:        name,
		OriginalString:  string(stripped[em.Start:em.End]),
		SanitizedString: replaceWith,
		Start:           em.Start,
		End:             em.End,
		Timestamp:       time.Now(),
		Rule:            rule,
	}
}
