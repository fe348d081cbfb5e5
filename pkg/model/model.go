// Package model holds the shared data types that flow between the
// sanitization engines, the applier, the profile resolver, and the
// remediation orchestrator.
package model

import "time"

// MaxPatternLength is the largest permitted byte length of a rule's regex
// pattern.
const MaxPatternLength = 500

// TriState represents an optional boolean with an explicit "unspecified"
// state, used for RedactionRule.Enabled: unspecified rules are enabled by
// default unless Opt-in, but an explicit false always disables.
type TriState int

const (
	// Unset means no explicit enabled/disabled override was given.
	Unset TriState = iota
	// Enabled explicitly turns a rule on.
	Enabled
	// Disabled explicitly turns a rule off.
	Disabled
)

// RedactionRule is a named pattern rule, either regex-based or
// entropy-based, with its replacement template and audit metadata.
type RedactionRule struct {
	Name                   string   `yaml:"name"`
	Description            string   `yaml:"description,omitempty"`
	Pattern                string   `yaml:"pattern,omitempty"`
	PatternType            string   `yaml:"pattern_type,omitempty"` // "regex" | "entropy"
	ReplaceWith            string   `yaml:"replace_with,omitempty"`
	Multiline              bool     `yaml:"multiline,omitempty"`
	DotMatchesNewLine      bool     `yaml:"dot_matches_new_line,omitempty"`
	OptIn                  bool     `yaml:"opt_in,omitempty"`
	ProgrammaticValidation bool     `yaml:"programmatic_validation,omitempty"`
	Enabled                *bool    `yaml:"enabled,omitempty"`
	Severity               string   `yaml:"severity,omitempty"`
	Tags                   []string `yaml:"tags,omitempty"`

	Version   string    `yaml:"version,omitempty"`
	Author    string    `yaml:"author,omitempty"`
	CreatedAt time.Time `yaml:"created_at,omitempty"`
	UpdatedAt time.Time `yaml:"updated_at,omitempty"`
}

// EnabledState resolves the rule's tri-state enabled flag.
func (r RedactionRule) EnabledState() TriState {
	if r.Enabled == nil {
		return Unset
	}
	if *r.Enabled {
		return Enabled
	}
	return Disabled
}

// EffectivePatternType returns PatternType, defaulting to "regex".
func (r RedactionRule) EffectivePatternType() string {
	if r.PatternType == "" {
		return "regex"
	}
	return r.PatternType
}

// EffectiveReplaceWith returns ReplaceWith, defaulting to "[REDACTED]".
func (r RedactionRule) EffectiveReplaceWith() string {
	if r.ReplaceWith == "" {
		return "[REDACTED]"
	}
	return r.ReplaceWith
}

// EntropyConfig configures the entropy engine's locator.
type EntropyConfig struct {
	Threshold  float64 `yaml:"threshold,omitempty"`
	WindowSize int     `yaml:"window_size,omitempty"`
}

// DefaultEntropyConfig returns the documented defaults (threshold 0.5,
// window 24).
func DefaultEntropyConfig() EntropyConfig {
	return EntropyConfig{Threshold: 0.5, WindowSize: 24}
}

// Normalized fills in zero fields with documented defaults.
func (c EntropyConfig) Normalized() EntropyConfig {
	d := DefaultEntropyConfig()
	if c.Threshold <= 0 {
		c.Threshold = d.Threshold
	}
	if c.WindowSize <= 0 {
		c.WindowSize = d.WindowSize
	}
	return c
}

// EngineConfig bundles per-engine configuration.
type EngineConfig struct {
	Entropy EntropyConfig `yaml:"entropy,omitempty"`
}

// RedactionConfig is the top-level rule configuration: an ordered rule set
// plus engine configuration.
type RedactionConfig struct {
	Rules   []RedactionRule `yaml:"rules"`
	Engines EngineConfig    `yaml:"engines,omitempty"`
}

// ProfileRuleOverlay overrides a subset of fields on a named base rule.
type ProfileRuleOverlay struct {
	Name     string  `yaml:"name"`
	Enabled  *bool   `yaml:"enabled,omitempty"`
	Severity *string `yaml:"severity,omitempty"`
}

// ProfileSamples configures sample retention limits.
type ProfileSamples struct {
	MaxPerRule int `yaml:"max_per_rule,omitempty"`
	MaxTotal   int `yaml:"max_total,omitempty"`
}

// ProfileConfig is a named overlay on a base RedactionConfig.
type ProfileConfig struct {
	ProfileName    string               `yaml:"profile_name"`
	Version        string               `yaml:"version,omitempty"`
	Rules          []ProfileRuleOverlay `yaml:"rules,omitempty"`
	Samples        *ProfileSamples      `yaml:"samples,omitempty"`
	Dedupe         bool                 `yaml:"dedupe,omitempty"`
	PostProcessing *ReplaceTemplate     `yaml:"post_processing,omitempty"`
	Reporting      map[string]any       `yaml:"reporting,omitempty"`
	Signature      string               `yaml:"signature,omitempty"`
	SignatureAlg   string               `yaml:"signature_alg,omitempty"`
}

// ReplaceTemplate configures token post-processing's replacement template.
type ReplaceTemplate struct {
	Template string `yaml:"template,omitempty"`
}

// RedactionMatch is a single match produced by an engine, expressed in
// byte offsets into the ANSI-stripped view.
type RedactionMatch struct {
	RuleName        string
	OriginalString  string
	SanitizedString string
	Start           int
	End             int
	LineNumber      int
	SampleHash      string
	ContextHash     string
	Timestamp       time.Time
	Rule            RedactionRule
	SourceID        string
}

// RedactionSummaryItem is a per-rule aggregate of matches.
type RedactionSummaryItem struct {
	RuleName       string   `json:"rule_name"`
	Occurrences    int      `json:"occurrences"`
	OriginalTexts  []string `json:"original_texts,omitempty"`
	SanitizedTexts []string `json:"sanitized_texts,omitempty"`
}

// EntropyMatch is an intermediate result from the entropy locator, before
// it is turned into a RedactionMatch.
type EntropyMatch struct {
	Start      int
	End        int
	Confidence float64
	Entropy    float64
}

// EngineOptions is the immutable runtime configuration for one scan/run.
type EngineOptions struct {
	PostProcessing bool
	Samples        ProfileSamples
	Dedupe         bool
	RunSeed        []byte
	EngineVersion  string
	ProfileMeta    string
	RunID          string
	InputHash      string
}
