package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cleansh/cleansh/pkg/model"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestComputeRunSeedIsDeterministic(t *testing.T) {
	a := ComputeRunSeed("1.0.0", "run-123", "engine-1")
	b := ComputeRunSeed("1.0.0", "run-123", "engine-1")
	if string(a) != string(b) {
		t.Error("ComputeRunSeed should be deterministic for identical inputs")
	}
}

func TestComputeRunSeedNormalizesCaseAndWhitespace(t *testing.T) {
	a := ComputeRunSeed(" 1.0.0 ", "RUN-123", "Engine-1")
	b := ComputeRunSeed("1.0.0", "run-123", "engine-1")
	if string(a) != string(b) {
		t.Error("ComputeRunSeed should normalize whitespace and case before hashing")
	}
}

func TestComputeRunSeedDefaultsEmptyEngineVersion(t *testing.T) {
	a := ComputeRunSeed("1.0.0", "run-123", "")
	b := ComputeRunSeed("1.0.0", "run-123", "default")
	if string(a) != string(b) {
		t.Error("empty engine_version should normalize to 'default'")
	}
}

func TestSampleScoreDeterministic(t *testing.T) {
	seed := ComputeRunSeed("1.0.0", "run-1", "engine-1")
	a := SampleScore(seed, "stdin", 10, 20)
	b := SampleScore(seed, "stdin", 10, 20)
	if string(a) != string(b) {
		t.Error("SampleScore should be deterministic")
	}
	c := SampleScore(seed, "stdin", 10, 21)
	if string(a) == string(c) {
		t.Error("SampleScore should differ when end offset differs")
	}
}

func TestSelectSamplesTruncatesAndDedupes(t *testing.T) {
	seed := ComputeRunSeed("1.0.0", "run-1", "engine-1")
	matches := []model.RedactionMatch{
		{SourceID: "a", Start: 0, End: 10},
		{SourceID: "a", Start: 0, End: 10}, // exact coordinate duplicate
		{SourceID: "a", Start: 20, End: 30},
		{SourceID: "a", Start: 40, End: 50},
	}
	out := SelectSamples(matches, seed, 2)
	if len(out) != 2 {
		t.Fatalf("len(SelectSamples()) = %d, want 2 (truncated to max_per_rule)", len(out))
	}
}

func TestValidateRejectsUnknownOverlayRule(t *testing.T) {
	cfg := &model.ProfileConfig{
		ProfileName: "gdpr",
		Version:     "1.0",
		Rules:       []model.ProfileRuleOverlay{{Name: "does-not-exist"}},
	}
	base := model.RedactionConfig{Rules: []model.RedactionRule{{Name: "email"}}}
	if err := Validate(cfg, base); err == nil {
		t.Error("expected error for overlay rule not present in default config")
	}
}

func TestValidateRejectsEmptyVersion(t *testing.T) {
	cfg := &model.ProfileConfig{ProfileName: "gdpr"}
	if err := Validate(cfg, model.RedactionConfig{}); err == nil {
		t.Error("expected error for empty version")
	}
}

func TestValidateRejectsSamplesMaxPerRuleExceedingMaxTotal(t *testing.T) {
	cfg := &model.ProfileConfig{
		ProfileName: "gdpr",
		Version:     "1.0",
		Samples:     &model.ProfileSamples{MaxPerRule: 10, MaxTotal: 5},
	}
	if err := Validate(cfg, model.RedactionConfig{}); err == nil {
		t.Error("expected error when max_per_rule exceeds max_total")
	}
}

func TestApplyOverridesEnabledAndSeverityOnly(t *testing.T) {
	base := model.RedactionConfig{
		Rules: []model.RedactionRule{
			{Name: "email", Pattern: `\w+@\w+`, Severity: "low"},
		},
	}
	cfg := &model.ProfileConfig{
		Rules: []model.ProfileRuleOverlay{
			{Name: "email", Enabled: boolPtr(false), Severity: strPtr("high")},
		},
	}
	var warnings []string
	out := Apply(cfg, base, func(format string, args ...any) { warnings = append(warnings, format) })

	if out.Rules[0].Severity != "high" {
		t.Errorf("Severity = %q, want high", out.Rules[0].Severity)
	}
	if out.Rules[0].EnabledState() != model.Disabled {
		t.Error("expected enabled override to disable the rule")
	}
	if out.Rules[0].Pattern != `\w+@\w+` {
		t.Error("Apply must not touch fields other than enabled/severity")
	}
}

func TestApplyWarnsOnUnknownOverlay(t *testing.T) {
	base := model.RedactionConfig{Rules: []model.RedactionRule{{Name: "email"}}}
	cfg := &model.ProfileConfig{Rules: []model.ProfileRuleOverlay{{Name: "ghost-rule"}}}

	var warned bool
	Apply(cfg, base, func(format string, args ...any) { warned = true })
	if !warned {
		t.Error("expected a warning for an overlay rule absent from the base config")
	}
}

func TestLoadProfileLiteralPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	content := "profile_name: custom\nversion: \"1.0\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if cfg.ProfileName != "custom" {
		t.Errorf("ProfileName = %q, want custom", cfg.ProfileName)
	}
}

func TestLoadProfileMissingReturnsError(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Error("expected error for a profile that cannot be found anywhere")
	}
}

func TestVerifySignatureUnsignedAlwaysPasses(t *testing.T) {
	cfg := &model.ProfileConfig{ProfileName: "unsigned"}
	if err := VerifySignature(cfg, []byte("profile_name: unsigned\n"), []byte("key")); err != nil {
		t.Errorf("VerifySignature() on unsigned profile = %v, want nil", err)
	}
}

func TestVerifySignatureRejectsUnsupportedAlgorithm(t *testing.T) {
	cfg := &model.ProfileConfig{ProfileName: "signed", Signature: "deadbeef", SignatureAlg: "md5"}
	if err := VerifySignature(cfg, []byte("profile_name: signed\nsignature: deadbeef\n"), []byte("key")); err == nil {
		t.Error("expected error for unsupported signature algorithm")
	}
}
