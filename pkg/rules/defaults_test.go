package rules

import (
	"testing"

	"github.com/cleansh/cleansh/pkg/model"
)

func TestLoadDefaultRulesParsesEmbeddedSet(t *testing.T) {
	cfg, err := LoadDefaultRules()
	if err != nil {
		t.Fatalf("LoadDefaultRules() error = %v", err)
	}
	if len(cfg.Rules) == 0 {
		t.Fatal("LoadDefaultRules() returned no rules")
	}
	if _, err := Compile(cfg.Rules); err != nil {
		t.Fatalf("embedded default rules failed to compile: %v", err)
	}

	var sawEmail bool
	for _, r := range cfg.Rules {
		if r.Name == "email" {
			sawEmail = true
		}
	}
	if !sawEmail {
		t.Error("expected an \"email\" rule in the embedded default set")
	}
}

func TestMergeRulesUserOverridesDefault(t *testing.T) {
	def := model.RedactionConfig{
		Rules: []model.RedactionRule{
			{Name: "email", Pattern: "a", ReplaceWith: "[EMAIL]"},
			{Name: "ssn", Pattern: "b", ReplaceWith: "[SSN]"},
		},
	}
	user := model.RedactionConfig{
		Rules: []model.RedactionRule{
			{Name: "email", Pattern: "custom", ReplaceWith: "[CUSTOM_EMAIL]"},
			{Name: "new_rule", Pattern: "c", ReplaceWith: "[NEW]"},
		},
	}

	merged := MergeRules(def, user)
	if len(merged.Rules) != 3 {
		t.Fatalf("len(merged.Rules) = %d, want 3", len(merged.Rules))
	}

	byName := make(map[string]model.RedactionRule, len(merged.Rules))
	for _, r := range merged.Rules {
		byName[r.Name] = r
	}
	if byName["email"].Pattern != "custom" {
		t.Errorf("email rule not overridden by user config: %+v", byName["email"])
	}
	if byName["ssn"].Pattern != "b" {
		t.Errorf("ssn rule should be untouched: %+v", byName["ssn"])
	}
	if _, ok := byName["new_rule"]; !ok {
		t.Error("new_rule from user config missing from merge")
	}
}

func TestMergeRulesOverridesEntropySettingsIndependently(t *testing.T) {
	def := model.RedactionConfig{
		Engines: model.EngineConfig{Entropy: model.EntropyConfig{Threshold: 0.5, WindowSize: 24}},
	}
	user := model.RedactionConfig{
		Engines: model.EngineConfig{Entropy: model.EntropyConfig{Threshold: 0.8}},
	}

	merged := MergeRules(def, user)
	if merged.Engines.Entropy.Threshold != 0.8 {
		t.Errorf("Threshold = %v, want 0.8", merged.Engines.Entropy.Threshold)
	}
	if merged.Engines.Entropy.WindowSize != 24 {
		t.Errorf("WindowSize = %v, want 24 (untouched)", merged.Engines.Entropy.WindowSize)
	}
}

func TestFilterActiveRulesDropsOptInUnlessEnabled(t *testing.T) {
	rs := []model.RedactionRule{
		{Name: "email"},
		{Name: "nino", OptIn: true},
		{Name: "aws_secret_key", OptIn: true},
	}

	active := FilterActiveRules(rs, []string{"nino"}, nil)
	var names []string
	for _, r := range active {
		names = append(names, r.Name)
	}
	if len(names) != 2 {
		t.Fatalf("active = %v, want 2 rules (email, nino)", names)
	}
}

func TestFilterActiveRulesHonorsDisable(t *testing.T) {
	rs := []model.RedactionRule{
		{Name: "email"},
		{Name: "ssn"},
	}
	active := FilterActiveRules(rs, nil, []string{"ssn"})
	if len(active) != 1 || active[0].Name != "email" {
		t.Errorf("active = %+v, want only email", active)
	}
}
