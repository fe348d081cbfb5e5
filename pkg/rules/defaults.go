package rules

import (
	_ "embed"
	"fmt"

	"github.com/cleansh/cleansh/pkg/model"
	"gopkg.in/yaml.v3"
)

// FilterActiveRules keeps every rule not named in disable, dropping
// opt-in rules unless they are named in enable. Adapted from the
// teacher's set_active_rules.
func FilterActiveRules(ruleSet []model.RedactionRule, enable, disable []string) []model.RedactionRule {
	enableSet := make(map[string]bool, len(enable))
	for _, name := range enable {
		enableSet[name] = true
	}
	disableSet := make(map[string]bool, len(disable))
	for _, name := range disable {
		disableSet[name] = true
	}

	active := make([]model.RedactionRule, 0, len(ruleSet))
	for _, r := range ruleSet {
		if disableSet[r.Name] {
			continue
		}
		if r.OptIn && !enableSet[r.Name] {
			continue
		}
		active = append(active, r)
	}
	return active
}

//go:embed defaults/default_rules.yaml
var defaultRulesYAML []byte

// LoadDefaultRules parses the embedded default rule set. Adapted from the
// teacher's embedded rules/*.yaml loader, generalized to a single
// RedactionConfig document under the new schema.
func LoadDefaultRules() (model.RedactionConfig, error) {
	var cfg model.RedactionConfig
	if err := yaml.Unmarshal(defaultRulesYAML, &cfg); err != nil {
		return model.RedactionConfig{}, fmt.Errorf("parsing embedded default rules: %w", err)
	}
	return cfg, nil
}

// MergeRules overlays user rules and engine settings onto a default
// config. A user rule with the same name as a default rule replaces it
// entirely; any rule present only in user is added. Entropy threshold and
// window size are overridden independently when non-zero.
func MergeRules(defaultCfg, userCfg model.RedactionConfig) model.RedactionConfig {
	byName := make(map[string]model.RedactionRule, len(defaultCfg.Rules))
	order := make([]string, 0, len(defaultCfg.Rules))
	for _, r := range defaultCfg.Rules {
		byName[r.Name] = r
		order = append(order, r.Name)
	}

	for _, r := range userCfg.Rules {
		if _, exists := byName[r.Name]; !exists {
			order = append(order, r.Name)
		}
		byName[r.Name] = r
	}

	merged := make([]model.RedactionRule, 0, len(order))
	for _, name := range order {
		merged = append(merged, byName[name])
	}

	engines := defaultCfg.Engines
	if userCfg.Engines.Entropy.Threshold != 0 {
		engines.Entropy.Threshold = userCfg.Engines.Entropy.Threshold
	}
	if userCfg.Engines.Entropy.WindowSize != 0 {
		engines.Entropy.WindowSize = userCfg.Engines.Entropy.WindowSize
	}

	return model.RedactionConfig{Rules: merged, Engines: engines}
}
