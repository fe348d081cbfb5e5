// Package profile implements profile loading, signature verification,
// application to a base RedactionConfig, and deterministic run-seed and
// sample-scoring helpers (C13), grounded directly on
// cleansh-core/src/profiles.rs for exact semantics.
package profile

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cleansh/cleansh/pkg/model"
)

// seedGenerationSalt is a fixed, non-secret constant used as the HMAC key
// when deriving run seeds. It is data-shaped, not user-derived, resolving
// the class of key-from-user-input issues spec.md §4.13/§9 calls out.
var seedGenerationSalt = []byte("cleansh-run-seed-generation-v1-salt")

// profileKeyEnvVar names the environment variable holding the hex-encoded
// HMAC key used to verify a signed profile.
const profileKeyEnvVar = "CLEANSH_PROFILE_KEY"

// CandidatePaths returns the canonical search locations for a profile
// named name, in priority order.
func CandidatePaths(name string) []string {
	var dirs []string
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".cleansh", "profiles"))
	}
	if cfg, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(cfg, "cleansh", "profiles"))
	}
	dirs = append(dirs, "/etc/cleansh/profiles", "./config", "../config")

	paths := make([]string, 0, len(dirs))
	for _, d := range dirs {
		paths = append(paths, filepath.Join(d, name+".yaml"))
	}
	return paths
}

// LoadProfile resolves nameOrPath as a literal file path first, then as a
// name searched across CandidatePaths, parses the YAML, and verifies its
// signature against CLEANSH_PROFILE_KEY when set.
func LoadProfile(nameOrPath string) (*model.ProfileConfig, error) {
	path := nameOrPath
	if info, err := os.Stat(nameOrPath); err != nil || info.IsDir() {
		found := ""
		for _, candidate := range CandidatePaths(nameOrPath) {
			if _, err := os.Stat(candidate); err == nil {
				found = candidate
				break
			}
		}
		if found == "" {
			return nil, fmt.Errorf("profile %q not found: not a valid file path, and not present in any canonical profile directory", nameOrPath)
		}
		path = found
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile file %s: %w", path, err)
	}

	var cfg model.ProfileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parsing profile YAML %s: %w", path, err)
	}

	if keyHex, ok := os.LookupEnv(profileKeyEnvVar); ok {
		key, err := hex.DecodeString(keyHex)
		if err != nil {
			return nil, fmt.Errorf("decoding %s from hex: %w", profileKeyEnvVar, err)
		}
		if err := VerifySignature(&cfg, raw, key); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

// VerifySignature recomputes the HMAC-SHA256 signature over raw with
// signature/signature_alg removed, and compares it against cfg.Signature.
// An unsigned profile always verifies.
func VerifySignature(cfg *model.ProfileConfig, raw []byte, key []byte) error {
	if cfg.Signature == "" {
		return nil
	}
	if cfg.SignatureAlg != "hmac-sha256" {
		return fmt.Errorf("profile %q: unsupported signature algorithm %q (only hmac-sha256 is supported)", cfg.ProfileName, cfg.SignatureAlg)
	}

	canonical, err := rawForSigning(raw)
	if err != nil {
		return fmt.Errorf("profile %q: %w", cfg.ProfileName, err)
	}

	mac := hmac.New(sha256.New, key)
	mac.Write(canonical)
	computed := hex.EncodeToString(mac.Sum(nil))

	if !strings.EqualFold(computed, cfg.Signature) {
		return fmt.Errorf("profile signature verification failed for profile %q: the profile may have been tampered with", cfg.ProfileName)
	}
	return nil
}

// rawForSigning re-parses raw as a generic YAML mapping and strips the
// signature/signature_alg keys before re-serializing, matching the byte
// shape that was originally signed.
func rawForSigning(raw []byte) ([]byte, error) {
	var m yaml.Node
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parsing profile YAML for signature verification: %w", err)
	}
	stripSignatureFields(&m)

	var buf strings.Builder
	enc := yaml.NewEncoder(&buf)
	if err := enc.Encode(&m); err != nil {
		return nil, fmt.Errorf("re-serializing profile for signature verification: %w", err)
	}
	enc.Close()
	return []byte(buf.String()), nil
}

func stripSignatureFields(node *yaml.Node) {
	if node.Kind == yaml.DocumentNode {
		for _, c := range node.Content {
			stripSignatureFields(c)
		}
		return
	}
	if node.Kind != yaml.MappingNode {
		return
	}
	var content []*yaml.Node
	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if key == "signature" || key == "signature_alg" {
			continue
		}
		content = append(content, node.Content[i], node.Content[i+1])
	}
	node.Content = content
}

// Validate checks a profile against spec.md §4 invariants: every overlay
// rule name must exist in defaultConfig; samples.max_per_rule > 0; and
// samples.max_per_rule <= samples.max_total when max_total > 0.
func Validate(cfg *model.ProfileConfig, defaultConfig model.RedactionConfig) error {
	if strings.TrimSpace(cfg.Version) == "" {
		return fmt.Errorf("profile %q: version field cannot be empty", cfg.ProfileName)
	}

	known := make(map[string]bool, len(defaultConfig.Rules))
	for _, r := range defaultConfig.Rules {
		known[r.Name] = true
	}
	for _, overlay := range cfg.Rules {
		if !known[overlay.Name] {
			return fmt.Errorf("profile %q: rule %q not found in default configuration", cfg.ProfileName, overlay.Name)
		}
	}

	if cfg.Samples != nil {
		if cfg.Samples.MaxPerRule <= 0 {
			return fmt.Errorf("profile %q: samples.max_per_rule must be greater than 0", cfg.ProfileName)
		}
		if cfg.Samples.MaxTotal > 0 && cfg.Samples.MaxPerRule > cfg.Samples.MaxTotal {
			return fmt.Errorf("profile %q: samples.max_per_rule cannot exceed samples.max_total", cfg.ProfileName)
		}
	}

	return nil
}

// Apply updates only enabled and severity on matching rule names in base.
// Unknown overlay names are reported via warn, so callers can log them;
// base is mutated in place and also returned for chaining.
func Apply(cfg *model.ProfileConfig, base model.RedactionConfig, warn func(format string, args ...any)) model.RedactionConfig {
	byName := make(map[string]*model.RedactionRule, len(base.Rules))
	for i := range base.Rules {
		byName[base.Rules[i].Name] = &base.Rules[i]
	}

	for _, overlay := range cfg.Rules {
		rule, ok := byName[overlay.Name]
		if !ok {
			if warn != nil {
				warn("profile rule %q not found in default configuration; ignored", overlay.Name)
			}
			continue
		}
		if overlay.Enabled != nil {
			rule.Enabled = overlay.Enabled
		}
		if overlay.Severity != nil {
			rule.Severity = *overlay.Severity
		}
	}

	return base
}

// normalize trims and lowercases s, substituting def when the trimmed
// result is empty.
func normalize(s, def string) string {
	t := strings.TrimSpace(s)
	if t == "" {
		return def
	}
	return strings.ToLower(t)
}

// ComputeRunSeed derives a deterministic per-run HMAC-SHA256 seed from
// normalized (version, runID, engineVersion), keyed by the fixed
// seedGenerationSalt rather than any of the caller-supplied inputs.
func ComputeRunSeed(profileVersion, runID, engineVersion string) []byte {
	nv := normalize(profileVersion, "")
	nr := normalize(runID, "")
	ne := normalize(engineVersion, "default")

	mac := hmac.New(sha256.New, seedGenerationSalt)
	mac.Write([]byte(nv))
	mac.Write([]byte(nr))
	mac.Write([]byte(ne))
	return mac.Sum(nil)
}

// SampleScore computes HMAC-SHA256(seed, source_id || start || end), used
// to rank matches for sample selection.
func SampleScore(seed []byte, sourceID string, start, end int) []byte {
	mac := hmac.New(sha256.New, seed)
	mac.Write([]byte(sourceID))
	fmt.Fprintf(mac, "%d", start)
	fmt.Fprintf(mac, "%d", end)
	return mac.Sum(nil)
}

// SelectSamples ranks matches by descending SampleScore, dedupes by
// SampleHash (or, absent one, by (source_id, start, end)), and truncates
// to maxPerRule.
func SelectSamples(matches []model.RedactionMatch, seed []byte, maxPerRule int) []model.RedactionMatch {
	type scored struct {
		score string
		m     model.RedactionMatch
	}

	all := make([]scored, len(matches))
	for i, m := range matches {
		all[i] = scored{score: hex.EncodeToString(SampleScore(seed, m.SourceID, m.Start, m.End)), m: m}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].score > all[j].score })

	type coord struct {
		source     string
		start, end int
	}
	seenHashes := make(map[string]bool)
	seenCoords := make(map[coord]bool)

	out := make([]model.RedactionMatch, 0, maxPerRule)
	for _, s := range all {
		if len(out) >= maxPerRule {
			break
		}
		var dup bool
		if s.m.SampleHash != "" {
			dup = seenHashes[s.m.SampleHash]
			seenHashes[s.m.SampleHash] = true
		} else {
			c := coord{s.m.SourceID, s.m.Start, s.m.End}
			dup = seenCoords[c]
			seenCoords[c] = true
		}
		if !dup {
			out = append(out, s.m)
		}
	}
	return out
}
