// Package sanitize implements the sanitizer applier (C8): merging matches
// from every engine into a single ordered pass over the original bytes,
// dropping overlaps, optionally deduping by context, and optionally
// rewriting replacement text through a sample-hash token template.
package sanitize

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/cleansh/cleansh/pkg/model"
)

// contextHashWindow is the number of bytes of stripped-view context taken
// on each side of a match when computing its dedupe context_hash.
const contextHashWindow = 32

// Mapper translates a byte offset in the ANSI-stripped view back to the
// corresponding offset in the original byte stream. pkg/ansi.Mapper
// satisfies this interface.
type Mapper interface {
	Map(i int) int
}

// identityMapper is used when no ANSI stripping occurred: offsets in the
// stripped view are already original offsets.
type identityMapper struct{}

func (identityMapper) Map(i int) int { return i }

// defaultPostProcessingTemplate is used when no profile supplies one.
const defaultPostProcessingTemplate = "[REDACTED:{rule}:{shorthash}]"

// Applier merges and applies matches against original input.
type Applier struct {
	opts     model.EngineOptions
	template string
}

// New constructs an Applier configured by opts.
func New(opts model.EngineOptions) *Applier {
	return &Applier{opts: opts, template: defaultPostProcessingTemplate}
}

// SetTemplate overrides the post-processing replacement template (a
// profile's post_processing.template), which must use {rule} and
// {shorthash} placeholders.
func (a *Applier) SetTemplate(tmpl string) {
	if tmpl == "" {
		tmpl = defaultPostProcessingTemplate
	}
	a.template = tmpl
}

// Apply merges matches (already expressed in ANSI-stripped byte offsets),
// maps them back into original-byte space via mapper, resolves overlaps
// in start-ascending order, and returns the sanitized output plus a
// per-rule summary. If mapper is nil, offsets are treated as already
// being in original-byte space.
func (a *Applier) Apply(original []byte, stripped []byte, mapper Mapper, matches []model.RedactionMatch) ([]byte, []model.RedactionSummaryItem) {
	if mapper == nil {
		mapper = identityMapper{}
	}

	ordered := make([]model.RedactionMatch, len(matches))
	copy(ordered, matches)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })

	seenContext := make(map[string]bool)
	summaries := make(map[string]*model.RedactionSummaryItem)
	var order []string

	var out strings.Builder
	lastEnd := 0

	for _, m := range ordered {
		if a.opts.Dedupe {
			ch := contextHash(stripped, m.Start, m.End)
			if seenContext[ch] {
				continue
			}
			seenContext[ch] = true
			m.ContextHash = ch
		}

		origStart := mapper.Map(m.Start)
		origEnd := mapper.Map(m.End)

		if origEnd <= lastEnd {
			continue // overlaps a previously applied match; drop
		}

		appendFrom := origStart
		if appendFrom < lastEnd {
			appendFrom = lastEnd
		}
		out.Write(original[lastEnd:appendFrom])

		sanitized := m.SanitizedString
		if a.opts.PostProcessing {
			m.SampleHash = sampleHash(m.OriginalString)
			sanitized = renderPostProcessingTemplate(a.template, m.RuleName, m.SampleHash)
		}
		out.WriteString(sanitized)

		lastEnd = origEnd

		item, ok := summaries[m.RuleName]
		if !ok {
			item = &model.RedactionSummaryItem{RuleName: m.RuleName}
			summaries[m.RuleName] = item
			order = append(order, m.RuleName)
		}
		item.Occurrences++
		item.OriginalTexts = append(item.OriginalTexts, m.OriginalString)
		item.SanitizedTexts = append(item.SanitizedTexts, sanitized)
	}

	out.Write(original[lastEnd:])

	result := make([]model.RedactionSummaryItem, 0, len(order))
	for _, name := range order {
		result = append(result, *summaries[name])
	}

	return []byte(out.String()), result
}

// contextHash computes SHA-256 over the stripped-view window surrounding
// [start, end), per spec.md §4.8.
func contextHash(stripped []byte, start, end int) string {
	lo := start - contextHashWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + contextHashWindow
	if hi > len(stripped) {
		hi = len(stripped)
	}
	sum := sha256.Sum256(stripped[lo:hi])
	return hex.EncodeToString(sum[:])
}

// sampleHash computes SHA-256(original_string), hex-encoded.
func sampleHash(original string) string {
	sum := sha256.Sum256([]byte(original))
	return hex.EncodeToString(sum[:])
}

// renderPostProcessingTemplate substitutes {rule} and {shorthash} (the
// first 8 hex characters of sampleHash) into template.
func renderPostProcessingTemplate(template, rule, sampleHash string) string {
	shorthash := sampleHash
	if len(shorthash) > 8 {
		shorthash = shorthash[:8]
	}
	out := strings.ReplaceAll(template, "{rule}", rule)
	out = strings.ReplaceAll(out, "{shorthash}", shorthash)
	return out
}
