package rules

import (
	"strconv"
	"strings"
	"time"

	"github.com/cleansh/cleansh/pkg/model"
	"github.com/cleansh/cleansh/pkg/validators"
)

// PatternEngine matches a shared, immutable CompiledRules set against
// stripped input, dispatching programmatic validators and building
// replacement text from capture groups.
type PatternEngine struct {
	compiled *CompiledRules
	remedCh  chan<- model.RedactionMatch
	sourceID string
}

// New constructs a PatternEngine bound to the given compiled rule set.
func New(compiled *CompiledRules) *PatternEngine {
	return &PatternEngine{compiled: compiled}
}

// SetRemediationChannel attaches an outbound channel that every match is
// cloned to via non-blocking send. A full channel silently drops the
// match: the orchestrator is advisory, not authoritative.
func (e *PatternEngine) SetRemediationChannel(ch chan<- model.RedactionMatch) {
	e.remedCh = ch
}

// SetSourceID tags every match produced by this engine with sourceID.
func (e *PatternEngine) SetSourceID(sourceID string) {
	e.sourceID = sourceID
}

// CompiledRules returns the shared compiled rule set this engine matches
// against.
func (e *PatternEngine) CompiledRules() *CompiledRules {
	return e.compiled
}

// validatorFor dispatches to the appropriate programmatic validator based
// on rule name, matching spec.md §4.6 ("dispatch on rule name").
func validatorFor(ruleName string) func(string) bool {
	lower := strings.ToLower(ruleName)
	switch {
	case strings.Contains(lower, "ssn"):
		return validators.ValidSSN
	case strings.Contains(lower, "nino"):
		return validators.ValidUKNINO
	case strings.Contains(lower, "credit_card"), strings.Contains(lower, "creditcard"), strings.Contains(lower, "cc"):
		return validators.ValidCreditCard
	case strings.Contains(lower, "luhn"):
		return validators.ValidLuhn
	default:
		return nil
	}
}

// FindMatches matches every enabled compiled rule against the stripped
// input, returning matches grouped by rule name.
func (e *PatternEngine) FindMatches(stripped []byte) map[string][]model.RedactionMatch {
	out := make(map[string][]model.RedactionMatch)

	for _, cr := range e.compiled.Rules {
		if cr.PatternType != "regex" || cr.Matcher == nil {
			continue
		}
		if cr.Source.EnabledState() == model.Disabled {
			continue
		}

		idxMatches := cr.Matcher.FindAllSubmatchIndex(stripped, -1)
		for _, idx := range idxMatches {
			capture0 := string(stripped[idx[0]:idx[1]])

			if cr.ProgrammaticValidation {
				if v := validatorFor(cr.Name); v != nil && !v(capture0) {
					continue
				}
			}

			replacement := buildReplacement(cr.ReplaceWith, stripped, idx)

			m := model.RedactionMatch{
				RuleName:        cr.Name,
				OriginalString:  capture0,
				SanitizedString: replacement,
				Start:           idx[0],
				End:             idx[1],
				Timestamp:       time.Now(),
				Rule:            cr.Source,
				SourceID:        e.sourceID,
			}

			out[cr.Name] = append(out[cr.Name], m)
			e.tee(m)
		}
	}

	return out
}

// buildReplacement substitutes $1..$N in template with the corresponding
// capture groups from idx (a FindAllSubmatchIndex-style index slice).
func buildReplacement(template string, src []byte, idx []int) string {
	var b strings.Builder
	runes := []rune(template)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '$' {
			b.WriteRune(runes[i])
			continue
		}
		j := i + 1
		for j < len(runes) && runes[j] >= '0' && runes[j] <= '9' {
			j++
		}
		if j == i+1 {
			b.WriteRune(runes[i])
			continue
		}
		n, _ := strconv.Atoi(string(runes[i+1 : j]))
		if 2*n+1 < len(idx) && idx[2*n] >= 0 && idx[2*n+1] >= 0 {
			b.Write(src[idx[2*n]:idx[2*n+1]])
		}
		i = j - 1
	}
	return b.String()
}

// tee clones m to the remediation channel via non-blocking send, if one is
// attached.
func (e *PatternEngine) tee(m model.RedactionMatch) {
	if e.remedCh == nil {
		return
	}
	select {
	case e.remedCh <- m:
	default:
	}
}
