package entropy

import "github.com/cleansh/cleansh/pkg/model"

// leadingTrimSet are bytes stripped from the front of a candidate span
// after the semantic anchor step.
var leadingTrimSet = map[byte]bool{
	' ': true, '\t': true, '\n': true, '\r': true,
	'"': true, '\'': true, '[': true, '{': true, '<': true, '(': true,
	'-': true, '_': true,
}

// stitchStopSet are bytes that terminate the look-ahead stitcher: anything
// NOT in this set (and not whitespace) is pulled into the span, recovering
// secrets fractured by the window boundary.
var stitchStopSet = map[byte]bool{
	'"': true, '\'': true, ',': true, ';': true, ']': true, '}': true, ')': true, '>': true,
}

// tailTrimSet are bytes stripped from the back of a candidate span once
// its length exceeds the minimum tail-trim floor.
var tailTrimSet = map[byte]bool{
	' ': true, '\t': true, '\n': true, '\r': true,
	'.': true, ',': true, '!': true, '?': true,
	']': true, '}': true, '>': true, ')': true, '"': true, '\'': true, ';': true,
}

// tailTrimMinLen is the length floor below which tail-trimming stops, even
// if the last byte is in tailTrimSet. Independent of discardMinLen (see
// DESIGN.md Open Question ii).
const tailTrimMinLen = 2

// discardMinLen is the final length floor: intervals shorter than this
// after extraction are dropped entirely.
const discardMinLen = 6

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// extract runs the surgical extraction pass over each consolidated
// interval, in the fixed order: semantic anchor, leading trim, look-ahead
// stitch, tail trim. Reordering these steps changes results.
func (e *Engine) extract(b []byte, intervals []model.EntropyMatch) []model.EntropyMatch {
	out := make([]model.EntropyMatch, 0, len(intervals))

	for _, iv := range intervals {
		s, end := iv.Start, iv.End

		// (a) Semantic anchor: find the last ':' or '=' in [s, end); if
		// present and not the very last byte, start just after it.
		anchor := -1
		for k := s; k < end && k < len(b); k++ {
			if b[k] == ':' || b[k] == '=' {
				anchor = k
			}
		}
		if anchor >= 0 && anchor+1 < end {
			s = anchor + 1
		}

		// (b) Leading trim.
		for s < end && s < len(b) && leadingTrimSet[b[s]] {
			s++
		}

		// (c) Look-ahead stitcher.
		for end < len(b) && !isSpace(b[end]) && !stitchStopSet[b[end]] {
			end++
		}

		// (d) Tail trim.
		for end-s > tailTrimMinLen && end-1 >= 0 && end-1 < len(b) && tailTrimSet[b[end-1]] {
			end--
		}

		if end-s < discardMinLen {
			continue
		}

		out = append(out, model.EntropyMatch{
			Start:      s,
			End:        end,
			Confidence: iv.Confidence,
			Entropy:    iv.Entropy,
		})
	}

	return out
}
