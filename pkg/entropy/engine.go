package entropy

import (
	"github.com/cleansh/cleansh/pkg/context"
	"github.com/cleansh/cleansh/pkg/model"
)

// Engine implements the sliding-window entropy locator, interval
// consolidation, and surgical ("heat-seeker") boundary refinement
// described in the entropy engine component of the redaction pipeline.
type Engine struct {
	cfg     model.EntropyConfig
	scanner *context.Scanner
}

// New builds an Engine from the given configuration, filling in documented
// defaults for zero-valued fields.
func New(cfg model.EntropyConfig) *Engine {
	return &Engine{cfg: cfg.Normalized(), scanner: context.DefaultScanner}
}

const (
	baselineChunkSize  = 32
	baselineMinChunk   = 8
	baselineMaxSamples = 128
	keywordWindow      = 48

	weightZScore  = 1.0
	weightKeyword = 2.0
)

// Scan runs the three-pass entropy scan over b: locate candidate windows
// by z-score anomaly plus keyword context, consolidate overlapping
// intervals, then surgically refine each interval's boundaries.
func (e *Engine) Scan(b []byte) []model.EntropyMatch {
	locations := e.locate(b)
	consolidated := consolidate(locations)
	return e.extract(b, consolidated)
}

// locate performs the sliding-window pass: at each candidate start i, build
// a leave-one-out baseline from the rest of the input, compute a z-score
// for the window's entropy against that baseline, and combine it with
// keyword-context evidence into a confidence score.
func (e *Engine) locate(b []byte) []model.EntropyMatch {
	w := e.cfg.WindowSize
	if len(b) < w {
		return nil
	}

	var matches []model.EntropyMatch

	i := 0
	for i <= len(b)-w {
		window := b[i : i+w]
		windowEntropy := Entropy(window)

		stats := e.baselineStats(b, i, i+w)

		z := 0.0
		if stats.StdDev > 0 {
			z = (windowEntropy - stats.Mean) / stats.StdDev
		} else if windowEntropy > stats.Mean {
			z = 100.0
		}

		hasKeyword := e.scanner.ScanPrecedingContext(b, i, keywordWindow)

		confidence := weightZScore*(z/5.0) + weightKeyword*boolToFloat(hasKeyword)
		confidence = clamp(confidence, 0, 10)

		if confidence >= e.cfg.Threshold {
			matches = append(matches, model.EntropyMatch{
				Start:      i,
				End:        i + w,
				Confidence: confidence,
				Entropy:    windowEntropy,
			})
			i += w / 2
			if w/2 == 0 {
				i++
			}
		} else {
			i++
		}
	}

	return matches
}

// baselineStats builds the leave-one-out baseline for the candidate window
// [candStart, candEnd): chunk the entire input into fixed-size chunks,
// discard any chunk overlapping the candidate window, and compute entropy
// stats over what remains (capped at baselineMaxSamples samples).
func (e *Engine) baselineStats(b []byte, candStart, candEnd int) Stats {
	chunkSize := baselineChunkSize
	if chunkSize < baselineMinChunk {
		chunkSize = baselineMinChunk
	}

	samples := make([]float64, 0, baselineMaxSamples)
	for start := 0; start < len(b) && len(samples) < baselineMaxSamples; start += chunkSize {
		end := start + chunkSize
		if end > len(b) {
			end = len(b)
		}
		if start < candEnd && end > candStart {
			continue // overlaps the candidate window: excluded (leave-one-out)
		}
		samples = append(samples, Entropy(b[start:end]))
	}

	return ComputeStats(samples)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// consolidate sorts matches by start and merges adjacent/overlapping
// intervals, extending end to the max and keeping the max confidence.
func consolidate(matches []model.EntropyMatch) []model.EntropyMatch {
	if len(matches) == 0 {
		return nil
	}

	sorted := make([]model.EntropyMatch, len(matches))
	copy(sorted, matches)
	insertionSortByStart(sorted)

	out := []model.EntropyMatch{sorted[0]}
	for _, m := range sorted[1:] {
		last := &out[len(out)-1]
		if m.Start <= last.End {
			if m.End > last.End {
				last.End = m.End
			}
			if m.Confidence > last.Confidence {
				last.Confidence = m.Confidence
			}
			if m.Entropy > last.Entropy {
				last.Entropy = m.Entropy
			}
		} else {
			out = append(out, m)
		}
	}
	return out
}

func insertionSortByStart(m []model.EntropyMatch) {
	for i := 1; i < len(m); i++ {
		v := m[i]
		j := i - 1
		for j >= 0 && m[j].Start > v.Start {
			m[j+1] = m[j]
			j--
		}
		m[j+1] = v
	}
}

// Analyze is like Scan but intended for summary-only callers; it returns
// the same matches (callers that only need counts should use len()).
func (e *Engine) Analyze(b []byte) []model.EntropyMatch {
	return e.Scan(b)
}

// HeatScores returns, for each byte index in b, the Shannon entropy of a
// 9-byte window centered on that index (bytes[i-4:i+5], clamped to
// bounds).
func (e *Engine) HeatScores(b []byte) []float64 {
	scores := make([]float64, len(b))
	for i := range b {
		lo := i - 4
		if lo < 0 {
			lo = 0
		}
		hi := i + 5
		if hi > len(b) {
			hi = len(b)
		}
		scores[i] = Entropy(b[lo:hi])
	}
	return scores
}
