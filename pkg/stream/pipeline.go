// Package stream implements the streaming ingestion pipeline (C14):
// whole-buffer and line-buffered modes over a cleansh.Engine, plus a
// worker-pool directory scanner adapted from the teacher's
// Scanner.ScanDirectory.
package stream

import (
	"bufio"
	"io"
	"strings"

	"github.com/cleansh/cleansh/pkg/cleansh"
	"github.com/cleansh/cleansh/pkg/model"
)

// Pipeline wires a cleansh.Engine to an input/output stream.
type Pipeline struct {
	Engine *cleansh.Engine
}

// New constructs a Pipeline over engine.
func New(engine *cleansh.Engine) *Pipeline {
	return &Pipeline{Engine: engine}
}

// RunBuffer reads r fully, sanitizes it in one pass, and returns the
// sanitized bytes plus the per-rule summary.
func (p *Pipeline) RunBuffer(r io.Reader) ([]byte, []model.RedactionSummaryItem, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	sanitized, summary := p.Engine.Sanitize(data)
	return sanitized, summary, nil
}

// RunLines reads r line by line (trimming a trailing \r), sanitizing and
// writing each line to w immediately as it arrives, and returns the
// summary accumulated across every line once r is exhausted.
func (p *Pipeline) RunLines(r io.Reader, w io.Writer) ([]model.RedactionSummaryItem, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 128*1024)
	scanner.Buffer(buf, 10*1024*1024)

	merged := make(map[string]*model.RedactionSummaryItem)
	var order []string

	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")

		sanitized, summary := p.Engine.Sanitize([]byte(line))
		if _, err := w.Write(sanitized); err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte("\n")); err != nil {
			return nil, err
		}

		for _, item := range summary {
			existing, ok := merged[item.RuleName]
			if !ok {
				clone := item
				merged[item.RuleName] = &clone
				order = append(order, item.RuleName)
				continue
			}
			existing.Occurrences += item.Occurrences
			existing.OriginalTexts = append(existing.OriginalTexts, item.OriginalTexts...)
			existing.SanitizedTexts = append(existing.SanitizedTexts, item.SanitizedTexts...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	out := make([]model.RedactionSummaryItem, 0, len(order))
	for _, name := range order {
		out = append(out, *merged[name])
	}
	return out, nil
}
