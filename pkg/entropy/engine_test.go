package entropy

import (
	"testing"

	"github.com/cleansh/cleansh/pkg/model"
)

func TestScanShortInputReturnsEmpty(t *testing.T) {
	e := New(model.EntropyConfig{})
	if got := e.Scan([]byte("short")); len(got) != 0 {
		t.Errorf("Scan(short input) = %v, want empty", got)
	}
}

func TestScanVeryHighThresholdSuppressesEverything(t *testing.T) {
	e := New(model.EntropyConfig{Threshold: 1000, WindowSize: 24})
	input := []byte("AUTH_TOKEN=7f8a9b2c3d4e5f6a7b8c9d0e1f2a3b4c amid ordinary log text")
	if got := e.Scan(input); len(got) != 0 {
		t.Errorf("Scan() with unreachable threshold = %v, want empty (confidence is clamped to 10)", got)
	}
}

func TestScanDefaultThresholdFindsKeywordAdjacentSecret(t *testing.T) {
	e := New(model.EntropyConfig{Threshold: 0.5, WindowSize: 24})
	input := []byte("AUTH_TOKEN=7f8a9b2c3d4e5f6a7b8c9d0e1f2a3b4c amid ordinary log text")
	got := e.Scan(input)
	if len(got) == 0 {
		t.Fatal("expected at least one match near the AUTH_TOKEN= keyword")
	}
}

func TestHeatScoresMatchesInputLength(t *testing.T) {
	e := New(model.EntropyConfig{})
	input := []byte("hello world")
	scores := e.HeatScores(input)
	if len(scores) != len(input) {
		t.Errorf("len(HeatScores) = %d, want %d", len(scores), len(input))
	}
}

func TestConsolidateMergesOverlapping(t *testing.T) {
	in := []model.EntropyMatch{
		{Start: 10, End: 20, Confidence: 1},
		{Start: 15, End: 25, Confidence: 3},
		{Start: 100, End: 110, Confidence: 2},
	}
	out := consolidate(in)
	if len(out) != 2 {
		t.Fatalf("consolidate() returned %d intervals, want 2", len(out))
	}
	if out[0].Start != 10 || out[0].End != 25 || out[0].Confidence != 3 {
		t.Errorf("merged interval = %+v, want {10 25 3 ...}", out[0])
	}
	if out[1].Start != 100 || out[1].End != 110 {
		t.Errorf("second interval = %+v, want {100 110 ...}", out[1])
	}
}
