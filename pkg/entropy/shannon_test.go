package entropy

import "testing"

func TestEntropyEmpty(t *testing.T) {
	if got := Entropy(nil); got != 0 {
		t.Errorf("Entropy(nil) = %v, want 0", got)
	}
}

func TestEntropyUniform(t *testing.T) {
	// A single repeated byte has zero entropy.
	if got := Entropy([]byte("aaaaaaaa")); got != 0 {
		t.Errorf("Entropy(repeated) = %v, want 0", got)
	}
}

func TestComputeStatsUnbiasedStdDev(t *testing.T) {
	samples := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	stats := ComputeStats(samples)
	if stats.StdDev <= 2.13 || stats.StdDev >= 2.14 {
		t.Errorf("StdDev = %v, want in (2.13, 2.14)", stats.StdDev)
	}
}

func TestComputeStatsSingleSample(t *testing.T) {
	stats := ComputeStats([]float64{3.5})
	if stats.StdDev != 0 {
		t.Errorf("StdDev for n=1 = %v, want 0", stats.StdDev)
	}
	if stats.Mean != 3.5 {
		t.Errorf("Mean = %v, want 3.5", stats.Mean)
	}
}

func TestComputeStatsNearZeroVarianceClamped(t *testing.T) {
	samples := []float64{1.0000000001, 1.0000000002, 1.0000000000}
	stats := ComputeStats(samples)
	if stats.StdDev != 0 {
		t.Errorf("near-zero variance should clamp to 0, got %v", stats.StdDev)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)
	if stats.N != 0 || stats.Mean != 0 || stats.StdDev != 0 {
		t.Errorf("ComputeStats(nil) = %+v, want zero value", stats)
	}
}
