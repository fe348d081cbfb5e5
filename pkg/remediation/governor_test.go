package remediation

import "testing"

func TestGovernorLimitsBursts(t *testing.T) {
	g := NewGovernor(2, DefaultWindow)
	if !g.Allow() {
		t.Error("1st Allow() = false, want true")
	}
	if !g.Allow() {
		t.Error("2nd Allow() = false, want true")
	}
	if g.Allow() {
		t.Error("3rd Allow() = true, want false (burst limit of 2 exceeded)")
	}
}

func TestGovernorDefaultsWhenZero(t *testing.T) {
	g := NewGovernor(0, 0)
	if g.maxActions != DefaultMaxActions {
		t.Errorf("maxActions = %d, want default %d", g.maxActions, DefaultMaxActions)
	}
	if g.window != DefaultWindow {
		t.Errorf("window = %v, want default %v", g.window, DefaultWindow)
	}
}
