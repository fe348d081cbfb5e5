// Package remediation implements the rate governor (C10) and the
// verify→gate→govern→act remediation orchestrator (C11), grounded on
// cleansh-core/src/remediation/orchestrator.rs's SelfHealingEngine,
// translated from tokio tasks and channels to goroutines, a Go channel,
// and context.Context.
package remediation

import (
	"sync"
	"time"
)

// DefaultMaxActions and DefaultWindow are the governor's documented
// defaults (spec.md §4.10).
const (
	DefaultMaxActions = 5
	DefaultWindow     = 60 * time.Second
)

// Governor enforces "at most N actions per sliding window" over
// remediation attempts. Despite the name parallel to a token bucket, the
// semantics here are a sliding-window timestamp queue, not a token
// bucket, per spec.md §4.10.
type Governor struct {
	mu         sync.Mutex
	maxActions int
	window     time.Duration
	history    []time.Time
}

// NewGovernor constructs a Governor allowing at most maxActions actions
// per window.
func NewGovernor(maxActions int, window time.Duration) *Governor {
	if maxActions <= 0 {
		maxActions = DefaultMaxActions
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Governor{
		maxActions: maxActions,
		window:     window,
		history:    make([]time.Time, 0, maxActions),
	}
}

// Allow drops timestamps older than the window, then authorizes the
// action (enqueuing now) if the remaining history is under maxActions.
func (g *Governor) Allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	i := 0
	for i < len(g.history) && now.Sub(g.history[i]) > g.window {
		i++
	}
	if i > 0 {
		g.history = g.history[i:]
	}

	if len(g.history) < g.maxActions {
		g.history = append(g.history, now)
		return true
	}
	return false
}
