package fraud

import (
	"sync"
	"time"

	"github.com/vantagepay/payment-engine/internal/config"
)

// ruleOutcome records one reviewed assessment in which a rule triggered.
type ruleOutcome struct {
	falsePositive bool
	timestamp     time.Time
}

// RuleFeedback summarizes recent reviewed outcomes for one rule.
type RuleFeedback struct {
	RuleID            string    `json:"rule_id"`
	Total             int       `json:"total"`
	FalsePositives    int       `json:"false_positives"`
	FalsePositiveRate float64   `json:"false_positive_rate"`
	LastUpdated       time.Time `json:"last_updated"`
}

// FeedbackWindow tracks per-rule review outcomes in a sliding window. It is
// fed by operator review results and read by the refresher's tuner.
type FeedbackWindow struct {
	mu             sync.RWMutex
	windows        map[string][]ruleOutcome
	windowSize     int
	windowDuration time.Duration
}

// NewFeedbackWindow creates a feedback window with default configuration.
func NewFeedbackWindow() *FeedbackWindow {
	return NewFeedbackWindowWithConfig(config.FeedbackWindowSize, config.FeedbackWindowDuration)
}

// NewFeedbackWindowWithConfig creates a window with custom settings for testing.
func NewFeedbackWindowWithConfig(windowSize int, windowDuration time.Duration) *FeedbackWindow {
	return &FeedbackWindow{
		windows:        make(map[string][]ruleOutcome),
		windowSize:     windowSize,
		windowDuration: windowDuration,
	}
}

// RecordOutcome records a reviewed assessment outcome for a rule that
// triggered. falsePositive marks reviews where the payment turned out
// legitimate.
func (w *FeedbackWindow) RecordOutcome(ruleID string, falsePositive bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.windows[ruleID] = append(w.windows[ruleID], ruleOutcome{
		falsePositive: falsePositive,
		timestamp:     time.Now(),
	})
	w.pruneWindow(ruleID)
}

// Stats returns the current feedback summary for a rule.
func (w *FeedbackWindow) Stats(ruleID string) RuleFeedback {
	w.mu.RLock()
	defer w.mu.RUnlock()

	window := w.activeWindow(ruleID)
	fb := RuleFeedback{RuleID: ruleID, LastUpdated: time.Now()}
	if len(window) == 0 {
		return fb
	}

	for _, o := range window {
		if o.falsePositive {
			fb.FalsePositives++
		}
	}
	fb.Total = len(window)
	fb.FalsePositiveRate = float64(fb.FalsePositives) / float64(fb.Total)
	return fb
}

// Snapshot returns feedback summaries for every tracked rule.
func (w *FeedbackWindow) Snapshot() map[string]RuleFeedback {
	w.mu.RLock()
	ids := make([]string, 0, len(w.windows))
	for id := range w.windows {
		ids = append(ids, id)
	}
	w.mu.RUnlock()

	out := make(map[string]RuleFeedback, len(ids))
	for _, id := range ids {
		out[id] = w.Stats(id)
	}
	return out
}

// activeWindow returns outcomes within the time window, already under read lock.
func (w *FeedbackWindow) activeWindow(ruleID string) []ruleOutcome {
	window := w.windows[ruleID]
	if len(window) == 0 {
		return nil
	}

	cutoff := time.Now().Add(-w.windowDuration)
	active := make([]ruleOutcome, 0, len(window))
	for _, o := range window {
		if o.timestamp.After(cutoff) {
			active = append(active, o)
		}
	}

	if len(active) > w.windowSize {
		active = active[len(active)-w.windowSize:]
	}
	return active
}

// pruneWindow removes expired outcomes, called under write lock.
func (w *FeedbackWindow) pruneWindow(ruleID string) {
	cutoff := time.Now().Add(-w.windowDuration)
	window := w.windows[ruleID]

	pruned := make([]ruleOutcome, 0, len(window))
	for _, o := range window {
		if o.timestamp.After(cutoff) {
			pruned = append(pruned, o)
		}
	}

	if len(pruned) > w.windowSize {
		pruned = pruned[len(pruned)-w.windowSize:]
	}
	w.windows[ruleID] = pruned
}
