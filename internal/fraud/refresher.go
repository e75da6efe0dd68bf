package fraud

import (
	"context"
	"log/slog"
	"time"

	"github.com/vantagepay/payment-engine/internal/config"
)

// Tuner adjusts rule weights from aggregated review feedback. It must return
// a complete rule set; the refresher swaps it in wholesale.
type Tuner func(rules []Rule, feedback map[string]RuleFeedback) []Rule

// DefaultTuner nudges rule scores proportionally: rules drowning in false
// positives lose 10% of their weight, rules with a clean window gain 5%.
// Rules without enough samples are left alone.
func DefaultTuner(rules []Rule, feedback map[string]RuleFeedback) []Rule {
	tuned := make([]Rule, len(rules))
	copy(tuned, rules)
	for i, rule := range tuned {
		fb, ok := feedback[rule.ID]
		if !ok || fb.Total < config.FeedbackMinSamples {
			continue
		}
		switch {
		case fb.FalsePositiveRate > 0.5:
			tuned[i].Score = max(rule.Score*9/10, 5)
		case fb.FalsePositives == 0:
			tuned[i].Score = min(rule.Score*21/20+1, 200)
		}
	}
	return tuned
}

// Refresher periodically rebuilds the assessor's rule table from review
// feedback. The swap is atomic: in-flight assessments keep the snapshot they
// loaded and never observe a half-updated table.
type Refresher struct {
	assessor *Assessor
	feedback *FeedbackWindow
	interval time.Duration
	tune     Tuner
	stop     chan struct{}
	done     chan struct{}
}

// NewRefresher creates a refresher with the default interval and tuner.
func NewRefresher(assessor *Assessor, feedback *FeedbackWindow) *Refresher {
	return NewRefresherWithConfig(assessor, feedback, config.RuleRefreshInterval, DefaultTuner)
}

// NewRefresherWithConfig creates a refresher with a custom interval and
// tuner, used by tests to drive refreshes deterministically.
func NewRefresherWithConfig(assessor *Assessor, feedback *FeedbackWindow, interval time.Duration, tune Tuner) *Refresher {
	return &Refresher{
		assessor: assessor,
		feedback: feedback,
		interval: interval,
		tune:     tune,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the refresh loop. It returns immediately; the loop runs
// until Stop is called or ctx is canceled.
func (r *Refresher) Start(ctx context.Context) {
	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Refresh()
			case <-r.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop terminates the refresh loop and waits for it to exit.
func (r *Refresher) Stop() {
	close(r.stop)
	<-r.done
}

// Refresh rebuilds and swaps the rule table once.
func (r *Refresher) Refresh() {
	current := r.assessor.Table()
	tuned := r.tune(current.Rules(), r.feedback.Snapshot())
	r.assessor.SwapTable(current.WithRules(tuned))
	slog.Info("rule_table_refreshed", "rules", len(tuned))
}
