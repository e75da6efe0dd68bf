package config

import "time"

const (
	// MaxRetryAttempts is the number of automatic charge retries before a
	// payment is declared exhausted.
	MaxRetryAttempts = 3

	// RetrySweepInterval is how often the retry worker scans for due entries.
	RetrySweepInterval = 5 * time.Minute

	// RetryBaseDelay is the backoff unit: attempt N reschedules at N * base.
	RetryBaseDelay = 30 * time.Second

	// RetryQueueCapacity bounds the number of pending retry entries.
	RetryQueueCapacity = 1024

	// ChargeTimeout caps a single adapter charge call.
	ChargeTimeout = 10 * time.Second

	// RuleRefreshInterval is how often rule weights are re-tuned.
	RuleRefreshInterval = time.Hour

	// FeedbackWindowSize is the number of recent assessment outcomes kept per rule.
	FeedbackWindowSize = 200

	// FeedbackWindowDuration is the time window for rule feedback.
	FeedbackWindowDuration = 24 * time.Hour

	// FeedbackMinSamples is the minimum window population before the tuner
	// adjusts a rule's weight.
	FeedbackMinSamples = 20
)
