package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/vantagepay/payment-engine/internal/config"
	"github.com/vantagepay/payment-engine/internal/model"
)

// Submitter re-enters queued requests into the orchestrator. Retry must
// re-attempt only the charge step; an already approved assessment is not
// re-declined. Exhaust marks the payment permanently failed.
type Submitter interface {
	Retry(ctx context.Context, req *model.PaymentRequest) error
	Exhaust(requestID string, attempts int, lastErr error)
}

// Worker sweeps the retry queue on a fixed interval from a single goroutine,
// so no entry is ever double-submitted.
type Worker struct {
	queue       *Queue
	submitter   Submitter
	interval    time.Duration
	baseDelay   time.Duration
	maxAttempts int
	now         func() time.Time
	stop        chan struct{}
	done        chan struct{}
}

// NewWorker creates a worker with default settings.
func NewWorker(queue *Queue, submitter Submitter) *Worker {
	return NewWorkerWithConfig(queue, submitter, config.RetrySweepInterval, config.RetryBaseDelay, config.MaxRetryAttempts, time.Now)
}

// NewWorkerWithConfig creates a worker with custom timing for tests, which
// pin now and call Sweep directly instead of waiting on the ticker.
func NewWorkerWithConfig(queue *Queue, submitter Submitter, interval, baseDelay time.Duration, maxAttempts int, now func() time.Time) *Worker {
	return &Worker{
		queue:       queue,
		submitter:   submitter,
		interval:    interval,
		baseDelay:   baseDelay,
		maxAttempts: maxAttempts,
		now:         now,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// BaseDelay returns the backoff unit, used when scheduling the first retry.
func (w *Worker) BaseDelay() time.Duration {
	return w.baseDelay
}

// Start launches the sweep loop until Stop or ctx cancellation.
func (w *Worker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.Sweep(ctx)
			case <-w.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop terminates the sweep loop and waits for it to exit.
func (w *Worker) Stop() {
	close(w.stop)
	<-w.done
}

// Sweep re-submits every due entry once. A successful retry removes the
// entry; a retryable failure reschedules with linear backoff until
// maxAttempts, after which the entry is exhausted, never silently dropped.
func (w *Worker) Sweep(ctx context.Context) {
	for _, entry := range w.queue.Due(w.now()) {
		id := entry.Request.ID

		slog.Info("retry_attempt", "request_id", id, "attempt", entry.Attempt)
		err := w.submitter.Retry(ctx, &entry.Request)
		if err == nil {
			w.queue.Remove(id)
			continue
		}

		pe, ok := model.AsProcessingError(err)
		if !ok || !pe.Retryable {
			// Permanent failure: the submitter already recorded it.
			slog.Warn("retry_permanent_failure", "request_id", id, "error", err)
			w.queue.Remove(id)
			continue
		}

		next := entry.Attempt + 1
		if next > w.maxAttempts {
			slog.Warn("retry_exhausted", "request_id", id, "attempts", entry.Attempt)
			w.queue.Remove(id)
			w.submitter.Exhaust(id, entry.Attempt, err)
			continue
		}
		w.queue.Reschedule(id, next, w.now().Add(time.Duration(next)*w.baseDelay))
	}
}
