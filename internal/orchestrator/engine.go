// Package orchestrator is the engine façade: it validates payment requests,
// gates them through fraud assessment, routes them to an eligible provider
// adapter, persists every outcome, and emits lifecycle events.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vantagepay/payment-engine/internal/config"
	"github.com/vantagepay/payment-engine/internal/events"
	"github.com/vantagepay/payment-engine/internal/model"
	"github.com/vantagepay/payment-engine/internal/provider"
	"github.com/vantagepay/payment-engine/internal/retry"
	"github.com/vantagepay/payment-engine/internal/store"
)

// Assessor scores a payment request for fraud risk.
type Assessor interface {
	Assess(req *model.PaymentRequest) model.FraudAssessment
}

// Engine orchestrates the payment lifecycle.
type Engine struct {
	assessor       Assessor
	registry       *provider.Registry
	adapters       map[string]provider.Adapter
	store          store.Store
	bus            *events.Bus
	queue          *retry.Queue
	metrics        *Metrics
	chargeTimeout  time.Duration
	retryBaseDelay time.Duration

	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

// New creates an engine with default timing configuration.
func New(assessor Assessor, registry *provider.Registry, adapters []provider.Adapter, st store.Store, bus *events.Bus, queue *retry.Queue) *Engine {
	return NewWithConfig(assessor, registry, adapters, st, bus, queue, config.ChargeTimeout, config.RetryBaseDelay)
}

// NewWithConfig creates an engine with custom charge timeout and retry base
// delay, used by tests.
func NewWithConfig(assessor Assessor, registry *provider.Registry, adapters []provider.Adapter, st store.Store, bus *events.Bus, queue *retry.Queue, chargeTimeout, retryBaseDelay time.Duration) *Engine {
	byName := make(map[string]provider.Adapter, len(adapters))
	for _, a := range adapters {
		byName[a.Name()] = a
	}
	return &Engine{
		assessor:       assessor,
		registry:       registry,
		adapters:       byName,
		store:          st,
		bus:            bus,
		queue:          queue,
		metrics:        NewMetrics(),
		chargeTimeout:  chargeTimeout,
		retryBaseDelay: retryBaseDelay,
		inflight:       make(map[string]struct{}),
	}
}

// ProcessPayment is the sole entry point for checkout collaborators.
//
// The returned result is non-nil whenever a durable record exists, even
// alongside an error, so callers can always surface the payment id. A
// retryable gateway failure is not an error to the caller: the result comes
// back non-terminal and the charge is re-attempted in the background.
func (e *Engine) ProcessPayment(ctx context.Context, req *model.PaymentRequest) (*model.PaymentResult, error) {
	if err := req.Validate(time.Now().UTC()); err != nil {
		slog.Warn("request_rejected", "request_id", req.ID, "error", err)
		return nil, err
	}

	// Idempotent replay: the request id anchors the record, so a client
	// resubmitting after a timeout gets the existing result and no second
	// charge is ever attempted. The in-flight claim closes the window where
	// two concurrent submissions both miss the store and both reach the
	// gateway.
	if !e.claim(req.ID) {
		if existing, ok, err := e.store.Get(req.ID); err == nil && ok {
			slog.Info("idempotent_replay", "request_id", req.ID, "status", string(existing.Status))
			return existing, nil
		}
		return nil, &model.ProcessingError{Code: model.CodeOutcomeUnknown, Retryable: true, Message: "payment " + req.ID + " is already being processed"}
	}
	defer e.release(req.ID)

	if existing, ok, err := e.store.Get(req.ID); err != nil {
		return nil, &model.ProcessingError{Code: model.CodeOutcomeUnknown, Message: "store read failed: " + err.Error()}
	} else if ok {
		slog.Info("idempotent_replay", "request_id", req.ID, "status", string(existing.Status))
		return existing, nil
	}

	start := time.Now()
	e.metrics.IncProcessed()

	result := model.NewPaymentResult(req)
	result.Advance(model.StatusRequiresConfirmation, "request_validated", "")
	// The open record is durable before the charge, so a duplicate
	// submission racing this one resolves against it instead of starting a
	// second payment.
	e.persist(result)

	assessment := e.assessor.Assess(req)
	result.Assessment = &assessment
	result.AppendEvent("fraud_assessed", fmt.Sprintf("score=%d level=%s decision=%s", assessment.RiskScore, assessment.RiskLevel, assessment.Decision))

	if assessment.Decision == model.DecisionDecline {
		// No provider is ever contacted; the decision itself is persisted
		// for audit.
		result.Fail(model.CodeFraudDecline, "declined by fraud assessment")
		e.persist(result)
		e.metrics.IncFraudDeclined()
		e.bus.Publish(events.Event{Type: events.FraudDecline, Payload: events.FraudDeclinePayload{
			RequestID:  req.ID,
			CustomerID: req.CustomerID,
			RiskScore:  assessment.RiskScore,
			RiskLevel:  assessment.RiskLevel,
		}})
		slog.Warn("fraud_decline", "request_id", req.ID, "score", assessment.RiskScore, "level", string(assessment.RiskLevel))
		return result, &model.FraudDeclineError{RequestID: req.ID, RiskScore: assessment.RiskScore, RiskLevel: assessment.RiskLevel}
	}

	result.AppendEvent("charge_started", "")

	if err := e.charge(ctx, req, result, &assessment); err != nil {
		return e.handleChargeError(req, result, err)
	}

	e.persist(result)
	e.metrics.IncSucceeded()
	e.metrics.ObserveDuration(time.Since(start))
	e.bus.Publish(events.Event{Type: events.PaymentProcessed, Payload: events.PaymentProcessedPayload{Result: result}})
	slog.Info("payment_processed", "request_id", req.ID, "provider", result.ProviderID, "status", string(result.Status))
	return result, nil
}

// claim marks a request id as in flight. It reports false when another call
// is already processing that id.
func (e *Engine) claim(id string) bool {
	e.inflightMu.Lock()
	defer e.inflightMu.Unlock()
	if _, busy := e.inflight[id]; busy {
		return false
	}
	e.inflight[id] = struct{}{}
	return true
}

func (e *Engine) release(id string) {
	e.inflightMu.Lock()
	defer e.inflightMu.Unlock()
	delete(e.inflight, id)
}

// charge selects a provider and executes the gateway call, populating the
// result on success. Errors are *model.ProcessingError values.
func (e *Engine) charge(ctx context.Context, req *model.PaymentRequest, result *model.PaymentResult, assessment *model.FraudAssessment) error {
	prov, err := e.registry.Select(req)
	if err != nil {
		return err
	}
	adapter, ok := e.adapters[prov.ID]
	if !ok {
		return &model.ProcessingError{
			Provider: prov.ID,
			Code:     model.CodeNoProviders,
			Message:  "no adapter registered for provider " + prov.ID,
		}
	}

	slog.Info("charge_attempt", "request_id", req.ID, "provider", prov.ID, "priority", prov.Priority)

	cctx, cancel := context.WithTimeout(ctx, e.chargeTimeout)
	defer cancel()

	res, err := adapter.Charge(cctx, req, assessment)
	if err != nil {
		if ctx.Err() != nil {
			// The caller's context ended, by cancel or deadline, before the
			// gateway confirmed a charge; the record closes as canceled, not
			// failed. The engine's own charge timeout lives on cctx only and
			// stays on the retryable path.
			result.Advance(model.StatusCanceled, "payment_canceled", "caller context ended before charge confirmation")
			return &model.ProcessingError{Provider: prov.ID, Code: model.CodeCanceled, Message: "payment canceled by caller"}
		}
		result.AppendEvent("charge_failed", err.Error())
		return err
	}

	result.ProviderID = prov.ID
	result.ExternalTransactionID = res.TransactionID
	result.AmountCaptured = res.AmountCaptured
	result.ProcessingFee = res.Fee
	result.NextAction = res.NextAction
	if res.Status != result.Status {
		if aerr := result.Advance(res.Status, "charge_completed", "gateway reported "+string(res.Status)); aerr != nil {
			return &model.ProcessingError{Provider: prov.ID, Code: model.CodeOutcomeUnknown, Message: aerr.Error()}
		}
	}
	return nil
}

// handleChargeError classifies a charge failure: retryable errors are queued
// and hidden from the caller, the rest close the record as failed.
func (e *Engine) handleChargeError(req *model.PaymentRequest, result *model.PaymentResult, err error) (*model.PaymentResult, error) {
	pe, ok := model.AsProcessingError(err)
	if !ok {
		pe = &model.ProcessingError{Code: model.CodeGatewayUnavailable, Message: err.Error()}
	}

	if pe.Code == model.CodeCanceled {
		e.persist(result)
		return result, pe
	}

	if pe.Retryable {
		if e.queue.Enqueue(*req, time.Now().Add(e.retryBaseDelay)) {
			result.AppendEvent("retry_scheduled", pe.Error())
			e.persist(result)
			e.bus.Publish(events.Event{Type: events.PaymentFailed, Payload: events.PaymentFailedPayload{
				RequestID:  req.ID,
				CustomerID: req.CustomerID,
				Error:      pe.Error(),
				Retryable:  true,
			}})
			slog.Warn("charge_failed_retryable", "request_id", req.ID, "code", pe.Code)
			return result, nil
		}
		// No retry slot: without a scheduled re-attempt the payment would
		// strand open forever, so it closes as failed instead.
		slog.Warn("retry_queue_full", "request_id", req.ID, "code", pe.Code)
	}

	result.Fail(pe.Code, pe.Message)
	e.persist(result)
	e.metrics.IncFailed()
	e.bus.Publish(events.Event{Type: events.PaymentFailed, Payload: events.PaymentFailedPayload{
		RequestID:  req.ID,
		CustomerID: req.CustomerID,
		Error:      pe.Error(),
		Retryable:  false,
	}})
	slog.Warn("charge_failed_permanent", "request_id", req.ID, "code", pe.Code)
	return result, pe
}

// Retry re-enters a queued request, re-attempting only the charge step. The
// persisted assessment is reused: an already approved payment is never
// re-declined by a later rule change.
func (e *Engine) Retry(ctx context.Context, req *model.PaymentRequest) error {
	result, ok, err := e.store.Get(req.ID)
	if err != nil {
		return &model.ProcessingError{Code: model.CodeOutcomeUnknown, Retryable: true, Message: "store read failed: " + err.Error()}
	}
	if !ok || result.Status.Terminal() {
		return nil
	}

	if err := e.charge(ctx, req, result, result.Assessment); err != nil {
		result.AppendEvent("retry_failed", err.Error())
		e.persist(result)
		pe, ok := model.AsProcessingError(err)
		if ok && !pe.Retryable && pe.Code != model.CodeCanceled {
			result.Fail(pe.Code, pe.Message)
			e.persist(result)
			e.metrics.IncFailed()
			e.bus.Publish(events.Event{Type: events.PaymentFailed, Payload: events.PaymentFailedPayload{
				RequestID:  req.ID,
				CustomerID: req.CustomerID,
				Error:      pe.Error(),
				Retryable:  false,
			}})
			slog.Warn("retry_failed_permanent", "request_id", req.ID, "code", pe.Code)
		}
		return err
	}

	e.persist(result)
	e.metrics.IncSucceeded()
	e.bus.Publish(events.Event{Type: events.PaymentProcessed, Payload: events.PaymentProcessedPayload{Result: result}})
	slog.Info("payment_recovered", "request_id", req.ID, "provider", result.ProviderID)
	return nil
}

// Exhaust closes a payment whose retries ran out and announces it. Called by
// the retry worker after the final attempt; this is a terminal failure and
// is never silently dropped.
func (e *Engine) Exhaust(requestID string, attempts int, lastErr error) {
	result, ok, err := e.store.Get(requestID)
	if err == nil && ok && !result.Status.Terminal() {
		result.Fail(model.CodeRetryExhausted, lastErr.Error())
		e.persist(result)
	}
	e.metrics.IncFailed()
	e.bus.Publish(events.Event{Type: events.PaymentRetryExhausted, Payload: events.RetryExhaustedPayload{
		RequestID: requestID,
		Attempts:  attempts,
	}})
	slog.Warn("payment_retry_exhausted", "request_id", requestID, "attempts", attempts)
}

// GetPayment returns the durable record for a payment id.
func (e *Engine) GetPayment(id string) (*model.PaymentResult, error) {
	result, ok, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, store.ErrNotFound
	}
	return result, nil
}

// ProcessRefund is declared for contract stability; refund execution is not
// implemented yet.
func (e *Engine) ProcessRefund(ctx context.Context, req *model.RefundRequest) (*model.RefundResult, error) {
	return nil, fmt.Errorf("process refund: %w", model.ErrNotImplemented)
}

// HandleDispute is declared for contract stability; dispute handling is not
// implemented yet.
func (e *Engine) HandleDispute(ctx context.Context, disputeID string, evidence map[string]string) error {
	return fmt.Errorf("handle dispute %s: %w", disputeID, model.ErrNotImplemented)
}

// GetMetrics returns the engine's observability counters.
func (e *Engine) GetMetrics() Snapshot {
	return e.metrics.Snapshot()
}

func (e *Engine) persist(result *model.PaymentResult) {
	if err := e.store.Save(result); err != nil {
		// The in-flight result is still returned to the caller; losing the
		// durable copy is logged loudly rather than masking the outcome.
		slog.Error("persist_failed", "request_id", result.ID, "error", err)
	}
}

var _ retry.Submitter = (*Engine)(nil)
