package provider

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vantagepay/payment-engine/internal/model"
)

// OutcomeDistribution defines the probability of each charge outcome.
type OutcomeDistribution struct {
	SuccessRate     float64
	ActionRate      float64 // charge succeeds but requires a caller action
	TransientRate   float64 // retryable gateway errors
	HardDeclineRate float64
}

// Credentials is the auth material an adapter presents to its gateway. The
// zero value is an unauthenticated sandbox adapter.
type Credentials struct {
	APIKey      string
	Environment string // "sandbox" or "live"
}

// MockConfig holds configuration for creating a mock gateway adapter.
type MockConfig struct {
	Provider    Provider
	Credentials Credentials
	Outcomes    OutcomeDistribution
	MinLatency  time.Duration
	MaxLatency  time.Duration
}

// MockAdapter simulates an external gateway with configurable behavior. It
// is used by cmd/server in environments without live gateway credentials.
type MockAdapter struct {
	config   MockConfig
	rng      *rand.Rand
	mu       sync.Mutex
	degraded bool
}

// NewMockAdapter creates a mock adapter from the given config.
func NewMockAdapter(cfg MockConfig) *MockAdapter {
	return &MockAdapter{
		config: cfg,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (m *MockAdapter) Name() string {
	return m.config.Provider.ID
}

// SetDegraded toggles degraded mode (80% transient errors) for simulation.
func (m *MockAdapter) SetDegraded(degraded bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.degraded = degraded
}

func (m *MockAdapter) Charge(ctx context.Context, req *model.PaymentRequest, assessment *model.FraudAssessment) (AdapterResult, error) {
	// Live traffic needs an API key; sandbox traffic is unauthenticated.
	if m.config.Credentials.Environment == "live" && m.config.Credentials.APIKey == "" {
		return AdapterResult{}, &model.ProcessingError{
			Provider:  m.Name(),
			Code:      model.CodeGatewayUnavailable,
			Retryable: false,
			Message:   "gateway credentials not configured for live environment",
		}
	}

	m.mu.Lock()
	degraded := m.degraded
	m.mu.Unlock()

	select {
	case <-time.After(m.simulateLatency()):
	case <-ctx.Done():
		return AdapterResult{}, &model.ProcessingError{
			Provider:  m.Name(),
			Code:      model.CodeGatewayTimeout,
			Retryable: true,
			Message:   "gateway call aborted: " + ctx.Err().Error(),
		}
	}

	m.mu.Lock()
	roll := m.rng.Float64()
	m.mu.Unlock()

	if degraded {
		if roll < 0.80 {
			return AdapterResult{}, &model.ProcessingError{
				Provider:  m.Name(),
				Code:      model.CodeGatewayUnavailable,
				Retryable: true,
				Message:   "gateway degraded",
			}
		}
		return m.success(req), nil
	}

	dist := m.config.Outcomes
	if roll < dist.SuccessRate {
		return m.success(req), nil
	}
	roll -= dist.SuccessRate
	if roll < dist.ActionRate {
		res := m.success(req)
		res.Status = model.StatusRequiresAction
		res.AmountCaptured = 0
		res.NextAction = &model.NextAction{
			Type:        "redirect_to_url",
			RedirectURL: "https://gateway.example/verify/" + res.TransactionID,
		}
		return res, nil
	}
	roll -= dist.ActionRate
	if roll < dist.TransientRate {
		return AdapterResult{}, &model.ProcessingError{
			Provider:  m.Name(),
			Code:      model.CodeRateLimited,
			Retryable: true,
			Message:   "gateway rate limit exceeded",
		}
	}
	return AdapterResult{}, &model.ProcessingError{
		Provider:  m.Name(),
		Code:      model.CodeDeclined,
		Retryable: false,
		Message:   "card declined by issuer",
	}
}

func (m *MockAdapter) success(req *model.PaymentRequest) AdapterResult {
	status := model.StatusSucceeded
	captured := req.Amount
	if req.CaptureMode == model.CaptureManual {
		status = model.StatusRequiresCapture
		captured = 0
	}
	return AdapterResult{
		TransactionID:  m.Name() + "_" + uuid.NewString(),
		Status:         status,
		AmountCaptured: captured,
		Fee:            m.config.Provider.Fee(req.Amount),
	}
}

func (m *MockAdapter) simulateLatency() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	min := m.config.MinLatency
	max := m.config.MaxLatency
	if max <= min {
		return min
	}
	return min + time.Duration(m.rng.Int63n(int64(max-min)))
}
