package provider

import (
	"sort"
	"sync/atomic"

	"github.com/vantagepay/payment-engine/internal/model"
)

// Provider is the static configuration for one integratable gateway.
type Provider struct {
	ID          string                 `json:"id"`
	DisplayName string                 `json:"display_name"`
	Instruments []model.InstrumentKind `json:"instruments"`
	Currencies  []string               `json:"currencies"`
	FeeBPS      int64                  `json:"fee_bps"`
	FeeFixed    int64                  `json:"fee_fixed"`
	Priority    int                    `json:"priority"`
	Enabled     bool                   `json:"enabled"`
}

// SupportsCurrency reports whether the provider can settle the currency.
func (p Provider) SupportsCurrency(currency string) bool {
	for _, c := range p.Currencies {
		if c == currency {
			return true
		}
	}
	return false
}

// SupportsInstrument reports whether the provider accepts the instrument kind.
func (p Provider) SupportsInstrument(kind model.InstrumentKind) bool {
	for _, k := range p.Instruments {
		if k == kind {
			return true
		}
	}
	return false
}

// Fee computes the processing fee for an amount, in minor units.
func (p Provider) Fee(amount int64) int64 {
	return amount*p.FeeBPS/10_000 + p.FeeFixed
}

// Registry holds the provider fleet. The list is replaced wholesale on
// operator changes so concurrent selects never observe a partial update.
type Registry struct {
	providers atomic.Pointer[[]Provider]
}

// NewRegistry creates a registry over the given provider list.
func NewRegistry(providers []Provider) *Registry {
	r := &Registry{}
	r.SetProviders(providers)
	return r
}

// SetProviders atomically swaps in a new provider list.
func (r *Registry) SetProviders(providers []Provider) {
	list := make([]Provider, len(providers))
	copy(list, providers)
	r.providers.Store(&list)
}

// Providers returns the current provider list snapshot.
func (r *Registry) Providers() []Provider {
	list := r.providers.Load()
	out := make([]Provider, len(*list))
	copy(out, *list)
	return out
}

// Select picks the best eligible provider for a request: enabled, supporting
// the currency and instrument kind, lowest priority value first. It returns
// a ProcessingError with code NO_PROVIDERS when nothing qualifies.
func (r *Registry) Select(req *model.PaymentRequest) (Provider, error) {
	list := *r.providers.Load()

	var eligible []Provider
	for _, p := range list {
		if !p.Enabled {
			continue
		}
		if !p.SupportsCurrency(req.Currency) {
			continue
		}
		if req.Instrument.Kind != "" && !p.SupportsInstrument(req.Instrument.Kind) {
			continue
		}
		eligible = append(eligible, p)
	}
	if len(eligible) == 0 {
		return Provider{}, &model.ProcessingError{
			Code:    model.CodeNoProviders,
			Message: "no enabled provider supports " + req.Currency + "/" + string(req.Instrument.Kind),
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Priority < eligible[j].Priority
	})
	return eligible[0], nil
}
