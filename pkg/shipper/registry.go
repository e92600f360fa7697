package shipper

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Registry manages registered carrier strategies, keyed by the cost method
// name the ERP stores on its carrier records.
type Registry struct {
	strategies map[string]CarrierStrategy
	mu         sync.RWMutex
}

// NewRegistry creates a new carrier registry.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]CarrierStrategy),
	}
}

// Register adds a strategy to the registry, replacing any strategy with the
// same name.
func (r *Registry) Register(s CarrierStrategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[s.Name()] = s
}

// Get returns a strategy by name.
func (r *Registry) Get(name string) (CarrierStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.strategies[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrCarrierNotFound, name)
}

// All returns all registered strategies ordered by name.
func (r *Registry) All() []CarrierStrategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]CarrierStrategy, 0, len(r.strategies))
	for _, s := range r.strategies {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result
}

// Names returns the sorted names of all registered strategies.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered strategies.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.strategies)
}

// RequestBuilder builds the request for one carrier. Package weights depend on
// the carrier's weight unit, so requests are built per strategy.
type RequestBuilder func(s CarrierStrategy) (*ShippingRequest, error)

// ShopAll shops every registered carrier in parallel. A failing carrier
// contributes an error instead of failing the whole request.
func (r *Registry) ShopAll(ctx context.Context, build RequestBuilder) ([]RateQuote, []error) {
	strategies := r.All()
	if len(strategies) == 0 {
		return nil, []error{ErrCarrierNotFound}
	}

	results := make([][]RateQuote, len(strategies))
	errs := make([]error, 0)
	mu := &sync.Mutex{}

	g, ctx := errgroup.WithContext(ctx)

	for i, s := range strategies {
		g.Go(func() error {
			req, err := build(s)
			if err == nil {
				results[i], err = s.Shop(ctx, req)
			}
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
				mu.Unlock()
			}
			return nil // keep shopping the other carriers
		})
	}

	_ = g.Wait()

	quotes := make([]RateQuote, 0)
	for _, q := range results {
		quotes = append(quotes, q...)
	}
	return quotes, errs
}
