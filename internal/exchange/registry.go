package exchange

import "fmt"

// Registry maps exchange identifier to Exchange. It is created once per
// backtest and shared by reference across every stage — the pipeline's
// one piece of shared mutable state (spec.md §3 "Ownership", §5 "Shared
// state"). Single-threaded execution means no locking is required.
type Registry struct {
	exchanges map[string]*Exchange
}

// NewRegistry builds an empty Registry. Use Add to register exchanges,
// or NewRegistryFromPresets to build one from the named presets in
// presets.go plus an initial balances map.
func NewRegistry() *Registry {
	return &Registry{exchanges: make(map[string]*Exchange)}
}

// Add registers an Exchange under its own Name.
func (r *Registry) Add(ex *Exchange) {
	r.exchanges[ex.Name] = ex
}

// Get returns the Exchange registered under name, or an error if none
// is registered. Unlike Book lookups (UnknownMarket, a spec-defined
// fatal kind), an unregistered exchange name is a caller/config error —
// it is surfaced as a plain error since spec.md's error taxonomy is
// scoped to the event-processing pipeline, not registry setup.
func (r *Registry) Get(name string) (*Exchange, error) {
	ex, ok := r.exchanges[name]
	if !ok {
		return nil, fmt.Errorf("exchange registry: no exchange named %q", name)
	}
	return ex, nil
}
