package strategy

import (
	"sort"

	"github.com/ocppauth/core/internal/obslog"
)

// Registry holds the configured strategies in fixed priority order,
// grounded on the teacher's IntrospectorRegistry
// (pkg/auth/token/introspection.go): a flat slice, appended at construction
// time, searched linearly.
type Registry struct {
	strategies []Strategy
}

// NewRegistry builds a Registry from strategies, sorted ascending by
// Priority(). The pipeline's priority order (spec §4.9) is fixed once here;
// nothing re-sorts at request time.
func NewRegistry(strategies ...Strategy) *Registry {
	ordered := make([]Strategy, len(strategies))
	copy(ordered, strategies)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Priority() < ordered[j].Priority() })
	return &Registry{strategies: ordered}
}

// Ordered returns the strategies in fixed priority order.
func (r *Registry) Ordered() []Strategy {
	return r.strategies
}

// ByName returns the strategy registered under name, or nil if absent.
func (r *Registry) ByName(name string) Strategy {
	for _, s := range r.strategies {
		if s.Name() == name {
			return s
		}
	}
	obslog.Debugf("strategy registry: no strategy named %q", name)
	return nil
}
