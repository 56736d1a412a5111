package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/shared/strategy"
)

// StrategyRegistry manages named discount strategies.
// Registered instances are shared; callers must not mutate them.
type StrategyRegistry struct {
	mu                 sync.RWMutex
	discountStrategies map[string]strategy.DiscountStrategy
	defaults           map[strategy.StrategyType]string
}

// NewStrategyRegistry creates a new strategy registry
func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{
		discountStrategies: make(map[string]strategy.DiscountStrategy),
		defaults:           make(map[strategy.StrategyType]string),
	}
}

// RegisterDiscountStrategy registers a discount strategy
func (r *StrategyRegistry) RegisterDiscountStrategy(s strategy.DiscountStrategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if _, exists := r.discountStrategies[name]; exists {
		return fmt.Errorf("%w: discount strategy '%s' already registered", shared.ErrAlreadyExists, name)
	}
	r.discountStrategies[name] = s
	return nil
}

// GetDiscountStrategy returns a discount strategy by name, or the default if name is empty
func (r *StrategyRegistry) GetDiscountStrategy(name string) (strategy.DiscountStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.defaults[strategy.StrategyTypeDiscount]
		if name == "" {
			return nil, fmt.Errorf("%w: no default discount strategy set", shared.ErrNotFound)
		}
	}

	s, exists := r.discountStrategies[name]
	if !exists {
		return nil, fmt.Errorf("%w: discount strategy '%s' not found", shared.ErrNotFound, name)
	}
	return s, nil
}

// GetDiscountStrategyOrDefault returns a discount strategy by name, or the default if not found
func (r *StrategyRegistry) GetDiscountStrategyOrDefault(name string) strategy.DiscountStrategy {
	s, err := r.GetDiscountStrategy(name)
	if err != nil {
		s, _ = r.GetDiscountStrategy("")
	}
	return s
}

// ListDiscountStrategies returns all registered discount strategy names
func (r *StrategyRegistry) ListDiscountStrategies() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.discountStrategies))
	for name := range r.discountStrategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnregisterDiscountStrategy removes a discount strategy
func (r *StrategyRegistry) UnregisterDiscountStrategy(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.discountStrategies[name]; !exists {
		return fmt.Errorf("%w: discount strategy '%s' not found", shared.ErrNotFound, name)
	}
	delete(r.discountStrategies, name)

	// Clear default if it was this strategy
	if r.defaults[strategy.StrategyTypeDiscount] == name {
		delete(r.defaults, strategy.StrategyTypeDiscount)
	}
	return nil
}

// SetDefault sets the default strategy for a strategy type
func (r *StrategyRegistry) SetDefault(strategyType strategy.StrategyType, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isRegisteredLocked(strategyType, name) {
		return fmt.Errorf("%w: strategy '%s' of type '%s' not found", shared.ErrNotFound, name, strategyType)
	}

	r.defaults[strategyType] = name
	return nil
}

// GetDefault returns the default strategy name for a strategy type
func (r *StrategyRegistry) GetDefault(strategyType strategy.StrategyType) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaults[strategyType]
}

// HasDefault returns true if a default is set for the strategy type
func (r *StrategyRegistry) HasDefault(strategyType strategy.StrategyType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaults[strategyType] != ""
}

// IsRegistered returns true if a strategy with the given name is registered for the type
func (r *StrategyRegistry) IsRegistered(strategyType strategy.StrategyType, name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isRegisteredLocked(strategyType, name)
}

// isRegisteredLocked checks registration without locking (caller must hold lock)
func (r *StrategyRegistry) isRegisteredLocked(strategyType strategy.StrategyType, name string) bool {
	switch strategyType {
	case strategy.StrategyTypeDiscount:
		_, exists := r.discountStrategies[name]
		return exists
	default:
		return false
	}
}

// Stats returns registration counts for each strategy type
func (r *StrategyRegistry) Stats() map[strategy.StrategyType]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return map[strategy.StrategyType]int{
		strategy.StrategyTypeDiscount: len(r.discountStrategies),
	}
}
