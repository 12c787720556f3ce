// Package usecase contains the business logic of the shipping quote engine.
// It resolves place names to provider locations and fans (route, weight)
// quote cells out over a bounded worker pool.
package usecase

import "github.com/shipping-quote/shipping-quote-aggregation-system/internal/domain"

// CalculateOptions contains optional parameters for one calculation batch.
type CalculateOptions struct {
	// Weights overrides the configured weight tiers when non-empty
	Weights []domain.Weight

	// SortBy specifies how offers inside each tier are ordered (default: price)
	SortBy SortOption
}

// DefaultCalculateOptions returns CalculateOptions using the configured tiers.
func DefaultCalculateOptions() CalculateOptions {
	return CalculateOptions{
		SortBy: SortByPrice,
	}
}
