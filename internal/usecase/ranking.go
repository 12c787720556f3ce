package usecase

import (
	"fmt"
	"sort"

	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/domain"
)

// SortOption selects the ordering of offers within a weight tier.
type SortOption string

// Supported offer orderings.
const (
	// SortByPrice orders cheapest first; equal prices fall back to delivery time.
	SortByPrice SortOption = "price"

	// SortByDelivery orders fastest first; equal delivery falls back to price.
	// On-request offers go last.
	SortByDelivery SortOption = "delivery"
)

// ParseSortOption validates a sort option string. Empty means SortByPrice.
func ParseSortOption(s string) (SortOption, error) {
	switch SortOption(s) {
	case "", SortByPrice:
		return SortByPrice, nil
	case SortByDelivery:
		return SortByDelivery, nil
	default:
		return "", fmt.Errorf("unknown sort option %q", s)
	}
}

// SortOffers returns a sorted copy of offers.
//
// Behavior:
//   - Does NOT mutate the input slice
//   - The sort is stable, so exact ties keep provider order
//   - An unknown option sorts by price
func SortOffers(offers []domain.ShippingOffer, by SortOption) []domain.ShippingOffer {
	sorted := make([]domain.ShippingOffer, len(offers))
	copy(sorted, offers)

	less := func(i, j int) bool { return sorted[i].BetterThan(sorted[j]) }
	if by == SortByDelivery {
		less = func(i, j int) bool {
			a, b := sorted[i], sorted[j]
			if a.Delivery.Less(b.Delivery) {
				return true
			}
			if b.Delivery.Less(a.Delivery) {
				return false
			}
			return a.Price.LessThan(b.Price)
		}
	}

	sort.SliceStable(sorted, less)
	return sorted
}
