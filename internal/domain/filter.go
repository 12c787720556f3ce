package domain

import "strings"

// DeliveryModeFilter is an allow-list of delivery-mode substrings.
// An empty filter keeps every offer.
type DeliveryModeFilter []string

// NewDeliveryModeFilter builds a filter, dropping blank entries.
func NewDeliveryModeFilter(modes ...string) DeliveryModeFilter {
	f := make(DeliveryModeFilter, 0, len(modes))
	for _, m := range modes {
		if m = strings.TrimSpace(m); m != "" {
			f = append(f, m)
		}
	}
	return f
}

// IsEmpty reports whether the filter lets everything through.
func (f DeliveryModeFilter) IsEmpty() bool {
	return len(f) == 0
}

// Matches reports whether the offer's delivery mode contains one of the allowed substrings.
func (f DeliveryModeFilter) Matches(offer ShippingOffer) bool {
	if f.IsEmpty() {
		return true
	}
	for _, allowed := range f {
		if strings.Contains(offer.DeliveryMode, allowed) {
			return true
		}
	}
	return false
}

// Apply returns the offers that match the filter.
// The input slice is never mutated.
func (f DeliveryModeFilter) Apply(offers []ShippingOffer) []ShippingOffer {
	if f.IsEmpty() {
		return offers
	}
	result := make([]ShippingOffer, 0, len(offers))
	for _, o := range offers {
		if f.Matches(o) {
			result = append(result, o)
		}
	}
	return result
}
