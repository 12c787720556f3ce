package domain

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// onRequestLabel is the JSON form of a delivery time the provider did not quote.
const onRequestLabel = "on_request"

// DeliveryTime is a delivery estimate in whole days.
// OnRequest marks offers whose delivery time is only available on request;
// such offers compare after any concrete estimate.
type DeliveryTime struct {
	Days      int
	OnRequest bool
}

// DeliveryDays creates a concrete delivery estimate.
func DeliveryDays(days int) DeliveryTime {
	return DeliveryTime{Days: days}
}

// DeliveryOnRequest creates an "on request" delivery estimate.
func DeliveryOnRequest() DeliveryTime {
	return DeliveryTime{OnRequest: true}
}

// Less reports whether d is a strictly shorter estimate than other.
func (d DeliveryTime) Less(other DeliveryTime) bool {
	switch {
	case d.OnRequest:
		return false
	case other.OnRequest:
		return true
	default:
		return d.Days < other.Days
	}
}

// String returns the number of days or "on_request".
func (d DeliveryTime) String() string {
	if d.OnRequest {
		return onRequestLabel
	}
	return strconv.Itoa(d.Days)
}

// MarshalJSON encodes the estimate as an integer or the string "on_request".
func (d DeliveryTime) MarshalJSON() ([]byte, error) {
	if d.OnRequest {
		return json.Marshal(onRequestLabel)
	}
	return json.Marshal(d.Days)
}

// UnmarshalJSON accepts an integer or the string "on_request".
func (d *DeliveryTime) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		if label != onRequestLabel {
			return fmt.Errorf("unknown delivery time %q", label)
		}
		*d = DeliveryOnRequest()
		return nil
	}
	var days int
	if err := json.Unmarshal(data, &days); err != nil {
		return fmt.Errorf("decode delivery time: %w", err)
	}
	*d = DeliveryDays(days)
	return nil
}

// ShippingOffer is one company's price and time quote for a route and weight.
type ShippingOffer struct {
	// Company is the carrier name
	Company string `json:"company"`

	// Price is the offer price in currency units
	Price decimal.Decimal `json:"price"`

	// Delivery is the delivery estimate
	Delivery DeliveryTime `json:"deliveryDays"`

	// Tariff is the tariff or service label
	Tariff string `json:"tariff"`

	// DeliveryMode is the delivery method label (e.g. door-to-door)
	DeliveryMode string `json:"deliveryMode,omitempty"`

	// Weight is the tier this offer was quoted for
	Weight Weight `json:"weight"`

	// Extra carries provider-specific fields for audit and debugging
	Extra map[string]any `json:"extra,omitempty"`
}

// NewShippingOffer validates and creates an offer.
func NewShippingOffer(company string, price decimal.Decimal, delivery DeliveryTime, tariff, mode string, weight Weight, extra map[string]any) (ShippingOffer, error) {
	if price.IsNegative() {
		return ShippingOffer{}, fmt.Errorf("%w: price must not be negative, got %s", ErrInvalidOffer, price)
	}
	if !weight.IsValid() {
		return ShippingOffer{}, fmt.Errorf("%w: weight must be positive, got %s", ErrInvalidOffer, weight)
	}
	if !delivery.OnRequest && delivery.Days < 0 {
		return ShippingOffer{}, fmt.Errorf("%w: delivery days must not be negative, got %d", ErrInvalidOffer, delivery.Days)
	}
	return ShippingOffer{
		Company:      company,
		Price:        price,
		Delivery:     delivery,
		Tariff:       tariff,
		DeliveryMode: mode,
		Weight:       weight,
		Extra:        extra,
	}, nil
}

// PricePerKg returns the price divided by the quoted weight.
func (o ShippingOffer) PricePerKg() decimal.Decimal {
	if !o.Weight.IsValid() {
		return decimal.Zero
	}
	return o.Price.Div(decimal.NewFromFloat(o.Weight.Kilograms()))
}

// BetterThan reports whether o beats other: lower price wins,
// equal prices fall back to the shorter delivery estimate.
func (o ShippingOffer) BetterThan(other ShippingOffer) bool {
	switch o.Price.Cmp(other.Price) {
	case -1:
		return true
	case 1:
		return false
	default:
		return o.Delivery.Less(other.Delivery)
	}
}

// CheapestOffer returns the best offer of the list, or nil for an empty list.
// Exact ties on price and delivery time keep the earliest offer.
func CheapestOffer(offers []ShippingOffer) *ShippingOffer {
	if len(offers) == 0 {
		return nil
	}
	best := offers[0]
	for _, o := range offers[1:] {
		if o.BetterThan(best) {
			best = o
		}
	}
	return &best
}
