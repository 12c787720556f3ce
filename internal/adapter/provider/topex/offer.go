package topex

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/domain"
)

const (
	defaultCompany = "Unknown company"
	defaultTariff  = "Standard"
)

// flexNumber accepts a JSON number or a numeric string.
// Missing, null and unparsable values leave it invalid instead of failing the record.
type flexNumber struct {
	value decimal.Decimal
	valid bool
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	text := strings.TrimSpace(string(b))
	if text == "null" {
		return nil
	}
	text = strings.Trim(text, `"`)
	text = strings.ReplaceAll(text, " ", "")
	text = strings.ReplaceAll(text, ",", ".")
	if text == "" {
		return nil
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return nil
	}
	n.value, n.valid = d, true
	return nil
}

// offerRecord is one tariff entry of the calculation response.
type offerRecord struct {
	DeliveryCompany   string     `json:"deliveryCompany"`
	DeliveryCompanyID any        `json:"deliveryCompanyId"`
	TariffID          any        `json:"tariffId"`
	TariffName        string     `json:"tariffName"`
	DeliveryMethod    string     `json:"deliveryMethod"`
	Price             flexNumber `json:"price"`
	TotalPrice        flexNumber `json:"totalPrice"`
	DeliveryTime      flexNumber `json:"deliveryTime"`
	MaxDeliveryTime   flexNumber `json:"maxDeliveryTime"`
}

// parseOffer converts one raw tariff entry into a domain offer.
// The record is rejected when it has no usable price.
func parseOffer(raw json.RawMessage, weight domain.Weight) (domain.ShippingOffer, error) {
	var rec offerRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.ShippingOffer{}, fmt.Errorf("%w: %w", domain.ErrInvalidOffer, err)
	}

	price, ok := firstValid(rec.Price, rec.TotalPrice)
	if !ok {
		return domain.ShippingOffer{}, fmt.Errorf("%w: missing price", domain.ErrInvalidOffer)
	}

	delivery := domain.DeliveryOnRequest()
	if days, ok := firstValid(rec.DeliveryTime, rec.MaxDeliveryTime); ok && !days.IsNegative() {
		delivery = domain.DeliveryDays(int(days.Ceil().IntPart()))
	}

	company := strings.TrimSpace(rec.DeliveryCompany)
	if company == "" {
		company = defaultCompany
	}
	tariff := strings.TrimSpace(rec.TariffName)
	if tariff == "" {
		tariff = defaultTariff
	}

	extra := map[string]any{}
	if rec.TariffID != nil {
		extra["tariffId"] = rec.TariffID
	}
	if rec.DeliveryCompanyID != nil {
		extra["deliveryCompanyId"] = rec.DeliveryCompanyID
	}
	var rawMap map[string]any
	if err := json.Unmarshal(raw, &rawMap); err == nil {
		extra["raw"] = rawMap
	}

	return domain.NewShippingOffer(company, price, delivery, tariff, strings.TrimSpace(rec.DeliveryMethod), weight, extra)
}

func firstValid(values ...flexNumber) (decimal.Decimal, bool) {
	for _, v := range values {
		if v.valid {
			return v.value, true
		}
	}
	return decimal.Zero, false
}
