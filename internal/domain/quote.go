package domain

// QuoteErrorType classifies a failed quote request.
type QuoteErrorType string

// Quote failure taxonomy.
const (
	QuoteErrAuth             QuoteErrorType = "auth_failed"
	QuoteErrLocationNotFound QuoteErrorType = "location_not_found"
	QuoteErrProvider         QuoteErrorType = "provider_error"
	QuoteErrTransport        QuoteErrorType = "transport_error"
	QuoteErrInternal         QuoteErrorType = "internal_error"
)

// QuoteResult is the outcome of one quote request for resolved locations and one weight.
// Failures are carried as data, never as Go errors.
type QuoteResult struct {
	// Offers are the parsed and filtered offers
	Offers []ShippingOffer

	// Cheapest is the best offer, nil when Offers is empty
	Cheapest *ShippingOffer

	// ErrorType is set when the request failed
	ErrorType QuoteErrorType

	// Error is a human-readable failure message
	Error string
}

// NewQuoteSuccess builds a successful result and selects the cheapest offer.
func NewQuoteSuccess(offers []ShippingOffer) QuoteResult {
	if offers == nil {
		offers = []ShippingOffer{}
	}
	return QuoteResult{
		Offers:   offers,
		Cheapest: CheapestOffer(offers),
	}
}

// NewQuoteFailure builds a failed result with no offers.
func NewQuoteFailure(errType QuoteErrorType, message string) QuoteResult {
	return QuoteResult{
		Offers:    []ShippingOffer{},
		ErrorType: errType,
		Error:     message,
	}
}

// Success reports whether the request succeeded.
func (r QuoteResult) Success() bool {
	return r.ErrorType == ""
}

// OffersCount returns the number of offers.
func (r QuoteResult) OffersCount() int {
	return len(r.Offers)
}
