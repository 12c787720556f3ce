package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// WeightTierResult aggregates the offers for one (route, weight) cell.
type WeightTierResult struct {
	// Weight is the tier this cell was computed for
	Weight Weight `json:"weight"`

	// Offers are all offers kept for this cell
	Offers []ShippingOffer `json:"offers"`

	// Cheapest is the lowest-price offer (ties broken by delivery time)
	Cheapest *ShippingOffer `json:"cheapest,omitempty"`

	// Error is set when the cell failed
	Error string `json:"error,omitempty"`
}

// NewWeightTierResult converts a quote result into a cell result.
func NewWeightTierResult(weight Weight, quote QuoteResult) WeightTierResult {
	if !quote.Success() {
		return NewFailedWeightTierResult(weight, quote.Error)
	}
	offers := quote.Offers
	if offers == nil {
		offers = []ShippingOffer{}
	}
	cheapest := quote.Cheapest
	if cheapest == nil {
		cheapest = CheapestOffer(offers)
	}
	return WeightTierResult{
		Weight:   weight,
		Offers:   offers,
		Cheapest: cheapest,
	}
}

// NewFailedWeightTierResult creates an error-valued cell with no offers.
func NewFailedWeightTierResult(weight Weight, message string) WeightTierResult {
	if message == "" {
		message = "unknown error"
	}
	return WeightTierResult{
		Weight: weight,
		Offers: []ShippingOffer{},
		Error:  message,
	}
}

// HasOffers reports whether the cell produced at least one offer.
func (w WeightTierResult) HasOffers() bool {
	return len(w.Offers) > 0
}

// Failed reports whether the cell carries an error.
func (w WeightTierResult) Failed() bool {
	return w.Error != ""
}

// RouteResult aggregates every weight tier computed for one route.
type RouteResult struct {
	// Route is the input route
	Route Route `json:"route"`

	// OriginID is the resolved origin location code (empty when unresolved)
	OriginID string `json:"originId,omitempty"`

	// DestinationID is the resolved destination location code (empty when unresolved)
	DestinationID string `json:"destinationId,omitempty"`

	// WeightResults holds one result per weight tier
	WeightResults map[Weight]WeightTierResult `json:"weightResults"`

	// CalculatedAt is when the route finished calculating
	CalculatedAt time.Time `json:"calculatedAt"`
}

// NewRouteResult creates an empty result for the route.
func NewRouteResult(route Route) RouteResult {
	return RouteResult{
		Route:         route,
		WeightResults: make(map[Weight]WeightTierResult),
	}
}

// Add stores a tier result, replacing any earlier result for the same weight.
func (r *RouteResult) Add(result WeightTierResult) {
	if r.WeightResults == nil {
		r.WeightResults = make(map[Weight]WeightTierResult)
	}
	r.WeightResults[result.Weight] = result
}

// Weights returns the tiers present in ascending order.
func (r RouteResult) Weights() []Weight {
	weights := make([]Weight, 0, len(r.WeightResults))
	for w := range r.WeightResults {
		weights = append(weights, w)
	}
	sort.Slice(weights, func(i, j int) bool { return weights[i] < weights[j] })
	return weights
}

// TotalOffers returns the number of offers across all tiers.
func (r RouteResult) TotalOffers() int {
	total := 0
	for _, wr := range r.WeightResults {
		total += len(wr.Offers)
	}
	return total
}

// SuccessfulWeights returns the tiers with at least one offer, ascending.
func (r RouteResult) SuccessfulWeights() []Weight {
	var weights []Weight
	for _, w := range r.Weights() {
		if r.WeightResults[w].HasOffers() {
			weights = append(weights, w)
		}
	}
	return weights
}

// CheapestOffers returns the cheapest offer of each tier that has one, by ascending weight.
func (r RouteResult) CheapestOffers() []ShippingOffer {
	var offers []ShippingOffer
	for _, w := range r.Weights() {
		if c := r.WeightResults[w].Cheapest; c != nil {
			offers = append(offers, *c)
		}
	}
	return offers
}

// BestWeight returns the tier whose cheapest offer has the lowest price per kilogram.
// The lighter tier wins an exact tie.
func (r RouteResult) BestWeight() (Weight, bool) {
	var (
		best      Weight
		bestPerKg decimal.Decimal
		found     bool
	)
	for _, w := range r.Weights() {
		c := r.WeightResults[w].Cheapest
		if c == nil || !w.IsValid() {
			continue
		}
		perKg := c.Price.Div(decimal.NewFromFloat(w.Kilograms()))
		if !found || perKg.LessThan(bestPerKg) {
			best, bestPerKg, found = w, perKg, true
		}
	}
	return best, found
}

// IsSuccessful reports whether any tier produced an offer.
func (r RouteResult) IsSuccessful() bool {
	for _, wr := range r.WeightResults {
		if wr.HasOffers() {
			return true
		}
	}
	return false
}

// IsResolved reports whether both endpoints were resolved to location codes.
func (r RouteResult) IsResolved() bool {
	return r.OriginID != "" && r.DestinationID != ""
}

// Summary holds batch-level counters derived from the route results.
type Summary struct {
	TotalRoutes      int            `json:"totalRoutes"`
	SuccessfulRoutes int            `json:"successfulRoutes"`
	ResolvedRoutes   int            `json:"resolvedRoutes"`
	TotalCells       int            `json:"totalCells"`
	FailedCells      int            `json:"failedCells"`
	TotalOffers      int            `json:"totalOffers"`
	SuccessRate      float64        `json:"successRate"`
	TierSuccess      map[Weight]int `json:"tierSuccess"`
}

// ResultAggregate is the full output of one calculation batch.
type ResultAggregate struct {
	Routes     []RouteResult `json:"routes"`
	Summary    Summary       `json:"summary"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
}

// Summarize derives the batch summary from route results.
// SuccessRate is a percentage of routes with at least one offer.
func Summarize(routes []RouteResult) Summary {
	s := Summary{
		TotalRoutes: len(routes),
		TierSuccess: make(map[Weight]int),
	}
	for _, r := range routes {
		if r.IsSuccessful() {
			s.SuccessfulRoutes++
		}
		if r.IsResolved() {
			s.ResolvedRoutes++
		}
		for w, wr := range r.WeightResults {
			s.TotalCells++
			if wr.Failed() {
				s.FailedCells++
			}
			if wr.HasOffers() {
				s.TierSuccess[w]++
			}
			s.TotalOffers += len(wr.Offers)
		}
	}
	if s.TotalRoutes > 0 {
		s.SuccessRate = float64(s.SuccessfulRoutes) / float64(s.TotalRoutes) * 100
	}
	return s
}
