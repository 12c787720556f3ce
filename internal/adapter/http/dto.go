package http

import (
	"time"

	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/domain"
)

// CalculationResponseDTO is the data transfer object for a calculation batch.
type CalculationResponseDTO struct {
	RequestID  string           `json:"requestId,omitempty" example:"0b6f1c52-5d0e-4c44-9a51-2f0c9c4d7e1a"`
	Routes     []RouteResultDTO `json:"routes"`
	Summary    SummaryDTO       `json:"summary"`
	StartedAt  string           `json:"startedAt"`
	FinishedAt string           `json:"finishedAt"`
	DurationMs int64            `json:"durationMs"`
}

// RouteResultDTO represents one route with all of its weight tiers.
type RouteResultDTO struct {
	RowIndex          int             `json:"rowIndex"`
	Origin            string          `json:"origin"`
	Destination       string          `json:"destination"`
	DisplayName       string          `json:"displayName"`
	OriginID          string          `json:"originId,omitempty"`
	DestinationID     string          `json:"destinationId,omitempty"`
	Resolved          bool            `json:"resolved"`
	Tiers             []WeightTierDTO `json:"tiers"`
	TotalOffers       int             `json:"totalOffers"`
	SuccessfulWeights []float64       `json:"successfulWeights"`
	BestWeight        *float64        `json:"bestWeight,omitempty"`
	CheapestOffers    []OfferDTO      `json:"cheapestOffers"`
	CalculatedAt      string          `json:"calculatedAt"`
}

// WeightTierDTO represents the offers of one (route, weight) cell.
type WeightTierDTO struct {
	Weight   float64    `json:"weight" example:"5"`
	Offers   []OfferDTO `json:"offers"`
	Cheapest *OfferDTO  `json:"cheapest,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// OfferDTO represents one carrier offer.
type OfferDTO struct {
	Company           string `json:"company" example:"СДЭК"`
	Price             string `json:"price" example:"450.50"`
	PricePerKg        string `json:"pricePerKg" example:"90.10"`
	DeliveryDays      *int   `json:"deliveryDays,omitempty" example:"3"`
	DeliveryOnRequest bool   `json:"deliveryOnRequest"`
	Tariff            string `json:"tariff" example:"Экспресс"`
	DeliveryMode      string `json:"deliveryMode" example:"До дверей"`
}

// SummaryDTO contains batch-level counters.
type SummaryDTO struct {
	TotalRoutes      int            `json:"totalRoutes"`
	SuccessfulRoutes int            `json:"successfulRoutes"`
	ResolvedRoutes   int            `json:"resolvedRoutes"`
	TotalCells       int            `json:"totalCells"`
	FailedCells      int            `json:"failedCells"`
	TotalOffers      int            `json:"totalOffers"`
	SuccessRate      float64        `json:"successRate" example:"66.67"`
	TierSuccess      map[string]int `json:"tierSuccess"`
}

// LocationDTO is the result of a single place name lookup.
type LocationDTO struct {
	Query string `json:"query" example:"спб"`
	ID    string `json:"id" example:"78"`
	Name  string `json:"name" example:"Санкт-Петербург"`
}

// ToCalculationResponseDTO converts a domain ResultAggregate to its DTO.
func ToCalculationResponseDTO(agg *domain.ResultAggregate) *CalculationResponseDTO {
	if agg == nil {
		return nil
	}

	dto := &CalculationResponseDTO{
		Routes:     make([]RouteResultDTO, len(agg.Routes)),
		Summary:    toSummaryDTO(agg.Summary),
		StartedAt:  formatTime(agg.StartedAt),
		FinishedAt: formatTime(agg.FinishedAt),
		DurationMs: agg.FinishedAt.Sub(agg.StartedAt).Milliseconds(),
	}
	for i, r := range agg.Routes {
		dto.Routes[i] = ToRouteResultDTO(r)
	}
	return dto
}

// ToRouteResultDTO converts a domain RouteResult to its DTO.
func ToRouteResultDTO(r domain.RouteResult) RouteResultDTO {
	dto := RouteResultDTO{
		RowIndex:          r.Route.RowIndex,
		Origin:            r.Route.Origin,
		Destination:       r.Route.Destination,
		DisplayName:       r.Route.DisplayName(),
		OriginID:          r.OriginID,
		DestinationID:     r.DestinationID,
		Resolved:          r.IsResolved(),
		TotalOffers:       r.TotalOffers(),
		SuccessfulWeights: []float64{},
		CheapestOffers:    []OfferDTO{},
		CalculatedAt:      formatTime(r.CalculatedAt),
	}

	weights := r.Weights()
	dto.Tiers = make([]WeightTierDTO, len(weights))
	for i, w := range weights {
		dto.Tiers[i] = ToWeightTierDTO(r.WeightResults[w])
	}
	for _, w := range r.SuccessfulWeights() {
		dto.SuccessfulWeights = append(dto.SuccessfulWeights, w.Kilograms())
	}
	for _, o := range r.CheapestOffers() {
		dto.CheapestOffers = append(dto.CheapestOffers, ToOfferDTO(o))
	}
	if best, ok := r.BestWeight(); ok {
		kg := best.Kilograms()
		dto.BestWeight = &kg
	}
	return dto
}

// ToWeightTierDTO converts a domain WeightTierResult to its DTO.
func ToWeightTierDTO(wr domain.WeightTierResult) WeightTierDTO {
	dto := WeightTierDTO{
		Weight: wr.Weight.Kilograms(),
		Offers: make([]OfferDTO, len(wr.Offers)),
		Error:  wr.Error,
	}
	for i, o := range wr.Offers {
		dto.Offers[i] = ToOfferDTO(o)
	}
	if wr.Cheapest != nil {
		c := ToOfferDTO(*wr.Cheapest)
		dto.Cheapest = &c
	}
	return dto
}

// ToOfferDTO converts a domain ShippingOffer to its DTO.
func ToOfferDTO(o domain.ShippingOffer) OfferDTO {
	dto := OfferDTO{
		Company:           o.Company,
		Price:             o.Price.StringFixed(2),
		PricePerKg:        o.PricePerKg().StringFixed(2),
		DeliveryOnRequest: o.Delivery.OnRequest,
		Tariff:            o.Tariff,
		DeliveryMode:      o.DeliveryMode,
	}
	if !o.Delivery.OnRequest {
		days := o.Delivery.Days
		dto.DeliveryDays = &days
	}
	return dto
}

func toSummaryDTO(s domain.Summary) SummaryDTO {
	tiers := make(map[string]int, len(s.TierSuccess))
	for w, n := range s.TierSuccess {
		tiers[w.String()] = n
	}
	return SummaryDTO{
		TotalRoutes:      s.TotalRoutes,
		SuccessfulRoutes: s.SuccessfulRoutes,
		ResolvedRoutes:   s.ResolvedRoutes,
		TotalCells:       s.TotalCells,
		FailedCells:      s.FailedCells,
		TotalOffers:      s.TotalOffers,
		SuccessRate:      s.SuccessRate,
		TierSuccess:      tiers,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
