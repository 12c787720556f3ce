package http

import (
	"fmt"

	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/domain"
	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/usecase"
)

// ToDomainRoutes converts request rows to domain routes.
// Rows that violate route invariants are reported per index.
func ToDomainRoutes(req *CalculateRequest) ([]domain.Route, error) {
	routes := make([]domain.Route, 0, len(req.Routes))
	errs := &ValidationErrors{}
	for i, r := range req.Routes {
		route, err := domain.NewRoute(r.Origin, r.Destination, r.RowIndex)
		if err != nil {
			errs.Add(fmt.Sprintf("routes[%d]", i), err.Error())
			continue
		}
		routes = append(routes, route)
	}
	if errs.HasErrors() {
		return nil, errs
	}
	return routes, nil
}

// ToCalculateOptions converts request fields to usecase.CalculateOptions.
func ToCalculateOptions(req *CalculateRequest) (usecase.CalculateOptions, error) {
	sortBy, err := usecase.ParseSortOption(req.SortBy)
	if err != nil {
		return usecase.CalculateOptions{}, err
	}

	opts := usecase.DefaultCalculateOptions()
	opts.SortBy = sortBy
	if len(req.Weights) > 0 {
		opts.Weights = make([]domain.Weight, len(req.Weights))
		for i, w := range req.Weights {
			opts.Weights[i] = domain.Weight(w)
		}
	}
	return opts, nil
}
