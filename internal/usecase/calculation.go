package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/domain"
	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/infrastructure/logger"
	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/infrastructure/timeutil"
)

// Default orchestration values.
const (
	DefaultWorkers = 4

	cancelledMessage = "calculation cancelled"
)

// DefaultWeights are the weight tiers quoted for every route.
var DefaultWeights = []domain.Weight{0.5, 1, 5, 10, 20, 30}

// CalculationUseCase defines the batch quote calculation.
type CalculationUseCase interface {
	// Calculate resolves every route and quotes each (route, weight) cell.
	// Per-cell failures are recorded in the aggregate; only invalid input
	// is returned as an error.
	Calculate(ctx context.Context, routes []domain.Route, opts CalculateOptions) (*domain.ResultAggregate, error)
}

// CalculationConfig contains configuration options for the use case.
type CalculationConfig struct {
	// Weights are the default tiers, in report order
	Weights []domain.Weight

	// Workers bounds concurrent quote cells
	Workers int

	// ResolveWorkers bounds concurrent name resolutions (default: Workers)
	ResolveWorkers int

	// BatchTimeout caps one Calculate call; zero means no limit
	BatchTimeout time.Duration
}

// DefaultCalculationConfig returns the default configuration.
func DefaultCalculationConfig() CalculationConfig {
	return CalculationConfig{
		Weights: DefaultWeights,
		Workers: DefaultWorkers,
	}
}

type calculationUseCase struct {
	resolver       domain.LocationResolver
	quotes         domain.QuoteClient
	weights        []domain.Weight
	workers        int
	resolveWorkers int
	batchTimeout   time.Duration
	clock          timeutil.Clock
	log            zerolog.Logger
}

// CalculationOption customizes the use case.
type CalculationOption func(*calculationUseCase)

// WithCalculationClock injects the clock used for result timestamps.
func WithCalculationClock(c timeutil.Clock) CalculationOption {
	return func(uc *calculationUseCase) {
		uc.clock = timeutil.OrReal(c)
	}
}

// WithCalculationLogger sets the use case logger.
func WithCalculationLogger(log zerolog.Logger) CalculationOption {
	return func(uc *calculationUseCase) {
		uc.log = log
	}
}

// NewCalculationUseCase creates a CalculationUseCase.
// If config is nil, default values are used.
func NewCalculationUseCase(resolver domain.LocationResolver, quotes domain.QuoteClient, config *CalculationConfig, opts ...CalculationOption) CalculationUseCase {
	cfg := DefaultCalculationConfig()
	if config != nil {
		if len(config.Weights) > 0 {
			cfg.Weights = config.Weights
		}
		if config.Workers > 0 {
			cfg.Workers = config.Workers
		}
		cfg.ResolveWorkers = config.ResolveWorkers
		cfg.BatchTimeout = config.BatchTimeout
	}
	if cfg.ResolveWorkers <= 0 {
		cfg.ResolveWorkers = cfg.Workers
	}

	uc := &calculationUseCase{
		resolver:       resolver,
		quotes:         quotes,
		weights:        cfg.Weights,
		workers:        cfg.Workers,
		resolveWorkers: cfg.ResolveWorkers,
		batchTimeout:   cfg.BatchTimeout,
		clock:          timeutil.RealClock{},
		log:            zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// resolution is the outcome of resolving one place name.
type resolution struct {
	location domain.Location
	err      error
}

// cell is one (route, weight) unit of work.
type cell struct {
	route  int
	weight domain.Weight
}

// Calculate implements CalculationUseCase.Calculate.
func (uc *calculationUseCase) Calculate(ctx context.Context, routes []domain.Route, opts CalculateOptions) (*domain.ResultAggregate, error) {
	if len(routes) == 0 {
		return nil, domain.ErrNoRoutes
	}
	weights := uc.weights
	if len(opts.Weights) > 0 {
		weights = opts.Weights
	}
	if err := domain.ValidateWeights(weights); err != nil {
		return nil, err
	}

	if uc.batchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.batchTimeout)
		defer cancel()
	}

	log := logger.ForRequest(ctx, uc.log)
	started := uc.clock.Now()
	log.Info().
		Int("routes", len(routes)).
		Int("weights", len(weights)).
		Int("workers", uc.workers).
		Msg("Calculation started")

	locations := uc.resolveAll(ctx, routes)

	results := make([]domain.RouteResult, len(routes))
	cells := make([]cell, 0, len(routes)*len(weights))
	for i, route := range routes {
		res := domain.NewRouteResult(route)

		if err := route.Validate(); err != nil {
			fillFailed(&res, weights, err.Error())
			results[i] = res
			continue
		}
		origin, destination := locations[route.Origin], locations[route.Destination]
		switch {
		case cancelledBy(ctx, origin.err), cancelledBy(ctx, destination.err):
			fillFailed(&res, weights, cancelledMessage)
		case origin.err != nil:
			fillFailed(&res, weights, "location not found: "+route.Origin)
		case destination.err != nil:
			fillFailed(&res, weights, "location not found: "+route.Destination)
		default:
			res.OriginID = origin.location.ID
			res.DestinationID = destination.location.ID
			for _, w := range weights {
				cells = append(cells, cell{route: i, weight: w})
			}
		}
		results[i] = res
	}

	cellResults := uc.runCells(ctx, results, cells)

	finished := uc.clock.Now()
	for idx, c := range cells {
		wr := cellResults[idx]
		wr.Offers = SortOffers(wr.Offers, opts.SortBy)
		results[c.route].Add(wr)
	}
	for i := range results {
		results[i].CalculatedAt = finished
	}

	agg := &domain.ResultAggregate{
		Routes:     results,
		Summary:    domain.Summarize(results),
		StartedAt:  started,
		FinishedAt: finished,
	}
	log.Info().
		Int("routes", agg.Summary.TotalRoutes).
		Int("successful_routes", agg.Summary.SuccessfulRoutes).
		Int("failed_cells", agg.Summary.FailedCells).
		Int("offers", agg.Summary.TotalOffers).
		Float64("success_rate", agg.Summary.SuccessRate).
		Dur("duration", finished.Sub(started)).
		Msg("Calculation finished")
	return agg, nil
}

// resolveAll resolves every distinct place name once, in order of first
// appearance, with bounded concurrency. Invalid routes are skipped.
func (uc *calculationUseCase) resolveAll(ctx context.Context, routes []domain.Route) map[string]resolution {
	var names []string
	seen := make(map[string]struct{})
	for _, r := range routes {
		if r.Validate() != nil {
			continue
		}
		for _, name := range []string{r.Origin, r.Destination} {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}

	resolved := make([]resolution, len(names))
	g := new(errgroup.Group)
	g.SetLimit(uc.resolveWorkers)
	for i, name := range names {
		g.Go(func() error {
			resolved[i] = uc.resolveOne(ctx, name)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]resolution, len(names))
	unresolved := 0
	for i, name := range names {
		out[name] = resolved[i]
		if resolved[i].err != nil {
			unresolved++
		}
	}
	reqLog := logger.ForRequest(ctx, uc.log)
	reqLog.Info().
		Int("names", len(names)).
		Int("unresolved", unresolved).
		Msg("Locations resolved")
	return out
}

func (uc *calculationUseCase) resolveOne(ctx context.Context, name string) (res resolution) {
	defer func() {
		if r := recover(); r != nil {
			res = resolution{err: fmt.Errorf("resolve %q panicked: %v", name, r)}
		}
	}()

	if err := ctx.Err(); err != nil {
		return resolution{err: err}
	}
	log := logger.ForRequest(ctx, uc.log)
	loc, err := uc.resolver.Resolve(ctx, name)
	if err != nil {
		ev := log.Warn()
		if errors.Is(err, domain.ErrLocationNotFound) {
			ev = log.Info()
		}
		ev.Err(err).Str("name", name).Msg("Location unresolved")
		return resolution{err: err}
	}
	log.Debug().Str("name", name).Str("location_id", loc.ID).Msg("Location resolved")
	return resolution{location: loc}
}

// runCells computes all cells on the worker pool. Results are indexed like cells.
func (uc *calculationUseCase) runCells(ctx context.Context, routes []domain.RouteResult, cells []cell) []domain.WeightTierResult {
	out := make([]domain.WeightTierResult, len(cells))
	total := len(cells)
	if total == 0 {
		return out
	}

	step := total / 10
	if step == 0 {
		step = 1
	}
	log := logger.ForRequest(ctx, uc.log)
	var done atomic.Int64
	progress := func() {
		n := int(done.Add(1))
		if n%step == 0 || n == total {
			log.Info().
				Int("done", n).
				Int("total", total).
				Int("percent", n*100/total).
				Msg("Calculation progress")
		}
	}

	g := new(errgroup.Group)
	g.SetLimit(uc.workers)
	for idx, c := range cells {
		if ctx.Err() != nil {
			out[idx] = domain.NewFailedWeightTierResult(c.weight, cancelledMessage)
			progress()
			continue
		}
		route := routes[c.route]
		g.Go(func() error {
			if ctx.Err() != nil {
				out[idx] = domain.NewFailedWeightTierResult(c.weight, cancelledMessage)
			} else {
				out[idx] = uc.computeCell(ctx, route, c.weight)
			}
			progress()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// computeCell quotes one (route, weight) cell. It never panics.
func (uc *calculationUseCase) computeCell(ctx context.Context, route domain.RouteResult, weight domain.Weight) (result domain.WeightTierResult) {
	log := logger.ForRequest(ctx, uc.log)
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("route", route.Route.DisplayName()).
				Stringer("weight", weight).
				Msg("Quote cell panicked")
			result = domain.NewFailedWeightTierResult(weight, fmt.Sprintf("internal error: %v", r))
		}
	}()

	quote := uc.quotes.Quote(ctx, route.OriginID, route.DestinationID, weight)
	if !quote.Success() {
		log.Debug().
			Str("route", route.Route.DisplayName()).
			Stringer("weight", weight).
			Str("error_type", string(quote.ErrorType)).
			Str("error", quote.Error).
			Msg("Quote cell failed")
	}
	return domain.NewWeightTierResult(weight, quote)
}

// cancelledBy reports whether err is the batch context giving up.
func cancelledBy(ctx context.Context, err error) bool {
	return err != nil && ctx.Err() != nil &&
		(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}

func fillFailed(res *domain.RouteResult, weights []domain.Weight, message string) {
	for _, w := range weights {
		res.Add(domain.NewFailedWeightTierResult(w, message))
	}
}

var _ CalculationUseCase = (*calculationUseCase)(nil)
