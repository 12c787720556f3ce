// Package mock provides test doubles for the shipping quote provider.
// These mocks are designed for integration testing where we need
// configurable behavior (delays, errors, specific responses).
package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/domain"
)

// Directory is a configurable in-memory implementation of domain.LocationDirectory.
// A non-empty query returns locations whose name contains it (case-insensitive);
// an empty query pages through the whole listing.
type Directory struct {
	locations []domain.Location
	err       error
	delay     time.Duration
	calls     int
	queries   []string
	mu        sync.Mutex
}

// NewDirectory creates a directory holding the given locations in listing order.
func NewDirectory(locations ...domain.Location) *Directory {
	return &Directory{locations: locations}
}

// WithError configures the directory to fail every call.
func (d *Directory) WithError(err error) *Directory {
	d.err = err
	return d
}

// WithDelay configures the directory to wait before responding.
func (d *Directory) WithDelay(delay time.Duration) *Directory {
	d.delay = delay
	return d
}

// SearchLocations implements domain.LocationDirectory.
func (d *Directory) SearchLocations(ctx context.Context, query string, page, pageSize int) ([]domain.Location, error) {
	d.mu.Lock()
	d.calls++
	d.queries = append(d.queries, query)
	d.mu.Unlock()

	if err := wait(ctx, d.delay); err != nil {
		return nil, err
	}
	if d.err != nil {
		return nil, d.err
	}

	matches := d.locations
	if query != "" {
		matches = nil
		q := strings.ToLower(query)
		for _, loc := range d.locations {
			if strings.Contains(strings.ToLower(loc.Name), q) {
				matches = append(matches, loc)
			}
		}
	}

	if page < 1 || pageSize <= 0 {
		return nil, nil
	}
	start := (page - 1) * pageSize
	if start >= len(matches) {
		return []domain.Location{}, nil
	}
	end := min(start+pageSize, len(matches))
	return append([]domain.Location(nil), matches[start:end]...), nil
}

// CallCount returns the number of SearchLocations calls.
func (d *Directory) CallCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// Queries returns the queries received, in call order.
func (d *Directory) Queries() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.queries...)
}

var _ domain.LocationDirectory = (*Directory)(nil)

// QuoteFunc produces the result for one quote cell.
type QuoteFunc func(originID, destinationID string, weight domain.Weight) domain.QuoteResult

// QuoteClient is a configurable mock implementation of domain.QuoteClient.
type QuoteClient struct {
	fn       QuoteFunc
	delay    time.Duration
	calls    int
	inFlight int
	peak     int
	mu       sync.Mutex
}

// NewQuoteClient creates a quote client answering with fn.
// A nil fn answers every cell with SampleOffers.
func NewQuoteClient(fn QuoteFunc) *QuoteClient {
	if fn == nil {
		fn = func(_, _ string, w domain.Weight) domain.QuoteResult {
			return domain.NewQuoteSuccess(SampleOffers(w))
		}
	}
	return &QuoteClient{fn: fn}
}

// WithDelay configures the client to wait before answering each cell.
func (q *QuoteClient) WithDelay(d time.Duration) *QuoteClient {
	q.delay = d
	return q
}

// Quote implements domain.QuoteClient.
func (q *QuoteClient) Quote(ctx context.Context, originID, destinationID string, weight domain.Weight) domain.QuoteResult {
	q.mu.Lock()
	q.calls++
	q.inFlight++
	q.peak = max(q.peak, q.inFlight)
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.inFlight--
		q.mu.Unlock()
	}()

	if err := wait(ctx, q.delay); err != nil {
		return domain.NewQuoteFailure(domain.QuoteErrTransport, err.Error())
	}
	return q.fn(originID, destinationID, weight)
}

// CallCount returns the number of Quote calls.
func (q *QuoteClient) CallCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.calls
}

// PeakConcurrency returns the highest number of simultaneous Quote calls observed.
func (q *QuoteClient) PeakConcurrency() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.peak
}

var _ domain.QuoteClient = (*QuoteClient)(nil)

// SampleLocations returns a small directory listing with realistic names.
func SampleLocations() []domain.Location {
	return []domain.Location{
		{ID: "77", Name: "Москва"},
		{ID: "78", Name: "Санкт-Петербург"},
		{ID: "16", Name: "Казань"},
		{ID: "66", Name: "Екатеринбург"},
		{ID: "54", Name: "Новосибирск"},
		{ID: "52", Name: "Нижний Новгород"},
	}
}

// SampleOffers returns three offers for the weight: a cheap slow one,
// a fast expensive one and one with delivery on request.
func SampleOffers(w domain.Weight) []domain.ShippingOffer {
	kg := decimal.NewFromFloat(w.Kilograms())
	return []domain.ShippingOffer{
		sampleOffer("Деловые Линии", decimal.NewFromInt(300).Add(kg.Mul(decimal.NewFromInt(40))), domain.DeliveryDays(6), w),
		sampleOffer("СДЭК", decimal.NewFromInt(450).Add(kg.Mul(decimal.NewFromInt(60))), domain.DeliveryDays(2), w),
		sampleOffer("ПЭК", decimal.NewFromInt(500).Add(kg.Mul(decimal.NewFromInt(55))), domain.DeliveryOnRequest(), w),
	}
}

func sampleOffer(company string, price decimal.Decimal, delivery domain.DeliveryTime, w domain.Weight) domain.ShippingOffer {
	o, err := domain.NewShippingOffer(company, price, delivery, "Стандарт", "До дверей", w, nil)
	if err != nil {
		panic(fmt.Sprintf("sample offer: %v", err))
	}
	return o
}

func wait(ctx context.Context, d time.Duration) error {
	if d > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
		}
	}
	return ctx.Err()
}
