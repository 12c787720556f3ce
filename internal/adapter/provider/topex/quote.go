package topex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/domain"
	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/infrastructure/logger"
)

// QuoteConfig holds the fixed calculation attributes of the account.
type QuoteConfig struct {
	UserID           string
	CargoType        string
	CargoSeatsNumber int
	DeliveryMethod   string

	// RateLimitDelay is the minimum spacing between calculation requests,
	// retries included, shared by every caller of the client
	RateLimitDelay time.Duration

	// Filter keeps only offers whose delivery mode matches
	Filter domain.DeliveryModeFilter
}

// QuoteClient implements domain.QuoteClient over GET /cse/calc.
type QuoteClient struct {
	client  *Client
	session *Session
	cfg     QuoteConfig
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewQuoteClient creates a quote client. A non-positive delay disables the rate gate.
func NewQuoteClient(client *Client, session *Session, cfg QuoteConfig, log zerolog.Logger) *QuoteClient {
	limit := rate.Inf
	if cfg.RateLimitDelay > 0 {
		limit = rate.Every(cfg.RateLimitDelay)
	}
	if cfg.CargoSeatsNumber <= 0 {
		cfg.CargoSeatsNumber = 1
	}
	return &QuoteClient{
		client:  client,
		session: session,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		log:     log,
	}
}

// Quote requests offers for one route and weight tier.
// Every failure is reported inside the result.
func (q *QuoteClient) Quote(ctx context.Context, originID, destinationID string, weight domain.Weight) (result domain.QuoteResult) {
	log := logger.ForRequest(ctx, q.log).With().
		Str("origin_id", originID).
		Str("destination_id", destinationID).
		Stringer("weight", weight).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic while quoting")
			result = domain.NewQuoteFailure(domain.QuoteErrInternal, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if err := q.session.ensure(ctx); err != nil {
		if ctx.Err() != nil {
			return domain.NewQuoteFailure(domain.QuoteErrTransport, err.Error())
		}
		return domain.NewQuoteFailure(domain.QuoteErrAuth, err.Error())
	}

	if strings.TrimSpace(originID) == "" || strings.TrimSpace(destinationID) == "" {
		return domain.NewQuoteFailure(domain.QuoteErrLocationNotFound, "origin or destination code is missing")
	}

	params := url.Values{}
	params.Set("attributes[user_id]", q.cfg.UserID)
	params.Set("attributes[sender_city]", originID)
	params.Set("attributes[recipient_city]", destinationID)
	params.Set("attributes[cargo_type]", q.cfg.CargoType)
	params.Set("attributes[cargo_seats_number]", strconv.Itoa(q.cfg.CargoSeatsNumber))
	params.Set("attributes[cargo_weight]", weight.String())
	params.Set("attributes[delivery_method]", q.cfg.DeliveryMethod)

	start := time.Now()
	var resp apiResponse
	if err := q.client.getJSONGated(ctx, "quote", "/cse/calc", q.session.authQuery(params), &resp, q.limiter.Wait); err != nil {
		if isUnauthorized(err) {
			q.session.Invalidate()
		}
		log.Warn().Err(err).Msg("Quote request failed")
		return domain.NewQuoteFailure(domain.QuoteErrTransport, err.Error())
	}
	if !resp.Status {
		msg := resp.message()
		log.Warn().Str("reason", msg).Msg("Provider rejected quote request")
		return domain.NewQuoteFailure(domain.QuoteErrProvider, msg)
	}

	offers := q.parseOffers(resp.Data, weight, log)
	kept := q.cfg.Filter.Apply(offers)

	log.Debug().
		Int("offers", len(offers)).
		Int("kept", len(kept)).
		Dur("duration", time.Since(start)).
		Msg("Quote completed")

	return domain.NewQuoteSuccess(kept)
}

func (q *QuoteClient) parseOffers(data json.RawMessage, weight domain.Weight, log zerolog.Logger) []domain.ShippingOffer {
	if len(data) == 0 || string(data) == "null" {
		return []domain.ShippingOffer{}
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		log.Warn().Err(err).Msg("Quote data is not a list")
		return []domain.ShippingOffer{}
	}

	offers := make([]domain.ShippingOffer, 0, len(records))
	for i, raw := range records {
		offer, err := parseOffer(raw, weight)
		if err != nil {
			log.Warn().Err(err).Int("index", i).Msg("Skipping unparsable offer")
			continue
		}
		offers = append(offers, offer)
	}
	return offers
}

var _ domain.QuoteClient = (*QuoteClient)(nil)
