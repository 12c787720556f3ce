package topex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/domain"
	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/infrastructure/logger"
)

// Directory implements domain.LocationDirectory over GET /cse/cities.
type Directory struct {
	client  *Client
	session *Session
	log     zerolog.Logger
}

// NewDirectory creates the city directory adapter.
func NewDirectory(client *Client, session *Session, log zerolog.Logger) *Directory {
	return &Directory{client: client, session: session, log: log}
}

// SearchLocations returns one page of cities. An empty query lists every city.
func (d *Directory) SearchLocations(ctx context.Context, query string, page, pageSize int) ([]domain.Location, error) {
	if err := d.session.ensure(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	if query != "" {
		params.Set("search", query)
	}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		params.Set("pageSize", strconv.Itoa(pageSize))
	}

	var resp apiResponse
	if err := d.client.getJSON(ctx, "locations", "/cse/cities", d.session.authQuery(params), &resp); err != nil {
		if isUnauthorized(err) {
			d.session.Invalidate()
		}
		return nil, err
	}
	if !resp.Status {
		return nil, domain.NewProviderError(ProviderName, "locations", fmt.Errorf("%w: %s", domain.ErrProviderRejected, resp.message()))
	}

	raw := resp.Data
	if len(raw) == 0 || string(raw) == "null" {
		raw = resp.Cities
	}
	locations, err := decodeLocations(raw)
	if err != nil {
		return nil, domain.NewProviderError(ProviderName, "locations", fmt.Errorf("%w: %w", domain.ErrTransport, err))
	}

	reqLog := logger.ForRequest(ctx, d.log)
	reqLog.Debug().
		Str("query", query).
		Int("page", page).
		Int("count", len(locations)).
		Msg("Fetched locations")
	return locations, nil
}

// decodeLocations accepts either an object mapping id to name or a list of
// city records, keeping the provider's order in both cases.
func decodeLocations(raw json.RawMessage) ([]domain.Location, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return []domain.Location{}, nil
	}

	switch raw[0] {
	case '[':
		var records []cityRecord
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("decode city list: %w", err)
		}
		out := make([]domain.Location, 0, len(records))
		for _, r := range records {
			if id, name := r.id(), r.name(); id != "" && name != "" {
				out = append(out, domain.Location{ID: id, Name: name})
			}
		}
		return out, nil
	case '{':
		return decodeLocationMap(raw)
	default:
		return nil, fmt.Errorf("unexpected city payload %q", truncate(string(raw), 32))
	}
}

// decodeLocationMap walks the object token by token so key order survives.
func decodeLocationMap(raw json.RawMessage) ([]domain.Location, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode city map: %w", err)
	}

	var out []domain.Location
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode city map: %w", err)
		}
		id, _ := tok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("decode city %q: %w", id, err)
		}
		name, err := mapEntryName(value)
		if err != nil {
			return nil, fmt.Errorf("decode city %q: %w", id, err)
		}
		if id != "" && name != "" {
			out = append(out, domain.Location{ID: id, Name: name})
		}
	}
	if out == nil {
		out = []domain.Location{}
	}
	return out, nil
}

// mapEntryName reads a map value that is either a plain name or a city record.
func mapEntryName(value json.RawMessage) (string, error) {
	value = bytes.TrimSpace(value)
	if len(value) > 0 && value[0] == '{' {
		var rec cityRecord
		if err := json.Unmarshal(value, &rec); err != nil {
			return "", err
		}
		return rec.name(), nil
	}
	var name flexString
	if err := json.Unmarshal(value, &name); err != nil {
		return "", err
	}
	return string(name), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var _ domain.LocationDirectory = (*Directory)(nil)
