package domain

import "context"

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=domain

// LocationDirectory is the provider's location search endpoint.
// An empty query returns the unfiltered listing, page by page (pages start at 1).
type LocationDirectory interface {
	SearchLocations(ctx context.Context, query string, page, pageSize int) ([]Location, error)
}

// LocationResolver maps a free-text place name, or a location code, to a provider location.
// It returns an error wrapping ErrLocationNotFound when nothing matches.
type LocationResolver interface {
	Resolve(ctx context.Context, name string) (Location, error)
}

// QuoteClient requests offers for already resolved location codes and one weight tier.
// Failures are reported inside the QuoteResult.
type QuoteClient interface {
	Quote(ctx context.Context, originID, destinationID string, weight Weight) QuoteResult
}
