package http

// SwaggerErrorResponse represents an error response.
// @Description Error response from the API
type SwaggerErrorResponse struct {
	// Code is a machine-readable error code
	Code string `json:"code" example:"validation_error"`

	// Message is a human-readable error message
	Message string `json:"message" example:"Request validation failed"`

	// Details contains field-specific error details
	Details map[string]string `json:"details,omitempty"`
}

// SwaggerResolverStats mirrors the cache block of the health response.
// @Description Location cache counters
type SwaggerResolverStats struct {
	Hits           int64 `json:"hits" example:"120"`
	Misses         int64 `json:"misses" example:"8"`
	ListingFetches int64 `json:"listingFetches" example:"1"`
	CachedNames    int   `json:"cachedNames" example:"42"`
	ListingSize    int   `json:"listingSize" example:"1530"`
}

// SwaggerHealthResponse represents the health endpoint payload.
// @Description Service health with optional location cache counters
type SwaggerHealthResponse struct {
	Status string                `json:"status" example:"ok"`
	Cache  *SwaggerResolverStats `json:"cache,omitempty"`
}
