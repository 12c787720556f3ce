package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the quote pipeline.
var (
	// ErrInvalidRoute indicates a route with missing or identical endpoints.
	ErrInvalidRoute = errors.New("invalid route")

	// ErrNoRoutes indicates a calculation batch without any routes.
	ErrNoRoutes = errors.New("no routes to calculate")

	// ErrInvalidWeight indicates a non-positive weight tier.
	ErrInvalidWeight = errors.New("invalid weight")

	// ErrLocationNotFound indicates a place name with no matching provider location.
	ErrLocationNotFound = errors.New("location not found")

	// ErrAuthenticationFailed indicates the provider rejected the credentials
	// or the authentication request could not be completed.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrProviderRejected indicates the provider answered with an error payload.
	ErrProviderRejected = errors.New("provider rejected request")

	// ErrTransport indicates an HTTP or network level failure.
	ErrTransport = errors.New("transport error")

	// ErrInvalidOffer indicates an offer record that cannot be turned into a ShippingOffer.
	ErrInvalidOffer = errors.New("invalid offer")
)

// ProviderError wraps a failure of a single upstream operation.
type ProviderError struct {
	// Provider is the provider name
	Provider string

	// Op is the upstream operation (auth, locations, quote)
	Op string

	// Err is the underlying error
	Err error

	// Retryable reports whether repeating the call may succeed
	Retryable bool
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("provider %s %s: %v", e.Provider, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a non-retryable provider error.
func NewProviderError(provider, op string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Op: op, Err: err}
}

// NewRetryableProviderError creates a provider error that may succeed on retry.
func NewRetryableProviderError(provider, op string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Op: op, Err: err, Retryable: true}
}

// IsRetryable reports whether err carries a retryable ProviderError.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// IsLocationNotFound reports whether err is or wraps ErrLocationNotFound.
func IsLocationNotFound(err error) bool {
	return errors.Is(err, ErrLocationNotFound)
}

// IsAuthenticationFailed reports whether err is or wraps ErrAuthenticationFailed.
func IsAuthenticationFailed(err error) bool {
	return errors.Is(err, ErrAuthenticationFailed)
}
