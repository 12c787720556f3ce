// Package domain contains the core entities of the shipping quote system.
// Entities here are provider-agnostic: routes, offers, per-weight results and
// the batch aggregate handed to report generators.
package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Route is one origin/destination pair taken from an input row.
type Route struct {
	// Origin is the free-text origin place name (or a location code)
	Origin string `json:"origin"`

	// Destination is the free-text destination place name (or a location code)
	Destination string `json:"destination"`

	// RowIndex is the ordinal of the source spreadsheet row
	RowIndex int `json:"rowIndex"`
}

// NewRoute creates a Route from raw row values.
// Both names are trimmed; empty names and identical endpoints are rejected.
func NewRoute(origin, destination string, rowIndex int) (Route, error) {
	r := Route{
		Origin:      strings.TrimSpace(origin),
		Destination: strings.TrimSpace(destination),
		RowIndex:    rowIndex,
	}
	if err := r.Validate(); err != nil {
		return Route{}, err
	}
	return r, nil
}

// Validate checks the route invariants.
func (r Route) Validate() error {
	if r.Origin == "" {
		return fmt.Errorf("%w: origin is required (row %d)", ErrInvalidRoute, r.RowIndex)
	}
	if r.Destination == "" {
		return fmt.Errorf("%w: destination is required (row %d)", ErrInvalidRoute, r.RowIndex)
	}
	if strings.EqualFold(r.Origin, r.Destination) {
		return fmt.Errorf("%w: origin and destination must be different (row %d)", ErrInvalidRoute, r.RowIndex)
	}
	return nil
}

// DisplayName returns a human-readable "origin → destination" label.
func (r Route) DisplayName() string {
	return r.Origin + " → " + r.Destination
}

// Weight is a package weight tier in kilograms.
type Weight float64

// String renders the weight in its shortest decimal form (0.5, 1, 30).
func (w Weight) String() string {
	return strconv.FormatFloat(float64(w), 'f', -1, 64)
}

// Kilograms returns the weight as a float64.
func (w Weight) Kilograms() float64 {
	return float64(w)
}

// IsValid reports whether the weight is strictly positive.
func (w Weight) IsValid() bool {
	return w > 0
}

// MarshalText lets Weight key JSON objects.
func (w Weight) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText parses a decimal weight.
func (w *Weight) UnmarshalText(text []byte) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(text)), 64)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidWeight, string(text))
	}
	*w = Weight(v)
	return nil
}

// MarshalJSON encodes the weight as a JSON number.
// Map keys still go through MarshalText.
func (w Weight) MarshalJSON() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (w *Weight) UnmarshalJSON(data []byte) error {
	return w.UnmarshalText([]byte(strings.Trim(string(data), `"`)))
}

// ValidateWeights checks that a tier list is non-empty, positive and free of duplicates.
func ValidateWeights(weights []Weight) error {
	if len(weights) == 0 {
		return fmt.Errorf("%w: at least one weight tier is required", ErrInvalidWeight)
	}
	seen := make(map[Weight]struct{}, len(weights))
	for _, w := range weights {
		if !w.IsValid() {
			return fmt.Errorf("%w: weight tiers must be positive, got %s", ErrInvalidWeight, w)
		}
		if _, dup := seen[w]; dup {
			return fmt.Errorf("%w: duplicate weight tier %s", ErrInvalidWeight, w)
		}
		seen[w] = struct{}{}
	}
	return nil
}

// Location is a place name resolved to a provider location identifier.
type Location struct {
	// ID is the provider-internal location code
	ID string `json:"id"`

	// Name is the provider display name that matched the lookup
	Name string `json:"name"`
}
