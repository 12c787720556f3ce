// Package http provides the HTTP handler layer for the shipping quote API.
// It handles request parsing, validation, and response formatting.
package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Request limits.
const (
	MaxRoutesPerRequest  = 500
	MaxWeightsPerRequest = 20
)

// CalculateRequest represents the request body for a batch calculation.
type CalculateRequest struct {
	// Routes are the origin/destination pairs to quote
	Routes []RouteRequest `json:"routes" validate:"required,min=1,max=500,dive"`

	// Weights optionally overrides the configured weight tiers (kg)
	Weights []float64 `json:"weights,omitempty" validate:"omitempty,max=20,unique,dive,gt=0" example:"0.5,1,5"`

	// SortBy orders offers inside each tier: price (default) or delivery
	SortBy string `json:"sortBy,omitempty" validate:"omitempty,oneof=price delivery" example:"price"`
}

// RouteRequest is one input row.
type RouteRequest struct {
	// Origin is a place name or provider location code
	Origin string `json:"origin" validate:"required,max=200" example:"Москва"`

	// Destination is a place name or provider location code
	Destination string `json:"destination" validate:"required,max=200,nefield=Origin" example:"Санкт-Петербург"`

	// RowIndex is the source row number, echoed back in results
	RowIndex int `json:"rowIndex" validate:"gte=0" example:"1"`
}

// ResolveLocationRequest holds the query parameters of a location lookup.
type ResolveLocationRequest struct {
	Name string `query:"name" validate:"required,max=200"`
}

// ValidationError represents a field-level validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors holds multiple validation errors.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// Error implements the error interface.
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return "validation failed"
	}
	return v.Errors[0].Message
}

// Add adds a validation error.
func (v *ValidationErrors) Add(field, message string) {
	v.Errors = append(v.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// ToMap converts validation errors to a map for API response.
func (v *ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string, len(v.Errors))
	for _, e := range v.Errors {
		result[e.Field] = e.Message
	}
	return result
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// Validate validates the calculation request.
func (r *CalculateRequest) Validate() error {
	return validateStruct(r)
}

// Validate validates the lookup request.
func (r *ResolveLocationRequest) Validate() error {
	return validateStruct(r)
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	errs := &ValidationErrors{}
	for _, fe := range fieldErrs {
		field := fieldPath(fe.Namespace())
		errs.Add(field, fieldMessage(field, fe))
	}
	return errs
}

// fieldPath drops the struct name from a validator namespace:
// "CalculateRequest.routes[0].origin" becomes "routes[0].origin".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func fieldMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must contain at most %s item(s)", field, fe.Param())
	case "nefield":
		return "origin and destination must be different"
	case "gt":
		return field + " must be positive"
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "unique":
		return field + " must not contain duplicates"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
