// Package integration provides helpers and integration tests for the shipping quote system.
// Integration tests verify that components work together correctly, including
// HTTP handlers, middleware, the location resolver, the calculation use case and mock providers.
package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	httpAdapter "github.com/shipping-quote/shipping-quote-aggregation-system/internal/adapter/http"
	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/adapter/http/middleware"
	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/adapter/http/response"
	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/usecase"
	"github.com/shipping-quote/shipping-quote-aggregation-system/test/mock"
)

// TestServer wraps an Echo instance and the wired components for integration testing.
type TestServer struct {
	Echo      *echo.Echo
	Handler   *httpAdapter.CalculationHandler
	Resolver  *usecase.LocationResolver
	Directory *mock.Directory
	Quotes    *mock.QuoteClient
}

// NewTestServer wires the full HTTP stack over the given provider doubles.
// A nil config uses the use case defaults.
func NewTestServer(dir *mock.Directory, quotes *mock.QuoteClient, cfg *usecase.CalculationConfig) *TestServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	middleware.Setup(e, zerolog.Nop())

	resolver := usecase.NewLocationResolver(dir, usecase.ResolverConfig{ListingPageSize: 4})
	uc := usecase.NewCalculationUseCase(resolver, quotes, cfg)
	handler := httpAdapter.NewCalculationHandler(uc, resolver, nil)
	httpAdapter.RegisterRoutes(e, handler)

	return &TestServer{
		Echo:      e,
		Handler:   handler,
		Resolver:  resolver,
		Directory: dir,
		Quotes:    quotes,
	}
}

// NewDefaultTestServer uses the sample directory and sample offers.
func NewDefaultTestServer(cfg *usecase.CalculationConfig) *TestServer {
	return NewTestServer(mock.NewDirectory(mock.SampleLocations()...), mock.NewQuoteClient(nil), cfg)
}

// Request represents a test HTTP request configuration.
type Request struct {
	Method      string
	Path        string
	Body        interface{}
	ContentType string
	Headers     map[string]string
}

// Response represents a test HTTP response.
type Response struct {
	Code    int
	Body    []byte
	Headers http.Header
}

// Do executes a test request and returns the response.
func (ts *TestServer) Do(req Request) Response {
	var bodyReader *bytes.Reader
	if req.Body != nil {
		bodyBytes, _ := json.Marshal(req.Body)
		bodyReader = bytes.NewReader(bodyBytes)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	httpReq := httptest.NewRequest(req.Method, req.Path, bodyReader)

	if req.ContentType != "" {
		httpReq.Header.Set(echo.HeaderContentType, req.ContentType)
	} else if req.Body != nil {
		httpReq.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	ts.Echo.ServeHTTP(rec, httpReq)

	return Response{
		Code:    rec.Code,
		Body:    rec.Body.Bytes(),
		Headers: rec.Header(),
	}
}

// CalculateRequest posts a calculation batch.
func (ts *TestServer) CalculateRequest(body interface{}) Response {
	return ts.Do(Request{
		Method: http.MethodPost,
		Path:   "/api/v1/calculations",
		Body:   body,
	})
}

// ResolveRequest looks up one place name.
func (ts *TestServer) ResolveRequest(name string) Response {
	return ts.Do(Request{
		Method: http.MethodGet,
		Path:   "/api/v1/locations/resolve?name=" + url.QueryEscape(name),
	})
}

// HealthRequest makes a health check request.
func (ts *TestServer) HealthRequest() Response {
	return ts.Do(Request{
		Method: http.MethodGet,
		Path:   "/health",
	})
}

// ParseCalculation parses the response body as a calculation response.
func (r *Response) ParseCalculation() (*httpAdapter.CalculationResponseDTO, error) {
	var resp httpAdapter.CalculationResponseDTO
	if err := json.Unmarshal(r.Body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ParseError parses the response body as an error payload.
func (r *Response) ParseError() (*response.ErrorDetail, error) {
	var errResp response.ErrorDetail
	if err := json.Unmarshal(r.Body, &errResp); err != nil {
		return nil, err
	}
	return &errResp, nil
}

// Routes builds a request body from origin/destination pairs; row indexes follow the argument order.
func Routes(pairs ...[2]string) httpAdapter.CalculateRequest {
	req := httpAdapter.CalculateRequest{Routes: make([]httpAdapter.RouteRequest, len(pairs))}
	for i, p := range pairs {
		req.Routes[i] = httpAdapter.RouteRequest{Origin: p[0], Destination: p[1], RowIndex: i + 1}
	}
	return req
}
