package topex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/domain"
	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/infrastructure/retry"
)

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(ClientConfig{})

	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, 150*time.Second, c.http.Timeout)
	assert.Equal(t, retry.TransportConfig.MaxAttempts, c.retry.MaxAttempts)

	c = NewClient(ClientConfig{BaseURL: "http://example.test/api/"})
	assert.Equal(t, "http://example.test/api", c.BaseURL())
}

func TestClient_GetJSON(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []int
		body       string
		wantErr    bool
		wantCalls  int32
		wantUnauth bool
	}{
		{
			name:      "success on first attempt",
			statuses:  []int{http.StatusOK},
			body:      `{"status":true}`,
			wantCalls: 1,
		},
		{
			name:      "retries transient 503",
			statuses:  []int{http.StatusServiceUnavailable, http.StatusOK},
			body:      `{"status":true}`,
			wantCalls: 2,
		},
		{
			name:      "retries 429",
			statuses:  []int{http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusOK},
			body:      `{"status":true}`,
			wantCalls: 3,
		},
		{
			name:      "gives up after max attempts",
			statuses:  []int{http.StatusBadGateway, http.StatusBadGateway, http.StatusBadGateway, http.StatusOK},
			body:      `{"status":true}`,
			wantErr:   true,
			wantCalls: 3,
		},
		{
			name:      "does not retry 400",
			statuses:  []int{http.StatusBadRequest, http.StatusOK},
			body:      `{"status":true}`,
			wantErr:   true,
			wantCalls: 1,
		},
		{
			name:       "401 is reported as unauthorized",
			statuses:   []int{http.StatusUnauthorized},
			body:       `{"status":false}`,
			wantErr:    true,
			wantCalls:  1,
			wantUnauth: true,
		},
		{
			name:      "malformed body",
			statuses:  []int{http.StatusOK},
			body:      `<html>maintenance</html>`,
			wantErr:   true,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := calls.Add(1)
				assert.Equal(t, "/cse/calc", r.URL.Path)
				assert.Equal(t, "1", r.URL.Query().Get("x"))
				w.WriteHeader(tt.statuses[n-1])
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			var out struct {
				Status bool `json:"status"`
			}
			err := newTestClient(srv.URL).getJSON(context.Background(), "quote", "/cse/calc", "x=1", &out)

			assert.Equal(t, tt.wantCalls, calls.Load())
			if !tt.wantErr {
				require.NoError(t, err)
				assert.True(t, out.Status)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantUnauth, isUnauthorized(err))
			assert.ErrorIs(t, err, domain.ErrTransport)

			var pe *domain.ProviderError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, ProviderName, pe.Provider)
			assert.Equal(t, "quote", pe.Op)
		})
	}
}

func TestClient_GetJSON_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out map[string]any
	err := newTestClient(srv.URL).getJSON(ctx, "auth", "/auth", "", &out)

	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_GetJSONGated(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"status":true}`))
	}))
	defer srv.Close()

	var gates atomic.Int32
	gate := func(context.Context) error {
		gates.Add(1)
		return nil
	}

	var out map[string]any
	err := newTestClient(srv.URL).getJSONGated(context.Background(), "quote", "/cse/calc", "", &out, gate)

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, int32(3), gates.Load(), "every attempt passes the gate")
}

func TestClient_GetJSONGated_GateErrorStops(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	errClosed := errors.New("gate closed")
	var gates atomic.Int32
	gate := func(context.Context) error {
		if gates.Add(1) > 1 {
			return errClosed
		}
		return nil
	}

	var out map[string]any
	err := newTestClient(srv.URL).getJSONGated(context.Background(), "quote", "/cse/calc", "", &out, gate)

	assert.ErrorIs(t, err, errClosed)
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(2), gates.Load())
}

func TestHTTPStatusError(t *testing.T) {
	assert.Equal(t, "http status 502", (&httpStatusError{Code: 502}).Error())
	assert.Equal(t, "http status 400: bad city", (&httpStatusError{Code: 400, Body: "bad city"}).Error())
	assert.True(t, isTransient(&httpStatusError{Code: 500}))
	assert.False(t, isTransient(&httpStatusError{Code: 404}))
	assert.True(t, isUnauthorized(&httpStatusError{Code: 403}))
	assert.False(t, isUnauthorized(&httpStatusError{Code: 404}))
}
