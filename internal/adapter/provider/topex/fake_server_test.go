package topex

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/infrastructure/retry"
)

const testToken = "tok+en/with=chars"

// fakeTopex is an in-process stand-in for the provider API.
type fakeTopex struct {
	t *testing.T

	authCalls   atomic.Int32
	calcCalls   atomic.Int32
	citiesCalls atomic.Int32

	mu         sync.Mutex
	authDelay  time.Duration
	authBody   any
	authStatus int
	calc       http.HandlerFunc
	cities     http.HandlerFunc
	lastCalc   map[string]string
	lastCities map[string]string
}

func newFakeTopex(t *testing.T) (*fakeTopex, *httptest.Server) {
	t.Helper()
	f := &fakeTopex{
		t:          t,
		authStatus: http.StatusOK,
		authBody:   map[string]any{"status": true, "authToken": testToken, "expire": 3600},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
		f.authCalls.Add(1)
		f.mu.Lock()
		delay, status, body := f.authDelay, f.authStatus, f.authBody
		f.mu.Unlock()
		if delay > 0 {
			time.Sleep(delay)
		}
		if r.URL.Query().Get("email") == "" {
			writeJSON(w, http.StatusOK, map[string]any{"status": false, "error": "email required"})
			return
		}
		writeJSON(w, status, body)
	})
	mux.HandleFunc("/cse/calc", func(w http.ResponseWriter, r *http.Request) {
		f.calcCalls.Add(1)
		f.mu.Lock()
		f.lastCalc = flatten(r)
		h := f.calc
		f.mu.Unlock()
		if r.URL.Query().Get("authToken") != testToken {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"status": false, "error": "bad token"})
			return
		}
		if h == nil {
			writeJSON(w, http.StatusOK, map[string]any{"status": true, "data": []any{}})
			return
		}
		h(w, r)
	})
	mux.HandleFunc("/cse/cities", func(w http.ResponseWriter, r *http.Request) {
		f.citiesCalls.Add(1)
		f.mu.Lock()
		f.lastCities = flatten(r)
		h := f.cities
		f.mu.Unlock()
		if h == nil {
			writeJSON(w, http.StatusOK, map[string]any{"status": true, "data": []any{}})
			return
		}
		h(w, r)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeTopex) setCalc(h http.HandlerFunc) {
	f.mu.Lock()
	f.calc = h
	f.mu.Unlock()
}

func (f *fakeTopex) setCities(h http.HandlerFunc) {
	f.mu.Lock()
	f.cities = h
	f.mu.Unlock()
}

func (f *fakeTopex) setAuth(status int, body any) {
	f.mu.Lock()
	f.authStatus, f.authBody = status, body
	f.mu.Unlock()
}

func (f *fakeTopex) calcParams() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastCalc
}

func (f *fakeTopex) citiesParams() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastCities
}

func flatten(r *http.Request) map[string]string {
	out := make(map[string]string)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func jsonHandler(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, body)
	}
}

var fastRetry = retry.Config{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	MaxDelay:     5 * time.Millisecond,
	Multiplier:   2,
}

func newTestClient(baseURL string) *Client {
	return NewClient(ClientConfig{BaseURL: baseURL, Timeout: 5 * time.Second, Retry: fastRetry})
}

func newTestSession(baseURL string, opts ...SessionOption) *Session {
	return NewSession(newTestClient(baseURL), Credentials{Email: "ops@example.com", Password: "secret"}, time.Minute, opts...)
}

func newTestQuoteClient(baseURL string, cfg QuoteConfig) *QuoteClient {
	client := newTestClient(baseURL)
	session := NewSession(client, Credentials{Email: "ops@example.com", Password: "secret"}, time.Minute)
	return NewQuoteClient(client, session, cfg, zerolog.Nop())
}
