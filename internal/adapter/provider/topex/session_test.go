package topex

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/domain"
	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/infrastructure/timeutil"
)

func TestSession_EnsureAuthenticated(t *testing.T) {
	fake, srv := newFakeTopex(t)
	clock := timeutil.NewMockClockFromString("2026-03-02T10:00:00Z")
	s := newTestSession(srv.URL, WithSessionClock(clock))

	assert.False(t, s.IsAuthenticated())
	require.True(t, s.EnsureAuthenticated(context.Background()))

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, testToken, s.Token())
	assert.Equal(t, "tok%2Ben%2Fwith%3Dchars", s.EncodedToken())
	assert.Equal(t, clock.Now().Add(time.Hour), s.ExpiresAt())
	assert.Equal(t, int32(1), fake.authCalls.Load())

	// A valid token is reused.
	require.True(t, s.EnsureAuthenticated(context.Background()))
	assert.Equal(t, int32(1), fake.authCalls.Load())
}

func TestSession_RefreshBuffer(t *testing.T) {
	fake, srv := newFakeTopex(t)
	clock := timeutil.NewMockClockFromString("2026-03-02T10:00:00Z")
	s := newTestSession(srv.URL, WithSessionClock(clock))

	require.True(t, s.EnsureAuthenticated(context.Background()))

	// Buffer is one minute: 58 minutes in the token is still usable.
	clock.AdvanceMinutes(58)
	assert.True(t, s.IsAuthenticated())

	// Inside the buffer the token is stale even though it has not expired.
	clock.AdvanceMinutes(1)
	assert.False(t, s.IsAuthenticated())

	require.True(t, s.EnsureAuthenticated(context.Background()))
	assert.Equal(t, int32(2), fake.authCalls.Load())
	assert.Equal(t, clock.Now().Add(time.Hour), s.ExpiresAt())
}

func TestSession_ExpireHandling(t *testing.T) {
	tests := []struct {
		name     string
		body     map[string]any
		wantLife time.Duration
	}{
		{
			name:     "explicit lifetime",
			body:     map[string]any{"status": true, "authToken": testToken, "expire": 7200},
			wantLife: 2 * time.Hour,
		},
		{
			name:     "lifetime as string",
			body:     map[string]any{"status": true, "authToken": testToken, "expire": "1800"},
			wantLife: 30 * time.Minute,
		},
		{
			name:     "missing lifetime defaults to one hour",
			body:     map[string]any{"status": true, "authToken": testToken},
			wantLife: time.Hour,
		},
		{
			name:     "non-positive lifetime defaults to one hour",
			body:     map[string]any{"status": true, "authToken": testToken, "expire": 0},
			wantLife: time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, srv := newFakeTopex(t)
			fake.setAuth(http.StatusOK, tt.body)
			clock := timeutil.NewMockClockFromString("2026-03-02T10:00:00Z")
			s := newTestSession(srv.URL, WithSessionClock(clock))

			require.True(t, s.EnsureAuthenticated(context.Background()))
			assert.Equal(t, clock.Now().Add(tt.wantLife), s.ExpiresAt())
		})
	}
}

func TestSession_AuthenticationFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   any
	}{
		{
			name:   "rejected credentials",
			status: http.StatusOK,
			body:   map[string]any{"status": false, "error": "Неверный логин или пароль"},
		},
		{
			name:   "missing token",
			status: http.StatusOK,
			body:   map[string]any{"status": true},
		},
		{
			name:   "http error",
			status: http.StatusForbidden,
			body:   map[string]any{"status": false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, srv := newFakeTopex(t)
			fake.setAuth(tt.status, tt.body)
			s := newTestSession(srv.URL)

			assert.False(t, s.EnsureAuthenticated(context.Background()))
			assert.False(t, s.IsAuthenticated())
			assert.Empty(t, s.Token())

			err := s.ensure(context.Background())
			assert.ErrorIs(t, err, domain.ErrAuthenticationFailed)
		})
	}
}

func TestSession_MissingCredentials(t *testing.T) {
	fake, srv := newFakeTopex(t)
	s := NewSession(newTestClient(srv.URL), Credentials{}, 0)

	err := s.ensure(context.Background())

	assert.ErrorIs(t, err, domain.ErrAuthenticationFailed)
	assert.Zero(t, fake.authCalls.Load())
	assert.Equal(t, DefaultRefreshBuffer, s.buffer)
}

func TestSession_ConcurrentRefreshIsShared(t *testing.T) {
	fake, srv := newFakeTopex(t)
	fake.mu.Lock()
	fake.authDelay = 50 * time.Millisecond
	fake.mu.Unlock()
	s := newTestSession(srv.URL)

	const callers = 20
	results := make([]bool, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.EnsureAuthenticated(context.Background())
		}(i)
	}
	wg.Wait()

	for _, ok := range results {
		assert.True(t, ok)
	}
	assert.Equal(t, int32(1), fake.authCalls.Load())
}

func TestSession_CancelledCallerDoesNotFailSharedLogin(t *testing.T) {
	fake, srv := newFakeTopex(t)
	fake.mu.Lock()
	fake.authDelay = 150 * time.Millisecond
	fake.mu.Unlock()
	s := newTestSession(srv.URL)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() { errA <- s.ensure(ctxA) }()

	time.Sleep(20 * time.Millisecond)
	errB := make(chan error, 1)
	go func() { errB <- s.ensure(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	cancelA()

	assert.ErrorIs(t, <-errA, context.Canceled, "the cancelled caller stops waiting")
	require.NoError(t, <-errB, "the live caller gets the shared login result")
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, int32(1), fake.authCalls.Load())
}

func TestSession_AuthTimeout(t *testing.T) {
	fake, srv := newFakeTopex(t)
	fake.mu.Lock()
	fake.authDelay = 200 * time.Millisecond
	fake.mu.Unlock()
	client := NewClient(ClientConfig{BaseURL: srv.URL, Timeout: 5 * time.Second, Retry: fastRetry.WithMaxAttempts(1)})
	s := NewSession(client, Credentials{Email: "ops@example.com", Password: "secret"}, time.Minute,
		WithAuthTimeout(30*time.Millisecond))

	err := s.ensure(context.Background())

	assert.ErrorIs(t, err, domain.ErrAuthenticationFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, s.IsAuthenticated())
}

func TestSession_InvalidateAndClose(t *testing.T) {
	fake, srv := newFakeTopex(t)
	s := newTestSession(srv.URL)

	require.True(t, s.EnsureAuthenticated(context.Background()))
	s.Invalidate()
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.EncodedToken())

	require.True(t, s.EnsureAuthenticated(context.Background()))
	assert.Equal(t, int32(2), fake.authCalls.Load())

	require.NoError(t, s.Close())
	assert.False(t, s.IsAuthenticated())
}
