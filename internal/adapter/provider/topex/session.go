package topex

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/domain"
	"github.com/shipping-quote/shipping-quote-aggregation-system/internal/infrastructure/timeutil"
)

const (
	// DefaultTokenLifetime applies when the provider omits the token lifetime.
	DefaultTokenLifetime = time.Hour

	// DefaultRefreshBuffer is how long before expiry a token is treated as stale.
	DefaultRefreshBuffer = 5 * time.Minute

	// DefaultAuthTimeout bounds one shared login, independent of any caller.
	DefaultAuthTimeout = time.Minute
)

// Credentials are the account login and password.
type Credentials struct {
	Email    string
	Password string
}

// Session owns the provider credential: it obtains, caches and refreshes
// the auth token. It is safe for concurrent use.
type Session struct {
	client      *Client
	creds       Credentials
	buffer      time.Duration
	authTimeout time.Duration
	clock       timeutil.Clock
	log         zerolog.Logger

	mu        sync.RWMutex
	token     string
	encoded   string
	expiresAt time.Time

	refresh singleflight.Group
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithSessionClock injects the clock used for expiry checks.
func WithSessionClock(c timeutil.Clock) SessionOption {
	return func(s *Session) {
		s.clock = timeutil.OrReal(c)
	}
}

// WithAuthTimeout bounds a login attempt. Non-positive values are ignored.
func WithAuthTimeout(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.authTimeout = d
		}
	}
}

// WithSessionLogger sets the session logger.
func WithSessionLogger(log zerolog.Logger) SessionOption {
	return func(s *Session) {
		s.log = log
	}
}

// NewSession creates an unauthenticated session.
// A non-positive buffer falls back to DefaultRefreshBuffer.
func NewSession(client *Client, creds Credentials, buffer time.Duration, opts ...SessionOption) *Session {
	if buffer <= 0 {
		buffer = DefaultRefreshBuffer
	}
	s := &Session{
		client:      client,
		creds:       creds,
		buffer:      buffer,
		authTimeout: DefaultAuthTimeout,
		clock:       timeutil.RealClock{},
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsAuthenticated reports whether a token is held and is not within the
// safety buffer of its expiry.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.validLocked()
}

func (s *Session) validLocked() bool {
	return s.token != "" && s.clock.Now().Before(s.expiresAt.Add(-s.buffer))
}

// EnsureAuthenticated makes sure a usable token is held, authenticating when needed.
// It reports whether the session is usable afterwards.
func (s *Session) EnsureAuthenticated(ctx context.Context) bool {
	return s.ensure(ctx) == nil
}

// ensure is EnsureAuthenticated with the failure cause.
//
// Concurrent callers share a single in-flight login. The login runs detached
// from the caller that started it, under its own timeout, so one caller
// giving up never fails the others; each caller only stops waiting when its
// own ctx is done.
func (s *Session) ensure(ctx context.Context) error {
	if s.IsAuthenticated() {
		return nil
	}
	ch := s.refresh.DoChan("auth", func() (any, error) {
		if s.IsAuthenticated() {
			return nil, nil
		}
		authCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.authTimeout)
		defer cancel()
		return nil, s.authenticate(authCtx)
	})

	select {
	case res := <-ch:
		if res.Shared {
			s.log.Debug().Msg("Joined in-flight authentication")
		}
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) authenticate(ctx context.Context) error {
	if s.creds.Email == "" || s.creds.Password == "" {
		return domain.NewProviderError(ProviderName, "auth", fmt.Errorf("%w: credentials are not configured", domain.ErrAuthenticationFailed))
	}

	params := url.Values{}
	params.Set("email", s.creds.Email)
	params.Set("password", s.creds.Password)

	var resp authResponse
	if err := s.client.getJSON(ctx, "auth", "/auth", params.Encode(), &resp); err != nil {
		s.log.Error().Err(err).Msg("Authentication request failed")
		var pe *domain.ProviderError
		if errors.As(err, &pe) {
			err = pe.Err
		}
		return domain.NewProviderError(ProviderName, "auth", fmt.Errorf("%w: %w", domain.ErrAuthenticationFailed, err))
	}
	if !resp.Status || resp.AuthToken == "" {
		msg := resp.Error
		if msg == "" {
			msg = "provider refused credentials"
		}
		s.log.Error().Str("reason", msg).Msg("Authentication rejected")
		return domain.NewProviderError(ProviderName, "auth", fmt.Errorf("%w: %s", domain.ErrAuthenticationFailed, msg))
	}

	lifetime := DefaultTokenLifetime
	if resp.Expire.valid && resp.Expire.value.IsPositive() {
		lifetime = time.Duration(resp.Expire.value.IntPart()) * time.Second
	}

	s.mu.Lock()
	s.token = resp.AuthToken
	s.encoded = url.QueryEscape(resp.AuthToken)
	s.expiresAt = s.clock.Now().Add(lifetime)
	s.mu.Unlock()

	s.log.Info().Dur("lifetime", lifetime).Msg("Authenticated with provider")
	return nil
}

// Token returns the raw token, empty when not authenticated.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// EncodedToken returns the percent-encoded token for hand-assembled query strings.
func (s *Session) EncodedToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.encoded
}

// ExpiresAt returns when the current token expires.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// authQuery prefixes the encoded token to an already encoded query.
func (s *Session) authQuery(rest url.Values) string {
	q := "authToken=" + s.EncodedToken()
	if enc := rest.Encode(); enc != "" {
		q += "&" + enc
	}
	return q
}

// Invalidate drops the token so the next call re-authenticates.
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.token, s.encoded = "", ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()
}

// Close invalidates the session and releases transport resources.
func (s *Session) Close() error {
	s.Invalidate()
	s.client.Close()
	s.log.Info().Msg("Provider session closed")
	return nil
}
