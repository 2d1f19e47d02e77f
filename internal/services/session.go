package services

import (
	"context"
	"fmt"
	"time"

	"github.com/akaliniv/tetatet/internal/api"
	"github.com/akaliniv/tetatet/internal/auth"
	"github.com/akaliniv/tetatet/internal/cache"
	"github.com/akaliniv/tetatet/internal/models"
)

// SessionService owns the authenticated identity: login, registration,
// the cached /auth/me record, and logout teardown.
type SessionService struct {
	client     api.Client
	cache      *cache.Cache
	creds      *auth.Credentials
	staleAfter time.Duration
}

func NewSessionService(client api.Client, c *cache.Cache, creds *auth.Credentials, staleAfter time.Duration) *SessionService {
	return &SessionService{client: client, cache: c, creds: creds, staleAfter: staleAfter}
}

// Login authenticates and stores the access token. The returned user is also
// primed into the session cache so consumers see it without another round trip.
func (s *SessionService) Login(ctx context.Context, username, password string) (models.User, error) {
	pair, err := s.client.Login(ctx, username, password)
	if err != nil {
		return models.User{}, fmt.Errorf("login: %w", err)
	}
	return s.establish(pair)
}

// Register creates an account and logs the new user in.
func (s *SessionService) Register(ctx context.Context, username, email, password string) (models.User, error) {
	pair, err := s.client.Register(ctx, username, email, password)
	if err != nil {
		return models.User{}, fmt.Errorf("register: %w", err)
	}
	return s.establish(pair)
}

func (s *SessionService) establish(pair models.TokenPair) (models.User, error) {
	token := pair.Token()
	if token == "" {
		return models.User{}, fmt.Errorf("auth response carried no token")
	}
	s.creds.Set(token)

	if pair.User != nil {
		s.cache.Write(sessionKey(), *pair.User)
		return *pair.User, nil
	}
	s.cache.Invalidate(sessionKey())
	return models.User{}, nil
}

// Me returns the authenticated identity through the cache.
func (s *SessionService) Me(ctx context.Context) (models.User, error) {
	v, err := s.cache.Read(ctx, sessionKey(), func(ctx context.Context) (any, error) {
		return s.client.Me(ctx)
	}, cache.Options{StaleAfter: s.staleAfter})
	if err != nil {
		return models.User{}, fmt.Errorf("load session: %w", err)
	}
	return v.(models.User), nil
}

// LoggedIn reports whether a token is currently held.
func (s *SessionService) LoggedIn() bool {
	_, ok := s.creds.Get()
	return ok
}

// Logout drops the token and evicts everything cached under it.
func (s *SessionService) Logout() {
	s.creds.Clear()
	s.cache.Clear()
}
