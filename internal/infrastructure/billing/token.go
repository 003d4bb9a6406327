package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clientportal/backend/internal/domain/shared"
)

// ErrNoToken indicates that no billing-provider credential is available for
// the current actor. Callers treat this as "remote side unreachable by
// design", not as a transport failure.
var ErrNoToken = errors.New("billing: no token available")

// TokenProvider supplies the access token used to authenticate a single
// billing-provider request. Implementations decide where the token comes
// from (a connected admin session, a static fallback credential).
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenProvider returns a fixed token, typically the long-lived
// fallback credential from configuration.
type StaticTokenProvider struct {
	token string
}

// NewStaticTokenProvider creates a provider for a fixed token
func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: token}
}

// Token implements TokenProvider
func (p *StaticTokenProvider) Token(ctx context.Context) (string, error) {
	if p.token == "" {
		return "", ErrNoToken
	}
	return p.token, nil
}

// TokenStore looks up the stored billing-provider token for a user.
// Implementations return ErrNoToken when the user has not connected their
// billing account or the stored token has expired.
type TokenStore interface {
	Get(ctx context.Context, userID uint) (*Token, error)
}

// RedisTokenStore persists per-user billing-provider tokens in Redis so a
// connected session survives process restarts.
type RedisTokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTokenStore creates a token store with the given session TTL
func NewRedisTokenStore(client *redis.Client, ttl time.Duration) *RedisTokenStore {
	return &RedisTokenStore{client: client, ttl: ttl}
}

func (s *RedisTokenStore) key(userID uint) string {
	return fmt.Sprintf("billing:token:%d", userID)
}

// Save stores a token for the given user
func (s *RedisTokenStore) Save(ctx context.Context, userID uint, token *Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("billing: marshal token: %w", err)
	}
	if err := s.client.Set(ctx, s.key(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("billing: store token: %w", err)
	}
	return nil
}

// Get retrieves the stored token for the given user. Returns ErrNoToken when
// none is stored or the stored token has expired.
func (s *RedisTokenStore) Get(ctx context.Context, userID uint) (*Token, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("billing: load token: %w", err)
	}
	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("billing: decode token: %w", err)
	}
	if token.Expired() {
		return nil, ErrNoToken
	}
	return &token, nil
}

// Delete removes the stored token for the given user
func (s *RedisTokenStore) Delete(ctx context.Context, userID uint) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("billing: delete token: %w", err)
	}
	return nil
}

// SessionTokenProvider resolves the token for a specific user from the
// store, falling back to a static credential when the user has not
// connected their billing account.
type SessionTokenProvider struct {
	store    TokenStore
	userID   uint
	fallback string
}

// NewSessionTokenProvider creates a provider bound to one user session
func NewSessionTokenProvider(store TokenStore, userID uint, fallback string) *SessionTokenProvider {
	return &SessionTokenProvider{store: store, userID: userID, fallback: fallback}
}

// Token implements TokenProvider
func (p *SessionTokenProvider) Token(ctx context.Context) (string, error) {
	if p.store != nil {
		token, err := p.store.Get(ctx, p.userID)
		if err == nil {
			return token.AccessToken, nil
		}
		if !errors.Is(err, ErrNoToken) {
			return "", err
		}
	}
	if p.fallback != "" {
		return p.fallback, nil
	}
	return "", ErrNoToken
}

// ResolveTokenProvider selects the billing credential per request: the
// acting user's stored session token when one exists, otherwise the static
// fallback. The acting user is read from the request context, so a single
// shared Client authenticates each call as its caller.
func ResolveTokenProvider(store TokenStore, fallback string) TokenProvider {
	return &resolvingTokenProvider{store: store, fallback: fallback}
}

type resolvingTokenProvider struct {
	store    TokenStore
	fallback string
}

// Token implements TokenProvider
func (p *resolvingTokenProvider) Token(ctx context.Context) (string, error) {
	if userID, ok := shared.ActorIDFromContext(ctx); ok {
		return NewSessionTokenProvider(p.store, userID, p.fallback).Token(ctx)
	}
	return NewStaticTokenProvider(p.fallback).Token(ctx)
}
