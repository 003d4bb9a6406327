package billing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clientportal/backend/internal/domain/shared"
	"github.com/clientportal/backend/internal/infrastructure/config"
)

// fakeTokenStore is an in-memory TokenStore
type fakeTokenStore struct {
	tokens map[uint]*Token
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[uint]*Token)}
}

func (s *fakeTokenStore) Get(ctx context.Context, userID uint) (*Token, error) {
	if t, ok := s.tokens[userID]; ok {
		return t, nil
	}
	return nil, ErrNoToken
}

func TestResolveTokenProvider(t *testing.T) {
	store := newFakeTokenStore()
	store.tokens[7] = &Token{AccessToken: "session-abc"}

	t.Run("connected actor uses the session token over the fallback", func(t *testing.T) {
		provider := ResolveTokenProvider(store, "fallback-token")
		ctx := shared.WithActorID(context.Background(), 7)

		token, err := provider.Token(ctx)
		require.NoError(t, err)
		assert.Equal(t, "session-abc", token)
	})

	t.Run("unconnected actor falls back to the static token", func(t *testing.T) {
		provider := ResolveTokenProvider(store, "fallback-token")
		ctx := shared.WithActorID(context.Background(), 99)

		token, err := provider.Token(ctx)
		require.NoError(t, err)
		assert.Equal(t, "fallback-token", token)
	})

	t.Run("no actor in context uses the fallback", func(t *testing.T) {
		provider := ResolveTokenProvider(store, "fallback-token")

		token, err := provider.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "fallback-token", token)
	})

	t.Run("no token anywhere reports ErrNoToken", func(t *testing.T) {
		provider := ResolveTokenProvider(newFakeTokenStore(), "")

		_, err := provider.Token(shared.WithActorID(context.Background(), 99))
		assert.ErrorIs(t, err, ErrNoToken)
	})
}

func TestClientAuthenticatesAsTheActor(t *testing.T) {
	var seenAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "prj_1", "title": "Hosting"}`))
	}))
	defer srv.Close()

	store := newFakeTokenStore()
	store.tokens[7] = &Token{AccessToken: "session-abc"}
	client := NewClient(&config.BillingConfig{BaseURL: srv.URL},
		ResolveTokenProvider(store, "fallback-token"), zap.NewNop())

	t.Run("connected actor's token is sent", func(t *testing.T) {
		_, err := client.GetProject(shared.WithActorID(context.Background(), 7), "prj_1")
		require.NoError(t, err)
		assert.Equal(t, "Bearer session-abc", seenAuth)
	})

	t.Run("anonymous context sends the fallback", func(t *testing.T) {
		_, err := client.GetProject(context.Background(), "prj_1")
		require.NoError(t, err)
		assert.Equal(t, "Bearer fallback-token", seenAuth)
	})
}
